package value_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/noxlang/nox/internal/value"
)

// TestValueStringSnapshot captures String() across every concrete kind
// so an accidental formatting change (e.g. float trailing-zero
// trimming, bool casing) shows up as a diff rather than silently
// passing.
func TestValueStringSnapshot(t *testing.T) {
	vals := []value.Value{
		value.Nil,
		value.Bool(true),
		value.Bool(false),
		value.Int(42),
		value.Int(-7),
		value.Double(3.5),
		value.Double(0),
		value.Str("hello"),
		value.Str(""),
		value.Ellipsis{value.Int(1), value.Str("two")},
	}
	var sb strings.Builder
	for _, v := range vals {
		fmt.Fprintf(&sb, "%s: %s\n", v.Kind(), v.String())
	}
	snaps.MatchSnapshot(t, sb.String())
}

// TestWeakCoercionSnapshot captures the weak-int/weak-double coercion
// table across representative inputs.
func TestWeakCoercionSnapshot(t *testing.T) {
	inputs := []value.Value{
		value.Int(10),
		value.Double(10),
		value.Double(10.5),
		value.Str("10"),
		value.Str("10.0"),
		value.Str("3.5"),
	}
	var sb strings.Builder
	for _, v := range inputs {
		n, err := value.WeakInt(v, true)
		if err != nil {
			fmt.Fprintf(&sb, "%s -> WeakInt error: %v\n", v.String(), err)
			continue
		}
		fmt.Fprintf(&sb, "%s -> WeakInt %d\n", v.String(), n)
	}
	snaps.MatchSnapshot(t, sb.String())
}
