package table_test

import (
	"testing"

	"github.com/noxlang/nox/internal/table"
	"github.com/noxlang/nox/internal/value"
)

func TestDotInsertsOnEnsure(t *testing.T) {
	tb := table.New()
	c := tb.Dot("x", true)
	c.V = value.Int(42)

	got := tb.Dot("x", false)
	n, _ := value.AsInt(got.V)
	if n != 42 {
		t.Fatalf("got %d, want 42", n)
	}
}

func TestDotMissReturnsNilSentinelWithoutEnsure(t *testing.T) {
	tb := table.New()
	got := tb.Dot("missing", false)
	if got.V.Kind() != value.KindNil {
		t.Fatalf("got %v, want nil", got.V)
	}
}

func TestSubscriptRejectsNilAndEllipsis(t *testing.T) {
	tb := table.New()
	if _, err := tb.Subscript(value.Nil, true); err == nil {
		t.Fatal("expected error for nil key")
	}
	if _, err := tb.Subscript(value.Ellipsis{}, true); err == nil {
		t.Fatal("expected error for ellipsis key")
	}
}

func TestSubscriptDoubleWithIntegralValueUsesIntBucket(t *testing.T) {
	tb := table.New()
	if err := tb.SetField(value.Double(3), value.Str("three")); err != nil {
		t.Fatal(err)
	}
	c, err := tb.Subscript(value.Int(3), false)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := value.AsStr(c.V)
	if s != "three" {
		t.Fatalf("got %q", s)
	}
}

func TestBorder(t *testing.T) {
	tb := table.New()
	for i := int64(1); i <= 5; i++ {
		if err := tb.SetField(value.Int(i), value.Bool(true)); err != nil {
			t.Fatal(err)
		}
	}
	if got := tb.Border(); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestBorderEmptyTable(t *testing.T) {
	tb := table.New()
	if got := tb.Border(); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestAppendPositional(t *testing.T) {
	tb := table.New()
	tb.AppendPositional(value.Int(10))
	tb.AppendPositional(value.Int(20))
	tb.AppendPositional(value.Int(30))
	if got := tb.Border(); got != 3 {
		t.Fatalf("got border %d, want 3", got)
	}
	c, _ := tb.Subscript(value.Int(2), false)
	n, _ := value.AsInt(c.V)
	if n != 20 {
		t.Fatalf("got %d, want 20", n)
	}
}

func TestIdentityKeyedByHeapObject(t *testing.T) {
	outer := table.New()
	inner := table.New()
	if err := outer.SetField(inner, value.Str("nested")); err != nil {
		t.Fatal(err)
	}
	c, err := outer.Subscript(inner, false)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := value.AsStr(c.V)
	if s != "nested" {
		t.Fatalf("got %q", s)
	}

	other := table.New()
	c2, err := outer.Subscript(other, false)
	if err != nil {
		t.Fatal(err)
	}
	if c2.V.Kind() != value.KindNil {
		t.Fatal("a distinct table identity must not alias the first table's slot")
	}
}

func TestTableEqualityByIdentity(t *testing.T) {
	a := table.New()
	b := table.New()
	if value.Equal(a, b, 1e-9) {
		t.Fatal("distinct tables must not be equal")
	}
	if !value.Equal(a, a, 1e-9) {
		t.Fatal("a table must equal itself")
	}
}
