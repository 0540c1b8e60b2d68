package value_test

import (
	"testing"

	"github.com/noxlang/nox/internal/value"
)

func TestWeakIntFromString(t *testing.T) {
	n, err := value.WeakInt(value.Str("10"), true)
	if err != nil || n != 10 {
		t.Fatalf("got %v, %v", n, err)
	}
	if _, err := value.WeakInt(value.Str("3.5"), true); err == nil {
		t.Fatal("expected bad-type for non-integral string")
	}
}

func TestWeakBoolTruthiness(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Nil, false},
		{value.False, false},
		{value.True, true},
		{value.Int(0), true},
		{value.Double(0), true},
		{value.Str(""), true},
	}
	for _, c := range cases {
		if got := value.WeakBool(c.v); got != c.want {
			t.Errorf("WeakBool(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestAddIntClosure(t *testing.T) {
	sum, err := value.Add(value.Int(2), value.Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Kind() != value.KindInt {
		t.Fatalf("got kind %v, want int", sum.Kind())
	}
	n, _ := value.AsInt(sum)
	if n != 5 {
		t.Fatalf("got %d, want 5", n)
	}
}

func TestAddStringPromotesToDouble(t *testing.T) {
	sum, err := value.Add(value.Str("2"), value.Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Kind() != value.KindDouble {
		t.Fatalf("got kind %v, want double", sum.Kind())
	}
	f, _ := value.AsDouble(sum)
	if f != 5.0 {
		t.Fatalf("got %v, want 5.0", f)
	}
}

func TestFloorDivIntVsString(t *testing.T) {
	intResult, err := value.FloorDiv(value.Int(10), value.Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if intResult.Kind() != value.KindInt {
		t.Fatalf("got kind %v, want int", intResult.Kind())
	}
	n, _ := value.AsInt(intResult)
	if n != 3 {
		t.Fatalf("got %d, want 3", n)
	}

	dblResult, err := value.FloorDiv(value.Str("10"), value.Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if dblResult.Kind() != value.KindDouble {
		t.Fatalf("got kind %v, want double", dblResult.Kind())
	}
}

func TestFloorDivNegativeRoundsTowardNegativeInfinity(t *testing.T) {
	result, err := value.FloorDiv(value.Int(-7), value.Int(2))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := value.AsInt(result)
	if n != -4 {
		t.Fatalf("got %d, want -4", n)
	}
}

func TestShortCircuitIdentity(t *testing.T) {
	left := value.Str("hello")
	if !value.OrShortCircuits(left) {
		t.Fatal("expected truthy string to short-circuit `or`")
	}
	if value.AndShortCircuits(left) {
		t.Fatal("truthy string should not short-circuit `and`")
	}
}

func TestEqualityIntDoubleCross(t *testing.T) {
	if !value.Equal(value.Int(3), value.Double(3.0), 1e-9) {
		t.Fatal("expected 3 == 3.0")
	}
	if value.Equal(value.Str("3"), value.Int(3), 1e-9) {
		t.Fatal("expected no string<->number coercion in equality")
	}
}

func TestEqualityDoubleTolerance(t *testing.T) {
	a := value.Double(0.1 + 0.2)
	b := value.Double(0.3)
	if !value.Equal(a, b, 1e-9) {
		t.Fatal("expected near-equal doubles to compare equal within epsilon")
	}
}

func TestConcatStringification(t *testing.T) {
	got, err := value.Concat(value.Int(1), value.Double(2.5))
	if err != nil {
		t.Fatal(err)
	}
	s, _ := value.AsStr(got)
	if s != "12.5" {
		t.Fatalf("got %q", s)
	}
}

func TestLenString(t *testing.T) {
	got, err := value.Len(value.Str("hello"))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := value.AsInt(got)
	if n != 5 {
		t.Fatalf("got %d", n)
	}
}

func TestCellRefcounting(t *testing.T) {
	c := value.NewCell(value.Int(1))
	c.Retain()
	if c.Release() {
		t.Fatal("cell should still have one reference left")
	}
	if !c.Release() {
		t.Fatal("cell should now be at zero references")
	}
}

func TestBitwiseShift(t *testing.T) {
	got, err := value.Shl(value.Int(1), value.Int(4), true)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := value.AsInt(got)
	if n != 16 {
		t.Fatalf("got %d, want 16", n)
	}
}
