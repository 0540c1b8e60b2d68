package value

import "math"

// Equal implements the `==` rule set. epsilon controls
// the ULP-style tolerance used when comparing two Doubles (or a Double
// and an Int, after widening): `|a-b| <= epsilon*max(1, |a|, |b|)`. It is
// an internal/config.Config field threaded down from the call site so
// the tolerance can be tuned without this leaf package depending on
// config.
func Equal(a, b Value, epsilon float64) bool {
	if ha, ok := a.(HeapObject); ok {
		hb, ok := b.(HeapObject)
		return ok && ha.Identity() == hb.Identity()
	}
	if _, ok := b.(HeapObject); ok {
		return false
	}
	switch x := a.(type) {
	case nilValue:
		_, ok := b.(nilValue)
		return ok
	case boolValue:
		if y, ok := b.(boolValue); ok {
			return x == y
		}
		return bool(x) == WeakBool(b)
	case stringValue:
		if y, ok := b.(boolValue); ok {
			return WeakBool(x) == bool(y)
		}
		y, ok := b.(stringValue)
		return ok && x == y
	case intValue, doubleValue:
		if y, ok := b.(boolValue); ok {
			return WeakBool(x) == bool(y)
		}
		return numericEqual(a, b, epsilon)
	default:
		return false
	}
}

func numericEqual(a, b Value, epsilon float64) bool {
	af, aIsNum := numericAsDouble(a)
	bf, bIsNum := numericAsDouble(b)
	if !aIsNum || !bIsNum {
		return false
	}
	ai, aIsInt := AsInt(a)
	bi, bIsInt := AsInt(b)
	if aIsInt && bIsInt {
		return ai == bi
	}
	if epsilon <= 0 {
		return af == bf
	}
	tol := epsilon * math.Max(1, math.Max(math.Abs(af), math.Abs(bf)))
	return math.Abs(af-bf) <= tol
}

func numericAsDouble(v Value) (float64, bool) {
	switch x := v.(type) {
	case intValue:
		return float64(x), true
	case doubleValue:
		return float64(x), true
	default:
		return 0, false
	}
}
