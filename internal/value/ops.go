package value

import "math"

// Neg implements unary `-`: negates a numeric operand directly; a String
// operand first coerces via from-string-to-number.
func Neg(v Value) (Value, error) {
	switch x := v.(type) {
	case intValue:
		return Int(-int64(x)), nil
	case doubleValue:
		return Double(-float64(x)), nil
	case stringValue:
		n, err := FromStringToNumber(x, false)
		if err != nil {
			return nil, err
		}
		return Neg(n)
	default:
		return nil, badType("cannot negate %s", v.Kind())
	}
}

// BNot implements unary `~` (bitwise not) on weak-int(v).
func BNot(v Value, allowDoubleToInt bool) (Value, error) {
	n, err := WeakInt(v, allowDoubleToInt)
	if err != nil {
		return nil, err
	}
	return Int(^n), nil
}

// Not implements unary `not`, logical-not on weak-bool(v).
func Not(v Value) Value { return Bool(!WeakBool(v)) }

// Len implements unary `#`: byte length for String, border for Table.
func Len(v Value) (Value, error) {
	switch x := v.(type) {
	case stringValue:
		return Int(int64(len(x))), nil
	case Table:
		return Int(x.Border()), nil
	default:
		return nil, badType("cannot take length of %s", v.Kind())
	}
}

// Add implements binary `+`: Int+Int stays Int, else both operands widen
// via weak-double and the result is Double.
func Add(a, b Value) (Value, error) {
	return intOrDouble(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

// Sub implements binary `-` with the same Int/Double promotion as Add.
func Sub(a, b Value) (Value, error) {
	return intOrDouble(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

// Mul implements binary `*` with the same Int/Double promotion as Add.
func Mul(a, b Value) (Value, error) {
	return intOrDouble(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func intOrDouble(a, b Value, intOp func(int64, int64) int64, dblOp func(float64, float64) float64) (Value, error) {
	ai, aIsInt := AsInt(a)
	bi, bIsInt := AsInt(b)
	if aIsInt && bIsInt {
		return Int(intOp(ai, bi)), nil
	}
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Double(dblOp(af, bf)), nil
}

// Div implements binary `/`: always Double.
func Div(a, b Value) (Value, error) {
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Double(af / bf), nil
}

// FloorDiv implements binary `//`: Int//Int stays Int (floor division);
// otherwise both operands widen to Double and the result is floor(a/b).
func FloorDiv(a, b Value) (Value, error) {
	ai, aIsInt := AsInt(a)
	bi, bIsInt := AsInt(b)
	if aIsInt && bIsInt {
		if bi == 0 {
			return nil, badType("attempt to perform 'n//0'")
		}
		q := ai / bi
		if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
			q--
		}
		return Int(q), nil
	}
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Double(math.Floor(af / bf)), nil
}

// Mod implements binary `%`: Int%Int stays Int; otherwise both operands
// widen to Double and the result follows Lua's floored modulo rather than
// Go's truncated one: `a - floor(a/b)*b`.
func Mod(a, b Value) (Value, error) {
	ai, aIsInt := AsInt(a)
	bi, bIsInt := AsInt(b)
	if aIsInt && bIsInt {
		if bi == 0 {
			return nil, badType("attempt to perform 'n%%0'")
		}
		r := ai % bi
		if r != 0 && ((r < 0) != (bi < 0)) {
			r += bi
		}
		return Int(r), nil
	}
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Double(af - math.Floor(af/bf)*bf), nil
}

// Pow implements binary `^`: always Double.
func Pow(a, b Value) (Value, error) {
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Double(math.Pow(af, bf)), nil
}

// Concat implements binary `..`: string concatenation via as-string on
// both operands.
func Concat(a, b Value) (Value, error) {
	as, err := AsString(a)
	if err != nil {
		return nil, err
	}
	bs, err := AsString(b)
	if err != nil {
		return nil, err
	}
	return Str(as + bs), nil
}

func bitwise(a, b Value, allowDoubleToInt bool, op func(int64, int64) int64) (Value, error) {
	ai, err := WeakInt(a, allowDoubleToInt)
	if err != nil {
		return nil, err
	}
	bi, err := WeakInt(b, allowDoubleToInt)
	if err != nil {
		return nil, err
	}
	return Int(op(ai, bi)), nil
}

// BAnd, BOr, BXor, Shl, Shr implement the bitwise binary operators: both
// operands via weak-int, result Int.
func BAnd(a, b Value, allowDoubleToInt bool) (Value, error) {
	return bitwise(a, b, allowDoubleToInt, func(x, y int64) int64 { return x & y })
}

func BOr(a, b Value, allowDoubleToInt bool) (Value, error) {
	return bitwise(a, b, allowDoubleToInt, func(x, y int64) int64 { return x | y })
}

func BXor(a, b Value, allowDoubleToInt bool) (Value, error) {
	return bitwise(a, b, allowDoubleToInt, func(x, y int64) int64 { return x ^ y })
}

func Shl(a, b Value, allowDoubleToInt bool) (Value, error) {
	return bitwise(a, b, allowDoubleToInt, func(x, y int64) int64 { return shiftLeft(x, y) })
}

func Shr(a, b Value, allowDoubleToInt bool) (Value, error) {
	return bitwise(a, b, allowDoubleToInt, func(x, y int64) int64 { return shiftLeft(x, -y) })
}

// shiftLeft matches Lua 5.3's semantics for `<<`/`>>`: a negative shift
// count shifts the other way, a count of 64 or more in either direction
// yields 0, and `a >> n` is `a << -n`.
func shiftLeft(a, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) << uint(n))
	}
	return int64(uint64(a) >> uint(-n))
}

// Lt, Le, Gt, Ge implement the relational operators: both operands via
// weak-double.
func Lt(a, b Value) (Value, error) { return compare(a, b, func(x, y float64) bool { return x < y }) }
func Le(a, b Value) (Value, error) { return compare(a, b, func(x, y float64) bool { return x <= y }) }
func Gt(a, b Value) (Value, error) { return compare(a, b, func(x, y float64) bool { return x > y }) }
func Ge(a, b Value) (Value, error) { return compare(a, b, func(x, y float64) bool { return x >= y }) }

func compare(a, b Value, op func(float64, float64) bool) (Value, error) {
	af, err := WeakDouble(a)
	if err != nil {
		return nil, err
	}
	bf, err := WeakDouble(b)
	if err != nil {
		return nil, err
	}
	return Bool(op(af, bf)), nil
}

// Eq and Ne implement `==`/`~=` via Equal.
func Eq(a, b Value, epsilon float64) Value { return Bool(Equal(a, b, epsilon)) }
func Ne(a, b Value, epsilon float64) Value { return Bool(!Equal(a, b, epsilon)) }

// AndShortCircuits and OrShortCircuits report whether the `and`/`or`
// short-circuit rule lets the evaluator skip the right operand: `and`
// stops (returning left unevaluated-right) when left is falsy, `or`
// stops when left is truthy. The evaluator returns the identity of the
// already-evaluated left operand in that case, not a derived bool.
func AndShortCircuits(left Value) bool { return !WeakBool(left) }
func OrShortCircuits(left Value) bool  { return WeakBool(left) }
