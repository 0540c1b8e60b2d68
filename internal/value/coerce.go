package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OpError is a value-level coercion/operator failure. It carries a Kind
// string matching internal/srcerr's Kind vocabulary ("bad-type" and
// friends) without this leaf package depending on srcerr/token — the
// evaluator attaches a source position when it wraps an OpError for the
// diagnostics surface.
type OpError struct {
	Kind    string
	Message string
}

func (e *OpError) Error() string { return e.Message }

func badType(format string, args ...any) error {
	return &OpError{Kind: "bad-type", Message: fmt.Sprintf(format, args...)}
}

// WeakInt implements the weak-int coercion contract: Int
// passes through; a Double with zero fractional part truncates to Int
// (unless allowDoubleToInt is false); a String is parsed as an integer,
// falling back to parsing as a double whose fractional part must be
// zero.
func WeakInt(v Value, allowDoubleToInt bool) (int64, error) {
	switch x := v.(type) {
	case intValue:
		return int64(x), nil
	case doubleValue:
		if !allowDoubleToInt {
			return 0, badType("cannot coerce double to int (disabled)")
		}
		f := float64(x)
		if math.Trunc(f) != f {
			return 0, badType("double %v has a fractional part, cannot coerce to int", f)
		}
		return int64(f), nil
	case stringValue:
		s := strings.TrimSpace(string(x))
		if n, err := strconv.ParseInt(s, 0, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, badType("string %q does not parse as a number", s)
		}
		if math.Trunc(f) != f {
			return 0, badType("string %q parses as a non-integral number", s)
		}
		return int64(f), nil
	default:
		return 0, badType("%s has no integer representation", v.Kind())
	}
}

// WeakDouble implements the weak-double coercion contract.
func WeakDouble(v Value) (float64, error) {
	switch x := v.(type) {
	case doubleValue:
		return float64(x), nil
	case intValue:
		return float64(x), nil
	case stringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return 0, badType("string %q does not parse as a number", string(x))
		}
		return f, nil
	default:
		return 0, badType("%s has no double representation", v.Kind())
	}
}

// WeakBool implements the weak-bool coercion contract: only Nil and
// Bool(false) are falsy; everything else, including 0, 0.0, and "", is
// truthy (matching Lua, not C).
func WeakBool(v Value) bool {
	switch x := v.(type) {
	case nilValue:
		return false
	case boolValue:
		return bool(x)
	default:
		return true
	}
}

// AsString implements the as-string coercion contract used by `..` and
// by the `tostring`/`print` builtins. Reference types format as
// "type: <identity>".
func AsString(v Value) (string, error) {
	switch x := v.(type) {
	case stringValue:
		return string(x), nil
	case intValue:
		return x.String(), nil
	case doubleValue:
		return x.String(), nil
	case nilValue:
		return "nil", nil
	case boolValue:
		return x.String(), nil
	case HeapObject:
		return fmt.Sprintf("%s: %s", x.Kind(), x.Identity()), nil
	default:
		return "", badType("%s cannot be converted to a string", v.Kind())
	}
}

// FromStringToNumber implements the from-string-to-number coercion, used
// by unary `-` on a String operand: parse as Int first unless
// forceDouble, then fall back to Double.
func FromStringToNumber(v Value, forceDouble bool) (Value, error) {
	s, ok := AsStr(v)
	if !ok {
		return nil, badType("%s is not a string", v.Kind())
	}
	s = strings.TrimSpace(s)
	if !forceDouble {
		if n, err := strconv.ParseInt(s, 0, 64); err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, badType("string %q does not parse as a number", s)
	}
	return Double(f), nil
}
