// Package hostfunc implements the host-language function interface: a
// reflect-based Converter that lets a plain Go function be registered
// under a global name and invoked through the same call protocol as a
// native Nox closure.
//
// Grounded on internal/interp/marshal.go (a reflect.Kind switch
// converting between the scripting value union and native Go types) and
// a registry of named wrapped functions implementing the Value
// interface, adapted from a statically-typed host language's
// ARRAY/RECORD/FUNCTION POINTER bridging to Lua's dynamically typed
// Table/Function values.
package hostfunc

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/noxlang/nox/internal/value"
)

// Converter holds no state; it exists so marshalling can be extended
// with embedder-specific hooks later without changing ToGo/ToValue's
// call sites.
type Converter struct{}

// ToGo converts v to a Go value of targetType, the parameter-binding
// half of a host call. Argument count is checked by the caller
// (Func.Invoke); ToGo only validates the type of one argument.
func (Converter) ToGo(v value.Value, targetType reflect.Type) (reflect.Value, error) {
	switch targetType.Kind() {
	case reflect.Int64, reflect.Int, reflect.Int32, reflect.Int16, reflect.Int8:
		n, err := value.WeakInt(v, true)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected a number, got %s", v.Kind())
		}
		out := reflect.New(targetType).Elem()
		out.SetInt(n)
		return out, nil
	case reflect.Float64, reflect.Float32:
		f, err := value.WeakDouble(v)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected a number, got %s", v.Kind())
		}
		out := reflect.New(targetType).Elem()
		out.SetFloat(f)
		return out, nil
	case reflect.String:
		s, err := value.AsString(v)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected a string, got %s", v.Kind())
		}
		return reflect.ValueOf(s), nil
	case reflect.Bool:
		if v.Kind() != value.KindBool {
			return reflect.Value{}, fmt.Errorf("expected a bool, got %s", v.Kind())
		}
		b, _ := value.AsBool(v)
		return reflect.ValueOf(b), nil
	case reflect.Slice:
		t, ok := v.(value.Table)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected a table, got %s", v.Kind())
		}
		n := int(t.Border())
		elemType := targetType.Elem()
		out := reflect.MakeSlice(targetType, n, n)
		for i := 1; i <= n; i++ {
			c, err := t.Subscript(value.Int(int64(i)), false)
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := (Converter{}).ToGo(c.V, elemType)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("table element %d: %w", i, err)
			}
			out.Index(i - 1).Set(ev)
		}
		return out, nil
	case reflect.Interface:
		return reflect.ValueOf(interfaceValue(v)), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported host parameter type %s", targetType)
	}
}

// interfaceValue produces a plain `any` for a Value when the Go
// signature asks for `interface{}`, so a host function can accept
// heterogeneous arguments without committing to one reflect.Kind.
func interfaceValue(v value.Value) any {
	switch v.Kind() {
	case value.KindInt:
		n, _ := value.AsInt(v)
		return n
	case value.KindDouble:
		f, _ := value.AsDouble(v)
		return f
	case value.KindString:
		s, _ := value.AsStr(v)
		return s
	case value.KindBool:
		b, _ := value.AsBool(v)
		return b
	case value.KindNil:
		return nil
	default:
		return v
	}
}

// ToValue converts a Go return value back to a Value, the return-path
// half of a host call.
func (Converter) ToValue(goVal any) (value.Value, error) {
	if goVal == nil {
		return value.Nil, nil
	}
	rv := reflect.ValueOf(goVal)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return value.Double(rv.Float()), nil
	case reflect.String:
		return value.Str(rv.String()), nil
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	default:
		return nil, fmt.Errorf("unsupported host return type %T", goVal)
	}
}

// Func wraps a Go function value with reflection so it satisfies
// value.Function, the same call surface as a Nox closure.
type Func struct {
	id       uint64
	identity uuid.UUID
	name     string
	fn       reflect.Value
	fnType   reflect.Type
	conv     Converter
}

// New wraps fn (any Go func value) as a host Function with heapID as
// its refcount-registry identity.
func New(heapID uint64, name string, fn any) (*Func, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("hostfunc.New: %T is not a function", fn)
	}
	return &Func{id: heapID, identity: value.NewIdentity(), name: name, fn: rv, fnType: rv.Type()}, nil
}

func (f *Func) Kind() value.Kind     { return value.KindFunction }
func (f *Func) HeapID() uint64       { return f.id }
func (f *Func) Identity() uuid.UUID  { return f.identity }
func (f *Func) String() string       { return fmt.Sprintf("function: host %s", f.name) }

// Invoke marshals args to the wrapped Go function's parameter types,
// calls it, recovers a panic into a runtime error instead of crashing
// the embedding process, and marshals its results back.
func (f *Func) Invoke(args []value.Value) (results []value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host function %q panicked: %v", f.name, r)
		}
	}()

	numIn := f.fnType.NumIn()
	variadic := f.fnType.IsVariadic()
	if variadic {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("host function %q expects at least %d arguments, got %d", f.name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("host function %q expects %d arguments, got %d", f.name, numIn, len(args))
	}

	in := make([]reflect.Value, 0, numIn)
	for i := 0; i < numIn; i++ {
		paramType := f.fnType.In(i)
		if variadic && i == numIn-1 {
			elemType := paramType.Elem()
			for j := i; j < len(args); j++ {
				gv, cerr := f.conv.ToGo(args[j], elemType)
				if cerr != nil {
					return nil, fmt.Errorf("argument %d: %w", j, cerr)
				}
				in = append(in, gv)
			}
			break
		}
		gv, cerr := f.conv.ToGo(args[i], paramType)
		if cerr != nil {
			return nil, fmt.Errorf("argument %d: %w", i, cerr)
		}
		in = append(in, gv)
	}

	out := f.fn.Call(in)
	results = make([]value.Value, 0, len(out))
	errType := reflect.TypeOf((*error)(nil)).Elem()
	for i, o := range out {
		if f.fnType.Out(i) == errType {
			if !o.IsNil() {
				return nil, o.Interface().(error)
			}
			continue
		}
		rv, cerr := f.conv.ToValue(o.Interface())
		if cerr != nil {
			return nil, cerr
		}
		results = append(results, rv)
	}
	return results, nil
}
