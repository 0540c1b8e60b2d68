// Package value implements the tagged value model: the dynamically typed
// Value union, its weak coercion rules, and the numeric/string/logical
// operators built on top of them. It is a leaf package — it knows nothing
// about tables, scopes, or the evaluator; Table and Function are declared
// here only as narrow interfaces so that internal/table and internal/interp
// can plug concrete heap types in without an import cycle.
//
// Grounded on internal/interp/value.go (a Value interface implemented by
// several concrete *Value structs) and runtime/falsey.go (weak-bool),
// adapted from a statically-typed host's many concrete numeric/string
// types down to Lua's single dynamically-typed value union.
package value

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindTable
	KindFunction
	KindUserdata
	KindEllipsis
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindUserdata:
		return "userdata"
	case KindEllipsis:
		return "ellipsis"
	default:
		return "unknown"
	}
}

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	String() string
}

// HeapObject is implemented by the three reference-type variants (Table,
// Function, Userdata). HeapID is a process-wide unique identity used as
// the refcount registry key (internal/refcount). Identity is a uuid.UUID
// stamped on at allocation time; equality-by-identity compares it, and
// as-string's "type: <identity>" reference formatting uses it
// instead of a raw pointer or counter so printed output stays stable
// across allocator changes and is safe to expose to scripts.
type HeapObject interface {
	Value
	HeapID() uint64
	Identity() uuid.UUID
}

// Table is the narrow surface internal/table.Table must implement so that
// a *table.Table can be stored as a Value without this package importing
// internal/table (which itself imports internal/value for Cell/Value).
type Table interface {
	HeapObject
	Dot(name string, ensure bool) *Cell
	Subscript(key Value, ensure bool) (*Cell, error)
	SetField(key, val Value) error
	AppendPositional(v Value)
	Border() int64
	AllCells() []*Cell
}

// Function is the narrow surface a callable value must implement: both
// Nox closures (internal/interp) and host functions (internal/hostfunc)
// implement it.
type Function interface {
	HeapObject
	Invoke(args []Value) ([]Value, error)
}

// ---- Nil ----

type nilValue struct{}

func (nilValue) Kind() Kind     { return KindNil }
func (nilValue) String() string { return "nil" }

// Nil is the singleton Nil value, accessible without allocation.
var Nil Value = nilValue{}

// ---- Bool ----

type boolValue bool

func (b boolValue) Kind() Kind     { return KindBool }
func (b boolValue) String() string { return strconv.FormatBool(bool(b)) }

// True and False are the singleton Bool values.
var (
	True  Value = boolValue(true)
	False Value = boolValue(false)
)

// Bool returns the singleton True or False for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// AsBool extracts the underlying bool; ok is false if v is not KindBool.
func AsBool(v Value) (b bool, ok bool) {
	bv, ok := v.(boolValue)
	return bool(bv), ok
}

// ---- Int ----

type intValue int64

func (i intValue) Kind() Kind     { return KindInt }
func (i intValue) String() string { return strconv.FormatInt(int64(i), 10) }

// Int wraps a signed 64-bit integer as a Value, matching Lua 5.3's own
// 64-bit integer subtype.
func Int(n int64) Value { return intValue(n) }

// AsInt extracts the underlying int64; ok is false if v is not KindInt.
func AsInt(v Value) (n int64, ok bool) {
	iv, ok := v.(intValue)
	return int64(iv), ok
}

// ---- Double ----

type doubleValue float64

func (d doubleValue) Kind() Kind { return KindDouble }
func (d doubleValue) String() string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64)
}

// Double wraps an IEEE-754 binary64 as a Value.
func Double(f float64) Value { return doubleValue(f) }

// AsDouble extracts the underlying float64; ok is false if v is not
// KindDouble.
func AsDouble(v Value) (f float64, ok bool) {
	dv, ok := v.(doubleValue)
	return float64(dv), ok
}

// ---- String ----

type stringValue string

func (s stringValue) Kind() Kind     { return KindString }
func (s stringValue) String() string { return string(s) }

// Str wraps an immutable byte sequence as a Value.
func Str(s string) Value { return stringValue(s) }

// AsStr extracts the underlying string; ok is false if v is not
// KindString.
func AsStr(v Value) (s string, ok bool) {
	sv, ok := v.(stringValue)
	return string(sv), ok
}

// ---- Ellipsis ----

// Ellipsis is a packed sequence of Values representing a `...` varargs
// payload. It is first-class only in specific expression positions (a
// trailing position in an expression list or a table constructor field);
// the evaluator is responsible for expanding or truncating it
// appropriately.
type Ellipsis []Value

func (e Ellipsis) Kind() Kind { return KindEllipsis }
func (e Ellipsis) String() string {
	return fmt.Sprintf("ellipsis(%d)", len(e))
}

// ---- Userdata ----

// OpaqueUserdata is the minimal concrete Userdata heap type: a named,
// host-owned payload, heap-allocated and opaque, that the evaluator
// never introspects.
type OpaqueUserdata struct {
	id       uint64
	identity uuid.UUID
	TypeTag  string
	Payload  any
}

// NewUserdata allocates an opaque userdata value with a fresh heap
// identity.
func NewUserdata(id uint64, tag string, payload any) *OpaqueUserdata {
	return &OpaqueUserdata{id: id, identity: NewIdentity(), TypeTag: tag, Payload: payload}
}

func (u *OpaqueUserdata) Kind() Kind         { return KindUserdata }
func (u *OpaqueUserdata) HeapID() uint64     { return u.id }
func (u *OpaqueUserdata) Identity() uuid.UUID { return u.identity }
func (u *OpaqueUserdata) String() string {
	return fmt.Sprintf("%s: %s", u.TypeTag, u.identity)
}

// NewIdentity allocates a fresh uuid.UUID for a heap object under
// construction. Centralized here so every heap type (Table, Function,
// Userdata) stamps identities the same way.
func NewIdentity() uuid.UUID { return uuid.New() }

// ---- Cell ----

// Cell is a mutable, reference-countable storage location holding one
// Value. A binding (local, global, or table field) owns a Cell; rvalue
// expressions produce Values, never Cells directly.
//
// Cell's own refcount tracks how many bindings/closures reference the
// Cell itself, independent of internal/refcount's registry for heap
// Values (Table/Function/Userdata) that a Cell might happen to hold.
type Cell struct {
	V    Value
	refs int32
}

// NewCell allocates a Cell with an initial reference count of 1.
func NewCell(v Value) *Cell {
	if v == nil {
		v = Nil
	}
	return &Cell{V: v, refs: 1}
}

// Retain increments the Cell's reference count and returns the Cell, so
// closures can write `closed[name] = cell.Retain()`.
func (c *Cell) Retain() *Cell {
	c.refs++
	return c
}

// Release decrements the Cell's reference count and reports whether it
// reached zero (in which case the caller should drop its strong
// reference to c.V, releasing any heap object it names via
// internal/refcount).
func (c *Cell) Release() bool {
	c.refs--
	return c.refs <= 0
}

// Refs reports the current reference count, chiefly for tests.
func (c *Cell) Refs() int32 { return c.refs }

// TypeName returns the lowercase type name that Kind corresponds to:
// one of "int", "double", "string", "table", "bool", "nil" (or
// "function"/"userdata"/"ellipsis" for completeness).
func TypeName(v Value) string { return v.Kind().String() }
