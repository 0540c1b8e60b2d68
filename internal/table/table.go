// Package table implements the table container: a mapping from
// non-Nil, non-NaN keys to non-Nil values, stored as several per-key-type
// sub-maps rather than one polymorphic map, the same way a runtime
// dedicates a concrete Go container to each distinct aggregate shape
// instead of flattening them into one generic value.
package table

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/noxlang/nox/internal/value"
)

var nextHeapID uint64

func allocHeapID() uint64 { return atomic.AddUint64(&nextHeapID, 1) }

// Table is the concrete heap container behind value.Table. A *Table
// satisfies value.Table, so it can be stored directly as a value.Value.
type Table struct {
	id       uint64
	identity uuid.UUID

	ints    map[int64]*value.Cell
	doubles map[float64]*value.Cell
	bools   [2]*value.Cell // index 0 = false, 1 = true
	strings map[string]*value.Cell

	idents    map[uint64]*value.Cell
	identKeys map[uint64]value.Value // id -> original key, for Keys()

	nilSentinel *value.Cell
	autoIndex   int64
}

// New allocates an empty table with a fresh heap identity.
func New() *Table {
	return &Table{
		id:          allocHeapID(),
		identity:    value.NewIdentity(),
		nilSentinel: value.NewCell(value.Nil),
	}
}

func (t *Table) Kind() value.Kind      { return value.KindTable }
func (t *Table) HeapID() uint64        { return t.id }
func (t *Table) Identity() uuid.UUID   { return t.identity }
func (t *Table) String() string        { return fmt.Sprintf("table: %s", t.identity) }

// Dot returns the Cell for a string key. On miss it
// returns a shared Nil sentinel unless ensure is set, in which case a
// fresh Nil Cell is inserted and returned so the caller can mutate it in
// place (used by assignment LHS resolution).
func (t *Table) Dot(name string, ensure bool) *value.Cell {
	if t.strings != nil {
		if c, ok := t.strings[name]; ok {
			return c
		}
	}
	if !ensure {
		return t.nilSentinel
	}
	if t.strings == nil {
		t.strings = make(map[string]*value.Cell)
	}
	c := value.NewCell(value.Nil)
	t.strings[name] = c
	return c
}

// Subscript dispatches on the key's variant. Nil and
// Ellipsis keys are rejected.
func (t *Table) Subscript(key value.Value, ensure bool) (*value.Cell, error) {
	switch k := key.(type) {
	case value.HeapObject:
		return t.identCell(k, ensure), nil
	default:
		switch key.Kind() {
		case value.KindNil:
			return nil, &value.OpError{Kind: "bad-type", Message: "table index is nil"}
		case value.KindEllipsis:
			return nil, &value.OpError{Kind: "bad-type", Message: "table index is an ellipsis"}
		case value.KindString:
			s, _ := value.AsStr(key)
			return t.Dot(s, ensure), nil
		case value.KindInt:
			n, _ := value.AsInt(key)
			return t.intCell(n, ensure), nil
		case value.KindDouble:
			f, _ := value.AsDouble(key)
			if math.IsNaN(f) {
				return nil, &value.OpError{Kind: "bad-type", Message: "table index is NaN"}
			}
			if i := int64(f); float64(i) == f {
				return t.intCell(i, ensure), nil
			}
			return t.doubleCell(f, ensure), nil
		case value.KindBool:
			b, _ := value.AsBool(key)
			return t.boolCell(b, ensure), nil
		default:
			return nil, &value.OpError{Kind: "bad-type", Message: "unsupported table key kind"}
		}
	}
}

func (t *Table) intCell(n int64, ensure bool) *value.Cell {
	if t.ints != nil {
		if c, ok := t.ints[n]; ok {
			return c
		}
	}
	if !ensure {
		return t.nilSentinel
	}
	if t.ints == nil {
		t.ints = make(map[int64]*value.Cell)
	}
	c := value.NewCell(value.Nil)
	t.ints[n] = c
	return c
}

func (t *Table) doubleCell(f float64, ensure bool) *value.Cell {
	if t.doubles != nil {
		if c, ok := t.doubles[f]; ok {
			return c
		}
	}
	if !ensure {
		return t.nilSentinel
	}
	if t.doubles == nil {
		t.doubles = make(map[float64]*value.Cell)
	}
	c := value.NewCell(value.Nil)
	t.doubles[f] = c
	return c
}

func (t *Table) boolCell(b bool, ensure bool) *value.Cell {
	idx := 0
	if b {
		idx = 1
	}
	if t.bools[idx] != nil {
		return t.bools[idx]
	}
	if !ensure {
		return t.nilSentinel
	}
	c := value.NewCell(value.Nil)
	t.bools[idx] = c
	return c
}

func (t *Table) identCell(k value.HeapObject, ensure bool) *value.Cell {
	id := k.HeapID()
	if t.idents != nil {
		if c, ok := t.idents[id]; ok {
			return c
		}
	}
	if !ensure {
		return t.nilSentinel
	}
	if t.idents == nil {
		t.idents = make(map[uint64]*value.Cell)
		t.identKeys = make(map[uint64]value.Value)
	}
	c := value.NewCell(value.Nil)
	t.idents[id] = c
	t.identKeys[id] = k
	return c
}

// SetField assigns val to key, inserting or updating as needed.
// Assigning Nil removes the entry (implemented here as
// "becomes absent on read", satisfying the same observable contract
// without an extra delete pass); Nil and Ellipsis keys are rejected.
func (t *Table) SetField(key, val value.Value) error {
	c, err := t.Subscript(key, true)
	if err != nil {
		return err
	}
	c.V = val
	return nil
}

// Border implements the `#` witness: the smallest
// positive integer key `n` such that `n+1` is absent, or 0 if key 1 is
// absent.
func (t *Table) Border() int64 {
	if t.ints == nil || !t.present(1) {
		return 0
	}
	n := int64(1)
	for t.present(n + 1) {
		n++
	}
	return n
}

func (t *Table) present(n int64) bool {
	c, ok := t.ints[n]
	return ok && c.V.Kind() != value.KindNil
}

// Keys returns every currently-present key across all sub-maps, used by
// the `print` builtin's table dump (internal/interp) to enumerate a
// table's contents; it is not part of the Lua table API proper.
func (t *Table) Keys() []value.Value {
	var keys []value.Value
	for k, c := range t.ints {
		if c.V.Kind() != value.KindNil {
			keys = append(keys, value.Int(k))
		}
	}
	for k, c := range t.doubles {
		if c.V.Kind() != value.KindNil {
			keys = append(keys, value.Double(k))
		}
	}
	for i, c := range t.bools {
		if c != nil && c.V.Kind() != value.KindNil {
			keys = append(keys, value.Bool(i == 1))
		}
	}
	for k, c := range t.strings {
		if c.V.Kind() != value.KindNil {
			keys = append(keys, value.Str(k))
		}
	}
	for id, c := range t.idents {
		if c.V.Kind() != value.KindNil {
			keys = append(keys, t.identKeys[id])
		}
	}
	return keys
}

// AppendPositional assigns val to the next auto-incrementing positive
// integer key, per the table-constructor rule for keyless
// fields. The counter advances independently of any explicit integer
// keys already present, matching Lua's actual constructor semantics.
func (t *Table) AppendPositional(val value.Value) {
	t.autoIndex++
	_ = t.SetField(value.Int(t.autoIndex), val)
}

// Len reports the number of live entries across all sub-maps (distinct
// from Border's `#` semantics).
func (t *Table) Len() int { return len(t.Keys()) }

// AllCells returns every Cell owned directly by this table, across all
// sub-maps, regardless of whether it currently holds Nil.
// internal/interp's refcount destructor callback uses this to cascade a
// RemoveReference over every value a destroyed table was holding.
func (t *Table) AllCells() []*value.Cell {
	cells := make([]*value.Cell, 0, len(t.ints)+len(t.doubles)+len(t.strings)+len(t.idents)+2)
	for _, c := range t.ints {
		cells = append(cells, c)
	}
	for _, c := range t.doubles {
		cells = append(cells, c)
	}
	for _, c := range t.bools {
		if c != nil {
			cells = append(cells, c)
		}
	}
	for _, c := range t.strings {
		cells = append(cells, c)
	}
	for _, c := range t.idents {
		cells = append(cells, c)
	}
	return cells
}
