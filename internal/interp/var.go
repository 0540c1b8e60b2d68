package interp

import "github.com/noxlang/nox/internal/value"

// varKind discriminates the three shapes a Var union can take: a plain
// value, a live Cell reference, or a list of values (produced only by
// multi-return calls and `...` expansion).
type varKind int

const (
	varRValue varKind = iota
	varLValue
	varList
)

// Var is the result of evaluating an expression: a discriminated union
// of RValue(Value), LValue(Cell&), or List(values). Do not model this
// with inheritance — it is a flat tagged union, matched on kind.
type Var struct {
	kind varKind
	val  value.Value
	cell *value.Cell
	list []value.Value
}

func rv(v value.Value) Var              { return Var{kind: varRValue, val: v} }
func lv(c *value.Cell) Var              { return Var{kind: varLValue, cell: c} }
func listVar(vs []value.Value) Var      { return Var{kind: varList, list: vs} }

// Value collapses any Var shape down to a single Value: an LValue reads
// its Cell, a List takes its first element (or Nil if empty), an RValue
// is already a Value.
func (v Var) Value() value.Value {
	switch v.kind {
	case varLValue:
		return v.cell.V
	case varList:
		if len(v.list) == 0 {
			return value.Nil
		}
		return v.list[0]
	default:
		if v.val == nil {
			return value.Nil
		}
		return v.val
	}
}

// Expand returns the full value sequence a Var stands for: a List's
// entire slice, or a one-element slice of Value for RValue/LValue. Used
// when a Var appears as the trailing element of an expression list,
// where a multi-value call or `...` should expand instead of collapse.
func (v Var) Expand() []value.Value {
	if v.kind == varList {
		return v.list
	}
	return []value.Value{v.Value()}
}
