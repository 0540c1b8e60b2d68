package interp

import (
	"fmt"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/token"
	"github.com/noxlang/nox/internal/value"
)

// errf builds a RuntimeError of the given kind at pos, with the current
// call stack attached as a traceback.
func (in *Interp) errf(kind srcerr.Kind, pos token.Position, format string, args ...any) error {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf("%s (at %s)", fmt.Sprintf(format, args...), pos), Trace: in.snapshotTrace()}
}

// snapshotTrace copies the live call-stack trace so a RuntimeError keeps
// the stack shape as it was at the moment of the failure, unaffected by
// later pushes/pops as the error propagates back up.
func (in *Interp) snapshotTrace() srcerr.Trace {
	return append(srcerr.Trace(nil), in.trace...)
}

// wrapValueErr lifts a leaf-package error (internal/value's *OpError, or
// one already produced by this package) into a RuntimeError carrying a
// traceback. OpError.Kind strings match srcerr.Kind's vocabulary exactly,
// so the conversion is a direct cast.
func (in *Interp) wrapValueErr(err error, pos token.Position) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RuntimeError); ok {
		return re
	}
	if oe, ok := err.(*value.OpError); ok {
		return &RuntimeError{Kind: srcerr.Kind(oe.Kind), Msg: fmt.Sprintf("%s (at %s)", oe.Message, pos), Trace: in.snapshotTrace()}
	}
	return err
}

// indexRead implements the read half of `obj[key]`: indexing Nil raises
// nil-dot, a non-Table raises bad-dot-access, a Nil or Ellipsis key
// raises bad-type (via Table.Subscript).
func (in *Interp) indexRead(obj, key value.Value, pos token.Position) (value.Value, error) {
	switch obj.Kind() {
	case value.KindNil:
		return nil, in.errf(srcerr.KindNilDot, pos, "attempt to index a nil value")
	case value.KindTable:
		t := obj.(value.Table)
		c, err := t.Subscript(key, false)
		if err != nil {
			return nil, in.wrapValueErr(err, pos)
		}
		return c.V, nil
	default:
		return nil, in.errf(srcerr.KindBadDotAccess, pos, "attempt to index a %s value", obj.Kind())
	}
}

// dotRead implements the read half of `obj.name`.
func (in *Interp) dotRead(obj value.Value, name string, pos token.Position) (value.Value, error) {
	switch obj.Kind() {
	case value.KindNil:
		return nil, in.errf(srcerr.KindNilDot, pos, "attempt to index a nil value (field %q)", name)
	case value.KindTable:
		t := obj.(value.Table)
		return t.Dot(name, false).V, nil
	default:
		return nil, in.errf(srcerr.KindBadDotAccess, pos, "attempt to index a %s value (field %q)", obj.Kind(), name)
	}
}

// tableSetField writes val into t[key], maintaining the heap refcount
// invariant: the new value gains a reference, whatever the slot held
// before loses one.
func (in *Interp) tableSetField(t value.Table, key, val value.Value) error {
	c, err := t.Subscript(key, true)
	if err != nil {
		return err
	}
	old := c.V
	c.V = val
	in.RC.AddReference(val)
	in.RC.RemoveReference(old)
	return nil
}

// resolveAssignCell resolves an assignment-statement LHS expression to
// the Cell it should write through. A bare name not already bound as a
// local or upvalue creates a global Cell on demand.
func (in *Interp) resolveAssignCell(e ast.Expr) (*value.Cell, error) {
	switch x := e.(type) {
	case *ast.NameExpr:
		if c := in.lookup(x.Name); c != nil {
			return c, nil
		}
		return in.lookupOrCreateGlobal(x.Name), nil

	case *ast.IndexExpr:
		objVar, err := in.evalExpr(x.Object)
		if err != nil {
			return nil, err
		}
		keyVar, err := in.evalExpr(x.Key)
		if err != nil {
			return nil, err
		}
		obj := objVar.Value()
		switch obj.Kind() {
		case value.KindNil:
			return nil, in.errf(srcerr.KindNilDot, x.Pos(), "attempt to index a nil value")
		case value.KindTable:
			t := obj.(value.Table)
			c, err := t.Subscript(keyVar.Value(), true)
			if err != nil {
				return nil, in.wrapValueErr(err, x.Pos())
			}
			return c, nil
		default:
			return nil, in.errf(srcerr.KindBadDotAccess, x.Pos(), "attempt to index a %s value", obj.Kind())
		}

	case *ast.DotExpr:
		objVar, err := in.evalExpr(x.Object)
		if err != nil {
			return nil, err
		}
		obj := objVar.Value()
		switch obj.Kind() {
		case value.KindNil:
			return nil, in.errf(srcerr.KindNilDot, x.Pos(), "attempt to index a nil value (field %q)", x.Name)
		case value.KindTable:
			t := obj.(value.Table)
			return t.Dot(x.Name, true), nil
		default:
			return nil, in.errf(srcerr.KindBadDotAccess, x.Pos(), "attempt to index a %s value (field %q)", obj.Kind(), x.Name)
		}

	default:
		return nil, in.errf(srcerr.KindBadType, e.Pos(), "expression is not assignable")
	}
}
