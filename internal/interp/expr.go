package interp

import (
	"fmt"
	"os"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/table"
	"github.com/noxlang/nox/internal/value"
)

// evalExpr is the expression evaluator: a single exhaustive switch on the
// expression node's concrete type, never re-sniffing source text.
func (in *Interp) evalExpr(e ast.Expr) (Var, error) {
	switch x := e.(type) {
	case *ast.NilLit:
		return rv(value.Nil), nil
	case *ast.BoolLit:
		return rv(value.Bool(x.Value)), nil
	case *ast.IntLit:
		return rv(value.Int(x.Value)), nil
	case *ast.FloatLit:
		return rv(value.Double(x.Value)), nil
	case *ast.StringLit:
		return rv(value.Str(x.Value)), nil
	case *ast.VarargExpr:
		cell := in.lookup("...")
		if cell == nil {
			return listVar(nil), nil
		}
		ell, _ := cell.V.(value.Ellipsis)
		return listVar([]value.Value(ell)), nil
	case *ast.NameExpr:
		if c := in.lookup(x.Name); c != nil {
			return lv(c), nil
		}
		return rv(value.Nil), nil // unbound global read yields Nil
	case *ast.ParenExpr:
		inner, err := in.evalExpr(x.Inner)
		if err != nil {
			return Var{}, err
		}
		return rv(inner.Value()), nil // truncates a multi-value to one
	case *ast.IndexExpr:
		objVar, err := in.evalExpr(x.Object)
		if err != nil {
			return Var{}, err
		}
		keyVar, err := in.evalExpr(x.Key)
		if err != nil {
			return Var{}, err
		}
		v, err := in.indexRead(objVar.Value(), keyVar.Value(), x.Pos())
		if err != nil {
			return Var{}, err
		}
		return rv(v), nil
	case *ast.DotExpr:
		objVar, err := in.evalExpr(x.Object)
		if err != nil {
			return Var{}, err
		}
		v, err := in.dotRead(objVar.Value(), x.Name, x.Pos())
		if err != nil {
			return Var{}, err
		}
		return rv(v), nil
	case *ast.CallExpr:
		return in.evalCall(x)
	case *ast.FunctionExpr:
		return rv(in.makeClosure(x, "")), nil
	case *ast.TableConstructorExpr:
		return in.evalTableConstructor(x)
	case *ast.UnaryExpr:
		return in.evalUnary(x)
	case *ast.BinaryExpr:
		return in.evalBinary(x)
	default:
		return Var{}, in.errf(srcerr.KindBadType, e.Pos(), "unsupported expression node %T", e)
	}
}

// evalExprList evaluates exprs left to right, collapsing every element
// but the last to a single Value and expanding the last one (a trailing
// multi-value call or `...` fills successive slots).
func (in *Interp) evalExprList(exprs []ast.Expr) ([]value.Value, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]value.Value, 0, len(exprs))
	for i, e := range exprs {
		v, err := in.evalExpr(e)
		if err != nil {
			return nil, err
		}
		if i == len(exprs)-1 {
			out = append(out, v.Expand()...)
		} else {
			out = append(out, v.Value())
		}
	}
	return out, nil
}

func (in *Interp) evalUnary(x *ast.UnaryExpr) (Var, error) {
	operandVar, err := in.evalExpr(x.Operand)
	if err != nil {
		return Var{}, err
	}
	v := operandVar.Value()
	allowD2I := !in.Config.DisableDoubleToInt

	switch x.Op {
	case ast.OpNeg:
		r, err := value.Neg(v)
		if err != nil {
			return Var{}, in.wrapValueErr(err, x.Pos())
		}
		return rv(r), nil
	case ast.OpBNot:
		r, err := value.BNot(v, allowD2I)
		if err != nil {
			return Var{}, in.wrapValueErr(err, x.Pos())
		}
		return rv(r), nil
	case ast.OpNot:
		return rv(value.Not(v)), nil
	case ast.OpLen:
		r, err := value.Len(v)
		if err != nil {
			return Var{}, in.wrapValueErr(err, x.Pos())
		}
		return rv(r), nil
	default:
		return Var{}, in.errf(srcerr.KindBadType, x.Pos(), "unknown unary operator")
	}
}

// evalBinary dispatches a binary expression. `and`/`or` are handled first
// since they short-circuit and must not evaluate their right operand
// unless needed.
func (in *Interp) evalBinary(x *ast.BinaryExpr) (Var, error) {
	switch x.Op {
	case ast.OpAnd:
		leftVar, err := in.evalExpr(x.Left)
		if err != nil {
			return Var{}, err
		}
		left := leftVar.Value()
		if value.AndShortCircuits(left) {
			return rv(left), nil
		}
		rightVar, err := in.evalExpr(x.Right)
		if err != nil {
			return Var{}, err
		}
		return rv(rightVar.Value()), nil
	case ast.OpOr:
		leftVar, err := in.evalExpr(x.Left)
		if err != nil {
			return Var{}, err
		}
		left := leftVar.Value()
		if value.OrShortCircuits(left) {
			return rv(left), nil
		}
		rightVar, err := in.evalExpr(x.Right)
		if err != nil {
			return Var{}, err
		}
		return rv(rightVar.Value()), nil
	}

	leftVar, err := in.evalExpr(x.Left)
	if err != nil {
		return Var{}, err
	}
	rightVar, err := in.evalExpr(x.Right)
	if err != nil {
		return Var{}, err
	}
	a, b := leftVar.Value(), rightVar.Value()
	allowD2I := !in.Config.DisableDoubleToInt

	var res value.Value
	var opErr error
	switch x.Op {
	case ast.OpAdd:
		res, opErr = value.Add(a, b)
	case ast.OpSub:
		res, opErr = value.Sub(a, b)
	case ast.OpMul:
		res, opErr = value.Mul(a, b)
	case ast.OpDiv:
		res, opErr = value.Div(a, b)
	case ast.OpFloorDiv:
		res, opErr = value.FloorDiv(a, b)
	case ast.OpMod:
		res, opErr = value.Mod(a, b)
	case ast.OpPow:
		res, opErr = value.Pow(a, b)
	case ast.OpConcat:
		res, opErr = value.Concat(a, b)
	case ast.OpBAnd:
		res, opErr = value.BAnd(a, b, allowD2I)
	case ast.OpBOr:
		res, opErr = value.BOr(a, b, allowD2I)
	case ast.OpBXor:
		res, opErr = value.BXor(a, b, allowD2I)
	case ast.OpShl:
		res, opErr = value.Shl(a, b, allowD2I)
	case ast.OpShr:
		res, opErr = value.Shr(a, b, allowD2I)
	case ast.OpLt:
		res, opErr = value.Lt(a, b)
	case ast.OpLe:
		res, opErr = value.Le(a, b)
	case ast.OpGt:
		res, opErr = value.Gt(a, b)
	case ast.OpGe:
		res, opErr = value.Ge(a, b)
	case ast.OpEq:
		res = value.Eq(a, b, in.Config.EqualityEpsilon)
	case ast.OpNe:
		res = value.Ne(a, b, in.Config.EqualityEpsilon)
	default:
		return Var{}, in.errf(srcerr.KindBadType, x.Pos(), "unknown binary operator")
	}
	if opErr != nil {
		return Var{}, in.wrapValueErr(opErr, x.Pos())
	}
	return rv(res), nil
}

// evalTableConstructor implements `{ fields }`: fields evaluated in
// source order; explicit-key fields (keyed or named) assign directly;
// keyless fields receive auto-incrementing positive integer keys; a
// trailing keyless field that is a multi-value call or `...` expands to
// fill successive integer slots instead of contributing just one value.
func (in *Interp) evalTableConstructor(x *ast.TableConstructorExpr) (Var, error) {
	t := table.New()
	for i, f := range x.Fields {
		isLastPositional := i == len(x.Fields)-1 && f.Kind == ast.FieldPositional
		switch f.Kind {
		case ast.FieldKeyed:
			keyVar, err := in.evalExpr(f.Key)
			if err != nil {
				return Var{}, err
			}
			valVar, err := in.evalExpr(f.Value)
			if err != nil {
				return Var{}, err
			}
			if err := in.tableSetField(t, keyVar.Value(), valVar.Value()); err != nil {
				return Var{}, in.wrapValueErr(err, f.Value.Pos())
			}
		case ast.FieldNamed:
			valVar, err := in.evalExpr(f.Value)
			if err != nil {
				return Var{}, err
			}
			if err := in.tableSetField(t, value.Str(f.Name), valVar.Value()); err != nil {
				return Var{}, in.wrapValueErr(err, f.Value.Pos())
			}
		case ast.FieldPositional:
			if isLastPositional {
				valVar, err := in.evalExpr(f.Value)
				if err != nil {
					return Var{}, err
				}
				for _, v := range valVar.Expand() {
					t.AppendPositional(v)
					in.RC.AddReference(v)
				}
			} else {
				valVar, err := in.evalExpr(f.Value)
				if err != nil {
					return Var{}, err
				}
				v := valVar.Value()
				t.AppendPositional(v)
				in.RC.AddReference(v)
			}
		}
	}
	return rv(t), nil
}

// evalCall implements the call protocol from the caller's side: resolve
// the callee (expanding `obj:method(args)` sugar into an implicit first
// argument), evaluate arguments left to right with the standard
// trailing-expansion rule, and Invoke.
func (in *Interp) evalCall(ce *ast.CallExpr) (Var, error) {
	var fnVal value.Value
	var args []value.Value

	if ce.Method != "" {
		objVar, err := in.evalExpr(ce.Callee)
		if err != nil {
			return Var{}, err
		}
		obj := objVar.Value()
		fnVal, err = in.dotRead(obj, ce.Method, ce.Pos())
		if err != nil {
			return Var{}, err
		}
		args = append(args, obj)
	} else {
		calleeVar, err := in.evalExpr(ce.Callee)
		if err != nil {
			return Var{}, err
		}
		fnVal = calleeVar.Value()
	}

	extra, err := in.evalExprList(ce.Args)
	if err != nil {
		return Var{}, err
	}
	args = append(args, extra...)

	fn, ok := fnVal.(value.Function)
	if !ok {
		return Var{}, in.errf(srcerr.KindBadCall, ce.Pos(), "attempt to call a %s value", fnVal.Kind())
	}

	name := callName(ce)
	if in.Config.TraceCalls {
		fmt.Fprintf(os.Stderr, "%*scall %s (at %s)\n", len(in.trace)*2, "", name, ce.Pos())
	}
	in.trace = append(in.trace, srcerr.Frame{FunctionName: name, Pos: ce.Pos()})
	results, err := fn.Invoke(args)
	in.trace = in.trace[:len(in.trace)-1]
	if err != nil {
		return Var{}, err
	}
	return listVar(results), nil
}

func callName(ce *ast.CallExpr) string {
	switch c := ce.Callee.(type) {
	case *ast.NameExpr:
		if ce.Method != "" {
			return c.Name + ":" + ce.Method
		}
		return c.Name
	case *ast.DotExpr:
		if ce.Method != "" {
			return c.Name + ":" + ce.Method
		}
		return c.Name
	default:
		if ce.Method != "" {
			return ce.Method
		}
		return "?"
	}
}
