package interp

import (
	"strings"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/value"
)

// execBlock is the statement evaluator's block driver. It walks
// block.Statements by index rather than range so that a Goto signal whose
// target label lives in this same block can resume execution right after
// the label instead of unwinding: the scope analyzer already proved the
// goto's legality, including the crossed-local rule, so at evaluation
// time a same-block label resolution is always safe. A Goto whose label
// is not in this block propagates to the caller, which pops this block's
// Cells and re-offers the signal to its own block.
func (in *Interp) execBlock(block *ast.Block) (Signal, error) {
	i := 0
	for i < len(block.Statements) {
		stmt := block.Statements[i]
		sig, err := in.execStmt(stmt)
		if err != nil {
			return Signal{}, err
		}
		if sig.Kind == FlowGoto {
			if idx, ok := labelIndex(block, sig.Label); ok {
				i = idx + 1
				continue
			}
			return sig, nil
		}
		if sig.Kind != FlowNone {
			return sig, nil
		}
		i++
	}
	if block.Return != nil {
		vals, err := in.evalExprList(block.Return.Exprs)
		if err != nil {
			return Signal{}, err
		}
		return Signal{Kind: FlowReturn, Values: vals}, nil
	}
	return none, nil
}

func labelIndex(block *ast.Block, label string) (int, bool) {
	for i, s := range block.Statements {
		if l, ok := s.(*ast.LabelStmt); ok && l.Name == label {
			return i, true
		}
	}
	return 0, false
}

// runNestedBlock pushes block as a new child of the current frame,
// executes it, and releases its Cells on every exit path (normal or via
// Break/Goto/Return).
func (in *Interp) runNestedBlock(block *ast.Block) (Signal, error) {
	frame := in.currentFrame()
	frame.PushBlock(block)
	sig, err := in.execBlock(block)
	frame.PopBlock(in.releaseCell)
	return sig, err
}

func (in *Interp) execStmt(stmt ast.Stmt) (Signal, error) {
	switch s := stmt.(type) {
	case *ast.LocalStmt:
		return in.execLocal(s)
	case *ast.AssignStmt:
		return in.execAssign(s)
	case *ast.CallStmt:
		_, err := in.evalExpr(s.Call)
		if err != nil {
			return Signal{}, err
		}
		return none, nil
	case *ast.DoStmt:
		return in.runNestedBlock(s.Body)
	case *ast.IfStmt:
		return in.execIf(s)
	case *ast.WhileStmt:
		return in.execWhile(s)
	case *ast.RepeatStmt:
		return in.execRepeat(s)
	case *ast.NumericForStmt:
		return in.execNumericFor(s)
	case *ast.GenericForStmt:
		return in.execGenericFor(s)
	case *ast.FunctionDeclStmt:
		return in.execFunctionDecl(s)
	case *ast.LocalFunctionDeclStmt:
		cell := in.newCell(value.Nil)
		in.currentFrame().DeclareCell(s.Name, cell)
		cl := in.makeClosure(s.Func, s.Name)
		in.setCell(cell, cl)
		return none, nil
	case *ast.BreakStmt:
		return Signal{Kind: FlowBreak}, nil
	case *ast.GotoStmt:
		return Signal{Kind: FlowGoto, Label: s.Label}, nil
	case *ast.LabelStmt:
		return none, nil
	default:
		return Signal{}, in.errf(srcerr.KindBadType, stmt.Pos(), "unsupported statement node %T", stmt)
	}
}

// execLocal implements `local names[<attribs>] = exprs`: attribute
// annotations are parsed but ignored. Exprs are evaluated before any name
// is declared, so `local x = x` reads the outer x.
func (in *Interp) execLocal(s *ast.LocalStmt) (Signal, error) {
	vals, err := in.evalExprList(s.Exprs)
	if err != nil {
		return Signal{}, err
	}
	frame := in.currentFrame()
	for i, name := range s.Names {
		var v value.Value = value.Nil
		if i < len(vals) {
			v = vals[i]
		}
		frame.DeclareCell(name, in.newCell(v))
	}
	return none, nil
}

// execAssign implements `vars = exprs`: all exprs evaluate first, then
// all vars resolve to LValue Cells (creating a global Cell on demand for
// a never-seen bare name), then values bind to cells index-wise with
// surplus vars receiving Nil.
func (in *Interp) execAssign(s *ast.AssignStmt) (Signal, error) {
	vals, err := in.evalExprList(s.Exprs)
	if err != nil {
		return Signal{}, err
	}
	cells := make([]*value.Cell, len(s.Vars))
	for i, v := range s.Vars {
		c, err := in.resolveAssignCell(v)
		if err != nil {
			return Signal{}, err
		}
		cells[i] = c
	}
	for i, c := range cells {
		var v value.Value = value.Nil
		if i < len(vals) {
			v = vals[i]
		}
		in.setCell(c, v)
	}
	return none, nil
}

func (in *Interp) execIf(s *ast.IfStmt) (Signal, error) {
	for i, cond := range s.Conds {
		cv, err := in.evalExpr(cond)
		if err != nil {
			return Signal{}, err
		}
		if value.WeakBool(cv.Value()) {
			return in.runNestedBlock(s.Blocks[i])
		}
	}
	if s.Else != nil {
		return in.runNestedBlock(s.Else)
	}
	return none, nil
}

func (in *Interp) execWhile(s *ast.WhileStmt) (Signal, error) {
	for {
		cv, err := in.evalExpr(s.Cond)
		if err != nil {
			return Signal{}, err
		}
		if !value.WeakBool(cv.Value()) {
			return none, nil
		}
		sig, err := in.runNestedBlock(s.Body)
		if err != nil {
			return Signal{}, err
		}
		switch sig.Kind {
		case FlowBreak:
			return none, nil
		case FlowReturn, FlowGoto:
			return sig, nil
		}
	}
}

// execRepeat implements `repeat body until cond`; cond is evaluated in
// body's own scope, so the body block is popped only after cond has been
// read.
func (in *Interp) execRepeat(s *ast.RepeatStmt) (Signal, error) {
	frame := in.currentFrame()
	for {
		frame.PushBlock(s.Body)
		sig, err := in.execBlock(s.Body)
		if err != nil {
			frame.PopBlock(in.releaseCell)
			return Signal{}, err
		}
		if sig.Kind == FlowBreak {
			frame.PopBlock(in.releaseCell)
			return none, nil
		}
		if sig.Kind == FlowReturn || sig.Kind == FlowGoto {
			frame.PopBlock(in.releaseCell)
			return sig, nil
		}
		cv, err := in.evalExpr(s.Cond)
		if err != nil {
			frame.PopBlock(in.releaseCell)
			return Signal{}, err
		}
		exit := value.WeakBool(cv.Value())
		frame.PopBlock(in.releaseCell)
		if exit {
			return none, nil
		}
	}
}

// forOperands resolves the three numeric `for` expressions to either a
// matched int64 triple or a matched float64 triple, promoting to Double
// as soon as any operand is not an Int.
func forOperands(start, limit, step value.Value) (allInt bool, i0, ilim, istep int64, f0, flim, fstep float64, err error) {
	si, sOK := value.AsInt(start)
	li, lOK := value.AsInt(limit)
	pi, pOK := value.AsInt(step)
	if sOK && lOK && pOK {
		return true, si, li, pi, 0, 0, 0, nil
	}
	f0, err = value.WeakDouble(start)
	if err != nil {
		return
	}
	flim, err = value.WeakDouble(limit)
	if err != nil {
		return
	}
	fstep, err = value.WeakDouble(step)
	return false, 0, 0, 0, f0, flim, fstep, err
}

func (in *Interp) execNumericFor(s *ast.NumericForStmt) (Signal, error) {
	startVar, err := in.evalExpr(s.Start)
	if err != nil {
		return Signal{}, err
	}
	limitVar, err := in.evalExpr(s.Limit)
	if err != nil {
		return Signal{}, err
	}
	var stepVal value.Value = value.Int(1)
	if s.Step != nil {
		stepVar, err := in.evalExpr(s.Step)
		if err != nil {
			return Signal{}, err
		}
		stepVal = stepVar.Value()
	}

	allInt, i0, ilim, istep, f0, flim, fstep, err := forOperands(startVar.Value(), limitVar.Value(), stepVal)
	if err != nil {
		return Signal{}, in.wrapValueErr(err, s.Pos())
	}

	frame := in.currentFrame()
	runIter := func(counter value.Value) (Signal, bool, error) {
		frame.PushBlock(s.Body)
		frame.DeclareCell(s.Name, in.newCell(counter))
		sig, err := in.execBlock(s.Body)
		frame.PopBlock(in.releaseCell)
		if err != nil {
			return Signal{}, false, err
		}
		switch sig.Kind {
		case FlowBreak:
			return none, true, nil
		case FlowReturn, FlowGoto:
			return sig, true, nil
		}
		return none, false, nil
	}

	if allInt {
		if istep == 0 {
			return Signal{}, in.errf(srcerr.KindBadType, s.Pos(), "'for' step is zero")
		}
		for (istep > 0 && i0 <= ilim) || (istep < 0 && i0 >= ilim) {
			sig, done, err := runIter(value.Int(i0))
			if err != nil || done {
				return sig, err
			}
			i0 += istep
		}
		return none, nil
	}

	if fstep == 0 {
		return Signal{}, in.errf(srcerr.KindBadType, s.Pos(), "'for' step is zero")
	}
	for (fstep > 0 && f0 <= flim) || (fstep < 0 && f0 >= flim) {
		sig, done, err := runIter(value.Double(f0))
		if err != nil || done {
			return sig, err
		}
		f0 += fstep
	}
	return none, nil
}

// execGenericFor implements `for names in exprs do body end`: exprs yield
// an iterator function, a state, and an initial control value; each
// iteration calls f(s, v) and stops when the first result is Nil.
func (in *Interp) execGenericFor(s *ast.GenericForStmt) (Signal, error) {
	vals, err := in.evalExprList(s.Exprs)
	if err != nil {
		return Signal{}, err
	}
	if len(vals) == 0 {
		return Signal{}, in.errf(srcerr.KindBadForIn, s.Pos(), "'for in' requires at least one value")
	}
	get := func(i int) value.Value {
		if i < len(vals) {
			return vals[i]
		}
		return value.Nil
	}
	fn, ok := get(0).(value.Function)
	if !ok {
		return Signal{}, in.errf(srcerr.KindForInBadType, s.Pos(), "'for in' iterator must be a function, got %s", get(0).Kind())
	}
	state, ctrl := get(1), get(2)

	frame := in.currentFrame()
	for {
		results, err := fn.Invoke([]value.Value{state, ctrl})
		if err != nil {
			return Signal{}, err
		}
		var first value.Value = value.Nil
		if len(results) > 0 {
			first = results[0]
		}
		if first.Kind() == value.KindNil {
			return none, nil
		}
		ctrl = first

		frame.PushBlock(s.Body)
		for i, name := range s.Names {
			var v value.Value = value.Nil
			if i < len(results) {
				v = results[i]
			}
			frame.DeclareCell(name, in.newCell(v))
		}
		sig, err := in.execBlock(s.Body)
		frame.PopBlock(in.releaseCell)
		if err != nil {
			return Signal{}, err
		}
		switch sig.Kind {
		case FlowBreak:
			return none, nil
		case FlowReturn, FlowGoto:
			return sig, nil
		}
	}
}

// execFunctionDecl implements `function a.b.c[:method](...) body end`: a
// single name assigns a global/local; a dotted path resolves every
// component but the last as a table chain and assigns the new Function
// into the final field.
func (in *Interp) execFunctionDecl(s *ast.FunctionDeclStmt) (Signal, error) {
	dispName := strings.Join(s.Path, ".")
	if s.Method != "" {
		dispName += ":" + s.Method
	}
	cl := in.makeClosure(s.Func, dispName)

	if len(s.Path) == 1 && s.Method == "" {
		cell := in.lookup(s.Path[0])
		if cell == nil {
			cell = in.lookupOrCreateGlobal(s.Path[0])
		}
		in.setCell(cell, cl)
		return none, nil
	}

	walkTo := s.Path
	finalField := s.Method
	if finalField == "" {
		walkTo = s.Path[:len(s.Path)-1]
		finalField = s.Path[len(s.Path)-1]
	}

	rootCell := in.lookup(walkTo[0])
	if rootCell == nil {
		rootCell = in.lookupOrCreateGlobal(walkTo[0])
	}
	obj := rootCell.V
	for _, f := range walkTo[1:] {
		t, ok := obj.(value.Table)
		if !ok {
			return Signal{}, in.errf(srcerr.KindBadDotAccess, s.Pos(), "attempt to index a %s value", obj.Kind())
		}
		obj = t.Dot(f, true).V
	}
	t, ok := obj.(value.Table)
	if !ok {
		return Signal{}, in.errf(srcerr.KindBadDotAccess, s.Pos(), "attempt to index a %s value", obj.Kind())
	}
	if err := in.tableSetField(t, value.Str(finalField), cl); err != nil {
		return Signal{}, in.wrapValueErr(err, s.Pos())
	}
	return none, nil
}
