// Package scope implements the static scope/closure pre-pass: a single
// pre-order walk of the parsed chunk that determines, per block, which
// locals are reachable, validates goto/break legality, and records the
// enclosing-block chain each function literal needs in order to capture
// the right Cells as a closure.
//
// Grounded on a semantic analysis pass built as a single pre-order walk
// accumulating side tables, and on an execution context's control-flow
// vocabulary, which this pass validates ahead of time rather than at
// runtime.
package scope

import (
	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/token"
)

// ElementKind discriminates the entries of a block's ordered element
// list.
type ElementKind int

const (
	ElemLocal ElementKind = iota
	ElemLabel
	ElemGoto
	ElemNestedBlock
)

// ScopeElement is one entry of a block's ordered element list.
type ScopeElement struct {
	Kind  ElementKind
	Name  string // local or label name; "" for ElemNestedBlock
	Pos   token.Position
	Block *ast.Block // set only for ElemNestedBlock
}

// Analysis is the complete result of the pre-pass: the side tables the
// evaluator and the parser's diagnostics depend on, plus any static
// errors found along the way.
type Analysis struct {
	// LocalsPerBlock maps each block to the local names visible within
	// it (own declarations plus same-function ancestor blocks inherited
	// at the point those ancestor blocks were entered). This is a
	// conservative whole-block summary used for diagnostics; the
	// evaluator's actual name resolution at runtime walks live Cell
	// maps built during execution, not this table, so imprecision here
	// cannot cause a runtime correctness bug.
	LocalsPerBlock map[*ast.Block]map[string]*ast.Block

	// LoopBlocks is the set of blocks that are the immediate body of a
	// while/repeat/for/for-in loop; `break` is legal only inside one.
	LoopBlocks map[*ast.Block]bool

	// LabelToContext maps each label name to every block that declares
	// it anywhere in the chunk.
	LabelToContext map[string][]*ast.Block

	// FunctionParents maps each function body block to the chain of
	// blocks enclosing it at definition time, innermost first, crossing
	// function boundaries — exactly what the evaluator needs to capture
	// live Cells into a closure.
	FunctionParents map[*ast.Block][]*ast.Block

	// Elements records every block's ordered sequence of ScopeElements,
	// used by diagnostics builtins that want to describe a block's
	// shape without re-walking the AST.
	Elements map[*ast.Block][]ScopeElement

	Errors []*srcerr.Error
}

// itemKind is the narrower vocabulary used by goto/break resolution: a
// subset of ElementKind, since only Local/Label/Goto matter for crossing
// checks.
type itemKind int

const (
	itemLocal itemKind = iota
	itemLabel
	itemGoto
)

type item struct {
	kind itemKind
	name string
	pos  token.Position
}

// blockCtx is the scratch state kept per block during the pre-pass.
type blockCtx struct {
	block          *ast.Block
	parent         *blockCtx // same-function nesting only; nil at a function/chunk root
	isLoop         bool
	items          []item
	locals         map[string]*ast.Block
	entryItemIndex int // this block's position within parent.items, for goto resolution
}

// Analyze runs the static pre-pass over chunk and returns the completed
// side tables. Static goto/break errors are returned both in
// Analysis.Errors and aggregated into the returned error.
func Analyze(chunk *ast.Chunk) (*Analysis, error) {
	a := &Analysis{
		LocalsPerBlock:  make(map[*ast.Block]map[string]*ast.Block),
		LoopBlocks:      make(map[*ast.Block]bool),
		LabelToContext:  make(map[string][]*ast.Block),
		FunctionParents: make(map[*ast.Block][]*ast.Block),
		Elements:        make(map[*ast.Block][]ScopeElement),
	}
	var pendingGotos []func()
	a.analyzeBlock(chunk.Body, nil, false, nil, nil, &pendingGotos)
	for _, resolve := range pendingGotos {
		resolve()
	}
	if len(a.Errors) > 0 {
		return a, &multiError{errs: a.Errors}
	}
	return a, nil
}

type multiError struct{ errs []*srcerr.Error }

func (m *multiError) Error() string {
	if len(m.errs) == 0 {
		return "scope analysis failed"
	}
	return m.errs[0].Error()
}

func (a *Analysis) errorf(kind srcerr.Kind, pos token.Position, format string, args ...any) {
	a.Errors = append(a.Errors, srcerr.New(kind, pos, format, args...))
}

// analyzeBlock walks one block's direct statements, recursing into
// nested blocks and function literals. parent is the same-function
// enclosing blockCtx (nil at a function/chunk root). outer is the full
// ancestor chain (innermost first), crossing function boundaries, used
// only to populate FunctionParents. preDeclared names (function
// parameters, or a for-loop's control variable(s)) are registered as the
// block's first items, before any statement is walked, so crossed-local
// bookkeeping for nested blocks sees them from the start. pendingGotos
// collects resolver closures run only after the whole chunk (or
// function) has been walked, since a goto may target a label declared
// later in an enclosing block.
func (a *Analysis) analyzeBlock(block *ast.Block, parent *blockCtx, isLoop bool, outer []*ast.Block, preDeclared []string, pendingGotos *[]func()) *blockCtx {
	bc := &blockCtx{block: block, parent: parent, isLoop: isLoop, locals: make(map[string]*ast.Block)}
	if parent != nil {
		for name, def := range parent.locals {
			bc.locals[name] = def
		}
		bc.entryItemIndex = len(parent.items)
	}
	a.LocalsPerBlock[block] = bc.locals
	a.LoopBlocks[block] = isLoop

	for _, name := range preDeclared {
		a.declareLocal(bc, name, block.StartPos)
	}

	childOuter := append([]*ast.Block{block}, outer...)
	for _, stmt := range block.Statements {
		a.analyzeStmt(stmt, bc, childOuter, pendingGotos)
	}
	if block.Return != nil {
		for _, e := range block.Return.Exprs {
			a.walkExpr(e, bc, childOuter, pendingGotos)
		}
	}
	return bc
}

func (a *Analysis) declareLocal(bc *blockCtx, name string, pos token.Position) {
	bc.items = append(bc.items, item{kind: itemLocal, name: name, pos: pos})
	bc.locals[name] = bc.block
	a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemLocal, Name: name, Pos: pos})
}

func (a *Analysis) analyzeStmt(stmt ast.Stmt, bc *blockCtx, outer []*ast.Block, pendingGotos *[]func()) {
	switch s := stmt.(type) {
	case *ast.LocalStmt:
		for _, e := range s.Exprs {
			a.walkExpr(e, bc, outer, pendingGotos)
		}
		for _, name := range s.Names {
			a.declareLocal(bc, name, s.StartPos)
		}
	case *ast.LocalFunctionDeclStmt:
		// The Cell is allocated before the closure, so the name is
		// visible inside its own body.
		a.declareLocal(bc, s.Name, s.StartPos)
		a.analyzeFunction(s.Func, bc, outer)
	case *ast.AssignStmt:
		for _, v := range s.Vars {
			a.walkExpr(v, bc, outer, pendingGotos)
		}
		for _, e := range s.Exprs {
			a.walkExpr(e, bc, outer, pendingGotos)
		}
	case *ast.CallStmt:
		a.walkExpr(s.Call, bc, outer, pendingGotos)
	case *ast.DoStmt:
		a.analyzeBlock(s.Body, bc, false, outer, nil, pendingGotos)
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Body})
	case *ast.IfStmt:
		for i, cond := range s.Conds {
			a.walkExpr(cond, bc, outer, pendingGotos)
			a.analyzeBlock(s.Blocks[i], bc, false, outer, nil, pendingGotos)
			a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Blocks[i]})
		}
		if s.Else != nil {
			a.analyzeBlock(s.Else, bc, false, outer, nil, pendingGotos)
			a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Else})
		}
	case *ast.WhileStmt:
		a.walkExpr(s.Cond, bc, outer, pendingGotos)
		a.analyzeBlock(s.Body, bc, true, outer, nil, pendingGotos)
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Body})
	case *ast.RepeatStmt:
		bodyCtx := a.analyzeBlock(s.Body, bc, true, outer, nil, pendingGotos)
		// Cond is evaluated in Body's scope.
		childOuter := append([]*ast.Block{s.Body}, outer...)
		a.walkExpr(s.Cond, bodyCtx, childOuter, pendingGotos)
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Body})
	case *ast.NumericForStmt:
		a.walkExpr(s.Start, bc, outer, pendingGotos)
		a.walkExpr(s.Limit, bc, outer, pendingGotos)
		if s.Step != nil {
			a.walkExpr(s.Step, bc, outer, pendingGotos)
		}
		a.analyzeBlock(s.Body, bc, true, outer, []string{s.Name}, pendingGotos)
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Body})
	case *ast.GenericForStmt:
		for _, e := range s.Exprs {
			a.walkExpr(e, bc, outer, pendingGotos)
		}
		a.analyzeBlock(s.Body, bc, true, outer, s.Names, pendingGotos)
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemNestedBlock, Pos: s.StartPos, Block: s.Body})
	case *ast.FunctionDeclStmt:
		a.analyzeFunction(s.Func, bc, outer)
	case *ast.BreakStmt:
		a.validateBreak(bc, s.StartPos)
	case *ast.GotoStmt:
		idx := len(bc.items)
		bc.items = append(bc.items, item{kind: itemGoto, name: s.Label, pos: s.StartPos})
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemGoto, Name: s.Label, Pos: s.StartPos})
		capturedBC, capturedIdx, capturedLabel, capturedPos := bc, idx, s.Label, s.StartPos
		*pendingGotos = append(*pendingGotos, func() {
			a.resolveGoto(capturedBC, capturedIdx, capturedLabel, capturedPos)
		})
	case *ast.LabelStmt:
		for _, existing := range bc.items {
			if existing.kind == itemLabel && existing.name == s.Name {
				a.errorf(srcerr.KindLabelAlreadyDefined, s.StartPos, "label %q already defined in this block", s.Name)
			}
		}
		bc.items = append(bc.items, item{kind: itemLabel, name: s.Name, pos: s.StartPos})
		a.Elements[bc.block] = append(a.Elements[bc.block], ScopeElement{Kind: ElemLabel, Name: s.Name, Pos: s.StartPos})
		a.LabelToContext[s.Name] = append(a.LabelToContext[s.Name], bc.block)
	default:
		// ReturnStmt is handled by analyzeBlock directly (it terminates
		// the statement list rather than living inside it).
	}
}

// analyzeFunction registers fe's enclosing-block chain and recurses into
// its body as a new function root (fresh parent=nil, so break/goto/locals
// inheritance stop at this boundary). Goto resolution for the new
// function's body runs in its own pendingGotos batch: a label must live
// in the same function as its goto, so nothing here can ever need to
// resolve against the defining scope's labels.
func (a *Analysis) analyzeFunction(fe *ast.FunctionExpr, bc *blockCtx, outer []*ast.Block) {
	chain := append([]*ast.Block(nil), outer...)
	a.FunctionParents[fe.Body] = chain
	var ownGotos []func()
	a.analyzeBlock(fe.Body, nil, false, chain, fe.Params, &ownGotos)
	for _, resolve := range ownGotos {
		resolve()
	}
}

func (a *Analysis) validateBreak(bc *blockCtx, pos token.Position) {
	for cur := bc; cur != nil; cur = cur.parent {
		if cur.isLoop {
			return
		}
	}
	a.errorf(srcerr.KindLonelyBreak, pos, "break outside of a loop")
}

// searchLevel looks for a label named `label` among items, split at the
// goto's (or the virtual ancestor entry) position: backward search
// covers items[0:backwardEnd] without restriction, forward search covers
// items[forwardStart:] and is poisoned by any Local crossed along the
// way.
func searchLevel(items []item, backwardEnd, forwardStart int, label string) (found, crossed bool) {
	for i := backwardEnd - 1; i >= 0; i-- {
		if items[i].kind == itemLabel && items[i].name == label {
			return true, false
		}
	}
	crossedAny := false
	for i := forwardStart; i < len(items); i++ {
		switch items[i].kind {
		case itemLocal:
			crossedAny = true
		case itemLabel:
			if items[i].name == label {
				if crossedAny {
					return false, true
				}
				return true, false
			}
		}
	}
	return false, false
}

func (a *Analysis) resolveGoto(bc *blockCtx, gotoIdx int, label string, pos token.Position) {
	found, crossed := searchLevel(bc.items, gotoIdx, gotoIdx+1, label)
	if found {
		return
	}
	anyCrossed := crossed
	for cur := bc; cur.parent != nil; cur = cur.parent {
		parent := cur.parent
		f, c := searchLevel(parent.items, cur.entryItemIndex, cur.entryItemIndex, label)
		if f {
			return
		}
		anyCrossed = anyCrossed || c
	}
	if anyCrossed {
		a.errorf(srcerr.KindCrossedLocal, pos, "goto %q crosses into the scope of a local variable", label)
		return
	}
	a.errorf(srcerr.KindInvisibleLabel, pos, "no visible label %q for this goto", label)
}

// walkExpr recurses into expr's subexpressions looking for nested
// function literals and table constructors, analyzing each function
// literal it finds; it does not itself produce ScopeElements since
// expressions carry no Local/Label/Goto statements of their own.
func (a *Analysis) walkExpr(e ast.Expr, bc *blockCtx, outer []*ast.Block, pendingGotos *[]func()) {
	switch x := e.(type) {
	case *ast.FunctionExpr:
		a.analyzeFunction(x, bc, outer)
	case *ast.BinaryExpr:
		a.walkExpr(x.Left, bc, outer, pendingGotos)
		a.walkExpr(x.Right, bc, outer, pendingGotos)
	case *ast.UnaryExpr:
		a.walkExpr(x.Operand, bc, outer, pendingGotos)
	case *ast.ParenExpr:
		a.walkExpr(x.Inner, bc, outer, pendingGotos)
	case *ast.CallExpr:
		a.walkExpr(x.Callee, bc, outer, pendingGotos)
		for _, arg := range x.Args {
			a.walkExpr(arg, bc, outer, pendingGotos)
		}
	case *ast.IndexExpr:
		a.walkExpr(x.Object, bc, outer, pendingGotos)
		a.walkExpr(x.Key, bc, outer, pendingGotos)
	case *ast.DotExpr:
		a.walkExpr(x.Object, bc, outer, pendingGotos)
	case *ast.TableConstructorExpr:
		for _, field := range x.Fields {
			if field.Key != nil {
				a.walkExpr(field.Key, bc, outer, pendingGotos)
			}
			a.walkExpr(field.Value, bc, outer, pendingGotos)
		}
	default:
		// Literals, NameExpr, and VarargExpr have no subexpressions.
	}
}
