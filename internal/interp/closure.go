package interp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/value"
)

// Closure is the heap-allocated Function value: formal parameters, a
// pointer to the AST body, and a closure map from captured local names
// to the Cells they referred to at definition time.
type Closure struct {
	id       uint64
	identity uuid.UUID
	Name     string
	Params   []string
	IsVararg bool
	Body     *ast.Block
	Env      map[string]*value.Cell // captured upvalues, by-Cell
	in       *Interp
}

func (in *Interp) nextHeapID() uint64 {
	in.heapIDSeq++
	return in.heapIDSeq
}

func (c *Closure) Kind() value.Kind    { return value.KindFunction }
func (c *Closure) HeapID() uint64      { return c.id }
func (c *Closure) Identity() uuid.UUID { return c.identity }
func (c *Closure) String() string {
	name := c.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("function %s: %s", name, c.identity)
}

// makeClosure builds a Closure from a FunctionExpr: params/vararg/body
// copied verbatim, and a fresh Env built by walking internal/scope's
// FunctionParents chain for fe.Body, capturing every currently-live Cell
// in those enclosing blocks.
func (in *Interp) makeClosure(fe *ast.FunctionExpr, name string) *Closure {
	cl := &Closure{
		id:       in.nextHeapID(),
		identity: value.NewIdentity(),
		Name:     name,
		Params:   fe.Params,
		IsVararg: fe.IsVararg,
		Body:     fe.Body,
		Env:      make(map[string]*value.Cell),
		in:       in,
	}
	for _, block := range in.analysis.FunctionParents[fe.Body] {
		for name, cell := range in.findBlockLocals(block) {
			if _, captured := cl.Env[name]; !captured {
				cl.Env[name] = cell.Retain()
			}
		}
	}
	return cl
}

// findBlockLocals returns the live local bindings of block, searching the
// current frame's open block stack, falling back to the active closure's
// own captured Env (so a nested function can capture a name its own
// enclosing function only has as an upvalue, not a direct local).
func (in *Interp) findBlockLocals(block *ast.Block) map[string]*value.Cell {
	frame := in.currentFrame()
	if bs, ok := frame.FindBlock(block); ok {
		return bs.locals
	}
	if cur := in.currentClosure(); cur != nil {
		return cur.Env
	}
	return nil
}

// Invoke implements the call protocol: push a frame, bind
// parameters (padding/packing as needed), execute the body, and consume
// the Return signal it yields at the frame boundary.
func (c *Closure) Invoke(args []value.Value) ([]value.Value, error) {
	in := c.in
	if len(in.frames) >= in.Config.MaxCallDepth {
		return nil, &RuntimeError{Kind: srcerr.KindStackOverflow, Msg: "call stack exceeded maximum depth", Trace: in.snapshotTrace()}
	}

	in.pushFrame(c, c.Name)
	frame := in.currentFrame()
	frame.PushBlock(c.Body)

	for i, name := range c.Params {
		var v value.Value = value.Nil
		if i < len(args) {
			v = args[i]
		}
		frame.DeclareCell(name, in.newCell(v))
	}
	if c.IsVararg {
		var extra value.Ellipsis
		if len(args) > len(c.Params) {
			extra = append(value.Ellipsis{}, args[len(c.Params):]...)
		}
		frame.DeclareCell("...", in.newCell(extra))
	}

	sig, err := in.execBlock(c.Body)
	frame.PopBlock(in.releaseCell)
	in.popFrame()
	if err != nil {
		return nil, err
	}
	if sig.Kind == FlowReturn {
		return sig.Values, nil
	}
	return nil, nil
}
