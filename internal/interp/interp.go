// Package interp is the tree-walking evaluator core: the activation and
// binding store, the expression and statement evaluators,
// and the function call protocol, built directly on internal/value,
// internal/table, internal/refcount, and the static facts internal/scope
// computed ahead of time.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/config"
	"github.com/noxlang/nox/internal/refcount"
	"github.com/noxlang/nox/internal/scope"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/value"
)

// RuntimeError wraps an evaluator failure with the srcerr.Kind taxonomy
// plus a traceback captured at the point the error surfaced.
type RuntimeError struct {
	Kind  srcerr.Kind
	Msg   string
	Trace srcerr.Trace
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s\n%s", e.Kind, e.Msg, e.Trace)
}

// Interp is one execution of a single chunk: exactly one evaluator
// instance, single-threaded, cooperative. It owns the global store, the
// refcount registry, the call stack of Frames, and the stack
// of active functions consulted for closure lookups.
type Interp struct {
	Globals map[string]*value.Cell
	RC      *refcount.DefaultManager
	Config  config.Config
	Out     io.Writer

	analysis  *scope.Analysis
	frames    []*Frame
	funcs     []*Closure // parallel to frames; funcs[i] is nil for the chunk frame
	trace     []srcerr.Frame
	heapIDSeq uint64
}

// New creates an Interp ready to Run a chunk analyzed by analysis.
func New(analysis *scope.Analysis, cfg config.Config) *Interp {
	in := &Interp{
		Globals:  make(map[string]*value.Cell),
		RC:       refcount.NewManager(),
		Config:   cfg,
		Out:      os.Stdout,
		analysis: analysis,
	}
	in.RC.SetDestructorCallback(in.destroy)
	RegisterPrelude(in)
	return in
}

// destroy cascades a RemoveReference over every value a destroyed heap
// object was holding: a Table releases every field Cell's value; a
// Closure releases every captured upvalue Cell it Retain()-ed. Userdata
// is opaque and has no outgoing references.
func (in *Interp) destroy(obj value.HeapObject) error {
	switch o := obj.(type) {
	case interface{ AllCells() []*value.Cell }:
		for _, c := range o.AllCells() {
			in.RC.RemoveReference(c.V)
		}
	case *Closure:
		for _, c := range o.Env {
			if c.Release() {
				in.RC.RemoveReference(c.V)
			}
		}
	}
	return nil
}

// newCell allocates a Cell for v, registering a heap reference if v is a
// heap value.
func (in *Interp) newCell(v value.Value) *value.Cell {
	in.RC.AddReference(v)
	return value.NewCell(v)
}

// releaseCell drops one binding's reference to c; when c's own refcount
// reaches zero, the heap value it held (if any) is released too.
func (in *Interp) releaseCell(c *value.Cell) {
	if c.Release() {
		in.RC.RemoveReference(c.V)
	}
}

// setCell overwrites c's value, maintaining the heap refcount invariant:
// the new value gains a reference, the old one loses one.
func (in *Interp) setCell(c *value.Cell, v value.Value) {
	old := c.V
	in.RC.AddReference(v)
	c.V = v
	in.RC.RemoveReference(old)
}

// AllocHeapID reserves a fresh heap-object identity for an embedder
// registering its own Function/HeapObject implementation (internal/hostfunc)
// outside the evaluator's own closure/table allocation paths.
func (in *Interp) AllocHeapID() uint64 { return in.nextHeapID() }

// BindGlobal installs fn under name in the global store and registers it
// with the refcount registry, the same bookkeeping registerBuiltin does
// for the built-in prelude functions.
func (in *Interp) BindGlobal(name string, fn value.Function) {
	in.RC.AddReference(fn)
	in.Globals[name] = value.NewCell(fn)
}

// SetAnalysis attaches static scope facts computed for a chunk this
// Interp is about to run; an embedder calls this after scope.Analyze and
// before RunChunk.
func (in *Interp) SetAnalysis(analysis *scope.Analysis) { in.analysis = analysis }

// currentFrame returns the innermost active call frame; it is never nil
// while evaluation is in progress (the chunk itself has a frame).
func (in *Interp) currentFrame() *Frame { return in.frames[len(in.frames)-1] }

// currentClosure returns the active function consulted for closure
// lookups, or nil at the outermost chunk level.
func (in *Interp) currentClosure() *Closure { return in.funcs[len(in.funcs)-1] }

func (in *Interp) pushFrame(fn *Closure, name string) {
	in.frames = append(in.frames, NewFrame(name, closureEnv(fn)))
	in.funcs = append(in.funcs, fn)
}

func closureEnv(fn *Closure) map[string]*value.Cell {
	if fn == nil {
		return nil
	}
	return fn.Env
}

func (in *Interp) popFrame() {
	in.frames = in.frames[:len(in.frames)-1]
	in.funcs = in.funcs[:len(in.funcs)-1]
}

// lookup implements name resolution: current frame's block stack
// innermost-out, then the active function's closure, then globals.
func (in *Interp) lookup(name string) *value.Cell {
	if c, ok := in.currentFrame().Lookup(name); ok {
		return c
	}
	if c, ok := in.Globals[name]; ok {
		return c
	}
	return nil
}

// lookupOrCreateGlobal: a global Cell is created on first unbound
// assignment.
func (in *Interp) lookupOrCreateGlobal(name string) *value.Cell {
	if c, ok := in.Globals[name]; ok {
		return c
	}
	c := in.newCell(value.Nil)
	in.Globals[name] = c
	return c
}

// Run executes chunk, already analyzed into analysis, as the top-level
// program. It pushes
// the outermost chunk frame, executes the body, and pops it — leaving
// both the block stack and frame stack empty at exit whether the chunk
// terminates normally or via an uncaught Return.
func Run(chunk *ast.Chunk, analysis *scope.Analysis, cfg config.Config) (*Interp, error) {
	in := New(analysis, cfg)
	_, err := in.RunChunk(chunk)
	return in, err
}

// RunChunk executes chunk against an already-constructed Interp (so an
// embedder can register host functions into in.Globals first), returning
// whatever Values the chunk's top-level `return` produced (nil if it
// fell off the end without one).
func (in *Interp) RunChunk(chunk *ast.Chunk) ([]value.Value, error) {
	in.pushFrame(nil, "main chunk")
	defer in.popFrame()

	frame := in.currentFrame()
	frame.PushBlock(chunk.Body)
	sig, err := in.execBlock(chunk.Body)
	frame.PopBlock(in.releaseCell)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case FlowNone:
		return nil, nil
	case FlowReturn:
		return sig.Values, nil
	default:
		// Break/Goto escaping the chunk is an evaluator bug.
		return nil, &RuntimeError{Kind: srcerr.KindBadCall, Msg: fmt.Sprintf("unhandled control flow %v escaped the chunk", sig.Kind)}
	}
}
