// Package nox is the embeddable facade over the evaluator core: parse a
// script, run it, register Go functions it can call, and read back its
// output and result.
package nox

import (
	"fmt"
	"io"

	"github.com/noxlang/nox/internal/config"
	"github.com/noxlang/nox/internal/hostfunc"
	"github.com/noxlang/nox/internal/interp"
	"github.com/noxlang/nox/internal/parser"
	"github.com/noxlang/nox/internal/scope"
	"github.com/noxlang/nox/internal/value"
)

// Option configures an Engine at construction time. It is an alias of
// internal/config.Option so the config package's constructors
// (WithMaxCallDepth, WithDisableDoubleToInt, WithEqualityEpsilon,
// WithTraceCalls) double as Engine options without restating them here.
type Option = config.Option

var (
	WithMaxCallDepth       = config.WithMaxCallDepth
	WithDisableDoubleToInt = config.WithDisableDoubleToInt
	WithEqualityEpsilon    = config.WithEqualityEpsilon
	WithTraceCalls         = config.WithTraceCalls
)

// WithConfigFile loads a YAML config document (a project's nox.yaml),
// with omitted fields taking their Default values, and returns an Option
// that replaces the whole Config with it. Options run in argument order,
// so options passed before it are overwritten and options after it apply.
func WithConfigFile(data []byte) (Option, error) {
	loaded, err := config.Load(data)
	if err != nil {
		return nil, err
	}
	return func(c *config.Config) { *c = loaded }, nil
}

// Engine is one embeddable instance of the interpreter: a persistent
// global store across repeated Eval calls (so a host can register
// functions once and run several scripts that see them), output
// redirection, and host-function registration.
type Engine struct {
	cfg config.Config
	out io.Writer
	in  *interp.Interp
}

// New creates an Engine ready to register host functions and Eval
// scripts. Its global store starts pre-loaded with the diagnostic
// prelude: ensure_value_type, expect_failure, print, globals, locals,
// memory, tostring, tonumber, type.
func New(opts ...Option) (*Engine, error) {
	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{cfg: cfg, out: io.Discard}
	e.in = interp.New(nil, cfg)
	e.in.Out = e.out
	return e, nil
}

// SetOutput redirects the engine's `print` builtin (and any other
// diagnostic output) to w.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
	e.in.Out = w
}

// RegisterFunction exposes a Go function under name, callable from
// script code as a normal global function. fn's parameter and return
// types are marshaled via internal/hostfunc's reflect-based Converter.
func (e *Engine) RegisterFunction(name string, fn any) error {
	heapID := e.in.AllocHeapID()
	hf, err := hostfunc.New(heapID, name, fn)
	if err != nil {
		return fmt.Errorf("RegisterFunction %q: %w", name, err)
	}
	e.in.BindGlobal(name, hf)
	return nil
}

// Result reports the outcome of an Eval call: Success is false when
// parsing, static scope analysis, or runtime evaluation failed; Values
// holds the stringified form of each value the chunk's top-level
// `return` produced, if any.
type Result struct {
	Success bool
	Values  []string
	Err     error
}

// Eval parses, statically analyzes, and runs source against the
// engine's persistent global store, returning a Result rather than
// surfacing a bare error so callers can inspect partial diagnostics
// (parse vs. scope-analysis vs. runtime failure) uniformly.
func (e *Engine) Eval(source string) (*Result, error) {
	p := parser.New(source)
	chunk, err := p.ParseChunk()
	if err != nil {
		return &Result{Success: false, Err: err}, err
	}

	analysis, err := scope.Analyze(chunk)
	if err != nil {
		return &Result{Success: false, Err: err}, err
	}
	e.in.SetAnalysis(analysis)

	results, runErr := e.in.RunChunk(chunk)
	if runErr != nil {
		return &Result{Success: false, Err: runErr}, runErr
	}
	vals := make([]string, len(results))
	for i, v := range results {
		s, err := value.AsString(v)
		if err != nil {
			s = v.String()
		}
		vals[i] = s
	}
	return &Result{Success: true, Values: vals}, nil
}

// Globals returns the names currently bound in the engine's global
// store, largely for tests and REPL-style tooling.
func (e *Engine) Globals() []string {
	names := make([]string, 0)
	for name := range e.in.Globals {
		names = append(names, name)
	}
	return names
}

// Value returns the current value of a global by name, or (nil, false)
// if unbound.
func (e *Engine) Value(name string) (value.Value, bool) {
	c, ok := e.in.Globals[name]
	if !ok {
		return nil, false
	}
	return c.V, true
}
