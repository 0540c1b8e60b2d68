package interp

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	krpretty "github.com/kr/pretty"
	"github.com/maruel/natural"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/table"
	"github.com/noxlang/nox/internal/token"
	"github.com/noxlang/nox/internal/value"
)

// hostFunc adapts a plain Go closure to value.Function, the minimal
// shape internal/hostfunc's reflective Converter also produces; the
// prelude registers its builtins directly against this narrow adapter
// since none of them need reflection-based argument marshalling.
type hostFunc struct {
	id       uint64
	identity uuid.UUID
	name     string
	fn       func(in *Interp, args []value.Value) ([]value.Value, error)
	in       *Interp
}

func (h *hostFunc) Kind() value.Kind    { return value.KindFunction }
func (h *hostFunc) HeapID() uint64      { return h.id }
func (h *hostFunc) Identity() uuid.UUID { return h.identity }
func (h *hostFunc) String() string      { return fmt.Sprintf("function: builtin %s", h.name) }

func (h *hostFunc) Invoke(args []value.Value) ([]value.Value, error) {
	return h.fn(h.in, args)
}

func (in *Interp) registerBuiltin(name string, fn func(in *Interp, args []value.Value) ([]value.Value, error)) {
	hf := &hostFunc{id: in.nextHeapID(), identity: value.NewIdentity(), name: name, fn: fn, in: in}
	cell := value.NewCell(hf)
	in.RC.AddReference(hf)
	in.Globals[name] = cell
}

// builtinPos is the position attached to errors raised from inside a
// builtin's own Go code rather than from re-entrant script evaluation
// (test-instrumentation builtins have no source position of their
// own): it reports the call site of the builtin itself, which is the
// innermost entry on the trace the evaluator already maintains.
func (in *Interp) builtinPos() token.Position {
	if len(in.trace) == 0 {
		return token.Position{}
	}
	return in.trace[len(in.trace)-1].Pos
}

// RegisterPrelude installs the minimal standard prelude: the
// test-instrumentation surface (ensure_value_type, expect_failure,
// print, globals, locals, memory) plus tostring, tonumber, and type.
// This is intentionally the entire standard library this
// implementation ships — no string/table/math libraries.
func RegisterPrelude(in *Interp) {
	in.registerBuiltin("ensure_value_type", biEnsureValueType)
	in.registerBuiltin("expect_failure", biExpectFailure)
	in.registerBuiltin("print", biPrint)
	in.registerBuiltin("globals", biGlobals)
	in.registerBuiltin("locals", biLocals)
	in.registerBuiltin("memory", biMemory)
	in.registerBuiltin("tostring", biToString)
	in.registerBuiltin("tonumber", biToNumber)
	in.registerBuiltin("type", biType)
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Nil
}

// biEnsureValueType implements the `ensure_value_type(expr, expected_value,
// expected_type_name)` test-instrumentation builtin: it checks the
// dynamic type first (raising type-equality-expected on mismatch), then
// the value itself (raising value-equality-expected on mismatch), rather
// than returning a bool, so test scripts can assert both in one call.
func biEnsureValueType(in *Interp, args []value.Value) ([]value.Value, error) {
	got := arg(args, 0)
	want := arg(args, 1)
	wantType, _ := value.AsStr(arg(args, 2))
	gotType := value.TypeName(got)
	if gotType != wantType {
		return nil, in.errf(srcerr.KindTypeEqualityExpect, in.builtinPos(), "expected value of type %q, got %q", wantType, gotType)
	}
	if !value.Equal(got, want, in.Config.EqualityEpsilon) {
		return nil, in.errf(srcerr.KindValueEqualityExpect, in.builtinPos(), "expected value %s, got %s", want.String(), got.String())
	}
	return nil, nil
}

// biExpectFailure runs fn and turns a successful call into a runtime
// error (tests use this to assert that a particular operation fails),
// or swallows the expected error and returns the kind string it saw.
func biExpectFailure(in *Interp, args []value.Value) ([]value.Value, error) {
	fn, ok := arg(args, 0).(value.Function)
	if !ok {
		return nil, in.errf(srcerr.KindBadType, in.builtinPos(), "expect_failure requires a function argument")
	}
	_, err := fn.Invoke(nil)
	if err == nil {
		return nil, in.errf(srcerr.KindBadType, in.builtinPos(), "expect_failure: call succeeded, expected a runtime error")
	}
	if re, ok := err.(*RuntimeError); ok {
		return []value.Value{value.Str(string(re.Kind))}, nil
	}
	return []value.Value{value.Str(err.Error())}, nil
}

// biPrint renders each argument with tostring semantics and, for
// Tables, a kr/pretty indented dump of its key/value pairs (so nested
// table values are readable in test output rather than just printing
// their opaque identity).
func biPrint(in *Interp, args []value.Value) ([]value.Value, error) {
	for i, v := range args {
		if i > 0 {
			fmt.Fprint(in.Out, "\t")
		}
		if t, ok := v.(value.Table); ok {
			fmt.Fprint(in.Out, dumpTable(t))
			continue
		}
		s, err := value.AsString(v)
		if err != nil {
			return nil, in.wrapValueErr(err, in.builtinPos())
		}
		fmt.Fprint(in.Out, s)
	}
	fmt.Fprintln(in.Out)
	return nil, nil
}

func dumpTable(t value.Table) string {
	concrete, ok := t.(*table.Table)
	if !ok {
		return t.String()
	}
	keys := concrete.Keys()
	m := map[string]any{}
	for _, k := range keys {
		c, err := t.Subscript(k, false)
		if err != nil {
			continue
		}
		m[keyLabel(k)] = valueLabel(c.V)
	}
	return fmt.Sprintf("%# v", krpretty.Formatter(m))
}

func keyLabel(k value.Value) string {
	s, err := value.AsString(k)
	if err != nil {
		return k.String()
	}
	return s
}

func valueLabel(v value.Value) any {
	switch v.Kind() {
	case value.KindInt:
		n, _ := value.AsInt(v)
		return n
	case value.KindDouble:
		f, _ := value.AsDouble(v)
		return f
	case value.KindString:
		s, _ := value.AsStr(v)
		return s
	case value.KindBool:
		b, _ := value.AsBool(v)
		return b
	default:
		return v.String()
	}
}

// namesNaturalSorted sorts variable names with maruel/natural so `v2`
// precedes `v10`, matching how diagnostic dumps order identifiers for
// humans rather than lexicographically.
func namesNaturalSorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i], out[j]) })
	return out
}

// biGlobals returns a newly built Table snapshotting every bound global
// name to its current value, for test assertions against the global
// store.
func biGlobals(in *Interp, args []value.Value) ([]value.Value, error) {
	names := make([]string, 0, len(in.Globals))
	for name := range in.Globals {
		names = append(names, name)
	}
	names = namesNaturalSorted(names)
	out := table.New()
	for _, name := range names {
		if err := in.tableSetField(out, value.Str(name), in.Globals[name].V); err != nil {
			return nil, in.wrapValueErr(err, in.builtinPos())
		}
	}
	return []value.Value{out}, nil
}

// biLocals returns a Table snapshotting the locals visible in the
// calling frame (builtins push no frame of their own, so this is the
// innermost frame), for test assertions against block scoping.
func biLocals(in *Interp, args []value.Value) ([]value.Value, error) {
	out := table.New()
	if len(in.frames) == 0 {
		return []value.Value{out}, nil
	}
	caller := in.currentFrame()
	names := make([]string, 0)
	seen := map[string]bool{}
	for i := len(caller.blocks) - 1; i >= 0; i-- {
		for name := range caller.blocks[i].locals {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for _, name := range namesNaturalSorted(names) {
		c, ok := caller.Lookup(name)
		if !ok {
			continue
		}
		if err := in.tableSetField(out, value.Str(name), c.V); err != nil {
			return nil, in.wrapValueErr(err, in.builtinPos())
		}
	}
	return []value.Value{out}, nil
}

// biMemory implements the `memory` diagnostic: a JSON snapshot of the
// refcount registry's live object count and global-table size, built
// incrementally with sjson rather than marshalling a struct, pretty-
// printed with tidwall/pretty, and returned as a String.
func biMemory(in *Interp, args []value.Value) ([]value.Value, error) {
	doc := "{}"
	var err error
	doc, err = sjson.Set(doc, "liveHeapObjects", in.RC.Live())
	if err != nil {
		return nil, in.errf(srcerr.KindBadType, in.builtinPos(), "memory: %v", err)
	}
	doc, err = sjson.Set(doc, "globalCount", len(in.Globals))
	if err != nil {
		return nil, in.errf(srcerr.KindBadType, in.builtinPos(), "memory: %v", err)
	}
	rendered := string(pretty.Pretty([]byte(doc)))
	return []value.Value{value.Str(rendered)}, nil
}

func biToString(in *Interp, args []value.Value) ([]value.Value, error) {
	s, err := value.AsString(arg(args, 0))
	if err != nil {
		return nil, in.wrapValueErr(err, in.builtinPos())
	}
	return []value.Value{value.Str(s)}, nil
}

// biToNumber implements `tonumber(v)`: numbers pass through, strings
// parse as weak-int then fall back to weak-double, anything else
// yields Nil rather than an error (matching Lua's tonumber, which is a
// query, not an assertion).
func biToNumber(in *Interp, args []value.Value) ([]value.Value, error) {
	v := arg(args, 0)
	switch v.Kind() {
	case value.KindInt, value.KindDouble:
		return []value.Value{v}, nil
	case value.KindString:
		if n, err := value.WeakInt(v, true); err == nil {
			return []value.Value{value.Int(n)}, nil
		}
		if f, err := value.WeakDouble(v); err == nil {
			return []value.Value{value.Double(f)}, nil
		}
		return []value.Value{value.Nil}, nil
	default:
		return []value.Value{value.Nil}, nil
	}
}

func biType(in *Interp, args []value.Value) ([]value.Value, error) {
	return []value.Value{value.Str(value.TypeName(arg(args, 0)))}, nil
}
