package interp_test

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/noxlang/nox/internal/config"
	"github.com/noxlang/nox/internal/interp"
	"github.com/noxlang/nox/internal/parser"
	"github.com/noxlang/nox/internal/scope"
	"github.com/noxlang/nox/internal/value"
)

// TestMemoryBuiltinJSONShape runs the `memory()` diagnostic builtin and
// queries the JSON it produces with gjson, the read-side counterpart to
// the sjson calls that built it.
func TestMemoryBuiltinJSONShape(t *testing.T) {
	src := `
		local t = {1, 2, 3}
		return memory()
	`
	p := parser.New(src)
	chunk, err := p.ParseChunk()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("scope analysis error: %v", err)
	}
	in := interp.New(analysis, config.Default())
	results, err := in.RunChunk(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	doc, ok := value.AsStr(results[0])
	if !ok {
		t.Fatalf("memory() did not return a string value: %v", results[0])
	}

	live := gjson.Get(doc, "liveHeapObjects")
	if !live.Exists() {
		t.Fatalf("expected liveHeapObjects field in %s", doc)
	}
	if live.Int() < 1 {
		t.Fatalf("got liveHeapObjects=%d, want at least 1 (the table t)", live.Int())
	}

	globalCount := gjson.Get(doc, "globalCount")
	if !globalCount.Exists() {
		t.Fatalf("expected globalCount field in %s", doc)
	}
	// the global store always carries the prelude builtins, so this is
	// never zero regardless of what the script itself declares globally.
	if globalCount.Int() < 1 {
		t.Fatalf("got globalCount=%d, want at least 1", globalCount.Int())
	}
}

// TestGlobalsBuiltinExposesNames exercises biGlobals end to end: the
// returned table must expose every prelude builtin plus script-bound
// globals, keyed by name.
func TestGlobalsBuiltinExposesNames(t *testing.T) {
	src := `
		x = 1
		y = 2
		return globals()
	`
	p := parser.New(src)
	chunk, err := p.ParseChunk()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("scope analysis error: %v", err)
	}
	in := interp.New(analysis, config.Default())
	results, err := in.RunChunk(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, ok := results[0].(value.Table)
	if !ok {
		t.Fatalf("globals() did not return a table: %T", results[0])
	}
	for _, name := range []string{"x", "y", "print", "memory"} {
		c, err := tbl.Subscript(value.Str(name), false)
		if err != nil {
			t.Fatalf("subscript %q: %v", name, err)
		}
		if c.V.Kind() == value.KindNil {
			t.Errorf("expected global %q to be bound", name)
		}
	}
}
