package interp_test

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/noxlang/nox/internal/config"
	"github.com/noxlang/nox/internal/interp"
	"github.com/noxlang/nox/internal/parser"
	"github.com/noxlang/nox/internal/scope"
)

// runSource lexes, parses, statically analyzes, and runs src, capturing
// everything written to the chunk's Out stream.
func runSource(t *testing.T, src string) (string, []interface{}, error) {
	t.Helper()
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
	var buf bytes.Buffer
	in.Out = &buf
	results, runErr := in.RunChunk(chunk)
	vals := make([]interface{}, len(results))
	for i, v := range results {
		vals[i] = v
	}
	return buf.String(), vals, runErr
}

func TestRunChunkReturnsTopLevelValues(t *testing.T) {
	_, vals, err := runSource(t, `return 1, "two", true`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("got %d return values, want 3: %v", len(vals), vals)
	}
}

func TestRunChunkNoReturnYieldsNil(t *testing.T) {
	_, vals, err := runSource(t, `local x = 1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 0 {
		t.Fatalf("got %d return values, want 0", len(vals))
	}
}

func TestClosureCapturesLiveCell(t *testing.T) {
	out, _, err := runSource(t, `
		local function counter()
			local n = 0
			return function()
				n = n + 1
				return n
			end
		end
		local c = counter()
		print(c())
		print(c())
		print(c())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestNumericForLoopOutput(t *testing.T) {
	out, _, err := runSource(t, `
		local sum = 0
		for i = 1, 5 do
			sum = sum + i
		end
		print(sum)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestGotoUnwindAcrossBlocks(t *testing.T) {
	out, _, err := runSource(t, `
		for i = 1, 3 do
			if i == 2 then
				goto continue
			end
			print(i)
			::continue::
		end
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestRuntimeErrorOnBadCall(t *testing.T) {
	_, _, err := runSource(t, `
		local x = 5
		x()
	`)
	if err == nil {
		t.Fatal("expected a runtime error calling a number")
	}
	re, ok := err.(*interp.RuntimeError)
	if !ok {
		t.Fatalf("got %T, want *interp.RuntimeError", err)
	}
	snaps.MatchSnapshot(t, re.Kind)
}
