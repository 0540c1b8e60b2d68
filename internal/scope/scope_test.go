package scope_test

import (
	"testing"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/parser"
	"github.com/noxlang/nox/internal/scope"
	"github.com/noxlang/nox/internal/srcerr"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	p := parser.New(src)
	chunk, err := p.ParseChunk()
	if err != nil {
		t.Fatalf("ParseChunk(%q): %v", src, err)
	}
	return chunk
}

func errorKinds(analysis *scope.Analysis) []srcerr.Kind {
	var kinds []srcerr.Kind
	for _, e := range analysis.Errors {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func hasKind(kinds []srcerr.Kind, want srcerr.Kind) bool {
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func TestLocalsPerBlockInheritedBySnapshot(t *testing.T) {
	chunk := mustParse(t, `
		local a = 1
		do
			local b = 2
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	doStmt := chunk.Body.Statements[1].(*ast.DoStmt)
	if _, ok := analysis.LocalsPerBlock[chunk.Body]["a"]; !ok {
		t.Fatal("expected chunk body to know about local `a`")
	}
	if _, ok := analysis.LocalsPerBlock[doStmt.Body]["a"]; !ok {
		t.Fatal("expected nested do-block to inherit `a` from its parent")
	}
	if _, ok := analysis.LocalsPerBlock[doStmt.Body]["b"]; !ok {
		t.Fatal("expected nested do-block to know about its own local `b`")
	}
	if _, ok := analysis.LocalsPerBlock[chunk.Body]["b"]; ok {
		t.Fatal("chunk body must not see a nested block's local `b`")
	}
}

func TestLoopBlocksMembership(t *testing.T) {
	chunk := mustParse(t, `
		while true do
			local x = 1
		end
		do
			local y = 2
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	whileStmt := chunk.Body.Statements[0].(*ast.WhileStmt)
	doStmt := chunk.Body.Statements[1].(*ast.DoStmt)
	if !analysis.LoopBlocks[whileStmt.Body] {
		t.Fatal("expected while-loop body to be registered as a loop block")
	}
	if analysis.LoopBlocks[doStmt.Body] {
		t.Fatal("a plain do-block must not be registered as a loop block")
	}
}

func TestLabelToContextPopulated(t *testing.T) {
	chunk := mustParse(t, `
		do
			goto done
			::done::
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	doStmt := chunk.Body.Statements[0].(*ast.DoStmt)
	blocks := analysis.LabelToContext["done"]
	if len(blocks) != 1 || blocks[0] != doStmt.Body {
		t.Fatalf("got %v, want [do-body]", blocks)
	}
}

func TestFunctionParentsChainAcrossNesting(t *testing.T) {
	chunk := mustParse(t, `
		local function outer()
			local function inner()
				return 1
			end
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	outer := chunk.Body.Statements[0].(*ast.LocalFunctionDeclStmt)
	inner := outer.Func.Body.Statements[0].(*ast.LocalFunctionDeclStmt)

	outerChain, ok := analysis.FunctionParents[outer.Func.Body]
	if !ok || len(outerChain) != 1 || outerChain[0] != chunk.Body {
		t.Fatalf("outer chain got %v", outerChain)
	}
	innerChain, ok := analysis.FunctionParents[inner.Func.Body]
	if !ok || len(innerChain) != 2 {
		t.Fatalf("inner chain got %v, want 2 entries", innerChain)
	}
	if innerChain[0] != outer.Func.Body || innerChain[1] != chunk.Body {
		t.Fatalf("inner chain got %v, want [outer body, chunk body]", innerChain)
	}
}

func TestGotoForwardClearOfLocalsSucceeds(t *testing.T) {
	chunk := mustParse(t, `
		do
			goto done
			print(1)
			::done::
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	if len(analysis.Errors) != 0 {
		t.Fatalf("got errors %v, want none", errorKinds(analysis))
	}
}

func TestGotoCrossingLocalIsRejected(t *testing.T) {
	chunk := mustParse(t, `
		do
			goto done
			local x = 1
			::done::
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err == nil {
		t.Fatal("expected a crossed-local error")
	}
	if !hasKind(errorKinds(analysis), srcerr.KindCrossedLocal) {
		t.Fatalf("got kinds %v, want crossed-local", errorKinds(analysis))
	}
}

func TestGotoWithoutVisibleLabelIsRejected(t *testing.T) {
	chunk := mustParse(t, `
		do
			goto nowhere
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err == nil {
		t.Fatal("expected an invisible-label error")
	}
	if !hasKind(errorKinds(analysis), srcerr.KindInvisibleLabel) {
		t.Fatalf("got kinds %v, want invisible-label", errorKinds(analysis))
	}
}

func TestDuplicateLabelInSameBlockIsRejected(t *testing.T) {
	chunk := mustParse(t, `
		do
			::again::
			::again::
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err == nil {
		t.Fatal("expected a label-already-defined error")
	}
	if !hasKind(errorKinds(analysis), srcerr.KindLabelAlreadyDefined) {
		t.Fatalf("got kinds %v, want label-already-defined", errorKinds(analysis))
	}
}

func TestBreakOutsideLoopIsRejected(t *testing.T) {
	chunk := mustParse(t, `
		do
			break
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err == nil {
		t.Fatal("expected a lonely-break error")
	}
	if !hasKind(errorKinds(analysis), srcerr.KindLonelyBreak) {
		t.Fatalf("got kinds %v, want lonely-break", errorKinds(analysis))
	}
}

func TestBreakInsideLoopIsAccepted(t *testing.T) {
	chunk := mustParse(t, `
		while true do
			break
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	if len(analysis.Errors) != 0 {
		t.Fatalf("got errors %v, want none", errorKinds(analysis))
	}
}

func TestBreakInsideNestedDoWithinLoopIsAccepted(t *testing.T) {
	chunk := mustParse(t, `
		while true do
			do
				break
			end
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	if len(analysis.Errors) != 0 {
		t.Fatalf("got errors %v, want none", errorKinds(analysis))
	}
}

func TestBreakDoesNotEscapeEnclosingFunction(t *testing.T) {
	chunk := mustParse(t, `
		while true do
			local function f()
				break
			end
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err == nil {
		t.Fatal("expected a lonely-break error: a loop in an enclosing function must not count")
	}
	if !hasKind(errorKinds(analysis), srcerr.KindLonelyBreak) {
		t.Fatalf("got kinds %v, want lonely-break", errorKinds(analysis))
	}
}

func TestNumericForVariableIsPreDeclared(t *testing.T) {
	chunk := mustParse(t, `
		for i = 1, 10 do
			local j = i
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	forStmt := chunk.Body.Statements[0].(*ast.NumericForStmt)
	if _, ok := analysis.LocalsPerBlock[forStmt.Body]["i"]; !ok {
		t.Fatal("expected the for-loop's control variable to be visible in its own body")
	}
}

func TestGenericForVariablesArePreDeclared(t *testing.T) {
	chunk := mustParse(t, `
		for k, v in pairs(t) do
			local z = k
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	forStmt := chunk.Body.Statements[0].(*ast.GenericForStmt)
	if _, ok := analysis.LocalsPerBlock[forStmt.Body]["k"]; !ok {
		t.Fatal("expected `k` visible in the generic for-loop body")
	}
	if _, ok := analysis.LocalsPerBlock[forStmt.Body]["v"]; !ok {
		t.Fatal("expected `v` visible in the generic for-loop body")
	}
}

func TestFunctionParamsArePreDeclared(t *testing.T) {
	chunk := mustParse(t, `
		local function f(a, b)
			local c = a
		end
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	fn := chunk.Body.Statements[0].(*ast.LocalFunctionDeclStmt)
	if _, ok := analysis.LocalsPerBlock[fn.Func.Body]["a"]; !ok {
		t.Fatal("expected parameter `a` visible in the function body")
	}
	if _, ok := analysis.LocalsPerBlock[fn.Func.Body]["b"]; !ok {
		t.Fatal("expected parameter `b` visible in the function body")
	}
}

func TestRepeatConditionSeesBodyLocals(t *testing.T) {
	// cond is evaluated in the scope of body, so body's locals are
	// recorded on the repeat body block itself.
	chunk := mustParse(t, `
		repeat
			local done = true
		until done
	`)
	analysis, err := scope.Analyze(chunk)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	repeatStmt := chunk.Body.Statements[0].(*ast.RepeatStmt)
	if _, ok := analysis.LocalsPerBlock[repeatStmt.Body]["done"]; !ok {
		t.Fatal("expected `done` visible in the repeat body")
	}
}
