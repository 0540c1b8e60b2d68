package parser_test

import (
	"testing"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/parser"
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

func TestParseLocalAssign(t *testing.T) {
	chunk := mustParse(t, `local a, b = 1, 2 + 3`)
	if len(chunk.Body.Statements) != 1 {
		t.Fatalf("got %d statements", len(chunk.Body.Statements))
	}
	local, ok := chunk.Body.Statements[0].(*ast.LocalStmt)
	if !ok {
		t.Fatalf("got %T", chunk.Body.Statements[0])
	}
	if len(local.Names) != 2 || local.Names[0] != "a" || local.Names[1] != "b" {
		t.Fatalf("got names %v", local.Names)
	}
	if len(local.Exprs) != 2 {
		t.Fatalf("got %d exprs", len(local.Exprs))
	}
	if _, ok := local.Exprs[1].(*ast.BinaryExpr); !ok {
		t.Fatalf("got %T for second expr", local.Exprs[1])
	}
}

func TestParseIfElseif(t *testing.T) {
	chunk := mustParse(t, `
		if a then
			b = 1
		elseif c then
			b = 2
		else
			b = 3
		end
	`)
	stmt := chunk.Body.Statements[0].(*ast.IfStmt)
	if len(stmt.Conds) != 2 || len(stmt.Blocks) != 2 || stmt.Else == nil {
		t.Fatalf("got %+v", stmt)
	}
}

func TestParseNumericFor(t *testing.T) {
	chunk := mustParse(t, `for i = 1, 10, 2 do end`)
	stmt := chunk.Body.Statements[0].(*ast.NumericForStmt)
	if stmt.Name != "i" || stmt.Step == nil {
		t.Fatalf("got %+v", stmt)
	}
}

func TestParseGenericFor(t *testing.T) {
	chunk := mustParse(t, `for k, v in pairs(t) do end`)
	stmt := chunk.Body.Statements[0].(*ast.GenericForStmt)
	if len(stmt.Names) != 2 || stmt.Names[0] != "k" || stmt.Names[1] != "v" {
		t.Fatalf("got %+v", stmt)
	}
}

func TestParseFunctionDeclWithMethod(t *testing.T) {
	chunk := mustParse(t, `
		function obj.inner:method(x)
			return x
		end
	`)
	stmt := chunk.Body.Statements[0].(*ast.FunctionDeclStmt)
	if len(stmt.Path) != 2 || stmt.Path[0] != "obj" || stmt.Path[1] != "inner" {
		t.Fatalf("got path %v", stmt.Path)
	}
	if stmt.Method != "method" {
		t.Fatalf("got method %q", stmt.Method)
	}
	if len(stmt.Func.Params) != 2 || stmt.Func.Params[0] != "self" || stmt.Func.Params[1] != "x" {
		t.Fatalf("got params %v", stmt.Func.Params)
	}
}

func TestParseLocalFunctionRecursion(t *testing.T) {
	chunk := mustParse(t, `
		local function fact(n)
			if n <= 1 then return 1 end
			return n * fact(n - 1)
		end
	`)
	stmt := chunk.Body.Statements[0].(*ast.LocalFunctionDeclStmt)
	if stmt.Name != "fact" {
		t.Fatalf("got name %q", stmt.Name)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// `1 + 2 * 3 ^ 2` should parse as `1 + (2 * (3 ^ 2))`.
	chunk := mustParse(t, `x = 1 + 2 * 3 ^ 2`)
	assign := chunk.Body.Statements[0].(*ast.AssignStmt)
	add := assign.Exprs[0].(*ast.BinaryExpr)
	if add.Op != ast.OpAdd {
		t.Fatalf("top op got %v, want OpAdd", add.Op)
	}
	mul := add.Right.(*ast.BinaryExpr)
	if mul.Op != ast.OpMul {
		t.Fatalf("right op got %v, want OpMul", mul.Op)
	}
	pow := mul.Right.(*ast.BinaryExpr)
	if pow.Op != ast.OpPow {
		t.Fatalf("got %v, want OpPow", pow.Op)
	}
}

func TestParseConcatRightAssoc(t *testing.T) {
	// `a .. b .. c` should parse as `a .. (b .. c)`.
	chunk := mustParse(t, `x = a .. b .. c`)
	assign := chunk.Body.Statements[0].(*ast.AssignStmt)
	top := assign.Exprs[0].(*ast.BinaryExpr)
	if top.Op != ast.OpConcat {
		t.Fatalf("got %v", top.Op)
	}
	if _, ok := top.Left.(*ast.NameExpr); !ok {
		t.Fatalf("left got %T, want NameExpr", top.Left)
	}
	if _, ok := top.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("right got %T, want nested BinaryExpr", top.Right)
	}
}

func TestParseTableConstructor(t *testing.T) {
	chunk := mustParse(t, `t = {1, 2, [3] = "x", name = true}`)
	assign := chunk.Body.Statements[0].(*ast.AssignStmt)
	tc := assign.Exprs[0].(*ast.TableConstructorExpr)
	if len(tc.Fields) != 4 {
		t.Fatalf("got %d fields", len(tc.Fields))
	}
	if tc.Fields[0].Kind != ast.FieldPositional {
		t.Errorf("field 0 kind got %v", tc.Fields[0].Kind)
	}
	if tc.Fields[2].Kind != ast.FieldKeyed {
		t.Errorf("field 2 kind got %v", tc.Fields[2].Kind)
	}
	if tc.Fields[3].Kind != ast.FieldNamed || tc.Fields[3].Name != "name" {
		t.Errorf("field 3 got %+v", tc.Fields[3])
	}
}

func TestParseMethodCallChain(t *testing.T) {
	chunk := mustParse(t, `obj:method(1, 2).field[3]()`)
	stmt := chunk.Body.Statements[0].(*ast.CallStmt)
	outer := stmt.Call
	if outer.Method != "" || len(outer.Args) != 0 {
		t.Fatalf("outer call got %+v", outer)
	}
	idx := outer.Callee.(*ast.IndexExpr)
	dot := idx.Object.(*ast.DotExpr)
	if dot.Name != "field" {
		t.Fatalf("got %q", dot.Name)
	}
	inner := dot.Object.(*ast.CallExpr)
	if inner.Method != "method" || len(inner.Args) != 2 {
		t.Fatalf("inner call got %+v", inner)
	}
}

func TestParseReturnMultipleValues(t *testing.T) {
	chunk := mustParse(t, `
		function f(...)
			return 1, 2, ...
		end
	`)
	stmt := chunk.Body.Statements[0].(*ast.FunctionDeclStmt)
	ret := stmt.Func.Body.Return
	if ret == nil || len(ret.Exprs) != 3 {
		t.Fatalf("got %+v", ret)
	}
	if _, ok := ret.Exprs[2].(*ast.VarargExpr); !ok {
		t.Fatalf("got %T for last return expr", ret.Exprs[2])
	}
}

func TestParseGotoLabel(t *testing.T) {
	chunk := mustParse(t, `
		do
			goto done
			::done::
		end
	`)
	do := chunk.Body.Statements[0].(*ast.DoStmt)
	if _, ok := do.Body.Statements[0].(*ast.GotoStmt); !ok {
		t.Fatalf("got %T", do.Body.Statements[0])
	}
	if _, ok := do.Body.Statements[1].(*ast.LabelStmt); !ok {
		t.Fatalf("got %T", do.Body.Statements[1])
	}
}

func TestParseLocalAttribute(t *testing.T) {
	p := parser.New(`local x <const> = 1`)
	_, err := p.ParseChunk()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Warnings()) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(p.Warnings()), p.Warnings())
	}
}

func TestParseSyntaxErrorRecorded(t *testing.T) {
	p := parser.New(`local = `)
	_, err := p.ParseChunk()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if len(p.Errors()) == 0 {
		t.Fatal("expected Errors() to be non-empty")
	}
}
