package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/parser"
)

// describe renders a compact, deterministic one-line-per-node shape of
// an AST: just the node's Go type and the handful of fields that
// identify it, never a pointer address, so the snapshot stays stable
// across runs.
func describe(node ast.Node, indent int, sb *strings.Builder) {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *ast.Chunk:
		sb.WriteString(pad + "Chunk\n")
		describe(n.Body, indent+1, sb)
	case *ast.Block:
		fmt.Fprintf(sb, "%sBlock(%d)\n", pad, len(n.Statements))
		for _, s := range n.Statements {
			describe(s, indent+1, sb)
		}
		if n.Return != nil {
			describe(n.Return, indent+1, sb)
		}
	case *ast.LocalStmt:
		fmt.Fprintf(sb, "%sLocalStmt%v\n", pad, n.Names)
	case *ast.AssignStmt:
		fmt.Fprintf(sb, "%sAssignStmt(%d)\n", pad, len(n.Vars))
	case *ast.IfStmt:
		fmt.Fprintf(sb, "%sIfStmt(%d branch(es), else=%v)\n", pad, len(n.Conds), n.Else != nil)
	case *ast.WhileStmt:
		sb.WriteString(pad + "WhileStmt\n")
		describe(n.Body, indent+1, sb)
	case *ast.NumericForStmt:
		fmt.Fprintf(sb, "%sNumericForStmt(%s)\n", pad, n.Name)
		describe(n.Body, indent+1, sb)
	case *ast.LocalFunctionDeclStmt:
		fmt.Fprintf(sb, "%sLocalFunctionDeclStmt(%s)\n", pad, n.Name)
	case *ast.ReturnStmt:
		fmt.Fprintf(sb, "%sReturnStmt(%d)\n", pad, len(n.Exprs))
	case *ast.BinaryExpr:
		fmt.Fprintf(sb, "%sBinaryExpr(op=%d)\n", pad, n.Op)
	default:
		fmt.Fprintf(sb, "%s%T\n", pad, node)
	}
}

func snapshotParse(t *testing.T, src string) {
	t.Helper()
	p := parser.New(src)
	chunk, err := p.ParseChunk()
	if err != nil {
		t.Fatalf("ParseChunk(%q): %v", src, err)
	}
	var sb strings.Builder
	describe(chunk, 0, &sb)
	snaps.MatchSnapshot(t, sb.String())
}

func TestParseSnapshotIfElseif(t *testing.T) {
	snapshotParse(t, `
		if a then
			return 1
		elseif b then
			return 2
		else
			return 3
		end
	`)
}

func TestParseSnapshotNumericForAndLocalFunction(t *testing.T) {
	snapshotParse(t, `
		local function sum(n)
			local total = 0
			for i = 1, n do
				total = total + i
			end
			return total
		end
	`)
}
