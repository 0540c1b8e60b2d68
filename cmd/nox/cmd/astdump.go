package cmd

import (
	"fmt"
	"strings"

	"github.com/noxlang/nox/internal/ast"
)

// dumpASTNode prints node and its children with one line per node,
// indented by nesting depth: a type switch over every concrete node
// shape rather than a generic reflection-based dumper, so the output
// names each node the way the grammar names it.
func dumpASTNode(node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *ast.Chunk:
		fmt.Println(pad + "Chunk")
		dumpASTNode(n.Body, indent+1)
	case *ast.Block:
		fmt.Printf("%sBlock (%d statement(s))\n", pad, len(n.Statements))
		for _, s := range n.Statements {
			dumpASTNode(s, indent+1)
		}
		if n.Return != nil {
			dumpASTNode(n.Return, indent+1)
		}
	case *ast.LocalStmt:
		fmt.Printf("%sLocalStmt %v\n", pad, n.Names)
		for _, e := range n.Exprs {
			dumpASTNode(e, indent+1)
		}
	case *ast.AssignStmt:
		fmt.Printf("%sAssignStmt (%d var(s))\n", pad, len(n.Vars))
		for _, v := range n.Vars {
			dumpASTNode(v, indent+1)
		}
		for _, e := range n.Exprs {
			dumpASTNode(e, indent+1)
		}
	case *ast.CallStmt:
		fmt.Println(pad + "CallStmt")
		dumpASTNode(n.Call, indent+1)
	case *ast.DoStmt:
		fmt.Println(pad + "DoStmt")
		dumpASTNode(n.Body, indent+1)
	case *ast.IfStmt:
		fmt.Println(pad + "IfStmt")
		for i, c := range n.Conds {
			dumpASTNode(c, indent+1)
			dumpASTNode(n.Blocks[i], indent+1)
		}
		if n.Else != nil {
			fmt.Println(pad + "  Else")
			dumpASTNode(n.Else, indent+2)
		}
	case *ast.WhileStmt:
		fmt.Println(pad + "WhileStmt")
		dumpASTNode(n.Cond, indent+1)
		dumpASTNode(n.Body, indent+1)
	case *ast.RepeatStmt:
		fmt.Println(pad + "RepeatStmt")
		dumpASTNode(n.Body, indent+1)
		dumpASTNode(n.Cond, indent+1)
	case *ast.NumericForStmt:
		fmt.Printf("%sNumericForStmt %s\n", pad, n.Name)
		dumpASTNode(n.Start, indent+1)
		dumpASTNode(n.Limit, indent+1)
		if n.Step != nil {
			dumpASTNode(n.Step, indent+1)
		}
		dumpASTNode(n.Body, indent+1)
	case *ast.GenericForStmt:
		fmt.Printf("%sGenericForStmt %v\n", pad, n.Names)
		for _, e := range n.Exprs {
			dumpASTNode(e, indent+1)
		}
		dumpASTNode(n.Body, indent+1)
	case *ast.FunctionDeclStmt:
		fmt.Printf("%sFunctionDeclStmt %s\n", pad, strings.Join(n.Path, "."))
		dumpASTNode(n.Func, indent+1)
	case *ast.LocalFunctionDeclStmt:
		fmt.Printf("%sLocalFunctionDeclStmt %s\n", pad, n.Name)
		dumpASTNode(n.Func, indent+1)
	case *ast.BreakStmt:
		fmt.Println(pad + "BreakStmt")
	case *ast.GotoStmt:
		fmt.Printf("%sGotoStmt %s\n", pad, n.Label)
	case *ast.LabelStmt:
		fmt.Printf("%sLabelStmt %s\n", pad, n.Name)
	case *ast.ReturnStmt:
		fmt.Println(pad + "ReturnStmt")
		for _, e := range n.Exprs {
			dumpASTNode(e, indent+1)
		}
	case *ast.NilLit:
		fmt.Println(pad + "NilLit")
	case *ast.BoolLit:
		fmt.Printf("%sBoolLit %v\n", pad, n.Value)
	case *ast.IntLit:
		fmt.Printf("%sIntLit %d\n", pad, n.Value)
	case *ast.FloatLit:
		fmt.Printf("%sFloatLit %g\n", pad, n.Value)
	case *ast.StringLit:
		fmt.Printf("%sStringLit %q\n", pad, n.Value)
	case *ast.VarargExpr:
		fmt.Println(pad + "VarargExpr")
	case *ast.NameExpr:
		fmt.Printf("%sNameExpr %s\n", pad, n.Name)
	case *ast.IndexExpr:
		fmt.Println(pad + "IndexExpr")
		dumpASTNode(n.Object, indent+1)
		dumpASTNode(n.Key, indent+1)
	case *ast.DotExpr:
		fmt.Printf("%sDotExpr .%s\n", pad, n.Name)
		dumpASTNode(n.Object, indent+1)
	case *ast.CallExpr:
		if n.Method != "" {
			fmt.Printf("%sCallExpr :%s\n", pad, n.Method)
		} else {
			fmt.Println(pad + "CallExpr")
		}
		dumpASTNode(n.Callee, indent+1)
		for _, a := range n.Args {
			dumpASTNode(a, indent+1)
		}
	case *ast.FunctionExpr:
		fmt.Printf("%sFunctionExpr %v vararg=%v\n", pad, n.Params, n.IsVararg)
		dumpASTNode(n.Body, indent+1)
	case *ast.TableConstructorExpr:
		fmt.Printf("%sTableConstructorExpr (%d field(s))\n", pad, len(n.Fields))
		for _, f := range n.Fields {
			dumpASTNode(f.Value, indent+1)
		}
	case *ast.BinaryExpr:
		fmt.Printf("%sBinaryExpr op=%d\n", pad, n.Op)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.UnaryExpr:
		fmt.Printf("%sUnaryExpr op=%d\n", pad, n.Op)
		dumpASTNode(n.Operand, indent+1)
	case *ast.ParenExpr:
		fmt.Println(pad + "ParenExpr")
		dumpASTNode(n.Inner, indent+1)
	default:
		fmt.Printf("%s%T\n", pad, node)
	}
}
