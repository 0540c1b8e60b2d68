// Package ast defines the syntax tree the evaluator consumes. Nodes are
// grouped the way the grammar groups them (one file section per grammar
// area) but the node set itself follows a fixed shape: chunk, block,
// statement, expression, variable-list, expression-list, function-body,
// function-name, table-constructor, field.
package ast

import "github.com/noxlang/nox/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Chunk is the root of a parsed program: a single top-level Block.
type Chunk struct {
	Body *Block
}

func (c *Chunk) Pos() token.Position { return c.Body.Pos() }

// Block is a sequence of statements with an optional trailing return.
// Every block is also a scope boundary for the static scope analyzer.
type Block struct {
	Statements []Stmt
	Return     *ReturnStmt // nil if the block has no return statement
	StartPos   token.Position
}

func (b *Block) Pos() token.Position { return b.StartPos }

// ---- Statements ----

// LocalStmt is `local names[<attribs>] = exprs`.
type LocalStmt struct {
	Names    []string
	Attribs  []string // parallel to Names; "" when no attribute given
	Exprs    []Expr
	StartPos token.Position
}

func (s *LocalStmt) Pos() token.Position { return s.StartPos }
func (*LocalStmt) stmtNode()             {}

// AssignStmt is `vars = exprs`.
type AssignStmt struct {
	Vars     []Expr // NameExpr, IndexExpr, or DotExpr
	Exprs    []Expr
	StartPos token.Position
}

func (s *AssignStmt) Pos() token.Position { return s.StartPos }
func (*AssignStmt) stmtNode()             {}

// CallStmt is a function call used as a standalone statement.
type CallStmt struct {
	Call     *CallExpr
	StartPos token.Position
}

func (s *CallStmt) Pos() token.Position { return s.StartPos }
func (*CallStmt) stmtNode()             {}

// DoStmt is `do block end`: an explicit nested block.
type DoStmt struct {
	Body     *Block
	StartPos token.Position
}

func (s *DoStmt) Pos() token.Position { return s.StartPos }
func (*DoStmt) stmtNode()             {}

// IfStmt is `if cond then block {elseif cond then block} [else block] end`.
type IfStmt struct {
	Conds    []Expr
	Blocks   []*Block
	Else     *Block // nil if no else clause
	StartPos token.Position
}

func (s *IfStmt) Pos() token.Position { return s.StartPos }
func (*IfStmt) stmtNode()             {}

// WhileStmt is `while cond do body end`.
type WhileStmt struct {
	Cond     Expr
	Body     *Block
	StartPos token.Position
}

func (s *WhileStmt) Pos() token.Position { return s.StartPos }
func (*WhileStmt) stmtNode()             {}

// RepeatStmt is `repeat body until cond`. cond is evaluated in the scope
// of body, so the scope analyzer treats RepeatStmt.Cond as part of
// Body's block rather than an outer expression.
type RepeatStmt struct {
	Body     *Block
	Cond     Expr
	StartPos token.Position
}

func (s *RepeatStmt) Pos() token.Position { return s.StartPos }
func (*RepeatStmt) stmtNode()             {}

// NumericForStmt is `for name = start, limit[, step] do body end`.
type NumericForStmt struct {
	Name     string
	Start    Expr
	Limit    Expr
	Step     Expr // nil if not given (defaults to 1)
	Body     *Block
	StartPos token.Position
}

func (s *NumericForStmt) Pos() token.Position { return s.StartPos }
func (*NumericForStmt) stmtNode()             {}

// GenericForStmt is `for names in exprs do body end`.
type GenericForStmt struct {
	Names    []string
	Exprs    []Expr
	Body     *Block
	StartPos token.Position
}

func (s *GenericForStmt) Pos() token.Position { return s.StartPos }
func (*GenericForStmt) stmtNode()             {}

// FunctionDeclStmt is `function a.b.c:method(...) body end` (dotted path
// plus optional trailing method name introducing an implicit self).
type FunctionDeclStmt struct {
	Path     []string
	Method   string // "" unless declared with `:name`
	Func     *FunctionExpr
	StartPos token.Position
}

func (s *FunctionDeclStmt) Pos() token.Position { return s.StartPos }
func (*FunctionDeclStmt) stmtNode()             {}

// LocalFunctionDeclStmt is `local function name(...) body end`. It is
// distinct from LocalStmt+FunctionExpr because the local slot must exist
// before the closure is built, so the function can recurse by name.
type LocalFunctionDeclStmt struct {
	Name     string
	Func     *FunctionExpr
	StartPos token.Position
}

func (s *LocalFunctionDeclStmt) Pos() token.Position { return s.StartPos }
func (*LocalFunctionDeclStmt) stmtNode()             {}

// BreakStmt is `break`.
type BreakStmt struct {
	StartPos token.Position
}

func (s *BreakStmt) Pos() token.Position { return s.StartPos }
func (*BreakStmt) stmtNode()             {}

// GotoStmt is `goto label`.
type GotoStmt struct {
	Label    string
	StartPos token.Position
}

func (s *GotoStmt) Pos() token.Position { return s.StartPos }
func (*GotoStmt) stmtNode()             {}

// LabelStmt is `::label::`.
type LabelStmt struct {
	Name     string
	StartPos token.Position
}

func (s *LabelStmt) Pos() token.Position { return s.StartPos }
func (*LabelStmt) stmtNode()             {}

// ReturnStmt is `return [exprs]`. It is always the last element of a
// Block (if present), never a free-standing mid-block statement.
type ReturnStmt struct {
	Exprs    []Expr
	StartPos token.Position
}

func (s *ReturnStmt) Pos() token.Position { return s.StartPos }
func (*ReturnStmt) stmtNode()             {}

// ---- Expressions ----

// NilLit is the literal `nil`.
type NilLit struct{ StartPos token.Position }

func (e *NilLit) Pos() token.Position { return e.StartPos }
func (*NilLit) exprNode()             {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value    bool
	StartPos token.Position
}

func (e *BoolLit) Pos() token.Position { return e.StartPos }
func (*BoolLit) exprNode()             {}

// IntLit is an integer literal.
type IntLit struct {
	Value    int64
	StartPos token.Position
}

func (e *IntLit) Pos() token.Position { return e.StartPos }
func (*IntLit) exprNode()             {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value    float64
	StartPos token.Position
}

func (e *FloatLit) Pos() token.Position { return e.StartPos }
func (*FloatLit) exprNode()             {}

// StringLit is a string literal.
type StringLit struct {
	Value    string
	StartPos token.Position
}

func (e *StringLit) Pos() token.Position { return e.StartPos }
func (*StringLit) exprNode()             {}

// VarargExpr is the `...` expression, valid only inside a vararg
// function's body.
type VarargExpr struct{ StartPos token.Position }

func (e *VarargExpr) Pos() token.Position { return e.StartPos }
func (*VarargExpr) exprNode()             {}

// NameExpr is a bare identifier reference; it may resolve to a local, an
// upvalue (closure capture), or a global.
type NameExpr struct {
	Name     string
	StartPos token.Position
}

func (e *NameExpr) Pos() token.Position { return e.StartPos }
func (*NameExpr) exprNode()             {}

// IndexExpr is `obj[key]`.
type IndexExpr struct {
	Object   Expr
	Key      Expr
	StartPos token.Position
}

func (e *IndexExpr) Pos() token.Position { return e.StartPos }
func (*IndexExpr) exprNode()             {}

// DotExpr is `obj.name`, sugar for indexing by a string-literal key.
type DotExpr struct {
	Object   Expr
	Name     string
	StartPos token.Position
}

func (e *DotExpr) Pos() token.Position { return e.StartPos }
func (*DotExpr) exprNode()             {}

// CallExpr is `callee(args)` or the method-call sugar `callee:name(args)`
// (Method != ""), which passes callee as an implicit first argument.
type CallExpr struct {
	Callee   Expr
	Method   string
	Args     []Expr
	StartPos token.Position
}

func (e *CallExpr) Pos() token.Position { return e.StartPos }
func (*CallExpr) exprNode()             {}

// FunctionExpr is a function literal: formal parameters, a trailing
// IsVararg flag standing in for a `...` sentinel parameter, and a body
// block.
type FunctionExpr struct {
	Params   []string
	IsVararg bool
	Body     *Block
	StartPos token.Position
}

func (e *FunctionExpr) Pos() token.Position { return e.StartPos }
func (*FunctionExpr) exprNode()             {}

// FieldKind distinguishes the three table-constructor field shapes.
type FieldKind int

const (
	FieldPositional FieldKind = iota // value
	FieldNamed                      // name = value
	FieldKeyed                      // [key] = value
)

// Field is one entry of a TableConstructorExpr.
type Field struct {
	Kind  FieldKind
	Key   Expr // set when Kind == FieldKeyed
	Name  string
	Value Expr
}

// TableConstructorExpr is `{ fields }`.
type TableConstructorExpr struct {
	Fields   []Field
	StartPos token.Position
}

func (e *TableConstructorExpr) Pos() token.Position { return e.StartPos }
func (*TableConstructorExpr) exprNode()             {}

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpConcat
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
)

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Op       BinaryOp
	Left     Expr
	Right    Expr
	StartPos token.Position
}

func (e *BinaryExpr) Pos() token.Position { return e.StartPos }
func (*BinaryExpr) exprNode()             {}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpBNot
	OpNot
	OpLen
)

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	Op       UnaryOp
	Operand  Expr
	StartPos token.Position
}

func (e *UnaryExpr) Pos() token.Position { return e.StartPos }
func (*UnaryExpr) exprNode()             {}

// ParenExpr wraps a parenthesized expression. It matters in exactly one
// place: a parenthesized multi-value call or `...` is truncated to a
// single value (the Var List expansion rule does not apply inside
// parentheses).
type ParenExpr struct {
	Inner    Expr
	StartPos token.Position
}

func (e *ParenExpr) Pos() token.Position { return e.StartPos }
func (*ParenExpr) exprNode()             {}
