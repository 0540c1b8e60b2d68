package parser

import (
	"strconv"
	"strings"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/token"
)

// binding powers follow Lua 5.3's operator precedence table, lowest to
// highest: or, and, comparisons, |, ~(binary), &, shifts, .. (right
// assoc), + -, * / // %, unary operators, ^ (right assoc).
const (
	lowest = iota
	precOr
	precAnd
	precCompare
	precBOr
	precBXor
	precBAnd
	precShift
	precConcat
	precAdd
	precMul
	precUnary
	precPow
)

var binPrec = map[token.Type]int{
	token.OR:      precOr,
	token.AND:     precAnd,
	token.LT:      precCompare,
	token.GT:      precCompare,
	token.LE:      precCompare,
	token.GE:      precCompare,
	token.EQ:      precCompare,
	token.NEQ:     precCompare,
	token.PIPE:    precBOr,
	token.TILDE:   precBXor,
	token.AMP:     precBAnd,
	token.SHL:     precShift,
	token.SHR:     precShift,
	token.CONCAT:  precConcat,
	token.PLUS:    precAdd,
	token.MINUS:   precAdd,
	token.STAR:    precMul,
	token.SLASH:   precMul,
	token.DSLASH:  precMul,
	token.PERCENT: precMul,
	token.CARET:   precPow,
}

var binOps = map[token.Type]ast.BinaryOp{
	token.OR: ast.OpOr, token.AND: ast.OpAnd,
	token.LT: ast.OpLt, token.GT: ast.OpGt, token.LE: ast.OpLe, token.GE: ast.OpGe,
	token.EQ: ast.OpEq, token.NEQ: ast.OpNe,
	token.PIPE: ast.OpBOr, token.TILDE: ast.OpBXor, token.AMP: ast.OpBAnd,
	token.SHL: ast.OpShl, token.SHR: ast.OpShr,
	token.CONCAT: ast.OpConcat,
	token.PLUS:   ast.OpAdd, token.MINUS: ast.OpSub,
	token.STAR: ast.OpMul, token.SLASH: ast.OpDiv, token.DSLASH: ast.OpFloorDiv, token.PERCENT: ast.OpMod,
	token.CARET: ast.OpPow,
}

// rightAssoc marks operators that associate to the right: `..` and `^`.
func rightAssoc(tt token.Type) bool { return tt == token.CONCAT || tt == token.CARET }

func (p *Parser) parseExpr() ast.Expr { return p.parseBinExpr(lowest) }

func (p *Parser) parseBinExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		prec, ok := binPrec[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := binOps[p.cur.Type]
		pos := p.cur.Pos
		p.next()
		nextMin := prec + 1
		if rightAssoc(p.curTypeOf(op)) {
			nextMin = prec
		}
		right := p.parseBinExpr(nextMin)
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, StartPos: pos}
	}
}

// curTypeOf maps back from the operator we just consumed to decide
// associativity; simpler than threading the token type through the loop.
func (p *Parser) curTypeOf(op ast.BinaryOp) token.Type {
	switch op {
	case ast.OpConcat:
		return token.CONCAT
	case ast.OpPow:
		return token.CARET
	default:
		return token.ILLEGAL
	}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.NOT:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: p.parseBinExpr(precUnary), StartPos: pos}
	case token.MINUS:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: p.parseBinExpr(precUnary), StartPos: pos}
	case token.HASH:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpLen, Operand: p.parseBinExpr(precUnary), StartPos: pos}
	case token.TILDE:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpBNot, Operand: p.parseBinExpr(precUnary), StartPos: pos}
	default:
		return p.parsePowExpr()
	}
}

// parsePowExpr handles `^`'s unusual precedence: it binds tighter than
// unary operators on its left operand but the right operand of `^` may
// itself start with a unary operator (`2^-2`), handled naturally because
// parseBinExpr recurses back into parseUnaryExpr for the right side.
func (p *Parser) parsePowExpr() ast.Expr {
	base := p.parseSuffixedExpr()
	if p.curIs(token.CARET) {
		pos := p.cur.Pos
		p.next()
		exp := p.parseBinExpr(precUnary)
		return &ast.BinaryExpr{Op: ast.OpPow, Left: base, Right: exp, StartPos: pos}
	}
	return base
}

// parseSuffixedExpr parses a primary expression followed by any chain of
// `.name`, `[expr]`, `(args)`, or `:name(args)` suffixes.
func (p *Parser) parseSuffixedExpr() ast.Expr {
	expr := p.parsePrimaryExpr()
	for {
		pos := p.cur.Pos
		switch p.cur.Type {
		case token.DOT:
			p.next()
			name := p.expect(token.IDENT).Literal
			expr = &ast.DotExpr{Object: expr, Name: name, StartPos: pos}
		case token.LBRACK:
			p.next()
			key := p.parseExpr()
			p.expect(token.RBRACK)
			expr = &ast.IndexExpr{Object: expr, Key: key, StartPos: pos}
		case token.COLON:
			p.next()
			method := p.expect(token.IDENT).Literal
			args := p.parseCallArgs()
			expr = &ast.CallExpr{Callee: expr, Method: method, Args: args, StartPos: pos}
		case token.LPAREN, token.STRING, token.LBRACE:
			args := p.parseCallArgs()
			expr = &ast.CallExpr{Callee: expr, Args: args, StartPos: pos}
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallArgs() []ast.Expr {
	switch p.cur.Type {
	case token.STRING:
		lit := &ast.StringLit{Value: p.cur.Literal, StartPos: p.cur.Pos}
		p.next()
		return []ast.Expr{lit}
	case token.LBRACE:
		return []ast.Expr{p.parseTableConstructor()}
	default:
		p.expect(token.LPAREN)
		var args []ast.Expr
		if !p.curIs(token.RPAREN) {
			args = p.parseExprList()
		}
		p.expect(token.RPAREN)
		return args
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.NIL:
		p.next()
		return &ast.NilLit{StartPos: pos}
	case token.TRUE:
		p.next()
		return &ast.BoolLit{Value: true, StartPos: pos}
	case token.FALSE:
		p.next()
		return &ast.BoolLit{Value: false, StartPos: pos}
	case token.INT:
		lit := p.cur.Literal
		p.next()
		v, err := parseIntLiteral(lit)
		if err != nil {
			p.errorf(pos, "malformed integer literal %q", lit)
		}
		return &ast.IntLit{Value: v, StartPos: pos}
	case token.FLOAT:
		lit := p.cur.Literal
		p.next()
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			p.errorf(pos, "malformed float literal %q", lit)
		}
		return &ast.FloatLit{Value: v, StartPos: pos}
	case token.STRING:
		v := p.cur.Literal
		p.next()
		return &ast.StringLit{Value: v, StartPos: pos}
	case token.ELLIPSIS:
		p.next()
		return &ast.VarargExpr{StartPos: pos}
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		return &ast.NameExpr{Name: name, StartPos: pos}
	case token.LPAREN:
		p.next()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return &ast.ParenExpr{Inner: inner, StartPos: pos}
	case token.FUNCTION:
		p.next()
		return p.parseFunctionBody(pos)
	case token.LBRACE:
		return p.parseTableConstructor()
	default:
		p.errorf(pos, "unexpected token %s in expression", p.cur.Type)
		p.next()
		return &ast.NilLit{StartPos: pos}
	}
}

func parseIntLiteral(lit string) (int64, error) {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		return strconv.ParseInt(lit[2:], 16, 64)
	}
	return strconv.ParseInt(lit, 10, 64)
}

func (p *Parser) parseTableConstructor() ast.Expr {
	pos := p.cur.Pos
	p.expect(token.LBRACE)
	tc := &ast.TableConstructorExpr{StartPos: pos}
	for !p.curIs(token.RBRACE) {
		tc.Fields = append(tc.Fields, p.parseTableField())
		if p.curIs(token.COMMA) || p.curIs(token.SEMI) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return tc
}

func (p *Parser) parseTableField() ast.Field {
	if p.curIs(token.LBRACK) {
		p.next()
		key := p.parseExpr()
		p.expect(token.RBRACK)
		p.expect(token.ASSIGN)
		value := p.parseExpr()
		return ast.Field{Kind: ast.FieldKeyed, Key: key, Value: value}
	}
	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		name := p.cur.Literal
		p.next()
		p.next()
		value := p.parseExpr()
		return ast.Field{Kind: ast.FieldNamed, Name: name, Value: value}
	}
	return ast.Field{Kind: ast.FieldPositional, Value: p.parseExpr()}
}

func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpr()}
	for p.curIs(token.COMMA) {
		p.next()
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}
