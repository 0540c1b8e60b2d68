package parser

import (
	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/token"
)

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.LOCAL:
		return p.parseLocalOrLocalFunction()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.REPEAT:
		return p.parseRepeatStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.DO:
		return p.parseDoStmt()
	case token.FUNCTION:
		return p.parseFunctionDeclStmt()
	case token.BREAK:
		pos := p.cur.Pos
		p.next()
		return &ast.BreakStmt{StartPos: pos}
	case token.GOTO:
		pos := p.cur.Pos
		p.next()
		name := p.expect(token.IDENT).Literal
		return &ast.GotoStmt{Label: name, StartPos: pos}
	case token.DBLCOLON:
		pos := p.cur.Pos
		p.next()
		name := p.expect(token.IDENT).Literal
		p.expect(token.DBLCOLON)
		return &ast.LabelStmt{Name: name, StartPos: pos}
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.cur.Pos
	p.next() // consume 'return'
	stmt := &ast.ReturnStmt{StartPos: pos}
	if isBlockEnd(p.cur.Type) || p.curIs(token.SEMI) {
		return stmt
	}
	stmt.Exprs = p.parseExprList()
	if p.curIs(token.SEMI) {
		p.next()
	}
	return stmt
}

func (p *Parser) parseLocalOrLocalFunction() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'local'
	if p.curIs(token.FUNCTION) {
		p.next()
		name := p.expect(token.IDENT).Literal
		fn := p.parseFunctionBody(pos)
		return &ast.LocalFunctionDeclStmt{Name: name, Func: fn, StartPos: pos}
	}

	stmt := &ast.LocalStmt{StartPos: pos}
	for {
		name := p.expect(token.IDENT).Literal
		stmt.Names = append(stmt.Names, name)
		attrib := ""
		if p.curIs(token.LT) {
			p.next()
			attrib = p.expect(token.IDENT).Literal
			p.expect(token.GT)
			p.warnings = append(p.warnings, "local attribute <"+attrib+"> on "+name+" is recognized but has no effect")
		}
		stmt.Attribs = append(stmt.Attribs, attrib)
		if !p.curIs(token.COMMA) {
			break
		}
		p.next()
	}
	if p.curIs(token.ASSIGN) {
		p.next()
		stmt.Exprs = p.parseExprList()
	}
	return stmt
}

func (p *Parser) parseIfStmt() ast.Stmt {
	pos := p.cur.Pos
	stmt := &ast.IfStmt{StartPos: pos}
	p.next() // consume 'if'
	for {
		cond := p.parseExpr()
		p.expect(token.THEN)
		body := p.parseBlock(isBlockEnd)
		stmt.Conds = append(stmt.Conds, cond)
		stmt.Blocks = append(stmt.Blocks, body)
		if p.curIs(token.ELSEIF) {
			p.next()
			continue
		}
		break
	}
	if p.curIs(token.ELSE) {
		p.next()
		stmt.Else = p.parseBlock(isBlockEnd)
	}
	p.expect(token.END)
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'while'
	cond := p.parseExpr()
	p.expect(token.DO)
	body := p.parseBlock(isBlockEnd)
	p.expect(token.END)
	return &ast.WhileStmt{Cond: cond, Body: body, StartPos: pos}
}

func (p *Parser) parseRepeatStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'repeat'
	body := p.parseBlock(isBlockEnd)
	p.expect(token.UNTIL)
	cond := p.parseExpr()
	return &ast.RepeatStmt{Body: body, Cond: cond, StartPos: pos}
}

func (p *Parser) parseDoStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'do'
	body := p.parseBlock(isBlockEnd)
	p.expect(token.END)
	return &ast.DoStmt{Body: body, StartPos: pos}
}

func (p *Parser) parseForStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'for'
	firstName := p.expect(token.IDENT).Literal

	if p.curIs(token.ASSIGN) {
		p.next()
		start := p.parseExpr()
		p.expect(token.COMMA)
		limit := p.parseExpr()
		var step ast.Expr
		if p.curIs(token.COMMA) {
			p.next()
			step = p.parseExpr()
		}
		p.expect(token.DO)
		body := p.parseBlock(isBlockEnd)
		p.expect(token.END)
		return &ast.NumericForStmt{Name: firstName, Start: start, Limit: limit, Step: step, Body: body, StartPos: pos}
	}

	names := []string{firstName}
	for p.curIs(token.COMMA) {
		p.next()
		names = append(names, p.expect(token.IDENT).Literal)
	}
	p.expect(token.IN)
	exprs := p.parseExprList()
	p.expect(token.DO)
	body := p.parseBlock(isBlockEnd)
	p.expect(token.END)
	return &ast.GenericForStmt{Names: names, Exprs: exprs, Body: body, StartPos: pos}
}

func (p *Parser) parseFunctionDeclStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // consume 'function'
	path := []string{p.expect(token.IDENT).Literal}
	for p.curIs(token.DOT) {
		p.next()
		path = append(path, p.expect(token.IDENT).Literal)
	}
	method := ""
	if p.curIs(token.COLON) {
		p.next()
		method = p.expect(token.IDENT).Literal
	}
	fn := p.parseFunctionBody(pos)
	if method != "" {
		fn.Params = append([]string{"self"}, fn.Params...)
	}
	return &ast.FunctionDeclStmt{Path: path, Method: method, Func: fn, StartPos: pos}
}

// parseFunctionBody parses `(params) block end`, the shared tail of a
// function literal, `function name(...)`, and `local function name(...)`.
func (p *Parser) parseFunctionBody(pos token.Position) *ast.FunctionExpr {
	fn := &ast.FunctionExpr{StartPos: pos}
	p.expect(token.LPAREN)
	for !p.curIs(token.RPAREN) {
		if p.curIs(token.ELLIPSIS) {
			fn.IsVararg = true
			p.next()
			break
		}
		fn.Params = append(fn.Params, p.expect(token.IDENT).Literal)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	fn.Body = p.parseBlock(isBlockEnd)
	p.expect(token.END)
	return fn
}

// parseExprStatement parses a statement that begins with an expression:
// either a bare call (CallStmt) or the start of an assignment LHS list.
func (p *Parser) parseExprStatement() ast.Stmt {
	pos := p.cur.Pos
	first := p.parseSuffixedExpr()

	if p.curIs(token.ASSIGN) || p.curIs(token.COMMA) {
		vars := []ast.Expr{first}
		for p.curIs(token.COMMA) {
			p.next()
			vars = append(vars, p.parseSuffixedExpr())
		}
		p.expect(token.ASSIGN)
		exprs := p.parseExprList()
		return &ast.AssignStmt{Vars: vars, Exprs: exprs, StartPos: pos}
	}

	call, ok := first.(*ast.CallExpr)
	if !ok {
		p.errorf(pos, "syntax error: expression statement must be a function call")
		return nil
	}
	return &ast.CallStmt{Call: call, StartPos: pos}
}
