// Package parser builds an internal/ast tree from a token stream produced
// by internal/lexer. Grounded on a hand-written recursive descent parser:
// a Parser struct with one token of lookahead and one parseXxx method per
// grammar production, returning a node or recording an error and
// attempting to resynchronize at the next statement boundary. The parser
// performs no scope or type analysis — it treats lexing/parsing as an
// external collaborator to the evaluator core, so this package's only
// job is to hand the core a tree.
package parser

import (
	"fmt"

	"github.com/noxlang/nox/internal/ast"
	"github.com/noxlang/nox/internal/lexer"
	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/token"
)

// Parser consumes tokens from a Lexer and builds an *ast.Chunk.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors   []*srcerr.Error
	warnings []string // e.g. ignored `<const>`/`<close>` local attributes
}

// New creates a Parser over src.
func New(src string) *Parser {
	p := &Parser{l: lexer.New(src)}
	p.next()
	p.next()
	return p
}

// Errors returns parse errors accumulated so far (lexer errors are
// included).
func (p *Parser) Errors() []*srcerr.Error { return append(p.l.Errors(), p.errors...) }

// Warnings returns non-fatal diagnostics, such as ignored local
// attributes.
func (p *Parser) Warnings() []string { return p.warnings }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(tt token.Type) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peek.Type == tt }

func (p *Parser) expect(tt token.Type) token.Token {
	tok := p.cur
	if !p.curIs(tt) {
		p.errorf(p.cur.Pos, "expected %s, got %s", tt, p.cur.Type)
	} else {
		p.next()
	}
	return tok
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, srcerr.New(srcerr.KindUnsupportedFeature, pos, format, args...))
}

// ParseChunk parses an entire program.
func (p *Parser) ParseChunk() (*ast.Chunk, error) {
	body := p.parseBlock(isChunkEnd)
	if len(p.errors) > 0 || len(p.l.Errors()) > 0 {
		errs := p.Errors()
		return &ast.Chunk{Body: body}, fmt.Errorf("%d parse error(s), first: %s", len(errs), errs[0])
	}
	return &ast.Chunk{Body: body}, nil
}

func isChunkEnd(tt token.Type) bool { return tt == token.EOF }

func isBlockEnd(tt token.Type) bool {
	switch tt {
	case token.EOF, token.END, token.ELSE, token.ELSEIF, token.UNTIL:
		return true
	default:
		return false
	}
}

// parseBlock parses statements until stop(p.cur.Type) is true, or a
// return statement terminates the block early (return must be last).
func (p *Parser) parseBlock(stop func(token.Type) bool) *ast.Block {
	block := &ast.Block{StartPos: p.cur.Pos}
	for !stop(p.cur.Type) {
		if p.curIs(token.SEMI) {
			p.next()
			continue
		}
		if p.curIs(token.RETURN) {
			block.Return = p.parseReturnStmt()
			break
		}
		stmt := p.parseStatement()
		if stmt == nil {
			// Resynchronize: advance past the offending token so a single
			// bad statement does not spin forever.
			if p.curIs(token.EOF) {
				break
			}
			p.next()
			continue
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block
}
