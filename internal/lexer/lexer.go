// Package lexer turns Nox source text into a stream of tokens.
//
// # Unicode and column positions
//
// Column positions are reported as Unicode code point (rune) counts, not
// byte offsets and not display widths: a multi-byte sequence such as 'Δ'
// or an emoji counts as a single column. This mirrors the column-counting
// contract documented by the scanner this package is modeled on, and
// keeps position tracking simple and reproducible across terminals.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/noxlang/nox/internal/srcerr"
	"github.com/noxlang/nox/internal/token"
)

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithTracing sets the lexer's tracing flag. The scanner does not consult
// the flag, so it produces no trace output and has no effect on the
// token stream produced.
func WithTracing(trace bool) Option {
	return func(l *Lexer) { l.tracing = trace }
}

// Lexer is a hand-written, rune-at-a-time scanner over Nox source text.
type Lexer struct {
	input string

	errors []*srcerr.Error

	position     int // byte offset of ch
	readPosition int // byte offset of next rune
	line         int
	column       int
	ch           rune

	tracing bool
}

// New creates a Lexer over src. A UTF-8, UTF-16LE, or UTF-16BE byte-order
// mark at the start of src, if present, is detected and stripped (with
// any UTF-16 input transcoded to UTF-8) before scanning begins.
func New(src string, opts ...Option) *Lexer {
	src = stripBOM(src)
	l := &Lexer{input: src, line: 1, column: 0}
	for _, opt := range opts {
		opt(l)
	}
	l.readRune()
	return l
}

// Errors returns the lexical errors accumulated so far.
func (l *Lexer) Errors() []*srcerr.Error { return l.errors }

// stripBOM detects and removes a leading byte-order mark, transcoding
// UTF-16 input to UTF-8 along the way. Source files without a BOM pass
// through untouched; this only pays for itself when one is present.
func stripBOM(src string) string {
	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	out, _, err := transform.String(decoder, src)
	if err != nil {
		return strings.TrimPrefix(src, "﻿")
	}
	return out
}

func (l *Lexer) readRune() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	l.ch = r
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readRune()
		case l.ch == '-' && l.peekRune() == '-':
			l.readRune()
			l.readRune()
			if l.ch == '[' && (l.peekRune() == '[' || l.peekRune() == '=') {
				l.skipLongBracket(true)
				continue
			}
			for l.ch != '\n' && l.ch != 0 {
				l.readRune()
			}
		default:
			return
		}
	}
}

// skipLongBracket consumes a Lua-style `[[... ]]` / `[=[... ]=]` long
// bracket. Long strings are rejected as an unsupported feature: this
// recognizes just enough of the syntax to report a clear
// unsupported-feature error instead of mis-lexing the rest of the file as
// individual tokens.
func (l *Lexer) skipLongBracket(isComment bool) {
	start := l.pos()
	l.readRune() // consume '['
	level := 0
	for l.ch == '=' {
		level++
		l.readRune()
	}
	if l.ch != '[' {
		l.errorf(start, srcerr.KindUnsupportedFeature, "long bracket syntax is not supported")
		return
	}
	l.readRune()

	closer := "]" + strings.Repeat("=", level) + "]"
	idx := strings.Index(l.input[l.position:], closer)
	if idx < 0 {
		l.errorf(start, srcerr.KindUnsupportedFeature, "unterminated long bracket")
		for l.ch != 0 {
			l.readRune()
		}
		return
	}
	if !isComment {
		l.errorf(start, srcerr.KindUnsupportedFeature, "long bracket strings are not supported")
	}
	for i := 0; i < idx+len(closer); i++ {
		l.readRune()
	}
}

func (l *Lexer) errorf(pos token.Position, kind srcerr.Kind, format string, args ...any) {
	l.errors = append(l.errors, srcerr.New(kind, pos, format, args...))
}

// NextToken scans and returns the next token in the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	pos := l.pos()

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case isIdentStart(l.ch):
		return l.readIdent(pos)
	case unicode.IsDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '"' || l.ch == '\'':
		return l.readString(pos)
	default:
		return l.readOperator(pos)
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdent(pos token.Position) token.Token {
	start := l.position
	for isIdentPart(l.ch) {
		l.readRune()
	}
	lit := l.input[start:l.position]
	return token.Token{Type: token.Lookup(lit), Literal: lit, Pos: pos}
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.position
	tt := token.INT

	if l.ch == '0' && (l.peekRune() == 'x' || l.peekRune() == 'X') {
		l.readRune()
		l.readRune()
		for isHexDigit(l.ch) {
			l.readRune()
		}
		if l.ch == '.' || l.ch == 'p' || l.ch == 'P' {
			l.errorf(pos, srcerr.KindUnsupportedFeature, "hex float literals are not supported")
			for isHexDigit(l.ch) || l.ch == '.' || l.ch == 'p' || l.ch == 'P' || l.ch == '+' || l.ch == '-' {
				l.readRune()
			}
		}
		return token.Token{Type: tt, Literal: l.input[start:l.position], Pos: pos}
	}

	for unicode.IsDigit(l.ch) {
		l.readRune()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekRune()) {
		tt = token.FLOAT
		l.readRune()
		for unicode.IsDigit(l.ch) {
			l.readRune()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		tt = token.FLOAT
		l.readRune()
		if l.ch == '+' || l.ch == '-' {
			l.readRune()
		}
		for unicode.IsDigit(l.ch) {
			l.readRune()
		}
	}
	return token.Token{Type: tt, Literal: l.input[start:l.position], Pos: pos}
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) readString(pos token.Position) token.Token {
	quote := l.ch
	l.readRune()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(pos, srcerr.KindUnsupportedFeature, "unterminated string literal")
			break
		}
		if l.ch == '\\' {
			l.readRune()
			sb.WriteRune(l.escapeRune())
			continue
		}
		sb.WriteRune(l.ch)
		l.readRune()
	}
	l.readRune() // consume closing quote
	return token.Token{Type: token.STRING, Literal: sb.String(), Pos: pos}
}

func (l *Lexer) escapeRune() rune {
	defer l.readRune()
	switch l.ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	default:
		return l.ch
	}
}

func (l *Lexer) readOperator(pos token.Position) token.Token {
	ch := l.ch

	two := func(next rune, tt token.Type, single token.Type) token.Token {
		if l.peekRune() == next {
			l.readRune()
			l.readRune()
			return token.Token{Type: tt, Literal: string(ch) + string(next), Pos: pos}
		}
		l.readRune()
		return token.Token{Type: single, Literal: string(ch), Pos: pos}
	}

	switch ch {
	case '+':
		l.readRune()
		return token.Token{Type: token.PLUS, Literal: "+", Pos: pos}
	case '-':
		l.readRune()
		return token.Token{Type: token.MINUS, Literal: "-", Pos: pos}
	case '*':
		l.readRune()
		return token.Token{Type: token.STAR, Literal: "*", Pos: pos}
	case '/':
		return two('/', token.DSLASH, token.SLASH)
	case '%':
		l.readRune()
		return token.Token{Type: token.PERCENT, Literal: "%", Pos: pos}
	case '^':
		l.readRune()
		return token.Token{Type: token.CARET, Literal: "^", Pos: pos}
	case '#':
		l.readRune()
		return token.Token{Type: token.HASH, Literal: "#", Pos: pos}
	case '&':
		l.readRune()
		return token.Token{Type: token.AMP, Literal: "&", Pos: pos}
	case '~':
		return two('=', token.NEQ, token.TILDE)
	case '|':
		l.readRune()
		return token.Token{Type: token.PIPE, Literal: "|", Pos: pos}
	case '<':
		if l.peekRune() == '<' {
			l.readRune()
			l.readRune()
			return token.Token{Type: token.SHL, Literal: "<<", Pos: pos}
		}
		return two('=', token.LE, token.LT)
	case '>':
		if l.peekRune() == '>' {
			l.readRune()
			l.readRune()
			return token.Token{Type: token.SHR, Literal: ">>", Pos: pos}
		}
		return two('=', token.GE, token.GT)
	case '=':
		return two('=', token.EQ, token.ASSIGN)
	case '(':
		l.readRune()
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}
	case ')':
		l.readRune()
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}
	case '{':
		l.readRune()
		return token.Token{Type: token.LBRACE, Literal: "{", Pos: pos}
	case '}':
		l.readRune()
		return token.Token{Type: token.RBRACE, Literal: "}", Pos: pos}
	case '[':
		if l.peekRune() == '[' || l.peekRune() == '=' {
			l.skipLongBracket(false)
			return l.NextToken()
		}
		l.readRune()
		return token.Token{Type: token.LBRACK, Literal: "[", Pos: pos}
	case ']':
		l.readRune()
		return token.Token{Type: token.RBRACK, Literal: "]", Pos: pos}
	case ';':
		l.readRune()
		return token.Token{Type: token.SEMI, Literal: ";", Pos: pos}
	case ':':
		return two(':', token.DBLCOLON, token.COLON)
	case ',':
		l.readRune()
		return token.Token{Type: token.COMMA, Literal: ",", Pos: pos}
	case '.':
		l.readRune()
		if l.ch == '.' {
			l.readRune()
			if l.ch == '.' {
				l.readRune()
				return token.Token{Type: token.ELLIPSIS, Literal: "...", Pos: pos}
			}
			return token.Token{Type: token.CONCAT, Literal: "..", Pos: pos}
		}
		return token.Token{Type: token.DOT, Literal: ".", Pos: pos}
	default:
		lit := string(ch)
		l.errorf(pos, srcerr.KindUnsupportedFeature, fmt.Sprintf("unexpected character %q", ch))
		l.readRune()
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos}
	}
}
