package lexer_test

import (
	"testing"

	"github.com/noxlang/nox/internal/lexer"
	"github.com/noxlang/nox/internal/token"
)

func collect(src string) []token.Token {
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextTokenBasics(t *testing.T) {
	src := `local a = 12
	a, b = b, a
	while a < 10 do a = a + 1 end`

	toks := collect(src)
	want := []token.Type{
		token.LOCAL, token.IDENT, token.ASSIGN, token.INT,
		token.IDENT, token.COMMA, token.IDENT, token.ASSIGN, token.IDENT, token.COMMA, token.IDENT,
		token.WHILE, token.IDENT, token.LT, token.INT, token.DO,
		token.IDENT, token.ASSIGN, token.IDENT, token.PLUS, token.INT, token.END,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want token.Type
	}{
		{"10", token.INT},
		{"3.14", token.FLOAT},
		{"1e10", token.FLOAT},
		{"0x1F", token.INT},
	}
	for _, c := range cases {
		toks := collect(c.src)
		if toks[0].Type != c.want {
			t.Errorf("%q: got %s, want %s", c.src, toks[0].Type, c.want)
		}
		if toks[0].Literal != c.src {
			t.Errorf("%q: literal got %q", c.src, toks[0].Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb"`)
	if toks[0].Type != token.STRING || toks[0].Literal != "a\nb" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestOperators(t *testing.T) {
	toks := collect("+ - * / // % ^ # & ~ | << >> == ~= <= >= < > = .. ... :: :")
	want := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.DSLASH, token.PERCENT,
		token.CARET, token.HASH, token.AMP, token.TILDE, token.PIPE, token.SHL, token.SHR,
		token.EQ, token.NEQ, token.LE, token.GE, token.LT, token.GT, token.ASSIGN,
		token.CONCAT, token.ELLIPSIS, token.DBLCOLON, token.COLON, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestColumnsCountRunes(t *testing.T) {
	l := lexer.New("local Δ = 1")
	_ = l.NextToken() // local
	ident := l.NextToken()
	if ident.Pos.Column != 7 {
		t.Errorf("got column %d, want 7", ident.Pos.Column)
	}
}

func TestLongBracketsUnsupported(t *testing.T) {
	l := lexer.New("local x = [[hello]]")
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unsupported-feature error for long bracket strings")
	}
}

func TestBOMStripped(t *testing.T) {
	toks := collect("﻿local a = 1")
	if toks[0].Type != token.LOCAL {
		t.Fatalf("got %+v", toks[0])
	}
}
