package lexer_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/noxlang/nox/internal/lexer"
	"github.com/noxlang/nox/internal/token"
)

// tokenDump renders one token per line as "TYPE literal", the minimal
// shape a lexer snapshot needs to catch an accidental classification or
// literal-text regression.
func tokenDump(src string) string {
	l := lexer.New(src)
	var sb strings.Builder
	for {
		tok := l.NextToken()
		sb.WriteString(tok.Type.String())
		if tok.Literal != "" {
			sb.WriteString(" ")
			sb.WriteString(tok.Literal)
		}
		sb.WriteString("\n")
		if tok.Type == token.EOF {
			break
		}
	}
	return sb.String()
}

func TestTokenStreamSnapshotControlFlow(t *testing.T) {
	src := `
		local function fib(n)
			if n < 2 then
				return n
			end
			return fib(n - 1) + fib(n - 2)
		end
		return fib(10)
	`
	snaps.MatchSnapshot(t, tokenDump(src))
}

func TestTokenStreamSnapshotTableAndStrings(t *testing.T) {
	src := `local t = { x = 1, "a", ["k"] = 'v', 2.5, ... }`
	snaps.MatchSnapshot(t, tokenDump(src))
}
