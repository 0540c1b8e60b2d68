// Package srcerr implements the error taxonomy and source-annotated error
// formatting shared by the lexer, parser, scope analyzer, and evaluator.
//
// Formatting (source line + caret) is grounded on the internal/errors
// package; the Kind enum names one error category per failure mode the
// evaluator and static analyzer can raise.
package srcerr

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/noxlang/nox/internal/token"
)

// Kind names one of the error categories. It is a plain string kind,
// not a Go type hierarchy: every Error carries exactly one Kind alongside
// a message.
type Kind string

const (
	KindBadType             Kind = "bad-type"
	KindBadDotAccess         Kind = "bad-dot-access"
	KindNilDot               Kind = "nil-dot"
	KindBadCall              Kind = "bad-call"
	KindBadForIn             Kind = "bad-for-in"
	KindForInBadType         Kind = "for-in-bad-type"
	KindCrossedLocal         Kind = "crossed-local"
	KindInvisibleLabel       Kind = "invisible-label"
	KindLabelAlreadyDefined  Kind = "label-already-defined"
	KindLonelyBreak          Kind = "lonely-break"
	KindValueEqualityExpect  Kind = "value-equality-expected"
	KindTypeEqualityExpect   Kind = "type-equality-expected"
	KindUnsupportedFeature   Kind = "unsupported-feature"
	KindStackOverflow        Kind = "stack-overflow"
)

// Error is a single diagnostic tied to a source position, with enough
// context (the offending source line) to render a caret-annotated message
// the way a terminal-facing interpreter should.
type Error struct {
	Kind    Kind
	Message string
	Pos     token.Position
	Source  string
	File    string
}

// New creates an Error of the given kind at pos.
func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// WithSource attaches the full source text (for caret rendering) and an
// optional file name, returning the same *Error for chaining.
func (e *Error) WithSource(source, file string) *Error {
	e.Source = source
	e.File = file
	return e
}

// Error implements the error interface with the plain (uncolored) format.
func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the error with a source-line excerpt and a caret pointing
// at the offending column. When color is true, ANSI escapes highlight the
// message and caret.
func (e *Error) Format(color bool) string {
	var sb strings.Builder
	if e.File != "" {
		fmt.Fprintf(&sb, "%s: %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
	}
	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+caretOffset(line, e.Pos.Column)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}
	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// caretOffset computes the number of terminal display columns the caret
// must be indented by to land under column (1-based, in runes) of line.
// East-asian wide and fullwidth runes occupy two display columns, so a
// plain rune count would misalign the caret once the line contains one;
// this walks the runes before the target column and sums their widths.
func caretOffset(line string, column int) int {
	n := max0(column - 1)
	offset := 0
	i := 0
	for _, r := range line {
		if i >= n {
			break
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			offset += 2
		default:
			offset++
		}
		i++
	}
	return offset
}

func sourceLine(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Frame is one entry of a call-stack trace: the function active at the
// time, and the position within it.
type Frame struct {
	FunctionName string
	Pos          token.Position
}

// Trace is a call stack stored oldest-frame-first, used to annotate
// uncaught runtime errors with a Lua-style traceback.
type Trace []Frame

// String renders the trace from innermost to outermost frame.
func (t Trace) String() string {
	var sb strings.Builder
	for i := len(t) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "\tat %s (%s)\n", t[i].FunctionName, t[i].Pos)
	}
	return sb.String()
}
