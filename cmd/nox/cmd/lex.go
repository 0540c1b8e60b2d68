package cmd

import (
	"fmt"
	"os"

	"github.com/noxlang/nox/internal/lexer"
	"github.com/noxlang/nox/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEval       string
	lexShowPos    bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Nox script",
	Long: `Tokenize a Nox program and print the resulting tokens, useful for
debugging the lexer.

Examples:
  nox lex script.nox
  nox lex -e "local x = 42"
  nox lex --show-pos script.nox
  nox lex --only-errors script.nox`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	tokenCount, errorCount := 0, 0
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			errorCount++
		}
		if !lexOnlyErrors || tok.Type == token.ILLEGAL {
			printToken(tok)
		}
		tokenCount++
		if tok.Type == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "---\ntotal tokens: %d\n", tokenCount)
	}
	for _, e := range l.Errors() {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if errorCount > 0 || len(l.Errors()) > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok token.Token) {
	out := tok.String()
	if lexShowPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}

// readSource resolves a command's input source: -e/--eval text, a file
// argument, or an error when neither was given.
func readSource(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
