package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noxlang/nox/internal/parser"
	"github.com/noxlang/nox/internal/scope"
)

var (
	parseEval      string
	parseShowScope bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Nox script and dump its AST",
	Long: `Parse a Nox program and print its abstract syntax tree, without
running the static scope pass's full diagnostics unless --show-scope is
given.

Examples:
  nox parse script.nox
  nox parse -e "local x = 1 + 2"
  nox parse --show-scope script.nox`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseShowScope, "show-scope", false, "also run the static scope pass and summarize its results")
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	p := parser.New(input)
	chunk, parseErr := p.ParseChunk()
	if parseErr != nil {
		for _, e := range p.Errors() {
			fmt.Fprintln(os.Stderr, e.WithSource(input, filename).Format(true))
		}
		return fmt.Errorf("parsing failed")
	}
	for _, w := range p.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	dumpASTNode(chunk, 0)

	if parseShowScope {
		analysis, scopeErr := scope.Analyze(chunk)
		if scopeErr != nil {
			for _, e := range analysis.Errors {
				fmt.Fprintln(os.Stderr, e.WithSource(input, filename).Format(true))
			}
			return fmt.Errorf("static scope analysis failed")
		}
		dumpScopeSummary(analysis)
	}
	return nil
}
