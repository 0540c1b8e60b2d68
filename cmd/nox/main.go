// Command nox is the Nox scripting language's command-line front end:
// run a script, tokenize it for debugging, or print the parsed AST.
package main

import (
	"os"

	"github.com/noxlang/nox/cmd/nox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
