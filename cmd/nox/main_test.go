package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/noxlang/nox/cmd/nox/cmd"
)

// TestMain lets testscript re-exec this test binary as the `nox` command
// itself for every `exec nox ...` line a .txtar script issues, so the
// CLI golden tests below drive the real cobra command tree end to end
// rather than a mocked stand-in.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"nox": runNoxForTestscript,
	}))
}

func runNoxForTestscript() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// TestScripts runs every .txtar golden script under testdata/script
// against the nox CLI.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
