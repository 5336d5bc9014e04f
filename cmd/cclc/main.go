// Command cclc is the CCL command-line front end: it scans, parses and
// analyses a single method file and reports either success or the one
// diagnostic the analyser produced, with Rust-style terminal rendering.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ccl/internal/errors"
	"ccl/internal/parser"
	"ccl/internal/semantic"
	"ccl/repl"
)

func main() {
	if len(os.Args) < 2 {
		if err := repl.Run(); err != nil {
			color.Red("%s", err)
			os.Exit(1)
		}
		return
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	prog, scanErrs, parseErr := parser.ParseSource(string(source))
	if len(scanErrs) > 0 {
		color.Red("error: %s", scanErrs[0].Message)
		os.Exit(1)
	}
	if parseErr != nil {
		reporter := errors.NewReporter(path, string(source))
		fmt.Print(reporter.Format(&errors.Diagnostic{Message: parseErr.Message, Position: parseErr.Position}))
		os.Exit(1)
	}

	if _, diag := semantic.Analyze(prog); diag != nil {
		reporter := errors.NewReporter(path, string(source))
		fmt.Print(reporter.Format(diag))
		os.Exit(1)
	}

	color.Green("✅ %s checks out", path)
}
