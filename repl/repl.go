// Package repl implements an interactive CCL prompt: each block of lines,
// ended by a blank line (or by EOF), is lexed, parsed and analysed as a
// standalone method, with results rendered immediately. Uses
// github.com/chzyer/readline for line editing and history, the way the
// google-mangle interpreter package drives its own "mr >" prompt.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"ccl/internal/errors"
	"ccl/internal/parser"
	"ccl/internal/semantic"
)

const prompt = "ccl> "

// Run drives the prompt loop until EOF (Ctrl-D) or an interrupt.
func Run() error {
	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("CCL interactive shell — paste a method, end with a blank line, Ctrl-D to quit.")

	for {
		block, err := readBlock(rl)
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(block) == "" {
			continue
		}
		evalAndPrint(block)
	}
}

// readBlock accumulates lines until the user enters a blank one, letting a
// multi-statement method (which always spans several lines) be pasted or
// typed in one go.
func readBlock(rl *readline.Instance) (string, error) {
	var b strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if strings.TrimSpace(line) == "" && b.Len() > 0 {
			return b.String(), nil
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func evalAndPrint(source string) {
	prog, scanErrs, parseErr := parser.ParseSource(source)
	reporter := errors.NewReporter("<repl>", source)

	if len(scanErrs) > 0 {
		fmt.Print(reporter.Format(&errors.Diagnostic{Message: scanErrs[0].Message, Position: scanErrs[0].Position}))
		return
	}
	if parseErr != nil {
		fmt.Print(reporter.Format(&errors.Diagnostic{Message: parseErr.Message, Position: parseErr.Position}))
		return
	}

	if _, diag := semantic.Analyze(prog); diag != nil {
		fmt.Print(reporter.Format(diag))
		return
	}
	fmt.Println("ok")
}
