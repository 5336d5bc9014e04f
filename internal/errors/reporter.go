package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders a single Diagnostic with Rust-style source context,
// trimmed down to the exact one Diagnostic the fail-fast analyser ever
// produces.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a Reporter over filename's source text.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders d the way the CLI prints it: a red "error: message"
// header, a --> location line, and the offending source line with a
// caret underneath.
func (r *Reporter) Format(d *Diagnostic) string {
	var b strings.Builder

	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&b, "%s: %s\n", red("error"), d.Message)

	width := lineNumberWidth(d.Position.Line)
	indent := strings.Repeat(" ", width)
	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Position.Line, d.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("|"))

	if d.Position.Line >= 1 && d.Position.Line <= len(r.lines) {
		line := r.lines[d.Position.Line-1]
		fmt.Fprintf(&b, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, d.Position.Line)), dim("|"), line)
		caret := strings.Repeat(" ", max0(d.Position.Column-1)) + red("^")
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("|"), caret)
	}

	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		return 3
	}
	return w
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
