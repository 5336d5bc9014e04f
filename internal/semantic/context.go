// Package semantic implements the CCL semantic analyser: the annotation
// resolver, the statement/expression/constraint checkers, the
// substitution state machine, and the fail-fast single-diagnostic
// contract. Annotations resolve into the global scope first; only if
// that succeeds does the body get walked top-to-bottom, pushing a scope
// per loop.
package semantic

import (
	"ccl/internal/ast"
	"ccl/internal/errors"
	"ccl/internal/symtab"
	"ccl/internal/types"
)

// AnalysedProgram is the successful result of Analyze: every expression's
// inferred type plus the populated global scope.
type AnalysedProgram struct {
	Program   *ast.Program
	ExprTypes map[ast.Expr]*types.Type
	Global    *symtab.Scope
}

// TypeOf returns the inferred type of e, or nil if e was never checked
// (which never happens for a successfully analysed program).
func (a *AnalysedProgram) TypeOf(e ast.Expr) *types.Type { return a.ExprTypes[e] }

// boundSet tracks which object-iterator names are currently live bindings
// (pushed by `for each`, referenced by `sum`/`EE`) as distinct from mere
// symbol-table presence: an object annotation installs a symbol at global
// scope, but referencing that name outside an iterator binding is still
// an error — this is the "Object ... not bound to any For/ForEach/Sum"
// rule.
type boundSet map[string]bool

func (b boundSet) with(names ...string) boundSet {
	next := make(boundSet, len(b)+len(names))
	for k := range b {
		next[k] = true
	}
	for _, n := range names {
		next[n] = true
	}
	return next
}

// analyzer carries the single first-wins diagnostic through the
// recursive-descent walk: errors are fatal, no partial analysis result
// is ever exposed.
type analyzer struct {
	global        *symtab.Scope
	substitutions map[string]*substitutionInfo
	subOrder      []string
	exprTypes     map[ast.Expr]*types.Type
}

func newAnalyzer() *analyzer {
	return &analyzer{
		global:        symtab.NewScope(nil),
		substitutions: make(map[string]*substitutionInfo),
		exprTypes:     make(map[ast.Expr]*types.Type),
	}
}

// Analyze is the analyser's single entry point:
// analyse(tree) → AnalysedProgram | Diagnostic.
func Analyze(prog *ast.Program) (*AnalysedProgram, *errors.Diagnostic) {
	a := newAnalyzer()

	if diag := a.resolveAnnotations(prog.Annotations); diag != nil {
		return nil, diag
	}
	if diag := a.checkBody(prog.Statements, a.global, boundSet{}); diag != nil {
		return nil, diag
	}

	return &AnalysedProgram{Program: prog, ExprTypes: a.exprTypes, Global: a.global}, nil
}

func (a *analyzer) record(e ast.Expr, t *types.Type) *types.Type {
	a.exprTypes[e] = t
	return t
}
