// Package ast defines the syntax tree the CCL parser produces and the
// semantic analyser consumes: a statement list followed by a `where`
// annotation block.
package ast

import "ccl/token"

// Position is re-exported from token so ast nodes carry source locations
// without importing the lexer.
type Position = token.Position

// Node is implemented by every syntax tree node that can anchor a
// diagnostic.
type Node interface {
	Pos() Position
}

// Program is the root of a parsed CCL method: the statement list followed
// by the annotation block.
type Program struct {
	Statements  []Stmt
	Annotations []Annotation
	WherePos    Position
}

func (p *Program) Pos() Position { return p.WherePos }
