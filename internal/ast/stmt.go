package ast

import "ccl/token"

// Stmt is a body statement: assignment, integer-range loop, or
// object-iterator loop.
type Stmt interface {
	Node
	stmtNode()
}

// AssignStmt is `lhs = rhs` or `name[i(,j)] = rhs`.
type AssignStmt struct {
	Position Position
	Name     string
	NamePos  Position
	Indices  []*Ident // nil for a bare (non-subscripted) lhs
	RHS      Expr
}

func (a *AssignStmt) Pos() Position { return a.Position }
func (*AssignStmt) stmtNode()       {}

// ForStmt is `for i = lo to hi: body done`.
type ForStmt struct {
	Position Position
	Var      *Ident
	Lo, Hi   Expr
	Body     []Stmt
}

func (f *ForStmt) Pos() Position { return f.Position }
func (*ForStmt) stmtNode()       {}

// ForEachStmt is `for each (atom|bond) name [= [i,j]] [such that constraint]: body done`.
type ForEachStmt struct {
	Position   Position
	ObjectKind token.Type // ATOM or BOND
	Name       *Ident
	DecompI    *Ident // non-nil only when the bond decomposition form is used
	DecompJ    *Ident
	Constraint Expr // nil when absent
	Body       []Stmt
}

func (f *ForEachStmt) Pos() Position { return f.Position }
func (*ForEachStmt) stmtNode()       {}
