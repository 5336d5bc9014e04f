package ast

import "ccl/token"

// Annotation is one of the five shapes that can appear in the `where`
// block.
type Annotation interface {
	Node
	annotationNode()
}

// ParameterAnnotation is `name is (atom|bond|common) parameter`.
type ParameterAnnotation struct {
	Position Position
	Name     *Ident
	Kind     token.Type // ATOM, BOND or COMMON
}

func (p *ParameterAnnotation) Pos() Position { return p.Position }
func (*ParameterAnnotation) annotationNode() {}

// ObjectAnnotation is `name is (atom|bond) [such that constraint]` or the
// bond-decomposition form `name = [i,j] is bond`.
type ObjectAnnotation struct {
	Position   Position
	Name       *Ident
	Kind       token.Type // ATOM or BOND
	Constraint Expr       // nil when absent
	DecompI    *Ident     // non-nil only for the decomposition form
	DecompJ    *Ident
}

func (o *ObjectAnnotation) Pos() Position { return o.Position }
func (*ObjectAnnotation) annotationNode() {}

// PropertyAnnotation is `name is <property words>`.
type PropertyAnnotation struct {
	Position Position
	Name     *Ident
	Words    string // normalized property phrase, e.g. "covalent radius"
}

func (p *PropertyAnnotation) Pos() Position { return p.Position }
func (*PropertyAnnotation) annotationNode() {}

// ConstantAnnotation is `name is <property> of <element>`.
type ConstantAnnotation struct {
	Position Position
	Name     *Ident
	Property string
	Element  string
}

func (c *ConstantAnnotation) Pos() Position { return c.Position }
func (*ConstantAnnotation) annotationNode() {}

// SubstitutionClause is one clause of a (possibly multi-clause)
// substitution/expression annotation: `name[i(,j)] = expr [if constraint]`
// or the zero-arity `name = expr`. Clauses sharing Name are grouped by the
// annotation resolver into a single substitution.
type SubstitutionClause struct {
	Position      Position
	Name          *Ident
	FormalIndices []*Ident // empty for the zero-arity form
	RHS           Expr
	Constraint    Expr // nil for the unconstrained/default clause
}

func (s *SubstitutionClause) Pos() Position { return s.Position }
func (*SubstitutionClause) annotationNode() {}
