package ast

import (
	"fmt"
	"strings"

	"ccl/token"
)

// Expr is any checkable expression node, including constraint trees: a
// constraint is just an expression that must resolve to Bool.
type Expr interface {
	Node
	exprNode()
}

// NumberLit is an integer or floating point literal. IsFloat is true when
// the lexeme contained a '.': Int if no dot in the lexeme, else Float.
type NumberLit struct {
	Position Position
	Lexeme   string
	IsFloat  bool
}

func (n *NumberLit) Pos() Position { return n.Position }
func (*NumberLit) exprNode()       {}
func (n *NumberLit) String() string { return n.Lexeme }

// Ident is a bare name reference. In the handful of grammar positions
// where the language expects a literal element name rather than a symbol
// lookup (the second argument of `element(...)`), the checker treats an
// Ident's Name directly as the literal instead of resolving it — CCL has
// no quoted string syntax, so bare words double as both.
type Ident struct {
	Position Position
	Name     string
}

func (i *Ident) Pos() Position  { return i.Position }
func (*Ident) exprNode()        {}
func (i *Ident) String() string { return i.Name }

// UnaryExpr is a prefix +/- applied to an operand.
type UnaryExpr struct {
	Position Position
	Op       token.Type // PLUS or MINUS
	X        Expr
}

func (u *UnaryExpr) Pos() Position { return u.Position }
func (*UnaryExpr) exprNode()       {}
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.Op, u.X)
}

// BinaryExpr covers arithmetic (+ - * / ^), relational (< > <= >= == !=)
// and logical (and/or) operators; which table an Op belongs to determines
// how the checker validates it.
type BinaryExpr struct {
	Position Position
	Op       token.Type
	X, Y     Expr
}

func (b *BinaryExpr) Pos() Position { return b.Position }
func (*BinaryExpr) exprNode()       {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.X, b.Op, b.Y)
}

// NotExpr is logical negation: `not constraint`.
type NotExpr struct {
	Position Position
	X        Expr
}

func (n *NotExpr) Pos() Position { return n.Position }
func (*NotExpr) exprNode()       {}
func (n *NotExpr) String() string { return fmt.Sprintf("(not %s)", n.X) }

// CallExpr is a function call (`sin(x)`) or a predicate call
// (`bonded(i, j)`); the registry in internal/builtins tells the checker
// which table Func belongs to.
type CallExpr struct {
	Position Position
	Func     string
	FuncPos  Position
	Args     []Expr
}

func (c *CallExpr) Pos() Position { return c.Position }
func (*CallExpr) exprNode()       {}
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(parts, ", "))
}

// SubscriptExpr is `name[idx]` or `name[idx1, idx2]`: array variables,
// atom/bond parameters and substitution invocations all use this shape.
type SubscriptExpr struct {
	Position Position
	Name     string
	NamePos  Position
	Indices  []*Ident
}

func (s *SubscriptExpr) Pos() Position { return s.Position }
func (*SubscriptExpr) exprNode()       {}
func (s *SubscriptExpr) String() string {
	parts := make([]string, len(s.Indices))
	for i, idx := range s.Indices {
		parts[i] = idx.Name
	}
	return fmt.Sprintf("%s[%s]", s.Name, strings.Join(parts, ", "))
}

// SumExpr is `sum[i](body)`: i must be a bound object iterator.
type SumExpr struct {
	Position Position
	Index    *Ident
	Body     Expr
}

func (s *SumExpr) Pos() Position { return s.Position }
func (*SumExpr) exprNode()       {}
func (s *SumExpr) String() string {
	return fmt.Sprintf("sum[%s](%s)", s.Index.Name, s.Body)
}

// EEExpr is the electronegativity-equalisation shorthand:
// `EE[i,j](diag, off, rhs[, cutoff|cover, r])`.
type EEExpr struct {
	Position  Position
	RowIndex  *Ident
	ColIndex  *Ident
	Diag      Expr
	Off       Expr
	Rhs       Expr
	Mode      string // "", "cutoff" or "cover"
	ModeParam Expr   // nil unless Mode != ""
}

func (e *EEExpr) Pos() Position { return e.Position }
func (*EEExpr) exprNode()       {}
func (e *EEExpr) String() string {
	base := fmt.Sprintf("EE[%s, %s](%s, %s, %s", e.RowIndex.Name, e.ColIndex.Name, e.Diag, e.Off, e.Rhs)
	if e.Mode != "" {
		base += fmt.Sprintf(", %s, %s", e.Mode, e.ModeParam)
	}
	return base + ")"
}
