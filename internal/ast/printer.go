package ast

import (
	"fmt"
	"strings"
)

// String renders a Program back to a CCL-like textual form, giving a
// readable AST dump rather than Go struct literals.
func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		writeStmt(&b, s, 0)
	}
	b.WriteString("where\n")
	for _, a := range p.Annotations {
		writeAnnotation(&b, a)
	}
	return b.String()
}

func writeStmt(b *strings.Builder, s Stmt, indent int) {
	pad := strings.Repeat("  ", indent)
	switch s := s.(type) {
	case *AssignStmt:
		if len(s.Indices) == 0 {
			fmt.Fprintf(b, "%s%s = %s\n", pad, s.Name, s.RHS)
			return
		}
		names := make([]string, len(s.Indices))
		for i, idx := range s.Indices {
			names[i] = idx.Name
		}
		fmt.Fprintf(b, "%s%s[%s] = %s\n", pad, s.Name, strings.Join(names, ", "), s.RHS)
	case *ForStmt:
		fmt.Fprintf(b, "%sfor %s = %s to %s:\n", pad, s.Var.Name, s.Lo, s.Hi)
		for _, inner := range s.Body {
			writeStmt(b, inner, indent+1)
		}
		fmt.Fprintf(b, "%sdone\n", pad)
	case *ForEachStmt:
		kind := "atom"
		if s.ObjectKind.String() == "bond" {
			kind = "bond"
		}
		fmt.Fprintf(b, "%sfor each %s %s:\n", pad, kind, s.Name.Name)
		for _, inner := range s.Body {
			writeStmt(b, inner, indent+1)
		}
		fmt.Fprintf(b, "%sdone\n", pad)
	}
}

func writeAnnotation(b *strings.Builder, a Annotation) {
	switch a := a.(type) {
	case *ParameterAnnotation:
		fmt.Fprintf(b, "  %s is %s parameter\n", a.Name.Name, a.Kind)
	case *ObjectAnnotation:
		fmt.Fprintf(b, "  %s is %s\n", a.Name.Name, a.Kind)
	case *PropertyAnnotation:
		fmt.Fprintf(b, "  %s is %s\n", a.Name.Name, a.Words)
	case *ConstantAnnotation:
		fmt.Fprintf(b, "  %s is %s of %s\n", a.Name.Name, a.Property, a.Element)
	case *SubstitutionClause:
		if len(a.FormalIndices) == 0 {
			fmt.Fprintf(b, "  %s = %s\n", a.Name.Name, a.RHS)
			return
		}
		names := make([]string, len(a.FormalIndices))
		for i, idx := range a.FormalIndices {
			names[i] = idx.Name
		}
		fmt.Fprintf(b, "  %s[%s] = %s\n", a.Name.Name, strings.Join(names, ", "), a.RHS)
	}
}
