package semantic

import (
	"fmt"

	"ccl/internal/ast"
	"ccl/internal/builtins"
	"ccl/internal/errors"
	"ccl/internal/symtab"
	"ccl/internal/types"
)

// substitutionInfo accumulates the clauses of one named substitution
// across the annotation block, driving the completeness state machine:
// DECLARED_PARTIAL once a constrained clause is seen, COMPLETE once a
// default (unconstrained) clause closes it out.
type substitutionInfo struct {
	name            string
	pos             ast.Position
	dims            []types.Kind
	dimsSet         bool
	resultType      *types.Type
	hasDefault      bool
	hasConstrained  bool
	seenConstraints map[string]bool
}

// resolveAnnotations is phase one of analysis: it walks the `where` block
// in source order, populating the global scope, before any statement in
// the body is checked.
func (a *analyzer) resolveAnnotations(annotations []ast.Annotation) *errors.Diagnostic {
	for _, ann := range annotations {
		switch n := ann.(type) {
		case *ast.ParameterAnnotation:
			if diag := a.defineSimple(n.Name, parameterType(n.Kind), n.Position); diag != nil {
				return diag
			}
		case *ast.ObjectAnnotation:
			if diag := a.resolveObjectAnnotation(n); diag != nil {
				return diag
			}
		case *ast.PropertyAnnotation:
			if diag := a.resolvePropertyAnnotation(n); diag != nil {
				return diag
			}
		case *ast.ConstantAnnotation:
			if diag := a.resolveConstantAnnotation(n); diag != nil {
				return diag
			}
		case *ast.SubstitutionClause:
			if diag := a.resolveSubstitutionClause(n); diag != nil {
				return diag
			}
		}
	}
	return a.checkSubstitutionCompleteness()
}

func parameterType(kind interface{ String() string }) *types.Type {
	switch kind.String() {
	case "atom":
		return types.AtomParameter()
	case "bond":
		return types.BondParameter()
	default:
		return types.CommonParameter()
	}
}

func (a *analyzer) defineSimple(name *ast.Ident, t *types.Type, pos ast.Position) *errors.Diagnostic {
	if existing := a.global.Lookup(name.Name); existing != nil {
		return errors.SymbolAlreadyDefined(name.Name, pos)
	}
	class := symtab.ScalarVariable
	switch t.Kind {
	case types.KAtomParameter, types.KBondParameter, types.KCommonParameter:
		class = symtab.Parameter
	}
	a.global.Define(&symtab.Symbol{Name: name.Name, Class: class, Type: t, DefinedAt: pos})
	return nil
}

func (a *analyzer) resolveObjectAnnotation(n *ast.ObjectAnnotation) *errors.Diagnostic {
	if existing := a.global.Lookup(n.Name.Name); existing != nil {
		return errors.SymbolAlreadyDefined(n.Name.Name, n.Position)
	}
	kind := types.KAtom
	if n.Kind.String() == "bond" {
		kind = types.KBond
	}
	a.global.Define(&symtab.Symbol{
		Name: n.Name.Name, Class: symtab.ObjectVariable,
		Type: objectType(kind), ObjectKind: kind, DefinedAt: n.Position,
	})
	// The constraint attached to an object annotation is not type-checked
	// here and is not stored on the symbol, so a for-each that iterates
	// this object does not check it either.
	return nil
}

func (a *analyzer) resolvePropertyAnnotation(n *ast.PropertyAnnotation) *errors.Diagnostic {
	if existing := a.global.Lookup(n.Name.Name); existing != nil {
		return errors.SymbolAlreadyDefined(n.Name.Name, n.Position)
	}
	sig, ok := builtins.LookupProperty(n.Words)
	if !ok {
		return errors.PropertyNotKnown(n.Words, n.Position)
	}
	a.global.Define(&symtab.Symbol{Name: n.Name.Name, Class: symtab.Property, Type: sig.PropertyType(), DefinedAt: n.Position})
	return nil
}

func (a *analyzer) resolveConstantAnnotation(n *ast.ConstantAnnotation) *errors.Diagnostic {
	if existing := a.global.Lookup(n.Name.Name); existing != nil {
		return errors.SymbolAlreadyDefined(n.Name.Name, n.Position)
	}
	if _, ok := builtins.LookupProperty(n.Property); !ok {
		return errors.FunctionNotAProperty(n.Property, n.Position)
	}
	if !builtins.IsKnownElement(n.Element) {
		return errors.ElementNotKnown(n.Element, n.Position)
	}
	a.global.Define(&symtab.Symbol{Name: n.Name.Name, Class: symtab.Constant, Type: types.Float(), DefinedAt: n.Position})
	return nil
}

func (a *analyzer) resolveSubstitutionClause(n *ast.SubstitutionClause) *errors.Diagnostic {
	name := n.Name.Name

	if existing := a.global.Lookup(name); existing != nil && existing.Class != symtab.Substitution {
		return errors.SymbolAlreadyDefinedAsSomethingElse(name, n.Position)
	}

	info, ok := a.substitutions[name]
	if !ok {
		info = &substitutionInfo{name: name, pos: n.Position, seenConstraints: map[string]bool{}}
		a.substitutions[name] = info
		a.subOrder = append(a.subOrder, name)
		a.global.Define(&symtab.Symbol{
			Name: name, Class: symtab.Substitution,
			Type: types.Substitution(nil, nil), DefinedAt: n.Position,
		})
	}

	if len(n.FormalIndices) == 0 && n.Constraint != nil {
		return errors.SubstitutionCannotHaveConstraint(name, n.Position)
	}

	if refName, refPos, found := a.referencesSubstitution(n.RHS, a.global); found {
		return errors.NestedSubstitution(refName, name, refPos)
	}
	if refName, refPos, found := a.referencesSubstitution(n.Constraint, a.global); found {
		return errors.NestedSubstitution(refName, name, refPos)
	}

	kinds := a.inferFormalKinds(n.FormalIndices, n.Constraint, n.RHS)
	if info.dimsSet {
		if !kindsEqualSlice(info.dims, kinds) {
			return errors.SubstitutionDifferentIndices(name, n.Position)
		}
	} else {
		info.dims = kinds
		info.dimsSet = true
	}

	constraintKey := ""
	if n.Constraint != nil {
		constraintKey = fmt.Sprint(n.Constraint)
	}
	if info.seenConstraints[constraintKey] {
		return errors.DuplicateConstraint(name, n.Position)
	}
	info.seenConstraints[constraintKey] = true
	if n.Constraint == nil {
		info.hasDefault = true
	} else {
		info.hasConstrained = true
	}

	tempScope := symtab.NewScope(a.global)
	var boundNames []string
	for i, f := range n.FormalIndices {
		tempScope.Define(&symtab.Symbol{
			Name: f.Name, Class: symtab.ObjectVariable,
			Type: objectType(kinds[i]), ObjectKind: kinds[i], DefinedAt: f.Position,
		})
		boundNames = append(boundNames, f.Name)
	}
	bound := boundSet{}.with(boundNames...)

	if n.Constraint != nil {
		if _, diag := a.checkConstraint(n.Constraint, tempScope, bound); diag != nil {
			return diag
		}
	}
	rhsType, diag := a.checkExpr(n.RHS, tempScope, bound)
	if diag != nil {
		return diag
	}
	if info.resultType == nil {
		info.resultType = rhsType
	} else if !substitutionResultCompatible(info.resultType, rhsType) {
		return errors.SubstitutionTypeMismatch(name, n.Position)
	} else if info.resultType.Kind == types.KInt && rhsType.Kind == types.KFloat {
		info.resultType = rhsType
	}

	sym := a.global.Lookup(name)
	sym.Type = types.Substitution(info.resultType, info.dims)
	return nil
}

func substitutionResultCompatible(a, b *types.Type) bool {
	if a.Equal(b) {
		return true
	}
	return a.IsNumeric() && b.IsNumeric()
}

// checkSubstitutionCompleteness enforces the closing rule: every
// substitution touched by the annotation block must end up COMPLETE
// (it has a default clause) unless it was never constrained at all.
// Reported in first-definition order for determinism.
func (a *analyzer) checkSubstitutionCompleteness() *errors.Diagnostic {
	for _, name := range a.subOrder {
		info := a.substitutions[name]
		if info.hasConstrained && !info.hasDefault {
			return errors.NoDefaultOption(name, info.pos)
		}
	}
	return nil
}

// inferFormalKinds determines the Atom/Bond kind of each substitution
// formal from how it is used: first from predicate calls in the clause's
// constraint (the fixed-arity predicates pin down their argument kinds
// unambiguously), then from subscript usage on the RHS. A formal that
// carries no signal either way defaults to Atom.
func (a *analyzer) inferFormalKinds(formals []*ast.Ident, constraint, rhs ast.Expr) []types.Kind {
	kinds := make([]types.Kind, len(formals))
	found := make([]bool, len(formals))
	index := func(name string) int {
		for i, f := range formals {
			if f.Name == name {
				return i
			}
		}
		return -1
	}
	mark := func(name string, k types.Kind) {
		if i := index(name); i >= 0 && !found[i] {
			kinds[i] = k
			found[i] = true
		}
	}

	var walkConstraint func(e ast.Expr)
	walkConstraint = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.BinaryExpr:
			walkConstraint(n.X)
			walkConstraint(n.Y)
		case *ast.NotExpr:
			walkConstraint(n.X)
		case *ast.CallExpr:
			switch n.Func {
			case "element":
				if len(n.Args) > 0 {
					if id, ok := n.Args[0].(*ast.Ident); ok {
						mark(id.Name, types.KAtom)
					}
				}
			case "bonded", "bond_distance":
				for _, idx := range []int{0, 1} {
					if idx < len(n.Args) {
						if id, ok := n.Args[idx].(*ast.Ident); ok {
							mark(id.Name, types.KAtom)
						}
					}
				}
			}
		}
	}
	walkConstraint(constraint)

	var walkRHS func(e ast.Expr)
	walkRHS = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.BinaryExpr:
			walkRHS(n.X)
			walkRHS(n.Y)
		case *ast.UnaryExpr:
			walkRHS(n.X)
		case *ast.NotExpr:
			walkRHS(n.X)
		case *ast.SumExpr:
			walkRHS(n.Body)
		case *ast.EEExpr:
			walkRHS(n.Diag)
			walkRHS(n.Off)
			walkRHS(n.Rhs)
		case *ast.CallExpr:
			for _, arg := range n.Args {
				walkRHS(arg)
			}
		case *ast.SubscriptExpr:
			sym := a.global.Lookup(n.Name)
			if sym == nil {
				return
			}
			for pos, idx := range n.Indices {
				k, ok := kindAt(sym, pos, len(n.Indices))
				if ok {
					mark(idx.Name, k)
				}
			}
		}
	}
	walkRHS(rhs)

	for i, f := range formals {
		if !found[i] {
			kinds[i] = types.KAtom
			_ = f
		}
	}
	return kinds
}

// kindAt returns the expected index kind at subscript position pos for a
// resolved array variable, atom/bond parameter, or substitution symbol,
// given the subscript's total index count n.
func kindAt(sym *symtab.Symbol, pos, n int) (types.Kind, bool) {
	switch sym.Class {
	case symtab.ArrayVariable:
		if pos < len(sym.Type.Dims) {
			return sym.Type.Dims[pos], true
		}
	case symtab.Parameter:
		switch sym.Type.Kind {
		case types.KAtomParameter:
			return types.KAtom, true
		case types.KBondParameter:
			if n == 1 {
				return types.KBond, true
			}
			return types.KAtom, true
		}
	case symtab.Substitution:
		if pos < len(sym.Type.SubDims) {
			return sym.Type.SubDims[pos], true
		}
	}
	return types.Invalid, false
}
