package semantic

import (
	"ccl/internal/ast"
	"ccl/internal/errors"
	"ccl/internal/symtab"
	"ccl/internal/types"
	"ccl/token"
)

// checkBody type-checks a statement list in source order, pushing a fresh
// scope for each loop. It stops at the first diagnostic.
func (a *analyzer) checkBody(stmts []ast.Stmt, scope *symtab.Scope, bound boundSet) *errors.Diagnostic {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			if diag := a.checkAssign(s, scope, bound); diag != nil {
				return diag
			}
		case *ast.ForStmt:
			if diag := a.checkFor(s, scope, bound); diag != nil {
				return diag
			}
		case *ast.ForEachStmt:
			if diag := a.checkForEach(s, scope, bound); diag != nil {
				return diag
			}
		}
	}
	return nil
}

func (a *analyzer) checkAssign(s *ast.AssignStmt, scope *symtab.Scope, bound boundSet) *errors.Diagnostic {
	sym := scope.Lookup(s.Name)

	if len(s.Indices) == 0 {
		if sym != nil {
			switch sym.Class {
			case symtab.LoopVariable:
				return errors.CannotAssignToLoopVariable(s.Name, s.NamePos)
			case symtab.Substitution:
				return errors.CannotAssignToSubstitution(s.Name, s.NamePos)
			case symtab.Parameter:
				return errors.CannotAssignToParameter(s.Name, s.NamePos)
			}
		}
		rhsType, diag := a.checkExpr(s.RHS, scope, bound)
		if diag != nil {
			return diag
		}
		if !rhsType.IsNumeric() && !rhsType.IsArray() {
			return errors.OnlyNumbersAndArraysCanBeAssigned(rhsType.String(), s.RHS.Pos())
		}
		switch {
		case sym == nil:
			// A first assignment to a bare name introduces a program-level
			// variable even when the statement sits inside a loop body — its
			// value must still be visible to sibling statements and later
			// loops, so it is installed in the global scope rather than the
			// loop's transient one.
			a.global.Define(&symtab.Symbol{Name: s.Name, Class: symtab.ScalarVariable, Type: rhsType, DefinedAt: s.NamePos})
		case sym.Class == symtab.ScalarVariable:
			if !assignable(rhsType, sym.Type) {
				return errors.CannotAssignArrayMismatch(rhsType.String(), s.Name, sym.Type.String(), s.NamePos)
			}
		default:
			return errors.CannotAssignToNonArrayType(sym.Type.String(), s.NamePos)
		}
		return nil
	}

	idxKinds, diag := a.resolveIndexKinds(s.Indices, scope, bound)
	if diag != nil {
		return diag
	}
	rhsType, diag := a.checkExpr(s.RHS, scope, bound)
	if diag != nil {
		return diag
	}
	if !rhsType.IsNumeric() && !rhsType.IsArray() {
		return errors.OnlyNumbersAndArraysCanBeAssigned(rhsType.String(), s.RHS.Pos())
	}

	if sym == nil {
		// Same reasoning as the scalar case above: an array built up one
		// `for each` at a time (the common PEOE-style accumulator pattern)
		// must keep its identity across sibling loops, so it is defined
		// globally rather than in whichever loop scope first assigned it.
		a.global.Define(&symtab.Symbol{
			Name: s.Name, Class: symtab.ArrayVariable,
			Type: types.Array(scalarKind(rhsType), idxKinds), DefinedAt: s.NamePos,
		})
		return nil
	}

	switch sym.Class {
	case symtab.LoopVariable:
		return errors.CannotAssignToLoopVariable(s.Name, s.NamePos)
	case symtab.Substitution:
		return errors.CannotAssignToSubstitution(s.Name, s.NamePos)
	case symtab.Parameter:
		return errors.CannotAssignToParameter(s.Name, s.NamePos)
	case symtab.ArrayVariable:
		// Same arity, different index kind (e.g. an Atom array re-indexed by
		// a Bond) is reported the same way a mismatched subscript read is;
		// a differing arity or element type is a genuine re-typing of the
		// array and gets the assignment-specific wording instead.
		if len(idxKinds) == len(sym.Type.Dims) && !kindsEqualSlice(idxKinds, sym.Type.Dims) {
			return errors.CannotIndexArrayMismatch(sym.Type.String(), types.DimsString(idxKinds), s.NamePos)
		}
		if len(idxKinds) != len(sym.Type.Dims) || scalarKind(rhsType) != sym.Type.Elem {
			got := types.Array(scalarKind(rhsType), idxKinds)
			return errors.CannotAssignArrayMismatch(got.String(), s.Name, sym.Type.String(), s.NamePos)
		}
		return nil
	default:
		return errors.CannotAssignToNonArrayType(sym.Type.String(), s.NamePos)
	}
}

func (a *analyzer) checkFor(s *ast.ForStmt, scope *symtab.Scope, bound boundSet) *errors.Diagnostic {
	if scope.Lookup(s.Var.Name) != nil {
		return errors.LoopVariableAlreadyDefined(s.Var.Name, s.Var.Position)
	}
	loType, diag := a.checkExpr(s.Lo, scope, bound)
	if diag != nil {
		return diag
	}
	if loType.Kind != types.KInt {
		return errors.ForBoundsMustBeInt(loType.String(), s.Lo.Pos())
	}
	hiType, diag := a.checkExpr(s.Hi, scope, bound)
	if diag != nil {
		return diag
	}
	if hiType.Kind != types.KInt {
		return errors.ForBoundsMustBeInt(hiType.String(), s.Hi.Pos())
	}

	inner := symtab.NewScope(scope)
	inner.Define(&symtab.Symbol{Name: s.Var.Name, Class: symtab.LoopVariable, Type: types.Int(), DefinedAt: s.Var.Position})
	return a.checkBody(s.Body, inner, bound)
}

func (a *analyzer) checkForEach(s *ast.ForEachStmt, scope *symtab.Scope, bound boundSet) *errors.Diagnostic {
	kind := types.KAtom
	if s.ObjectKind == token.BOND {
		kind = types.KBond
	}

	inner := symtab.NewScope(scope)
	boundNames := []string{s.Name.Name}

	if existing := scope.Lookup(s.Name.Name); existing != nil {
		if existing.Class != symtab.ObjectVariable || existing.ObjectKind != kind {
			return errors.LoopVariableAlreadyDefined(s.Name.Name, s.Name.Position)
		}
		// Reuse the object-annotation template: it becomes bound for the
		// duration of this loop without being redefined.
	} else {
		inner.Define(&symtab.Symbol{Name: s.Name.Name, Class: symtab.ObjectVariable, Type: objectType(kind), ObjectKind: kind, DefinedAt: s.Name.Position})
	}

	if s.DecompI != nil {
		if scope.Lookup(s.DecompI.Name) != nil || scope.Lookup(s.DecompJ.Name) != nil || s.DecompI.Name == s.DecompJ.Name {
			return errors.DecompositionAlreadyDefinedNames(s.Name.Name, s.Position)
		}
		inner.Define(&symtab.Symbol{Name: s.DecompI.Name, Class: symtab.ObjectVariable, Type: types.Atom(), ObjectKind: types.KAtom, DefinedAt: s.DecompI.Position})
		inner.Define(&symtab.Symbol{Name: s.DecompJ.Name, Class: symtab.ObjectVariable, Type: types.Atom(), ObjectKind: types.KAtom, DefinedAt: s.DecompJ.Position})
		boundNames = append(boundNames, s.DecompI.Name, s.DecompJ.Name)
	}

	innerBound := bound.with(boundNames...)

	if s.Constraint != nil {
		if _, diag := a.checkConstraint(s.Constraint, inner, innerBound); diag != nil {
			return diag
		}
	}

	return a.checkBody(s.Body, inner, innerBound)
}
