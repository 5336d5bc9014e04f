package semantic

import (
	"ccl/internal/ast"
	"ccl/internal/errors"
	"ccl/internal/symtab"
	"ccl/internal/types"
)

// objectType returns the bare object type for an ObjectKind tag.
func objectType(k types.Kind) *types.Type {
	if k == types.KBond {
		return types.Bond()
	}
	return types.Atom()
}

// scalarKind reports which array-element tag a checked scalar type takes.
func scalarKind(t *types.Type) types.Kind {
	if t.Kind == types.KFloat {
		return types.KFloat
	}
	return types.KInt
}

func kindsEqualSlice(a, b []types.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveIndexKinds resolves a list of bare index identifiers (used by both
// subscript expressions and subscripted assignment targets) to their
// object kinds, requiring every subscript to be a currently bound
// Atom/Bond iterator.
func (a *analyzer) resolveIndexKinds(idents []*ast.Ident, scope *symtab.Scope, bound boundSet) ([]types.Kind, *errors.Diagnostic) {
	kinds := make([]types.Kind, len(idents))
	for i, id := range idents {
		sym := scope.Lookup(id.Name)
		if sym == nil {
			return nil, errors.SymbolNotDefined(id.Name, id.Position)
		}
		if sym.Class != symtab.ObjectVariable {
			return nil, errors.SymbolNotDefined(id.Name, id.Position)
		}
		if !bound[id.Name] {
			return nil, errors.ObjectNotBoundAny(id.Name, id.Position)
		}
		kinds[i] = sym.ObjectKind
	}
	return kinds, nil
}

// referencesSubstitution walks e looking for any name that resolves to a
// Substitution symbol, implementing the "cannot nest a substitution inside
// another" rule. It returns the first one found.
func (a *analyzer) referencesSubstitution(e ast.Expr, scope *symtab.Scope) (string, ast.Position, bool) {
	if e == nil {
		return "", ast.Position{}, false
	}
	switch n := e.(type) {
	case *ast.Ident:
		if sym := scope.Lookup(n.Name); sym != nil && sym.Class == symtab.Substitution {
			return n.Name, n.Position, true
		}
	case *ast.SubscriptExpr:
		if sym := scope.Lookup(n.Name); sym != nil && sym.Class == symtab.Substitution {
			return n.Name, n.Position, true
		}
	case *ast.UnaryExpr:
		return a.referencesSubstitution(n.X, scope)
	case *ast.NotExpr:
		return a.referencesSubstitution(n.X, scope)
	case *ast.BinaryExpr:
		if name, pos, ok := a.referencesSubstitution(n.X, scope); ok {
			return name, pos, ok
		}
		return a.referencesSubstitution(n.Y, scope)
	case *ast.CallExpr:
		for _, arg := range n.Args {
			if name, pos, ok := a.referencesSubstitution(arg, scope); ok {
				return name, pos, ok
			}
		}
	case *ast.SumExpr:
		return a.referencesSubstitution(n.Body, scope)
	case *ast.EEExpr:
		for _, sub := range []ast.Expr{n.Diag, n.Off, n.Rhs, n.ModeParam} {
			if name, pos, ok := a.referencesSubstitution(sub, scope); ok {
				return name, pos, ok
			}
		}
	}
	return "", ast.Position{}, false
}
