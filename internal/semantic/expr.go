package semantic

import (
	"ccl/internal/ast"
	"ccl/internal/builtins"
	"ccl/internal/errors"
	"ccl/internal/symtab"
	"ccl/internal/types"
	"ccl/token"
)

// checkConstraint type-checks e and additionally requires it to resolve to
// Bool: a constraint is an ordinary expression used in a Boolean position,
// not a separate grammar.
func (a *analyzer) checkConstraint(e ast.Expr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	t, diag := a.checkExpr(e, scope, bound)
	if diag != nil {
		return nil, diag
	}
	if t.Kind != types.KBool {
		return nil, errors.ConstraintMustBeBool(t.String(), e.Pos())
	}
	return t, nil
}

// checkExpr is the expression type checker: it assigns every node a
// concrete type or returns the first diagnostic encountered,
// short-circuiting the rest of the tree.
func (a *analyzer) checkExpr(e ast.Expr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	switch n := e.(type) {
	case *ast.NumberLit:
		if n.IsFloat {
			return a.record(n, types.Float()), nil
		}
		return a.record(n, types.Int()), nil

	case *ast.Ident:
		sym := scope.Lookup(n.Name)
		if sym == nil {
			return nil, errors.SymbolNotDefined(n.Name, n.Position)
		}
		if sym.Class == symtab.ObjectVariable && !bound[n.Name] {
			return nil, errors.ObjectNotBoundAny(n.Name, n.Position)
		}
		t := sym.Type
		if sym.Class == symtab.Substitution && len(sym.Type.SubDims) == 0 {
			t = sym.Type.SubResult
		}
		return a.record(n, t), nil

	case *ast.UnaryExpr:
		xt, diag := a.checkExpr(n.X, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if !xt.IsNumeric() {
			return nil, errors.UnaryOperandMustBeNumeric(n.Op.String(), xt.String(), n.Position)
		}
		return a.record(n, xt), nil

	case *ast.NotExpr:
		xt, diag := a.checkExpr(n.X, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if xt.Kind != types.KBool {
			return nil, errors.ConstraintMustBeBool(xt.String(), n.X.Pos())
		}
		return a.record(n, types.Bool()), nil

	case *ast.BinaryExpr:
		return a.checkBinary(n, scope, bound)

	case *ast.CallExpr:
		return a.checkCall(n, scope, bound)

	case *ast.SubscriptExpr:
		return a.checkSubscript(n, scope, bound)

	case *ast.SumExpr:
		return a.checkSum(n, scope, bound)

	case *ast.EEExpr:
		return a.checkEE(n, scope, bound)
	}
	return nil, errors.SymbolNotDefined("?", e.Pos())
}

var logicalOps = map[token.Type]bool{token.AND: true, token.OR: true}

func (a *analyzer) checkBinary(n *ast.BinaryExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	if logicalOps[n.Op] {
		xt, diag := a.checkExpr(n.X, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if xt.Kind != types.KBool {
			return nil, errors.ConstraintMustBeBool(xt.String(), n.X.Pos())
		}
		yt, diag := a.checkExpr(n.Y, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if yt.Kind != types.KBool {
			return nil, errors.ConstraintMustBeBool(yt.String(), n.Y.Pos())
		}
		return a.record(n, types.Bool()), nil
	}

	if relOps[n.Op] {
		xt, diag := a.checkExpr(n.X, scope, bound)
		if diag != nil {
			return nil, diag
		}
		yt, diag := a.checkExpr(n.Y, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if !xt.IsNumeric() || !yt.IsNumeric() {
			return nil, errors.RelationalOperandsMustBeNumeric(n.Position)
		}
		return a.record(n, types.Bool()), nil
	}

	xt, diag := a.checkExpr(n.X, scope, bound)
	if diag != nil {
		return nil, diag
	}
	yt, diag := a.checkExpr(n.Y, scope, bound)
	if diag != nil {
		return nil, diag
	}
	return a.checkArithmetic(n, xt, yt)
}

var relOps = map[token.Type]bool{
	token.LT: true, token.GT: true, token.LE: true,
	token.GE: true, token.EQ: true, token.NE: true,
}

// checkArithmetic implements CCL's array-arithmetic rules: scalar/scalar
// promotion, scalar*array scaling, elementwise vector add/subtract, vector
// dot product, and matrix multiply/add.
func (a *analyzer) checkArithmetic(n *ast.BinaryExpr, xt, yt *types.Type) (*types.Type, *errors.Diagnostic) {
	op := n.Op
	pos := n.Position

	if xt.IsNumeric() && yt.IsNumeric() {
		return a.record(n, types.Promote(xt, yt)), nil
	}

	if xt.IsArray() && yt.IsNumeric() || yt.IsArray() && xt.IsNumeric() {
		if op != token.STAR && op != token.SLASH {
			return nil, errors.CannotPerformNonMulDivScalarArray(pos)
		}
		if op == token.SLASH && !xt.IsArray() {
			return nil, errors.CannotPerformDivTypes(xt.String(), yt.String(), pos)
		}
		arr, scalar := xt, yt
		if !xt.IsArray() {
			arr, scalar = yt, xt
		}
		elem := arr.Elem
		if scalar.Kind == types.KFloat {
			elem = types.KFloat
		}
		return a.record(n, types.Array(elem, arr.Dims)), nil
	}

	if xt.IsArray() && yt.IsArray() {
		return a.checkArrayArray(n, xt, yt)
	}

	return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
}

func (a *analyzer) checkArrayArray(n *ast.BinaryExpr, xt, yt *types.Type) (*types.Type, *errors.Diagnostic) {
	op, pos := n.Op, n.Position
	promoted := types.KInt
	if xt.Elem == types.KFloat || yt.Elem == types.KFloat {
		promoted = types.KFloat
	}

	switch {
	case len(xt.Dims) == 1 && len(yt.Dims) == 1:
		switch op {
		case token.PLUS, token.MINUS:
			if !kindsEqualSlice(xt.Dims, yt.Dims) {
				return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
			}
			return a.record(n, types.Array(promoted, xt.Dims)), nil
		case token.STAR:
			if !kindsEqualSlice(xt.Dims, yt.Dims) {
				return nil, errors.CannotPerformDotProduct(xt.String(), yt.String(), pos)
			}
			if promoted == types.KFloat {
				return a.record(n, types.Float()), nil
			}
			return a.record(n, types.Int()), nil
		default:
			return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
		}

	case len(xt.Dims) == 2 && len(yt.Dims) == 2:
		switch op {
		case token.PLUS, token.MINUS:
			if !kindsEqualSlice(xt.Dims, yt.Dims) {
				return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
			}
			return a.record(n, types.Array(promoted, xt.Dims)), nil
		case token.STAR:
			if xt.Dims[1] != yt.Dims[0] {
				return nil, errors.CannotMultiplyMatrices(xt.String(), yt.String(), pos)
			}
			return a.record(n, types.Array(promoted, []types.Kind{xt.Dims[0], yt.Dims[1]})), nil
		default:
			return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
		}

	default:
		if op == token.STAR {
			return nil, errors.CannotMultiplyVector(xt.String(), yt.String(), pos)
		}
		return nil, errors.CannotPerformOpTypes(op.String(), xt.String(), yt.String(), pos)
	}
}

func (a *analyzer) checkCall(n *ast.CallExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	if sym := scope.Lookup(n.Func); sym != nil && sym.Class == symtab.Property {
		return a.checkSignatureCall(n, sym.Type, scope, bound)
	}
	if sig, ok := builtins.Functions[n.Func]; ok {
		return a.checkSignatureCall(n, sig, scope, bound)
	}
	if _, ok := builtins.PredicateArity[n.Func]; ok {
		return a.checkPredicateCall(n, scope, bound)
	}
	return nil, errors.FunctionNotKnown(n.Func, n.FuncPos)
}

func (a *analyzer) checkSignatureCall(n *ast.CallExpr, sig *types.Type, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	if len(n.Args) != len(sig.Params) {
		return nil, errors.FunctionWrongArity(n.Func, len(sig.Params), len(n.Args), n.Position)
	}
	for i, arg := range n.Args {
		at, diag := a.checkExpr(arg, scope, bound)
		if diag != nil {
			return nil, diag
		}
		want := sig.Params[i]
		if !assignable(at, want) {
			return nil, errors.IncompatibleArgumentType(n.Func, at.String(), want.String(), arg.Pos())
		}
	}
	return a.record(n, sig.Result), nil
}

func (a *analyzer) checkPredicateCall(n *ast.CallExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	arity := builtins.PredicateArity[n.Func]
	if len(n.Args) != arity {
		return nil, errors.PredicateWrongArity(n.Func, arity, len(n.Args), n.Position)
	}

	switch n.Func {
	case "element":
		at, diag := a.checkExpr(n.Args[0], scope, bound)
		if diag != nil {
			return nil, diag
		}
		if at.Kind != types.KAtom {
			return nil, errors.PredicateElementArgNotAtom(n.Args[0].Pos())
		}
		id, ok := n.Args[1].(*ast.Ident)
		if !ok {
			return nil, errors.PredicateElementExpectedString(n.Args[1].Pos())
		}
		if !builtins.IsKnownElement(id.Name) {
			return nil, errors.UnknownElement(id.Name, id.Position)
		}
	case "bonded", "bond_distance":
		for _, arg := range n.Args[:2] {
			at, diag := a.checkExpr(arg, scope, bound)
			if diag != nil {
				return nil, diag
			}
			if at.Kind != types.KAtom {
				return nil, errors.PredicateIncompatibleArgumentType(n.Func, at.String(), "Atom", arg.Pos())
			}
		}
		if n.Func == "bond_distance" {
			nt, diag := a.checkExpr(n.Args[2], scope, bound)
			if diag != nil {
				return nil, diag
			}
			if nt.Kind != types.KInt {
				return nil, errors.PredicateIncompatibleArgumentType(n.Func, nt.String(), "Int", n.Args[2].Pos())
			}
		}
	case "near":
		for _, arg := range n.Args[:2] {
			at, diag := a.checkExpr(arg, scope, bound)
			if diag != nil {
				return nil, diag
			}
			if at.Kind != types.KAtom && at.Kind != types.KBond {
				return nil, errors.PredicateIncompatibleArgumentType(n.Func, at.String(), "Atom or Bond", arg.Pos())
			}
		}
		dt, diag := a.checkExpr(n.Args[2], scope, bound)
		if diag != nil {
			return nil, diag
		}
		if !dt.IsNumeric() {
			return nil, errors.PredicateNearExpectedNumeric(n.Args[2].Pos())
		}
	}

	return a.record(n, types.Bool()), nil
}

// assignable reports whether a value of type got may be passed where want
// is expected, allowing the one-directional Int→Float promotion.
func assignable(got, want *types.Type) bool {
	if got.Equal(want) {
		return true
	}
	return got.Kind == types.KInt && want.Kind == types.KFloat
}

func (a *analyzer) checkSubscript(n *ast.SubscriptExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	sym := scope.Lookup(n.Name)
	if sym == nil {
		return nil, errors.SymbolNotDefined(n.Name, n.NamePos)
	}

	idxKinds, diag := a.resolveIndexKinds(n.Indices, scope, bound)
	if diag != nil {
		return nil, diag
	}

	switch sym.Class {
	case symtab.ArrayVariable:
		if len(idxKinds) != len(sym.Type.Dims) {
			return nil, errors.BadNumberOfIndices(n.Name, len(idxKinds), len(sym.Type.Dims), n.Position)
		}
		if !kindsEqualSlice(idxKinds, sym.Type.Dims) {
			return nil, errors.CannotIndexArrayMismatch(sym.Type.String(), types.DimsString(idxKinds), n.Position)
		}
		if sym.Type.Elem == types.KFloat {
			return a.record(n, types.Float()), nil
		}
		return a.record(n, types.Int()), nil

	case symtab.Parameter:
		switch sym.Type.Kind {
		case types.KCommonParameter:
			return nil, errors.CannotIndexCommonParameter(n.Position)
		case types.KAtomParameter:
			if len(idxKinds) != 1 {
				return nil, errors.BadNumberOfIndices(n.Name, len(idxKinds), 1, n.Position)
			}
			if idxKinds[0] != types.KAtom {
				return nil, errors.CannotIndexAtomParameterWithBond(n.Position)
			}
			return a.record(n, types.Float()), nil
		case types.KBondParameter:
			switch len(idxKinds) {
			case 1:
				if idxKinds[0] != types.KBond {
					return nil, errors.CannotIndexBondParameterWithAtom(n.Position)
				}
			case 2:
				if idxKinds[0] != types.KAtom || idxKinds[1] != types.KAtom {
					return nil, errors.CannotIndexBondParameterWithAtom(n.Position)
				}
				if n.Indices[0].Name == n.Indices[1].Name {
					return nil, errors.CannotIndexBondParameterNonBonded(n.Position)
				}
			default:
				return nil, errors.BadNumberOfIndices(n.Name, len(idxKinds), 2, n.Position)
			}
			return a.record(n, types.Float()), nil
		}

	case symtab.Substitution:
		if len(idxKinds) != len(sym.Type.SubDims) {
			return nil, errors.BadNumberOfIndices(n.Name, len(idxKinds), len(sym.Type.SubDims), n.Position)
		}
		if !kindsEqualSlice(idxKinds, sym.Type.SubDims) {
			return nil, errors.SubstitutionIndicesMustBeAtomOrBond(n.Name, n.Position)
		}
		return a.record(n, sym.Type.SubResult), nil
	}

	return nil, errors.CannotIndexNonArrayScalar(sym.Type.String(), types.DimsString(idxKinds), n.Position)
}

func (a *analyzer) checkSum(n *ast.SumExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	sym := scope.Lookup(n.Index.Name)
	if sym == nil {
		return nil, errors.SymbolNotDefined(n.Index.Name, n.Index.Position)
	}
	if sym.Class != symtab.ObjectVariable {
		return nil, errors.SumMustIterateOverAtomOrBond(sym.Type.String(), n.Index.Position)
	}
	if !bound[n.Index.Name] {
		return nil, errors.ObjectNotBoundAny(n.Index.Name, n.Index.Position)
	}
	bodyType, diag := a.checkExpr(n.Body, scope, bound)
	if diag != nil {
		return nil, diag
	}
	return a.record(n, bodyType), nil
}

func (a *analyzer) checkEE(n *ast.EEExpr, scope *symtab.Scope, bound boundSet) (*types.Type, *errors.Diagnostic) {
	if scope.Lookup(n.RowIndex.Name) != nil {
		return nil, errors.EEIndicesAlreadyDefined(n.Position)
	}
	if scope.Lookup(n.ColIndex.Name) != nil || n.RowIndex.Name == n.ColIndex.Name {
		return nil, errors.EEIndicesAlreadyDefined(n.Position)
	}

	inner := symtab.NewScope(scope)
	inner.Define(&symtab.Symbol{Name: n.RowIndex.Name, Class: symtab.ObjectVariable, Type: types.Atom(), ObjectKind: types.KAtom, DefinedAt: n.RowIndex.Position})
	inner.Define(&symtab.Symbol{Name: n.ColIndex.Name, Class: symtab.ObjectVariable, Type: types.Atom(), ObjectKind: types.KAtom, DefinedAt: n.ColIndex.Position})
	innerBound := bound.with(n.RowIndex.Name, n.ColIndex.Name)

	parts := []ast.Expr{n.Diag, n.Off, n.Rhs}
	for _, part := range parts {
		t, diag := a.checkExpr(part, inner, innerBound)
		if diag != nil {
			return nil, diag
		}
		if t.Kind != types.KFloat {
			return nil, errors.EEMustBeFloat(part.Pos())
		}
	}
	if n.ModeParam != nil {
		t, diag := a.checkExpr(n.ModeParam, scope, bound)
		if diag != nil {
			return nil, diag
		}
		if t.Kind != types.KFloat {
			return nil, errors.EEMustBeFloat(n.ModeParam.Pos())
		}
	}

	return a.record(n, types.Array(types.KFloat, []types.Kind{types.KAtom})), nil
}
