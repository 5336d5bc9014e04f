package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccl/internal/ast"
	"ccl/internal/errors"
	"ccl/internal/parser"
	"ccl/internal/types"
)

// analyzeDiag parses src and runs the semantic analyser, failing the test
// immediately on a scan or parse error (those are not what these tests
// are checking) and returning whatever the analyser itself produced.
func analyzeDiag(t *testing.T, src string) (*AnalysedProgram, *errors.Diagnostic) {
	t.Helper()
	prog, scanErrs, parseErr := parser.ParseSource(src)
	require.Empty(t, scanErrs, "unexpected scan errors")
	require.Nil(t, parseErr, "unexpected parse error")
	return Analyze(prog)
}

func TestScenario1_ObjectRedefinedAsDifferentClass(t *testing.T) {
	src := "q = 1\nwhere\na is atom\na is bond\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Symbol a already defined.", diag.Message)
}

func TestScenario2_SubstitutionMissingDefault(t *testing.T) {
	src := "q = 1\nwhere\nd[i] = 1 if element(i, hydrogen)\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "No default option specified for Substitution symbol d.", diag.Message)
}

func TestScenario3_CannotAssignToLoopVariable(t *testing.T) {
	src := "for i = 0 to 10:\n  i = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot assign to loop variable i.", diag.Message)
}

func TestScenario4_IndexKindMismatch(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1.0\ndone\nfor each bond b:\n  q[b] = 1.0\ndone\nwhere\na is atom\nb is bond\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot index Array of type Float[Atom] using index/indices of type(s) Bond.", diag.Message)
}

func TestScenario5_UnknownElement(t *testing.T) {
	src := "q = 1\nwhere\nd[i] = 1 if element(i, adamantine)\nd[i] = 2\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Unknown element adamantine.", diag.Message)
}

func TestScenario6_PEOEStyleExampleChecksOut(t *testing.T) {
	src := `for each atom a such that element(a, hydrogen):
  q[a] = en(a) - avg
done

where
a is atom
en is electronegativity
avg is electronegativity of hydrogen
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	require.NotNil(t, result)

	sym := result.Global.Lookup("q")
	require.NotNil(t, sym)
	assert.Equal(t, "Float[Atom]", sym.Type.String())

	for _, e := range result.ExprTypes {
		assert.NotEqual(t, types.Invalid, e.Kind)
	}
}

func TestSubstitutionDifferentIndices(t *testing.T) {
	src := "q = 1\nwhere\nd[i] = 1 if element(i, hydrogen)\nd[i,j] = 2 if bonded(i, j)\nd = 3\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Substitution symbol d has different indices defined.", diag.Message)
}

func TestSubstitutionTypeMismatch(t *testing.T) {
	src := "q = 1\nwhere\nd[i] = 1 if element(i, hydrogen)\nd[i] = bonded(i, i)\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "All expressions within a substitution symbol d must have same type.", diag.Message)
}

func TestSubstitutionDuplicateConstraint(t *testing.T) {
	src := "q = 1\nwhere\nd[i] = 1 if element(i, hydrogen)\nd[i] = 2 if element(i, hydrogen)\nd[i] = 3\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Same constraint already defined for symbol d.", diag.Message)
}

func TestSubstitutionCannotHaveConstraintWhenZeroArity(t *testing.T) {
	src := "q = 1\nwhere\nd = 1 if element(a, hydrogen)\na is atom\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Substitution symbol d cannot have a constraint.", diag.Message)
}

func TestNestedSubstitutionRejected(t *testing.T) {
	src := "q = 1\nwhere\nm = 1\nd = m\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot nest substitution m in another substitution d.", diag.Message)
}

func TestSymbolAlreadyDefinedAsSomethingElse(t *testing.T) {
	src := "q = 1\nwhere\nd is atom\nd = 1\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Symbol d already defined as something else.", diag.Message)
}

func TestPropertyNotKnown(t *testing.T) {
	src := "q = 1\nwhere\nx is bogus\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Property bogus is not known.", diag.Message)
}

func TestElementNotKnownInConstantAnnotation(t *testing.T) {
	src := "q = 1\nwhere\nk is electronegativity of adamantine\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Element adamantine not known.", diag.Message)
}

func TestForBoundsMustBeInt(t *testing.T) {
	src := "for i = 0 to 1.5:\n  q = i\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "For loop bounds must have type Int, got Float.", diag.Message)
}

func TestLoopVariableAlreadyDefined(t *testing.T) {
	src := "for i = 0 to 1:\n  for i = 0 to 1:\n    q = i\n  done\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Loop variable i already defined.", diag.Message)
}

func TestDecompositionAlreadyDefinedNames(t *testing.T) {
	src := "for each bond b = [a, a]:\n  q = 1\ndone\nwhere\na is atom\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Decomposition of bond symbol b used already defined names.", diag.Message)
}

func TestObjectNotBoundToAnyIterator(t *testing.T) {
	src := "q = a\nwhere\na is atom\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Object a not bound to any For/ForEach/Sum.", diag.Message)
}

func TestSymbolNotDefined(t *testing.T) {
	src := "q = mystery\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Symbol mystery not defined.", diag.Message)
}

func TestCannotAssignToParameter(t *testing.T) {
	src := "p = 1\nwhere\np is common parameter\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot assign to a parameter symbol p.", diag.Message)
}

func TestCannotIndexCommonParameter(t *testing.T) {
	src := "for each atom a:\n  q[a] = p[a]\ndone\nwhere\np is common parameter\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot index common parameter.", diag.Message)
}

func TestCannotIndexAtomParameterWithBond(t *testing.T) {
	src := "for each bond b:\n  q[b] = p[b]\ndone\nwhere\np is atom parameter\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot index atom parameter with Bond.", diag.Message)
}

func TestCannotIndexBondParameterNonBonded(t *testing.T) {
	src := "for each atom a:\n  q = p[a,a]\ndone\nwhere\np is bond parameter\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot index bond parameter by two non-bonded atoms.", diag.Message)
}

func TestBadNumberOfIndices(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1\ndone\nfor each atom a:\n  r = q[a,a]\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Bad number of indices for q, got 2, expected 1.", diag.Message)
}

func TestCannotPerformNonMulDivBetweenScalarAndArray(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1\ndone\nr = q + 1\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot perform operation other than * or / between Number and Array.", diag.Message)
}

func TestCannotDivideScalarByArray(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1.0\ndone\nr = 1 / q\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot perform / for types Int and Float[Atom].", diag.Message)
}

func TestCannotPerformOpBetweenDifferentArrayShapes(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1.0\ndone\nfor each bond b:\n  r[b] = 1.0\ndone\ns = q + r\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot perform + for types Float[Atom] and Float[Bond].", diag.Message)
}

func TestCannotPerformDotProductShapeMismatch(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1.0\ndone\nfor each bond b:\n  r[b] = 1.0\ndone\ns = q * r\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot perform dot product between vectors of types Float[Atom] and Float[Bond].", diag.Message)
}

func TestCannotMultiplyMatricesShapeMismatch(t *testing.T) {
	src := "for each atom a:\n  for each atom c:\n    m[a,c] = 1.0\n  done\ndone\nfor each bond b:\n  for each bond d:\n    n[b,d] = 1.0\n  done\ndone\no = m * n\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot multiply matrices of types Float[Atom, Atom] and Float[Bond, Bond].", diag.Message)
}

func TestCannotMultiplyVectorMatrixMismatch(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1.0\ndone\nfor each bond b:\n  for each bond d:\n    n[b,d] = 1.0\n  done\ndone\no = q * n\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot multiply vector of type Float[Atom] with Float[Bond, Bond].", diag.Message)
}

func TestCannotPerformPowerBetweenArrays(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1\ndone\nr = q ^ q\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot perform ^ for types Int[Atom] and Int[Atom].", diag.Message)
}

func TestFunctionNotKnown(t *testing.T) {
	src := "q = magic(1.0)\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Function magic is not known.", diag.Message)
}

func TestIncompatibleArgumentTypeForFunction(t *testing.T) {
	src := "for each atom a:\n  q = sin(a)\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Incompatible argument type for function sin. Got Atom, expected Float.", diag.Message)
}

func TestSumMustIterateOverAtomOrBond(t *testing.T) {
	src := "q = sum[p](1.0)\nwhere\np is common parameter\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Sum has to iterate over Atom or Bond not Common Parameter.", diag.Message)
}

func TestEEExpressionRequiresFloatParts(t *testing.T) {
	src := "q = EE[i,j](1, 0.0, 1.0)\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "EE expression has to have all parts with Float type.", diag.Message)
}

func TestPredicateWrongArity(t *testing.T) {
	src := "for each atom a such that bonded(a):\n  q[a] = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Predicate bonded should have 2 arguments but got 1 instead.", diag.Message)
}

func TestPredicateElementUnknownElementName(t *testing.T) {
	src := "for each atom a such that element(a, a):\n  q[a] = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Unknown element a.", diag.Message)
}

func TestPredicateElementExpectedStringArgument(t *testing.T) {
	src := "for each atom a such that element(a, 1):\n  q[a] = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Predicate element expected string argument.", diag.Message)
}

func TestPredicateNearExpectedNumeric(t *testing.T) {
	src := "for each atom a:\n  for each atom b such that near(a, b, a):\n    q = 1\n  done\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Predicate near expected numeric argument.", diag.Message)
}

func TestConstraintMustBeBool(t *testing.T) {
	src := "for each atom a such that 1 + 1:\n  q = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Constraint must have type Bool, got Int.", diag.Message)
}

func TestAssignmentTypeMismatchOnReassignment(t *testing.T) {
	src := "for each atom a:\n  q[a] = 1\ndone\nfor each bond b:\n  q[b] = 1\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot index Array of type Int[Atom] using index/indices of type(s) Bond.", diag.Message)
}

func TestCannotAssignToNonArrayType(t *testing.T) {
	src := "x = 1\nfor each atom a:\n  x[a] = 2\ndone\nwhere\n"
	_, diag := analyzeDiag(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, "Cannot assign to non-Array type Int.", diag.Message)
}

func TestScalarTimesArrayBroadcastsAndPromotes(t *testing.T) {
	src := `for each atom a:
  q[a] = 1
done
r = 2.0 * q
where
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	sym := result.Global.Lookup("r")
	require.NotNil(t, sym)
	assert.Equal(t, "Float[Atom]", sym.Type.String())
}

func TestIntArrayStaysIntUnderScalarIntMultiply(t *testing.T) {
	src := `for each atom a:
  q[a] = 1
done
r = 2 * q
where
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	sym := result.Global.Lookup("r")
	require.NotNil(t, sym)
	assert.Equal(t, "Int[Atom]", sym.Type.String())
}

func TestMatrixMultiplyProducesCombinedShape(t *testing.T) {
	src := `for each atom a:
  for each atom b:
    m[a,b] = 1
  done
done
for each atom a:
  for each atom b:
    n[a,b] = 1.0
  done
done
o = m * n
where
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	sym := result.Global.Lookup("o")
	require.NotNil(t, sym)
	assert.Equal(t, "Float[Atom, Atom]", sym.Type.String())
}

func TestVectorDotProductIsScalar(t *testing.T) {
	src := `for each atom a:
  q[a] = 1
done
for each atom a:
  r[a] = 2.0
done
s = q * r
where
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	sym := result.Global.Lookup("s")
	require.NotNil(t, sym)
	assert.Equal(t, "Float", sym.Type.String())
}

func TestSubstitutionResolvesAtUseSite(t *testing.T) {
	src := `for each atom a:
  q[a] = d[a]
done
where
d[i] = 1.0 if element(i, hydrogen)
d[i] = 2.0
`
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	sym := result.Global.Lookup("q")
	require.NotNil(t, sym)
	assert.Equal(t, "Float[Atom]", sym.Type.String())
}

func TestZeroAritySubstitutionIsValidWithoutDefault(t *testing.T) {
	src := "q = k\nwhere\nk = 1.0\n"
	_, diag := analyzeDiag(t, src)
	assert.Nil(t, diag)
}

func TestTypeOfReturnsRecordedType(t *testing.T) {
	src := "q = 1 + 2\nwhere\n"
	result, diag := analyzeDiag(t, src)
	require.Nil(t, diag)
	assign := findAssign(t, result, "q")
	typ := result.TypeOf(assign.RHS)
	require.NotNil(t, typ)
	assert.Equal(t, types.KInt, typ.Kind)
}

func findAssign(t *testing.T, result *AnalysedProgram, name string) *ast.AssignStmt {
	t.Helper()
	for _, s := range result.Program.Statements {
		if a, ok := s.(*ast.AssignStmt); ok && a.Name == name {
			return a
		}
	}
	t.Fatalf("no assignment to %s found", name)
	return nil
}
