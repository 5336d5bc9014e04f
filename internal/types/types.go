// Package types implements the CCL type algebra: scalar numeric/object
// types, shape-indexed arrays, parameter categories, and the
// substitution pseudo-type, together with the unification and promotion
// rules the checkers need.
package types

import (
	"fmt"
	"strings"
)

// Kind distinguishes the scalar type tags. Atom and Bond double as both a
// standalone object type and as the element of a Dims list (an array's or
// a substitution's index-domain tuple).
type Kind int

const (
	Invalid Kind = iota
	KInt
	KFloat
	KBool
	KString
	KAtom
	KBond
	KArray
	KAtomParameter
	KBondParameter
	KCommonParameter
	KSubstitution
	KFunction
	KPredicate
)

// Type is a concrete, fully-resolved CCL type.
type Type struct {
	Kind Kind

	// Array only: element scalar kind (KInt or KFloat) and the 1- or
	// 2-length index-domain tuple (each KAtom or KBond).
	Elem Kind
	Dims []Kind

	// Substitution only: result type and index-kind tuple (possibly
	// empty for a zero-arity substitution).
	SubResult *Type
	SubDims   []Kind

	// Function/Predicate only.
	Params []*Type
	Result *Type
}

func Int() *Type    { return &Type{Kind: KInt} }
func Float() *Type  { return &Type{Kind: KFloat} }
func Bool() *Type   { return &Type{Kind: KBool} }
func String() *Type { return &Type{Kind: KString} }
func Atom() *Type   { return &Type{Kind: KAtom} }
func Bond() *Type   { return &Type{Kind: KBond} }

func AtomParameter() *Type   { return &Type{Kind: KAtomParameter} }
func BondParameter() *Type   { return &Type{Kind: KBondParameter} }
func CommonParameter() *Type { return &Type{Kind: KCommonParameter} }

// Array builds an array type with the given element scalar kind (KInt or
// KFloat) and 1- or 2-length index-domain tuple.
func Array(elem Kind, dims []Kind) *Type {
	return &Type{Kind: KArray, Elem: elem, Dims: append([]Kind{}, dims...)}
}

// Substitution builds the pseudo-type of a named substitution rule set.
func Substitution(result *Type, dims []Kind) *Type {
	return &Type{Kind: KSubstitution, SubResult: result, SubDims: append([]Kind{}, dims...)}
}

// Function builds a built-in math function's signature.
func Function(params []*Type, result *Type) *Type {
	return &Type{Kind: KFunction, Params: params, Result: result}
}

// Predicate builds a built-in predicate's signature; its result is always
// Bool.
func Predicate(params []*Type) *Type {
	return &Type{Kind: KPredicate, Params: params, Result: Bool()}
}

// IsNumeric reports whether t is a scalar Int or Float.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KInt || t.Kind == KFloat)
}

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t != nil && t.Kind == KArray }

// IsObject reports whether t is a bare Atom or Bond object type.
func (t *Type) IsObject() bool { return t != nil && (t.Kind == KAtom || t.Kind == KBond) }

// IsParameter reports whether t is any of the three parameter categories.
func (t *Type) IsParameter() bool {
	return t != nil && (t.Kind == KAtomParameter || t.Kind == KBondParameter || t.Kind == KCommonParameter)
}

// Equal reports structural equality, treating Int and Float as distinct
// (promotion is a separate, directional operation — see Promote).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KArray:
		return t.Elem == other.Elem && kindsEqual(t.Dims, other.Dims)
	case KSubstitution:
		return t.SubResult.Equal(other.SubResult) && kindsEqual(t.SubDims, other.SubDims)
	default:
		return true
	}
}

func kindsEqual(a, b []Kind) bool {
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

// Promote returns the least-upper-bound scalar type of a and b under the
// Int→Float promotion rule: Int is promotable to Float in rvalue contexts
// only. Both operands must already be numeric; callers are responsible
// for rejecting non-numeric operands first.
func Promote(a, b *Type) *Type {
	if a.Kind == KFloat || b.Kind == KFloat {
		return Float()
	}
	return Int()
}

// DimsString renders a Dims/SubDims tuple the way diagnostics spell it,
// e.g. []Kind{KAtom} -> "Atom", []Kind{KAtom, KBond} -> "Atom, Bond".
func DimsString(dims []Kind) string {
	parts := make([]string, len(dims))
	for i, k := range dims {
		parts[i] = kindName(k)
	}
	return strings.Join(parts, ", ")
}

func kindName(k Kind) string {
	switch k {
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KAtom:
		return "Atom"
	case KBond:
		return "Bond"
	default:
		return "?"
	}
}

// String renders t the way the fixed diagnostic catalogue spells types:
// "Float[Atom]", "Int[Atom, Atom]", "Bond Parameter", "Common Parameter",
// plain "Int"/"Float"/"Bool"/"String"/"Atom"/"Bond" otherwise.
func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case KArray:
		return fmt.Sprintf("%s[%s]", kindName(t.Elem), DimsString(t.Dims))
	case KAtomParameter:
		return "Atom Parameter"
	case KBondParameter:
		return "Bond Parameter"
	case KCommonParameter:
		return "Common Parameter"
	case KSubstitution:
		if len(t.SubDims) == 0 {
			return t.SubResult.String()
		}
		return fmt.Sprintf("%s[%s]", t.SubResult, DimsString(t.SubDims))
	default:
		return kindName(t.Kind)
	}
}
