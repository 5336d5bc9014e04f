// Package builtins is the fixed table of built-in functions, predicates,
// properties and elements. It is immutable and shared read-only.
package builtins

import (
	"fmt"

	"ccl/internal/types"

	"go.uber.org/multierr"
)

// Functions is the fixed mathematical-function signature table.
var Functions = map[string]*types.Type{
	"sin":  types.Function([]*types.Type{types.Float()}, types.Float()),
	"cos":  types.Function([]*types.Type{types.Float()}, types.Float()),
	"exp":  types.Function([]*types.Type{types.Float()}, types.Float()),
	"log":  types.Function([]*types.Type{types.Float()}, types.Float()),
	"sqrt": types.Function([]*types.Type{types.Float()}, types.Float()),
	"inv": types.Function(
		[]*types.Type{types.Array(types.KFloat, []types.Kind{types.KAtom, types.KAtom})},
		types.Array(types.KFloat, []types.Kind{types.KAtom, types.KAtom}),
	),
	"distance": types.Function([]*types.Type{types.Atom(), types.Atom()}, types.Float()),
}

// Predicates is the fixed predicate signature table. Every predicate
// returns Bool; Params records expected argument type shapes, where a nil
// entry means the predicate's arguments are checked specially (see
// internal/semantic's constraint checker for `near`).
var Predicates = map[string][]*types.Type{
	"bonded":       {types.Atom(), types.Atom()},
	"element":      {types.Atom(), types.String()},
	"near":         nil, // (Atom|Bond, Atom|Bond, Float) — arity-checked, kind-checked specially
	"bond_distance": {types.Atom(), types.Atom(), types.Int()},
}

// PredicateArity reports the expected argument count for a known
// predicate name.
var PredicateArity = map[string]int{
	"bonded":        2,
	"element":       2,
	"near":          3,
	"bond_distance": 3,
}

// PropertySignature is the arity/argument-kind/result-type a property
// annotation installs.
type PropertySignature struct {
	CanonicalName string
	ArgKinds      []types.Kind // KAtom or KBond per argument
	Result        *types.Type
}

// propertyWords maps every accepted annotation phrase (including its
// short aliases) to its canonical property.
var propertyWords = map[string]PropertySignature{
	"electronegativity":       {"electronegativity", []types.Kind{types.KAtom}, types.Float()},
	"covalent radius":         {"covalent radius", []types.Kind{types.KAtom}, types.Float()},
	"covradius":                {"covalent radius", []types.Kind{types.KAtom}, types.Float()},
	"van der waals radius":    {"van der waals radius", []types.Kind{types.KAtom}, types.Float()},
	"vdwradius":                {"van der waals radius", []types.Kind{types.KAtom}, types.Float()},
	"distance":                 {"distance", []types.Kind{types.KAtom, types.KAtom}, types.Float()},
	"bond order":               {"bond order", []types.Kind{types.KBond}, types.Float()},
	"bond distance":            {"bond distance", []types.Kind{types.KAtom, types.KAtom}, types.Float()},
	"formal charge":            {"formal charge", []types.Kind{types.KAtom}, types.Float()},
}

// PropertyPhrases lists every recognized property phrase, longest (by
// word count) first, so a greedy matcher over raw lexemes picks
// "van der waals radius" before it would otherwise stop at "van".
var PropertyPhrases = []string{
	"van der waals radius",
	"covalent radius",
	"bond distance",
	"bond order",
	"formal charge",
	"electronegativity",
	"vdwradius",
	"covradius",
	"distance",
}

// LookupProperty resolves the words following `name is` in a property
// annotation. ok is false when words matches no known property.
func LookupProperty(words string) (PropertySignature, bool) {
	sig, ok := propertyWords[words]
	return sig, ok
}

// PropertyType builds the Function type a property symbol is given.
func (p PropertySignature) PropertyType() *types.Type {
	params := make([]*types.Type, len(p.ArgKinds))
	for i, k := range p.ArgKinds {
		if k == types.KAtom {
			params[i] = types.Atom()
		} else {
			params[i] = types.Bond()
		}
	}
	return types.Function(params, p.Result)
}

// elements is the fixed set of recognized element identifiers: standard
// periodic-table symbols and their lower-case names. Any non-matching
// element name is rejected.
var elements = buildElementSet()

func buildElementSet() map[string]bool {
	symbols := []string{
		"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
		"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
		"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
		"Ga", "Ge", "As", "Se", "Br", "Kr", "I",
	}
	names := []string{
		"hydrogen", "helium", "lithium", "beryllium", "boron", "carbon",
		"nitrogen", "oxygen", "fluorine", "neon", "sodium", "magnesium",
		"aluminium", "silicon", "phosphorus", "sulfur", "chlorine", "argon",
		"potassium", "calcium", "scandium", "titanium", "vanadium",
		"chromium", "manganese", "iron", "cobalt", "nickel", "copper",
		"zinc", "gallium", "germanium", "arsenic", "selenium", "bromine",
		"krypton", "iodine",
	}
	set := make(map[string]bool, len(symbols)+len(names))
	for _, s := range symbols {
		set[s] = true
	}
	for _, n := range names {
		set[n] = true
	}
	return set
}

// IsKnownElement reports whether name is a recognized element symbol or
// lower-case name.
func IsKnownElement(name string) bool {
	return elements[name]
}

// checkRegistryConsistency verifies the static tables agree with each
// other (every Predicates entry has a PredicateArity entry with the
// matching length, and vice versa). It can only ever fail on a
// programmer error in this file, which is why it runs once at package
// load instead of being threaded through the fallible analysis path.
func checkRegistryConsistency() error {
	var err error
	for name, params := range Predicates {
		arity, ok := PredicateArity[name]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("predicate %q has no arity entry", name))
			continue
		}
		if params != nil && len(params) != arity {
			err = multierr.Append(err, fmt.Errorf("predicate %q: %d params but arity %d", name, len(params), arity))
		}
	}
	for name := range PredicateArity {
		if _, ok := Predicates[name]; !ok {
			err = multierr.Append(err, fmt.Errorf("arity entry %q has no predicate signature", name))
		}
	}
	return err
}

func init() {
	if err := checkRegistryConsistency(); err != nil {
		panic(err)
	}
}
