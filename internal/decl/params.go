package decl

import "github.com/funvibe/traitir/internal/ir"

// NamedKind is a generic parameter as written by the front end, before
// its name is dropped.
type NamedKind struct {
	Name string
	Kind ir.VariableKind
}

// Anonymize keeps only the kinds of named parameters, which is the form
// binders store.
func Anonymize(named []NamedKind) []ir.VariableKind {
	out := make([]ir.VariableKind, len(named))
	for i, n := range named {
		out[i] = n.Kind
	}
	return out
}

// ToParameter is a reference to the index-th parameter of the innermost
// binder, of the given kind.
func ToParameter(in ir.Interner, kind ir.VariableKind, index int) ir.Parameter {
	return ToParameterAtDepth(in, kind, index, ir.Innermost)
}

func ToParameterAtDepth(in ir.Interner, kind ir.VariableKind, index int, debruijn ir.DebruijnIndex) ir.Parameter {
	return ir.NewBoundParameter(in, kind, ir.NewBoundVar(debruijn, index))
}

// IdentitySubstitution maps every parameter of a binder with the given
// shape to itself: position i is (^0.i).
func IdentitySubstitution(in ir.Interner, kinds []ir.VariableKind) ir.Substitution {
	params := make([]ir.Parameter, len(kinds))
	for i, k := range kinds {
		params[i] = ToParameter(in, k, i)
	}
	return ir.NewSubstitution(in, params...)
}
