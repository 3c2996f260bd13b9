package ir

import "fmt"

// VariableKind tags a generic parameter as type-like or lifetime-like.
// The ordered list of kinds in a binder is the "shape" of that scope.
type VariableKind int

const (
	KindTy VariableKind = iota
	KindLifetime
)

func (k VariableKind) String() string {
	switch k {
	case KindTy:
		return "type"
	case KindLifetime:
		return "lifetime"
	default:
		panic(fmt.Sprintf("ir: unknown variable kind %d", int(k)))
	}
}

// Valid reports whether k is one of the known kinds.
func (k VariableKind) Valid() bool {
	return k == KindTy || k == KindLifetime
}

// Kinds is a helper for building binder shapes in tests and lowering code.
// e.g. Kinds(KindTy, KindLifetime) -> [type, lifetime]
func Kinds(kinds ...VariableKind) []VariableKind {
	out := make([]VariableKind, len(kinds))
	copy(out, kinds)
	return out
}
