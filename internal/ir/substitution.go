package ir

// Substitution is an ordered, immutable list of generic arguments.
// Build one through an Interner so the backend can share storage.
type Substitution struct {
	params []Parameter
}

// NewSubstitution interns params as a substitution.
func NewSubstitution(in Interner, params ...Parameter) Substitution {
	return in.InternSubstitution(params)
}

// EmptySubstitution has no arguments.
var EmptySubstitution = Substitution{}

func (s Substitution) Len() int { return len(s.params) }

func (s Substitution) IsEmpty() bool { return len(s.params) == 0 }

// At returns the i-th argument. Out of range access is a caller bug.
func (s Substitution) At(i int) Parameter { return s.params[i] }

// Params returns a copy of the arguments.
func (s Substitution) Params() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Concat appends other's arguments after s's.
func (s Substitution) Concat(in Interner, other Substitution) Substitution {
	out := make([]Parameter, 0, len(s.params)+len(other.params))
	out = append(out, s.params...)
	out = append(out, other.params...)
	return in.InternSubstitution(out)
}

// Tail returns the arguments from index i onwards.
func (s Substitution) Tail(in Interner, i int) Substitution {
	return in.InternSubstitution(s.params[i:])
}

// IsIdentity reports whether each position i is the innermost bound
// variable with index i.
func (s Substitution) IsIdentity() bool {
	for i, p := range s.params {
		bv, ok := BoundVarOf(p)
		if !ok || bv.Debruijn != Innermost || bv.Index != i {
			return false
		}
	}
	return true
}

func (s Substitution) String() string { return formatSubst(s, nil) }
