package ir

// Equal reports structural equality of two parameters. The result does
// not depend on which Interner built them.
func Equal(a, b Parameter) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return termKey(a) == termKey(b)
}

// EqualSubstitution compares two substitutions element-wise.
func EqualSubstitution(a, b Substitution) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.params {
		if !Equal(a.params[i], b.params[i]) {
			return false
		}
	}
	return true
}

// EqualWhereClause compares two clauses structurally.
func EqualWhereClause(a, b WhereClause) bool {
	switch x := a.(type) {
	case *Implemented:
		y, ok := b.(*Implemented)
		return ok && x.TraitRef.TraitID == y.TraitRef.TraitID &&
			EqualSubstitution(x.TraitRef.Substitution, y.TraitRef.Substitution)
	case *AliasEqClause:
		y, ok := b.(*AliasEqClause)
		return ok && x.AliasEq.Alias.AssociatedTyID == y.AliasEq.Alias.AssociatedTyID &&
			EqualSubstitution(x.AliasEq.Alias.Substitution, y.AliasEq.Alias.Substitution) &&
			Equal(x.AliasEq.Ty, y.AliasEq.Ty)
	default:
		return false
	}
}

// EqualQuantified compares two quantified clauses, binder shape included.
func EqualQuantified(a, b QuantifiedWhereClause) bool {
	if len(a.Kinds) != len(b.Kinds) {
		return false
	}
	for i := range a.Kinds {
		if a.Kinds[i] != b.Kinds[i] {
			return false
		}
	}
	return EqualWhereClause(a.Value, b.Value)
}
