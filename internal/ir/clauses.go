package ir

// TraitRef names a trait applied to arguments. Substitution[0] is always
// the self type.
type TraitRef struct {
	TraitID      TraitID
	Substitution Substitution
}

// SelfTy returns the implementing type, argument 0.
func (t TraitRef) SelfTy() Ty {
	ty, ok := AsTy(t.Substitution.At(0))
	if !ok {
		panic("ir: trait reference self parameter is not a type")
	}
	return ty
}

func (t TraitRef) String() string { return formatTraitRef(t, nil) }

// AliasTy is an associated type applied to its own parameters followed
// by the parameters of its trait.
type AliasTy struct {
	AssociatedTyID AssocTypeID
	Substitution   Substitution
}

func (a AliasTy) String() string { return formatAlias(a, nil) }

// AliasEq states that an alias normalizes to Ty.
type AliasEq struct {
	Alias AliasTy
	Ty    Ty
}

// WhereClause is a canonical clause consumed by the solver.
type WhereClause interface {
	String() string
	isWhereClause()
}

// Implemented states TraitRef holds.
type Implemented struct {
	TraitRef TraitRef
}

// AliasEqClause states AliasEq holds.
type AliasEqClause struct {
	AliasEq AliasEq
}

func (*Implemented) isWhereClause()   {}
func (*AliasEqClause) isWhereClause() {}

func (c *Implemented) String() string   { return FormatWhereClause(c, nil) }
func (c *AliasEqClause) String() string { return FormatWhereClause(c, nil) }

// QuantifiedWhereClause is a where clause under its own binder.
type QuantifiedWhereClause = Binders[WhereClause]
