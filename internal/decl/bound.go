package decl

import (
	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// InlineBound is a bound written where a parameter or associated type is
// declared, e.g. `: Foo<K>` in `impl<K, T: Foo<K>> SomeType<T>`. It does
// not know what it bounds; the self type is supplied when lowering.
type InlineBound interface {
	String() string
	isInlineBound()
}

// QuantifiedInlineBound is an inline bound with its own parameters.
type QuantifiedInlineBound = ir.Binders[InlineBound]

// TraitBound is `Self: Trait<ArgsNoSelf...>`.
type TraitBound struct {
	TraitID    ir.TraitID
	ArgsNoSelf []ir.Parameter
}

// AliasEqBound is `Self: Trait<...>` together with
// `<Self as Trait<...>>::Assoc<Parameters...> = Value`.
type AliasEqBound struct {
	TraitBound     TraitBound
	AssociatedTyID ir.AssocTypeID
	// Parameters are the associated type's own; trait parameters come
	// from TraitBound.
	Parameters []ir.Parameter
	Value      ir.Ty
}

func (*TraitBound) isInlineBound()   {}
func (*AliasEqBound) isInlineBound() {}

func (b *TraitBound) String() string {
	return "Self: " + b.TraitID.String() + ir.FormatParams(b.ArgsNoSelf, nil)
}

func (b *AliasEqBound) String() string {
	return b.TraitBound.String() + ", (" + b.AssociatedTyID.String() + ")" +
		ir.FormatParams(b.Parameters, nil) + " = " + b.Value.String()
}

// AsTraitRef applies the bound to selfTy. The self type is always
// argument 0.
func (b *TraitBound) AsTraitRef(in ir.Interner, selfTy ir.Ty) ir.TraitRef {
	params := make([]ir.Parameter, 0, len(b.ArgsNoSelf)+1)
	params = append(params, selfTy)
	params = append(params, b.ArgsNoSelf...)
	return ir.TraitRef{TraitID: b.TraitID, Substitution: ir.NewSubstitution(in, params...)}
}

// Lower yields exactly one clause: Implemented(selfTy: Trait<args>).
func (b *TraitBound) Lower(in ir.Interner, selfTy ir.Ty) []ir.WhereClause {
	return []ir.WhereClause{&ir.Implemented{TraitRef: b.AsTraitRef(in, selfTy)}}
}

// Lower yields the Implemented clause followed by the AliasEq clause.
// The alias is applied to Parameters followed by the full trait
// arguments, self included.
func (b *AliasEqBound) Lower(in ir.Interner, selfTy ir.Ty) []ir.WhereClause {
	traitRef := b.TraitBound.AsTraitRef(in, selfTy)
	own := ir.NewSubstitution(in, b.Parameters...)
	return []ir.WhereClause{
		&ir.Implemented{TraitRef: traitRef},
		&ir.AliasEqClause{AliasEq: ir.AliasEq{
			Alias: ir.AliasTy{
				AssociatedTyID: b.AssociatedTyID,
				Substitution:   own.Concat(in, traitRef.Substitution),
			},
			Ty: b.Value,
		}},
	}
}

// IntoWhereClauses lowers b applied to selfTy.
func IntoWhereClauses(in ir.Interner, b InlineBound, selfTy ir.Ty) []ir.WhereClause {
	switch b := b.(type) {
	case *TraitBound:
		return b.Lower(in, selfTy)
	case *AliasEqBound:
		return b.Lower(in, selfTy)
	default:
		panic("ir: unknown inline bound variant")
	}
}

// IntoQuantifiedWhereClauses lowers a bound that has its own binder.
// selfTy comes from the enclosing scope, so it is shifted in past the
// bound's binder before lowering; every resulting clause is then placed
// under a copy of that binder.
func IntoQuantifiedWhereClauses(in ir.Interner, b QuantifiedInlineBound, selfTy ir.Ty) []ir.QuantifiedWhereClause {
	selfTy = fold.ShiftTy(in, selfTy, 1)
	clauses := IntoWhereClauses(in, b.Value, selfTy)
	out := make([]ir.QuantifiedWhereClause, len(clauses))
	for i, wc := range clauses {
		out[i] = ir.NewBinders(b.Kinds, wc)
	}
	return out
}

// FoldInlineBound walks the bound's arguments and value.
func FoldInlineBound(f fold.Folder, b InlineBound, outer ir.DebruijnIndex) InlineBound {
	switch b := b.(type) {
	case *TraitBound:
		tb := foldTraitBound(f, *b, outer)
		return &tb
	case *AliasEqBound:
		return &AliasEqBound{
			TraitBound:     foldTraitBound(f, b.TraitBound, outer),
			AssociatedTyID: b.AssociatedTyID,
			Parameters:     fold.Parameters(f, b.Parameters, outer),
			Value:          fold.Ty(f, b.Value, outer),
		}
	default:
		panic("ir: unknown inline bound variant")
	}
}

func foldTraitBound(f fold.Folder, b TraitBound, outer ir.DebruijnIndex) TraitBound {
	return TraitBound{TraitID: b.TraitID, ArgsNoSelf: fold.Parameters(f, b.ArgsNoSelf, outer)}
}

func FoldQuantifiedInlineBound(f fold.Folder, b QuantifiedInlineBound, outer ir.DebruijnIndex) QuantifiedInlineBound {
	return fold.Binders(f, b, outer, FoldInlineBound)
}
