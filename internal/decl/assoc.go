package decl

import (
	"fmt"

	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// AssociatedTyDatum is an associated type declared inside a trait:
//
//	trait Foo<P1..Pn> { // P0 is Self
//	    type Bar<Pn..Pm>: [bounds]
//	    where
//	        [where_clauses];
//	}
//
// All of P0..Pm are in scope. Bounds are what an impl must prove; where
// clauses are what the impl may assume and what projections must prove.
type AssociatedTyDatum struct {
	TraitID ir.TraitID
	ID      ir.AssocTypeID
	Name    string

	// The binder's shape is [Pn..Pm; P0..Pn]: the associated type's own
	// parameters first, then the trait's. Inner parameters get the lower
	// indices.
	Binders ir.Binders[AssociatedTyDatumBound]
}

type AssociatedTyDatumBound struct {
	// Bounds on the associated type itself, which implementers must
	// prove for every well-formed projection.
	Bounds []QuantifiedInlineBound

	// Where clauses that must hold for the projection to be well-formed.
	WhereClauses []ir.QuantifiedWhereClause
}

// SelfProjection is the associated type applied to all parameters in
// scope, e.g. <P0 as Foo<P1..Pn>>::Bar<Pn..Pm>, under the datum's binder.
func (d *AssociatedTyDatum) SelfProjection(in ir.Interner) ir.AliasTy {
	return ir.AliasTy{
		AssociatedTyID: d.ID,
		Substitution:   IdentitySubstitution(in, d.Binders.Kinds),
	}
}

// BoundsOnSelf applies the datum's bounds to its self projection, so
// `type Bar<U>: Debug` becomes
//
//	Implemented(<P0 as Foo<P1..Pn>>::Bar<Pn..Pm>: Debug)
//
// The clauses are in the scope of the datum's binder. Order follows the
// bound list, and within a bound the order IntoWhereClauses produces.
func (d *AssociatedTyDatum) BoundsOnSelf(in ir.Interner) []ir.QuantifiedWhereClause {
	selfTy := ir.NewProjectionTy(in, d.SelfProjection(in))
	var out []ir.QuantifiedWhereClause
	for _, b := range d.Binders.Value.Bounds {
		out = append(out, IntoQuantifiedWhereClauses(in, b, selfTy)...)
	}
	return out
}

// SplitParams returns the number of the associated type's own parameters
// and the kinds of the trait parameters, given how many parameters the
// trait declares (Self included).
func (d *AssociatedTyDatum) SplitParams(traitParams int) (own int, trait []ir.VariableKind) {
	own = d.Binders.Len() - traitParams
	if own < 0 {
		panic(fmt.Sprintf("ir: associated type %s has %d parameters, fewer than its trait's %d", d.ID, d.Binders.Len(), traitParams))
	}
	return own, d.Binders.Kinds[own:]
}

func (d *AssociatedTyDatum) Fold(f fold.Folder, outer ir.DebruijnIndex) *AssociatedTyDatum {
	out := *d
	out.Binders = fold.Binders(f, d.Binders, outer, FoldAssociatedTyDatumBound)
	return &out
}

func FoldAssociatedTyDatumBound(f fold.Folder, b AssociatedTyDatumBound, outer ir.DebruijnIndex) AssociatedTyDatumBound {
	return AssociatedTyDatumBound{
		Bounds:       fold.Slice(f, b.Bounds, outer, FoldQuantifiedInlineBound),
		WhereClauses: fold.QuantifiedWhereClauses(f, b.WhereClauses, outer),
	}
}

// AssociatedTyValue is the value an impl assigns to an associated type:
//
//	impl<T> Iterable for Vec<T> {
//	    type Iter<'a> = vec::Iter<'a, T>;
//	}
//
// Value's binder holds only the parameters declared on the associated
// type itself ('a above). The impl's parameters (T) are referenced one
// binder further out.
type AssociatedTyValue struct {
	ImplID         ir.ImplID
	AssociatedTyID ir.AssocTypeID
	Value          ir.Binders[AssociatedTyValueBound]
}

type AssociatedTyValueBound struct {
	// Ty is what the projection normalizes to.
	Ty ir.Ty
}

// Instantiate substitutes the associated type's own parameters,
// returning the normalized type in the impl's scope.
func (v *AssociatedTyValue) Instantiate(in ir.Interner, params ir.Substitution) ir.Ty {
	return fold.Instantiate(in, v.Value, params, FoldAssociatedTyValueBound).Ty
}

// Normalization is the clause this value contributes, in the impl's
// scope: for<own> AliasEq(Assoc<own, implTraitArgs> = Ty). The impl's
// trait arguments are shifted in past the value's binder.
func (v *AssociatedTyValue) Normalization(in ir.Interner, implTraitRef ir.TraitRef) ir.QuantifiedWhereClause {
	own := IdentitySubstitution(in, v.Value.Kinds)
	traitArgs := fold.Shift(in, fold.Substitution, implTraitRef.Substitution, 1)
	clause := &ir.AliasEqClause{AliasEq: ir.AliasEq{
		Alias: ir.AliasTy{AssociatedTyID: v.AssociatedTyID, Substitution: own.Concat(in, traitArgs)},
		Ty:    v.Value.Value.Ty,
	}}
	return ir.NewBinders[ir.WhereClause](v.Value.Kinds, clause)
}

func (v *AssociatedTyValue) Fold(f fold.Folder, outer ir.DebruijnIndex) *AssociatedTyValue {
	out := *v
	out.Value = fold.Binders(f, v.Value, outer, FoldAssociatedTyValueBound)
	return &out
}

func FoldAssociatedTyValueBound(f fold.Folder, b AssociatedTyValueBound, outer ir.DebruijnIndex) AssociatedTyValueBound {
	return AssociatedTyValueBound{Ty: fold.Ty(f, b.Ty, outer)}
}
