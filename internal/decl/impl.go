// Package decl holds the declaration records handed to the solver:
// structs, traits, impls, associated types and their values, plus the
// lowering of inline bounds into where clauses.
//
// Generic parameters are never named here. Each record carries a binder
// whose shape lists its parameters; the record's contents refer to them
// positionally through bound variables.
package decl

import (
	"fmt"

	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// AssociatedTyValueID identifies an associated type value found in some impl.
type AssociatedTyValueID uint32

func (id AssociatedTyValueID) String() string { return fmt.Sprintf("assoc_value#%d", uint32(id)) }

// Polarity says whether an impl asserts or denies an implementation.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) IsPositive() bool {
	switch p {
	case Positive:
		return true
	case Negative:
		return false
	default:
		panic(fmt.Sprintf("ir: unknown polarity %d", int(p)))
	}
}

func (p Polarity) String() string {
	if p.IsPositive() {
		return "positive"
	}
	return "negative"
}

// ImplType records whether the coherence rules for an impl are local to
// the current program.
type ImplType int

const (
	ImplLocal ImplType = iota
	ImplExternal
)

func (t ImplType) String() string {
	switch t {
	case ImplLocal:
		return "local"
	case ImplExternal:
		return "external"
	default:
		panic(fmt.Sprintf("ir: unknown impl type %d", int(t)))
	}
}

// ImplDatum is an impl declaration, e.g. impl<T: Clone> Foo for Vec<T>.
type ImplDatum struct {
	Polarity             Polarity
	Binders              ir.Binders[ImplDatumBound]
	ImplType             ImplType
	AssociatedTyValueIDs []AssociatedTyValueID
}

// ImplDatumBound is the part of an impl where its parameters are in scope.
type ImplDatumBound struct {
	TraitRef     ir.TraitRef
	WhereClauses []ir.QuantifiedWhereClause
}

func (d *ImplDatum) IsPositive() bool {
	return d.Polarity.IsPositive()
}

// TraitID is the trait being implemented.
func (d *ImplDatum) TraitID() ir.TraitID {
	return d.Binders.Value.TraitRef.TraitID
}

// TraitRef is the implemented trait reference, under the impl's binder.
func (d *ImplDatum) TraitRef() ir.TraitRef {
	return d.Binders.Value.TraitRef
}

// Fold returns a copy of d with f applied to every term.
func (d *ImplDatum) Fold(f fold.Folder, outer ir.DebruijnIndex) *ImplDatum {
	out := *d
	out.Binders = fold.Binders(f, d.Binders, outer, FoldImplDatumBound)
	return &out
}

func FoldImplDatumBound(f fold.Folder, b ImplDatumBound, outer ir.DebruijnIndex) ImplDatumBound {
	return ImplDatumBound{
		TraitRef:     fold.TraitRef(f, b.TraitRef, outer),
		WhereClauses: fold.QuantifiedWhereClauses(f, b.WhereClauses, outer),
	}
}

// DefaultImplDatum is a synthesized impl, such as an auto trait default,
// that holds when every accessible type implements the trait.
type DefaultImplDatum struct {
	Binders ir.Binders[DefaultImplDatumBound]
}

type DefaultImplDatumBound struct {
	TraitRef      ir.TraitRef
	AccessibleTys []ir.Ty
}

func (d *DefaultImplDatum) TraitID() ir.TraitID {
	return d.Binders.Value.TraitRef.TraitID
}

// Conditions are the clauses, under the default impl's binder, that must
// hold for it to apply: each accessible type implements the trait with
// the same remaining arguments.
func (d *DefaultImplDatum) Conditions(in ir.Interner) []ir.QuantifiedWhereClause {
	tr := d.Binders.Value.TraitRef
	rest := tr.Substitution.Tail(in, 1)
	out := make([]ir.QuantifiedWhereClause, 0, len(d.Binders.Value.AccessibleTys))
	for _, ty := range d.Binders.Value.AccessibleTys {
		subst := ir.NewSubstitution(in, ty).Concat(in, rest)
		out = append(out, Quantify(in, &ir.Implemented{TraitRef: ir.TraitRef{TraitID: tr.TraitID, Substitution: subst}}))
	}
	return out
}

// Quantify places wc under an empty binder, shifting its free variables
// in so they keep referring to the same parameters.
func Quantify(in ir.Interner, wc ir.WhereClause) ir.QuantifiedWhereClause {
	return ir.Empty(fold.ShiftIn(in, fold.WhereClause, wc))
}

func (d *DefaultImplDatum) Fold(f fold.Folder, outer ir.DebruijnIndex) *DefaultImplDatum {
	return &DefaultImplDatum{Binders: fold.Binders(f, d.Binders, outer, FoldDefaultImplDatumBound)}
}

func FoldDefaultImplDatumBound(f fold.Folder, b DefaultImplDatumBound, outer ir.DebruijnIndex) DefaultImplDatumBound {
	return DefaultImplDatumBound{
		TraitRef:      fold.TraitRef(f, b.TraitRef, outer),
		AccessibleTys: fold.Tys(f, b.AccessibleTys, outer),
	}
}
