package decl

import (
	"strings"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// TraitDatum is a trait declaration such as
//
//	trait Foo<T> where T: Debug {
//	    type Bar<U>;
//	}
//
// The binder's first parameter is always Self. Members like Bar are
// stored separately as AssociatedTyDatum records listed by
// AssociatedTyIDs.
type TraitDatum struct {
	ID      ir.TraitID
	Binders ir.Binders[TraitDatumBound]

	// Flags mark special kinds of traits, like auto traits.
	Flags TraitFlags

	AssociatedTyIDs []ir.AssocTypeID

	// WellKnown is zero for ordinary user traits.
	WellKnown WellKnownTrait
}

type TraitDatumBound struct {
	WhereClauses []ir.QuantifiedWhereClause
}

type TraitFlags struct {
	// Auto traits are implemented for every type unless an explicit
	// impl opts out, e.g. Send and Sync.
	Auto   bool
	Marker bool

	// Upstream traits are defined in a dependency. Used by coherence.
	Upstream bool

	// Adding an impl of a fundamental trait for an existing type is a
	// breaking change.
	Fundamental bool

	// The set of implementors cannot be listed, which rules out negative
	// reasoning by enumeration.
	NonEnumerable bool

	// Proofs may be cyclic.
	Coinductive bool
}

func (d *TraitDatum) IsAutoTrait() bool          { return d.Flags.Auto }
func (d *TraitDatum) IsMarkerTrait() bool        { return d.Flags.Marker }
func (d *TraitDatum) IsUpstream() bool           { return d.Flags.Upstream }
func (d *TraitDatum) IsFundamental() bool        { return d.Flags.Fundamental }
func (d *TraitDatum) IsNonEnumerableTrait() bool { return d.Flags.NonEnumerable }
func (d *TraitDatum) IsCoinductiveTrait() bool   { return d.Flags.Coinductive }

// WellKnownTrait returns the solver-hardcoded trait this declares, if any.
func (d *TraitDatum) WellKnownTrait() (WellKnownTrait, bool) {
	return d.WellKnown, d.WellKnown != NotWellKnown
}

// SelfTraitRef is the trait applied to its own parameters, under its binder.
func (d *TraitDatum) SelfTraitRef(in ir.Interner) ir.TraitRef {
	return ir.TraitRef{TraitID: d.ID, Substitution: IdentitySubstitution(in, d.Binders.Kinds)}
}

func (d *TraitDatum) Fold(f fold.Folder, outer ir.DebruijnIndex) *TraitDatum {
	out := *d
	out.Binders = fold.Binders(f, d.Binders, outer, FoldTraitDatumBound)
	return &out
}

func FoldTraitDatumBound(f fold.Folder, b TraitDatumBound, outer ir.DebruijnIndex) TraitDatumBound {
	return TraitDatumBound{WhereClauses: fold.QuantifiedWhereClauses(f, b.WhereClauses, outer)}
}

// WellKnownTrait lists the traits the solver has hard-coded impls for.
type WellKnownTrait int

const (
	NotWellKnown WellKnownTrait = iota
	SizedTrait
	CopyTrait
	CloneTrait
)

func (w WellKnownTrait) String() string {
	switch w {
	case SizedTrait:
		return config.SizedTraitName
	case CopyTrait:
		return config.CopyTraitName
	case CloneTrait:
		return config.CloneTraitName
	default:
		return ""
	}
}

// ParseWellKnownTrait maps a tag to its trait. Unknown tags are not an
// error; they just mean the trait is not special-cased.
func ParseWellKnownTrait(name string) (WellKnownTrait, bool) {
	switch strings.ToLower(name) {
	case config.SizedTraitName:
		return SizedTrait, true
	case config.CopyTraitName:
		return CopyTrait, true
	case config.CloneTraitName:
		return CloneTrait, true
	default:
		return NotWellKnown, false
	}
}
