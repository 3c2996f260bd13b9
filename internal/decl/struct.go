package decl

import (
	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// StructDatum is a nominal type declaration.
type StructDatum struct {
	Binders ir.Binders[StructDatumBound]
	ID      ir.StructID
	Flags   StructFlags
}

// StructDatumBound is the part of a struct where its parameters are in scope.
type StructDatumBound struct {
	Fields       []ir.Ty
	WhereClauses []ir.QuantifiedWhereClause
}

type StructFlags struct {
	Upstream    bool
	Fundamental bool
}

// Name is the struct's type constructor name.
func (d *StructDatum) Name() ir.TypeName {
	return d.ID.TypeName()
}

// SelfTy is the struct applied to its own parameters, under its binder.
func (d *StructDatum) SelfTy(in ir.Interner) ir.Ty {
	return ir.NewApplyTy(in, d.Name(), IdentitySubstitution(in, d.Binders.Kinds))
}

func (d *StructDatum) Fold(f fold.Folder, outer ir.DebruijnIndex) *StructDatum {
	out := *d
	out.Binders = fold.Binders(f, d.Binders, outer, FoldStructDatumBound)
	return &out
}

func FoldStructDatumBound(f fold.Folder, b StructDatumBound, outer ir.DebruijnIndex) StructDatumBound {
	return StructDatumBound{
		Fields:       fold.Tys(f, b.Fields, outer),
		WhereClauses: fold.QuantifiedWhereClauses(f, b.WhereClauses, outer),
	}
}
