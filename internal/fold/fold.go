// Package fold is the shared traversal engine over terms: every shift,
// substitution and scope check is expressed as a Folder applied by the
// walk functions in this package.
package fold

import "github.com/funvibe/traitir/internal/ir"

// Folder rewrites free bound variables. The walk functions call it only
// for variables that are free relative to the value being folded; bv is
// given relative to that value (shifted out past outer binders), and the
// result is placed back under outer binders by the Folder.
type Folder interface {
	Interner() ir.Interner
	FoldFreeVarTy(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Ty
	FoldFreeVarLifetime(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Lifetime
}

// Func folds a value of type T. Each entity kind provides one; the
// generic helpers below are written once in terms of it.
type Func[T any] func(f Folder, v T, outer ir.DebruijnIndex) T

// Ty folds a type term.
func Ty(f Folder, t ir.Ty, outer ir.DebruijnIndex) ir.Ty {
	in := f.Interner()
	switch t := t.(type) {
	case *ir.BoundVarTy:
		if bv, ok := t.Var.ShiftedOutTo(outer); ok {
			return f.FoldFreeVarTy(bv, outer)
		}
		return t
	case *ir.ApplyTy:
		return ir.NewApplyTy(in, t.Name, Substitution(f, t.Substitution, outer))
	case *ir.ProjectionTy:
		return ir.NewProjectionTy(in, AliasTy(f, t.Alias, outer))
	case *ir.PlaceholderTy:
		return t
	case nil:
		return nil
	default:
		panic("fold: unknown type variant")
	}
}

// Lifetime folds a lifetime term.
func Lifetime(f Folder, l ir.Lifetime, outer ir.DebruijnIndex) ir.Lifetime {
	switch l := l.(type) {
	case *ir.BoundVarLifetime:
		if bv, ok := l.Var.ShiftedOutTo(outer); ok {
			return f.FoldFreeVarLifetime(bv, outer)
		}
		return l
	case *ir.PlaceholderLifetime, *ir.StaticLifetime:
		return l
	case nil:
		return nil
	default:
		panic("fold: unknown lifetime variant")
	}
}

// Parameter folds either kind of parameter.
func Parameter(f Folder, p ir.Parameter, outer ir.DebruijnIndex) ir.Parameter {
	switch p := p.(type) {
	case ir.Ty:
		return Ty(f, p, outer)
	case ir.Lifetime:
		return Lifetime(f, p, outer)
	case nil:
		return nil
	default:
		panic("fold: unknown parameter variant")
	}
}

// Substitution folds every argument.
func Substitution(f Folder, s ir.Substitution, outer ir.DebruijnIndex) ir.Substitution {
	params := s.Params()
	for i, p := range params {
		params[i] = Parameter(f, p, outer)
	}
	return ir.NewSubstitution(f.Interner(), params...)
}

func TraitRef(f Folder, t ir.TraitRef, outer ir.DebruijnIndex) ir.TraitRef {
	return ir.TraitRef{TraitID: t.TraitID, Substitution: Substitution(f, t.Substitution, outer)}
}

func AliasTy(f Folder, a ir.AliasTy, outer ir.DebruijnIndex) ir.AliasTy {
	return ir.AliasTy{AssociatedTyID: a.AssociatedTyID, Substitution: Substitution(f, a.Substitution, outer)}
}

func AliasEq(f Folder, a ir.AliasEq, outer ir.DebruijnIndex) ir.AliasEq {
	return ir.AliasEq{Alias: AliasTy(f, a.Alias, outer), Ty: Ty(f, a.Ty, outer)}
}

// WhereClause folds a clause.
func WhereClause(f Folder, wc ir.WhereClause, outer ir.DebruijnIndex) ir.WhereClause {
	switch wc := wc.(type) {
	case *ir.Implemented:
		return &ir.Implemented{TraitRef: TraitRef(f, wc.TraitRef, outer)}
	case *ir.AliasEqClause:
		return &ir.AliasEqClause{AliasEq: AliasEq(f, wc.AliasEq, outer)}
	default:
		panic("fold: unknown where clause variant")
	}
}

// Binders folds b's value one scope deeper.
func Binders[T any](f Folder, b ir.Binders[T], outer ir.DebruijnIndex, inner Func[T]) ir.Binders[T] {
	return ir.Binders[T]{Kinds: b.Kinds, Value: inner(f, b.Value, outer.ShiftedIn())}
}

// QuantifiedWhereClause folds a clause under its own binder.
func QuantifiedWhereClause(f Folder, q ir.QuantifiedWhereClause, outer ir.DebruijnIndex) ir.QuantifiedWhereClause {
	return Binders(f, q, outer, WhereClause)
}

// Slice folds every element with fn.
func Slice[T any](f Folder, vs []T, outer ir.DebruijnIndex, fn Func[T]) []T {
	if vs == nil {
		return nil
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		out[i] = fn(f, v, outer)
	}
	return out
}

// QuantifiedWhereClauses folds a list of quantified clauses.
func QuantifiedWhereClauses(f Folder, qs []ir.QuantifiedWhereClause, outer ir.DebruijnIndex) []ir.QuantifiedWhereClause {
	return Slice(f, qs, outer, QuantifiedWhereClause)
}

// Tys folds a list of types.
func Tys(f Folder, ts []ir.Ty, outer ir.DebruijnIndex) []ir.Ty {
	return Slice(f, ts, outer, Ty)
}

// Parameters folds a list of parameters.
func Parameters(f Folder, ps []ir.Parameter, outer ir.DebruijnIndex) []ir.Parameter {
	return Slice(f, ps, outer, Parameter)
}
