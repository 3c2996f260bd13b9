package fold

import (
	"fmt"

	"github.com/funvibe/traitir/internal/ir"
)

// substitutor replaces the variables of the innermost free binder with
// params and removes that binder from every deeper reference.
type substitutor struct {
	in     ir.Interner
	params ir.Substitution
}

func (s *substitutor) Interner() ir.Interner { return s.in }

func (s *substitutor) lookup(bv ir.BoundVar, outer ir.DebruijnIndex, want ir.VariableKind) (ir.Parameter, bool) {
	idx, ok := bv.IndexIfInnermost()
	if !ok {
		return nil, false
	}
	if idx >= s.params.Len() {
		panic(fmt.Sprintf("ir: bound variable %s out of range for substitution of length %d", bv, s.params.Len()))
	}
	p := s.params.At(idx)
	if p.Kind() != want {
		panic(fmt.Sprintf("ir: bound variable %s expects a %s, substitution holds a %s", bv, want, p.Kind()))
	}
	return Shift(s.in, Parameter, p, outer.Depth), true
}

func (s *substitutor) FoldFreeVarTy(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Ty {
	if p, ok := s.lookup(bv, outer, ir.KindTy); ok {
		return p.(ir.Ty)
	}
	return ir.NewBoundTy(s.in, ir.BoundVar{Debruijn: bv.Debruijn.ShiftedOut(), Index: bv.Index}.ShiftedInFrom(outer))
}

func (s *substitutor) FoldFreeVarLifetime(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Lifetime {
	if p, ok := s.lookup(bv, outer, ir.KindLifetime); ok {
		return p.(ir.Lifetime)
	}
	return ir.NewBoundLifetime(s.in, ir.BoundVar{Debruijn: bv.Debruijn.ShiftedOut(), Index: bv.Index}.ShiftedInFrom(outer))
}

// Subst applies params to v, where v is a value from inside a binder:
// (^0.i) becomes params[i], and references further out lose one level.
func Subst[T any](in ir.Interner, params ir.Substitution, fn Func[T], v T) T {
	return fn(&substitutor{in: in, params: params}, v, ir.Innermost)
}

// Instantiate opens b with params. The number of params must match the
// binder's shape.
func Instantiate[T any](in ir.Interner, b ir.Binders[T], params ir.Substitution, fn Func[T]) T {
	if params.Len() != b.Len() {
		panic(fmt.Sprintf("ir: instantiating binder of %d parameters with %d arguments", b.Len(), params.Len()))
	}
	for i, k := range b.Kinds {
		if params.At(i).Kind() != k {
			panic(fmt.Sprintf("ir: argument %d is a %s, binder expects a %s", i, params.At(i).Kind(), k))
		}
	}
	return Subst(in, params, fn, b.Value)
}
