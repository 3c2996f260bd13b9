package fold

import (
	"fmt"

	"github.com/funvibe/traitir/internal/ir"
)

// shifter moves free variables outward by amount binders.
type shifter struct {
	in     ir.Interner
	amount uint32
}

func (s *shifter) Interner() ir.Interner { return s.in }

func (s *shifter) shift(bv ir.BoundVar, outer ir.DebruijnIndex) ir.BoundVar {
	return bv.ShiftedInFrom(ir.DebruijnIndex{Depth: s.amount}).ShiftedInFrom(outer)
}

func (s *shifter) FoldFreeVarTy(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Ty {
	return ir.NewBoundTy(s.in, s.shift(bv, outer))
}

func (s *shifter) FoldFreeVarLifetime(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Lifetime {
	return ir.NewBoundLifetime(s.in, s.shift(bv, outer))
}

// Shift re-indexes v for use under n additional binders: every free
// variable's depth grows by n, bound ones are untouched.
func Shift[T any](in ir.Interner, fn Func[T], v T, n uint32) T {
	if n == 0 {
		return v
	}
	return fn(&shifter{in: in, amount: n}, v, ir.Innermost)
}

// ShiftIn is Shift by one binder.
func ShiftIn[T any](in ir.Interner, fn Func[T], v T) T {
	return Shift(in, fn, v, 1)
}

// ShiftTy shifts a type term.
func ShiftTy(in ir.Interner, t ir.Ty, n uint32) ir.Ty {
	return Shift(in, Ty, t, n)
}

// ShiftError is returned by ShiftOut when a free variable refers to one
// of the binders being removed.
type ShiftError struct {
	Var    ir.BoundVar
	Amount uint32
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("cannot shift %s out by %d: it refers to a removed binder", e.Var, e.Amount)
}

type downShifter struct {
	in     ir.Interner
	amount uint32
	err    error
}

func (s *downShifter) Interner() ir.Interner { return s.in }

func (s *downShifter) shift(bv ir.BoundVar, outer ir.DebruijnIndex) ir.BoundVar {
	if bv.Debruijn.Depth < s.amount {
		if s.err == nil {
			s.err = &ShiftError{Var: bv, Amount: s.amount}
		}
		return bv.ShiftedInFrom(outer)
	}
	return ir.BoundVar{Debruijn: bv.Debruijn.ShiftedOutBy(s.amount), Index: bv.Index}.ShiftedInFrom(outer)
}

func (s *downShifter) FoldFreeVarTy(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Ty {
	return ir.NewBoundTy(s.in, s.shift(bv, outer))
}

func (s *downShifter) FoldFreeVarLifetime(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Lifetime {
	return ir.NewBoundLifetime(s.in, s.shift(bv, outer))
}

// ShiftOut is the inverse of Shift. It fails when v mentions any of the
// n innermost free binders.
func ShiftOut[T any](in ir.Interner, fn Func[T], v T, n uint32) (T, error) {
	if n == 0 {
		return v, nil
	}
	s := &downShifter{in: in, amount: n}
	out := fn(s, v, ir.Innermost)
	if s.err != nil {
		var zero T
		return zero, s.err
	}
	return out, nil
}
