package ir

import "fmt"

// DebruijnIndex counts binder scopes outward from the point of reference.
// Depth 0 is the innermost enclosing binder.
type DebruijnIndex struct {
	Depth uint32
}

// Innermost refers to the nearest enclosing binder.
var Innermost = DebruijnIndex{Depth: 0}

func (d DebruijnIndex) String() string { return fmt.Sprintf("^%d", d.Depth) }

// Shifted returns d moved outward by n binders.
func (d DebruijnIndex) Shifted(n uint32) DebruijnIndex {
	return DebruijnIndex{Depth: d.Depth + n}
}

func (d DebruijnIndex) ShiftedIn() DebruijnIndex { return d.Shifted(1) }

// ShiftedOut removes one binder. Shifting the innermost index out is a
// representation bug.
func (d DebruijnIndex) ShiftedOut() DebruijnIndex {
	return d.ShiftedOutBy(1)
}

func (d DebruijnIndex) ShiftedOutBy(n uint32) DebruijnIndex {
	if d.Depth < n {
		panic(fmt.Sprintf("ir: cannot shift %s out by %d", d, n))
	}
	return DebruijnIndex{Depth: d.Depth - n}
}

// Within reports whether d refers to a binder introduced inside outer,
// i.e. it is bound rather than free from outer's point of view.
func (d DebruijnIndex) Within(outer DebruijnIndex) bool {
	return d.Depth < outer.Depth
}

// BoundVar references the Index-th parameter of the binder Debruijn
// scopes out.
type BoundVar struct {
	Debruijn DebruijnIndex
	Index    int
}

// NewBoundVar builds a bound variable reference.
func NewBoundVar(debruijn DebruijnIndex, index int) BoundVar {
	if index < 0 {
		panic(fmt.Sprintf("ir: negative bound variable index %d", index))
	}
	return BoundVar{Debruijn: debruijn, Index: index}
}

func (bv BoundVar) String() string { return fmt.Sprintf("^%d.%d", bv.Debruijn.Depth, bv.Index) }

// ShiftedIn moves the variable outward by one scope so it keeps denoting
// the same parameter when placed under one more binder.
func (bv BoundVar) ShiftedIn() BoundVar {
	return BoundVar{Debruijn: bv.Debruijn.ShiftedIn(), Index: bv.Index}
}

// ShiftedInFrom moves the variable outward by outer.Depth scopes.
func (bv BoundVar) ShiftedInFrom(outer DebruijnIndex) BoundVar {
	return BoundVar{Debruijn: bv.Debruijn.Shifted(outer.Depth), Index: bv.Index}
}

// ShiftedOutTo re-expresses bv relative to the binder outer. It returns
// false when bv is bound by a binder inside outer.
func (bv BoundVar) ShiftedOutTo(outer DebruijnIndex) (BoundVar, bool) {
	if bv.Debruijn.Within(outer) {
		return BoundVar{}, false
	}
	return BoundVar{Debruijn: bv.Debruijn.ShiftedOutBy(outer.Depth), Index: bv.Index}, true
}

// IndexIfInnermost returns the index when bv points at the innermost binder.
func (bv BoundVar) IndexIfInnermost() (int, bool) {
	if bv.Debruijn.Depth == 0 {
		return bv.Index, true
	}
	return 0, false
}
