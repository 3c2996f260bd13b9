package ir

import (
	"sync"
	"testing"
)

func TestBoundParameterRoundTrip(t *testing.T) {
	in := NewHeapInterner()
	shape := Kinds(KindTy, KindLifetime, KindTy, KindLifetime)
	for i, kind := range shape {
		p := NewBoundParameter(in, kind, NewBoundVar(Innermost, i))
		bv, ok := BoundVarOf(p)
		if !ok {
			t.Fatalf("position %d: %s is not a bound variable", i, p)
		}
		if bv.Debruijn != Innermost || bv.Index != i {
			t.Errorf("position %d: read back %s", i, bv)
		}
		if p.Kind() != kind {
			t.Errorf("position %d: kind = %s, want %s", i, p.Kind(), kind)
		}
	}
}

func TestBoundVarShifting(t *testing.T) {
	bv := NewBoundVar(DebruijnIndex{Depth: 1}, 2)
	if got := bv.ShiftedIn(); got.Debruijn.Depth != 2 || got.Index != 2 {
		t.Errorf("ShiftedIn = %s", got)
	}
	if _, ok := bv.ShiftedOutTo(DebruijnIndex{Depth: 2}); ok {
		t.Error("variable bound inside outer reported as free")
	}
	got, ok := bv.ShiftedOutTo(DebruijnIndex{Depth: 1})
	if !ok || got.Debruijn != Innermost {
		t.Errorf("ShiftedOutTo = %s, %v", got, ok)
	}
	if idx, ok := got.IndexIfInnermost(); !ok || idx != 2 {
		t.Errorf("IndexIfInnermost = %d, %v", idx, ok)
	}
}

func TestDebruijnShiftedOutPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic shifting the innermost index out")
		}
	}()
	Innermost.ShiftedOut()
}

func TestNegativeIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative index")
		}
	}()
	NewBoundVar(Innermost, -1)
}

func TestFormat(t *testing.T) {
	in := NewHeapInterner()
	u32 := NewScalarTy(in, "u32")
	pair := NewApplyTy(in, TupleName{Arity: 2}, NewSubstitution(in, u32, NewBoundTy(in, NewBoundVar(Innermost, 0))))
	single := NewApplyTy(in, TupleName{Arity: 1}, NewSubstitution(in, u32))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"bound type", NewBoundTy(in, NewBoundVar(DebruijnIndex{Depth: 1}, 3)).String(), "^1.3"},
		{"bound lifetime", NewBoundLifetime(in, NewBoundVar(Innermost, 0)).String(), "'^0.0"},
		{"static", Static(in).String(), "'static"},
		{"placeholder", NewPlaceholderTy(in, PlaceholderIndex{UI: 1, Idx: 0}).String(), "!1_0"},
		{"placeholder lifetime", NewPlaceholderLifetime(in, PlaceholderIndex{UI: 2, Idx: 1}).String(), "'!2_1"},
		{"tuple", pair.String(), "(u32, ^0.0)"},
		{"1-tuple", single.String(), "(u32,)"},
		{"struct", NewApplyTy(in, StructID(4).TypeName(), NewSubstitution(in, u32)).String(), "struct#4<u32>"},
		{"implemented", (&Implemented{TraitRef: TraitRef{TraitID: 2, Substitution: NewSubstitution(in, u32, pair)}}).String(),
			"Implemented(u32: trait#2<(u32, ^0.0)>)"},
		{"alias eq", (&AliasEqClause{AliasEq: AliasEq{Alias: AliasTy{AssociatedTyID: 1, Substitution: NewSubstitution(in, u32)}, Ty: single}}).String(),
			"AliasEq((assoc#1)<u32> = (u32,))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

type testNames map[uint32]string

func (n testNames) TraitName(id TraitID) string         { return n[uint32(id)] }
func (n testNames) StructName(id StructID) string       { return n[100+uint32(id)] }
func (n testNames) AssocTypeName(id AssocTypeID) string { return n[200+uint32(id)] }

func TestFormatWithNames(t *testing.T) {
	in := NewHeapInterner()
	names := testNames{0: "Iterator", 100: "Vec", 200: "Iterator::Item"}
	self := NewApplyTy(in, StructID(0).TypeName(), NewSubstitution(in, NewBoundTy(in, NewBoundVar(Innermost, 0))))
	q := NewBinders(Kinds(KindTy), WhereClause(&Implemented{TraitRef: TraitRef{TraitID: 0, Substitution: NewSubstitution(in, self)}}))
	if got, want := FormatQuantified(q, names), "for<type> Implemented(Vec<^0.0>: Iterator)"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	alias := NewProjectionTy(in, AliasTy{AssociatedTyID: 0, Substitution: NewSubstitution(in, self)})
	if got, want := Format(alias, names), "(Iterator::Item)<Vec<^0.0>>"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	// unnamed identifiers fall back to the id form
	if got, want := Format(NewApplyTy(in, StructID(9).TypeName(), EmptySubstitution), names), "struct#9"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFormatParams(t *testing.T) {
	in := NewHeapInterner()
	if got := FormatParams(nil, nil); got != "" {
		t.Errorf("empty list = %q, want empty", got)
	}
	params := []Parameter{NewBoundTy(in, NewBoundVar(Innermost, 0)), Static(in)}
	if got, want := FormatParams(params, nil), "<^0.0, 'static>"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestHashConsSharesTerms(t *testing.T) {
	in := NewHashConsInterner()
	build := func() Ty {
		return NewApplyTy(in, StructID(1).TypeName(), NewSubstitution(in, NewScalarTy(in, "bool"), Static(in)))
	}
	a, b := build(), build()
	if a != b {
		t.Error("hash-consed terms are not the same instance")
	}
	if !EqualSubstitution(a.(*ApplyTy).Substitution, b.(*ApplyTy).Substitution) {
		t.Error("substitutions differ")
	}
	// a scalar whose name looks like a struct id must stay distinct
	fake := NewScalarTy(in, "struct#1")
	nominal := NewApplyTy(in, StructID(1).TypeName(), EmptySubstitution)
	if fake == nominal || Equal(fake, nominal) {
		t.Error("scalar and struct collapsed into one term")
	}
}

func TestHashConsConcurrent(t *testing.T) {
	in := NewHashConsInterner()
	var wg sync.WaitGroup
	results := make([]Ty, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = NewBoundTy(in, NewBoundVar(DebruijnIndex{Depth: 2}, 5))
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r != results[0] {
			t.Errorf("result %d is a different instance", i)
		}
	}
	if in.Len() != 1 {
		t.Errorf("Len = %d, want 1", in.Len())
	}
}

func TestEqualAcrossInterners(t *testing.T) {
	h, c := NewHeapInterner(), NewHashConsInterner()
	a := NewApplyTy(h, ScalarName{Name: "i32"}, EmptySubstitution)
	b := NewApplyTy(c, ScalarName{Name: "i32"}, NewSubstitution(c))
	if !Equal(a, b) {
		t.Errorf("%s and %s should be equal", a, b)
	}
	if Equal(a, NewBoundTy(h, NewBoundVar(Innermost, 0))) {
		t.Error("different terms reported equal")
	}
}

func TestSubstitution(t *testing.T) {
	in := NewHeapInterner()
	id := NewSubstitution(in, NewBoundTy(in, NewBoundVar(Innermost, 0)), NewBoundLifetime(in, NewBoundVar(Innermost, 1)))
	if !id.IsIdentity() {
		t.Errorf("%s should be an identity substitution", id)
	}
	shifted := NewSubstitution(in, NewBoundTy(in, NewBoundVar(DebruijnIndex{Depth: 1}, 0)))
	if shifted.IsIdentity() {
		t.Errorf("%s is not an identity substitution", shifted)
	}
	cat := id.Concat(in, shifted)
	if cat.Len() != 3 || cat.String() != "<^0.0, '^0.1, ^1.0>" {
		t.Errorf("Concat = %s", cat)
	}
	if tail := cat.Tail(in, 2); tail.Len() != 1 || !Equal(tail.At(0), shifted.At(0)) {
		t.Errorf("Tail = %s", tail)
	}
	params := cat.Params()
	params[0] = Static(in)
	if Equal(cat.At(0), Static(in)) {
		t.Error("Params exposed internal storage")
	}
}

func TestBindersCopyKinds(t *testing.T) {
	kinds := []VariableKind{KindTy}
	b := NewBinders(kinds, 0)
	kinds[0] = KindLifetime
	if b.Kinds[0] != KindTy {
		t.Error("binder shape changed with the caller's slice")
	}
	m := MapBinders(b, func(v int) string { return "x" })
	if m.Len() != 1 || m.Value != "x" {
		t.Errorf("MapBinders = %+v", m)
	}
}
