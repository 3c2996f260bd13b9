package decl

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

var in = ir.NewHeapInterner()

func bty(depth uint32, idx int) ir.Ty {
	return ir.NewBoundTy(in, ir.NewBoundVar(ir.DebruijnIndex{Depth: depth}, idx))
}

func scalar(name string) ir.Ty { return ir.NewScalarTy(in, name) }

func render(clauses []ir.WhereClause) []string {
	out := make([]string, len(clauses))
	for i, c := range clauses {
		out[i] = c.String()
	}
	return out
}

func renderQuantified(clauses []ir.QuantifiedWhereClause) []string {
	out := make([]string, len(clauses))
	for i, c := range clauses {
		out[i] = ir.FormatQuantified(c, nil)
	}
	return out
}

func TestTraitBoundLower(t *testing.T) {
	b := &TraitBound{TraitID: 1, ArgsNoSelf: []ir.Parameter{scalar("A")}}
	got := render(b.Lower(in, scalar("X")))
	want := []string{"Implemented(X: trait#1<A>)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lower mismatch (-want +got):\n%s", diff)
	}
}

func TestTraitBoundSelfIsArgumentZero(t *testing.T) {
	b := &TraitBound{TraitID: 1, ArgsNoSelf: []ir.Parameter{scalar("A"), scalar("B")}}
	tr := b.AsTraitRef(in, scalar("X"))
	if tr.Substitution.Len() != 3 {
		t.Fatalf("substitution length = %d, want 3", tr.Substitution.Len())
	}
	if !ir.Equal(tr.SelfTy(), scalar("X")) {
		t.Errorf("self = %s, want X", tr.SelfTy())
	}
	if !ir.Equal(tr.Substitution.At(2), scalar("B")) {
		t.Errorf("last argument = %s, want B", tr.Substitution.At(2))
	}
}

func TestInlineBoundString(t *testing.T) {
	bare := &TraitBound{TraitID: 1}
	withArgs := &TraitBound{TraitID: 1, ArgsNoSelf: []ir.Parameter{scalar("A")}}
	alias := &AliasEqBound{TraitBound: *withArgs, AssociatedTyID: 2, Value: scalar("X")}
	tests := []struct {
		b    InlineBound
		want string
	}{
		{bare, "Self: trait#1"},
		{withArgs, "Self: trait#1<A>"},
		{alias, "Self: trait#1<A>, (assoc#2) = X"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAliasEqBoundLower(t *testing.T) {
	b := &AliasEqBound{
		TraitBound:     TraitBound{TraitID: 1},
		AssociatedTyID: 7,
		Parameters:     []ir.Parameter{scalar("B")},
		Value:          scalar("V"),
	}
	got := render(b.Lower(in, scalar("X")))
	want := []string{
		"Implemented(X: trait#1)",
		"AliasEq((assoc#7)<B, X> = V)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lower mismatch (-want +got):\n%s", diff)
	}
}

func TestIntoWhereClausesDispatch(t *testing.T) {
	bounds := []InlineBound{
		&TraitBound{TraitID: 2},
		&AliasEqBound{TraitBound: TraitBound{TraitID: 2}, AssociatedTyID: 0, Value: scalar("V")},
	}
	wantLens := []int{1, 2}
	for i, b := range bounds {
		if got := len(IntoWhereClauses(in, b, scalar("X"))); got != wantLens[i] {
			t.Errorf("bound %d produced %d clauses, want %d", i, got, wantLens[i])
		}
	}
}

func TestQuantifiedInlineBoundShiftsSelf(t *testing.T) {
	// for<type> Self: trait#1<^0.0>, with Self the outer parameter ^0.0
	qb := ir.NewBinders[InlineBound](ir.Kinds(ir.KindTy), &TraitBound{
		TraitID:    1,
		ArgsNoSelf: []ir.Parameter{bty(0, 0)},
	})
	self := bty(0, 0)
	got := IntoQuantifiedWhereClauses(in, qb, self)
	if len(got) != 1 {
		t.Fatalf("got %d clauses, want 1", len(got))
	}
	if diff := cmp.Diff(qb.Kinds, got[0].Kinds); diff != "" {
		t.Errorf("binder shape mismatch (-want +got):\n%s", diff)
	}
	impl := got[0].Value.(*ir.Implemented)
	bv, ok := ir.BoundVarOf(impl.TraitRef.SelfTy())
	if !ok {
		t.Fatalf("self type %s is not a bound variable", impl.TraitRef.SelfTy())
	}
	if bv.Debruijn.Depth != 1 || bv.Index != 0 {
		t.Errorf("self = %s, want ^1.0", bv)
	}
	if want := "for<type> Implemented(^1.0: trait#1<^0.0>)"; ir.FormatQuantified(got[0], nil) != want {
		t.Errorf("got %s, want %s", ir.FormatQuantified(got[0], nil), want)
	}
	// the self type argument itself is untouched
	if b, _ := ir.BoundVarOf(self); b.Debruijn.Depth != 0 {
		t.Error("caller's self type was modified")
	}
}

func TestQuantifiedAliasEqBound(t *testing.T) {
	// for<'a> Self: trait#0, (assoc#2)<'a> = ^1.0
	qb := ir.NewBinders[InlineBound](ir.Kinds(ir.KindLifetime), &AliasEqBound{
		TraitBound:     TraitBound{TraitID: 0},
		AssociatedTyID: 2,
		Parameters:     []ir.Parameter{ir.NewBoundLifetime(in, ir.NewBoundVar(ir.Innermost, 0))},
		Value:          bty(1, 0),
	})
	got := renderQuantified(IntoQuantifiedWhereClauses(in, qb, bty(0, 1)))
	want := []string{
		"for<lifetime> Implemented(^1.1: trait#0)",
		"for<lifetime> AliasEq((assoc#2)<'^0.0, ^1.1> = ^1.0)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPolarity(t *testing.T) {
	pos := &ImplDatum{Polarity: Positive}
	neg := &ImplDatum{Polarity: Negative}
	if !pos.IsPositive() {
		t.Error("positive impl reported negative")
	}
	if neg.IsPositive() {
		t.Error("negative impl reported positive")
	}
}

func TestImplTraitID(t *testing.T) {
	d := &ImplDatum{Binders: ir.NewBinders(ir.Kinds(ir.KindTy), ImplDatumBound{
		TraitRef: ir.TraitRef{TraitID: 9, Substitution: ir.NewSubstitution(in, bty(0, 0))},
	})}
	if d.TraitID() != 9 {
		t.Errorf("TraitID = %s, want trait#9", d.TraitID())
	}
}

func TestStructName(t *testing.T) {
	for _, id := range []ir.StructID{0, 1, 42, 1 << 31} {
		d := &StructDatum{ID: id}
		name, ok := d.Name().(ir.StructName)
		if !ok || name.ID != id {
			t.Errorf("Name() = %v, want struct name for %s", d.Name(), id)
		}
	}
}

func TestStructSelfTy(t *testing.T) {
	d := &StructDatum{ID: 3, Binders: ir.NewBinders(ir.Kinds(ir.KindTy, ir.KindLifetime), StructDatumBound{})}
	if got, want := d.SelfTy(in).String(), "struct#3<^0.0, '^0.1>"; got != want {
		t.Errorf("SelfTy = %s, want %s", got, want)
	}
}

func TestTraitFlags(t *testing.T) {
	d := &TraitDatum{Flags: TraitFlags{Auto: true, Coinductive: true}}
	if !d.IsAutoTrait() || !d.IsCoinductiveTrait() || d.IsNonEnumerableTrait() {
		t.Errorf("flag queries disagree with %+v", d.Flags)
	}
	d.Flags = TraitFlags{NonEnumerable: true, Marker: true, Upstream: true, Fundamental: true}
	if d.IsAutoTrait() || d.IsCoinductiveTrait() || !d.IsNonEnumerableTrait() {
		t.Errorf("flag queries disagree with %+v", d.Flags)
	}
	if !d.IsMarkerTrait() || !d.IsUpstream() || !d.IsFundamental() {
		t.Errorf("flag queries disagree with %+v", d.Flags)
	}
}

func TestWellKnownTrait(t *testing.T) {
	tests := []struct {
		name string
		want WellKnownTrait
		ok   bool
	}{
		{"sized", SizedTrait, true},
		{"Copy", CopyTrait, true},
		{"CLONE", CloneTrait, true},
		{"Debug", NotWellKnown, false},
		{"", NotWellKnown, false},
	}
	for _, tt := range tests {
		got, ok := ParseWellKnownTrait(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseWellKnownTrait(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
	d := &TraitDatum{}
	if _, ok := d.WellKnownTrait(); ok {
		t.Error("ordinary trait reported as well-known")
	}
	d.WellKnown = CopyTrait
	if w, ok := d.WellKnownTrait(); !ok || w.String() != "copy" {
		t.Errorf("WellKnownTrait() = %v, %v", w, ok)
	}
}

func TestAnonymize(t *testing.T) {
	got := Anonymize([]NamedKind{{"T", ir.KindTy}, {"'a", ir.KindLifetime}})
	if diff := cmp.Diff(ir.Kinds(ir.KindTy, ir.KindLifetime), got); diff != "" {
		t.Errorf("Anonymize mismatch (-want +got):\n%s", diff)
	}
}

func TestToParameterAtDepth(t *testing.T) {
	p := ToParameterAtDepth(in, ir.KindLifetime, 2, ir.DebruijnIndex{Depth: 3})
	if p.String() != "'^3.2" {
		t.Errorf("ToParameterAtDepth = %s, want '^3.2", p)
	}
	if _, ok := ir.AsLifetime(p); !ok {
		t.Errorf("%s is not a lifetime", p)
	}
	if !IdentitySubstitution(in, ir.Kinds(ir.KindTy, ir.KindLifetime, ir.KindTy)).IsIdentity() {
		t.Error("IdentitySubstitution is not an identity")
	}
}

func TestDefaultImplConditions(t *testing.T) {
	// default impl<T> Send for Box<T> with accessible [T]
	d := &DefaultImplDatum{Binders: ir.NewBinders(ir.Kinds(ir.KindTy), DefaultImplDatumBound{
		TraitRef: ir.TraitRef{TraitID: 4, Substitution: ir.NewSubstitution(in,
			ir.NewApplyTy(in, ir.StructID(0).TypeName(), ir.NewSubstitution(in, bty(0, 0))))},
		AccessibleTys: []ir.Ty{bty(0, 0)},
	})}
	got := renderQuantified(d.Conditions(in))
	want := []string{"for<> Implemented(^1.0: trait#4)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Conditions mismatch (-want +got):\n%s", diff)
	}
	if d.TraitID() != 4 {
		t.Errorf("TraitID = %s", d.TraitID())
	}
}

func TestFoldEntitiesVisitEveryTerm(t *testing.T) {
	s := &StructDatum{ID: 1, Binders: ir.NewBinders(ir.Kinds(ir.KindTy), StructDatumBound{
		Fields: []ir.Ty{bty(1, 0)},
		WhereClauses: []ir.QuantifiedWhereClause{
			Quantify(in, &ir.Implemented{TraitRef: ir.TraitRef{TraitID: 0, Substitution: ir.NewSubstitution(in, bty(1, 1))}}),
		},
	})}
	got := fold.FreeVars(func(f fold.Folder, d *StructDatum, outer ir.DebruijnIndex) *StructDatum {
		return d.Fold(f, outer)
	}, s)
	want := []ir.BoundVar{ir.NewBoundVar(ir.Innermost, 0), ir.NewBoundVar(ir.Innermost, 1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("free vars mismatch (-want +got):\n%s", diff)
	}
}
