package fold

import (
	"testing"

	"github.com/funvibe/traitir/internal/ir"
)

var heap = ir.NewHeapInterner()

func bty(depth uint32, idx int) ir.Ty {
	return ir.NewBoundTy(heap, ir.NewBoundVar(ir.DebruijnIndex{Depth: depth}, idx))
}

func blt(depth uint32, idx int) ir.Lifetime {
	return ir.NewBoundLifetime(heap, ir.NewBoundVar(ir.DebruijnIndex{Depth: depth}, idx))
}

func vec(args ...ir.Parameter) ir.Ty {
	return ir.NewApplyTy(heap, ir.StructID(0).TypeName(), ir.NewSubstitution(heap, args...))
}

// sample mixes free variables at several depths with a projection.
func sample() ir.Ty {
	proj := ir.NewProjectionTy(heap, ir.AliasTy{
		AssociatedTyID: 3,
		Substitution:   ir.NewSubstitution(heap, bty(0, 1), blt(2, 0)),
	})
	return vec(bty(0, 0), proj, ir.Static(heap))
}

func TestShiftTy(t *testing.T) {
	got := ShiftTy(heap, sample(), 1)
	want := "struct#0<^1.0, (assoc#3)<^1.1, '^3.0>, 'static>"
	if got.String() != want {
		t.Errorf("ShiftTy = %s, want %s", got, want)
	}
}

func TestShiftZeroIsIdentity(t *testing.T) {
	s := sample()
	if got := ShiftTy(heap, s, 0); got != s {
		t.Errorf("ShiftTy by 0 returned a new term %s", got)
	}
}

func TestShiftComposes(t *testing.T) {
	for a := uint32(0); a < 3; a++ {
		for b := uint32(0); b < 3; b++ {
			twice := ShiftTy(heap, ShiftTy(heap, sample(), a), b)
			once := ShiftTy(heap, sample(), a+b)
			if !ir.Equal(twice, once) {
				t.Errorf("shift %d then %d = %s, shift %d = %s", a, b, twice, a+b, once)
			}
		}
	}
}

func TestShiftDistributesOverSubstitution(t *testing.T) {
	params := []ir.Parameter{bty(0, 0), blt(1, 2), sample()}
	whole := Shift(heap, Substitution, ir.NewSubstitution(heap, params...), 2)
	for i, p := range params {
		part := Shift(heap, Parameter, p, 2)
		if !ir.Equal(whole.At(i), part) {
			t.Errorf("arg %d: shifted whole = %s, shifted alone = %s", i, whole.At(i), part)
		}
	}
}

func TestShiftLeavesBoundVariables(t *testing.T) {
	// for<type> Implemented(^0.0: trait#1<^1.0>)
	q := ir.NewBinders(ir.Kinds(ir.KindTy), ir.WhereClause(&ir.Implemented{TraitRef: ir.TraitRef{
		TraitID:      1,
		Substitution: ir.NewSubstitution(heap, bty(0, 0), bty(1, 0)),
	}}))
	got := ir.FormatQuantified(ShiftIn(heap, QuantifiedWhereClause, q), nil)
	want := "for<type> Implemented(^0.0: trait#1<^2.0>)"
	if got != want {
		t.Errorf("ShiftIn = %s, want %s", got, want)
	}
}

func TestShiftOut(t *testing.T) {
	up := ShiftTy(heap, sample(), 2)
	down, err := ShiftOut(heap, Ty, up, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ir.Equal(down, sample()) {
		t.Errorf("ShiftOut = %s, want %s", down, sample())
	}

	if _, err := ShiftOut(heap, Ty, sample(), 1); err == nil {
		t.Error("expected error shifting out a variable bound by the removed binder")
	} else if _, ok := err.(*ShiftError); !ok {
		t.Errorf("error type = %T, want *ShiftError", err)
	}
}

func TestSubstIdentity(t *testing.T) {
	id := ir.NewSubstitution(heap, bty(0, 0), bty(0, 1))
	got := Subst(heap, id, Ty, vec(bty(0, 1), bty(0, 0), bty(1, 0)))
	// the outer reference loses the removed binder
	want := "struct#0<^0.1, ^0.0, ^0.0>"
	if got.String() != want {
		t.Errorf("Subst = %s, want %s", got, want)
	}
}

func TestSubstUnderBinder(t *testing.T) {
	// for<type> Implemented(^0.0: trait#1<^1.0>) with ^0.0 := struct#0<^0.3>
	q := ir.NewBinders(ir.Kinds(ir.KindTy), ir.WhereClause(&ir.Implemented{TraitRef: ir.TraitRef{
		TraitID:      1,
		Substitution: ir.NewSubstitution(heap, bty(0, 0), bty(1, 0)),
	}}))
	params := ir.NewSubstitution(heap, vec(bty(0, 3)))
	got := ir.FormatQuantified(Subst(heap, params, QuantifiedWhereClause, q), nil)
	want := "for<type> Implemented(^0.0: trait#1<struct#0<^1.3>>)"
	if got != want {
		t.Errorf("Subst = %s, want %s", got, want)
	}
}

func TestInstantiateArityMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on arity mismatch")
		}
	}()
	b := ir.NewBinders(ir.Kinds(ir.KindTy, ir.KindTy), bty(0, 1))
	Instantiate(heap, b, ir.NewSubstitution(heap, vec()), Ty)
}

func TestInstantiateKindMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on kind mismatch")
		}
	}()
	b := ir.NewBinders(ir.Kinds(ir.KindTy), bty(0, 0))
	Instantiate(heap, b, ir.NewSubstitution(heap, ir.Static(heap)), Ty)
}

func TestInstantiate(t *testing.T) {
	b := ir.NewBinders(ir.Kinds(ir.KindLifetime, ir.KindTy), vec(bty(0, 1), blt(0, 0)))
	got := Instantiate(heap, b, ir.NewSubstitution(heap, ir.Static(heap), ir.NewScalarTy(heap, "u32")), Ty)
	if want := "struct#0<u32, 'static>"; got.String() != want {
		t.Errorf("Instantiate = %s, want %s", got, want)
	}
}

func TestFreeVars(t *testing.T) {
	got := FreeVars(Ty, sample())
	if len(got) != 3 {
		t.Fatalf("FreeVars = %v, want 3 entries", got)
	}
	if HasFreeVars(Ty, vec(ir.Static(heap))) {
		t.Error("closed term reported free variables")
	}
}

func TestMaxFreeDepth(t *testing.T) {
	if d, ok := MaxFreeDepth(Ty, sample()); !ok || d != 2 {
		t.Errorf("MaxFreeDepth = %d, %v, want 2, true", d, ok)
	}
	if _, ok := MaxFreeDepth(Ty, vec(ir.Static(heap))); ok {
		t.Error("closed term reported a depth")
	}
}

func TestCheckScopes(t *testing.T) {
	tests := []struct {
		name    string
		ty      ir.Ty
		scopes  [][]ir.VariableKind
		wantErr bool
	}{
		{"in range", vec(bty(0, 1)), [][]ir.VariableKind{{ir.KindTy, ir.KindTy}}, false},
		{"index too large", vec(bty(0, 2)), [][]ir.VariableKind{{ir.KindTy, ir.KindTy}}, true},
		{"depth too large", vec(bty(1, 0)), [][]ir.VariableKind{{ir.KindTy}}, true},
		{"kind mismatch", vec(blt(0, 0)), [][]ir.VariableKind{{ir.KindTy}}, true},
		{"outer scope", vec(blt(1, 0)), [][]ir.VariableKind{{ir.KindTy}, {ir.KindLifetime}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckScopes(Ty, tt.ty, tt.scopes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckScopes() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckBindersCountsOwnScope(t *testing.T) {
	b := ir.NewBinders(ir.Kinds(ir.KindTy), vec(bty(0, 0), bty(1, 0)))
	if err := CheckBinders(Ty, b, ir.Kinds(ir.KindTy)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckBinders(Ty, b); err == nil {
		t.Error("expected error for reference past the outermost scope")
	}
}
