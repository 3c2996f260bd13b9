package fold

import "github.com/funvibe/traitir/internal/ir"

// visitor records free variables without changing anything.
type visitor struct {
	in    ir.Interner
	visit func(bv ir.BoundVar, kind ir.VariableKind)
}

func (v *visitor) Interner() ir.Interner { return v.in }

func (v *visitor) FoldFreeVarTy(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Ty {
	v.visit(bv, ir.KindTy)
	return ir.NewBoundTy(v.in, bv.ShiftedInFrom(outer))
}

func (v *visitor) FoldFreeVarLifetime(bv ir.BoundVar, outer ir.DebruijnIndex) ir.Lifetime {
	v.visit(bv, ir.KindLifetime)
	return ir.NewBoundLifetime(v.in, bv.ShiftedInFrom(outer))
}

var scratch = ir.NewHeapInterner()

// FreeVars lists the free variables of v in traversal order.
func FreeVars[T any](fn Func[T], v T) []ir.BoundVar {
	var out []ir.BoundVar
	fn(&visitor{in: scratch, visit: func(bv ir.BoundVar, _ ir.VariableKind) {
		out = append(out, bv)
	}}, v, ir.Innermost)
	return out
}

// HasFreeVars reports whether v refers to any binder outside itself.
func HasFreeVars[T any](fn Func[T], v T) bool {
	return len(FreeVars(fn, v)) > 0
}

// MaxFreeDepth is the largest binder depth any free variable of v refers
// to. ok is false when v is closed.
func MaxFreeDepth[T any](fn Func[T], v T) (depth uint32, ok bool) {
	for _, bv := range FreeVars(fn, v) {
		if !ok || bv.Debruijn.Depth > depth {
			depth, ok = bv.Debruijn.Depth, true
		}
	}
	return depth, ok
}

// CheckScopes verifies that every free variable of v resolves inside
// scopes, innermost first, with a matching kind.
func CheckScopes[T any](fn Func[T], v T, scopes ...[]ir.VariableKind) error {
	var err error
	fn(&visitor{in: scratch, visit: func(bv ir.BoundVar, kind ir.VariableKind) {
		if err != nil {
			return
		}
		depth := int(bv.Debruijn.Depth)
		switch {
		case depth >= len(scopes):
			err = ir.NewScopeError(bv, "only %d enclosing scopes", len(scopes))
		case bv.Index >= len(scopes[depth]):
			err = ir.NewScopeError(bv, "scope has %d parameters", len(scopes[depth]))
		case scopes[depth][bv.Index] != kind:
			err = ir.NewScopeError(bv, "used as a %s but declared as a %s", kind, scopes[depth][bv.Index])
		}
	}}, v, ir.Innermost)
	return err
}

// CheckBinders verifies b's value against its own shape nested inside
// the given enclosing scopes.
func CheckBinders[T any](fn Func[T], b ir.Binders[T], enclosing ...[]ir.VariableKind) error {
	scopes := append([][]ir.VariableKind{b.Kinds}, enclosing...)
	return CheckScopes(fn, b.Value, scopes...)
}
