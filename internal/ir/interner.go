package ir

import "sync"

// Interner is the term representation backend. All term construction in
// the lowering code goes through an Interner, which keeps that code free
// of any particular allocation strategy.
//
// An Interner must be safe for concurrent use and must never mutate a
// term after returning it.
type Interner interface {
	Name() string
	InternTy(Ty) Ty
	InternLifetime(Lifetime) Lifetime
	InternSubstitution([]Parameter) Substitution
}

// HeapInterner allocates every term independently.
type HeapInterner struct{}

func NewHeapInterner() *HeapInterner { return &HeapInterner{} }

func (*HeapInterner) Name() string { return "heap" }

func (*HeapInterner) InternTy(t Ty) Ty { return t }

func (*HeapInterner) InternLifetime(l Lifetime) Lifetime { return l }

func (*HeapInterner) InternSubstitution(params []Parameter) Substitution {
	out := make([]Parameter, len(params))
	copy(out, params)
	return Substitution{params: out}
}

// HashConsInterner returns one canonical instance for structurally equal
// terms, so equal terms share storage and compare equal by pointer.
type HashConsInterner struct {
	mu     sync.RWMutex
	terms  map[string]Parameter
	substs map[string][]Parameter
}

func NewHashConsInterner() *HashConsInterner {
	return &HashConsInterner{
		terms:  make(map[string]Parameter),
		substs: make(map[string][]Parameter),
	}
}

func (*HashConsInterner) Name() string { return "hashcons" }

func (h *HashConsInterner) InternTy(t Ty) Ty {
	return h.intern(t).(Ty)
}

func (h *HashConsInterner) InternLifetime(l Lifetime) Lifetime {
	return h.intern(l).(Lifetime)
}

func (h *HashConsInterner) InternSubstitution(params []Parameter) Substitution {
	key := substKey(params)
	h.mu.RLock()
	cached, ok := h.substs[key]
	h.mu.RUnlock()
	if ok {
		return Substitution{params: cached}
	}

	out := make([]Parameter, len(params))
	for i, p := range params {
		out[i] = h.intern(p)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if cached, ok := h.substs[key]; ok {
		return Substitution{params: cached}
	}
	h.substs[key] = out
	return Substitution{params: out}
}

// Len reports the number of distinct terms interned so far.
func (h *HashConsInterner) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.terms)
}

func (h *HashConsInterner) intern(p Parameter) Parameter {
	key := termKey(p)
	h.mu.RLock()
	cached, ok := h.terms[key]
	h.mu.RUnlock()
	if ok {
		return cached
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if cached, ok := h.terms[key]; ok {
		return cached
	}
	h.terms[key] = p
	return p
}

// NewBoundTy interns a bound variable type.
func NewBoundTy(in Interner, bv BoundVar) Ty {
	return in.InternTy(&BoundVarTy{Var: bv})
}

// NewBoundLifetime interns a bound variable lifetime.
func NewBoundLifetime(in Interner, bv BoundVar) Lifetime {
	return in.InternLifetime(&BoundVarLifetime{Var: bv})
}

// NewBoundParameter produces the bound variable term matching kind:
// a type for KindTy and a lifetime for KindLifetime.
func NewBoundParameter(in Interner, kind VariableKind, bv BoundVar) Parameter {
	switch kind {
	case KindTy:
		return NewBoundTy(in, bv)
	case KindLifetime:
		return NewBoundLifetime(in, bv)
	default:
		panic("ir: unknown variable kind " + kind.String())
	}
}

// NewApplyTy interns name applied to subst.
func NewApplyTy(in Interner, name TypeName, subst Substitution) Ty {
	return in.InternTy(&ApplyTy{Name: name, Substitution: subst})
}

// NewProjectionTy interns a projection type.
func NewProjectionTy(in Interner, alias AliasTy) Ty {
	return in.InternTy(&ProjectionTy{Alias: alias})
}

// NewPlaceholderTy interns a placeholder type.
func NewPlaceholderTy(in Interner, idx PlaceholderIndex) Ty {
	return in.InternTy(&PlaceholderTy{Index: idx})
}

// NewPlaceholderLifetime interns a placeholder lifetime.
func NewPlaceholderLifetime(in Interner, idx PlaceholderIndex) Lifetime {
	return in.InternLifetime(&PlaceholderLifetime{Index: idx})
}

// Static returns 'static.
func Static(in Interner) Lifetime {
	return in.InternLifetime(&StaticLifetime{})
}

// NewScalarTy is a nullary builtin scalar.
func NewScalarTy(in Interner, name string) Ty {
	return NewApplyTy(in, ScalarName{Name: name}, EmptySubstitution)
}
