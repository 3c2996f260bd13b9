package ir

// Binders pairs the shape of a scope with a value that refers to the
// scope's parameters through bound variables at depth 0.
type Binders[T any] struct {
	Kinds []VariableKind
	Value T
}

// NewBinders copies kinds so later changes to the caller's slice do not
// alter the binder.
func NewBinders[T any](kinds []VariableKind, value T) Binders[T] {
	for _, k := range kinds {
		if !k.Valid() {
			panic("ir: invalid variable kind in binder")
		}
	}
	return Binders[T]{Kinds: Kinds(kinds...), Value: value}
}

// Empty wraps value in a binder that introduces no parameters.
func Empty[T any](value T) Binders[T] {
	return Binders[T]{Value: value}
}

// Len is the number of parameters introduced.
func (b Binders[T]) Len() int { return len(b.Kinds) }

// MapBinders transforms the value while keeping the binder's shape.
// fn must not move the value into a different scope.
func MapBinders[T, U any](b Binders[T], fn func(T) U) Binders[U] {
	return Binders[U]{Kinds: b.Kinds, Value: fn(b.Value)}
}
