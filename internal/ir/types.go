package ir

import "fmt"

// Parameter is a generic argument: either a Ty or a Lifetime.
type Parameter interface {
	// Kind returns the variable kind this parameter satisfies.
	Kind() VariableKind
	String() string
	isParameter()
}

// Ty is the interface for all type terms.
type Ty interface {
	Parameter
	isTy()
}

// Lifetime is the interface for all lifetime terms.
type Lifetime interface {
	Parameter
	isLifetime()
}

// BoundVarTy is a type referring to a generic parameter positionally.
type BoundVarTy struct {
	Var BoundVar
}

// ApplyTy is a type constructor applied to its arguments (e.g. Vec<T>).
type ApplyTy struct {
	Name         TypeName
	Substitution Substitution
}

// ProjectionTy is an associated type projection used as a type,
// e.g. <T as Iterator>::Item.
type ProjectionTy struct {
	Alias AliasTy
}

// PlaceholderIndex names a universally quantified variable that has been
// instantiated in universe UI.
type PlaceholderIndex struct {
	UI  uint32
	Idx int
}

func (p PlaceholderIndex) String() string { return fmt.Sprintf("!%d_%d", p.UI, p.Idx) }

// PlaceholderTy is a skolemized type.
type PlaceholderTy struct {
	Index PlaceholderIndex
}

func (*BoundVarTy) Kind() VariableKind    { return KindTy }
func (*ApplyTy) Kind() VariableKind       { return KindTy }
func (*ProjectionTy) Kind() VariableKind  { return KindTy }
func (*PlaceholderTy) Kind() VariableKind { return KindTy }

func (*BoundVarTy) isParameter()    {}
func (*ApplyTy) isParameter()       {}
func (*ProjectionTy) isParameter()  {}
func (*PlaceholderTy) isParameter() {}

func (*BoundVarTy) isTy()    {}
func (*ApplyTy) isTy()       {}
func (*ProjectionTy) isTy()  {}
func (*PlaceholderTy) isTy() {}

func (t *BoundVarTy) String() string    { return Format(t, nil) }
func (t *ApplyTy) String() string       { return Format(t, nil) }
func (t *ProjectionTy) String() string  { return Format(t, nil) }
func (t *PlaceholderTy) String() string { return Format(t, nil) }

// BoundVarLifetime is a lifetime referring to a generic parameter positionally.
type BoundVarLifetime struct {
	Var BoundVar
}

// PlaceholderLifetime is a skolemized lifetime.
type PlaceholderLifetime struct {
	Index PlaceholderIndex
}

// StaticLifetime is 'static.
type StaticLifetime struct{}

func (*BoundVarLifetime) Kind() VariableKind    { return KindLifetime }
func (*PlaceholderLifetime) Kind() VariableKind { return KindLifetime }
func (*StaticLifetime) Kind() VariableKind      { return KindLifetime }

func (*BoundVarLifetime) isParameter()    {}
func (*PlaceholderLifetime) isParameter() {}
func (*StaticLifetime) isParameter()      {}

func (*BoundVarLifetime) isLifetime()    {}
func (*PlaceholderLifetime) isLifetime() {}
func (*StaticLifetime) isLifetime()      {}

func (l *BoundVarLifetime) String() string    { return Format(l, nil) }
func (l *PlaceholderLifetime) String() string { return Format(l, nil) }
func (l *StaticLifetime) String() string      { return Format(l, nil) }

// TypeName identifies a type constructor.
type TypeName interface {
	String() string
	isTypeName()
}

// StructName is a user declared nominal type.
type StructName struct {
	ID StructID
}

// ScalarName is a builtin scalar such as u32 or bool.
type ScalarName struct {
	Name string
}

// TupleName is the tuple constructor of a given arity.
type TupleName struct {
	Arity int
}

// AssocTypeName is the placeholder name of an associated type when used
// as a nominal constructor.
type AssocTypeName struct {
	ID AssocTypeID
}

func (StructName) isTypeName()    {}
func (ScalarName) isTypeName()    {}
func (TupleName) isTypeName()     {}
func (AssocTypeName) isTypeName() {}

func (n StructName) String() string    { return n.ID.String() }
func (n ScalarName) String() string    { return n.Name }
func (n TupleName) String() string     { return fmt.Sprintf("tuple/%d", n.Arity) }
func (n AssocTypeName) String() string { return n.ID.String() }

// AsTy returns p as a type, or false for lifetimes.
func AsTy(p Parameter) (Ty, bool) {
	t, ok := p.(Ty)
	return t, ok
}

// AsLifetime returns p as a lifetime, or false for types.
func AsLifetime(p Parameter) (Lifetime, bool) {
	l, ok := p.(Lifetime)
	return l, ok
}

// BoundVarOf returns the bound variable p refers to, if p is a bare
// bound variable of either kind.
func BoundVarOf(p Parameter) (BoundVar, bool) {
	switch v := p.(type) {
	case *BoundVarTy:
		return v.Var, true
	case *BoundVarLifetime:
		return v.Var, true
	default:
		return BoundVar{}, false
	}
}
