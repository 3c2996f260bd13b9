package ir

import "fmt"

// Opaque identifiers handed out by the producer of the declarations.
type (
	TraitID     uint32
	StructID    uint32
	ImplID      uint32
	AssocTypeID uint32
)

func (id TraitID) String() string     { return fmt.Sprintf("trait#%d", uint32(id)) }
func (id StructID) String() string    { return fmt.Sprintf("struct#%d", uint32(id)) }
func (id ImplID) String() string      { return fmt.Sprintf("impl#%d", uint32(id)) }
func (id AssocTypeID) String() string { return fmt.Sprintf("assoc#%d", uint32(id)) }

// TypeName converts a struct identifier into the nameable type
// constructor it denotes.
func (id StructID) TypeName() TypeName { return StructName{ID: id} }

// TypeName converts an associated type identifier into a type constructor name.
func (id AssocTypeID) TypeName() TypeName { return AssocTypeName{ID: id} }

// Names resolves identifiers to human readable names when printing terms.
// Any method may return "" to fall back to the identifier form.
type Names interface {
	TraitName(TraitID) string
	StructName(StructID) string
	AssocTypeName(AssocTypeID) string
}
