// Package program is the declaration database: it loads a program
// fixture, resolves named generic parameters into positional form and
// lowers every declaration into the clause sets handed to a solver.
package program

import (
	"sort"

	"github.com/funvibe/traitir/internal/decl"
	"github.com/funvibe/traitir/internal/ir"
)

// Program holds every declaration of one fixture, indexed by id. It is
// immutable once loaded and safe for concurrent reads.
type Program struct {
	Name     string
	Format   string
	Interner ir.Interner

	structs      []*decl.StructDatum
	traits       []*decl.TraitDatum
	impls        []*decl.ImplDatum
	defaultImpls []*decl.DefaultImplDatum
	assocTys     []*decl.AssociatedTyDatum
	assocValues  []*decl.AssociatedTyValue

	structNames []string
	traitNames  []string
	assocNames  []string // qualified, Trait::Name

	structIndex map[string]ir.StructID
	traitIndex  map[string]ir.TraitID
	assocIndex  map[string]ir.AssocTypeID

	structKinds [][]ir.VariableKind
	traitKinds  [][]ir.VariableKind
	assocKinds  [][]ir.VariableKind

	// traitAssocs lists each trait's associated types in declaration order.
	traitAssocs [][]ir.AssocTypeID
}

func newProgram(name, format string, in ir.Interner) *Program {
	return &Program{
		Name:        name,
		Format:      format,
		Interner:    in,
		structIndex: make(map[string]ir.StructID),
		traitIndex:  make(map[string]ir.TraitID),
		assocIndex:  make(map[string]ir.AssocTypeID),
	}
}

func (p *Program) Struct(id ir.StructID) (*decl.StructDatum, bool) {
	return lookup(p.structs, uint32(id))
}

func (p *Program) Trait(id ir.TraitID) (*decl.TraitDatum, bool) {
	return lookup(p.traits, uint32(id))
}

func (p *Program) Impl(id ir.ImplID) (*decl.ImplDatum, bool) {
	return lookup(p.impls, uint32(id))
}

func (p *Program) AssociatedTy(id ir.AssocTypeID) (*decl.AssociatedTyDatum, bool) {
	return lookup(p.assocTys, uint32(id))
}

func (p *Program) AssociatedTyValue(id decl.AssociatedTyValueID) (*decl.AssociatedTyValue, bool) {
	return lookup(p.assocValues, uint32(id))
}

// DefaultImpls returns every default impl in declaration order.
func (p *Program) DefaultImpls() []*decl.DefaultImplDatum {
	out := make([]*decl.DefaultImplDatum, len(p.defaultImpls))
	copy(out, p.defaultImpls)
	return out
}

func (p *Program) TraitByName(name string) (ir.TraitID, bool) {
	id, ok := p.traitIndex[name]
	return id, ok
}

func (p *Program) StructByName(name string) (ir.StructID, bool) {
	id, ok := p.structIndex[name]
	return id, ok
}

// AssociatedTyByName looks up Trait::Name.
func (p *Program) AssociatedTyByName(qualified string) (ir.AssocTypeID, bool) {
	id, ok := p.assocIndex[qualified]
	return id, ok
}

// ImplsOf lists the impls of a trait, positive and negative.
func (p *Program) ImplsOf(trait ir.TraitID) []ir.ImplID {
	var out []ir.ImplID
	for i, im := range p.impls {
		if im.TraitID() == trait {
			out = append(out, ir.ImplID(i))
		}
	}
	return out
}

// Counts reports how many declarations of each kind the program has.
func (p *Program) Counts() map[DeclKind]int {
	return map[DeclKind]int{
		KindStruct:            len(p.structs),
		KindTrait:             len(p.traits),
		KindImpl:              len(p.impls),
		KindDefaultImpl:       len(p.defaultImpls),
		KindAssociatedTy:      len(p.assocTys),
		KindAssociatedTyValue: len(p.assocValues),
	}
}

// TraitNames returns the declared trait names, sorted.
func (p *Program) TraitNames() []string {
	out := make([]string, len(p.traitNames))
	copy(out, p.traitNames)
	sort.Strings(out)
	return out
}

// Program implements ir.Names for printing.

func (p *Program) TraitName(id ir.TraitID) string         { return nameAt(p.traitNames, uint32(id)) }
func (p *Program) StructName(id ir.StructID) string       { return nameAt(p.structNames, uint32(id)) }
func (p *Program) AssocTypeName(id ir.AssocTypeID) string { return nameAt(p.assocNames, uint32(id)) }

func lookup[T any](items []*T, id uint32) (*T, bool) {
	if int(id) >= len(items) {
		return nil, false
	}
	return items[id], true
}

func nameAt(names []string, id uint32) string {
	if int(id) >= len(names) {
		return ""
	}
	return names[id]
}
