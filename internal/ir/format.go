package ir

import (
	"strconv"
	"strings"
)

// printer renders terms. In key mode the output is an unambiguous
// structural key instead of display text.
type printer struct {
	b     strings.Builder
	names Names
	key   bool
}

// Format renders a parameter, resolving identifiers through names when
// it is non-nil.
func Format(p Parameter, names Names) string {
	pr := &printer{names: names}
	pr.param(p)
	return pr.b.String()
}

// FormatWhereClause renders a clause.
func FormatWhereClause(wc WhereClause, names Names) string {
	pr := &printer{names: names}
	pr.whereClause(wc)
	return pr.b.String()
}

// FormatQuantified renders a clause under its binder as for<...> clause.
// An empty binder still prints as for<> since it is a scope level.
func FormatQuantified(qwc QuantifiedWhereClause, names Names) string {
	pr := &printer{names: names}
	pr.kinds(qwc.Kinds)
	pr.whereClause(qwc.Value)
	return pr.b.String()
}

// FormatParams renders a parameter list as <a, b>; an empty list is "".
func FormatParams(params []Parameter, names Names) string {
	pr := &printer{names: names}
	pr.list(params)
	return pr.b.String()
}

// FormatKinds renders a binder shape, e.g. "type, lifetime".
func FormatKinds(kinds []VariableKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

func formatSubst(s Substitution, names Names) string {
	pr := &printer{names: names}
	pr.list(s.params)
	return pr.b.String()
}

func formatTraitRef(t TraitRef, names Names) string {
	pr := &printer{names: names}
	pr.traitRef(t)
	return pr.b.String()
}

func formatAlias(a AliasTy, names Names) string {
	pr := &printer{names: names}
	pr.alias(a)
	return pr.b.String()
}

func termKey(p Parameter) string {
	pr := &printer{key: true}
	pr.param(p)
	return pr.b.String()
}

func substKey(params []Parameter) string {
	pr := &printer{key: true}
	pr.list(params)
	return pr.b.String()
}

func (pr *printer) kinds(kinds []VariableKind) {
	pr.b.WriteString("for<")
	pr.b.WriteString(FormatKinds(kinds))
	pr.b.WriteString("> ")
}

func (pr *printer) param(p Parameter) {
	switch t := p.(type) {
	case *BoundVarTy:
		pr.b.WriteString(t.Var.String())
	case *BoundVarLifetime:
		pr.b.WriteString("'")
		pr.b.WriteString(t.Var.String())
	case *PlaceholderTy:
		pr.b.WriteString(t.Index.String())
	case *PlaceholderLifetime:
		pr.b.WriteString("'")
		pr.b.WriteString(t.Index.String())
	case *StaticLifetime:
		pr.b.WriteString("'static")
	case *ApplyTy:
		pr.apply(t)
	case *ProjectionTy:
		pr.alias(t.Alias)
	case nil:
		pr.b.WriteString("<nil>")
	default:
		panic("ir: unknown parameter variant")
	}
}

func (pr *printer) apply(t *ApplyTy) {
	if tn, ok := t.Name.(TupleName); ok && !pr.key {
		pr.b.WriteString("(")
		pr.join(t.Substitution.params)
		if tn.Arity == 1 {
			pr.b.WriteString(",")
		}
		pr.b.WriteString(")")
		return
	}
	pr.typeName(t.Name)
	pr.list(t.Substitution.params)
}

func (pr *printer) typeName(n TypeName) {
	switch n := n.(type) {
	case StructName:
		if pr.names != nil {
			if s := pr.names.StructName(n.ID); s != "" {
				pr.b.WriteString(s)
				return
			}
		}
		pr.b.WriteString(n.String())
	case AssocTypeName:
		pr.assocName(n.ID)
	case ScalarName:
		if pr.key {
			pr.b.WriteString("scalar:")
			pr.b.WriteString(strconv.Quote(n.Name))
			return
		}
		pr.b.WriteString(n.Name)
	case TupleName:
		pr.b.WriteString(n.String())
	default:
		panic("ir: unknown type name variant")
	}
}

func (pr *printer) assocName(id AssocTypeID) {
	if pr.names != nil {
		if s := pr.names.AssocTypeName(id); s != "" {
			pr.b.WriteString(s)
			return
		}
	}
	pr.b.WriteString(id.String())
}

func (pr *printer) list(params []Parameter) {
	if len(params) == 0 {
		return
	}
	pr.b.WriteString("<")
	pr.join(params)
	pr.b.WriteString(">")
}

func (pr *printer) join(params []Parameter) {
	for i, p := range params {
		if i > 0 {
			pr.b.WriteString(", ")
		}
		pr.param(p)
	}
}

func (pr *printer) alias(a AliasTy) {
	pr.b.WriteString("(")
	pr.assocName(a.AssociatedTyID)
	pr.b.WriteString(")")
	pr.list(a.Substitution.params)
}

func (pr *printer) traitRef(t TraitRef) {
	params := t.Substitution.params
	if len(params) == 0 {
		pr.b.WriteString("?")
	} else {
		pr.param(params[0])
		params = params[1:]
	}
	pr.b.WriteString(": ")
	name := ""
	if pr.names != nil {
		name = pr.names.TraitName(t.TraitID)
	}
	if name == "" {
		name = t.TraitID.String()
	}
	pr.b.WriteString(name)
	pr.list(params)
}

func (pr *printer) whereClause(wc WhereClause) {
	switch c := wc.(type) {
	case *Implemented:
		pr.b.WriteString("Implemented(")
		pr.traitRef(c.TraitRef)
		pr.b.WriteString(")")
	case *AliasEqClause:
		pr.b.WriteString("AliasEq(")
		pr.alias(c.AliasEq.Alias)
		pr.b.WriteString(" = ")
		pr.param(c.AliasEq.Ty)
		pr.b.WriteString(")")
	default:
		panic("ir: unknown where clause variant")
	}
}
