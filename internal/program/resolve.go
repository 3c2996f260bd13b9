package program

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/decl"
	"github.com/funvibe/traitir/internal/ir"
)

// resolver turns named parameters into bound variables. Scopes are
// stacked innermost last; a name found in the scope n levels out from
// the innermost resolves to depth n.
type resolver struct {
	p      *Program
	in     ir.Interner
	path   string
	scopes [][]decl.NamedKind
}

// typeNode mirrors the mapping forms of a type expression.
type typeNode struct {
	Apply   string     `yaml:"apply"`
	Args    []typeExpr `yaml:"args"`
	Tuple   []typeExpr `yaml:"tuple"`
	Project string     `yaml:"project"`
	Self    *typeExpr  `yaml:"self"`
	Params  []typeExpr `yaml:"params"`
}

func kindOf(name string) ir.VariableKind {
	if strings.HasPrefix(name, config.LifetimePrefix) {
		return ir.KindLifetime
	}
	return ir.KindTy
}

// named attaches kinds to parameter names.
func named(names []string) []decl.NamedKind {
	out := make([]decl.NamedKind, len(names))
	for i, n := range names {
		out[i] = decl.NamedKind{Name: n, Kind: kindOf(n)}
	}
	return out
}

func (r *resolver) errorf(where string, line int, format string, args ...any) error {
	return &ResolveError{Path: r.path, Where: where, Line: line, Reason: fmt.Sprintf(format, args...)}
}

// push opens a scope. Names must be unique within it.
func (r *resolver) push(where string, params []decl.NamedKind) error {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name == "" || p.Name == config.LifetimePrefix {
			return r.errorf(where, 0, "empty parameter name")
		}
		if p.Name == config.StaticLifetimeName {
			return r.errorf(where, 0, "%s cannot be declared", config.StaticLifetimeName)
		}
		if seen[p.Name] {
			return r.errorf(where, 0, "parameter %q declared twice", p.Name)
		}
		seen[p.Name] = true
	}
	r.scopes = append(r.scopes, params)
	return nil
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// lookup searches from the innermost scope outwards.
func (r *resolver) lookup(name string) (ir.BoundVar, ir.VariableKind, bool) {
	for depth := 0; depth < len(r.scopes); depth++ {
		scope := r.scopes[len(r.scopes)-1-depth]
		for i, p := range scope {
			if p.Name == name {
				return ir.NewBoundVar(ir.DebruijnIndex{Depth: uint32(depth)}, i), p.Kind, true
			}
		}
	}
	return ir.BoundVar{}, 0, false
}

func (r *resolver) param(e typeExpr, where string) (ir.Parameter, error) {
	n := e.node
	if n == nil {
		return nil, r.errorf(where, 0, "missing type")
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return r.scalar(n, where)
	case yaml.MappingNode:
		return r.mapping(n, where)
	default:
		return nil, r.errorf(where, n.Line, "expected a name or a mapping")
	}
}

func (r *resolver) ty(e typeExpr, where string) (ir.Ty, error) {
	p, err := r.param(e, where)
	if err != nil {
		return nil, err
	}
	t, ok := ir.AsTy(p)
	if !ok {
		return nil, r.errorf(where, e.node.Line, "lifetime %s used where a type is expected", ir.Format(p, r.p))
	}
	return t, nil
}

func (r *resolver) params(es []typeExpr, where string) ([]ir.Parameter, error) {
	out := make([]ir.Parameter, len(es))
	for i, e := range es {
		p, err := r.param(e, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (r *resolver) scalar(n *yaml.Node, where string) (ir.Parameter, error) {
	name := n.Value
	if name == config.StaticLifetimeName {
		return ir.Static(r.in), nil
	}
	if bv, kind, ok := r.lookup(name); ok {
		return ir.NewBoundParameter(r.in, kind, bv), nil
	}
	if kindOf(name) == ir.KindLifetime {
		return nil, r.errorf(where, n.Line, "unknown lifetime %s", name)
	}
	return r.apply(name, nil, where, n.Line)
}

func (r *resolver) mapping(n *yaml.Node, where string) (ir.Parameter, error) {
	keys := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = true
	}
	var tn typeNode
	if err := n.Decode(&tn); err != nil {
		return nil, r.errorf(where, n.Line, "%v", err)
	}

	switch {
	case keys["apply"]:
		args, err := r.params(tn.Args, where+".args")
		if err != nil {
			return nil, err
		}
		return r.apply(tn.Apply, args, where, n.Line)

	case keys["tuple"]:
		elems, err := r.params(tn.Tuple, where+".tuple")
		if err != nil {
			return nil, err
		}
		for i, el := range elems {
			if el.Kind() != ir.KindTy {
				return nil, r.errorf(where, n.Line, "tuple element %d is a lifetime", i)
			}
		}
		return ir.NewApplyTy(r.in, ir.TupleName{Arity: len(elems)}, ir.NewSubstitution(r.in, elems...)), nil

	case keys["project"]:
		if tn.Self == nil {
			return nil, r.errorf(where, n.Line, "projection needs self")
		}
		alias, err := r.projection(tn.Project, *tn.Self, tn.Args, tn.Params, where, n.Line)
		if err != nil {
			return nil, err
		}
		return ir.NewProjectionTy(r.in, alias), nil

	default:
		return nil, r.errorf(where, n.Line, "expected one of apply, tuple, project")
	}
}

// apply resolves a named type constructor: a declared struct or a
// builtin scalar.
func (r *resolver) apply(name string, args []ir.Parameter, where string, line int) (ir.Parameter, error) {
	if id, ok := r.p.structIndex[name]; ok {
		if err := r.checkArgs(where, line, "struct "+name, r.p.structKinds[id], args); err != nil {
			return nil, err
		}
		return ir.NewApplyTy(r.in, id.TypeName(), ir.NewSubstitution(r.in, args...)), nil
	}
	if slices.Contains(config.ScalarTypeNames, name) {
		if len(args) > 0 {
			return nil, r.errorf(where, line, "scalar %s takes no arguments", name)
		}
		return ir.NewScalarTy(r.in, name), nil
	}
	return nil, r.errorf(where, line, "unknown type %s", name)
}

func (r *resolver) checkArgs(where string, line int, what string, want []ir.VariableKind, got []ir.Parameter) error {
	if len(want) != len(got) {
		return r.errorf(where, line, "%s expects %d arguments, got %d", what, len(want), len(got))
	}
	for i, p := range got {
		if p.Kind() != want[i] {
			return r.errorf(where, line, "%s argument %d: expected a %s, got a %s", what, i, want[i], p.Kind())
		}
	}
	return nil
}

// traitRef resolves `self: Trait<args>`.
func (r *resolver) traitRef(trait string, self typeExpr, args []typeExpr, where string, line int) (ir.TraitRef, error) {
	id, ok := r.p.traitIndex[trait]
	if !ok {
		return ir.TraitRef{}, r.errorf(where, line, "unknown trait %s", trait)
	}
	selfTy, err := r.ty(self, where+".self")
	if err != nil {
		return ir.TraitRef{}, err
	}
	rest, err := r.params(args, where+".args")
	if err != nil {
		return ir.TraitRef{}, err
	}
	all := append([]ir.Parameter{selfTy}, rest...)
	if err := r.checkArgs(where, line, "trait "+trait, r.p.traitKinds[id], all); err != nil {
		return ir.TraitRef{}, err
	}
	return ir.TraitRef{TraitID: id, Substitution: ir.NewSubstitution(r.in, all...)}, nil
}

// projection resolves <self as Trait<args>>::Assoc<params>. The alias
// substitution is the associated type's own parameters followed by the
// trait reference's.
func (r *resolver) projection(qualified string, self typeExpr, args, params []typeExpr, where string, line int) (ir.AliasTy, error) {
	trait, _, ok := strings.Cut(qualified, config.AssocSeparator)
	if !ok {
		return ir.AliasTy{}, r.errorf(where, line, "projection %q is not of the form Trait%sName", qualified, config.AssocSeparator)
	}
	id, ok := r.p.assocIndex[qualified]
	if !ok {
		return ir.AliasTy{}, r.errorf(where, line, "unknown associated type %s", qualified)
	}
	tr, err := r.traitRef(trait, self, args, where, line)
	if err != nil {
		return ir.AliasTy{}, err
	}
	own, err := r.params(params, where+".params")
	if err != nil {
		return ir.AliasTy{}, err
	}
	subst := ir.NewSubstitution(r.in, own...).Concat(r.in, tr.Substitution)
	if err := r.checkArgs(where, line, "associated type "+qualified, r.p.assocKinds[id], subst.Params()); err != nil {
		return ir.AliasTy{}, err
	}
	return ir.AliasTy{AssociatedTyID: id, Substitution: subst}, nil
}

// whereClause resolves one where clause. It always opens a scope, empty
// when the clause has no for list.
func (r *resolver) whereClause(w whereSpec, where string) (ir.QuantifiedWhereClause, error) {
	scope := named(w.For)
	if err := r.push(where+".for", scope); err != nil {
		return ir.QuantifiedWhereClause{}, err
	}
	defer r.pop()

	kinds := decl.Anonymize(scope)
	if w.Self == nil {
		return ir.QuantifiedWhereClause{}, r.errorf(where, 0, "self is required")
	}
	line := 0
	if w.Self.node != nil {
		line = w.Self.node.Line
	}

	switch {
	case w.Implemented != "" && w.Project != "":
		return ir.QuantifiedWhereClause{}, r.errorf(where, line, "implemented and project are exclusive")

	case w.Implemented != "":
		tr, err := r.traitRef(w.Implemented, *w.Self, w.Args, where, line)
		if err != nil {
			return ir.QuantifiedWhereClause{}, err
		}
		return ir.NewBinders[ir.WhereClause](kinds, &ir.Implemented{TraitRef: tr}), nil

	case w.Project != "":
		if w.Value == nil {
			return ir.QuantifiedWhereClause{}, r.errorf(where, line, "project needs a value")
		}
		alias, err := r.projection(w.Project, *w.Self, w.Args, w.Params, where, line)
		if err != nil {
			return ir.QuantifiedWhereClause{}, err
		}
		value, err := r.ty(*w.Value, where+".value")
		if err != nil {
			return ir.QuantifiedWhereClause{}, err
		}
		return ir.NewBinders[ir.WhereClause](kinds, &ir.AliasEqClause{AliasEq: ir.AliasEq{Alias: alias, Ty: value}}), nil

	default:
		return ir.QuantifiedWhereClause{}, r.errorf(where, line, "expected implemented or project")
	}
}

func (r *resolver) whereClauses(ws []whereSpec, where string) ([]ir.QuantifiedWhereClause, error) {
	var out []ir.QuantifiedWhereClause
	for i, w := range ws {
		wc, err := r.whereClause(w, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		out = append(out, wc)
	}
	return out, nil
}

// bound resolves an inline bound on an associated type. Like where
// clauses it always opens a scope.
func (r *resolver) bound(b boundSpec, where string) (decl.QuantifiedInlineBound, error) {
	scope := named(b.For)
	if err := r.push(where+".for", scope); err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	defer r.pop()
	kinds := decl.Anonymize(scope)

	id, ok := r.p.traitIndex[b.Trait]
	if !ok {
		return decl.QuantifiedInlineBound{}, r.errorf(where, 0, "unknown trait %s", b.Trait)
	}
	args, err := r.params(b.Args, where+".args")
	if err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	// Self is supplied at lowering; only its slot is checked here.
	want := r.p.traitKinds[id][1:]
	if err := r.checkArgs(where, 0, "trait "+b.Trait, want, args); err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	tb := decl.TraitBound{TraitID: id, ArgsNoSelf: args}
	if b.Project == "" {
		if b.Value != nil || len(b.Params) > 0 {
			return decl.QuantifiedInlineBound{}, r.errorf(where, 0, "value and params need project")
		}
		return ir.NewBinders[decl.InlineBound](kinds, &tb), nil
	}

	qualified := b.Trait + config.AssocSeparator + b.Project
	assoc, ok := r.p.assocIndex[qualified]
	if !ok {
		return decl.QuantifiedInlineBound{}, r.errorf(where, 0, "unknown associated type %s", qualified)
	}
	if b.Value == nil {
		return decl.QuantifiedInlineBound{}, r.errorf(where, 0, "project needs a value")
	}
	own, err := r.params(b.Params, where+".params")
	if err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	ownKinds := r.p.assocKinds[assoc][:len(r.p.assocKinds[assoc])-len(r.p.traitKinds[id])]
	if err := r.checkArgs(where, 0, "associated type "+qualified, ownKinds, own); err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	value, err := r.ty(*b.Value, where+".value")
	if err != nil {
		return decl.QuantifiedInlineBound{}, err
	}
	return ir.NewBinders[decl.InlineBound](kinds, &decl.AliasEqBound{
		TraitBound:     tb,
		AssociatedTyID: assoc,
		Parameters:     own,
		Value:          value,
	}), nil
}
