package program

import (
	"fmt"
	"slices"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/decl"
	"github.com/funvibe/traitir/internal/fold"
	"github.com/funvibe/traitir/internal/ir"
)

// build resolves a validated fixture. Names are registered first so
// declarations may refer to each other in any order.
func build(fx *fixture, path string, in ir.Interner) (*Program, error) {
	p := newProgram(fx.Name, fx.Format, in)
	r := &resolver{p: p, in: in, path: path}

	steps := []func(*fixture, *resolver) error{
		register,
		buildStructs,
		buildTraits,
		buildAssocTypes,
		buildImpls,
		buildDefaultImpls,
	}
	for _, step := range steps {
		if err := step(fx, r); err != nil {
			return nil, err
		}
	}
	if err := p.verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func register(fx *fixture, r *resolver) error {
	p := r.p
	for i, s := range fx.Structs {
		where := fmt.Sprintf("structs[%d]", i)
		if _, dup := p.structIndex[s.Name]; dup {
			return r.errorf(where, 0, "struct %s declared twice", s.Name)
		}
		if slices.Contains(config.ScalarTypeNames, s.Name) {
			return r.errorf(where, 0, "struct %s shadows a builtin scalar", s.Name)
		}
		p.structIndex[s.Name] = ir.StructID(len(p.structNames))
		p.structNames = append(p.structNames, s.Name)
		p.structKinds = append(p.structKinds, decl.Anonymize(named(s.Params)))
	}

	for i, tr := range fx.Traits {
		where := fmt.Sprintf("traits[%d]", i)
		if _, dup := p.traitIndex[tr.Name]; dup {
			return r.errorf(where, 0, "trait %s declared twice", tr.Name)
		}
		id := ir.TraitID(len(p.traitNames))
		p.traitIndex[tr.Name] = id
		p.traitNames = append(p.traitNames, tr.Name)
		traitKinds := append([]ir.VariableKind{ir.KindTy}, decl.Anonymize(named(tr.Params))...)
		p.traitKinds = append(p.traitKinds, traitKinds)
		p.traitAssocs = append(p.traitAssocs, nil)

		for j, at := range tr.AssocTypes {
			qualified := tr.Name + config.AssocSeparator + at.Name
			if _, dup := p.assocIndex[qualified]; dup {
				return r.errorf(fmt.Sprintf("%s.assoc_types[%d]", where, j), 0, "associated type %s declared twice", qualified)
			}
			assoc := ir.AssocTypeID(len(p.assocNames))
			p.assocIndex[qualified] = assoc
			p.assocNames = append(p.assocNames, qualified)
			p.traitAssocs[id] = append(p.traitAssocs[id], assoc)
			kinds := append(decl.Anonymize(named(at.Params)), traitKinds...)
			p.assocKinds = append(p.assocKinds, kinds)
		}
	}
	return nil
}

func buildStructs(fx *fixture, r *resolver) error {
	for i, s := range fx.Structs {
		where := fmt.Sprintf("structs[%d]", i)
		scope := named(s.Params)
		if err := r.push(where+".params", scope); err != nil {
			return err
		}
		fields := make([]ir.Ty, len(s.Fields))
		for j, f := range s.Fields {
			t, err := r.ty(f, fmt.Sprintf("%s.fields[%d]", where, j))
			if err != nil {
				return err
			}
			fields[j] = t
		}
		wcs, err := r.whereClauses(s.Where, where+".where")
		if err != nil {
			return err
		}
		r.pop()

		r.p.structs = append(r.p.structs, &decl.StructDatum{
			ID: ir.StructID(i),
			Binders: ir.NewBinders(decl.Anonymize(scope), decl.StructDatumBound{
				Fields:       fields,
				WhereClauses: wcs,
			}),
			Flags: decl.StructFlags{Upstream: s.Upstream, Fundamental: s.Fundamental},
		})
	}
	return nil
}

func traitScope(tr traitSpec) []decl.NamedKind {
	return append([]decl.NamedKind{{Name: config.SelfParamName, Kind: ir.KindTy}}, named(tr.Params)...)
}

func traitFlags(names []string) decl.TraitFlags {
	var f decl.TraitFlags
	for _, n := range names {
		switch n {
		case "auto":
			f.Auto = true
		case "marker":
			f.Marker = true
		case "upstream":
			f.Upstream = true
		case "fundamental":
			f.Fundamental = true
		case "non_enumerable":
			f.NonEnumerable = true
		case "coinductive":
			f.Coinductive = true
		}
	}
	return f
}

func buildTraits(fx *fixture, r *resolver) error {
	for i, tr := range fx.Traits {
		where := fmt.Sprintf("traits[%d]", i)
		id := ir.TraitID(i)
		scope := traitScope(tr)
		if err := r.push(where+".params", scope); err != nil {
			return err
		}
		wcs, err := r.whereClauses(tr.Where, where+".where")
		if err != nil {
			return err
		}
		r.pop()

		assocIDs := slices.Clone(r.p.traitAssocs[id])
		wk, _ := decl.ParseWellKnownTrait(tr.WellKnown)

		r.p.traits = append(r.p.traits, &decl.TraitDatum{
			ID:              id,
			Binders:         ir.NewBinders(decl.Anonymize(scope), decl.TraitDatumBound{WhereClauses: wcs}),
			Flags:           traitFlags(tr.Flags),
			AssociatedTyIDs: assocIDs,
			WellKnown:       wk,
		})
	}
	return nil
}

// buildAssocTypes lays each binder out as [own; Self; trait params] in
// a single scope.
func buildAssocTypes(fx *fixture, r *resolver) error {
	for i, tr := range fx.Traits {
		traitID := ir.TraitID(i)
		for j, at := range tr.AssocTypes {
			where := fmt.Sprintf("traits[%d].assoc_types[%d]", i, j)
			qualified := tr.Name + config.AssocSeparator + at.Name
			scope := append(named(at.Params), traitScope(tr)...)
			if err := r.push(where+".params", scope); err != nil {
				return err
			}
			var bounds []decl.QuantifiedInlineBound
			for k, b := range at.Bounds {
				qb, err := r.bound(b, fmt.Sprintf("%s.bounds[%d]", where, k))
				if err != nil {
					return err
				}
				bounds = append(bounds, qb)
			}
			wcs, err := r.whereClauses(at.Where, where+".where")
			if err != nil {
				return err
			}
			r.pop()

			r.p.assocTys = append(r.p.assocTys, &decl.AssociatedTyDatum{
				TraitID: traitID,
				ID:      r.p.assocIndex[qualified],
				Name:    at.Name,
				Binders: ir.NewBinders(decl.Anonymize(scope), decl.AssociatedTyDatumBound{
					Bounds:       bounds,
					WhereClauses: wcs,
				}),
			})
		}
	}
	return nil
}

func buildImpls(fx *fixture, r *resolver) error {
	for i, im := range fx.Impls {
		where := fmt.Sprintf("impls[%d]", i)
		id := ir.ImplID(i)
		scope := named(im.Params)
		if err := r.push(where+".params", scope); err != nil {
			return err
		}
		tr, err := r.traitRef(im.Trait, im.Self, im.Args, where, im.Self.node.Line)
		if err != nil {
			return err
		}
		wcs, err := r.whereClauses(im.Where, where+".where")
		if err != nil {
			return err
		}
		valueIDs, err := buildAssocValues(r, im, id, tr.TraitID, where)
		if err != nil {
			return err
		}
		r.pop()

		polarity := decl.Positive
		if im.Negative {
			polarity = decl.Negative
		}
		implType := decl.ImplLocal
		if im.External {
			implType = decl.ImplExternal
		}
		r.p.impls = append(r.p.impls, &decl.ImplDatum{
			Polarity:             polarity,
			Binders:              ir.NewBinders(decl.Anonymize(scope), decl.ImplDatumBound{TraitRef: tr, WhereClauses: wcs}),
			ImplType:             implType,
			AssociatedTyValueIDs: valueIDs,
		})
	}
	return nil
}

// buildAssocValues runs inside the impl's scope. A positive impl must
// define every associated type of its trait exactly once.
func buildAssocValues(r *resolver, im implSpec, implID ir.ImplID, traitID ir.TraitID, where string) ([]decl.AssociatedTyValueID, error) {
	trait := r.p.traitNames[traitID]
	defined := make(map[ir.AssocTypeID]bool)
	var ids []decl.AssociatedTyValueID
	for j, av := range im.AssocValues {
		avWhere := fmt.Sprintf("%s.assoc_values[%d]", where, j)
		assoc, ok := r.p.assocIndex[trait+config.AssocSeparator+av.Name]
		if !ok {
			return nil, r.errorf(avWhere, 0, "trait %s has no associated type %s", trait, av.Name)
		}
		if defined[assoc] {
			return nil, r.errorf(avWhere, 0, "associated type %s defined twice", av.Name)
		}
		defined[assoc] = true

		scope := named(av.Params)
		kinds := decl.Anonymize(scope)
		wantOwn := len(r.p.assocKinds[assoc]) - len(r.p.traitKinds[traitID])
		if !slices.Equal(kinds, r.p.assocKinds[assoc][:wantOwn]) {
			return nil, r.errorf(avWhere, 0, "parameters [%s] do not match the declaration's [%s]",
				ir.FormatKinds(kinds), ir.FormatKinds(r.p.assocKinds[assoc][:wantOwn]))
		}
		if err := r.push(avWhere+".params", scope); err != nil {
			return nil, err
		}
		value, err := r.ty(av.Value, avWhere+".value")
		if err != nil {
			return nil, err
		}
		r.pop()

		id := decl.AssociatedTyValueID(len(r.p.assocValues))
		r.p.assocValues = append(r.p.assocValues, &decl.AssociatedTyValue{
			ImplID:         implID,
			AssociatedTyID: assoc,
			Value:          ir.NewBinders(kinds, decl.AssociatedTyValueBound{Ty: value}),
		})
		ids = append(ids, id)
	}

	if !im.Negative {
		for _, assoc := range r.p.traitAssocs[traitID] {
			if !defined[assoc] {
				return nil, r.errorf(where, 0, "missing associated type %s", r.p.assocNames[assoc])
			}
		}
	}
	return ids, nil
}

func buildDefaultImpls(fx *fixture, r *resolver) error {
	for i, d := range fx.DefaultImpls {
		where := fmt.Sprintf("default_impls[%d]", i)
		scope := named(d.Params)
		if err := r.push(where+".params", scope); err != nil {
			return err
		}
		tr, err := r.traitRef(d.Trait, d.Self, d.Args, where, d.Self.node.Line)
		if err != nil {
			return err
		}
		tys := make([]ir.Ty, len(d.Accessible))
		for j, e := range d.Accessible {
			t, err := r.ty(e, fmt.Sprintf("%s.accessible[%d]", where, j))
			if err != nil {
				return err
			}
			tys[j] = t
		}
		r.pop()

		r.p.defaultImpls = append(r.p.defaultImpls, &decl.DefaultImplDatum{
			Binders: ir.NewBinders(decl.Anonymize(scope), decl.DefaultImplDatumBound{TraitRef: tr, AccessibleTys: tys}),
		})
	}
	return nil
}

// verify checks that every bound variable of every declaration resolves
// within its binders. Resolution guarantees this; it guards the builders.
func (p *Program) verify() error {
	for _, d := range p.structs {
		if err := fold.CheckBinders(decl.FoldStructDatumBound, d.Binders); err != nil {
			return fmt.Errorf("%s: %w", p.structNames[d.ID], err)
		}
	}
	for _, d := range p.traits {
		if err := fold.CheckBinders(decl.FoldTraitDatumBound, d.Binders); err != nil {
			return fmt.Errorf("%s: %w", p.traitNames[d.ID], err)
		}
	}
	for _, d := range p.assocTys {
		if err := fold.CheckBinders(decl.FoldAssociatedTyDatumBound, d.Binders); err != nil {
			return fmt.Errorf("%s: %w", p.assocNames[d.ID], err)
		}
	}
	for i, d := range p.impls {
		if err := fold.CheckBinders(decl.FoldImplDatumBound, d.Binders); err != nil {
			return fmt.Errorf("%s: %w", ir.ImplID(i), err)
		}
	}
	for i, d := range p.defaultImpls {
		if err := fold.CheckBinders(decl.FoldDefaultImplDatumBound, d.Binders); err != nil {
			return fmt.Errorf("default impl %d: %w", i, err)
		}
	}
	for i, v := range p.assocValues {
		impl := p.impls[v.ImplID]
		if err := fold.CheckBinders(decl.FoldAssociatedTyValueBound, v.Value, impl.Binders.Kinds); err != nil {
			return fmt.Errorf("%s: %w", decl.AssociatedTyValueID(i), err)
		}
	}
	return nil
}
