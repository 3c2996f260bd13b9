package program

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/decl"
	"github.com/funvibe/traitir/internal/ir"
)

// DeclKind names the kind of declaration a clause set came from.
type DeclKind int

const (
	KindStruct DeclKind = iota
	KindTrait
	KindAssociatedTy
	KindImpl
	KindAssociatedTyValue
	KindDefaultImpl
)

func (k DeclKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindTrait:
		return "trait"
	case KindAssociatedTy:
		return "assoc_ty"
	case KindImpl:
		return "impl"
	case KindAssociatedTyValue:
		return "assoc_value"
	case KindDefaultImpl:
		return "default_impl"
	default:
		panic(fmt.Sprintf("program: unknown decl kind %d", int(k)))
	}
}

// ParseDeclKind is the inverse of DeclKind.String.
func ParseDeclKind(s string) (DeclKind, bool) {
	for k := KindStruct; k <= KindDefaultImpl; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ClauseSet is what one declaration contributes. Clauses live under a
// binder of shape Binders.
type ClauseSet struct {
	Kind    DeclKind
	ID      uint32
	Name    string
	Binders []ir.VariableKind
	Clauses []ir.QuantifiedWhereClause
}

// Header is a one-line summary, e.g. `impl impl#0 for<type>`.
func (c ClauseSet) Header() string {
	return fmt.Sprintf("%s %s for<%s>", c.Kind, c.Name, ir.FormatKinds(c.Binders))
}

// Render prints the header followed by one indented clause per line.
func (c ClauseSet) Render(names ir.Names) string {
	var b strings.Builder
	b.WriteString(c.Header())
	b.WriteByte('\n')
	for _, q := range c.Clauses {
		b.WriteString("    ")
		b.WriteString(ir.FormatQuantified(q, names))
		b.WriteByte('\n')
	}
	return b.String()
}

// Body renders only the clauses; it is what snapshots compare.
func (c ClauseSet) Body(names ir.Names) string {
	lines := make([]string, len(c.Clauses))
	for i, q := range c.Clauses {
		lines[i] = ir.FormatQuantified(q, names)
	}
	return "for<" + ir.FormatKinds(c.Binders) + "> " + strings.Join(lines, "; ")
}

type LowerOptions struct {
	// Workers bounds concurrency; 0 means config.DefaultWorkers.
	Workers int
	Logger  *slog.Logger
}

// Lower computes the clause set of every declaration. The result order
// is fixed (structs, traits, associated types, impls, associated values,
// default impls, each by id) no matter how many workers run.
func (p *Program) Lower(ctx context.Context, opts LowerOptions) ([]ClauseSet, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers
	}

	jobs := p.lowerJobs()
	out := make([]ClauseSet, len(jobs))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = job()
			log.Debug("lowered", "kind", out[i].Kind, "name", out[i].Name, "clauses", len(out[i].Clauses))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lowering %s: %w", p.Name, err)
	}

	log.Info("lowered program", "program", p.Name, "decls", len(out),
		"workers", workers, "interner", p.Interner.Name(), "elapsed", time.Since(start))
	return out, nil
}

func (p *Program) lowerJobs() []func() ClauseSet {
	in := p.Interner
	var jobs []func() ClauseSet

	for _, d := range p.structs {
		jobs = append(jobs, func() ClauseSet {
			return ClauseSet{
				Kind: KindStruct, ID: uint32(d.ID), Name: p.structNames[d.ID],
				Binders: d.Binders.Kinds, Clauses: d.Binders.Value.WhereClauses,
			}
		})
	}
	for _, d := range p.traits {
		jobs = append(jobs, func() ClauseSet {
			return ClauseSet{
				Kind: KindTrait, ID: uint32(d.ID), Name: p.traitNames[d.ID],
				Binders: d.Binders.Kinds, Clauses: d.Binders.Value.WhereClauses,
			}
		})
	}
	for _, d := range p.assocTys {
		jobs = append(jobs, func() ClauseSet {
			clauses := d.BoundsOnSelf(in)
			clauses = append(clauses, d.Binders.Value.WhereClauses...)
			return ClauseSet{
				Kind: KindAssociatedTy, ID: uint32(d.ID), Name: p.assocNames[d.ID],
				Binders: d.Binders.Kinds, Clauses: clauses,
			}
		})
	}
	for i, d := range p.impls {
		jobs = append(jobs, func() ClauseSet {
			var clauses []ir.QuantifiedWhereClause
			if d.IsPositive() {
				clauses = append(clauses, decl.Quantify(in, &ir.Implemented{TraitRef: d.TraitRef()}))
			}
			clauses = append(clauses, d.Binders.Value.WhereClauses...)
			return ClauseSet{
				Kind: KindImpl, ID: uint32(i), Name: implName(p, ir.ImplID(i), d),
				Binders: d.Binders.Kinds, Clauses: clauses,
			}
		})
	}
	for i, v := range p.assocValues {
		jobs = append(jobs, func() ClauseSet {
			impl := p.impls[v.ImplID]
			return ClauseSet{
				Kind: KindAssociatedTyValue, ID: uint32(i),
				Name:    fmt.Sprintf("%s in %s", p.assocNames[v.AssociatedTyID], implName(p, v.ImplID, impl)),
				Binders: impl.Binders.Kinds,
				Clauses: []ir.QuantifiedWhereClause{v.Normalization(in, impl.TraitRef())},
			}
		})
	}
	for i, d := range p.defaultImpls {
		jobs = append(jobs, func() ClauseSet {
			return ClauseSet{
				Kind: KindDefaultImpl, ID: uint32(i),
				Name:    fmt.Sprintf("default %s#%d", p.traitNames[d.TraitID()], uint32(i)),
				Binders: d.Binders.Kinds, Clauses: d.Conditions(in),
			}
		})
	}
	return jobs
}

// implName is `Trait#id`, with a leading ! for negative impls.
func implName(p *Program, id ir.ImplID, d *decl.ImplDatum) string {
	prefix := ""
	if !d.IsPositive() {
		prefix = "!"
	}
	return fmt.Sprintf("%s%s#%d", prefix, p.traitNames[d.TraitID()], uint32(id))
}
