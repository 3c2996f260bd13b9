package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/ir"
	"github.com/funvibe/traitir/internal/program"
	"github.com/funvibe/traitir/internal/snapshot"
)

var errUsage = errors.New("usage")

// options are the flags shared by every command.
type options struct {
	verbose bool
	noColor bool
	watch   bool
	workers int
	intern  string
	db      string
}

func newFlagSet(name string, stderr io.Writer, o *options, withWatch bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	fs.IntVar(&o.workers, "workers", config.DefaultWorkers, "concurrent lowering workers")
	fs.StringVar(&o.intern, "intern", "heap", "term interner: heap or hashcons")
	if withWatch {
		fs.BoolVar(&o.watch, "watch", false, "re-run when the fixture changes")
	}
	return fs
}

// parseFlags reports any parse error through the flag set's output.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func newInterner(name string) (ir.Interner, error) {
	switch name {
	case "heap":
		return ir.NewHeapInterner(), nil
	case "hashcons":
		return ir.NewHashConsInterner(), nil
	default:
		return nil, fmt.Errorf("unknown interner %q (want heap or hashcons)", name)
	}
}

// fixturePath picks the positional argument or searches upwards.
func fixturePath(args []string) (string, error) {
	switch len(args) {
	case 0:
		path, err := program.FindFixture(".")
		if err != nil {
			return "", err
		}
		if path == "" {
			return "", fmt.Errorf("no %s found", strings.Join(config.FixtureFileNames, " or "))
		}
		return path, nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("expected one fixture, got %d", len(args))
	}
}

func load(o *options, path string, log *slog.Logger) (*program.Program, error) {
	in, err := newInterner(o.intern)
	if err != nil {
		return nil, err
	}
	p, err := program.Load(path, in)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded fixture", "path", path, "program", p.Name, "interner", in.Name())
	return p, nil
}

func lowerProgram(ctx context.Context, o *options, p *program.Program, log *slog.Logger) ([]program.ClauseSet, error) {
	return p.Lower(ctx, program.LowerOptions{Workers: o.workers, Logger: log})
}

func runLower(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("lower", stderr, &o, true)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, err := fixturePath(fs.Args())
	if err != nil {
		return err
	}
	log := newLogger(stderr, o.verbose)
	pt := painter{on: colorEnabled(stdout, o.noColor)}

	once := func() error {
		p, err := load(&o, path, log)
		if err != nil {
			return err
		}
		sets, err := lowerProgram(ctx, &o, p, log)
		if err != nil {
			return err
		}
		for _, s := range sets {
			fmt.Fprintln(stdout, pt.header(s.Header()))
			for _, q := range s.Clauses {
				fmt.Fprintf(stdout, "    %s\n", ir.FormatQuantified(q, p))
			}
		}
		return nil
	}
	if o.watch {
		return watch(ctx, path, log, once)
	}
	return once()
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("check", stderr, &o, true)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, err := fixturePath(fs.Args())
	if err != nil {
		return err
	}
	log := newLogger(stderr, o.verbose)
	pt := painter{on: colorEnabled(stdout, o.noColor)}

	once := func() error {
		p, err := load(&o, path, log)
		if err != nil {
			fmt.Fprintln(stdout, pt.removed("FAIL ")+path)
			return err
		}
		// Lowering exercises every binder once more.
		sets, err := lowerProgram(ctx, &o, p, log)
		if err != nil {
			return err
		}
		c := p.Counts()
		fmt.Fprintf(stdout, "%s%s: %d structs, %d traits, %d impls, %d associated types, %d clause sets\n",
			pt.added("ok   "), p.Name,
			c[program.KindStruct], c[program.KindTrait], c[program.KindImpl], c[program.KindAssociatedTy], len(sets))
		return nil
	}
	if o.watch {
		return watch(ctx, path, log, once)
	}
	return once()
}

func runSnapshot(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: traitir snapshot save|diff|list [flags] [fixture]")
		return errUsage
	}
	action := args[0]
	var o options
	fs := newFlagSet("snapshot "+action, stderr, &o, false)
	fs.StringVar(&o.db, "db", "traitir.db", "snapshot database path")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	log := newLogger(stderr, o.verbose)
	pt := painter{on: colorEnabled(stdout, o.noColor)}

	store, err := snapshot.Open(ctx, o.db)
	if err != nil {
		return err
	}
	defer store.Close()

	if action == "list" {
		names, err := store.Programs(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(stdout, n)
		}
		return nil
	}
	if action != "save" && action != "diff" {
		fmt.Fprintf(stderr, "unknown snapshot action %q\n", action)
		return errUsage
	}

	path, err := fixturePath(fs.Args())
	if err != nil {
		return err
	}
	p, err := load(&o, path, log)
	if err != nil {
		return err
	}
	sets, err := lowerProgram(ctx, &o, p, log)
	if err != nil {
		return err
	}
	entries := snapshot.Entries(sets, p)

	if action == "save" {
		if err := store.Save(ctx, p.Name, entries); err != nil {
			return err
		}
		log.Info("saved snapshot", "program", p.Name, "entries", len(entries), "db", o.db)
		fmt.Fprintf(stdout, "saved %d clause sets for %s\n", len(entries), p.Name)
		return nil
	}

	old, err := store.Load(ctx, p.Name)
	if err != nil {
		return err
	}
	changes := snapshot.Diff(old, entries)
	for _, c := range changes {
		line := c.String()
		switch c.Kind {
		case snapshot.Added:
			line = pt.added(line)
		case snapshot.Removed:
			line = pt.removed(line)
		}
		fmt.Fprintln(stdout, line)
	}
	if len(changes) == 0 {
		fmt.Fprintf(stdout, "%s: no changes\n", p.Name)
	}
	return nil
}
