// Package snapshot stores lowered clause sets in SQLite so successive
// lowerings of a program can be compared.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/funvibe/traitir/internal/ir"
	"github.com/funvibe/traitir/internal/program"
)

const schema = `
CREATE TABLE IF NOT EXISTS clause_sets (
	program TEXT    NOT NULL,
	seq     INTEGER NOT NULL,
	kind    TEXT    NOT NULL,
	decl_id INTEGER NOT NULL,
	name    TEXT    NOT NULL,
	body    TEXT    NOT NULL,
	PRIMARY KEY (program, kind, decl_id)
)`

// ErrNoSnapshot is returned by Load for a program never saved.
var ErrNoSnapshot = errors.New("no snapshot")

// Entry is one stored clause set, rendered.
type Entry struct {
	Kind   string
	DeclID uint32
	Name   string
	Body   string
}

// Key identifies an entry across lowerings.
func (e Entry) Key() string { return e.Kind + " " + e.Name }

// Entries renders clause sets in their given order.
func Entries(sets []program.ClauseSet, names ir.Names) []Entry {
	out := make([]Entry, len(sets))
	for i, s := range sets {
		out[i] = Entry{Kind: s.Kind.String(), DeclID: s.ID, Name: s.Name, Body: s.Body(names)}
	}
	return out
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store %s: %w", path, err)
	}
	// A single connection keeps :memory: stores coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces everything stored for name with entries.
func (s *Store) Save(ctx context.Context, name string, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clause_sets WHERE program = ?`, name); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clause_sets (program, seq, kind, decl_id, name, body) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, name, i, e.Kind, e.DeclID, e.Name, e.Body); err != nil {
			return fmt.Errorf("saving %s %s: %w", name, e.Key(), err)
		}
	}
	return tx.Commit()
}

// Load returns the entries saved for name in their saved order.
func (s *Store) Load(ctx context.Context, name string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, decl_id, name, body FROM clause_sets WHERE program = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Kind, &e.DeclID, &e.Name, &e.Body); err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("loading %s: %w", name, ErrNoSnapshot)
	}
	return out, nil
}

// Programs lists the program names with a saved snapshot, sorted.
func (s *Store) Programs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT program FROM clause_sets ORDER BY program`)
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing programs: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Changed:
		return "~"
	default:
		panic(fmt.Sprintf("snapshot: unknown change kind %d", int(k)))
	}
}

type Change struct {
	Kind ChangeKind
	Key  string
	Old  string
	New  string
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("+ %s: %s", c.Key, c.New)
	case Removed:
		return fmt.Sprintf("- %s: %s", c.Key, c.Old)
	default:
		return fmt.Sprintf("~ %s: %s => %s", c.Key, c.Old, c.New)
	}
}

// Diff compares two snapshots by entry key. Changes are sorted by key.
func Diff(old, cur []Entry) []Change {
	before := make(map[string]string, len(old))
	for _, e := range old {
		before[e.Key()] = e.Body
	}
	after := make(map[string]string, len(cur))
	for _, e := range cur {
		after[e.Key()] = e.Body
	}

	var out []Change
	for k, body := range after {
		prev, ok := before[k]
		switch {
		case !ok:
			out = append(out, Change{Kind: Added, Key: k, New: body})
		case prev != body:
			out = append(out, Change{Kind: Changed, Key: k, Old: prev, New: body})
		}
	}
	for k, body := range before {
		if _, ok := after[k]; !ok {
			out = append(out, Change{Kind: Removed, Key: k, Old: body})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
