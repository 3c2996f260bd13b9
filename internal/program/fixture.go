package program

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/traitir/internal/config"
	"github.com/funvibe/traitir/internal/ir"
)

// fixture is the on-disk form of a program. Generic parameters are
// written by name; lifetimes carry a leading quote ('a).
type fixture struct {
	// Format is the fixture format version, checked against
	// config.SupportedFormat. Defaults to config.DefaultFormat.
	Format string `yaml:"format,omitempty"`

	// Name identifies the program in snapshots. Defaults to the file
	// name without its extension.
	Name string `yaml:"name,omitempty"`

	Structs      []structSpec      `yaml:"structs,omitempty"`
	Traits       []traitSpec       `yaml:"traits,omitempty"`
	Impls        []implSpec        `yaml:"impls,omitempty"`
	DefaultImpls []defaultImplSpec `yaml:"default_impls,omitempty"`
}

type structSpec struct {
	Name        string      `yaml:"name"`
	Params      []string    `yaml:"params,omitempty"`
	Fields      []typeExpr  `yaml:"fields,omitempty"`
	Where       []whereSpec `yaml:"where,omitempty"`
	Upstream    bool        `yaml:"upstream,omitempty"`
	Fundamental bool        `yaml:"fundamental,omitempty"`
}

type traitSpec struct {
	Name string `yaml:"name"`

	// Params excludes Self, which is always the first parameter.
	Params []string    `yaml:"params,omitempty"`
	Where  []whereSpec `yaml:"where,omitempty"`

	// Flags is any of auto, marker, upstream, fundamental,
	// non_enumerable, coinductive.
	Flags []string `yaml:"flags,omitempty"`

	// WellKnown is sized, copy or clone. Other values are ignored.
	WellKnown string `yaml:"well_known,omitempty"`

	AssocTypes []assocTypeSpec `yaml:"assoc_types,omitempty"`
}

type assocTypeSpec struct {
	Name   string      `yaml:"name"`
	Params []string    `yaml:"params,omitempty"`
	Bounds []boundSpec `yaml:"bounds,omitempty"`
	Where  []whereSpec `yaml:"where,omitempty"`
}

type implSpec struct {
	Params []string `yaml:"params,omitempty"`
	Trait  string   `yaml:"trait"`
	Self   typeExpr `yaml:"self"`

	// Args are the trait arguments after Self.
	Args     []typeExpr  `yaml:"args,omitempty"`
	Negative bool        `yaml:"negative,omitempty"`
	External bool        `yaml:"external,omitempty"`
	Where    []whereSpec `yaml:"where,omitempty"`

	AssocValues []assocValueSpec `yaml:"assoc_values,omitempty"`
}

type assocValueSpec struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Value  typeExpr `yaml:"value"`
}

type defaultImplSpec struct {
	Params     []string   `yaml:"params,omitempty"`
	Trait      string     `yaml:"trait"`
	Self       typeExpr   `yaml:"self"`
	Args       []typeExpr `yaml:"args,omitempty"`
	Accessible []typeExpr `yaml:"accessible,omitempty"`
}

// whereSpec is either
//
//	{implemented: Trait, self: T, args: [...]}
//	{project: Trait::Assoc, self: T, args: [...], params: [...], value: U}
//
// optionally quantified with for: [U, 'b].
type whereSpec struct {
	For         []string   `yaml:"for,omitempty"`
	Implemented string     `yaml:"implemented,omitempty"`
	Project     string     `yaml:"project,omitempty"`
	Self        *typeExpr  `yaml:"self,omitempty"`
	Args        []typeExpr `yaml:"args,omitempty"`
	Params      []typeExpr `yaml:"params,omitempty"`
	Value       *typeExpr  `yaml:"value,omitempty"`
}

// boundSpec is an inline bound on an associated type:
//
//	{trait: Clone}
//	{trait: Iterator, project: Item, value: T}
//
// optionally quantified with for: [...].
type boundSpec struct {
	For     []string   `yaml:"for,omitempty"`
	Trait   string     `yaml:"trait"`
	Args    []typeExpr `yaml:"args,omitempty"`
	Project string     `yaml:"project,omitempty"`
	Params  []typeExpr `yaml:"params,omitempty"`
	Value   *typeExpr  `yaml:"value,omitempty"`
}

// typeExpr keeps the raw node; it is resolved once the scope it appears
// in is known. Forms:
//
//	T | 'a | 'static | Vec | u32
//	{apply: Vec, args: [T]}
//	{tuple: [T, u32]}
//	{project: Iterator::Item, self: T, args: [...], params: [...]}
type typeExpr struct {
	node *yaml.Node
}

func (t *typeExpr) UnmarshalYAML(value *yaml.Node) error {
	n := *value
	t.node = &n
	return nil
}

// Load reads and parses a program fixture. Terms are built with in; a
// nil interner means the heap interner.
func Load(path string, in ir.Interner) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Parse(data, path, in)
}

// Parse parses fixture content from bytes.
// The path argument is used for error messages and the default name.
func Parse(data []byte, path string, in ir.Interner) (*Program, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	fx.setDefaults(path)
	if err := fx.validate(path); err != nil {
		return nil, err
	}
	if in == nil {
		in = ir.NewHeapInterner()
	}
	return build(&fx, path, in)
}

// FindFixture searches for a program fixture starting from dir and
// walking up to parent directories.
// Returns "" and a nil error when none is found.
func FindFixture(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.FixtureFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// IsFixtureFile reports whether path has a recognized fixture extension.
func IsFixtureFile(path string) bool {
	for _, ext := range config.FixtureFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (fx *fixture) setDefaults(path string) {
	if fx.Format == "" {
		fx.Format = config.DefaultFormat
	}
	if fx.Name == "" {
		base := filepath.Base(path)
		for _, ext := range config.FixtureFileExtensions {
			if strings.HasSuffix(base, ext) {
				base = strings.TrimSuffix(base, ext)
				break
			}
		}
		fx.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
}

var knownFlags = map[string]bool{
	"auto": true, "marker": true, "upstream": true,
	"fundamental": true, "non_enumerable": true, "coinductive": true,
}

// validate checks things that do not need name resolution.
func (fx *fixture) validate(path string) error {
	constraint, err := semver.NewConstraint(config.SupportedFormat)
	if err != nil {
		return fmt.Errorf("supported format constraint: %w", err)
	}
	version, err := semver.NewVersion(fx.Format)
	if err != nil {
		return &FormatError{Path: path, Format: fx.Format, Reason: err.Error()}
	}
	if !constraint.Check(version) {
		return &FormatError{Path: path, Format: fx.Format, Reason: "not " + config.SupportedFormat}
	}

	for i, s := range fx.Structs {
		if s.Name == "" {
			return &ResolveError{Path: path, Where: fmt.Sprintf("structs[%d]", i), Reason: "name is required"}
		}
	}
	for i, tr := range fx.Traits {
		where := fmt.Sprintf("traits[%d]", i)
		if tr.Name == "" {
			return &ResolveError{Path: path, Where: where, Reason: "name is required"}
		}
		if strings.Contains(tr.Name, config.AssocSeparator) {
			return &ResolveError{Path: path, Where: where, Reason: fmt.Sprintf("trait name %q contains %q", tr.Name, config.AssocSeparator)}
		}
		for _, p := range tr.Params {
			if p == config.SelfParamName {
				return &ResolveError{Path: path, Where: where, Reason: "Self is implicit and cannot be declared"}
			}
		}
		for _, f := range tr.Flags {
			if !knownFlags[f] {
				return &ResolveError{Path: path, Where: where, Reason: fmt.Sprintf("unknown flag %q", f)}
			}
		}
		for j, at := range tr.AssocTypes {
			atWhere := fmt.Sprintf("%s.assoc_types[%d]", where, j)
			if at.Name == "" {
				return &ResolveError{Path: path, Where: atWhere, Reason: "name is required"}
			}
			if strings.Contains(at.Name, config.AssocSeparator) {
				return &ResolveError{Path: path, Where: atWhere, Reason: fmt.Sprintf("associated type name %q contains %q", at.Name, config.AssocSeparator)}
			}
		}
	}
	for i, im := range fx.Impls {
		where := fmt.Sprintf("impls[%d]", i)
		if im.Trait == "" {
			return &ResolveError{Path: path, Where: where, Reason: "trait is required"}
		}
		if im.Self.node == nil {
			return &ResolveError{Path: path, Where: where, Reason: "self is required"}
		}
		if im.Negative && len(im.AssocValues) > 0 {
			return &ResolveError{Path: path, Where: where, Reason: "negative impls cannot define associated types"}
		}
	}
	for i, d := range fx.DefaultImpls {
		where := fmt.Sprintf("default_impls[%d]", i)
		if d.Trait == "" || d.Self.node == nil {
			return &ResolveError{Path: path, Where: where, Reason: "trait and self are required"}
		}
	}
	return nil
}
