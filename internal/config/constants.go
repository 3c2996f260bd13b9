package config

const FixtureFileExt = ".tir.yaml"

// FixtureFileExtensions are all recognized program fixture extensions
var FixtureFileExtensions = []string{".tir.yaml", ".tir.yml", ".traitir.yaml"}

// FixtureFileNames are looked up when searching a directory tree for a program.
var FixtureFileNames = []string{"program.tir.yaml", "program.tir.yml"}

// Fixture format versions this build understands.
const (
	SupportedFormat = "^1.0"
	DefaultFormat   = "1.0"
)

// Names with fixed meaning in fixtures
const (
	SelfParamName      = "Self"
	StaticLifetimeName = "'static"
	LifetimePrefix     = "'"
	AssocSeparator     = "::"
)

// Well-known trait tags, matched case-insensitively
const (
	SizedTraitName = "sized"
	CopyTraitName  = "copy"
	CloneTraitName = "clone"
)

// Builtin scalar type names accepted without declaration
var ScalarTypeNames = []string{
	"bool", "char", "str",
	"i8", "i16", "i32", "i64", "i128", "isize",
	"u8", "u16", "u32", "u64", "u128", "usize",
	"f32", "f64",
}

// DefaultWorkers bounds concurrent lowering when the caller passes 0.
const DefaultWorkers = 8
