package program

import "fmt"

// FormatError indicates a fixture whose format version this build does
// not support.
type FormatError struct {
	Path   string
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: format %q: %s", e.Path, e.Format, e.Reason)
}

// ResolveError indicates a name or shape problem at a specific place in
// a fixture.
type ResolveError struct {
	Path   string
	Where  string
	Line   int
	Reason string
}

func (e *ResolveError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Where, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Where, e.Reason)
}
