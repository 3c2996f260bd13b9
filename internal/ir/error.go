package ir

import "fmt"

// ScopeError reports a bound variable that does not resolve inside the
// scopes it was checked against.
type ScopeError struct {
	Var    BoundVar
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("bound variable %s: %s", e.Var, e.Reason)
}

func NewScopeError(bv BoundVar, format string, args ...any) *ScopeError {
	return &ScopeError{Var: bv, Reason: fmt.Sprintf(format, args...)}
}
