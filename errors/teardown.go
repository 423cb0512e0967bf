package errors

import (
	"fmt"
	"strings"
)

// TeardownError aggregates destroy-hook failures collected during scope exit.
// All teardown hooks run even when one fails; the failures are surfaced
// together to the caller of exit.
type TeardownError struct {
	// Scope is the scope kind whose exit produced the failures.
	Scope string
	// Failures holds one error per failed hook, in teardown order.
	Failures []error
}

// Error returns the string representation of the aggregate.
func (e *TeardownError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %d teardown hook(s) failed in %s scope: %s",
		ErrCodeTeardownFailed, len(e.Failures), e.Scope, strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is/errors.As.
func (e *TeardownError) Unwrap() []error { return e.Failures }

// NewTeardownError builds the aggregate, returning nil when no hook failed.
func NewTeardownError(scope string, failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	return &TeardownError{Scope: scope, Failures: failures}
}
