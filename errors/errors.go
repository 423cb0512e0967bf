// Package errors provides unified error handling for the bloom container
// runtime. It implements structured error types with error codes, HTTP status
// mapping, and an aggregate type for teardown failures.
package errors

import (
	"fmt"
	"net/http"
)

// ContainerError is the unified framework error type.
type ContainerError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *ContainerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ContainerError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *ContainerError) WithCause(cause error) *ContainerError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *ContainerError) WithDetail(key string, value any) *ContainerError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new ContainerError.
func New(code ErrorCode, message string, httpStatus int) *ContainerError {
	return &ContainerError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Taxonomy Constructors ---

// ConfigurationConflict creates the startup-fatal error for incompatible
// markers on one declared unit.
func ConfigurationConflict(identity, reason string) *ContainerError {
	return &ContainerError{
		Code:       ErrCodeConfigurationConflict,
		Message:    fmt.Sprintf("conflicting markers on %q: %s", identity, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"identity": identity},
	}
}

// AmbiguousDependency creates the error for an unqualified request matching
// multiple registrations none of which is primary.
func AmbiguousDependency(typeName string, candidates []string) *ContainerError {
	return &ContainerError{
		Code: ErrCodeAmbiguousDependency,
		Message: fmt.Sprintf("multiple registrations match type %s: %v; mark one primary or use a qualifier",
			typeName, candidates),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"type": typeName, "candidates": candidates},
	}
}

// AmbiguousPrimary creates the error for more than one primary registration
// of the same type.
func AmbiguousPrimary(typeName string, primaries []string) *ContainerError {
	return &ContainerError{
		Code:       ErrCodeAmbiguousPrimary,
		Message:    fmt.Sprintf("multiple primary registrations for type %s: %v", typeName, primaries),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"type": typeName, "primaries": primaries},
	}
}

// MissingDependency creates the error for a required dependency with no match.
func MissingDependency(typeName, qualifier string) *ContainerError {
	msg := fmt.Sprintf("no registration for required type %s", typeName)
	details := map[string]any{"type": typeName}
	if qualifier != "" {
		msg += fmt.Sprintf(" (qualifier %q)", qualifier)
		details["qualifier"] = qualifier
	}
	return &ContainerError{
		Code:       ErrCodeMissingDependency,
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
	}
}

// CircularDependency creates the error for an eager construction cycle.
func CircularDependency(path []string) *ContainerError {
	return &ContainerError{
		Code: ErrCodeCircularDependency,
		Message: fmt.Sprintf("eager construction cycle: %v; break the cycle with a lazy handle",
			path),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"path": path},
	}
}

// UnknownHandler creates the error for a routed identity with no handler
// registration.
func UnknownHandler(identity string) *ContainerError {
	return &ContainerError{
		Code:       ErrCodeUnknownHandler,
		Message:    fmt.Sprintf("no handler registered for identity %q", identity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"identity": identity},
	}
}

// ScopeInactive creates the error for a resolution against a scope that has
// no active context.
func ScopeInactive(scope, identity string) *ContainerError {
	return &ContainerError{
		Code: ErrCodeScopeInactive,
		Message: fmt.Sprintf("cannot resolve %q: no active %s scope in the current context",
			identity, scope),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"scope": scope, "identity": identity},
	}
}

// ConstructionFailed wraps a constructor error for the given identity.
func ConstructionFailed(identity string, cause error) *ContainerError {
	return &ContainerError{
		Code:       ErrCodeConstructionFailed,
		Message:    fmt.Sprintf("constructing %q failed", identity),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"identity": identity},
		Cause:      cause,
	}
}

// Internal creates a generic internal framework error.
func Internal(message string) *ContainerError {
	return &ContainerError{
		Code:       ErrCodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}
