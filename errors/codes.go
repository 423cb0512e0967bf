package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Startup-time errors. A configuration conflict always aborts application
// start before any traffic is accepted.
const (
	// ErrCodeConfigurationConflict indicates incompatible markers on one
	// declared unit (two different explicit scopes, incomparable kinds, ...).
	ErrCodeConfigurationConflict ErrorCode = "CONFIGURATION_CONFLICT"
	// ErrCodeInvalidConfig indicates a malformed service configuration file.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Resolution-time errors. These are scoped to the requesting construction
// and surface to the dispatch layer as a failed handler resolution.
const (
	// ErrCodeAmbiguousDependency indicates multiple matching candidates with
	// no primary flag and no qualifier.
	ErrCodeAmbiguousDependency ErrorCode = "AMBIGUOUS_DEPENDENCY"
	// ErrCodeAmbiguousPrimary indicates more than one candidate carries the
	// primary flag.
	ErrCodeAmbiguousPrimary ErrorCode = "AMBIGUOUS_PRIMARY"
	// ErrCodeMissingDependency indicates no match for a required dependency.
	ErrCodeMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	// ErrCodeCircularDependency indicates an eager construction cycle. Cycles
	// are supported through lazy handles; this fires only when both sides of
	// a cycle resolve eagerly inside their constructors.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeUnknownHandler indicates a routed handler identity with no
	// matching handler registration.
	ErrCodeUnknownHandler ErrorCode = "UNKNOWN_HANDLER"
	// ErrCodeScopeInactive indicates a resolution against a scope with no
	// active context (e.g. a request-scoped record outside a request).
	ErrCodeScopeInactive ErrorCode = "SCOPE_INACTIVE"
)

// Lifecycle errors.
const (
	// ErrCodeTeardownFailed aggregates destroy-hook failures at scope exit.
	ErrCodeTeardownFailed ErrorCode = "TEARDOWN_FAILED"
	// ErrCodeConstructionFailed wraps a constructor error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeInternal indicates an internal framework error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var startupCodes = map[ErrorCode]bool{
	ErrCodeConfigurationConflict: true,
	ErrCodeInvalidConfig:         true,
}

// IsStartupCode reports whether the code is fatal at application start.
func IsStartupCode(code ErrorCode) bool {
	return startupCodes[code]
}
