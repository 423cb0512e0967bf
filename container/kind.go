package container

// Kind is the runtime classification of a declared unit.
type Kind int

const (
	// KindComponent is a plain injectable component.
	KindComponent Kind = iota
	// KindHandler is a callable entry point reachable from routing. Handler
	// units always resolve with call scope.
	KindHandler
	// KindFactory produces additional registrations, one per declared
	// factory method.
	KindFactory
	// KindConfiguration is a holder of factories, scanned at startup.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindHandler:
		return "handler"
	case KindFactory:
		return "factory"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// joinKinds computes the least upper bound of two kinds over the lattice
//
//	component ⊏ handler
//	component ⊏ factory ⊏ configuration
//
// The join is commutative and associative, so the final classification of a
// unit does not depend on the order its markers were applied. Incomparable
// pairs (handler vs factory, handler vs configuration) have no join and
// report ok=false.
func joinKinds(a, b Kind) (Kind, bool) {
	if a == b {
		return a, true
	}
	if a == KindComponent {
		return b, true
	}
	if b == KindComponent {
		return a, true
	}
	if (a == KindFactory && b == KindConfiguration) || (a == KindConfiguration && b == KindFactory) {
		return KindConfiguration, true
	}
	return KindComponent, false
}

// Scope is the lifetime policy governing how long a resolved instance is
// reused.
type Scope string

const (
	// ScopeSingleton instances live for the whole process. They are
	// constructed during Startup, before any traffic, and torn down at
	// Shutdown.
	ScopeSingleton Scope = "singleton"
	// ScopeRequest instances are shared by all resolutions within one
	// inbound HTTP request and torn down at request completion.
	ScopeRequest Scope = "request"
	// ScopeCall instances live for a single handler invocation and are torn
	// down when it completes, including on failure.
	ScopeCall Scope = "call"
)

// valid reports whether s is one of the three known scopes.
func (s Scope) valid() bool {
	return s == ScopeSingleton || s == ScopeRequest || s == ScopeCall
}
