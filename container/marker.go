package container

import "reflect"

// TypeOf returns the reflect.Type for T. It works for interface types as
// well as concrete types, which plain reflect.TypeOf cannot do.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Requirement describes one declared dependency of a unit.
type Requirement struct {
	// Type is the requested type. Interface types match any registration
	// whose declared type implements them.
	Type reflect.Type
	// Qualifier narrows the match to a named registration.
	Qualifier string
	// Required makes a missing match a resolution error. Non-required
	// requirements resolve to an explicit absence instead.
	Required bool
	// Lazy marks the requirement as explicit lazy opt-in. All requirements
	// are handed to constructors as handles either way; Lazy documents the
	// intent and is reported by introspection.
	Lazy bool
	// Collection requests every matching registration in registration order
	// instead of a single disambiguated one.
	Collection bool

	// identity short-circuits type matching for internal lookups (factory
	// products resolving their owning unit).
	identity string
}

// DepOption customizes a Requirement.
type DepOption func(*Requirement)

// Named narrows the requirement to registrations with the given qualifier.
func Named(qualifier string) DepOption {
	return func(r *Requirement) { r.Qualifier = qualifier }
}

// Optional makes the requirement resolve to an explicit absence when no
// registration matches, instead of failing.
func Optional() DepOption {
	return func(r *Requirement) { r.Required = false }
}

// Lazily marks the requirement as explicit lazy opt-in, used for
// expensive-to-construct singletons and for breaking dependency cycles.
func Lazily() DepOption {
	return func(r *Requirement) { r.Lazy = true }
}

// Collect requests all matching registrations as a collection.
func Collect() DepOption {
	return func(r *Requirement) { r.Collection = true }
}

// Dep builds a Requirement for type T.
func Dep[T any](opts ...DepOption) Requirement {
	r := Requirement{Type: TypeOf[T](), Required: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Constructor builds a unit instance from its resolved (possibly lazy)
// dependencies.
type Constructor func(deps *Deps) (any, error)

// FactoryFunc builds a factory product. owner is the instance of the
// declaring factory or configuration unit.
type FactoryFunc func(owner any, deps *Deps) (any, error)

// Route is the HTTP binding carried by a handler unit.
type Route struct {
	Method string
	Path   string
}

type markerKind int

const (
	mkComponent markerKind = iota
	mkHandler
	mkFactory
	mkConfiguration
	mkScoped
	mkQualifier
	mkPrimary
	mkTransactional
	mkConstruct
	mkRequires
	mkProvides
)

// Marker attaches one piece of declarative metadata to a unit. Markers may be
// applied in any order; classification and metadata accumulation are
// order-independent.
type Marker struct {
	kind      markerKind
	scope     Scope
	qualifier string
	route     Route
	ctor      Constructor
	reqs      []Requirement
	provide   *provideSpec
}

// Component marks the unit as a plain component.
func Component() Marker {
	return Marker{kind: mkComponent}
}

// Handler marks the unit as a routed entry point. Handler units always
// resolve with call scope, overriding any unspecified default.
func Handler(method, path string) Marker {
	return Marker{kind: mkHandler, route: Route{Method: method, Path: path}}
}

// Factory marks the unit as a producer of additional registrations.
func Factory() Marker {
	return Marker{kind: mkFactory}
}

// Configuration marks the unit as a singleton holder of factories.
func Configuration() Marker {
	return Marker{kind: mkConfiguration}
}

// Scoped sets the unit's explicit scope. Two markers asserting different
// scopes on one unit are a configuration conflict.
func Scoped(s Scope) Marker {
	return Marker{kind: mkScoped, scope: s}
}

// WithQualifier names the registration for qualified lookups.
func WithQualifier(name string) Marker {
	return Marker{kind: mkQualifier, qualifier: name}
}

// Primary marks the registration as the default among ambiguous same-type
// candidates.
func Primary() Marker {
	return Marker{kind: mkPrimary}
}

// Transactional wraps a handler's call scope with a transaction boundary:
// begin on entry, commit on success, rollback when the handler returns an
// error or panics.
func Transactional() Marker {
	return Marker{kind: mkTransactional}
}

// Construct sets the unit's constructor.
func Construct(fn Constructor) Marker {
	return Marker{kind: mkConstruct, ctor: fn}
}

// Requires declares the unit's dependencies, in the order constructors will
// address them through Deps.
func Requires(reqs ...Requirement) Marker {
	return Marker{kind: mkRequires, reqs: reqs}
}

// provideSpec captures one factory method declared on a factory or
// configuration unit.
type provideSpec struct {
	method    string
	typ       reflect.Type
	scope     Scope
	qualifier string
	primary   bool
	reqs      []Requirement
	fn        FactoryFunc
}

// ProvideOption customizes a factory method registration.
type ProvideOption func(*provideSpec)

// ProvideScoped sets the product's scope (default singleton).
func ProvideScoped(s Scope) ProvideOption {
	return func(p *provideSpec) { p.scope = s }
}

// ProvideQualifier names the product registration.
func ProvideQualifier(name string) ProvideOption {
	return func(p *provideSpec) { p.qualifier = name }
}

// ProvidePrimary marks the product registration as primary.
func ProvidePrimary() ProvideOption {
	return func(p *provideSpec) { p.primary = true }
}

// ProvideRequires declares the factory method's own dependencies.
func ProvideRequires(reqs ...Requirement) ProvideOption {
	return func(p *provideSpec) { p.reqs = reqs }
}

// Provides declares a factory method named method producing instances of T.
// Each Provides marker on a factory or configuration unit yields one
// additional registration at finalize time, independently resolvable by its
// declared return type.
func Provides[T any](method string, fn FactoryFunc, opts ...ProvideOption) Marker {
	spec := &provideSpec{
		method: method,
		typ:    TypeOf[T](),
		scope:  ScopeSingleton,
		fn:     fn,
	}
	for _, opt := range opts {
		opt(spec)
	}
	return Marker{kind: mkProvides, provide: spec}
}

// Declaration is one declared unit accumulating markers until Finalize.
type Declaration struct {
	name    string
	typ     reflect.Type
	markers []Marker
}

// Declare creates a declaration for a unit with the given identity and
// declared type.
func Declare(name string, typ reflect.Type, markers ...Marker) *Declaration {
	return &Declaration{name: name, typ: typ, markers: markers}
}

// Unit is the typed convenience form of Declare.
func Unit[T any](name string, markers ...Marker) *Declaration {
	return Declare(name, TypeOf[T](), markers...)
}

// Mark appends markers discovered after the initial declaration. Absorption
// of the new markers is deferred to Finalize, so application order never
// affects the outcome.
func (d *Declaration) Mark(markers ...Marker) *Declaration {
	d.markers = append(d.markers, markers...)
	return d
}

// Name returns the unit's identity.
func (d *Declaration) Name() string { return d.name }

// Type returns the unit's declared type.
func (d *Declaration) Type() reflect.Type { return d.typ }
