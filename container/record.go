package container

import (
	"fmt"
	"reflect"

	"github.com/bloomkit/bloom/errors"
)

// Record is the finalized, immutable registration of one declared unit (or
// one factory product). Records are created once at finalize time and are
// read-only process-wide state afterwards.
type Record struct {
	identity      string
	typ           reflect.Type
	kind          Kind
	scope         Scope
	qualifier     string
	primary       bool
	transactional bool
	route         *Route
	requirements  []Requirement
	construct     Constructor
	// owner is the identity of the declaring factory/configuration unit for
	// product records, empty otherwise.
	owner string
}

// Identity returns the unique registration identity.
func (r *Record) Identity() string { return r.identity }

// Type returns the declared type.
func (r *Record) Type() reflect.Type { return r.typ }

// Kind returns the finalized container kind.
func (r *Record) Kind() Kind { return r.kind }

// Scope returns the resolution scope.
func (r *Record) Scope() Scope { return r.scope }

// Qualifier returns the registration qualifier, if any.
func (r *Record) Qualifier() string { return r.qualifier }

// IsPrimary reports whether the registration carries the primary flag.
func (r *Record) IsPrimary() bool { return r.primary }

// IsTransactional reports whether the handler composes a transaction
// boundary with its call scope.
func (r *Record) IsTransactional() bool { return r.transactional }

// Route returns the HTTP binding of a handler record, nil otherwise.
func (r *Record) Route() *Route { return r.route }

// Requirements returns the declared dependency requirements.
func (r *Record) Requirements() []Requirement {
	out := make([]Requirement, len(r.requirements))
	copy(out, r.requirements)
	return out
}

// finalize classifies the declaration and produces its record plus one
// additional record per factory method. The classification is the lattice
// join over all kind markers, so any permutation of the marker list yields
// the same result.
func (d *Declaration) finalize() (*Record, []*Record, error) {
	if d.name == "" {
		return nil, nil, errors.ConfigurationConflict("(unnamed)", "declaration has no identity")
	}

	rec := &Record{identity: d.name, typ: d.typ, kind: KindComponent}

	var (
		explicitScope Scope
		route         *Route
		transactional bool
		provides      []*provideSpec
	)

	for _, m := range d.markers {
		switch m.kind {
		case mkComponent:
			// Component is the lattice bottom; joining it is a no-op.

		case mkHandler:
			joined, ok := joinKinds(rec.kind, KindHandler)
			if !ok {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("kinds %s and %s are incomparable", rec.kind, KindHandler))
			}
			rec.kind = joined
			if route != nil && *route != m.route {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("handler routes %s %s and %s %s disagree",
						route.Method, route.Path, m.route.Method, m.route.Path))
			}
			r := m.route
			route = &r

		case mkFactory:
			joined, ok := joinKinds(rec.kind, KindFactory)
			if !ok {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("kinds %s and %s are incomparable", rec.kind, KindFactory))
			}
			rec.kind = joined

		case mkConfiguration:
			joined, ok := joinKinds(rec.kind, KindConfiguration)
			if !ok {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("kinds %s and %s are incomparable", rec.kind, KindConfiguration))
			}
			rec.kind = joined

		case mkScoped:
			if !m.scope.valid() {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("unknown scope %q", m.scope))
			}
			if explicitScope != "" && explicitScope != m.scope {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("explicit scopes %s and %s disagree", explicitScope, m.scope))
			}
			explicitScope = m.scope

		case mkQualifier:
			if rec.qualifier != "" && rec.qualifier != m.qualifier {
				return nil, nil, errors.ConfigurationConflict(d.name,
					fmt.Sprintf("qualifiers %q and %q disagree", rec.qualifier, m.qualifier))
			}
			rec.qualifier = m.qualifier

		case mkPrimary:
			rec.primary = true

		case mkTransactional:
			transactional = true

		case mkConstruct:
			if rec.construct != nil {
				return nil, nil, errors.ConfigurationConflict(d.name, "multiple constructors")
			}
			rec.construct = m.ctor

		case mkRequires:
			rec.requirements = append(rec.requirements, m.reqs...)

		case mkProvides:
			provides = append(provides, m.provide)
		}
	}

	// Scope resolution. Handlers always run in call scope regardless of any
	// explicit scope marker; configurations are singleton holders.
	switch rec.kind {
	case KindHandler:
		rec.scope = ScopeCall
		rec.route = route
		rec.transactional = transactional
	case KindConfiguration:
		if explicitScope != "" && explicitScope != ScopeSingleton {
			return nil, nil, errors.ConfigurationConflict(d.name,
				fmt.Sprintf("a configuration holder is singleton, explicit scope %s conflicts", explicitScope))
		}
		rec.scope = ScopeSingleton
	default:
		if explicitScope != "" {
			rec.scope = explicitScope
		} else {
			rec.scope = ScopeSingleton
		}
	}

	if transactional && rec.kind != KindHandler {
		return nil, nil, errors.ConfigurationConflict(d.name,
			"transactional marker requires a handler unit")
	}
	if len(provides) > 0 && rec.kind != KindFactory && rec.kind != KindConfiguration {
		return nil, nil, errors.ConfigurationConflict(d.name,
			"factory methods require a factory or configuration unit")
	}
	if rec.construct == nil {
		return nil, nil, errors.ConfigurationConflict(d.name, "unit has no constructor")
	}

	products := make([]*Record, 0, len(provides))
	seen := make(map[string]bool, len(provides))
	for _, spec := range provides {
		if spec.method == "" || spec.fn == nil {
			return nil, nil, errors.ConfigurationConflict(d.name, "factory method needs a name and a function")
		}
		if seen[spec.method] {
			return nil, nil, errors.ConfigurationConflict(d.name,
				fmt.Sprintf("duplicate factory method %q", spec.method))
		}
		seen[spec.method] = true
		if !spec.scope.valid() {
			return nil, nil, errors.ConfigurationConflict(d.name,
				fmt.Sprintf("factory method %q has unknown scope %q", spec.method, spec.scope))
		}
		products = append(products, productRecord(rec, spec))
	}

	return rec, products, nil
}

// productRecord builds the registration for one factory method. Its
// constructor resolves the owning unit first, then invokes the method with
// the product's own dependencies.
func productRecord(owner *Record, spec *provideSpec) *Record {
	fn := spec.fn
	ownerID := owner.identity
	return &Record{
		identity:     ownerID + "." + spec.method,
		typ:          spec.typ,
		kind:         KindComponent,
		scope:        spec.scope,
		qualifier:    spec.qualifier,
		primary:      spec.primary,
		requirements: spec.reqs,
		owner:        ownerID,
		construct: func(deps *Deps) (any, error) {
			holder, err := deps.resolveIdentity(ownerID)
			if err != nil {
				return nil, err
			}
			return fn(holder, deps)
		},
	}
}
