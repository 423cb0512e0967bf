package container

import (
	"reflect"
	"sort"

	"github.com/bloomkit/bloom/errors"
)

// registry is the frozen lookup structure built at Finalize. It is read-only
// after construction and safe for concurrent use.
type registry struct {
	// order preserves declaration order for collection injection.
	order []*Record
	byID  map[string]*Record
}

func newRegistry() *registry {
	return &registry{byID: make(map[string]*Record)}
}

// add registers a record, rejecting duplicate identities.
func (g *registry) add(rec *Record) error {
	if _, dup := g.byID[rec.identity]; dup {
		return errors.ConfigurationConflict(rec.identity, "identity registered twice")
	}
	g.byID[rec.identity] = rec
	g.order = append(g.order, rec)
	return nil
}

// validate enforces the startup-fatal uniqueness rules: for every
// (type, qualifier) pair with a non-empty qualifier there is at most one
// registration, and for every type there is at most one primary.
func (g *registry) validate() error {
	type key struct {
		typ       reflect.Type
		qualifier string
	}
	qualified := make(map[key][]string)
	primaries := make(map[reflect.Type][]string)

	for _, rec := range g.order {
		if rec.qualifier != "" {
			k := key{rec.typ, rec.qualifier}
			qualified[k] = append(qualified[k], rec.identity)
		}
		if rec.primary {
			primaries[rec.typ] = append(primaries[rec.typ], rec.identity)
		}
	}

	for k, ids := range qualified {
		if len(ids) > 1 {
			sort.Strings(ids)
			return errors.ConfigurationConflict(ids[0],
				"qualifier "+k.qualifier+" bound to more than one registration of "+k.typ.String())
		}
	}
	for typ, ids := range primaries {
		if len(ids) > 1 {
			sort.Strings(ids)
			return errors.AmbiguousPrimary(typ.String(), ids)
		}
	}
	return nil
}

// byIdentity returns the record with the given identity.
func (g *registry) byIdentity(identity string) (*Record, bool) {
	rec, ok := g.byID[identity]
	return rec, ok
}

// matches reports whether a registration can satisfy a requested type: exact
// type match, or the registered type implements a requested interface.
func matches(registered, requested reflect.Type) bool {
	if registered == requested {
		return true
	}
	if requested.Kind() == reflect.Interface {
		return registered.Implements(requested)
	}
	return false
}

// candidates returns every registration matching the requirement's type and
// qualifier, in declaration order.
func (g *registry) candidates(req Requirement) []*Record {
	var out []*Record
	for _, rec := range g.order {
		if !matches(rec.typ, req.Type) {
			continue
		}
		if req.Qualifier != "" && rec.qualifier != req.Qualifier {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// selectOne disambiguates a single-valued requirement. Precedence: a
// qualifier restricts the candidate set first; a sole candidate wins; among
// several, a sole primary wins, more than one primary fails as ambiguous
// primary, and none is ambiguous. No match yields a missing-dependency error
// for required requirements and (nil, nil) for optional ones.
func (g *registry) selectOne(req Requirement) (*Record, error) {
	if req.identity != "" {
		rec, ok := g.byID[req.identity]
		if !ok {
			return nil, errors.Internal("internal lookup for unknown identity " + req.identity)
		}
		return rec, nil
	}

	cands := g.candidates(req)
	switch len(cands) {
	case 0:
		if !req.Required {
			return nil, nil
		}
		return nil, errors.MissingDependency(req.Type.String(), req.Qualifier)
	case 1:
		return cands[0], nil
	}

	// validate() guarantees at most one primary per exact type, but an
	// interface requirement can gather primaries of different concrete
	// types into one candidate set.
	var primaries []*Record
	for _, rec := range cands {
		if rec.primary {
			primaries = append(primaries, rec)
		}
	}
	if len(primaries) == 1 {
		return primaries[0], nil
	}
	if len(primaries) > 1 {
		ids := make([]string, len(primaries))
		for i, rec := range primaries {
			ids[i] = rec.identity
		}
		return nil, errors.AmbiguousPrimary(req.Type.String(), ids)
	}

	ids := make([]string, len(cands))
	for i, rec := range cands {
		ids[i] = rec.identity
	}
	return nil, errors.AmbiguousDependency(req.Type.String(), ids)
}

// handlers returns every handler registration in declaration order.
func (g *registry) handlers() []*Record {
	var out []*Record
	for _, rec := range g.order {
		if rec.kind == KindHandler {
			out = append(out, rec)
		}
	}
	return out
}

// singletons returns every singleton registration in declaration order.
func (g *registry) singletons() []*Record {
	var out []*Record
	for _, rec := range g.order {
		if rec.scope == ScopeSingleton {
			out = append(out, rec)
		}
	}
	return out
}
