package container

import (
	"sync"

	"github.com/bloomkit/bloom/errors"
)

// session tracks the chain of identities currently under eager construction
// on one resolution path. It exists to turn what would otherwise be infinite
// recursion into a circular-dependency error. Lazy resolution after
// construction starts a fresh session, which is what lets mutually dependent
// units resolve each other on first use.
type session struct {
	path []string
}

func (s *session) push(identity string) error {
	for _, id := range s.path {
		if id == identity {
			return errors.CircularDependency(append(append([]string{}, s.path...), identity))
		}
	}
	s.path = append(s.path, identity)
	return nil
}

func (s *session) pop() {
	s.path = s.path[:len(s.path)-1]
}

// Handle is the memoizing resolution handle for one declared requirement.
// The first access resolves the target through the container and caches the
// outcome; every later access returns the same instance, absence, or error
// without touching the container again.
type Handle struct {
	m      *Manager
	req    Requirement
	origin *scopeContext
	// ctorSes is the construction path of the declaring unit, set only while
	// its constructor is running. It makes a handle forced inside the
	// constructor body participate in cycle detection; without it, a cycle
	// through a forced handle would re-enter the in-flight entry and block on
	// its sync.Once forever.
	ctorSes *session

	once   sync.Once
	value  any
	values []any
	absent bool
	err    error
}

// resolve performs the memoized resolution. ses carries the eager
// construction path when the access happens inside a constructor; a nil ses
// starts a fresh path unless the declaring unit is still constructing.
func (h *Handle) resolve(ses *session) {
	h.once.Do(func() {
		if ses == nil {
			ses = h.ctorSes
		}
		if ses == nil {
			ses = &session{}
		}
		if h.req.Collection {
			h.values, h.err = h.m.resolveCollection(h.req, h.origin, ses)
			return
		}
		v, err := h.m.resolveRequirement(h.req, h.origin, ses)
		if err != nil {
			h.err = err
			return
		}
		if v == nil {
			h.absent = true
			return
		}
		h.value = v
	})
}

// Lazy is the typed view over a resolution handle.
type Lazy[T any] struct {
	h *Handle
}

// Value resolves the target on first call and returns it. For an optional
// requirement with no match it returns the zero value with a nil error;
// check Absent to distinguish that from a real instance.
func (l Lazy[T]) Value() (T, error) {
	var zero T
	if l.h == nil {
		return zero, errors.Internal("lazy handle is not bound")
	}
	l.h.resolve(nil)
	if l.h.err != nil {
		return zero, l.h.err
	}
	if l.h.absent {
		return zero, nil
	}
	v, ok := l.h.value.(T)
	if !ok {
		return zero, errors.Internal("resolved instance does not satisfy the requested type")
	}
	return v, nil
}

// MustValue is Value for call sites where resolution failure is a
// programming error.
func (l Lazy[T]) MustValue() T {
	v, err := l.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// Absent resolves the target if needed and reports whether an optional
// requirement found no registration.
func (l Lazy[T]) Absent() bool {
	if l.h == nil {
		return true
	}
	l.h.resolve(nil)
	return l.h.absent
}

// Deps is the dependency view handed to a constructor. Each declared
// requirement is addressed by its position in the Requires marker list.
type Deps struct {
	m       *Manager
	rec     *Record
	origin  *scopeContext
	ses     *session
	handles []*Handle
}

// handleAt returns the handle for the i-th declared requirement.
func (d *Deps) handleAt(i int) (*Handle, error) {
	if i < 0 || i >= len(d.handles) {
		return nil, errors.Internal("dependency index out of range for " + d.rec.identity)
	}
	return d.handles[i], nil
}

// resolveIdentity eagerly resolves a registration by identity on the current
// construction path. Factory products use it to obtain their owning unit.
func (d *Deps) resolveIdentity(identity string) (any, error) {
	return d.m.resolveRequirement(Requirement{identity: identity, Required: true}, d.origin, d.ses)
}

// Use eagerly resolves the i-th requirement inside the constructor. The
// access participates in cycle detection: if the target is itself under
// construction on this path, Use fails with a circular-dependency error
// instead of recursing forever.
func Use[T any](d *Deps, i int) (T, error) {
	var zero T
	h, err := d.handleAt(i)
	if err != nil {
		return zero, err
	}
	h.resolve(d.ses)
	if h.err != nil {
		return zero, h.err
	}
	if h.absent {
		return zero, errors.MissingDependency(h.req.Type.String(), h.req.Qualifier)
	}
	v, ok := h.value.(T)
	if !ok {
		return zero, errors.Internal("resolved instance does not satisfy the requested type")
	}
	return v, nil
}

// UseOptional eagerly resolves the i-th requirement, reporting absence
// explicitly instead of failing.
func UseOptional[T any](d *Deps, i int) (T, bool, error) {
	var zero T
	h, err := d.handleAt(i)
	if err != nil {
		return zero, false, err
	}
	h.resolve(d.ses)
	if h.err != nil {
		return zero, false, h.err
	}
	if h.absent {
		return zero, false, nil
	}
	v, ok := h.value.(T)
	if !ok {
		return zero, false, errors.Internal("resolved instance does not satisfy the requested type")
	}
	return v, true, nil
}

// Defer returns the i-th requirement as a typed lazy handle without
// resolving it. The handle resolves on first use, on a fresh construction
// path, which is the sanctioned way to break dependency cycles.
func Defer[T any](d *Deps, i int) Lazy[T] {
	h, err := d.handleAt(i)
	if err != nil {
		return Lazy[T]{}
	}
	return Lazy[T]{h: h}
}

// UseAll eagerly resolves a collection requirement to every matching
// registration, in declaration order.
func UseAll[T any](d *Deps, i int) ([]T, error) {
	h, err := d.handleAt(i)
	if err != nil {
		return nil, err
	}
	if !h.req.Collection {
		return nil, errors.Internal("requirement " + h.req.Type.String() + " is not a collection")
	}
	h.resolve(d.ses)
	if h.err != nil {
		return nil, h.err
	}
	out := make([]T, 0, len(h.values))
	for _, v := range h.values {
		t, ok := v.(T)
		if !ok {
			return nil, errors.Internal("collection member does not satisfy the requested type")
		}
		out = append(out, t)
	}
	return out, nil
}
