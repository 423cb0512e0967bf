package container

import (
	"sync"
	"sync/atomic"

	"github.com/bloomkit/bloom/errors"
)

// Closer is implemented by instances that hold resources needing teardown
// when their scope exits. Singleton closers run at Shutdown, request closers
// at request completion, call closers when the handler invocation ends.
type Closer interface {
	Close() error
}

// entry is one instance slot in a scope context. The sync.Once gives
// at-most-once construction per scope even under concurrent resolution:
// later resolvers block until the first construction attempt finishes and
// then observe its outcome, success or failure alike.
type entry struct {
	once  sync.Once
	value any
	err   error
}

// scopeContext is one live instance store for a scope. Contexts nest
// strictly: every call context has a parent request or singleton context,
// every request context has the singleton context as parent.
type scopeContext struct {
	kind   Scope
	parent *scopeContext

	mu      sync.Mutex
	entries map[string]*entry
	// closers records teardown hooks in construction order; exit runs them
	// in reverse.
	closers []scopedCloser

	exited atomic.Bool
}

type scopedCloser struct {
	identity string
	closer   Closer
}

func newScopeContext(kind Scope, parent *scopeContext) *scopeContext {
	return &scopeContext{
		kind:    kind,
		parent:  parent,
		entries: make(map[string]*entry),
	}
}

// storeFor walks up the context chain to the store owning the given scope.
// It returns nil when no context of that scope is active, which the caller
// reports as a scope-inactive error.
func (c *scopeContext) storeFor(scope Scope) *scopeContext {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.kind == scope {
			return ctx
		}
	}
	return nil
}

// slot returns the entry for an identity, creating it on first use. The
// entry's Once then serializes construction across goroutines.
func (c *scopeContext) slot(identity string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identity]
	if !ok {
		e = &entry{}
		c.entries[identity] = e
	}
	return e
}

// cached returns the already-constructed instance for an identity without
// triggering construction.
func (c *scopeContext) cached(identity string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identity]
	if !ok {
		return nil, false
	}
	// The entry exists as soon as construction starts; only report it once
	// construction has finished successfully.
	if e.err != nil || e.value == nil {
		return nil, false
	}
	return e.value, true
}

// registerCloser arms teardown for an instance that implements Closer.
func (c *scopeContext) registerCloser(identity string, instance any) {
	closer, ok := instance.(Closer)
	if !ok {
		return
	}
	c.mu.Lock()
	c.closers = append(c.closers, scopedCloser{identity: identity, closer: closer})
	c.mu.Unlock()
}

// exit tears the context down: every closer runs exactly once, in reverse
// construction order, and every failure is collected. A second exit is a
// no-op. The aggregate error is nil when all hooks succeeded.
func (c *scopeContext) exit() error {
	if !c.exited.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var failures []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].closer.Close(); err != nil {
			failures = append(failures, errors.Internal(
				"teardown of "+closers[i].identity+" failed").WithCause(err))
		}
	}
	return errors.NewTeardownError(string(c.kind), failures)
}
