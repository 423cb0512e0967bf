package container

import (
	"context"
	"sync"

	"github.com/bloomkit/bloom/errors"
	"github.com/bloomkit/bloom/logger"
)

// Manager owns the registration lifecycle: declarations accumulate until
// Finalize classifies them and freezes the registry, Startup constructs the
// singletons, and Shutdown tears them down in reverse construction order.
type Manager struct {
	log *logger.Logger

	mu           sync.Mutex
	declarations []*Declaration
	finalized    bool

	reg       *registry
	singleton *scopeContext
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger the container logs lifecycle events to.
func WithLogger(log *logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates an empty container manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.GetGlobalLogger()
	}
	m.log = m.log.WithComponent("container")
	return m
}

// Declare adds a unit declaration. Declarations are accepted in any order
// and only classified at Finalize, so markers discovered late never change
// the outcome.
func (m *Manager) Declare(decls ...*Declaration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalized {
		return errors.Internal("cannot declare units after Finalize")
	}
	m.declarations = append(m.declarations, decls...)
	return nil
}

// Finalize classifies every declaration, expands factory methods into
// product registrations, validates qualifier and primary uniqueness, and
// freezes the registry. Any configuration conflict aborts startup here,
// before traffic is accepted.
func (m *Manager) Finalize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalized {
		return errors.Internal("container already finalized")
	}

	reg := newRegistry()
	for _, d := range m.declarations {
		rec, products, err := d.finalize()
		if err != nil {
			return err
		}
		if err := reg.add(rec); err != nil {
			return err
		}
		for _, p := range products {
			if err := reg.add(p); err != nil {
				return err
			}
		}
	}
	if err := reg.validate(); err != nil {
		return err
	}

	m.reg = reg
	m.singleton = newScopeContext(ScopeSingleton, nil)
	m.finalized = true

	m.log.Info("container finalized", logger.Fields(
		logger.FieldOperation, "finalize",
		"registrations", len(reg.order),
		"handlers", len(reg.handlers()),
	))
	return nil
}

// Startup eagerly constructs every singleton registration in declaration
// order. A construction failure aborts startup with the failing identity.
func (m *Manager) Startup(ctx context.Context) error {
	if !m.isFinalized() {
		return errors.Internal("Startup before Finalize")
	}
	for _, rec := range m.reg.singletons() {
		if _, err := m.getOrCreate(rec, m.singleton, &session{}); err != nil {
			return err
		}
	}
	m.log.Info("container started", logger.Fields(
		logger.FieldOperation, "startup",
		"singletons", len(m.reg.singletons()),
	))
	return nil
}

// Shutdown tears the singleton scope down. Every destroy hook runs in
// reverse construction order; failures are aggregated, never skipped.
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.isFinalized() {
		return nil
	}
	err := m.singleton.exit()
	if err != nil {
		m.log.WithError(err).Error("singleton teardown reported failures",
			logger.Fields(logger.FieldOperation, "shutdown"))
		return err
	}
	m.log.Info("container stopped", logger.Fields(logger.FieldOperation, "shutdown"))
	return nil
}

func (m *Manager) isFinalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}

// Registrations returns every finalized record in declaration order.
func (m *Manager) Registrations() []*Record {
	if !m.isFinalized() {
		return nil
	}
	out := make([]*Record, len(m.reg.order))
	copy(out, m.reg.order)
	return out
}

// Handlers returns every handler registration, for route mounting.
func (m *Manager) Handlers() []*Record {
	if !m.isFinalized() {
		return nil
	}
	return m.reg.handlers()
}

// Registration returns the record for an identity.
func (m *Manager) Registration(identity string) (*Record, bool) {
	if !m.isFinalized() {
		return nil, false
	}
	return m.reg.byIdentity(identity)
}

// --- scope propagation through context.Context ---

type scopeCtxKey struct{}

// activeScope returns the innermost live scope context carried by ctx,
// falling back to the singleton context.
func (m *Manager) activeScope(ctx context.Context) *scopeContext {
	if sc, ok := ctx.Value(scopeCtxKey{}).(*scopeContext); ok && !sc.exited.Load() {
		return sc
	}
	return m.singleton
}

func withScope(ctx context.Context, sc *scopeContext) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, sc)
}

// ScopeToken identifies one entered scope for its matching exit call.
type ScopeToken struct {
	sc *scopeContext
}

// EnterRequestScope opens a request-scoped instance store nested in the
// singleton scope and returns a derived context carrying it. The returned
// token closes the scope; exits are idempotent.
func (m *Manager) EnterRequestScope(ctx context.Context) (context.Context, *ScopeToken, error) {
	if !m.isFinalized() {
		return ctx, nil, errors.Internal("EnterRequestScope before Finalize")
	}
	sc := newScopeContext(ScopeRequest, m.singleton)
	return withScope(ctx, sc), &ScopeToken{sc: sc}, nil
}

// ExitRequestScope tears the request scope down, running destroy hooks in
// reverse construction order and aggregating failures. Calling it twice for
// one token is a no-op.
func (m *Manager) ExitRequestScope(token *ScopeToken) error {
	if token == nil || token.sc == nil {
		return nil
	}
	if token.sc.kind != ScopeRequest {
		return errors.Internal("token does not identify a request scope")
	}
	return token.sc.exit()
}

// --- resolution core ---

// resolveRequirement resolves one single-valued requirement against the
// registry, honoring qualifier and primary precedence. An optional
// requirement with no match resolves to nil with a nil error.
func (m *Manager) resolveRequirement(req Requirement, origin *scopeContext, ses *session) (any, error) {
	rec, err := m.reg.selectOne(req)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return m.getOrCreate(rec, origin, ses)
}

// resolveCollection resolves every matching registration in declaration
// order. An empty result is not an error.
func (m *Manager) resolveCollection(req Requirement, origin *scopeContext, ses *session) ([]any, error) {
	cands := m.reg.candidates(req)
	out := make([]any, 0, len(cands))
	for _, rec := range cands {
		v, err := m.getOrCreate(rec, origin, ses)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// getOrCreate returns the instance for a record from its owning scope store,
// constructing it at most once per store. The session check runs before the
// store slot is entered, so a same-path reentrant resolution fails with a
// circular-dependency error instead of deadlocking on the slot.
func (m *Manager) getOrCreate(rec *Record, origin *scopeContext, ses *session) (any, error) {
	store := origin.storeFor(rec.scope)
	if store == nil {
		return nil, errors.ScopeInactive(string(rec.scope), rec.identity)
	}

	if err := ses.push(rec.identity); err != nil {
		return nil, err
	}
	defer ses.pop()

	e := store.slot(rec.identity)
	e.once.Do(func() {
		e.value, e.err = m.construct(rec, store, ses)
	})
	return e.value, e.err
}

// construct runs the record's constructor with its requirements bound as
// memoizing handles. Handles are anchored at the instance's own store, so a
// singleton's dependencies can never capture a request or call scope that
// happens to be active during first resolution.
func (m *Manager) construct(rec *Record, store *scopeContext, ses *session) (any, error) {
	handles := make([]*Handle, len(rec.requirements))
	for i, req := range rec.requirements {
		handles[i] = &Handle{m: m, req: req, origin: store, ctorSes: ses}
	}
	deps := &Deps{m: m, rec: rec, origin: store, ses: ses, handles: handles}

	instance, err := rec.construct(deps)
	// Handles that escape the constructor resolve on a fresh path from here
	// on; the construction path is only live while the constructor runs.
	for _, h := range handles {
		h.ctorSes = nil
	}
	if err != nil {
		return nil, errors.ConstructionFailed(rec.identity, err)
	}
	if instance == nil {
		return nil, errors.ConstructionFailed(rec.identity,
			errors.Internal("constructor returned nil"))
	}

	store.registerCloser(rec.identity, instance)
	m.log.Debug("constructed instance", logger.Fields(
		logger.FieldIdentity, rec.identity,
		logger.FieldKind, rec.kind.String(),
		logger.FieldScope, string(rec.scope),
	))
	return instance, nil
}

// Resolve resolves a registration by type from outside a constructor, using
// whatever scope the context carries. It is the entry point for application
// code that needs container-managed instances ad hoc.
func Resolve[T any](ctx context.Context, m *Manager, opts ...DepOption) (T, error) {
	var zero T
	if !m.isFinalized() {
		return zero, errors.Internal("Resolve before Finalize")
	}
	req := Dep[T](opts...)
	v, err := m.resolveRequirement(req, m.activeScope(ctx), &session{})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Internal("resolved instance does not satisfy the requested type")
	}
	return t, nil
}

// ResolveAll resolves every registration matching T, in declaration order.
func ResolveAll[T any](ctx context.Context, m *Manager, opts ...DepOption) ([]T, error) {
	if !m.isFinalized() {
		return nil, errors.Internal("ResolveAll before Finalize")
	}
	req := Dep[T](opts...)
	req.Collection = true
	vs, err := m.resolveCollection(req, m.activeScope(ctx), &session{})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, ok := v.(T)
		if !ok {
			return nil, errors.Internal("resolved instance does not satisfy the requested type")
		}
		out = append(out, t)
	}
	return out, nil
}
