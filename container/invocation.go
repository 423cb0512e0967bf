package container

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/bloomkit/bloom/errors"
	"github.com/bloomkit/bloom/logger"
)

// Tx is the transaction participant a transactional handler brackets its
// call scope with. Any registration assignable to Tx can serve; when none is
// registered the handler runs with plain call-scope semantics.
type Tx interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Invocation is one live handler call: the fully-wired handler instance, its
// call-scoped instance store, and the transaction bracket when the handler
// is transactional. Exit must be called exactly once when the call ends;
// extra calls are no-ops.
type Invocation struct {
	// ID correlates logs and teardown for this call.
	ID string
	// Instance is the constructed handler unit.
	Instance any

	rec  *Record
	sc   *scopeContext
	tx   Tx
	log  *logger.Logger
	done atomic.Bool
}

// Record returns the handler registration backing this invocation.
func (inv *Invocation) Record() *Record { return inv.rec }

// Exit ends the invocation. For a transactional handler the transaction is
// committed when cause is nil and rolled back otherwise; the call scope is
// then torn down in reverse construction order regardless. Transaction and
// teardown failures are both reported.
func (inv *Invocation) Exit(ctx context.Context, cause error) error {
	if !inv.done.CompareAndSwap(false, true) {
		return nil
	}

	var txErr error
	if inv.tx != nil {
		if cause == nil {
			txErr = inv.tx.Commit(ctx)
		} else {
			txErr = inv.tx.Rollback(ctx)
		}
		if txErr != nil {
			inv.log.WithError(txErr).Error("transaction finish failed", logger.Fields(
				logger.FieldIdentity, inv.rec.identity,
				logger.FieldInvocationID, inv.ID,
			))
		}
	}

	teardownErr := inv.sc.exit()
	if teardownErr != nil {
		inv.log.WithError(teardownErr).Error("call scope teardown failed", logger.Fields(
			logger.FieldIdentity, inv.rec.identity,
			logger.FieldInvocationID, inv.ID,
		))
	}
	return stderrors.Join(txErr, teardownErr)
}

type invokeOptions struct {
	id string
}

// InvokeOption customizes a handler invocation.
type InvokeOption func(*invokeOptions)

// WithInvocationID overrides the generated invocation id, for callers that
// already carry a correlation id.
func WithInvocationID(id string) InvokeOption {
	return func(o *invokeOptions) { o.id = id }
}

// ResolveHandler opens a call scope nested in whatever scope ctx carries,
// constructs the handler identified by identity inside it, and returns the
// live invocation together with a derived context carrying the call scope.
// Resolution failures close the call scope before returning.
func (m *Manager) ResolveHandler(ctx context.Context, identity string, opts ...InvokeOption) (context.Context, *Invocation, error) {
	if !m.isFinalized() {
		return ctx, nil, errors.Internal("ResolveHandler before Finalize")
	}

	rec, ok := m.reg.byIdentity(identity)
	if !ok || rec.kind != KindHandler {
		return ctx, nil, errors.UnknownHandler(identity)
	}

	o := invokeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	sc := newScopeContext(ScopeCall, m.activeScope(ctx))
	callCtx := withScope(ctx, sc)

	inv := &Invocation{ID: o.id, rec: rec, sc: sc, log: m.log}

	if rec.transactional {
		v, err := m.resolveRequirement(
			Requirement{Type: TypeOf[Tx]()}, sc, &session{})
		if err != nil {
			sc.exit()
			return ctx, nil, err
		}
		if v != nil {
			tx := v.(Tx)
			if err := tx.Begin(callCtx); err != nil {
				sc.exit()
				return ctx, nil, errors.ConstructionFailed(identity,
					errors.Internal("transaction begin failed").WithCause(err))
			}
			inv.tx = tx
		}
	}

	instance, err := m.getOrCreate(rec, sc, &session{})
	if err != nil {
		if inv.tx != nil {
			if rbErr := inv.tx.Rollback(callCtx); rbErr != nil {
				m.log.WithError(rbErr).Error("rollback after failed resolution",
					logger.Fields(logger.FieldIdentity, identity))
			}
		}
		sc.exit()
		return ctx, nil, err
	}
	inv.Instance = instance

	m.log.Debug("handler resolved", logger.Fields(
		logger.FieldIdentity, identity,
		logger.FieldInvocationID, inv.ID,
		"transactional", inv.tx != nil,
	))
	return callCtx, inv, nil
}
