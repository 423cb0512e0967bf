package dispatch

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bloomkit/bloom/container"
	"github.com/bloomkit/bloom/errors"
	"github.com/bloomkit/bloom/logger"
)

// Handler is the contract a handler unit's instance must satisfy. Serve runs
// the business logic for one call; a non-nil error selects rollback for
// transactional handlers and is mapped to a structured HTTP error response.
type Handler interface {
	Serve(c *gin.Context) error
}

// Router mounts container handler registrations onto a Gin engine.
type Router struct {
	m      *container.Manager
	log    *logger.Logger
	tracer trace.Tracer
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger used for dispatch events.
func WithRouterLogger(log *logger.Logger) RouterOption {
	return func(r *Router) { r.log = log }
}

// NewRouter creates a Router over a finalized container.
func NewRouter(m *container.Manager, opts ...RouterOption) *Router {
	r := &Router{
		m:      m,
		tracer: otel.Tracer("github.com/bloomkit/bloom/dispatch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.GetGlobalLogger()
	}
	r.log = r.log.WithComponent("dispatch")
	return r
}

// Mount registers a route for every handler registration. Handlers without a
// route binding are skipped; they stay reachable through Invoke.
func (r *Router) Mount(engine *gin.Engine) error {
	for _, rec := range r.m.Handlers() {
		route := rec.Route()
		if route == nil {
			continue
		}
		engine.Handle(route.Method, route.Path, r.Invoke(rec.Identity()))
		r.log.Debug("route mounted", logger.Fields(
			logger.FieldIdentity, rec.Identity(),
			logger.FieldRoute, route.Method+" "+route.Path,
		))
	}
	return nil
}

// Invoke returns the Gin handler that resolves the identified handler unit
// in a fresh call scope, runs it, and ends the invocation with its outcome.
// Panics in the handler are turned into errors so the call scope still tears
// down and transactional handlers still roll back.
func (r *Router) Invoke(identity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := r.tracer.Start(c.Request.Context(), "dispatch "+identity,
			trace.WithAttributes(
				attribute.String("bloom.handler", identity),
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			))
		defer span.End()

		callCtx, inv, err := r.m.ResolveHandler(ctx, identity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolution failed")
			r.respondError(c, identity, err)
			return
		}
		span.SetAttributes(attribute.String("bloom.invocation_id", inv.ID))
		c.Request = c.Request.WithContext(callCtx)

		handlerErr := r.serve(c, inv)

		if exitErr := inv.Exit(callCtx, handlerErr); exitErr != nil {
			r.log.WithError(exitErr).Error("invocation exit reported failures",
				logger.Fields(
					logger.FieldIdentity, identity,
					logger.FieldInvocationID, inv.ID,
				))
		}

		if handlerErr != nil {
			span.RecordError(handlerErr)
			span.SetStatus(codes.Error, "handler failed")
			r.respondError(c, identity, handlerErr)
			return
		}
		span.SetStatus(codes.Ok, "")
	}
}

// serve runs the handler instance, converting panics into errors.
func (r *Router) serve(c *gin.Context, inv *container.Invocation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("handler panicked", logger.Fields(
				logger.FieldIdentity, inv.Record().Identity(),
				logger.FieldInvocationID, inv.ID,
				"panic", fmt.Sprintf("%v", p),
				"stack", string(debug.Stack()),
			))
			err = errors.Internal(fmt.Sprintf("handler panic: %v", p))
		}
	}()

	h, ok := inv.Instance.(Handler)
	if !ok {
		return errors.Internal(fmt.Sprintf(
			"handler %q does not implement dispatch.Handler", inv.Record().Identity()))
	}
	return h.Serve(c)
}

// respondError writes the structured error response unless the handler
// already produced a response body.
func (r *Router) respondError(c *gin.Context, identity string, err error) {
	r.log.WithError(err).Error("invocation failed",
		logger.Fields(logger.FieldIdentity, identity))
	if c.Writer.Written() {
		return
	}
	status, body := errors.HTTPResponse(err)
	c.AbortWithStatusJSON(status, body)
}
