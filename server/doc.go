// Package server provides the HTTP server for bloom applications, backed by
// Gin with HTTP/2 cleartext (h2c) support so additional http.Handler mounts
// can share the same port.
//
// The server follows the component pattern with lifecycle management, health
// endpoints, and a configurable middleware stack.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limits
//   - RateLimit: per-client sliding-window rate limiting
//   - RequestLogger: request/response logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: service and build information
//   - /metrics: runtime memory and goroutine metrics
//   - /alive: Kubernetes liveness probe
//   - /ready: Kubernetes readiness probe
//   - /version: build version information
package server
