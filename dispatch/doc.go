// Package dispatch connects the dependency-injection container to HTTP
// routing. It mounts every handler registration onto a Gin engine, brackets
// each inbound request with a request scope, and runs every handler call
// inside its own call scope with tracing and structured error mapping.
//
// A handler unit's constructed instance must implement Handler; dispatch
// resolves it through the container per call, invokes Serve, and ends the
// invocation with the handler's outcome so call-scoped resources are torn
// down and transactional handlers commit or roll back.
package dispatch
