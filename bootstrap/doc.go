// Package bootstrap wires configuration, logging, infrastructure components,
// and the dependency-injection container into a uniform application
// lifecycle.
//
// Startup runs in phases: infrastructure components start in registration
// order, the container finalizes its registrations and constructs all
// singletons, configure callbacks run, and the startup summary is displayed
// once the application is ready. Shutdown reverses the sequence: the
// container tears its singletons down first, then components stop in reverse
// registration order.
package bootstrap
