// Package component defines the lifecycle contract for infrastructure
// components (HTTP server, databases, brokers) and a registry that starts
// them in registration order and stops them in reverse.
//
// Components are infrastructure with their own start/stop lifecycle; they sit
// below the dependency-injection container, which manages application units.
// The bootstrap package starts components first, then brings the container up.
package component
