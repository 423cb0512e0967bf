// Package container implements the bloom dependency-injection runtime: the
// registration model, the container kind classifier, the registry, scope-aware
// instance lifecycle management, and cycle-tolerant lazy resolution.
//
// Declared units accumulate markers (Component, Handler, Factory,
// Configuration, Scoped, Primary, ...) in any order; Finalize classifies each
// unit by computing the least upper bound of its markers over a small kind
// lattice, expands factory methods into additional registrations, and freezes
// the registry. After Startup has constructed all singletons, the dispatch
// layer obtains fully-wired handler instances through ResolveHandler and
// brackets inbound requests with EnterRequestScope/ExitRequestScope.
//
// Dependencies are handed to constructors as lazy handles, so construction of
// a unit never transitively constructs something that is itself still under
// construction. Mutually dependent units both finish their constructors first
// and resolve each other on first use.
package container
