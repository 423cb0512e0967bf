// Package version exposes build-time version information for the /info and
// /version endpoints and the startup summary.
package version
