// Package util provides small parsing helpers shared by the server and
// middleware packages.
package util
