// Package memengine provides an in-memory accessdata.Store for tests and dry runs.
//
// It enforces the primary and foreign keys of the access-control schema, keeps insertion order
// for all reads, and records every enter_building call instead of executing one.
// Each Insert call is atomic: either all given records are stored or none.
package memengine
