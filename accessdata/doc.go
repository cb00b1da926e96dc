// Package accessdata provides the core types of the access-control load generator.
//
// It defines the synthetic entities written to the downstream store (persons, buildings,
// gate-groups, gates and access rights), the read models fetched back from it, the
// ephemeral simulation events that are replayed against it, and the Store contract
// implemented by the storage engines.
//
// Key types:
//   - Person, Building, GateGroup, Gate, GateLink, AccessRight: synthetic entities
//   - GateGroupRegion, PersonAccess: join results read back from the store
//   - SimulationEvent: one badge crossing one gate
//   - Store: insert/query/call contract consumed by the generator and the load runner
//
// Regions constrain which entities may be associated: an AccessRight always references
// a GateGroup whose Building lies in the same Region as the Person.
package accessdata
