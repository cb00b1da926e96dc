// Package generator builds the synthetic access-control dataset and the simulation event stream.
//
// It contains three pure components that never touch the store themselves:
//   - Factory: creates persons, buildings and the gate topology (gate-groups, gates, gate links)
//   - Assigner: assigns one same-region gate-group to every person lacking an access right
//   - Sequencer: derives one entry and one exit event per person and interleaves them
//
// All randomness is drawn from an injected *rand.Rand, so runs are reproducible with a fixed seed.
//
// Usage example:
//
//	rng := rand.New(rand.NewPCG(seed, seed))
//	persons, err := generator.NewFactory(rng).Persons(1000)
//	rights, err := generator.NewAssigner(rng).Assign(persons, gateGroups)
//	sequence, err := generator.NewSequencer(rng).Sequence(accesses, links)
package generator
