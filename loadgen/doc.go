// Package loadgen orchestrates the generation phases of a load run against an accessdata.Store.
//
// The phases run in a fixed order: persons, buildings, gates, access rights, simulation.
// Each phase is optional; later phases read what earlier phases (or earlier runs) wrote.
//
// Usage:
//
//	executor, err := batch.NewExecutor(batch.WithLogger(logger))
//	runner, err := loadgen.NewRunner(store, executor, loadgen.WithLogger(logger))
//	report, err := runner.Run(ctx, loadgen.Config{Persons: 10000, AccessRights: true, Simulation: true})
package loadgen
