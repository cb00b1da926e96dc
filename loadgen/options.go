package loadgen

import (
	"math/rand/v2"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/generator"
)

// Option defines a functional option for configuring a Runner.
type Option func(*Runner) error

// WithRand sets the source of all random choices of a run.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) error {
		r.rng = rng

		return nil
	}
}

// WithFactoryOptions passes options to the generator.Factory of the entity phases.
func WithFactoryOptions(options ...generator.FactoryOption) Option {
	return func(r *Runner) error {
		r.factoryOptions = append(r.factoryOptions, options...)

		return nil
	}
}

// WithAssignerOptions passes options to the generator.Assigner of the access right phase.
func WithAssignerOptions(options ...generator.AssignerOption) Option {
	return func(r *Runner) error {
		r.assignerOptions = append(r.assignerOptions, options...)

		return nil
	}
}

// WithLogger sets the logger for phase progress.
func WithLogger(logger accessdata.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used in preference to the plain logger.
func WithContextualLogger(logger accessdata.ContextualLogger) Option {
	return func(r *Runner) error {
		r.contextualLogger = logger

		return nil
	}
}

// WithTracing sets the tracing collector. Each phase becomes one span.
func WithTracing(collector accessdata.TracingCollector) Option {
	return func(r *Runner) error {
		r.tracingCollector = collector

		return nil
	}
}

// WithReplicaReads routes the simulation phase's reads to the store's read replica, if it has one.
// The replica may lag behind the primary, so only data written by earlier runs is guaranteed to be visible.
func WithReplicaReads() Option {
	return func(r *Runner) error {
		r.replicaReads = true

		return nil
	}
}
