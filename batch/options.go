package batch

import (
	"fmt"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// DefaultChunkSize is the number of operations dispatched together by RunChunked.
const DefaultChunkSize = 5000

// Option defines a functional option for configuring an Executor.
type Option func(*Executor) error

// WithChunkSize sets the number of operations per chunk for RunChunked.
func WithChunkSize(size int) Option {
	return func(e *Executor) error {
		if size < 1 {
			return fmt.Errorf("%w: got %d", accessdata.ErrInvalidChunkSize, size)
		}

		e.chunkSize = size

		return nil
	}
}

// WithMaxInFlight caps the number of operations running at the same time.
// Zero or a negative value means no cap beyond what the store's connection pool imposes.
func WithMaxInFlight(n int) Option {
	return func(e *Executor) error {
		e.maxInFlight = n

		return nil
	}
}

// WithLogger sets the logger for chunk progress and failures.
func WithLogger(logger accessdata.Logger) Option {
	return func(e *Executor) error {
		e.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used in preference to the plain logger.
func WithContextualLogger(logger accessdata.ContextualLogger) Option {
	return func(e *Executor) error {
		e.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for batch durations and failures.
func WithMetrics(collector accessdata.MetricsCollector) Option {
	return func(e *Executor) error {
		e.metricsCollector = collector

		return nil
	}
}

// WithTracker sets how trackers for RunConcurrent and RunSequential are created.
func WithTracker(factory TrackerFactory) Option {
	return func(e *Executor) error {
		e.newTracker = factory

		return nil
	}
}
