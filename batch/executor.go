package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

const (
	logMsgChunkCompleted = "batch: chunk completed"
	logMsgBatchFailed    = "batch: execution failed"
	logMsgBatchStarted   = "batch: started"

	logAttrLabel     = "label"
	logAttrCompleted = "completed"
	logAttrTotal     = "total"
	logAttrProgress  = "progress"
	logAttrMode      = "mode"
	logAttrError     = "error"

	metricBatchDuration = "accessload_batch_duration_seconds"
	metricBatchFailures = "accessload_batch_failures_total"

	modeChunked    = "chunked"
	modeConcurrent = "concurrent"
	modeSequential = "sequential"
)

// Operation is one independent unit of work against the store, e.g., one insert or one procedure call.
type Operation func(ctx context.Context) error

// TrackerFactory creates the Tracker observing one batch.
type TrackerFactory func(label string, total int) *Tracker

// Chunk is the half-open index range [Start, End) of one chunk.
type Chunk struct {
	Start int
	End   int
}

// Size returns the number of operations in the chunk.
func (c Chunk) Size() int {
	return c.End - c.Start
}

// Chunks splits total operations into consecutive chunks of at most size operations.
func Chunks(total, size int) []Chunk {
	if total <= 0 || size <= 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		chunks = append(chunks, Chunk{Start: start, End: min(start+size, total)})
	}

	return chunks
}

// Executor runs batches of operations.
type Executor struct {
	chunkSize        int
	maxInFlight      int
	logger           accessdata.Logger
	contextualLogger accessdata.ContextualLogger
	metricsCollector accessdata.MetricsCollector
	newTracker       TrackerFactory
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(options ...Option) (*Executor, error) {
	e := &Executor{
		chunkSize: DefaultChunkSize,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	if e.newTracker == nil {
		reporter := NewLogReporter(e.logger, e.contextualLogger)
		e.newTracker = func(label string, total int) *Tracker {
			return NewTracker(label, total, WithReporter(reporter))
		}
	}

	return e, nil
}

// ChunkSize returns the configured chunk size.
func (e *Executor) ChunkSize() int {
	return e.chunkSize
}

// RunChunked runs ops in chunks of ChunkSize. The operations of one chunk run concurrently,
// and the chunk is fully awaited before the next one starts.
// The first failing operation fails its chunk and the batch; chunks completed before stay committed.
func (e *Executor) RunChunked(ctx context.Context, label string, ops []Operation) error {
	start := time.Now()
	e.logStarted(ctx, label, modeChunked, len(ops))

	completed := 0
	for _, chunk := range Chunks(len(ops), e.chunkSize) {
		if err := e.runGroup(ctx, ops[chunk.Start:chunk.End], nil); err != nil {
			return e.fail(ctx, label, modeChunked, completed, len(ops), start, err)
		}

		completed += chunk.Size()
		e.logChunkCompleted(ctx, label, completed, len(ops))
	}

	e.recordDuration(ctx, label, modeChunked, time.Since(start))

	return nil
}

// RunConcurrent dispatches all ops at once and awaits them, while a Tracker reports progress.
func (e *Executor) RunConcurrent(ctx context.Context, label string, ops []Operation) error {
	start := time.Now()
	e.logStarted(ctx, label, modeConcurrent, len(ops))

	tracker := e.newTracker(label, len(ops))
	tracker.Start(ctx)

	err := e.runGroup(ctx, ops, tracker)
	summary := tracker.Stop()

	if err != nil {
		return e.fail(ctx, label, modeConcurrent, int(summary.Completed), len(ops), start, err)
	}

	e.recordDuration(ctx, label, modeConcurrent, time.Since(start))

	return nil
}

// RunSequential runs ops one at a time in the given order, while a Tracker reports progress.
// An operation starts only after the previous one returned.
func (e *Executor) RunSequential(ctx context.Context, label string, ops []Operation) error {
	start := time.Now()
	e.logStarted(ctx, label, modeSequential, len(ops))

	tracker := e.newTracker(label, len(ops))
	tracker.Start(ctx)

	for i, op := range ops {
		if err := op(ctx); err != nil {
			tracker.Stop()

			return e.fail(ctx, label, modeSequential, i, len(ops), start, err)
		}

		tracker.Done()
	}

	tracker.Stop()
	e.recordDuration(ctx, label, modeSequential, time.Since(start))

	return nil
}

func (e *Executor) runGroup(ctx context.Context, ops []Operation, tracker *Tracker) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if e.maxInFlight > 0 {
		group.SetLimit(e.maxInFlight)
	}

	for _, op := range ops {
		group.Go(func() error {
			if err := op(groupCtx); err != nil {
				return err
			}

			if tracker != nil {
				tracker.Done()
			}

			return nil
		})
	}

	return group.Wait()
}

func (e *Executor) fail(
	ctx context.Context,
	label, mode string,
	completed, total int,
	start time.Time,
	cause error,
) error {
	e.logError(ctx, label, mode, completed, total, cause)
	e.recordFailure(ctx, label, mode)
	e.recordDuration(ctx, label, mode, time.Since(start))

	return errors.Join(accessdata.ErrBatchFailed, fmt.Errorf("%s after %d/%d: %w", label, completed, total, cause))
}
