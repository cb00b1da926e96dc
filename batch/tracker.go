package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the time between two throughput samples.
const DefaultInterval = time.Second

// Ticker delivers ticks on C until stopped. *time.Ticker is adapted by NewTimeTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

// NewTimeTicker returns a Ticker backed by time.NewTicker.
func NewTimeTicker(interval time.Duration) Ticker {
	return timeTicker{ticker: time.NewTicker(interval)}
}

func (t timeTicker) C() <-chan time.Time { return t.ticker.C }
func (t timeTicker) Stop()               { t.ticker.Stop() }

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithInterval sets the sampling interval.
func WithInterval(interval time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.interval = interval
	}
}

// WithTicker replaces the ticker constructor, e.g. with a manually driven ticker in tests.
func WithTicker(newTicker func(time.Duration) Ticker) TrackerOption {
	return func(t *Tracker) {
		t.newTicker = newTicker
	}
}

// WithReporter sets where samples and the final summary go.
func WithReporter(reporter Reporter) TrackerOption {
	return func(t *Tracker) {
		t.reporter = reporter
	}
}

// WithClock sets the time source for the elapsed time of the summary.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// Tracker passively samples the progress of a dispatched batch on its own goroutine.
//
// Operations call Done when they finish. Stop ends sampling, reports a final sample for completions
// since the last tick and the summary, and is safe to call more than once.
type Tracker struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	reporter  Reporter
	now       func() time.Time

	sampler   *Sampler
	completed atomic.Int64

	ctx      context.Context
	started  time.Time
	running  bool
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	summary  Summary
}

// NewTracker creates a Tracker for total dispatched operations.
func NewTracker(label string, total int, options ...TrackerOption) *Tracker {
	t := &Tracker{
		interval:  DefaultInterval,
		newTicker: NewTimeTicker,
		reporter:  NopReporter{},
		now:       time.Now,
		sampler:   NewSampler(label, total),
		ctx:       context.Background(),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	for _, option := range options {
		option(t)
	}

	return t
}

// Start begins sampling. It must be called at most once, before Stop.
func (t *Tracker) Start(ctx context.Context) {
	t.ctx = ctx
	t.started = t.now()
	t.running = true

	ticker := t.newTicker(t.interval)

	go func() {
		defer close(t.stopped)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C():
				t.reporter.ReportSample(t.ctx, t.sampler.Observe(t.completed.Load()))
			case <-t.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Done records one completed operation. It never blocks.
func (t *Tracker) Done() {
	t.completed.Add(1)
}

// Completed returns the number of operations recorded by Done.
func (t *Tracker) Completed() int64 {
	return t.completed.Load()
}

// Stop ends sampling and waits for the sampling goroutine to exit, so no tick is delivered afterwards.
// It reports a final sample if operations completed since the last tick, then the summary.
func (t *Tracker) Stop() Summary {
	t.stopOnce.Do(func() {
		close(t.stop)
		if t.running {
			<-t.stopped
		}

		if completed := t.completed.Load(); completed > t.sampler.Completed() {
			t.reporter.ReportSample(t.ctx, t.sampler.Observe(completed))
		}

		var elapsed time.Duration
		if t.running {
			elapsed = t.now().Sub(t.started)
		}

		t.summary = t.sampler.Summary(elapsed)
		t.reporter.ReportDone(t.ctx, t.summary)
	})

	return t.summary
}
