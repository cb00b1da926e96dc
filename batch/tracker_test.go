package batch_test

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/accessrights-loadgen/batch"
	"github.com/AntonStoeckl/accessrights-loadgen/testutil/helper"
)

type reporterSpy struct {
	mu        sync.Mutex
	samples   []Sample
	summaries []Summary
}

func (r *reporterSpy) ReportSample(_ context.Context, sample Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
}

func (r *reporterSpy) ReportDone(_ context.Context, summary Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
}

func (r *reporterSpy) getSamples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Sample(nil), r.samples...)
}

func (r *reporterSpy) getSummaries() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Summary(nil), r.summaries...)
}

func Test_Tracker_When_HundredOpsCompleteEvenlyOverTenTicks_ThenCurrentsSumToHundred(t *testing.T) {
	// setup
	ticker := helper.NewFakeTicker()
	reporter := &reporterSpy{}
	fakeNow := time.Unix(0, 0)
	tracker := NewTracker(
		"simulations",
		100,
		WithTicker(func(time.Duration) Ticker { return ticker }),
		WithReporter(reporter),
		WithClock(func() time.Time {
			fakeNow = fakeNow.Add(5 * time.Second)
			return fakeNow
		}),
	)

	// act
	tracker.Start(context.Background())
	for tick := 1; tick <= 10; tick++ {
		for i := 0; i < 10; i++ {
			tracker.Done()
		}

		require.True(t, ticker.Tick(time.Second), "tick %d was not received", tick)
		require.Eventually(t, func() bool { return len(reporter.getSamples()) == tick }, time.Second, time.Millisecond)
	}
	summary := tracker.Stop()

	// assert
	samples := reporter.getSamples()
	require.Len(t, samples, 10)

	var sum int64
	for _, sample := range samples {
		sum += sample.Current
		assert.Equal(t, "simulations", sample.Label)
		assert.Equal(t, 100, sample.Dispatched)
		assert.GreaterOrEqual(t, float64(sample.Peak), sample.Average)
	}
	assert.Equal(t, int64(100), sum)
	assert.Equal(t, 10.0, samples[9].Average)
	assert.Equal(t, int64(10), samples[9].Peak)

	assert.Equal(t, int64(100), summary.Completed)
	assert.Equal(t, 10, summary.Samples)
	assert.Equal(t, 5*time.Second, summary.Elapsed)
	assert.True(t, ticker.Stopped())
	assert.Len(t, reporter.getSummaries(), 1)
}

func Test_Tracker_When_OpsCompleteAfterTheLastTick_ThenStopFlushesAFinalSample(t *testing.T) {
	// setup
	ticker := helper.NewFakeTicker()
	reporter := &reporterSpy{}
	tracker := NewTracker("persons", 7, WithTicker(func(time.Duration) Ticker { return ticker }), WithReporter(reporter))

	// arrange
	tracker.Start(context.Background())
	for i := 0; i < 4; i++ {
		tracker.Done()
	}
	require.True(t, ticker.Tick(time.Second))
	require.Eventually(t, func() bool { return len(reporter.getSamples()) == 1 }, time.Second, time.Millisecond)
	for i := 0; i < 3; i++ {
		tracker.Done()
	}

	// act
	summary := tracker.Stop()

	// assert
	samples := reporter.getSamples()
	require.Len(t, samples, 2)
	assert.Equal(t, int64(4), samples[0].Current)
	assert.Equal(t, int64(3), samples[1].Current)
	assert.Equal(t, int64(7), summary.Completed)
	assert.Equal(t, int64(4), summary.Peak)
	assert.Equal(t, 3.5, summary.Average)
}

func Test_Tracker_When_StoppedTwice_ThenItReportsDoneOnceAndDeliversNoMoreTicks(t *testing.T) {
	// setup
	ticker := helper.NewFakeTicker()
	reporter := &reporterSpy{}
	tracker := NewTracker("gates", 1, WithTicker(func(time.Duration) Ticker { return ticker }), WithReporter(reporter))

	// act
	tracker.Start(context.Background())
	tracker.Done()
	first := tracker.Stop()
	second := tracker.Stop()

	// assert
	assert.Equal(t, first, second)
	assert.Len(t, reporter.getSummaries(), 1)
	assert.False(t, ticker.Tick(10*time.Millisecond))
}

func Test_Tracker_When_NeverStarted_ThenStopStillReportsTheSummary(t *testing.T) {
	// setup
	reporter := &reporterSpy{}
	tracker := NewTracker("gates", 2, WithReporter(reporter))

	// act
	tracker.Done()
	summary := tracker.Stop()

	// assert
	assert.Equal(t, int64(1), summary.Completed)
	assert.Zero(t, summary.Elapsed)
	assert.Len(t, reporter.getSamples(), 1)
}

func Test_Sampler_When_RatesVary_ThenPeakIsTheMaximumAndAverageIsCompletedPerSample(t *testing.T) {
	// setup
	sampler := NewSampler("buildings", 30)

	// act
	first := sampler.Observe(5)
	second := sampler.Observe(20)
	third := sampler.Observe(30)

	// assert
	assert.Equal(t, int64(5), first.Current)
	assert.Equal(t, int64(15), second.Current)
	assert.Equal(t, int64(10), third.Current)
	assert.Equal(t, int64(15), third.Peak)
	assert.Equal(t, 10.0, third.Average)
	assert.Equal(t, 3, third.Samples)
}

func Test_Reporters_When_Combined_ThenEveryReporterReceivesEverything(t *testing.T) {
	// setup
	logSpy := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	var buffer bytes.Buffer
	jsonReporter := NewJSONReporter(&buffer)
	reporter := MultiReporter{NewLogReporter(logSpy.Logger(), nil), NewMetricsReporter(metricsSpy), jsonReporter}

	// act
	sampler := NewSampler("persons", 10)
	reporter.ReportSample(context.Background(), sampler.Observe(6))
	reporter.ReportSample(context.Background(), sampler.Observe(10))
	reporter.ReportDone(context.Background(), sampler.Summary(2*time.Second))

	// assert
	assert.Equal(t, 2, logSpy.CountLogs(slog.LevelInfo, "batch: throughput"))
	assert.True(t, logSpy.HasInfoLogWithMessage("batch: done").WithAttr("elapsed_ms", "2000").Assert())

	assert.Equal(t, []float64{6, 4}, metricsSpy.ValuesFor("accessload_throughput_current"))
	assert.Equal(t, []float64{6, 6}, metricsSpy.ValuesFor("accessload_throughput_peak"))
	assert.True(t, metricsSpy.HasDurationRecord("accessload_batch_elapsed_seconds"))

	require.NoError(t, jsonReporter.Err())
	scanner := bufio.NewScanner(&buffer)
	var types []string
	for scanner.Scan() {
		var line struct {
			Type    string   `json:"type"`
			Sample  *Sample  `json:"sample"`
			Summary *Summary `json:"summary"`
		}
		require.NoError(t, jsoniter.Unmarshal(scanner.Bytes(), &line))
		types = append(types, line.Type)

		if line.Type == "summary" {
			require.NotNil(t, line.Summary)
			assert.Equal(t, int64(10), line.Summary.Completed)
			assert.Equal(t, 2*time.Second, line.Summary.Elapsed)
		}
	}
	assert.Equal(t, []string{"sample", "sample", "summary"}, types)
}
