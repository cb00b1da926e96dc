package batch

import (
	"context"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

const (
	logMsgThroughput = "batch: throughput"
	logMsgDone       = "batch: done"

	logAttrDispatched = "dispatched"
	logAttrCurrent    = "current"
	logAttrAverage    = "average"
	logAttrPeak       = "peak"
	logAttrSamples    = "samples"
	logAttrElapsedMS  = "elapsed_ms"

	metricThroughputCurrent = "accessload_throughput_current"
	metricThroughputAverage = "accessload_throughput_average"
	metricThroughputPeak    = "accessload_throughput_peak"
	metricBatchCompleted    = "accessload_batch_completed"
	metricBatchElapsed      = "accessload_batch_elapsed_seconds"
)

// Reporter receives the samples and the summary of a Tracker.
type Reporter interface {
	ReportSample(ctx context.Context, sample Sample)
	ReportDone(ctx context.Context, summary Summary)
}

// NopReporter discards everything.
type NopReporter struct{}

// ReportSample implements Reporter.
func (NopReporter) ReportSample(context.Context, Sample) {}

// ReportDone implements Reporter.
func (NopReporter) ReportDone(context.Context, Summary) {}

// LogReporter writes one info log line per sample and one for the summary.
// The contextual logger is preferred when both are set; with neither set, nothing is logged.
type LogReporter struct {
	logger           accessdata.Logger
	contextualLogger accessdata.ContextualLogger
}

// NewLogReporter creates a LogReporter. Either logger may be nil.
func NewLogReporter(logger accessdata.Logger, contextualLogger accessdata.ContextualLogger) LogReporter {
	return LogReporter{logger: logger, contextualLogger: contextualLogger}
}

// ReportSample implements Reporter.
func (r LogReporter) ReportSample(ctx context.Context, sample Sample) {
	r.info(ctx, logMsgThroughput,
		logAttrLabel, sample.Label,
		logAttrDispatched, sample.Dispatched,
		logAttrCurrent, sample.Current,
		logAttrAverage, sample.Average,
		logAttrPeak, sample.Peak,
		logAttrCompleted, sample.Completed,
	)
}

// ReportDone implements Reporter.
func (r LogReporter) ReportDone(ctx context.Context, summary Summary) {
	r.info(ctx, logMsgDone,
		logAttrLabel, summary.Label,
		logAttrCompleted, summary.Completed,
		logAttrDispatched, summary.Dispatched,
		logAttrSamples, summary.Samples,
		logAttrPeak, summary.Peak,
		logAttrElapsedMS, summary.Elapsed.Milliseconds(),
	)
}

func (r LogReporter) info(ctx context.Context, msg string, args ...any) {
	switch {
	case r.contextualLogger != nil:
		r.contextualLogger.InfoContext(ctx, msg, args...)
	case r.logger != nil:
		r.logger.Info(msg, args...)
	}
}

// MetricsReporter records samples as gauge values and the summary as elapsed duration.
type MetricsReporter struct {
	collector accessdata.MetricsCollector
}

// NewMetricsReporter creates a MetricsReporter. A nil collector records nothing.
func NewMetricsReporter(collector accessdata.MetricsCollector) MetricsReporter {
	return MetricsReporter{collector: collector}
}

// ReportSample implements Reporter.
func (r MetricsReporter) ReportSample(ctx context.Context, sample Sample) {
	labels := map[string]string{logAttrLabel: sample.Label}

	r.value(ctx, metricThroughputCurrent, float64(sample.Current), labels)
	r.value(ctx, metricThroughputAverage, sample.Average, labels)
	r.value(ctx, metricThroughputPeak, float64(sample.Peak), labels)
	r.value(ctx, metricBatchCompleted, float64(sample.Completed), labels)
}

// ReportDone implements Reporter.
func (r MetricsReporter) ReportDone(ctx context.Context, summary Summary) {
	if r.collector == nil {
		return
	}

	labels := map[string]string{logAttrLabel: summary.Label}

	if contextualCollector, ok := r.collector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricBatchElapsed, summary.Elapsed, labels)
	} else {
		r.collector.RecordDuration(metricBatchElapsed, summary.Elapsed, labels)
	}
}

func (r MetricsReporter) value(ctx context.Context, metric string, value float64, labels map[string]string) {
	if r.collector == nil {
		return
	}

	if contextualCollector, ok := r.collector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
	} else {
		r.collector.RecordValue(metric, value, labels)
	}
}

// JSONReporter writes every sample and the summary as one JSON object per line.
type JSONReporter struct {
	mu     sync.Mutex
	stream *jsoniter.Stream
	now    func() time.Time
}

type jsonLine struct {
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Sample  *Sample   `json:"sample,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		stream: jsoniter.NewStream(jsoniter.ConfigFastest, w, 512),
		now:    time.Now,
	}
}

// ReportSample implements Reporter.
func (r *JSONReporter) ReportSample(_ context.Context, sample Sample) {
	r.write(jsonLine{Type: "sample", Time: r.now(), Sample: &sample})
}

// ReportDone implements Reporter.
func (r *JSONReporter) ReportDone(_ context.Context, summary Summary) {
	r.write(jsonLine{Type: "summary", Time: r.now(), Summary: &summary})
}

// Err returns the first error that occurred while writing.
func (r *JSONReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stream.Error
}

func (r *JSONReporter) write(line jsonLine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream.Error != nil {
		return
	}

	r.stream.WriteVal(line)
	r.stream.WriteRaw("\n")
	_ = r.stream.Flush()
}

// MultiReporter forwards to every contained Reporter in order.
type MultiReporter []Reporter

// ReportSample implements Reporter.
func (m MultiReporter) ReportSample(ctx context.Context, sample Sample) {
	for _, reporter := range m {
		reporter.ReportSample(ctx, sample)
	}
}

// ReportDone implements Reporter.
func (m MultiReporter) ReportDone(ctx context.Context, summary Summary) {
	for _, reporter := range m {
		reporter.ReportDone(ctx, summary)
	}
}
