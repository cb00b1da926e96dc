package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// SpySpanContext implements accessdata.SpanContext for testing tracing functionality.
type SpySpanContext struct {
	name       string
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements accessdata.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements accessdata.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// SpySpanRecord represents one finished span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
}

// TracingCollectorSpy is an accessdata.TracingCollector implementation that captures tracing calls for testing.
type TracingCollectorSpy struct {
	started  map[*SpySpanContext]map[string]string
	finished []SpySpanRecord
	mu       sync.Mutex
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{started: make(map[*SpySpanContext]map[string]string)}
}

// StartSpan implements accessdata.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, accessdata.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span := &SpySpanContext{name: name}
	s.started[span] = maps.Clone(attrs)

	return ctx, span
}

// FinishSpan implements accessdata.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx accessdata.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = append(s.finished, SpySpanRecord{
		Name:            span.name,
		StartAttributes: s.started[span],
		Status:          status,
		EndAttributes:   maps.Clone(attrs),
	})
	delete(s.started, span)
}

// GetFinishedSpans returns a copy of all finished spans.
func (s *TracingCollectorSpy) GetFinishedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.finished))
	copy(records, s.finished)

	return records
}

// GetOpenSpanCount returns the number of spans started but not finished.
func (s *TracingCollectorSpy) GetOpenSpanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.started)
}
