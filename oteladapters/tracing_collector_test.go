package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/accessrights-loadgen/oteladapters"
)

func Test_TracingCollector_RecordsSpanWithAttributes(t *testing.T) {
	// setup
	exporter, collector := newInMemoryTracing()

	// act
	_, spanCtx := collector.StartSpan(
		context.Background(),
		"accessload.store.insert_persons",
		map[string]string{"operation": "insert_persons", "db.schema": "distributed"},
	)
	spanCtx.AddAttribute("row_count", "5000")
	collector.FinishSpan(spanCtx, "success", map[string]string{"result": "ok"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "accessload.store.insert_persons", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "operation", "insert_persons")
	assertSpanHasAttribute(t, span, "db.schema", "distributed")
	assertSpanHasAttribute(t, span, "row_count", "5000")
	assertSpanHasAttribute(t, span, "result", "ok")
}

func Test_TracingCollector_MapsStatus(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "ok", expectedCode: codes.Ok},
		{status: "completed", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "failed", expectedCode: codes.Error},
		{status: "cancelled", expectedCode: codes.Error},
		{status: "pending", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			exporter, collector := newInMemoryTracing()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_UnknownStatus_IsKeptAsAttribute(t *testing.T) {
	// setup
	exporter, collector := newInMemoryTracing()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
	collector.FinishSpan(spanCtx, "pending", nil)

	// assert
	assertSpanHasAttribute(t, exporter.GetSpans()[0], "status", "pending")
}

func Test_TracingCollector_PropagatesParentSpan(t *testing.T) {
	// setup
	exporter, collector := newInMemoryTracing()

	// act
	parentCtx, parent := collector.StartSpan(context.Background(), "accessload.phase.simulation", nil)
	_, child := collector.StartSpan(parentCtx, "accessload.store.enter_building", nil)
	collector.FinishSpan(child, "ok", nil)
	collector.FinishSpan(parent, "ok", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	// setup
	exporter, collector := newInMemoryTracing()

	// act & assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "ok", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func newInMemoryTracing() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expectedValue, attr.Value.AsString())
			return
		}
	}

	t.Errorf("attribute %s not found in span %s", key, span.Name)
}
