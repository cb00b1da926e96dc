package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

func (e *Executor) logStarted(ctx context.Context, label, mode string, total int) {
	args := []any{logAttrLabel, label, logAttrMode, mode, logAttrTotal, total}

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.DebugContext(ctx, logMsgBatchStarted, args...)
	case e.logger != nil:
		e.logger.Debug(logMsgBatchStarted, args...)
	}
}

// logChunkCompleted logs the running progress as "completed/total label".
func (e *Executor) logChunkCompleted(ctx context.Context, label string, completed, total int) {
	args := []any{
		logAttrProgress, fmt.Sprintf("%d/%d %s", completed, total, label),
		logAttrLabel, label,
		logAttrCompleted, completed,
		logAttrTotal, total,
	}

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.InfoContext(ctx, logMsgChunkCompleted, args...)
	case e.logger != nil:
		e.logger.Info(logMsgChunkCompleted, args...)
	}
}

func (e *Executor) logError(ctx context.Context, label, mode string, completed, total int, err error) {
	args := []any{
		logAttrError, err.Error(),
		logAttrLabel, label,
		logAttrMode, mode,
		logAttrCompleted, completed,
		logAttrTotal, total,
	}

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.ErrorContext(ctx, logMsgBatchFailed, args...)
	case e.logger != nil:
		e.logger.Error(logMsgBatchFailed, args...)
	}
}

func (e *Executor) recordDuration(ctx context.Context, label, mode string, duration time.Duration) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrLabel: label, logAttrMode: mode}

	if contextualCollector, ok := e.metricsCollector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricBatchDuration, duration, labels)
	} else {
		e.metricsCollector.RecordDuration(metricBatchDuration, duration, labels)
	}
}

func (e *Executor) recordFailure(ctx context.Context, label, mode string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrLabel: label, logAttrMode: mode}

	if contextualCollector, ok := e.metricsCollector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricBatchFailures, labels)
	} else {
		e.metricsCollector.IncrementCounter(metricBatchFailures, labels)
	}
}
