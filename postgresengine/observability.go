package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

const (
	metricOperationDuration = "accessload_store_operation_duration_seconds"
	metricStoreErrors       = "accessload_store_errors_total"
	metricRowCount          = "accessload_store_rows"

	spanNamePrefix    = "accessload.store."
	spanAttrOperation = "operation"
	spanAttrSchema    = "db.schema"
	spanAttrRowCount  = "row_count"
	spanAttrErrorType = "error_type"
	spanAttrDuration  = "duration_ms"

	labelStatus = "status"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery   = "build_query"
	errorTypeQuery        = "query"
	errorTypeScan         = "scan"
	errorTypeInsert       = "insert"
	errorTypeProcedure    = "procedure"
	errorTypePrimaryKey   = "primary_key_violation"
	errorTypeForeignKey   = "foreign_key_violation"
	sqlStateUniqueViolate = "23505"
	sqlStateFKViolate     = "23503"
)

// classifyConstraintViolation maps the SQLSTATE of pgx and lib/pq errors to the store's sentinel errors.
// It returns nil for any other error.
func classifyConstraintViolation(err error) error {
	var code string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error

	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	default:
		return nil
	}

	switch code {
	case sqlStateUniqueViolate:
		return accessdata.ErrPrimaryKeyViolation
	case sqlStateFKViolate:
		return accessdata.ErrForeignKeyViolation
	default:
		return nil
	}
}

func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, accessdata.ErrPrimaryKeyViolation):
		return errorTypePrimaryKey
	case errors.Is(err, accessdata.ErrForeignKeyViolation):
		return errorTypeForeignKey
	default:
		return errorTypeInsert
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s Store) logOperation(ctx context.Context, operation string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+operation, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+operation, args...)
	}
}

func (s Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// startSpan starts a tracing span if a tracing collector is configured.
func (s Store) startSpan(ctx context.Context, operation string) (context.Context, accessdata.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation: operation,
		spanAttrSchema:    s.schema,
	})
}

// finishSuccess records a successful operation in all configured collectors.
func (s Store) finishSuccess(
	ctx context.Context,
	span accessdata.SpanContext,
	operation string,
	rowCount int,
	duration time.Duration,
) {
	s.logOperation(ctx, operation, logAttrRowCount, rowCount, logAttrDurationMS, toMilliseconds(duration))
	s.recordDuration(ctx, operation, statusSuccess, duration)
	s.recordRowCount(ctx, operation, rowCount)

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusSuccess, map[string]string{
			spanAttrRowCount: strconv.Itoa(rowCount),
			spanAttrDuration: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
		})
	}
}

// finishError records a failed operation in all configured collectors and returns err.
func (s Store) finishError(
	ctx context.Context,
	span accessdata.SpanContext,
	operation string,
	errorType string,
	duration time.Duration,
	err error,
) error {
	s.recordDuration(ctx, operation, statusError, duration)
	s.recordError(ctx, operation, errorType)

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusError, map[string]string{
			spanAttrErrorType: errorType,
			spanAttrDuration:  strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
		})
	}

	return err
}

func (s Store) recordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

func (s Store) recordError(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricStoreErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricStoreErrors, labels)
	}
}

func (s Store) recordRowCount(ctx context.Context, operation string, rowCount int) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: statusSuccess}

	if contextualCollector, ok := s.metricsCollector.(accessdata.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricRowCount, float64(rowCount), labels)
	} else {
		s.metricsCollector.RecordValue(metricRowCount, float64(rowCount), labels)
	}
}
