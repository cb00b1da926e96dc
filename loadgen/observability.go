package loadgen

import (
	"context"
	"strings"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

const (
	logMsgPhaseStarted       = "loadgen: phase started"
	logMsgPhaseCompleted     = "loadgen: phase completed"
	logMsgPhaseFailed        = "loadgen: phase failed"
	logMsgFetched            = "loadgen: fetched"
	logMsgPartialGateGroup   = "loadgen: last gate-group is incomplete"
	logMsgSimulationsCreated = "loadgen: created simulations"

	logAttrPhase   = "phase"
	logAttrEntity  = "entity"
	logAttrCount   = "count"
	logAttrGates   = "gates"
	logAttrMissing = "missing_gates"
	logAttrSkipped = "skipped_persons"
	logAttrError   = "error"

	spanNamePrefix = "accessload.phase."

	spanStatusSuccess = "success"
	spanStatusError   = "error"
)

func (r *Runner) logPhaseStarted(ctx context.Context, phase string) {
	r.log(ctx, accessdata.Logger.Debug, accessdata.ContextualLogger.DebugContext, logMsgPhaseStarted, logAttrPhase, phase)
}

func (r *Runner) logPhaseCompleted(ctx context.Context, phase string) {
	r.log(ctx, accessdata.Logger.Info, accessdata.ContextualLogger.InfoContext, logMsgPhaseCompleted, logAttrPhase, phase)
}

func (r *Runner) logPhaseFailed(ctx context.Context, phase string, err error) {
	r.log(ctx, accessdata.Logger.Error, accessdata.ContextualLogger.ErrorContext, logMsgPhaseFailed,
		logAttrPhase, phase, logAttrError, err.Error())
}

// logFetched logs the number of fetched records, split by region when counts are given,
// e.g. entity=persons count=10 eu=4 us=6.
func (r *Runner) logFetched(ctx context.Context, entity string, count int, byRegion accessdata.RegionCounts) {
	args := []any{logAttrEntity, entity, logAttrCount, count}
	if byRegion != nil {
		for _, region := range accessdata.Regions {
			args = append(args, strings.ToLower(region.String()), byRegion[region])
		}
	}

	r.log(ctx, accessdata.Logger.Info, accessdata.ContextualLogger.InfoContext, logMsgFetched, args...)
}

func (r *Runner) logPartialGateGroup(ctx context.Context, gates, missing int) {
	r.log(ctx, accessdata.Logger.Warn, accessdata.ContextualLogger.WarnContext, logMsgPartialGateGroup,
		logAttrGates, gates, logAttrMissing, missing)
}

func (r *Runner) logSimulationsCreated(ctx context.Context, count, skipped int) {
	r.log(ctx, accessdata.Logger.Info, accessdata.ContextualLogger.InfoContext, logMsgSimulationsCreated,
		logAttrCount, count, logAttrSkipped, skipped)
}

// log prefers the contextual logger and falls back to the plain one.
func (r *Runner) log(
	ctx context.Context,
	plain func(accessdata.Logger, string, ...any),
	contextual func(accessdata.ContextualLogger, context.Context, string, ...any),
	msg string,
	args ...any,
) {
	switch {
	case r.contextualLogger != nil:
		contextual(r.contextualLogger, ctx, msg, args...)
	case r.logger != nil:
		plain(r.logger, msg, args...)
	}
}

func (r *Runner) startPhaseSpan(ctx context.Context, phase string) (context.Context, accessdata.SpanContext) {
	if r.tracingCollector == nil {
		return ctx, nil
	}

	return r.tracingCollector.StartSpan(ctx, spanNamePrefix+phase, map[string]string{logAttrPhase: phase})
}

func (r *Runner) finishPhaseSpan(spanCtx accessdata.SpanContext, err error) {
	if r.tracingCollector == nil || spanCtx == nil {
		return
	}

	if err != nil {
		r.tracingCollector.FinishSpan(spanCtx, spanStatusError, map[string]string{logAttrError: err.Error()})
		return
	}

	r.tracingCollector.FinishSpan(spanCtx, spanStatusSuccess, nil)
}
