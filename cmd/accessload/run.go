package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/batch"
	"github.com/AntonStoeckl/accessrights-loadgen/config"
	"github.com/AntonStoeckl/accessrights-loadgen/loadgen"
	"github.com/AntonStoeckl/accessrights-loadgen/memengine"
	"github.com/AntonStoeckl/accessrights-loadgen/oteladapters"
	"github.com/AntonStoeckl/accessrights-loadgen/postgresengine"
)

const (
	logMsgRunCompleted = "accessload: run completed"
	logMsgRunFailed    = "accessload: run failed"
	logMsgMemoryCounts = "accessload: memory store contents"
)

// observability bundles the optional collectors of a run.
type observability struct {
	logger           *slog.Logger
	contextualLogger accessdata.ContextualLogger
	metrics          accessdata.MetricsCollector
	tracing          accessdata.TracingCollector
	shutdown         func(ctx context.Context) error
}

func run(ctx context.Context, s settings, stdout, stderr io.Writer) (err error) {
	obs, err := newObservability(ctx, s, stderr)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, obs.shutdown(context.WithoutCancel(ctx)))
	}()

	opened, err := openStore(ctx, s, storeOptions(obs)...)
	if err != nil {
		obs.logger.ErrorContext(ctx, logMsgRunFailed, "error", err.Error())
		return err
	}
	defer opened.close()

	reporter, closeReporter, err := newReporter(s, obs)
	if err != nil {
		return err
	}
	defer closeReporter()

	executor, err := batch.NewExecutor(
		batch.WithChunkSize(s.chunkSize),
		batch.WithMaxInFlight(s.maxInFlight),
		batch.WithLogger(obs.logger),
		batch.WithContextualLogger(obs.contextualLogger),
		batch.WithMetrics(obs.metrics),
		batch.WithTracker(func(label string, total int) *batch.Tracker {
			return batch.NewTracker(label, total, batch.WithInterval(s.progressInterval), batch.WithReporter(reporter))
		}),
	)
	if err != nil {
		return err
	}

	runnerOptions := []loadgen.Option{
		loadgen.WithLogger(obs.logger),
		loadgen.WithContextualLogger(obs.contextualLogger),
		loadgen.WithTracing(obs.tracing),
	}
	if s.replicaReads {
		runnerOptions = append(runnerOptions, loadgen.WithReplicaReads())
	}

	runner, err := loadgen.NewRunner(opened.store, executor, runnerOptions...)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, s.run)
	if err != nil {
		obs.logger.ErrorContext(ctx, logMsgRunFailed, "error", err.Error())
		return err
	}

	obs.logger.InfoContext(ctx, logMsgRunCompleted,
		"persons", report.Persons,
		"buildings", report.Buildings,
		"gategroups", report.GateGroups,
		"gates", report.Gates,
		"accessrights", report.AccessRights,
		"simulations", report.Events,
		"skipped_persons", report.SkippedPersons,
	)

	if memStore, ok := opened.store.(*memengine.Store); ok {
		counts := memStore.Counts()
		_, err = fmt.Fprintf(stdout, "%s: %+v\n", logMsgMemoryCounts, counts)
	}

	return err
}

func newObservability(ctx context.Context, s settings, stderr io.Writer) (observability, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: s.logLevel}))

	obs := observability{
		logger:   logger,
		shutdown: func(context.Context) error { return nil },
	}

	if !s.observabilityEnabled {
		return obs, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, s.otlpEndpoint, version)
	if err != nil {
		return observability{}, err
	}

	obs.contextualLogger = teeLogger{
		console: logger,
		otel:    oteladapters.NewSlogBridgeLoggerWithProvider(config.ServiceName, providers.LoggerProvider),
	}
	obs.metrics = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(config.ServiceName))
	obs.tracing = oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(config.ServiceName))
	obs.shutdown = providers.Shutdown

	return obs, nil
}

func storeOptions(obs observability) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithLogger(obs.logger)}

	if obs.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.contextualLogger))
	}

	if obs.metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.tracing))
	}

	return options
}

// newReporter combines the log reporter with the metrics and JSON lines reporters when they are configured.
func newReporter(s settings, obs observability) (batch.Reporter, func(), error) {
	reporters := batch.MultiReporter{batch.NewLogReporter(obs.logger, obs.contextualLogger)}

	if obs.metrics != nil {
		reporters = append(reporters, batch.NewMetricsReporter(obs.metrics))
	}

	if s.telemetryJSON == "" {
		return reporters, func() {}, nil
	}

	file, err := os.OpenFile(s.telemetryJSON, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open telemetry file: %w", err)
	}

	jsonReporter := batch.NewJSONReporter(file)
	reporters = append(reporters, jsonReporter)

	closeFile := func() {
		if writeErr := jsonReporter.Err(); writeErr != nil {
			obs.logger.Warn("accessload: writing telemetry failed", "error", writeErr.Error())
		}

		_ = file.Close()
	}

	return reporters, closeFile, nil
}

// teeLogger writes to the console and to the OpenTelemetry log pipeline.
type teeLogger struct {
	console *slog.Logger
	otel    accessdata.ContextualLogger
}

func (l teeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.console.DebugContext(ctx, msg, args...)
	l.otel.DebugContext(ctx, msg, args...)
}

func (l teeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.console.InfoContext(ctx, msg, args...)
	l.otel.InfoContext(ctx, msg, args...)
}

func (l teeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.console.WarnContext(ctx, msg, args...)
	l.otel.WarnContext(ctx, msg, args...)
}

func (l teeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.console.ErrorContext(ctx, msg, args...)
	l.otel.ErrorContext(ctx, msg, args...)
}
