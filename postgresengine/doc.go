// Package postgresengine provides the PostgreSQL implementation of accessdata.Store.
//
// The store writes into and reads from a fixed set of views (by default in the schema "distributed")
// and calls the stored procedure enter_building for every simulated gate crossing.
// It works with pgxpool.Pool, sql.DB (lib/pq) or sqlx.DB connections:
//
//	pool, err := pgxpool.NewWithConfig(ctx, config.PGXPoolConfig(dsn, 50))
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//
// All SQL is built with goqu. Observability is optional: a Logger, ContextualLogger, MetricsCollector
// and TracingCollector can be supplied as options, for example the OpenTelemetry adapters from
// package oteladapters.
package postgresengine
