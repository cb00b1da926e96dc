// Package config builds the database connections and OpenTelemetry providers used by cmd/accessload.
//
// It offers one factory per supported PostgreSQL adapter (pgx.Pool, sql.DB, sqlx.DB) with pool
// settings sized for bulk inserts, and an OTLP gRPC setup for traces, metrics and logs.
package config
