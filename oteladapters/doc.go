// Package oteladapters implements the observability interfaces of package accessdata with OpenTelemetry.
//
//   - SlogBridgeLogger implements accessdata.ContextualLogger.
//   - MetricsCollector implements accessdata.ContextualMetricsCollector.
//   - TracingCollector implements accessdata.TracingCollector.
//
// The adapters only use the OpenTelemetry API; wiring exporters and providers is done by package config.
package oteladapters
