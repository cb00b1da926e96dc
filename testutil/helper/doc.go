// Package helper provides test doubles shared by the package tests: spies for logging, metrics
// and tracing, a manually driven ticker, and fixtures for store contents.
package helper
