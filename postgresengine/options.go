package postgresengine

import (
	"fmt"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// Views names the relations and the procedure the store works with.
type Views struct {
	Person        string
	Building      string
	GateGroup     string
	GateLink      string
	AccessRight   string
	EnterBuilding string
}

// DefaultViews returns the relation names of the access-control schema.
func DefaultViews() Views {
	return Views{
		Person:        "person_view",
		Building:      "building_view",
		GateGroup:     "gategroup_view",
		GateLink:      "gate_and_gatetogategroup_view",
		AccessRight:   "accessright_view",
		EnterBuilding: "enter_building",
	}
}

func (v Views) validate() error {
	names := map[string]string{
		"person":         v.Person,
		"building":       v.Building,
		"gategroup":      v.GateGroup,
		"gate link":      v.GateLink,
		"accessright":    v.AccessRight,
		"enter building": v.EnterBuilding,
	}

	for kind, name := range names {
		if name == "" {
			return fmt.Errorf("%w: %s", accessdata.ErrEmptyViewName, kind)
		}
	}

	return nil
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithSchema sets the schema containing the views and the procedure.
func WithSchema(schema string) Option {
	return func(s *Store) error {
		if schema == "" {
			return accessdata.ErrEmptySchemaName
		}

		s.schema = schema

		return nil
	}
}

// WithViews replaces the relation and procedure names.
func WithViews(views Views) Option {
	return func(s *Store) error {
		if err := views.validate(); err != nil {
			return err
		}

		s.views = views

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts and durations per operation
// Warn level: non-critical issues like failing to close rows
// Error level: failures that abort an operation.
func WithLogger(logger accessdata.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store, used in preference to the plain logger.
func WithContextualLogger(logger accessdata.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, row counts and database errors.
func WithMetrics(collector accessdata.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store. Every operation becomes one span.
func WithTracing(collector accessdata.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
