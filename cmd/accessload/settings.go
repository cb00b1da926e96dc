package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/batch"
	"github.com/AntonStoeckl/accessrights-loadgen/generator"
	"github.com/AntonStoeckl/accessrights-loadgen/loadgen"
)

const (
	adapterPGX    = "pgx"
	adapterSQL    = "sql"
	adapterSQLX   = "sqlx"
	adapterMemory = "memory"
)

// settings is everything a run needs, validated before any store I/O.
type settings struct {
	run loadgen.Config

	dsn            string
	replicaDSN     string
	replicaReads   bool
	dbAdapter      string
	schema         string
	maxConnections int32

	chunkSize        int
	maxInFlight      int
	progressInterval time.Duration
	telemetryJSON    string

	observabilityEnabled bool
	otlpEndpoint         string
	logLevel             slog.Level
}

func newSettings(v *viper.Viper, flags *pflag.FlagSet) (settings, error) {
	runCfg, err := runConfig(flags)
	if err != nil {
		return settings{}, err
	}

	s := settings{
		run:                  runCfg,
		dsn:                  v.GetString(flagDSN),
		replicaDSN:           v.GetString(flagReplicaDSN),
		replicaReads:         v.GetBool(flagReadFromReplica),
		dbAdapter:            strings.ToLower(v.GetString(flagDBAdapter)),
		schema:               v.GetString(flagSchema),
		maxConnections:       v.GetInt32(flagMaxConnections),
		chunkSize:            v.GetInt(flagChunkSize),
		maxInFlight:          v.GetInt(flagMaxInFlight),
		progressInterval:     durationOrDefault(v.GetDuration(flagProgressInterval), batch.DefaultInterval),
		telemetryJSON:        v.GetString(flagTelemetryJSON),
		observabilityEnabled: v.GetBool(flagObservabilityEnabled),
		otlpEndpoint:         v.GetString(flagOTLPEndpoint),
	}

	switch s.dbAdapter {
	case adapterPGX, adapterSQL, adapterSQLX, adapterMemory:
	default:
		return settings{}, fmt.Errorf("%w: %q", accessdata.ErrUnknownDBAdapter, s.dbAdapter)
	}

	if s.replicaReads && (s.replicaDSN == "" || (s.dbAdapter != adapterPGX && s.dbAdapter != adapterSQL)) {
		return settings{}, fmt.Errorf("%w: --%s needs --%s with the %s or %s adapter",
			accessdata.ErrReplicaNotConfigured, flagReadFromReplica, flagReplicaDSN, adapterPGX, adapterSQL)
	}

	if s.run.WriteMode, err = loadgen.ParseWriteMode(v.GetString(flagWriteMode)); err != nil {
		return settings{}, err
	}

	if s.run.MissingGatePolicy, err = generator.ParseMissingGatePolicy(v.GetString(flagMissingGatePolicy)); err != nil {
		return settings{}, err
	}

	if s.chunkSize < 1 {
		return settings{}, fmt.Errorf("%w: got %d", accessdata.ErrInvalidChunkSize, s.chunkSize)
	}

	if err = s.logLevel.UnmarshalText([]byte(v.GetString(flagLogLevel))); err != nil {
		return settings{}, fmt.Errorf("invalid log level: %w", err)
	}

	if err = s.run.Validate(); err != nil {
		return settings{}, err
	}

	return s, nil
}

// runConfig reads the phase flags. A count flag that was given must be at least 1.
func runConfig(flags *pflag.FlagSet) (loadgen.Config, error) {
	var cfg loadgen.Config

	counts := []struct {
		name   string
		target *int
	}{
		{name: flagPerson, target: &cfg.Persons},
		{name: flagBuilding, target: &cfg.Buildings},
		{name: flagGate, target: &cfg.Gates},
	}

	for _, count := range counts {
		value, err := flags.GetInt(count.name)
		if err != nil {
			return loadgen.Config{}, err
		}

		if flags.Changed(count.name) && value < 1 {
			return loadgen.Config{}, fmt.Errorf("%w: invalid value for %s: %d", accessdata.ErrInvalidCount, count.name, value)
		}

		*count.target = value
	}

	var err error
	if cfg.AccessRights, err = flags.GetBool(flagAccessRight); err != nil {
		return loadgen.Config{}, err
	}

	if cfg.Simulation, err = flags.GetBool(flagSimulation); err != nil {
		return loadgen.Config{}, err
	}

	return cfg, nil
}

func durationOrDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}

	return d
}
