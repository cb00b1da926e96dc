package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/accessrights-loadgen/batch"
	"github.com/AntonStoeckl/accessrights-loadgen/config"
)

const (
	envPrefix = "ACCESSLOAD"

	flagPerson      = "person"
	flagBuilding    = "building"
	flagGate        = "gate"
	flagAccessRight = "accessright"
	flagSimulation  = "simulation"

	flagDSN                  = "dsn"
	flagReplicaDSN           = "replica-dsn"
	flagReadFromReplica      = "read-from-replica"
	flagDBAdapter            = "db-adapter"
	flagSchema               = "schema"
	flagMaxConnections       = "max-connections"
	flagChunkSize            = "chunk-size"
	flagMaxInFlight          = "max-in-flight"
	flagWriteMode            = "write-mode"
	flagMissingGatePolicy    = "missing-gate-policy"
	flagProgressInterval     = "progress-interval"
	flagTelemetryJSON        = "telemetry-json"
	flagObservabilityEnabled = "observability-enabled"
	flagOTLPEndpoint         = "otlp-endpoint"
	flagLogLevel             = "log-level"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "accessload",
		Short: "Generate an access-control dataset and replay badge crossings against it.",
		Long: `accessload writes persons, buildings, gates and access rights into the store and
replays one entry and one exit per person holding an access right.

The phases are independent and combinable. They always run in the order
persons, buildings, gates, access rights, simulation.`,
		Version:       version,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSettings(v, cmd.Flags())
			if err != nil {
				return err
			}

			return run(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	addPhaseFlags(cmd.Flags())
	addRuntimeFlags(cmd.Flags())

	return cmd
}

func addPhaseFlags(flags *pflag.FlagSet) {
	flags.IntP(flagPerson, "p", 0, "number of persons to generate")
	flags.IntP(flagBuilding, "b", 0, "number of buildings to generate")
	flags.IntP(flagGate, "g", 0, "number of gates to generate, grouped by 4 into gate-groups")
	flags.BoolP(flagAccessRight, "a", false, "assign one access right to every person without one")
	flags.BoolP(flagSimulation, "s", false, "replay one entry and one exit per person holding an access right")
}

func addRuntimeFlags(flags *pflag.FlagSet) {
	flags.String(flagDSN, config.DefaultDSN(), "PostgreSQL connection string")
	flags.String(flagReplicaDSN, "", "optional read replica connection string (pgx and sql adapters)")
	flags.Bool(flagReadFromReplica, false, "serve the simulation phase's reads from the replica")
	flags.String(flagDBAdapter, adapterPGX, "store adapter: pgx, sql, sqlx or memory")
	flags.String(flagSchema, "distributed", "schema holding the views and the enter_building procedure")
	flags.Int32(flagMaxConnections, config.DefaultMaxConnections, "connection pool size")
	flags.Int(flagChunkSize, batch.DefaultChunkSize, "inserts dispatched together in chunked write mode")
	flags.Int(flagMaxInFlight, 0, "cap on concurrently running inserts, 0 means no cap")
	flags.String(flagWriteMode, "chunked", "entity write mode: chunked or concurrent")
	flags.String(flagMissingGatePolicy, "fail", "persons whose gate-group lacks an entry or exit gate: fail or skip")
	flags.Duration(flagProgressInterval, batch.DefaultInterval, "throughput sampling interval")
	flags.String(flagTelemetryJSON, "", "file to append throughput samples to as JSON lines")
	flags.Bool(flagObservabilityEnabled, false, "export traces, metrics and logs via OTLP gRPC")
	flags.String(flagOTLPEndpoint, config.DefaultOTLPEndpoint(), "OTLP gRPC endpoint")
	flags.String(flagLogLevel, "info", "log level: debug, info, warn or error")
}
