package accessdata

import "errors"

// Configuration errors, detected before any store I/O.
var (
	ErrInvalidCount             = errors.New("count must be a positive integer")
	ErrNoPhaseSelected          = errors.New("no generation phase selected")
	ErrUnknownDBAdapter         = errors.New("unknown database adapter")
	ErrUnknownWriteMode         = errors.New("unknown write mode")
	ErrUnknownMissingGatePolicy = errors.New("unknown missing gate policy")
	ErrInvalidChunkSize         = errors.New("chunk size must be a positive integer")
	ErrReplicaNotConfigured     = errors.New("replica reads require a replica connection")
)

// Precondition errors, raised instead of producing invalid foreign keys.
var (
	ErrEmptyCandidates       = errors.New("cannot pick from an empty candidate set")
	ErrInsufficientBuildings = errors.New("not enough buildings for the requested gate-groups")
	ErrNoGateGroupInRegion   = errors.New("no gate-group available in the region of the person")
	ErrNoEligibleGate        = errors.New("gate-group has no gate for the required direction")
	ErrIDGenerationFailed    = errors.New("generating a unique identifier failed")
)

// Store errors.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptySchemaName       = errors.New("empty schema name supplied")
	ErrEmptyViewName         = errors.New("empty view name supplied")
	ErrBuildingQueryFailed   = errors.New("building the sql query failed")
	ErrQueryFailed           = errors.New("querying the store failed")
	ErrScanFailed            = errors.New("scanning a database row failed")
	ErrInsertFailed          = errors.New("inserting records failed")
	ErrProcedureCallFailed   = errors.New("calling the stored procedure failed")
	ErrPrimaryKeyViolation   = errors.New("duplicate primary key")
	ErrForeignKeyViolation   = errors.New("referenced record does not exist")
	ErrRegionMismatch        = errors.New("person and gate-group are in different regions")
)

// ErrBatchFailed wraps the first failing operation of a batch.
var ErrBatchFailed = errors.New("batch execution failed")
