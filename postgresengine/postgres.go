package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/postgresengine/internal/adapters"
)

const (
	defaultSchema = "distributed"

	logMsgBuildQueryFailed = "failed to build sql query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgDBExecFailed     = "database execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgOperation        = "store operation: "

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrRowCount   = "row_count"
	logAttrDurationMS = "duration_ms"
	logAttrOperation  = "operation"

	operationInsertPersons      = "insert_persons"
	operationInsertBuildings    = "insert_buildings"
	operationInsertGateGroups   = "insert_gate_groups"
	operationInsertGateLinks    = "insert_gate_links"
	operationInsertAccessRights = "insert_access_rights"
	operationQueryBuildings     = "query_buildings"
	operationQueryPersons       = "query_persons_without_access_right"
	operationQueryGateGroups    = "query_gate_group_regions"
	operationQueryAccesses      = "query_person_accesses"
	operationQueryGateLinks     = "query_gate_links"
	operationEnterBuilding      = "enter_building"
)

// Store is the PostgreSQL implementation of accessdata.Store.
type Store struct {
	db               adapters.DBAdapter
	schema           string
	views            Views
	logger           accessdata.Logger
	contextualLogger accessdata.ContextualLogger
	metricsCollector accessdata.MetricsCollector
	tracingCollector accessdata.TracingCollector
}

var _ accessdata.Store = Store{}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, accessdata.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store that sends writes to the primary pool and
// reads to the replica pool, for contexts created with accessdata.WithEventualConsistency.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, accessdata.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, accessdata.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica is NewStoreFromPGXPoolAndReplica for sql.DB connections.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, accessdata.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, accessdata.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:     db,
		schema: defaultSchema,
		views:  DefaultViews(),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// InsertPersons inserts all persons with one statement into the person view.
func (s Store) InsertPersons(ctx context.Context, persons ...accessdata.Person) error {
	return insertAll(ctx, s, operationInsertPersons, s.views.Person, persons, personRecord)
}

// InsertBuildings inserts all buildings with one statement into the building view.
func (s Store) InsertBuildings(ctx context.Context, buildings ...accessdata.Building) error {
	return insertAll(ctx, s, operationInsertBuildings, s.views.Building, buildings, buildingRecord)
}

// InsertGateGroups inserts all gate-groups with one statement into the gate-group view.
func (s Store) InsertGateGroups(ctx context.Context, groups ...accessdata.GateGroup) error {
	return insertAll(ctx, s, operationInsertGateGroups, s.views.GateGroup, groups, gateGroupRecord)
}

// InsertGateLinks inserts gates together with their gate-group link into the combined gate view.
func (s Store) InsertGateLinks(ctx context.Context, links ...accessdata.GateLink) error {
	return insertAll(ctx, s, operationInsertGateLinks, s.views.GateLink, links, gateLinkRecord)
}

// InsertAccessRights inserts all access rights with one statement into the access-right view.
func (s Store) InsertAccessRights(ctx context.Context, rights ...accessdata.AccessRight) error {
	return insertAll(ctx, s, operationInsertAccessRights, s.views.AccessRight, rights, accessRightRecord)
}

func insertAll[T any](
	ctx context.Context,
	s Store,
	operation string,
	view string,
	items []T,
	toRecord func(T) goqu.Record,
) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]goqu.Record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}

	ctx, span := s.startSpan(ctx, operation)

	sqlQuery, buildErr := s.buildInsertQuery(view, records)
	if buildErr != nil {
		return s.failBuild(ctx, span, operation, buildErr)
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if execErr != nil {
		err := errors.Join(accessdata.ErrInsertFailed, classifyConstraintViolation(execErr), execErr)
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrOperation, operation, logAttrQuery, sqlQuery)

		return s.finishError(ctx, span, operation, errorTypeOf(err), duration, err)
	}

	s.finishSuccess(ctx, span, operation, len(items), duration)

	return nil
}

// QueryBuildings reads up to limit buildings. A limit of zero or less reads all buildings.
func (s Store) QueryBuildings(ctx context.Context, limit int) ([]accessdata.Building, error) {
	return queryAll(ctx, s, operationQueryBuildings,
		func() (string, error) { return s.buildBuildingsQuery(limit) },
		func(rows adapters.DBRows) (accessdata.Building, error) {
			var building accessdata.Building
			var id, region string

			if err := rows.Scan(&id, &building.Name, &building.Address, &region); err != nil {
				return building, err
			}

			ids, err := parseIDs(id)
			if err != nil {
				return building, err
			}

			building.BuildingID = ids[0]
			building.Region = accessdata.Region(region)

			return building, nil
		},
	)
}

// QueryPersonsWithoutAccessRight reads all persons whose badge is absent from the access-right view.
func (s Store) QueryPersonsWithoutAccessRight(ctx context.Context) ([]accessdata.Person, error) {
	return queryAll(ctx, s, operationQueryPersons,
		s.buildPersonsWithoutAccessRightQuery,
		func(rows adapters.DBRows) (accessdata.Person, error) {
			var person accessdata.Person
			var badgeID, region string
			var name sql.NullString

			if err := rows.Scan(&badgeID, &name, &region); err != nil {
				return person, err
			}

			ids, err := parseIDs(badgeID)
			if err != nil {
				return person, err
			}

			person.BadgeID = ids[0]
			person.Name = name.String
			person.Region = accessdata.Region(region)

			return person, nil
		},
	)
}

// QueryGateGroupRegions reads every gate-group together with the region of its building.
func (s Store) QueryGateGroupRegions(ctx context.Context) ([]accessdata.GateGroupRegion, error) {
	return queryAll(ctx, s, operationQueryGateGroups,
		s.buildGateGroupRegionsQuery,
		func(rows adapters.DBRows) (accessdata.GateGroupRegion, error) {
			var group accessdata.GateGroupRegion
			var groupID, buildingID, region string

			if err := rows.Scan(&groupID, &buildingID, &region); err != nil {
				return group, err
			}

			ids, err := parseIDs(groupID, buildingID)
			if err != nil {
				return group, err
			}

			group.GateGroupID, group.BuildingID = ids[0], ids[1]
			group.Region = accessdata.Region(region)

			return group, nil
		},
	)
}

// QueryPersonAccesses reads the region and gate-group of every person holding an access right.
func (s Store) QueryPersonAccesses(ctx context.Context) ([]accessdata.PersonAccess, error) {
	return queryAll(ctx, s, operationQueryAccesses,
		s.buildPersonAccessesQuery,
		func(rows adapters.DBRows) (accessdata.PersonAccess, error) {
			var access accessdata.PersonAccess
			var badgeID, region, groupID string

			if err := rows.Scan(&badgeID, &region, &groupID); err != nil {
				return access, err
			}

			ids, err := parseIDs(badgeID, groupID)
			if err != nil {
				return access, err
			}

			access.BadgeID, access.GateGroupID = ids[0], ids[1]
			access.Region = accessdata.Region(region)

			return access, nil
		},
	)
}

// QueryGateLinks reads the complete gate topology.
func (s Store) QueryGateLinks(ctx context.Context) ([]accessdata.GateLink, error) {
	return queryAll(ctx, s, operationQueryGateLinks,
		s.buildGateLinksQuery,
		func(rows adapters.DBRows) (accessdata.GateLink, error) {
			var link accessdata.GateLink
			var groupID, gateID string

			if err := rows.Scan(&groupID, &gateID, &link.Direction); err != nil {
				return link, err
			}

			ids, err := parseIDs(groupID, gateID)
			if err != nil {
				return link, err
			}

			link.GateGroupID, link.GateID = ids[0], ids[1]

			return link, nil
		},
	)
}

func queryAll[T any](
	ctx context.Context,
	s Store,
	operation string,
	build func() (string, error),
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {
	ctx, span := s.startSpan(ctx, operation)

	sqlQuery, buildErr := build()
	if buildErr != nil {
		return nil, s.failBuild(ctx, span, operation, buildErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		duration := time.Since(start)
		s.logQueryWithDuration(ctx, sqlQuery, operation, duration)
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrOperation, operation, logAttrQuery, sqlQuery)

		return nil, s.finishError(ctx, span, operation, errorTypeQuery, duration,
			errors.Join(accessdata.ErrQueryFailed, queryErr))
	}
	defer s.closeRows(ctx, rows)

	result := make([]T, 0)
	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			duration := time.Since(start)
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)

			return nil, s.finishError(ctx, span, operation, errorTypeScan, duration,
				errors.Join(accessdata.ErrScanFailed, scanErr))
		}

		result = append(result, item)
	}

	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrOperation, operation, logAttrQuery, sqlQuery)

		return nil, s.finishError(ctx, span, operation, errorTypeQuery, duration,
			errors.Join(accessdata.ErrQueryFailed, rowsErr))
	}

	s.finishSuccess(ctx, span, operation, len(result), duration)

	return result, nil
}

// EnterBuilding calls the enter_building procedure once for the given crossing.
func (s Store) EnterBuilding(ctx context.Context, event accessdata.SimulationEvent) error {
	ctx, span := s.startSpan(ctx, operationEnterBuilding)

	sqlQuery, buildErr := s.buildEnterBuildingQuery(event)
	if buildErr != nil {
		return s.failBuild(ctx, span, operationEnterBuilding, buildErr)
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operationEnterBuilding, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrOperation, operationEnterBuilding, logAttrQuery, sqlQuery)

		return s.finishError(ctx, span, operationEnterBuilding, errorTypeProcedure, duration,
			errors.Join(accessdata.ErrProcedureCallFailed, execErr))
	}

	s.finishSuccess(ctx, span, operationEnterBuilding, 1, duration)

	return nil
}

func (s Store) failBuild(ctx context.Context, span accessdata.SpanContext, operation string, buildErr error) error {
	s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)

	return s.finishError(ctx, span, operation, errorTypeBuildQuery, 0,
		errors.Join(accessdata.ErrBuildingQueryFailed, buildErr))
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// parseIDs parses uuid columns that were scanned as text, which every adapter supports.
func parseIDs(raw ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}
