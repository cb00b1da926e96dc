package postgresengine_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/postgresengine"
	"github.com/AntonStoeckl/accessrights-loadgen/testutil/helper"
)

func setupMockStore(t *testing.T, options ...postgresengine.Option) (postgresengine.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "creating sqlmock failed")
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewStoreFromSQLDB(db, options...)
	require.NoError(t, err, "creating the store failed")

	return store, mock
}

func Test_NewStore_When_ConnectionIsNil_ThenItFails(t *testing.T) {
	_, err := postgresengine.NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromSQLX(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
}

func Test_NewStore_When_OptionsAreInvalid_ThenItFails(t *testing.T) {
	// setup
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	views := postgresengine.DefaultViews()
	views.GateLink = ""

	// act
	_, schemaErr := postgresengine.NewStoreFromSQLDB(db, postgresengine.WithSchema(""))
	_, viewsErr := postgresengine.NewStoreFromSQLDB(db, postgresengine.WithViews(views))

	// assert
	assert.ErrorIs(t, schemaErr, ErrEmptySchemaName)
	assert.ErrorIs(t, viewsErr, ErrEmptyViewName)
}

func Test_InsertPersons_When_Called_ThenOneInsertIntoThePersonViewIsExecuted(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	first := Person{BadgeID: uuid.New(), Region: RegionEU, Name: "Ada"}
	second := Person{BadgeID: uuid.New(), Region: RegionUS, Name: "Alan"}
	mock.ExpectExec(
		regexp.QuoteMeta(`INSERT INTO "distributed"."person_view" ("badgeid", "name", "region") VALUES ('`+first.BadgeID.String()+`', 'Ada', 'EU')`) +
			`.*` + regexp.QuoteMeta(second.BadgeID.String()),
	).WillReturnResult(sqlmock.NewResult(0, 2))

	// act
	err := store.InsertPersons(context.Background(), first, second)

	// assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_InsertPersons_When_NothingIsGiven_ThenNoStatementIsExecuted(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// act
	err := store.InsertPersons(context.Background())

	// assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_InsertGateLinks_When_Called_ThenDirectionIsWrittenAsBoolean(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	link := GateLink{GateGroupID: uuid.New(), GateID: uuid.New(), Direction: true}
	mock.ExpectExec(
		regexp.QuoteMeta(`INSERT INTO "distributed"."gate_and_gatetogategroup_view" ("direction", "gategroupid", "gateid") VALUES (TRUE, '`+
			link.GateGroupID.String() + `', '` + link.GateID.String() + `')`),
	).WillReturnResult(sqlmock.NewResult(0, 1))

	// act
	err := store.InsertGateLinks(context.Background(), link)

	// assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_InsertAccessRights_When_PrimaryKeyIsViolated_ThenItFailsWithTheClassifiedError(t *testing.T) {
	// setup
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	store, mock := setupMockStore(t, postgresengine.WithMetrics(metricsSpy))

	// arrange
	right := AccessRight{BadgeID: uuid.New(), GateGroupID: uuid.New(), ExpirationDate: time.Now().Add(time.Hour)}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "distributed"."accessright_view"`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	// act
	err := store.InsertAccessRights(context.Background(), right)

	// assert
	assert.ErrorIs(t, err, ErrInsertFailed)
	assert.ErrorIs(t, err, ErrPrimaryKeyViolation)
	assert.NotErrorIs(t, err, ErrForeignKeyViolation)
	assert.True(t, metricsSpy.HasCounterRecordForMetric("accessload_store_errors_total").
		WithLabel("operation", "insert_access_rights").
		WithLabel("error_type", "primary_key_violation").
		Assert())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_InsertGateGroups_When_BuildingDoesNotExist_ThenItFailsWithForeignKeyViolation(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	group := GateGroup{GateGroupID: uuid.New(), Name: "Gate Group 1", BuildingID: uuid.New()}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "distributed"."gategroup_view" ("buildingid", "gategroupid", "name")`)).
		WillReturnError(&pq.Error{Code: "23503"})

	// act
	err := store.InsertGateGroups(context.Background(), group)

	// assert
	assert.ErrorIs(t, err, ErrInsertFailed)
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
}

func Test_QueryBuildings_When_LimitIsGiven_ThenItIsAppliedAndRowsAreMapped(t *testing.T) {
	// setup
	logSpy := helper.NewLogHandlerSpy(false)
	store, mock := setupMockStore(t, postgresengine.WithLogger(logSpy.Logger()))

	// arrange
	buildingID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "buildingid", "name", "address", "region" FROM "distributed"."building_view" LIMIT 2`,
	)).WillReturnRows(
		sqlmock.NewRows([]string{"buildingid", "name", "address", "region"}).
			AddRow(buildingID.String(), "Main Street", "12 Main Street, Berlin", "EU"),
	)

	// act
	buildings, err := store.QueryBuildings(context.Background(), 2)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []Building{{BuildingID: buildingID, Name: "Main Street", Address: "12 Main Street, Berlin", Region: RegionEU}}, buildings)
	assert.True(t, logSpy.HasDebugLogWithMessage("executed sql for: query_buildings").WithDurationMS().Assert())
	assert.True(t, logSpy.HasInfoLogWithMessage("store operation: query_buildings").WithAttr("row_count", "1").Assert())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryPersonsWithoutAccessRight_When_Called_ThenItExcludesAssignedBadges(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	badgeID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "distributed"."person_view" WHERE ("badgeid" NOT IN (SELECT "badgeid" FROM "distributed"."accessright_view"))`)).
		WillReturnRows(sqlmock.NewRows([]string{"badgeid", "name", "region"}).AddRow(badgeID.String(), nil, "US"))

	// act
	persons, err := store.QueryPersonsWithoutAccessRight(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []Person{{BadgeID: badgeID, Region: RegionUS}}, persons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryGateGroupRegions_When_Called_ThenGateGroupsAreJoinedWithTheirBuilding(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	groupID, buildingID := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "gategroup"."gategroupid", "gategroup"."buildingid", "building"."region" ` +
			`FROM "distributed"."gategroup_view" AS "gategroup" ` +
			`INNER JOIN "distributed"."building_view" AS "building" ON ("gategroup"."buildingid" = "building"."buildingid")`,
	)).WillReturnRows(
		sqlmock.NewRows([]string{"gategroupid", "buildingid", "region"}).AddRow(groupID.String(), buildingID.String(), "EU"),
	)

	// act
	groups, err := store.QueryGateGroupRegions(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []GateGroupRegion{{GateGroupID: groupID, BuildingID: buildingID, Region: RegionEU}}, groups)
}

func Test_QueryPersonAccesses_And_QueryGateLinks_When_Called_ThenRowsAreMapped(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	badgeID, groupID, gateID := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`INNER JOIN "distributed"."accessright_view" AS "accessright"`)).
		WillReturnRows(sqlmock.NewRows([]string{"badgeid", "region", "gategroupid"}).AddRow(badgeID.String(), "US", groupID.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "gategroupid", "gateid", "direction" FROM "distributed"."gate_and_gatetogategroup_view"`)).
		WillReturnRows(sqlmock.NewRows([]string{"gategroupid", "gateid", "direction"}).AddRow(groupID.String(), gateID.String(), false))

	// act
	accesses, accessesErr := store.QueryPersonAccesses(context.Background())
	links, linksErr := store.QueryGateLinks(context.Background())

	// assert
	require.NoError(t, accessesErr)
	require.NoError(t, linksErr)
	assert.Equal(t, []PersonAccess{{BadgeID: badgeID, Region: RegionUS, GateGroupID: groupID}}, accesses)
	assert.Equal(t, []GateLink{{GateGroupID: groupID, GateID: gateID, Direction: false}}, links)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Query_When_ARowHoldsAnInvalidID_ThenItFailsWithScanError(t *testing.T) {
	// setup
	tracingSpy := helper.NewTracingCollectorSpy()
	store, mock := setupMockStore(t, postgresengine.WithTracing(tracingSpy))

	// arrange
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "distributed"."gate_and_gatetogategroup_view"`)).
		WillReturnRows(sqlmock.NewRows([]string{"gategroupid", "gateid", "direction"}).AddRow("not-a-uuid", uuid.NewString(), true))

	// act
	links, err := store.QueryGateLinks(context.Background())

	// assert
	assert.ErrorIs(t, err, ErrScanFailed)
	assert.Nil(t, links)

	spans := tracingSpy.GetFinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "accessload.store.query_gate_links", spans[0].Name)
	assert.Equal(t, "error", spans[0].Status)
	assert.Equal(t, "scan", spans[0].EndAttributes["error_type"])
	assert.Zero(t, tracingSpy.GetOpenSpanCount())
}

func Test_Query_When_TheDatabaseFails_ThenItFailsWithQueryError(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	cause := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "distributed"."building_view"`)).WillReturnError(cause)

	// act
	_, err := store.QueryBuildings(context.Background(), 0)

	// assert
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, cause)
}

func Test_EnterBuilding_When_Called_ThenTheProcedureIsCalledWithBadgeAndGate(t *testing.T) {
	// setup
	tracingSpy := helper.NewTracingCollectorSpy()
	store, mock := setupMockStore(t, postgresengine.WithTracing(tracingSpy))

	// arrange
	event := SimulationEvent{BadgeID: uuid.New(), GateID: uuid.New()}
	mock.ExpectExec(regexp.QuoteMeta(
		`SELECT distributed.enter_building('` + event.BadgeID.String() + `', '` + event.GateID.String() + `')`,
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	// act
	err := store.EnterBuilding(context.Background(), event)

	// assert
	require.NoError(t, err)
	spans := tracingSpy.GetFinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "success", spans[0].Status)
	assert.Equal(t, "enter_building", spans[0].StartAttributes["operation"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_EnterBuilding_When_TheProcedureFails_ThenItFailsWithProcedureError(t *testing.T) {
	// setup
	store, mock := setupMockStore(t)

	// arrange
	mock.ExpectExec(regexp.QuoteMeta(`SELECT distributed.enter_building(`)).WillReturnError(errors.New("access denied"))

	// act
	err := store.EnterBuilding(context.Background(), SimulationEvent{BadgeID: uuid.New(), GateID: uuid.New()})

	// assert
	assert.ErrorIs(t, err, ErrProcedureCallFailed)
}

func Test_Store_When_SchemaIsConfigured_ThenAllStatementsUseIt(t *testing.T) {
	// setup
	store, mock := setupMockStore(t, postgresengine.WithSchema("tenant_a"))

	// arrange
	event := SimulationEvent{BadgeID: uuid.New(), GateID: uuid.New()}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tenant_a"."building_view"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT tenant_a.enter_building(`)).WillReturnResult(sqlmock.NewResult(0, 1))

	// act
	insertErr := store.InsertBuildings(context.Background(), Building{BuildingID: uuid.New(), Name: "Mill Road", Region: RegionUS})
	enterErr := store.EnterBuilding(context.Background(), event)

	// assert
	assert.NoError(t, insertErr)
	assert.NoError(t, enterErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Store_When_ReplicaIsConfigured_ThenOnlyEventualReadsGoToTheReplica(t *testing.T) {
	// setup
	primary, primaryMock, err := sqlmock.New()
	require.NoError(t, err)
	defer primary.Close()

	replica, replicaMock, err := sqlmock.New()
	require.NoError(t, err)
	defer replica.Close()

	store, err := postgresengine.NewStoreFromSQLDBAndReplica(primary, replica)
	require.NoError(t, err)

	// arrange
	columns := []string{"gategroupid", "gateid", "direction"}
	replicaMock.ExpectQuery(regexp.QuoteMeta(`FROM "distributed"."gate_and_gatetogategroup_view"`)).
		WillReturnRows(sqlmock.NewRows(columns))
	primaryMock.ExpectQuery(regexp.QuoteMeta(`FROM "distributed"."gate_and_gatetogategroup_view"`)).
		WillReturnRows(sqlmock.NewRows(columns))
	primaryMock.ExpectExec(regexp.QuoteMeta(`SELECT distributed.enter_building(`)).WillReturnResult(sqlmock.NewResult(0, 1))

	// act
	ctx := WithEventualConsistency(context.Background())
	_, eventualErr := store.QueryGateLinks(ctx)
	_, strongErr := store.QueryGateLinks(context.Background())
	enterErr := store.EnterBuilding(ctx, SimulationEvent{BadgeID: uuid.New(), GateID: uuid.New()})

	// assert
	assert.NoError(t, eventualErr)
	assert.NoError(t, strongErr)
	assert.NoError(t, enterErr)
	assert.NoError(t, replicaMock.ExpectationsWereMet())
	assert.NoError(t, primaryMock.ExpectationsWereMet())
}
