package postgresengine

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

const (
	dialectPostgres = "postgres"

	colBadgeID        = "badgeid"
	colName           = "name"
	colRegion         = "region"
	colBuildingID     = "buildingid"
	colAddress        = "address"
	colGateGroupID    = "gategroupid"
	colGateID         = "gateid"
	colDirection      = "direction"
	colExpirationDate = "expirationdate"

	aliasPerson      = "person"
	aliasBuilding    = "building"
	aliasGateGroup   = "gategroup"
	aliasAccessRight = "accessright"
)

var dialect = goqu.Dialect(dialectPostgres)

func (s Store) view(name string) exp.IdentifierExpression {
	return goqu.S(s.schema).Table(name)
}

func (s Store) buildInsertQuery(view string, records []goqu.Record) (string, error) {
	rows := make([]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, record)
	}

	sqlQuery, _, err := dialect.Insert(s.view(view)).Rows(rows...).ToSQL()

	return sqlQuery, err
}

func personRecord(person accessdata.Person) goqu.Record {
	return goqu.Record{
		colBadgeID: person.BadgeID.String(),
		colName:    person.Name,
		colRegion:  person.Region.String(),
	}
}

func buildingRecord(building accessdata.Building) goqu.Record {
	return goqu.Record{
		colBuildingID: building.BuildingID.String(),
		colName:       building.Name,
		colAddress:    building.Address,
		colRegion:     building.Region.String(),
	}
}

func gateGroupRecord(group accessdata.GateGroup) goqu.Record {
	return goqu.Record{
		colGateGroupID: group.GateGroupID.String(),
		colName:        group.Name,
		colBuildingID:  group.BuildingID.String(),
	}
}

func gateLinkRecord(link accessdata.GateLink) goqu.Record {
	return goqu.Record{
		colGateGroupID: link.GateGroupID.String(),
		colGateID:      link.GateID.String(),
		colDirection:   link.Direction,
	}
}

func accessRightRecord(right accessdata.AccessRight) goqu.Record {
	return goqu.Record{
		colBadgeID:        right.BadgeID.String(),
		colGateGroupID:    right.GateGroupID.String(),
		colExpirationDate: right.ExpirationDate.UTC(),
	}
}

func (s Store) buildBuildingsQuery(limit int) (string, error) {
	selectStmt := dialect.
		From(s.view(s.views.Building)).
		Select(colBuildingID, colName, colAddress, colRegion)

	if limit > 0 {
		selectStmt = selectStmt.Limit(uint(limit))
	}

	sqlQuery, _, err := selectStmt.ToSQL()

	return sqlQuery, err
}

func (s Store) buildPersonsWithoutAccessRightQuery() (string, error) {
	assigned := dialect.From(s.view(s.views.AccessRight)).Select(colBadgeID)

	sqlQuery, _, err := dialect.
		From(s.view(s.views.Person)).
		Select(colBadgeID, colName, colRegion).
		Where(goqu.C(colBadgeID).NotIn(assigned)).
		ToSQL()

	return sqlQuery, err
}

func (s Store) buildGateGroupRegionsQuery() (string, error) {
	sqlQuery, _, err := dialect.
		From(s.view(s.views.GateGroup).As(aliasGateGroup)).
		InnerJoin(
			s.view(s.views.Building).As(aliasBuilding),
			goqu.On(goqu.T(aliasGateGroup).Col(colBuildingID).Eq(goqu.T(aliasBuilding).Col(colBuildingID))),
		).
		Select(
			goqu.T(aliasGateGroup).Col(colGateGroupID),
			goqu.T(aliasGateGroup).Col(colBuildingID),
			goqu.T(aliasBuilding).Col(colRegion),
		).
		ToSQL()

	return sqlQuery, err
}

func (s Store) buildPersonAccessesQuery() (string, error) {
	sqlQuery, _, err := dialect.
		From(s.view(s.views.Person).As(aliasPerson)).
		InnerJoin(
			s.view(s.views.AccessRight).As(aliasAccessRight),
			goqu.On(goqu.T(aliasPerson).Col(colBadgeID).Eq(goqu.T(aliasAccessRight).Col(colBadgeID))),
		).
		Select(
			goqu.T(aliasPerson).Col(colBadgeID),
			goqu.T(aliasPerson).Col(colRegion),
			goqu.T(aliasAccessRight).Col(colGateGroupID),
		).
		ToSQL()

	return sqlQuery, err
}

func (s Store) buildGateLinksQuery() (string, error) {
	sqlQuery, _, err := dialect.
		From(s.view(s.views.GateLink)).
		Select(colGateGroupID, colGateID, colDirection).
		ToSQL()

	return sqlQuery, err
}

func (s Store) buildEnterBuildingQuery(event accessdata.SimulationEvent) (string, error) {
	procedure := goqu.Func(s.schema+"."+s.views.EnterBuilding, event.BadgeID.String(), event.GateID.String())

	sqlQuery, _, err := dialect.Select(procedure).ToSQL()

	return sqlQuery, err
}
