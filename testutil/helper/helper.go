package helper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// GivenUniqueID returns a fresh time-ordered UUID.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// FixturePerson returns a Person in region.
func FixturePerson(t testing.TB, region accessdata.Region) accessdata.Person {
	return accessdata.Person{BadgeID: GivenUniqueID(t), Region: region, Name: "Ada"}
}

// FixtureBuilding returns a Building in region.
func FixtureBuilding(t testing.TB, region accessdata.Region) accessdata.Building {
	return accessdata.Building{
		BuildingID: GivenUniqueID(t),
		Name:       "Mill Road",
		Address:    "1 Mill Road, Austin",
		Region:     region,
	}
}

// GivenPersonsWereInserted inserts n persons of region into store.
func GivenPersonsWereInserted(
	t testing.TB,
	ctx context.Context,
	store accessdata.Store,
	region accessdata.Region,
	n int,
) []accessdata.Person {
	persons := make([]accessdata.Person, 0, n)
	for range n {
		persons = append(persons, FixturePerson(t, region))
	}

	require.NoError(t, store.InsertPersons(ctx, persons...), "error in arranging test data")

	return persons
}

// GivenBuildingsWereInserted inserts n buildings of region into store.
func GivenBuildingsWereInserted(
	t testing.TB,
	ctx context.Context,
	store accessdata.Store,
	region accessdata.Region,
	n int,
) []accessdata.Building {
	buildings := make([]accessdata.Building, 0, n)
	for range n {
		buildings = append(buildings, FixtureBuilding(t, region))
	}

	require.NoError(t, store.InsertBuildings(ctx, buildings...), "error in arranging test data")

	return buildings
}

// GivenGateGroupWasInserted inserts one gate-group of building with the given directions, one gate per direction.
func GivenGateGroupWasInserted(
	t testing.TB,
	ctx context.Context,
	store accessdata.Store,
	building accessdata.Building,
	directions ...bool,
) (accessdata.GateGroup, []accessdata.GateLink) {
	group := accessdata.GateGroup{
		GateGroupID: GivenUniqueID(t),
		Name:        fmt.Sprintf("Gate Group of %s", building.Name),
		BuildingID:  building.BuildingID,
	}
	require.NoError(t, store.InsertGateGroups(ctx, group), "error in arranging test data")

	links := make([]accessdata.GateLink, 0, len(directions))
	for _, direction := range directions {
		links = append(links, accessdata.GateLink{GateGroupID: group.GateGroupID, GateID: GivenUniqueID(t), Direction: direction})
	}

	require.NoError(t, store.InsertGateLinks(ctx, links...), "error in arranging test data")

	return group, links
}

// GivenAccessRightsWereInserted grants every person access to group.
func GivenAccessRightsWereInserted(
	t testing.TB,
	ctx context.Context,
	store accessdata.Store,
	group accessdata.GateGroup,
	persons ...accessdata.Person,
) {
	rights := make([]accessdata.AccessRight, 0, len(persons))
	for _, person := range persons {
		rights = append(rights, accessdata.AccessRight{
			BadgeID:        person.BadgeID,
			GateGroupID:    group.GateGroupID,
			ExpirationDate: time.Now().AddDate(1, 0, 0),
		})
	}

	require.NoError(t, store.InsertAccessRights(ctx, rights...), "error in arranging test data")
}
