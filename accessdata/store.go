package accessdata

import "context"

// Store is the downstream system the generator writes to and reads from.
//
// The Insert methods correspond to one bulk insert of uniform records, the Query methods
// to reads of a row set, and EnterBuilding to one invocation of the stored procedure
// that makes a person cross a gate.
type Store interface {
	InsertPersons(ctx context.Context, persons ...Person) error
	InsertBuildings(ctx context.Context, buildings ...Building) error
	InsertGateGroups(ctx context.Context, groups ...GateGroup) error
	InsertGateLinks(ctx context.Context, links ...GateLink) error
	InsertAccessRights(ctx context.Context, rights ...AccessRight) error

	QueryBuildings(ctx context.Context, limit int) ([]Building, error)
	QueryPersonsWithoutAccessRight(ctx context.Context) ([]Person, error)
	QueryGateGroupRegions(ctx context.Context) ([]GateGroupRegion, error)
	QueryPersonAccesses(ctx context.Context) ([]PersonAccess, error)
	QueryGateLinks(ctx context.Context) ([]GateLink, error)

	EnterBuilding(ctx context.Context, event SimulationEvent) error
}
