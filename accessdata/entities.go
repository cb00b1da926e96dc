package accessdata

import (
	"time"

	"github.com/google/uuid"
)

// Region is a coarse deployment partition constraining which entities may be associated.
type Region string

const (
	RegionEU Region = "EU"
	RegionUS Region = "US"
)

// Regions lists every Region entities are distributed over.
var Regions = []Region{RegionEU, RegionUS}

// Valid reports whether r is one of the known Regions.
func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}

	return false
}

func (r Region) String() string {
	return string(r)
}

// Person is the holder of a badge.
type Person struct {
	BadgeID uuid.UUID
	Region  Region
	Name    string
}

// Building owns gate-groups and determines their Region.
type Building struct {
	BuildingID uuid.UUID
	Name       string
	Address    string
	Region     Region
}

// GateGroup clusters the gates of one Building. Access rights are granted per GateGroup.
type GateGroup struct {
	GateGroupID uuid.UUID
	Name        string
	BuildingID  uuid.UUID
}

// Gate is a physical gate. It only exists through its GateLink.
type Gate struct {
	GateID uuid.UUID
}

// GateLink attaches a Gate to its GateGroup. Direction true marks an entry gate, false an exit gate.
type GateLink struct {
	GateGroupID uuid.UUID
	GateID      uuid.UUID
	Direction   bool
}

// AccessRight grants a Person the use of all gates of a GateGroup until ExpirationDate.
// Its identity is the (BadgeID, GateGroupID) pair.
type AccessRight struct {
	BadgeID        uuid.UUID
	GateGroupID    uuid.UUID
	ExpirationDate time.Time
}

// GateGroupRegion is a GateGroup joined with the Region of its owning Building.
type GateGroupRegion struct {
	GateGroupID uuid.UUID
	BuildingID  uuid.UUID
	Region      Region
}

// PersonAccess is a Person joined with the GateGroup of its AccessRight.
type PersonAccess struct {
	BadgeID     uuid.UUID
	Region      Region
	GateGroupID uuid.UUID
}

// SimulationEvent is one badge crossing one gate. It is replayed against the store and never persisted as an entity.
type SimulationEvent struct {
	BadgeID uuid.UUID
	GateID  uuid.UUID
}

// RegionCounts holds the number of items per Region.
type RegionCounts map[Region]int

// CountByRegion counts items per Region, using regionOf to extract an item's Region.
func CountByRegion[T any](items []T, regionOf func(T) Region) RegionCounts {
	counts := make(RegionCounts, len(Regions))
	for _, region := range Regions {
		counts[region] = 0
	}

	for _, item := range items {
		counts[regionOf(item)]++
	}

	return counts
}
