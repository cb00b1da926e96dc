package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// GatesPerGroup is the number of gates in a complete gate-group.
const GatesPerGroup = 4

// entryGatesPerGroup is the number of leading positions within a group of GatesPerGroup that are entry gates.
const entryGatesPerGroup = 2

// IDGenerator produces fresh unique identifiers.
type IDGenerator func() (uuid.UUID, error)

// GateTopology is the result of building gates for a set of buildings.
// Gates and Links are aligned by index: Links[i] attaches Gates[i] to its group.
type GateTopology struct {
	Groups []accessdata.GateGroup
	Gates  []accessdata.Gate
	Links  []accessdata.GateLink
}

// Factory builds synthetic entities with fresh identifiers.
type Factory struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
	newID IDGenerator
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithIDGenerator replaces the default identifier source (UUID version 7).
func WithIDGenerator(newID IDGenerator) FactoryOption {
	return func(f *Factory) {
		f.newID = newID
	}
}

// NewFactory creates a Factory drawing all randomness from rng, including names and addresses.
// A Factory is not safe for concurrent use.
func NewFactory(rng *rand.Rand, options ...FactoryOption) *Factory {
	f := &Factory{
		rng:   rng,
		faker: gofakeit.NewFaker(rng, false),
		newID: uuid.NewV7,
	}

	for _, option := range options {
		option(f)
	}

	return f
}

// Persons builds n persons with fresh badge ids, a uniformly drawn Region and a random first name.
func (f *Factory) Persons(n int) ([]accessdata.Person, error) {
	if err := validateCount(n); err != nil {
		return nil, err
	}

	persons := make([]accessdata.Person, 0, n)
	for i := 0; i < n; i++ {
		badgeID, err := f.id()
		if err != nil {
			return nil, err
		}

		persons = append(persons, accessdata.Person{
			BadgeID: badgeID,
			Region:  mustPick(f.rng, accessdata.Regions),
			Name:    f.faker.FirstName(),
		})
	}

	return persons, nil
}

// Buildings builds n buildings with fresh ids, random name and address, and a uniformly drawn Region.
func (f *Factory) Buildings(n int) ([]accessdata.Building, error) {
	if err := validateCount(n); err != nil {
		return nil, err
	}

	buildings := make([]accessdata.Building, 0, n)
	for i := 0; i < n; i++ {
		buildingID, err := f.id()
		if err != nil {
			return nil, err
		}

		address := f.faker.Address()
		buildings = append(buildings, accessdata.Building{
			BuildingID: buildingID,
			Name:       address.Street,
			Address:    address.Address,
			Region:     mustPick(f.rng, accessdata.Regions),
		})
	}

	return buildings, nil
}

// GateGroupCount returns the number of gate-groups needed for numGates gates.
func GateGroupCount(numGates int) int {
	return (numGates + GatesPerGroup - 1) / GatesPerGroup
}

// IsEntryPosition reports whether the gate at index i is an entry gate of its group.
func IsEntryPosition(i int) bool {
	return i%GatesPerGroup < entryGatesPerGroup
}

// GateTopology builds GateGroupCount(numGates) gate-groups, one per building in order,
// and numGates gates assigned to group floor(i/4) with direction (i mod 4) < 2.
//
// It fails with accessdata.ErrInsufficientBuildings if fewer buildings than gate-groups are supplied.
// When numGates is not a multiple of 4, the last group is incomplete and may lack exit gates.
func (f *Factory) GateTopology(numGates int, buildings []accessdata.Building) (GateTopology, error) {
	if err := validateCount(numGates); err != nil {
		return GateTopology{}, err
	}

	numGroups := GateGroupCount(numGates)
	if len(buildings) < numGroups {
		return GateTopology{}, fmt.Errorf(
			"%w: %d gate-groups required, %d buildings available",
			accessdata.ErrInsufficientBuildings, numGroups, len(buildings),
		)
	}

	topology := GateTopology{
		Groups: make([]accessdata.GateGroup, 0, numGroups),
		Gates:  make([]accessdata.Gate, 0, numGates),
		Links:  make([]accessdata.GateLink, 0, numGates),
	}

	for i := 0; i < numGroups; i++ {
		groupID, err := f.id()
		if err != nil {
			return GateTopology{}, err
		}

		topology.Groups = append(topology.Groups, accessdata.GateGroup{
			GateGroupID: groupID,
			Name:        fmt.Sprintf("Gate Group %d", i+1),
			BuildingID:  buildings[i].BuildingID,
		})
	}

	for i := 0; i < numGates; i++ {
		gateID, err := f.id()
		if err != nil {
			return GateTopology{}, err
		}

		topology.Gates = append(topology.Gates, accessdata.Gate{GateID: gateID})
		topology.Links = append(topology.Links, accessdata.GateLink{
			GateGroupID: topology.Groups[i/GatesPerGroup].GateGroupID,
			GateID:      gateID,
			Direction:   IsEntryPosition(i),
		})
	}

	return topology, nil
}

func (f *Factory) id() (uuid.UUID, error) {
	id, err := f.newID()
	if err != nil {
		return uuid.Nil, errors.Join(accessdata.ErrIDGenerationFailed, err)
	}

	return id, nil
}

func validateCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", accessdata.ErrInvalidCount, n)
	}

	return nil
}
