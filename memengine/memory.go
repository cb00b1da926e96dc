package memengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

type accessRightKey struct {
	badgeID     uuid.UUID
	gateGroupID uuid.UUID
}

// Store is an in-memory accessdata.Store. The zero value is not usable; use New.
type Store struct {
	mu sync.RWMutex

	persons      []accessdata.Person
	buildings    []accessdata.Building
	groups       []accessdata.GateGroup
	links        []accessdata.GateLink
	accessRights []accessdata.AccessRight
	crossings    []accessdata.SimulationEvent

	personIndex      map[uuid.UUID]int
	buildingIndex    map[uuid.UUID]int
	groupIndex       map[uuid.UUID]int
	gateIndex        map[uuid.UUID]int
	accessRightIndex map[accessRightKey]int
	assignedBadges   map[uuid.UUID]struct{}
}

var _ accessdata.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		personIndex:      make(map[uuid.UUID]int),
		buildingIndex:    make(map[uuid.UUID]int),
		groupIndex:       make(map[uuid.UUID]int),
		gateIndex:        make(map[uuid.UUID]int),
		accessRightIndex: make(map[accessRightKey]int),
		assignedBadges:   make(map[uuid.UUID]struct{}),
	}
}

// InsertPersons implements accessdata.Store.
func (s *Store) InsertPersons(ctx context.Context, persons ...accessdata.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make(map[uuid.UUID]struct{}, len(persons))
	for _, person := range persons {
		if err := checkUnique(s.personIndex, batch, person.BadgeID, "person"); err != nil {
			return err
		}
	}

	for _, person := range persons {
		s.personIndex[person.BadgeID] = len(s.persons)
		s.persons = append(s.persons, person)
	}

	return nil
}

// InsertBuildings implements accessdata.Store.
func (s *Store) InsertBuildings(ctx context.Context, buildings ...accessdata.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make(map[uuid.UUID]struct{}, len(buildings))
	for _, building := range buildings {
		if err := checkUnique(s.buildingIndex, batch, building.BuildingID, "building"); err != nil {
			return err
		}
	}

	for _, building := range buildings {
		s.buildingIndex[building.BuildingID] = len(s.buildings)
		s.buildings = append(s.buildings, building)
	}

	return nil
}

// InsertGateGroups implements accessdata.Store.
func (s *Store) InsertGateGroups(ctx context.Context, groups ...accessdata.GateGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make(map[uuid.UUID]struct{}, len(groups))
	for _, group := range groups {
		if err := checkUnique(s.groupIndex, batch, group.GateGroupID, "gategroup"); err != nil {
			return err
		}

		if err := checkReference(s.buildingIndex, group.BuildingID, "building"); err != nil {
			return err
		}
	}

	for _, group := range groups {
		s.groupIndex[group.GateGroupID] = len(s.groups)
		s.groups = append(s.groups, group)
	}

	return nil
}

// InsertGateLinks implements accessdata.Store. A gate belongs to exactly one gate-group.
func (s *Store) InsertGateLinks(ctx context.Context, links ...accessdata.GateLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make(map[uuid.UUID]struct{}, len(links))
	for _, link := range links {
		if err := checkUnique(s.gateIndex, batch, link.GateID, "gate"); err != nil {
			return err
		}

		if err := checkReference(s.groupIndex, link.GateGroupID, "gategroup"); err != nil {
			return err
		}
	}

	for _, link := range links {
		s.gateIndex[link.GateID] = len(s.links)
		s.links = append(s.links, link)
	}

	return nil
}

// InsertAccessRights implements accessdata.Store. The identity of a right is (badge, gate-group).
// A right must not cross regions: the person's region equals the region of the gate-group's building.
func (s *Store) InsertAccessRights(ctx context.Context, rights ...accessdata.AccessRight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make(map[accessRightKey]struct{}, len(rights))
	for _, right := range rights {
		if err := checkUnique(s.accessRightIndex, batch, accessRightKey{right.BadgeID, right.GateGroupID}, "accessright"); err != nil {
			return err
		}

		if err := checkReference(s.personIndex, right.BadgeID, "person"); err != nil {
			return err
		}

		if err := checkReference(s.groupIndex, right.GateGroupID, "gategroup"); err != nil {
			return err
		}

		if err := s.checkSameRegion(right); err != nil {
			return err
		}
	}

	for _, right := range rights {
		s.accessRightIndex[accessRightKey{right.BadgeID, right.GateGroupID}] = len(s.accessRights)
		s.accessRights = append(s.accessRights, right)
		s.assignedBadges[right.BadgeID] = struct{}{}
	}

	return nil
}

// QueryBuildings implements accessdata.Store. A limit of zero or less returns all buildings.
func (s *Store) QueryBuildings(ctx context.Context, limit int) ([]accessdata.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(s.buildings)
	if limit > 0 {
		n = min(n, limit)
	}

	return cloneSlice(s.buildings[:n]), nil
}

// QueryPersonsWithoutAccessRight implements accessdata.Store.
func (s *Store) QueryPersonsWithoutAccessRight(ctx context.Context) ([]accessdata.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	persons := make([]accessdata.Person, 0)
	for _, person := range s.persons {
		if _, assigned := s.assignedBadges[person.BadgeID]; !assigned {
			persons = append(persons, person)
		}
	}

	return persons, nil
}

// QueryGateGroupRegions implements accessdata.Store.
func (s *Store) QueryGateGroupRegions(ctx context.Context) ([]accessdata.GateGroupRegion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make([]accessdata.GateGroupRegion, 0, len(s.groups))
	for _, group := range s.groups {
		building := s.buildings[s.buildingIndex[group.BuildingID]]
		groups = append(groups, accessdata.GateGroupRegion{
			GateGroupID: group.GateGroupID,
			BuildingID:  group.BuildingID,
			Region:      building.Region,
		})
	}

	return groups, nil
}

// QueryPersonAccesses implements accessdata.Store.
func (s *Store) QueryPersonAccesses(ctx context.Context) ([]accessdata.PersonAccess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accesses := make([]accessdata.PersonAccess, 0, len(s.accessRights))
	for _, right := range s.accessRights {
		person := s.persons[s.personIndex[right.BadgeID]]
		accesses = append(accesses, accessdata.PersonAccess{
			BadgeID:     right.BadgeID,
			Region:      person.Region,
			GateGroupID: right.GateGroupID,
		})
	}

	return accesses, nil
}

// QueryGateLinks implements accessdata.Store.
func (s *Store) QueryGateLinks(ctx context.Context) ([]accessdata.GateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return cloneSlice(s.links), nil
}

// EnterBuilding implements accessdata.Store by recording the crossing.
// Badge and gate must exist.
func (s *Store) EnterBuilding(ctx context.Context, event accessdata.SimulationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := checkReference(s.personIndex, event.BadgeID, "person"); err != nil {
		return fmt.Errorf("%w: %w", accessdata.ErrProcedureCallFailed, err)
	}

	if err := checkReference(s.gateIndex, event.GateID, "gate"); err != nil {
		return fmt.Errorf("%w: %w", accessdata.ErrProcedureCallFailed, err)
	}

	s.crossings = append(s.crossings, event)

	return nil
}

func checkUnique[K comparable](existing map[K]int, batch map[K]struct{}, key K, kind string) error {
	if _, found := existing[key]; found {
		return fmt.Errorf("%w: %s %v", accessdata.ErrPrimaryKeyViolation, kind, key)
	}

	if _, found := batch[key]; found {
		return fmt.Errorf("%w: %s %v", accessdata.ErrPrimaryKeyViolation, kind, key)
	}

	batch[key] = struct{}{}

	return nil
}

func (s *Store) checkSameRegion(right accessdata.AccessRight) error {
	person := s.persons[s.personIndex[right.BadgeID]]
	building := s.buildings[s.buildingIndex[s.groups[s.groupIndex[right.GateGroupID]].BuildingID]]

	if person.Region != building.Region {
		return fmt.Errorf("%w: person %s in %s, gategroup %s in %s",
			accessdata.ErrRegionMismatch, person.BadgeID, person.Region, right.GateGroupID, building.Region)
	}

	return nil
}

func checkReference(existing map[uuid.UUID]int, key uuid.UUID, kind string) error {
	if _, found := existing[key]; !found {
		return fmt.Errorf("%w: %s %s", accessdata.ErrForeignKeyViolation, kind, key)
	}

	return nil
}

func cloneSlice[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	return out
}
