package memengine

import "github.com/AntonStoeckl/accessrights-loadgen/accessdata"

// Counts holds the number of stored records per kind.
type Counts struct {
	Persons      int
	Buildings    int
	GateGroups   int
	Gates        int
	AccessRights int
	Crossings    int
}

// Counts returns the number of stored records per kind.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		Persons:      len(s.persons),
		Buildings:    len(s.buildings),
		GateGroups:   len(s.groups),
		Gates:        len(s.links),
		AccessRights: len(s.accessRights),
		Crossings:    len(s.crossings),
	}
}

// AccessRights returns a copy of all stored access rights in insertion order.
func (s *Store) AccessRights() []accessdata.AccessRight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.accessRights)
}

// GateGroups returns a copy of all stored gate-groups in insertion order.
func (s *Store) GateGroups() []accessdata.GateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.groups)
}

// Crossings returns a copy of all recorded enter_building calls in call order.
func (s *Store) Crossings() []accessdata.SimulationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.crossings)
}
