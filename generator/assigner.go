package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// DefaultValidity is how long an assigned access right stays valid.
const DefaultValidity = 365 * 24 * time.Hour

// Assigner grants one gate-group of the matching region to persons that have no access right yet.
type Assigner struct {
	rng      *rand.Rand
	now      func() time.Time
	validity time.Duration
}

// AssignerOption configures an Assigner.
type AssignerOption func(*Assigner)

// WithClock sets the time source used to compute expiration dates.
func WithClock(now func() time.Time) AssignerOption {
	return func(a *Assigner) {
		a.now = now
	}
}

// WithValidity sets the period after which assigned access rights expire.
func WithValidity(validity time.Duration) AssignerOption {
	return func(a *Assigner) {
		a.validity = validity
	}
}

// NewAssigner creates an Assigner drawing gate-groups from rng.
func NewAssigner(rng *rand.Rand, options ...AssignerOption) *Assigner {
	a := &Assigner{
		rng:      rng,
		now:      time.Now,
		validity: DefaultValidity,
	}

	for _, option := range options {
		option(a)
	}

	return a
}

// Assign returns exactly one AccessRight per person, each referencing a gate-group located in the person's region.
//
// The persons are expected to be those without any access right, so a person is never granted a second one.
// If some person's region has no gate-group at all, Assign fails with accessdata.ErrNoGateGroupInRegion
// and returns no rights.
func (a *Assigner) Assign(persons []accessdata.Person, groups []accessdata.GateGroupRegion) ([]accessdata.AccessRight, error) {
	byRegion := GroupsByRegion(groups)
	expiration := a.now().Add(a.validity)

	rights := make([]accessdata.AccessRight, 0, len(persons))
	for _, person := range persons {
		group, err := Pick(a.rng, byRegion[person.Region])
		if err != nil {
			return nil, fmt.Errorf(
				"%w: region %s, badge %s",
				accessdata.ErrNoGateGroupInRegion, person.Region, person.BadgeID,
			)
		}

		rights = append(rights, accessdata.AccessRight{
			BadgeID:        person.BadgeID,
			GateGroupID:    group.GateGroupID,
			ExpirationDate: expiration,
		})
	}

	return rights, nil
}

// GroupsByRegion partitions gate-groups by the region of their owning building, keeping the input order.
func GroupsByRegion(groups []accessdata.GateGroupRegion) map[accessdata.Region][]accessdata.GateGroupRegion {
	partitions := make(map[accessdata.Region][]accessdata.GateGroupRegion, len(accessdata.Regions))
	for _, group := range groups {
		partitions[group.Region] = append(partitions[group.Region], group)
	}

	return partitions
}
