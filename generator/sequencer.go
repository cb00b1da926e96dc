package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// MissingGatePolicy decides what happens to a person whose gate-group lacks an entry or an exit gate.
type MissingGatePolicy int

const (
	// FailOnMissingGate aborts sequencing with accessdata.ErrNoEligibleGate.
	FailOnMissingGate MissingGatePolicy = iota

	// SkipPerson leaves the person out of the sequence and counts it in Sequence.Skipped.
	SkipPerson
)

// String returns the flag value of the policy.
func (p MissingGatePolicy) String() string {
	switch p {
	case FailOnMissingGate:
		return "fail"
	case SkipPerson:
		return "skip"
	default:
		return fmt.Sprintf("MissingGatePolicy(%d)", int(p))
	}
}

// ParseMissingGatePolicy parses the flag value of a MissingGatePolicy.
func ParseMissingGatePolicy(value string) (MissingGatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "fail":
		return FailOnMissingGate, nil
	case "skip":
		return SkipPerson, nil
	default:
		return FailOnMissingGate, fmt.Errorf("%w: %q", accessdata.ErrUnknownMissingGatePolicy, value)
	}
}

// Sequence is the ordered list of gate crossings to replay.
type Sequence struct {
	Events  []accessdata.SimulationEvent
	Skipped int
}

// Sequencer derives one entry and one exit crossing per person holding an access right.
type Sequencer struct {
	rng    *rand.Rand
	policy MissingGatePolicy
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithMissingGatePolicy sets how persons without an eligible gate are handled.
func WithMissingGatePolicy(policy MissingGatePolicy) SequencerOption {
	return func(s *Sequencer) {
		s.policy = policy
	}
}

// NewSequencer creates a Sequencer drawing gates from rng.
func NewSequencer(rng *rand.Rand, options ...SequencerOption) *Sequencer {
	s := &Sequencer{
		rng:    rng,
		policy: FailOnMissingGate,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

type gateKey struct {
	gateGroupID uuid.UUID
	direction   bool
}

// Sequence picks, per access, one entry gate and one exit gate of the accessed gate-group
// and returns the crossings ordered entry0, exit0, entry1, exit1, ...
func (s *Sequencer) Sequence(accesses []accessdata.PersonAccess, links []accessdata.GateLink) (Sequence, error) {
	gates := make(map[gateKey][]uuid.UUID)
	for _, link := range links {
		key := gateKey{gateGroupID: link.GateGroupID, direction: link.Direction}
		gates[key] = append(gates[key], link.GateID)
	}

	var sequence Sequence
	entries := make([]accessdata.SimulationEvent, 0, len(accesses))
	exits := make([]accessdata.SimulationEvent, 0, len(accesses))

	for _, access := range accesses {
		entryGate, entryErr := Pick(s.rng, gates[gateKey{gateGroupID: access.GateGroupID, direction: true}])
		exitGate, exitErr := Pick(s.rng, gates[gateKey{gateGroupID: access.GateGroupID, direction: false}])

		if entryErr != nil || exitErr != nil {
			if s.policy == SkipPerson {
				sequence.Skipped++
				continue
			}

			return Sequence{}, fmt.Errorf(
				"%w: gate-group %s, badge %s, has entry gate: %t, has exit gate: %t",
				accessdata.ErrNoEligibleGate, access.GateGroupID, access.BadgeID, entryErr == nil, exitErr == nil,
			)
		}

		entries = append(entries, accessdata.SimulationEvent{BadgeID: access.BadgeID, GateID: entryGate})
		exits = append(exits, accessdata.SimulationEvent{BadgeID: access.BadgeID, GateID: exitGate})
	}

	sequence.Events = Interleave(entries, exits)

	return sequence, nil
}

// Interleave merges entries and exits into entries[0], exits[0], entries[1], exits[1], ...
// When the lengths differ, the remaining elements of the longer list follow in their original order.
func Interleave(entries, exits []accessdata.SimulationEvent) []accessdata.SimulationEvent {
	merged := make([]accessdata.SimulationEvent, 0, len(entries)+len(exits))

	i, j := 0, 0
	for i < len(entries) && j < len(exits) {
		merged = append(merged, entries[i], exits[j])
		i++
		j++
	}

	merged = append(merged, entries[i:]...)
	merged = append(merged, exits[j:]...)

	return merged
}
