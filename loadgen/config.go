package loadgen

import (
	"fmt"
	"strings"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/generator"
)

// WriteMode selects how the entity phases dispatch their inserts.
type WriteMode int

const (
	// WriteChunked awaits each chunk of inserts before starting the next one.
	WriteChunked WriteMode = iota
	// WriteConcurrent dispatches all inserts of a phase at once and reports live throughput.
	WriteConcurrent
)

func (m WriteMode) String() string {
	switch m {
	case WriteChunked:
		return "chunked"
	case WriteConcurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// ParseWriteMode parses "chunked" (also the empty string) or "concurrent".
func ParseWriteMode(value string) (WriteMode, error) {
	switch strings.ToLower(value) {
	case "", "chunked":
		return WriteChunked, nil
	case "concurrent":
		return WriteConcurrent, nil
	default:
		return 0, fmt.Errorf("%w: %q", accessdata.ErrUnknownWriteMode, value)
	}
}

// Config selects the phases of a run. A zero count skips the phase.
type Config struct {
	Persons           int
	Buildings         int
	Gates             int
	AccessRights      bool
	Simulation        bool
	WriteMode         WriteMode
	MissingGatePolicy generator.MissingGatePolicy
}

// Validate rejects negative counts and a Config without any phase.
func (c Config) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{name: "person", value: c.Persons},
		{name: "building", value: c.Buildings},
		{name: "gate", value: c.Gates},
	}

	for _, count := range counts {
		if count.value < 0 {
			return fmt.Errorf("%w: invalid value for %s: %d", accessdata.ErrInvalidCount, count.name, count.value)
		}
	}

	if c.WriteMode != WriteChunked && c.WriteMode != WriteConcurrent {
		return fmt.Errorf("%w: %s", accessdata.ErrUnknownWriteMode, c.WriteMode)
	}

	if c.Persons == 0 && c.Buildings == 0 && c.Gates == 0 && !c.AccessRights && !c.Simulation {
		return accessdata.ErrNoPhaseSelected
	}

	return nil
}
