package loadgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	"github.com/AntonStoeckl/accessrights-loadgen/loadgen"
)

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         loadgen.Config
		expectedErr error
	}{
		{name: "persons only", cfg: loadgen.Config{Persons: 1}},
		{name: "simulation only", cfg: loadgen.Config{Simulation: true}},
		{name: "all phases", cfg: loadgen.Config{Persons: 1, Buildings: 1, Gates: 4, AccessRights: true, Simulation: true}},
		{name: "nothing selected", cfg: loadgen.Config{}, expectedErr: ErrNoPhaseSelected},
		{name: "negative persons", cfg: loadgen.Config{Persons: -1}, expectedErr: ErrInvalidCount},
		{name: "negative gates", cfg: loadgen.Config{Gates: -4, AccessRights: true}, expectedErr: ErrInvalidCount},
		{name: "unknown write mode", cfg: loadgen.Config{Persons: 1, WriteMode: loadgen.WriteMode(7)}, expectedErr: ErrUnknownWriteMode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := tc.cfg.Validate()

			// assert
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Config_Validate_When_CountIsNegative_ThenTheMessageNamesTheFlag(t *testing.T) {
	// act
	err := loadgen.Config{Buildings: -3}.Validate()

	// assert
	assert.ErrorContains(t, err, "invalid value for building")
}

func Test_ParseWriteMode(t *testing.T) {
	mode, err := loadgen.ParseWriteMode("")
	assert.NoError(t, err)
	assert.Equal(t, loadgen.WriteChunked, mode)

	mode, err = loadgen.ParseWriteMode("Concurrent")
	assert.NoError(t, err)
	assert.Equal(t, loadgen.WriteConcurrent, mode)
	assert.Equal(t, "concurrent", mode.String())

	_, err = loadgen.ParseWriteMode("bulk")
	assert.ErrorIs(t, err, ErrUnknownWriteMode)
}
