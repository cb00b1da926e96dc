package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/accessrights-loadgen/accessdata"
	. "github.com/AntonStoeckl/accessrights-loadgen/generator"
)

func Test_Pick_When_CandidatesAreEmpty_ThenItFails(t *testing.T) {
	// act
	picked, err := Pick[int](newRNG(), nil)

	// assert
	assert.ErrorIs(t, err, ErrEmptyCandidates)
	assert.Zero(t, picked)
}

func Test_Pick_When_PickedOften_ThenEveryCandidateIsReturned(t *testing.T) {
	// setup
	rng := newRNG()
	candidates := []string{"a", "b", "c"}
	seen := make(map[string]int)

	// act
	for i := 0; i < 300; i++ {
		picked, err := Pick(rng, candidates)
		assert.NoError(t, err)
		seen[picked]++
	}

	// assert
	assert.Len(t, seen, len(candidates))
	for _, candidate := range candidates {
		assert.Positive(t, seen[candidate])
	}
}
