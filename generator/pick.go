package generator

import (
	"math/rand/v2"

	"github.com/AntonStoeckl/accessrights-loadgen/accessdata"
)

// Pick returns one element of candidates, drawn uniformly at random from rng.
// It returns accessdata.ErrEmptyCandidates if candidates is empty.
func Pick[T any](rng *rand.Rand, candidates []T) (T, error) {
	var zero T

	if len(candidates) == 0 {
		return zero, accessdata.ErrEmptyCandidates
	}

	return candidates[rng.IntN(len(candidates))], nil
}

// mustPick is Pick for the fixed, non-empty sample tables of this package.
func mustPick[T any](rng *rand.Rand, candidates []T) T {
	picked, err := Pick(rng, candidates)
	if err != nil {
		panic(err)
	}

	return picked
}
