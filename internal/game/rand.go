package game

import "math/rand/v2"

// NewRand returns the PCG source used for placement and computer guesses. The
// same non-zero seed always yields the same fleets; 0 picks a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
