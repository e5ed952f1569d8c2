package problemgen

import (
	"math"

	"golang.org/x/exp/rand"
)

// NewRand returns a deterministically seeded random source. Every sweep
// iteration owns one; filters advance it in a documented order so identical
// seeds replay identical corrupted data.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Geometric draws from the geometric distribution with success probability p
// (support 1, 2, ...), consuming exactly one uniform draw. Area-based filters
// use it as the inter-arrival distance between corruption seeds on flattened
// index space. p >= 1 always yields 1; p <= 0 yields a sentinel large enough
// to terminate any inter-arrival scan.
func Geometric(r *rand.Rand, p float64) int {
	if p >= 1 {
		return 1
	}
	if p <= 0 {
		return math.MaxInt32
	}
	u := r.Float64()
	if u == 0 {
		return math.MaxInt32
	}
	return int(math.Log(u)/math.Log1p(-p)) + 1
}

// Choice draws an index from a discrete probability table, consuming one
// uniform draw. Probabilities are assumed to sum to 1; trailing mass absorbs
// rounding error.
func Choice(r *rand.Rand, probs []float64) int {
	u := r.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u < cum {
			return i
		}
	}
	return len(probs) - 1
}
