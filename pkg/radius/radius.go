// Package radius provides stochastic splat-radius policies for area-based
// corruption filters (stains, missing areas, rain).
package radius

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator produces a stochastic integer radius from a random source. A
// Generator carries no mutable state: repeated calls with identically seeded
// sources yield identical radii.
type Generator interface {
	Generate(r *rand.Rand) int
}

// Gaussian draws radii from Normal(Mean, Std), rounded to the nearest
// integer and clamped at zero. Consumes one normal draw per call.
type Gaussian struct {
	Mean float64
	Std  float64
}

func (g Gaussian) Generate(r *rand.Rand) int {
	v := distuv.Normal{Mu: g.Mean, Sigma: g.Std, Src: r}.Rand()
	n := int(v + 0.5)
	if n < 0 {
		return 0
	}
	return n
}

// ProbabilityTable draws radius i with probability Probs[i]. Consumes one
// uniform draw per call.
type ProbabilityTable struct {
	Probs []float64
}

func (g ProbabilityTable) Generate(r *rand.Rand) int {
	return pg.Choice(r, g.Probs)
}

// Fixed always yields the same radius and consumes no draws.
type Fixed struct {
	Radius int
}

func (g Fixed) Generate(*rand.Rand) int { return g.Radius }
