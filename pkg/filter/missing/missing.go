// Package missing provides filters that erase values or regions from data.
package missing

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Missing sets each element to the missing sentinel (NaN) with the given
// probability. One uniform draw per element regardless of the probability
// value, so filter chains after it stay synchronized across sweep points.
type Missing struct {
	ProbabilityKey string

	prob float64
}

func NewMissing(probabilityKey string) *Missing {
	return &Missing{ProbabilityKey: probabilityKey}
}

func (f *Missing) Name() string { return "missing" }

func (f *Missing) SetParams(p pg.Params) error {
	var err error
	f.prob, err = p.Float(f.ProbabilityKey)
	return err
}

func (f *Missing) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	if x, ok := t.(*pg.Float64Tensor); ok {
		d := x.Data()
		for i := range d {
			if r.Float64() < f.prob {
				d[i] = math.NaN()
			}
		}
	}
	return nil
}
