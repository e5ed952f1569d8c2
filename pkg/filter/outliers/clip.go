// Package outliers provides range-limiting corruption filters.
package outliers

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Clip clamps every element into [min, max] in place. No draws consumed.
type Clip struct {
	MinKey string
	MaxKey string

	min float64
	max float64
}

func NewClip(minKey, maxKey string) *Clip {
	return &Clip{MinKey: minKey, MaxKey: maxKey}
}

func (f *Clip) Name() string { return "clip" }

func (f *Clip) SetParams(p pg.Params) error {
	var err error
	if f.min, err = p.Float(f.MinKey); err != nil {
		return err
	}
	f.max, err = p.Float(f.MaxKey)
	return err
}

func (f *Clip) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	switch x := t.(type) {
	case *pg.Float64Tensor:
		d := x.Data()
		for i := range d {
			if d[i] < f.min {
				d[i] = f.min
			} else if d[i] > f.max {
				d[i] = f.max
			}
		}
	case *pg.Int64Tensor:
		d := x.Data()
		lo, hi := int64(f.min), int64(f.max)
		for i := range d {
			if d[i] < lo {
				d[i] = lo
			} else if d[i] > hi {
				d[i] = hi
			}
		}
	}
	return nil
}
