package sensor

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Drift emulates sensor values drifting due to a malfunction: position i
// along the leading axis (1-indexed) gains i*magnitude. Deterministic; no
// random draws are consumed.
type Drift struct {
	MagnitudeKey string

	magnitude float64
}

func NewDrift(magnitudeKey string) *Drift {
	return &Drift{MagnitudeKey: magnitudeKey}
}

func (f *Drift) Name() string { return "sensor_drift" }

func (f *Drift) SetParams(p pg.Params) error {
	var err error
	f.magnitude, err = p.Float(f.MagnitudeKey)
	return err
}

func (f *Drift) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	shape := t.Shape()
	if len(shape) == 0 || shape[0] == 0 {
		return nil
	}
	switch x := t.(type) {
	case *pg.Float64Tensor:
		d := x.Data()
		sub := len(d) / shape[0]
		for i := 0; i < shape[0]; i++ {
			inc := float64(i+1) * f.magnitude
			for j := 0; j < sub; j++ {
				d[i*sub+j] += inc
			}
		}
	case *pg.Int64Tensor:
		d := x.Data()
		sub := len(d) / shape[0]
		for i := 0; i < shape[0]; i++ {
			inc := int64(float64(i+1) * f.magnitude)
			for j := 0; j < sub; j++ {
				d[i*sub+j] += inc
			}
		}
	}
	return nil
}
