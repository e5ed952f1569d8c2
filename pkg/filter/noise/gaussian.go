// Package noise provides additive-noise corruption filters.
package noise

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian adds noise drawn per element from Normal(mean, std). Noise is
// cast to the tensor's element type before addition, so integer tensors
// truncate. Elements are visited in flat row-major order, one normal draw
// each.
type Gaussian struct {
	MeanKey string
	StdKey  string

	mean float64
	std  float64
}

func NewGaussian(meanKey, stdKey string) *Gaussian {
	return &Gaussian{MeanKey: meanKey, StdKey: stdKey}
}

func (f *Gaussian) Name() string { return "gaussian_noise" }

func (f *Gaussian) SetParams(p pg.Params) error {
	var err error
	if f.mean, err = p.Float(f.MeanKey); err != nil {
		return err
	}
	f.std, err = p.Float(f.StdKey)
	return err
}

func (f *Gaussian) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	n := distuv.Normal{Mu: f.mean, Sigma: f.std, Src: r}
	switch x := t.(type) {
	case *pg.Float64Tensor:
		d := x.Data()
		for i := range d {
			d[i] += n.Rand()
		}
	case *pg.Int64Tensor:
		d := x.Data()
		for i := range d {
			d[i] += int64(n.Rand())
		}
	}
	return nil
}

// GaussianTimeDependent adds noise whose mean and standard deviation grow
// linearly with the "time" position supplied by the enclosing Series
// container. Using it outside a sequence container fails with
// MissingContextError.
type GaussianTimeDependent struct {
	MeanKey         string
	StdKey          string
	MeanIncreaseKey string
	StdIncreaseKey  string

	mean, std       float64
	meanInc, stdInc float64
}

func NewGaussianTimeDependent(meanKey, stdKey, meanIncreaseKey, stdIncreaseKey string) *GaussianTimeDependent {
	return &GaussianTimeDependent{
		MeanKey:         meanKey,
		StdKey:          stdKey,
		MeanIncreaseKey: meanIncreaseKey,
		StdIncreaseKey:  stdIncreaseKey,
	}
}

func (f *GaussianTimeDependent) Name() string { return "gaussian_noise_time_dependent" }

func (f *GaussianTimeDependent) SetParams(p pg.Params) error {
	var err error
	if f.mean, err = p.Float(f.MeanKey); err != nil {
		return err
	}
	if f.std, err = p.Float(f.StdKey); err != nil {
		return err
	}
	if f.meanInc, err = p.Float(f.MeanIncreaseKey); err != nil {
		return err
	}
	f.stdInc, err = p.Float(f.StdIncreaseKey)
	return err
}

func (f *GaussianTimeDependent) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	step, err := dims.Index("time")
	if err != nil {
		return err
	}
	n := distuv.Normal{
		Mu:    f.mean + f.meanInc*float64(step),
		Sigma: f.std + f.stdInc*float64(step),
		Src:   r,
	}
	if x, ok := t.(*pg.Float64Tensor); ok {
		d := x.Data()
		for i := range d {
			d[i] += n.Rand()
		}
	}
	return nil
}
