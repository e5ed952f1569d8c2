package image

import (
	"fmt"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/radius"
	"golang.org/x/exp/rand"
)

// Stain darkens circular-ish areas of the image. Each stain multiplies the
// covered pixels by the transparency percentage once per covering stain:
// transparency 1 leaves the image intact, 0 blacks the area out. Draw order
// per seed: one geometric draw, then the radius generator's draws.
type Stain struct {
	ProbabilityKey            string
	RadiusGeneratorKey        string
	TransparencyPercentageKey string

	prob         float64
	radius       radius.Generator
	transparency float64
}

func NewStain(probabilityKey, radiusGeneratorKey, transparencyPercentageKey string) *Stain {
	return &Stain{
		ProbabilityKey:            probabilityKey,
		RadiusGeneratorKey:        radiusGeneratorKey,
		TransparencyPercentageKey: transparencyPercentageKey,
	}
}

func (f *Stain) Name() string { return "stain_area" }

func (f *Stain) SetParams(p pg.Params) error {
	var err error
	if f.prob, err = p.Float(f.ProbabilityKey); err != nil {
		return err
	}
	v, err := p.Value(f.RadiusGeneratorKey)
	if err != nil {
		return err
	}
	gen, ok := v.(radius.Generator)
	if !ok {
		return fmt.Errorf("parameter %q: expected radius.Generator, got %T", f.RadiusGeneratorKey, v)
	}
	f.radius = gen
	f.transparency, err = p.Float(f.TransparencyPercentageKey)
	return err
}

func (f *Stain) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok || f.prob <= 0 {
		return nil
	}

	errs := newField(h, w)
	ind := -1
	for {
		ind += pg.Geometric(r, f.prob)
		if ind >= w*h {
			break
		}
		y := ind / w
		x := ind - y*w
		errs.splat(y, x, f.radius.Generate(r))
	}
	errs.prefixSum()

	d := img.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := errs.at(y, x)
			if n <= 0 {
				continue
			}
			mult := pow(f.transparency, n)
			base := (y*w + x) * 3
			d[base] *= mult
			d[base+1] *= mult
			d[base+2] *= mult
		}
	}
	return nil
}

func pow(base, exp float64) float64 {
	// coverage counts are small non-negative integers
	out := 1.0
	for i := 0; i < int(exp); i++ {
		out *= base
	}
	return out
}
