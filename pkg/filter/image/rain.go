package image

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rain draws vertical rain streaks. Streak seeds arrive geometrically; each
// seed splats a thin rectangle (horizontal radius 1, vertical radius drawn
// from Normal(20, 10)). The streak coverage field then drives per-pixel
// additive noise that brightens covered pixels, with a blue bias on the third
// channel. Draw order: per seed one geometric plus one normal, then after the
// prefix-sum pass one standard-normal draw per pixel per channel.
type Rain struct {
	ProbabilityKey string
	RangeKey       string

	prob float64
	rng  float64 // 1 or 255
}

func NewRain(probabilityKey, rangeKey string) *Rain {
	return &Rain{ProbabilityKey: probabilityKey, RangeKey: rangeKey}
}

func (f *Rain) Name() string { return "rain" }

func (f *Rain) SetParams(p pg.Params) error {
	var err error
	if f.prob, err = p.Float(f.ProbabilityKey); err != nil {
		return err
	}
	f.rng, err = p.Float(f.RangeKey)
	return err
}

func (f *Rain) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok || f.prob <= 0 {
		return nil
	}

	length := distuv.Normal{Mu: 20, Sigma: 10, Src: r}
	errs := newField(h, w)
	ind := -1
	for {
		ind += pg.Geometric(r, f.prob)
		if ind >= w*h {
			break
		}
		y := ind / w
		x := ind - y*w
		yr := int(math.Max(0, math.Round(length.Rand())))
		x0, x1 := maxInt(x-1, 0), minInt(x+2, w)
		y0, y1 := maxInt(y-yr, 0), minInt(y+yr+1, h)
		errs.add(y0, x0, 1)
		errs.add(y0, x1, -1)
		errs.add(y1, x0, -1)
		errs.add(y1, x1, 1)
	}
	errs.prefixSum()

	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: r}
	d := img.Data()
	for j := 0; j < 3; j++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				n := errs.at(y, x)
				loc := 5 * n
				scale := 10*math.Sqrt(n/12) + 4*n
				add := unit.Rand()*scale + loc
				if j == 2 {
					add += 30 * n
				}
				i := (y*w+x)*3 + j
				if f.rng == 1 {
					d[i] = clamp(d[i]+add/255, 0, 1)
				} else {
					d[i] = clamp(d[i]+math.Trunc(add), 0, 255)
				}
			}
		}
	}
	return nil
}
