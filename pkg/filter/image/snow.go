package image

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Snow composites snowflakes onto the image and whitens it with a perlin
// noise snowstorm layer. Snowflake seeds arrive geometrically with radii from
// Normal(5, 2); non-positive radii are skipped but still consume their draws.
// The storm layer consumes exactly four uniform draws (corner gradient
// angles) after all flakes are placed.
//
// The perlin blend follows Pierre Vigier's 2-D implementation
// (https://github.com/pvigier/perlin-numpy, MIT licensed) reduced to a single
// 2x2 gradient cell.
type Snow struct {
	SnowflakeProbabilityKey string
	SnowflakeAlphaKey       string
	SnowstormAlphaKey       string

	flakeProb  float64
	flakeAlpha float64
	stormAlpha float64
}

func NewSnow(snowflakeProbabilityKey, snowflakeAlphaKey, snowstormAlphaKey string) *Snow {
	return &Snow{
		SnowflakeProbabilityKey: snowflakeProbabilityKey,
		SnowflakeAlphaKey:       snowflakeAlphaKey,
		SnowstormAlphaKey:       snowstormAlphaKey,
	}
}

func (f *Snow) Name() string { return "snow" }

func (f *Snow) SetParams(p pg.Params) error {
	var err error
	if f.flakeProb, err = p.Float(f.SnowflakeProbabilityKey); err != nil {
		return err
	}
	if f.flakeAlpha, err = p.Float(f.SnowflakeAlphaKey); err != nil {
		return err
	}
	f.stormAlpha, err = p.Float(f.SnowstormAlphaKey)
	return err
}

func (f *Snow) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok {
		return nil
	}
	d := img.Data()

	radius := distuv.Normal{Mu: 5, Sigma: 2, Src: r}
	var flakes [][]float64 // kernel cache indexed by radius
	if f.flakeProb > 0 {
		ind := -1
		for {
			ind += pg.Geometric(r, f.flakeProb)
			if ind >= h*w {
				break
			}
			y := ind / w
			x := ind % w
			rr := int(math.Round(radius.Rand()))
			if rr <= 0 {
				continue
			}
			for len(flakes) <= rr {
				flakes = append(flakes, f.buildFlake(len(flakes)))
			}
			f.compositeFlake(d, h, w, y, x, rr, flakes[rr])
		}
	}

	noise := perlin(h, w, r)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// transform noise into [0, 1]
			n := (noise[y*w+x] + 1) / 2
			base := (y*w + x) * 3
			for j := 0; j < 3; j++ {
				d[base+j] += f.stormAlpha * (255 - d[base+j]) * n
			}
		}
	}
	return nil
}

// buildFlake renders a radial falloff kernel of the given radius.
func (f *Snow) buildFlake(r int) []float64 {
	side := 2*r + 1
	k := make([]float64, side*side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if r == 0 {
				k[y*side+x] = f.flakeAlpha
				continue
			}
			dy, dx := float64(y-r), float64(x-r)
			dist := math.Sqrt(dx*dx + dy*dy)
			k[y*side+x] = math.Max(0, 1-dist/float64(r)) * f.flakeAlpha
		}
	}
	return k
}

func (f *Snow) compositeFlake(d []float64, h, w, y, x, r int, kernel []float64) {
	side := 2*r + 1
	y0, x0 := maxInt(0, y-r), maxInt(0, x-r)
	y1, x1 := minInt(h-1, y+r)+1, minInt(w-1, x+r)+1
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			k := kernel[(yy-(y-r))*side+(xx-(x-r))]
			base := (yy*w + xx) * 3
			for j := 0; j < 3; j++ {
				d[base+j] += (255 - d[base+j]) * k
			}
		}
	}
}

// perlin produces one gradient cell of 2-D perlin noise over an h x w grid,
// in [-1, 1]. Consumes four uniform draws, row-major corner order.
func perlin(h, w int, r *rand.Rand) []float64 {
	fade := func(t float64) float64 {
		return 6*math.Pow(t, 5) - 15*math.Pow(t, 4) + 10*math.Pow(t, 3)
	}
	type vec struct{ x, y float64 }
	corners := [2][2]vec{}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			angle := 2 * math.Pi * r.Float64()
			corners[i][j] = vec{math.Cos(angle), math.Sin(angle)}
		}
	}
	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		u := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			v := float64(x) / float64(w)
			n00 := u*corners[0][0].x + v*corners[0][0].y
			n10 := (u-1)*corners[1][0].x + v*corners[1][0].y
			n01 := u*corners[0][1].x + (v-1)*corners[0][1].y
			n11 := (u-1)*corners[1][1].x + (v-1)*corners[1][1].y
			t0, t1 := fade(u), fade(v)
			n0 := n00*(1-t0) + t0*n10
			n1 := n01*(1-t0) + t0*n11
			out[y*w+x] = math.Sqrt2 * ((1-t1)*n0 + t1*n1)
		}
	}
	return out
}
