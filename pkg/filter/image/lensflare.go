package image

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// LensFlare estimates the brightest spot in the image, then walks from it
// toward the image center dropping warm-tinted circular flares along the way.
// Draw order per flare: three bounded integer draws (tint), two normal draws
// (offset), plus the radius and step-length normals of the walk.
type LensFlare struct{}

func NewLensFlare() *LensFlare { return &LensFlare{} }

func (f *LensFlare) Name() string { return "lens_flare" }

func (f *LensFlare) SetParams(p pg.Params) error { return nil }

func (f *LensFlare) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok || h == 0 || w == 0 {
		return nil
	}
	d := img.Data()

	bestY, bestX := brightestSpot(d, h, w)

	// unit vector from the bright spot toward the image center
	ovx := float64(w)/2 - float64(bestX)
	ovy := float64(h)/2 - float64(bestY)
	norm := math.Sqrt(ovx*ovx + ovy*ovy)
	if norm == 0 {
		return nil
	}
	ovx /= norm
	ovy /= norm

	offset := distuv.Normal{Mu: 0, Sigma: 5, Src: r}
	x, y := float64(bestX), float64(bestY)
	steps := 0.0
	for {
		if steps < 0 {
			radius := distuv.Normal{Mu: 100, Sigma: 100, Src: r}.Rand()
			rad := int(math.Round(math.Max(40, radius)))
			f.flare(d, h, w, int(x), int(y), rad, r, offset)
			steps = distuv.Normal{Mu: float64(rad), Sigma: 15, Src: r}.Rand()
		}
		distBest := sq(float64(bestX)-float64(w)/2) + sq(float64(bestY)-float64(h)/2)
		distCur := sq(x-float64(w)/2) + sq(y-float64(h)/2)
		if distBest+1 <= distCur {
			break
		}
		x += ovx
		y += ovy
		steps--
	}
	return nil
}

func (f *LensFlare) flare(d []float64, h, w, x0, y0, radius int, r *rand.Rand, offset distuv.Normal) {
	gt := float64(130 + r.Intn(50))
	rt := float64(220 + r.Intn(35))
	bt := float64(r.Intn(50))
	xOff := offset.Rand()
	yOff := offset.Rand()
	fr := float64(radius)
	for x := x0 - radius; x <= x0+radius; x++ {
		for y := y0 - radius; y <= y0+radius; y++ {
			if y < 0 || x < 0 || y >= h || x >= w {
				continue
			}
			dx, dy := float64(x-x0), float64(y-y0)
			if math.Sqrt(dx*dx+dy*dy) > fr {
				continue
			}
			offDist := math.Sqrt(sq(dx+xOff) + sq(dy+yOff))
			// quadratic falloff from the offset flare center
			tt := clamp(1-(fr-offDist)/fr, 0, 1)
			const a = 3
			visibility := math.Max(0, a*tt*tt+(1-a)*tt) * 0.8
			base := (y*w + x) * 3
			d[base] = math.Round(d[base] + (rt-d[base])*visibility)
			d[base+1] = math.Round(d[base+1] + (gt-d[base+1])*visibility)
			d[base+2] = math.Round(d[base+2] + (bt-d[base+2])*visibility)
		}
	}
}

// brightestSpot returns the per-channel-averaged brightness centroid.
func brightestSpot(d []float64, h, w int) (int, int) {
	var sum [3]float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * 3
			for j := 0; j < 3; j++ {
				sum[j] += d[base+j]
			}
		}
	}
	var ex, ey [3]float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * 3
			for j := 0; j < 3; j++ {
				if sum[j] != 0 {
					ex[j] += float64(x) * d[base+j] / sum[j]
					ey[j] += float64(y) * d[base+j] / sum[j]
				}
			}
		}
	}
	bestY := int((ey[0] + ey[1] + ey[2]) / 3)
	bestX := int((ex[0] + ex[1] + ex[2]) / 3)
	return bestY, bestX
}

func sq(v float64) float64 { return v * v }
