package image

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// GaussianBlur convolves each channel with a zero-centred normal kernel of
// the given standard deviation. The kernel is separable: one horizontal pass
// and one vertical pass, with reflected boundaries, truncated at four
// standard deviations. Works on (h, w) grayscale tensors as well as (h, w, 3)
// images. Consumes no random draws.
type GaussianBlur struct {
	StdKey string

	std float64
}

func NewGaussianBlur(stdKey string) *GaussianBlur {
	return &GaussianBlur{StdKey: stdKey}
}

func (f *GaussianBlur) Name() string { return "blur_gaussian" }

func (f *GaussianBlur) SetParams(p pg.Params) error {
	var err error
	f.std, err = p.Float(f.StdKey)
	return err
}

func (f *GaussianBlur) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	x, ok := t.(*pg.Float64Tensor)
	if !ok || f.std <= 0 {
		return nil
	}
	shape := x.Shape()
	var h, w, ch int
	switch {
	case len(shape) == 2:
		h, w, ch = shape[0], shape[1], 1
	case len(shape) == 3 && shape[2] == 3:
		h, w, ch = shape[0], shape[1], 3
	default:
		return nil
	}

	kernel := gaussKernel(f.std)
	d := x.Data()
	row := make([]float64, maxInt(w, h))
	for c := 0; c < ch; c++ {
		// horizontal pass
		for y := 0; y < h; y++ {
			for i := 0; i < w; i++ {
				row[i] = d[(y*w+i)*ch+c]
			}
			for i := 0; i < w; i++ {
				d[(y*w+i)*ch+c] = convolveAt(row[:w], i, kernel)
			}
		}
		// vertical pass
		for xx := 0; xx < w; xx++ {
			for i := 0; i < h; i++ {
				row[i] = d[(i*w+xx)*ch+c]
			}
			for i := 0; i < h; i++ {
				d[(i*w+xx)*ch+c] = convolveAt(row[:h], i, kernel)
			}
		}
	}
	return nil
}

func gaussKernel(std float64) []float64 {
	radius := int(4*std + 0.5)
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		t := float64(i - radius)
		k[i] = math.Exp(-t * t / (2 * std * std))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolveAt evaluates the kernel centred on index i with reflected
// boundaries, so constant regions stay constant.
func convolveAt(line []float64, i int, kernel []float64) float64 {
	radius := len(kernel) / 2
	n := len(line)
	sum := 0.0
	for j, kv := range kernel {
		p := i + j - radius
		p = reflectIndex(p, n)
		sum += kv * line[p]
	}
	return sum
}

func reflectIndex(p, n int) int {
	for p < 0 || p >= n {
		if p < 0 {
			p = -p - 1
		}
		if p >= n {
			p = 2*n - p - 1
		}
	}
	return p
}

// Blur repeatedly replaces every pixel with the truncated mean of its 3x3
// neighborhood, clipped at the image border. Heavier and blunter than
// GaussianBlur; repeats controls the strength. Consumes no random draws.
type Blur struct {
	RepeatsKey string

	repeats int
}

func NewBlur(repeatsKey string) *Blur {
	return &Blur{RepeatsKey: repeatsKey}
}

func (f *Blur) Name() string { return "blur" }

func (f *Blur) SetParams(p pg.Params) error {
	var err error
	f.repeats, err = p.Int(f.RepeatsKey)
	return err
}

func (f *Blur) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok {
		return nil
	}
	d := img.Data()
	for rep := 0; rep < f.repeats; rep++ {
		orig := append([]float64(nil), d...)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				y0, y1 := maxInt(y-1, 0), minInt(y+2, h)
				x0, x1 := maxInt(x-1, 0), minInt(x+2, w)
				count := float64((y1 - y0) * (x1 - x0))
				for c := 0; c < 3; c++ {
					sum := 0.0
					for yy := y0; yy < y1; yy++ {
						for xx := x0; xx < x1; xx++ {
							sum += orig[(yy*w+xx)*3+c]
						}
					}
					d[(y*w+x)*3+c] = math.Floor(sum / count)
				}
			}
		}
	}
	return nil
}
