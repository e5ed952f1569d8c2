package missing

import (
	"fmt"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/radius"
	"golang.org/x/exp/rand"
)

// Area blots rectangular stains out of multi-line text elements, emulating
// the effect of physical stains on OCR input. Stain seeds arrive via a
// geometric inter-arrival scan over the flattened row/column space; each seed
// splats a radius from the configured generator into a 2-D difference array,
// and a prefix-sum pass materializes the affected-region mask. Newline
// characters are never overwritten.
type Area struct {
	ProbabilityKey     string
	RadiusGeneratorKey string
	MissingValueKey    string

	prob    float64
	radius  radius.Generator
	missing string
}

func NewArea(probabilityKey, radiusGeneratorKey, missingValueKey string) *Area {
	return &Area{
		ProbabilityKey:     probabilityKey,
		RadiusGeneratorKey: radiusGeneratorKey,
		MissingValueKey:    missingValueKey,
	}
}

func (f *Area) Name() string { return "missing_area" }

func (f *Area) SetParams(p pg.Params) error {
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
	f.missing, err = p.String(f.MissingValueKey)
	return err
}

func (f *Area) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	x, ok := t.(*pg.StringTensor)
	if !ok || f.prob <= 0 {
		return nil
	}
	d := x.Data()
	for i := range d {
		d[i] = f.stainText(d[i], r)
	}
	return nil
}

func (f *Area) stainText(s string, r *rand.Rand) string {
	chars := []rune(s)

	// Row layout: rows end at newline characters, which stay untouched.
	rowStarts := []int{0}
	for i, c := range chars {
		if c == '\n' {
			rowStarts = append(rowStarts, i+1)
		}
	}
	if rowStarts[len(rowStarts)-1] != len(chars) {
		rowStarts = append(rowStarts, len(chars))
	}
	height := len(rowStarts) - 1
	widths := make([]int, height)
	width := 0
	for y := 0; y < height; y++ {
		widths[y] = rowStarts[y+1] - rowStarts[y] - 1
		if widths[y] > width {
			width = widths[y]
		}
	}

	errs := make([][]float64, height+1)
	for y := range errs {
		errs[y] = make([]float64, width+1)
	}
	ind := -1
	for {
		ind += pg.Geometric(r, f.prob)
		if ind >= width*height {
			break
		}
		y := ind / width
		x := ind - y*width
		rad := f.radius.Generate(r)
		x0, x1 := max(x-rad, 0), min(x+rad+1, width)
		y0, y1 := max(y-rad, 0), min(y+rad+1, height)
		errs[y0][x0]++
		errs[y0][x1]--
		errs[y1][x0]--
		errs[y1][x1]++
	}
	prefixSum2D(errs)

	out := make([]rune, len(chars))
	copy(out, chars)
	missing := []rune(f.missing)
	for y := 0; y < height; y++ {
		start := rowStarts[y]
		for j := 0; j < widths[y]; j++ {
			if errs[y][j] > 0 && len(missing) > 0 {
				out[start+j] = missing[0]
			}
		}
	}
	return string(out)
}

// prefixSum2D turns a difference array into cumulative coverage counts,
// first along rows of constant y, then along columns.
func prefixSum2D(errs [][]float64) {
	for y := 1; y < len(errs); y++ {
		for x := range errs[y] {
			errs[y][x] += errs[y-1][x]
		}
	}
	for y := range errs {
		for x := 1; x < len(errs[y]); x++ {
			errs[y][x] += errs[y][x-1]
		}
	}
}
