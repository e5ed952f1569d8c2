// Package image provides corruption filters for image tensors. Images are
// float64 tensors of shape (height, width, 3) with RGB channels; filters
// taking a range parameter accept values in [0,1] (range 1) or {0..255}
// (range 255).
//
// The area-based filters share one pattern: corruption seeds arrive via a
// geometric inter-arrival scan over flattened pixel space, every seed splats
// a differential rectangle into a (height+1) x (width+1) difference array,
// and a 2-D prefix-sum pass materializes the coverage field. This keeps the
// expected work sub-linear in image size when the seed probability is small.
package image

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

type field struct {
	v    []float64
	w, h int // logical image extent; storage is (h+1) x (w+1)
}

func newField(h, w int) *field {
	return &field{v: make([]float64, (h+1)*(w+1)), w: w, h: h}
}

func (f *field) at(y, x int) float64     { return f.v[y*(f.w+1)+x] }
func (f *field) add(y, x int, d float64) { f.v[y*(f.w+1)+x] += d }

// splat accumulates a clamped differential rectangle of the given radius
// around (y, x).
func (f *field) splat(y, x, r int) {
	x0, x1 := maxInt(x-r, 0), minInt(x+r+1, f.w)
	y0, y1 := maxInt(y-r, 0), minInt(y+r+1, f.h)
	f.add(y0, x0, 1)
	f.add(y0, x1, -1)
	f.add(y1, x0, -1)
	f.add(y1, x1, 1)
}

// prefixSum turns the difference array into cumulative coverage counts.
func (f *field) prefixSum() {
	for y := 1; y <= f.h; y++ {
		for x := 0; x <= f.w; x++ {
			f.v[y*(f.w+1)+x] += f.v[(y-1)*(f.w+1)+x]
		}
	}
	for y := 0; y <= f.h; y++ {
		for x := 1; x <= f.w; x++ {
			f.v[y*(f.w+1)+x] += f.v[y*(f.w+1)+x-1]
		}
	}
}

// rgb validates an image tensor and returns its extent.
func rgb(t pg.Tensor) (*pg.Float64Tensor, int, int, bool) {
	x, ok := t.(*pg.Float64Tensor)
	if !ok {
		return nil, 0, 0, false
	}
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return nil, 0, 0, false
	}
	return x, shape[0], shape[1], true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
