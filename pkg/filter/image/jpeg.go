package image

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Compression compresses the image as JPEG at the given quality and writes
// the decompressed result back, introducing blocky codec artifacts. Quality
// is in [1, 100]; higher loses less. Deterministic; no draws consumed.
// Pixel values are expected in {0..255}.
type Compression struct {
	QualityKey string

	quality int
}

func NewCompression(qualityKey string) *Compression {
	return &Compression{QualityKey: qualityKey}
}

func (f *Compression) Name() string { return "jpeg_compression" }

func (f *Compression) SetParams(p pg.Params) error {
	var err error
	f.quality, err = p.Int(f.QualityKey)
	return err
}

func (f *Compression) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	img, h, w, ok := rgb(t)
	if !ok {
		return nil
	}
	d := img.Data()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * 3
			src.SetRGBA(x, y, color.RGBA{
				R: toByte(d[base]),
				G: toByte(d[base+1]),
				B: toByte(d[base+2]),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: f.quality}); err != nil {
		return err
	}
	decoded, err := jpeg.Decode(&buf)
	if err != nil {
		return err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := decoded.At(x, y).RGBA()
			base := (y*w + x) * 3
			d[base] = float64(cr >> 8)
			d[base+1] = float64(cg >> 8)
			d[base+2] = float64(cb >> 8)
		}
	}
	return nil
}

func toByte(v float64) uint8 {
	return uint8(clamp(math.Round(v), 0, 255))
}
