// Package text provides OCR-style corruption filters for string tensors.
package text

import (
	"strings"
	"unicode"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Uppercase converts each character to uppercase with the given probability.
// One uniform draw per character.
type Uppercase struct {
	ProbabilityKey string

	prob float64
}

func NewUppercase(probabilityKey string) *Uppercase {
	return &Uppercase{ProbabilityKey: probabilityKey}
}

func (f *Uppercase) Name() string { return "uppercase" }

func (f *Uppercase) SetParams(p pg.Params) error {
	var err error
	f.prob, err = p.Float(f.ProbabilityKey)
	return err
}

func (f *Uppercase) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	x, ok := t.(*pg.StringTensor)
	if !ok {
		return nil
	}
	d := x.Data()
	for i := range d {
		var b strings.Builder
		b.Grow(len(d[i]))
		for _, c := range d[i] {
			if r.Float64() < f.prob {
				c = unicode.ToUpper(c)
			}
			b.WriteRune(c)
		}
		d[i] = b.String()
	}
	return nil
}
