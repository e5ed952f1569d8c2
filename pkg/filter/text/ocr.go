package text

import (
	"fmt"
	"strings"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Replacement is the weighted substitution set for one character.
type Replacement struct {
	Chars []string
	Probs []float64
}

// Substitutions maps a character to its OCR confusion candidates. Probs of
// one Replacement are expected to be normalized.
type Substitutions map[string]Replacement

// OCRError emulates optical character recognition mistakes: each character
// present in the substitution table is replaced with probability p by a
// candidate drawn from its weighted confusion set. Characters absent from the
// table consume no draws; present characters consume one uniform draw, plus
// one more when the replacement fires.
type OCRError struct {
	SubstitutionsKey string
	ProbabilityKey   string

	subs Substitutions
	prob float64
}

func NewOCRError(substitutionsKey, probabilityKey string) *OCRError {
	return &OCRError{SubstitutionsKey: substitutionsKey, ProbabilityKey: probabilityKey}
}

func (f *OCRError) Name() string { return "ocr_error" }

func (f *OCRError) SetParams(p pg.Params) error {
	v, err := p.Value(f.SubstitutionsKey)
	if err != nil {
		return err
	}
	subs, ok := v.(Substitutions)
	if !ok {
		return fmt.Errorf("parameter %q: expected text.Substitutions, got %T", f.SubstitutionsKey, v)
	}
	f.subs = subs
	f.prob, err = p.Float(f.ProbabilityKey)
	return err
}

func (f *OCRError) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	x, ok := t.(*pg.StringTensor)
	if !ok {
		return nil
	}
	d := x.Data()
	for i := range d {
		var b strings.Builder
		b.Grow(len(d[i]))
		for _, c := range d[i] {
			b.WriteString(f.replace(string(c), r))
		}
		d[i] = b.String()
	}
	return nil
}

func (f *OCRError) replace(c string, r *rand.Rand) string {
	repl, ok := f.subs[c]
	if !ok {
		return c
	}
	if r.Float64() < f.prob {
		return repl.Chars[pg.Choice(r, repl.Probs)]
	}
	return c
}
