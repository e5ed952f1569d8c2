package text

import (
	"strings"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func TestUppercaseProbabilityOne(t *testing.T) {
	f := NewUppercase("p")
	if err := f.SetParams(pg.Params{"p": 1.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.StringTensorOf([]string{"hello world", "go"}, 2)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if x.Data()[0] != "HELLO WORLD" || x.Data()[1] != "GO" {
		t.Fatalf("got %v", x.Data())
	}
}

func TestUppercaseProbabilityZero(t *testing.T) {
	f := NewUppercase("p")
	if err := f.SetParams(pg.Params{"p": 0.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.StringTensorOf([]string{"hello"}, 1)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if x.Data()[0] != "hello" {
		t.Fatalf("got %q, want unchanged", x.Data()[0])
	}
}

func ocrSubs() Substitutions {
	return Substitutions{
		"a": {Chars: []string{"o", "e"}, Probs: []float64{0.5, 0.5}},
		"l": {Chars: []string{"1"}, Probs: []float64{1.0}},
	}
}

func TestOCRErrorOnlyTableChars(t *testing.T) {
	f := NewOCRError("subs", "p")
	if err := f.SetParams(pg.Params{"subs": ocrSubs(), "p": 1.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.StringTensorOf([]string{"lava"}, 1)
	if err := f.Apply(x, pg.NewRand(2), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	got := x.Data()[0]
	if strings.ContainsAny(got, "al") {
		t.Fatalf("table characters survived probability 1: %q", got)
	}
	if got[1] != 'o' && got[1] != 'e' {
		t.Fatalf("unexpected substitution: %q", got)
	}
	if !strings.Contains(got, "v") {
		t.Fatalf("untabled character changed: %q", got)
	}
}

func TestOCRErrorProbabilityZero(t *testing.T) {
	f := NewOCRError("subs", "p")
	if err := f.SetParams(pg.Params{"subs": ocrSubs(), "p": 0.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.StringTensorOf([]string{"lava"}, 1)
	if err := f.Apply(x, pg.NewRand(2), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if x.Data()[0] != "lava" {
		t.Fatalf("got %q, want unchanged", x.Data()[0])
	}
}

func TestOCRErrorDeterministic(t *testing.T) {
	f := NewOCRError("subs", "p")
	if err := f.SetParams(pg.Params{"subs": ocrSubs(), "p": 0.5}); err != nil {
		t.Fatal(err)
	}
	a := pg.StringTensorOf([]string{"all along the wall"}, 1)
	b := pg.StringTensorOf([]string{"all along the wall"}, 1)
	if err := f.Apply(a, pg.NewRand(7), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(b, pg.NewRand(7), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if a.Data()[0] != b.Data()[0] {
		t.Fatalf("identical seeds diverged: %q vs %q", a.Data()[0], b.Data()[0])
	}
}
