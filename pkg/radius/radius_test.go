package radius

import (
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func TestGaussianNonNegativeAndDeterministic(t *testing.T) {
	g := Gaussian{Mean: 5, Std: 3}
	a := pg.NewRand(17)
	b := pg.NewRand(17)
	for i := 0; i < 200; i++ {
		x := g.Generate(a)
		y := g.Generate(b)
		if x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
		if x < 0 {
			t.Fatalf("negative radius %d", x)
		}
	}
}

func TestGaussianZeroStdRounds(t *testing.T) {
	g := Gaussian{Mean: 4.6, Std: 0}
	if r := g.Generate(pg.NewRand(1)); r != 5 {
		t.Fatalf("radius = %d, want 5", r)
	}
}

func TestProbabilityTable(t *testing.T) {
	g := ProbabilityTable{Probs: []float64{0, 0, 1}}
	for i := 0; i < 20; i++ {
		if r := g.Generate(pg.NewRand(uint64(i))); r != 2 {
			t.Fatalf("radius = %d, want 2", r)
		}
	}
}

func TestFixed(t *testing.T) {
	g := Fixed{Radius: 7}
	if r := g.Generate(pg.NewRand(1)); r != 7 {
		t.Fatalf("radius = %d, want 7", r)
	}
}
