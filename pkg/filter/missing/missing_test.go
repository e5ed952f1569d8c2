package missing

import (
	"math"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func TestMissingProbabilityZero(t *testing.T) {
	f := NewMissing("p")
	if err := f.SetParams(pg.Params{"p": 0.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.Float64TensorOf([]float64{1, 2, 3, 4}, 4)
	if err := f.Apply(x, pg.NewRand(5), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if math.IsNaN(v) {
			t.Fatalf("element %d erased at probability 0", i)
		}
	}
}

func TestMissingProbabilityOne(t *testing.T) {
	f := NewMissing("p")
	if err := f.SetParams(pg.Params{"p": 1.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.Float64TensorOf([]float64{1, 2, 3, 4}, 4)
	if err := f.Apply(x, pg.NewRand(5), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if !math.IsNaN(v) {
			t.Fatalf("element %d survived probability 1", i)
		}
	}
}

func TestMissingDeterministic(t *testing.T) {
	f := NewMissing("p")
	if err := f.SetParams(pg.Params{"p": 0.5}); err != nil {
		t.Fatal(err)
	}
	a := pg.NewFloat64Tensor(100)
	b := pg.NewFloat64Tensor(100)
	a.Fill(1)
	b.Fill(1)
	if err := f.Apply(a, pg.NewRand(9), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(b, pg.NewRand(9), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if !pg.Equal(a, b) {
		t.Fatal("identical seeds erased different elements")
	}
	nans := 0
	for _, v := range a.Data() {
		if math.IsNaN(v) {
			nans++
		}
	}
	if nans == 0 || nans == 100 {
		t.Fatalf("nans = %d, expected a partial erase at p=0.5", nans)
	}
}

func TestMissingPreservesShape(t *testing.T) {
	f := NewMissing("p")
	if err := f.SetParams(pg.Params{"p": 0.5}); err != nil {
		t.Fatal(err)
	}
	x := pg.NewFloat64Tensor(3, 4)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if !pg.SameShape(x.Shape(), []int{3, 4}) {
		t.Fatalf("shape changed to %v", x.Shape())
	}
}
