package noise

import (
	"errors"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func TestGaussianZeroVariance(t *testing.T) {
	f := NewGaussian("mean", "std")
	if err := f.SetParams(pg.Params{"mean": 2.5, "std": 0.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.Float64TensorOf([]float64{0, 1, 2, 3, 4}, 5)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if v != float64(i)+2.5 {
			t.Fatalf("element %d = %v, want %v", i, v, float64(i)+2.5)
		}
	}
}

func TestGaussianDeterministic(t *testing.T) {
	mk := func() *pg.Float64Tensor {
		x := pg.NewFloat64Tensor(10, 10)
		for i := range x.Data() {
			x.Data()[i] = float64(i)
		}
		return x
	}
	f := NewGaussian("mean", "std")
	if err := f.SetParams(pg.Params{"mean": 0.0, "std": 3.0}); err != nil {
		t.Fatal(err)
	}
	a, b := mk(), mk()
	if err := f.Apply(a, pg.NewRand(42), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(b, pg.NewRand(42), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if !pg.Equal(a, b) {
		t.Fatal("identical seeds produced different noise")
	}
	if pg.Equal(a, mk()) {
		t.Fatal("noise with std 3 left the tensor unchanged")
	}
}

func TestGaussianIntTruncates(t *testing.T) {
	f := NewGaussian("mean", "std")
	if err := f.SetParams(pg.Params{"mean": 10.7, "std": 0.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.Int64TensorOf([]int64{0, 1}, 2)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if x.Data()[0] != 10 || x.Data()[1] != 11 {
		t.Fatalf("got %v, want [10 11]", x.Data())
	}
}

func TestTimeDependentNeedsSeries(t *testing.T) {
	f := NewGaussianTimeDependent("m", "s", "mi", "si")
	if err := f.SetParams(pg.Params{"m": 0.0, "s": 0.0, "mi": 1.0, "si": 0.0}); err != nil {
		t.Fatal(err)
	}
	err := f.Apply(pg.NewFloat64Tensor(2), pg.NewRand(1), pg.Dims{})
	var mce *pg.MissingContextError
	if !errors.As(err, &mce) || mce.Dim != "time" {
		t.Fatalf("err = %v, want MissingContextError for time", err)
	}
}

func TestTimeDependentGrowingMean(t *testing.T) {
	root := pg.NewSeries(pg.NewArray(1).AddFilter(NewGaussianTimeDependent("m", "s", "mi", "si")))
	data := pg.NewFloat64Tensor(4, 1)
	p := pg.Params{"m": 0.0, "s": 0.0, "mi": 2.0, "si": 0.0}
	if err := pg.Process(root, data, p, pg.NewRand(1)); err != nil {
		t.Fatal(err)
	}
	// zero variance: element at step i is exactly 2*i
	for i := 0; i < 4; i++ {
		if got := data.At(i, 0); got != 2*float64(i) {
			t.Fatalf("step %d = %v, want %v", i, got, 2*float64(i))
		}
	}
}
