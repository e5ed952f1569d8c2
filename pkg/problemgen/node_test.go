package problemgen

import (
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
)

// addIndex adds its resolved amount plus the current time index, recording
// the order elements were visited in.
type addIndex struct {
	AmountKey string
	amount    float64
	visited   []int
}

func (f *addIndex) Name() string { return "add_index" }

func (f *addIndex) SetParams(p Params) error {
	v, err := p.Float(f.AmountKey)
	if err != nil {
		return err
	}
	f.amount = v
	return nil
}

func (f *addIndex) Apply(t Tensor, r *rand.Rand, dims Dims) error {
	i, err := dims.Index("time")
	if err != nil {
		return err
	}
	f.visited = append(f.visited, i)
	x, ok := t.(*Float64Tensor)
	if !ok {
		return nil
	}
	for j := range x.Data() {
		x.Data()[j] += f.amount + float64(i)
	}
	return nil
}

func TestResolveParamsMissingKey(t *testing.T) {
	arr := NewArray(2).AddFilter(&addIndex{AmountKey: "amt"})
	err := arr.ResolveParams(Params{})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	var mpe *MissingParameterError
	if !errors.As(err, &mpe) || mpe.Key != "amt" {
		t.Fatalf("err = %v, want MissingParameterError for amt", err)
	}
	if !strings.Contains(err.Error(), "add_index") {
		t.Fatalf("error should name the filter: %v", err)
	}
}

func TestArrayShapeMismatch(t *testing.T) {
	arr := NewArray(3)
	err := arr.Process(NewFloat64Tensor(2), NewRand(1), Dims{})
	var sme *ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("err = %v, want ShapeMismatchError", err)
	}
}

func TestSeriesVisitsAscending(t *testing.T) {
	f := &addIndex{AmountKey: "amt"}
	root := NewSeries(NewArray(2).AddFilter(f))
	data := NewFloat64Tensor(4, 2)
	if err := Process(root, data, Params{"amt": 0.0}, NewRand(1)); err != nil {
		t.Fatal(err)
	}
	for i, v := range f.visited {
		if v != i {
			t.Fatalf("visited = %v, want ascending order", f.visited)
		}
	}
	// row i gained i everywhere
	for i := 0; i < 4; i++ {
		if data.At(i, 0) != float64(i) {
			t.Fatalf("row %d = %v, want %d", i, data.At(i, 0), i)
		}
	}
}

func TestMissingTimeContext(t *testing.T) {
	root := NewArray(2, 2).AddFilter(&addIndex{AmountKey: "amt"})
	err := Process(root, NewFloat64Tensor(2, 2), Params{"amt": 0.0}, NewRand(1))
	var mce *MissingContextError
	if !errors.As(err, &mce) || mce.Dim != "time" {
		t.Fatalf("err = %v, want MissingContextError for time", err)
	}
}

func TestTupleSeriesDispatch(t *testing.T) {
	x := Float64TensorOf([]float64{1, 2, 3, 4}, 2, 2)
	y := Int64TensorOf([]int64{1, 2}, 2)
	f := &addIndex{AmountKey: "amt"}
	root := NewTupleSeries(
		NewSeries(NewArray(2).AddFilter(f)),
		NewArray(2), // no filters: labels untouched
	)
	if err := Process(root, Tuple{x, y}, Params{"amt": 1.0}, NewRand(1)); err != nil {
		t.Fatal(err)
	}
	if x.At(0, 0) != 2 || x.At(1, 0) != 5 {
		t.Fatalf("features = %v", x.Data())
	}
	if y.Data()[0] != 1 || y.Data()[1] != 2 {
		t.Fatalf("labels changed: %v", y.Data())
	}
}

func TestProcessCloneLeavesInputIntact(t *testing.T) {
	data := Float64TensorOf([]float64{1, 2, 3}, 3)
	root := NewSeries(NewArray().AddFilter(&addIndex{AmountKey: "amt"}))
	out, err := ProcessClone(root, data, Params{"amt": 10.0}, NewRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if data.Data()[0] != 1 || data.Data()[2] != 3 {
		t.Fatalf("input mutated: %v", data.Data())
	}
	got := out.(*Float64Tensor)
	want := []float64{11, 13, 15}
	for i := range want {
		if got.Data()[i] != want[i] {
			t.Fatalf("out = %v, want %v", got.Data(), want)
		}
	}
}

func TestGeometricBounds(t *testing.T) {
	r := NewRand(7)
	if g := Geometric(r, 1.0); g != 1 {
		t.Fatalf("Geometric(1) = %d, want 1", g)
	}
	if g := Geometric(r, 0); g != math.MaxInt32 {
		t.Fatalf("Geometric(0) = %d, want sentinel", g)
	}
	for i := 0; i < 100; i++ {
		if g := Geometric(r, 0.3); g < 1 {
			t.Fatalf("Geometric returned %d < 1", g)
		}
	}
}

func TestChoiceDeterministic(t *testing.T) {
	a := NewRand(3)
	b := NewRand(3)
	for i := 0; i < 50; i++ {
		x := Choice(a, []float64{0.2, 0.5, 0.3})
		y := Choice(b, []float64{0.2, 0.5, 0.3})
		if x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
		if x < 0 || x > 2 {
			t.Fatalf("choice out of range: %d", x)
		}
	}
}
