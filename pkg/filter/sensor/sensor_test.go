package sensor

import (
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func ones(n int) *pg.Float64Tensor {
	x := pg.NewFloat64Tensor(n)
	x.Fill(1)
	return x
}

func TestGapNeverBreaks(t *testing.T) {
	f := NewGap("pb", "pr", "nan")
	if err := f.SetParams(pg.Params{"pb": 0.0, "pr": 1.0, "nan": -1.0}); err != nil {
		t.Fatal(err)
	}
	x := ones(50)
	if err := f.Apply(x, pg.NewRand(3), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if v != 1 {
			t.Fatalf("element %d overwritten with break probability 0", i)
		}
	}
}

func TestGapBreaksImmediatelyAndStays(t *testing.T) {
	f := NewGap("pb", "pr", "nan")
	if err := f.SetParams(pg.Params{"pb": 1.0, "pr": 0.0, "nan": -1.0}); err != nil {
		t.Fatal(err)
	}
	x := ones(20)
	if err := f.Apply(x, pg.NewRand(3), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if v != -1 {
			t.Fatalf("element %d = %v, want missing value", i, v)
		}
	}
}

func TestGapStateSpansApplyCalls(t *testing.T) {
	f := NewGap("pb", "pr", "nan")
	if err := f.SetParams(pg.Params{"pb": 1.0, "pr": 0.0, "nan": -1.0}); err != nil {
		t.Fatal(err)
	}
	r := pg.NewRand(3)
	a, b := ones(5), ones(5)
	if err := f.Apply(a, r, pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(b, r, pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range b.Data() {
		if v != -1 {
			t.Fatalf("broken chain recovered across Apply calls at %d: %v", i, v)
		}
	}
}

func TestGapSetParamsResetsState(t *testing.T) {
	f := NewGap("pb", "pr", "nan")
	if err := f.SetParams(pg.Params{"pb": 1.0, "pr": 0.0, "nan": -1.0}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(ones(5), pg.NewRand(3), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	// resolve a new sweep point: the chain must start working again
	if err := f.SetParams(pg.Params{"pb": 0.0, "pr": 0.0, "nan": -1.0}); err != nil {
		t.Fatal(err)
	}
	x := ones(5)
	if err := f.Apply(x, pg.NewRand(3), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		if v != 1 {
			t.Fatalf("element %d corrupted after reset: %v", i, v)
		}
	}
}

func TestDriftRampsWithPosition(t *testing.T) {
	f := NewDrift("mag")
	if err := f.SetParams(pg.Params{"mag": 2.0}); err != nil {
		t.Fatal(err)
	}
	x := ones(100)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range x.Data() {
		want := 1 + 2*float64(i+1)
		if v != want {
			t.Fatalf("element %d = %v, want %v", i, v, want)
		}
	}
}

func TestDriftAppliesPerLeadingPosition(t *testing.T) {
	f := NewDrift("mag")
	if err := f.SetParams(pg.Params{"mag": 1.0}); err != nil {
		t.Fatal(err)
	}
	x := pg.NewFloat64Tensor(2, 3)
	if err := f.Apply(x, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 3; j++ {
		if x.At(0, j) != 1 {
			t.Fatalf("row 0 col %d = %v, want 1", j, x.At(0, j))
		}
		if x.At(1, j) != 2 {
			t.Fatalf("row 1 col %d = %v, want 2", j, x.At(1, j))
		}
	}
}
