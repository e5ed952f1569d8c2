package problemgen

import (
	"math"
	"testing"
)

func TestFloat64TensorShape(t *testing.T) {
	x := NewFloat64Tensor(2, 3, 4)
	if x.Size() != 24 {
		t.Fatalf("size = %d, want 24", x.Size())
	}
	if len(x.Shape()) != 3 {
		t.Fatalf("rank = %d, want 3", len(x.Shape()))
	}
	x.Set(1.5, 1, 2, 3)
	if got := x.At(1, 2, 3); got != 1.5 {
		t.Fatalf("At = %v, want 1.5", got)
	}
}

func TestTensorOfSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on size mismatch")
		}
	}()
	Float64TensorOf([]float64{1, 2, 3}, 2, 2)
}

func TestViewSharesStorage(t *testing.T) {
	x := NewFloat64Tensor(3, 2)
	v := x.View(1).(*Float64Tensor)
	if len(v.Shape()) != 1 || v.Shape()[0] != 2 {
		t.Fatalf("view shape = %v, want [2]", v.Shape())
	}
	v.Data()[0] = 7
	if x.At(1, 0) != 7 {
		t.Fatal("view write did not reach parent storage")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	x := Float64TensorOf([]float64{1, 2, 3, 4}, 2, 2)
	c := x.Clone().(*Float64Tensor)
	c.Data()[0] = 99
	if x.Data()[0] != 1 {
		t.Fatal("clone shares storage with original")
	}
}

func TestEqualTreatsNaNAsEqual(t *testing.T) {
	a := Float64TensorOf([]float64{1, math.NaN()}, 2)
	b := Float64TensorOf([]float64{1, math.NaN()}, 2)
	if !Equal(a, b) {
		t.Fatal("NaN positions should compare equal")
	}
	b.Data()[0] = 2
	if Equal(a, b) {
		t.Fatal("distinct tensors compared equal")
	}
}

func TestTupleViewAndClone(t *testing.T) {
	x := Float64TensorOf([]float64{1, 2}, 2)
	y := Int64TensorOf([]int64{3, 4}, 2)
	tu := Tuple{x, y}
	if tu.Kind() != KindTuple {
		t.Fatalf("kind = %v, want tuple", tu.Kind())
	}
	if tu.View(1) != Tensor(y) {
		t.Fatal("tuple view should return the element")
	}
	c := tu.Clone().(Tuple)
	c[0].(*Float64Tensor).Data()[0] = 9
	if x.Data()[0] != 1 {
		t.Fatal("tuple clone shares element storage")
	}
}

func TestStringTensor(t *testing.T) {
	s := NewStringTensor(2, 2)
	s.Set("ab", 0, 1)
	if s.At(0, 1) != "ab" {
		t.Fatal("string round trip failed")
	}
	if !SameShape(s.Shape(), []int{2, 2}) {
		t.Fatalf("shape = %v", s.Shape())
	}
}
