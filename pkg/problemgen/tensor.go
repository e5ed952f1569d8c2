package problemgen

import (
	"fmt"
	"math"
)

// Kind enumerates supported tensor element kinds.
type Kind int

const (
	KindInvalid Kind = iota
	KindFloat64
	KindInt64
	KindString
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Tensor is a typed, shape-carrying data container. Concrete tensors store
// elements in a flat row-major slice; View exposes leading-axis sub-tensors
// that share backing storage, so mutations through a view are visible in the
// parent.
type Tensor interface {
	Kind() Kind
	Shape() []int
	Size() int
	// View returns the sub-tensor at position i along the leading axis,
	// sharing backing storage with the receiver.
	View(i int) Tensor
	// Clone returns a deep copy with private storage.
	Clone() Tensor
}

func sizeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func cloneShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}

// SameShape reports whether two shapes are identical.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type Float64Tensor struct {
	data  []float64
	shape []int
}

// NewFloat64Tensor allocates a zero-filled float64 tensor.
func NewFloat64Tensor(shape ...int) *Float64Tensor {
	return &Float64Tensor{data: make([]float64, sizeOf(shape)), shape: cloneShape(shape)}
}

// Float64TensorOf wraps an existing flat slice; len(data) must equal the
// product of shape.
func Float64TensorOf(data []float64, shape ...int) *Float64Tensor {
	if len(data) != sizeOf(shape) {
		panic(fmt.Sprintf("problemgen: data length %d does not match shape %v", len(data), shape))
	}
	return &Float64Tensor{data: data, shape: cloneShape(shape)}
}

func (t *Float64Tensor) Kind() Kind      { return KindFloat64 }
func (t *Float64Tensor) Shape() []int    { return cloneShape(t.shape) }
func (t *Float64Tensor) Size() int       { return len(t.data) }
func (t *Float64Tensor) Data() []float64 { return t.data }

func (t *Float64Tensor) View(i int) Tensor {
	sub := len(t.data) / t.shape[0]
	return &Float64Tensor{data: t.data[i*sub : (i+1)*sub], shape: t.shape[1:]}
}

func (t *Float64Tensor) Clone() Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Float64Tensor{data: data, shape: cloneShape(t.shape)}
}

// Index converts a multi-dimensional index into a flat offset.
func (t *Float64Tensor) Index(idx ...int) int { return flatIndex(t.shape, idx) }

func (t *Float64Tensor) At(idx ...int) float64     { return t.data[flatIndex(t.shape, idx)] }
func (t *Float64Tensor) Set(v float64, idx ...int) { t.data[flatIndex(t.shape, idx)] = v }

// Fill sets every element to v.
func (t *Float64Tensor) Fill(v float64) {
	for i := range t.data {
		t.data[i] = v
	}
}

type Int64Tensor struct {
	data  []int64
	shape []int
}

func NewInt64Tensor(shape ...int) *Int64Tensor {
	return &Int64Tensor{data: make([]int64, sizeOf(shape)), shape: cloneShape(shape)}
}

func Int64TensorOf(data []int64, shape ...int) *Int64Tensor {
	if len(data) != sizeOf(shape) {
		panic(fmt.Sprintf("problemgen: data length %d does not match shape %v", len(data), shape))
	}
	return &Int64Tensor{data: data, shape: cloneShape(shape)}
}

func (t *Int64Tensor) Kind() Kind    { return KindInt64 }
func (t *Int64Tensor) Shape() []int  { return cloneShape(t.shape) }
func (t *Int64Tensor) Size() int     { return len(t.data) }
func (t *Int64Tensor) Data() []int64 { return t.data }

func (t *Int64Tensor) View(i int) Tensor {
	sub := len(t.data) / t.shape[0]
	return &Int64Tensor{data: t.data[i*sub : (i+1)*sub], shape: t.shape[1:]}
}

func (t *Int64Tensor) Clone() Tensor {
	data := make([]int64, len(t.data))
	copy(data, t.data)
	return &Int64Tensor{data: data, shape: cloneShape(t.shape)}
}

func (t *Int64Tensor) Index(idx ...int) int { return flatIndex(t.shape, idx) }

func (t *Int64Tensor) At(idx ...int) int64     { return t.data[flatIndex(t.shape, idx)] }
func (t *Int64Tensor) Set(v int64, idx ...int) { t.data[flatIndex(t.shape, idx)] = v }

func (t *Int64Tensor) Fill(v int64) {
	for i := range t.data {
		t.data[i] = v
	}
}

type StringTensor struct {
	data  []string
	shape []int
}

func NewStringTensor(shape ...int) *StringTensor {
	return &StringTensor{data: make([]string, sizeOf(shape)), shape: cloneShape(shape)}
}

func StringTensorOf(data []string, shape ...int) *StringTensor {
	if len(data) != sizeOf(shape) {
		panic(fmt.Sprintf("problemgen: data length %d does not match shape %v", len(data), shape))
	}
	return &StringTensor{data: data, shape: cloneShape(shape)}
}

func (t *StringTensor) Kind() Kind     { return KindString }
func (t *StringTensor) Shape() []int   { return cloneShape(t.shape) }
func (t *StringTensor) Size() int      { return len(t.data) }
func (t *StringTensor) Data() []string { return t.data }

func (t *StringTensor) View(i int) Tensor {
	sub := len(t.data) / t.shape[0]
	return &StringTensor{data: t.data[i*sub : (i+1)*sub], shape: t.shape[1:]}
}

func (t *StringTensor) Clone() Tensor {
	data := make([]string, len(t.data))
	copy(data, t.data)
	return &StringTensor{data: data, shape: cloneShape(t.shape)}
}

func (t *StringTensor) At(idx ...int) string     { return t.data[flatIndex(t.shape, idx)] }
func (t *StringTensor) Set(v string, idx ...int) { t.data[flatIndex(t.shape, idx)] = v }

// Tuple is a fixed-size heterogeneous collection of tensors. It satisfies
// Tensor so that composite nodes and tuple-aware filters can traverse it;
// View(i) is element access.
type Tuple []Tensor

func (tu Tuple) Kind() Kind        { return KindTuple }
func (tu Tuple) Shape() []int      { return []int{len(tu)} }
func (tu Tuple) Size() int         { return len(tu) }
func (tu Tuple) View(i int) Tensor { return tu[i] }

func (tu Tuple) Clone() Tensor {
	out := make(Tuple, len(tu))
	for i, t := range tu {
		out[i] = t.Clone()
	}
	return out
}

func flatIndex(shape, idx []int) int {
	if len(idx) != len(shape) {
		panic(fmt.Sprintf("problemgen: index %v does not match shape %v", idx, shape))
	}
	flat := 0
	for i, d := range shape {
		flat = flat*d + idx[i]
	}
	return flat
}

// Equal compares two tensors element-wise. NaNs compare equal.
func Equal(a, b Tensor) bool {
	if a.Kind() != b.Kind() || !SameShape(a.Shape(), b.Shape()) {
		return false
	}
	switch x := a.(type) {
	case *Float64Tensor:
		y := b.(*Float64Tensor)
		for i := range x.data {
			if x.data[i] != y.data[i] && !(math.IsNaN(x.data[i]) && math.IsNaN(y.data[i])) {
				return false
			}
		}
	case *Int64Tensor:
		y := b.(*Int64Tensor)
		for i := range x.data {
			if x.data[i] != y.data[i] {
				return false
			}
		}
	case *StringTensor:
		y := b.(*StringTensor)
		for i := range x.data {
			if x.data[i] != y.data[i] {
				return false
			}
		}
	case Tuple:
		y := b.(Tuple)
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
	}
	return true
}
