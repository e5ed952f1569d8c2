package problemgen

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Node is a point in the data-model tree. ResolveParams binds every attached
// filter's parameter keys to concrete values; it runs once per sweep point.
// Process then propagates the data object through the tree, mutating it in
// place. Node structure is fixed once processing starts: adding filters or
// children mid-run is undefined behavior.
type Node interface {
	ResolveParams(p Params) error
	Process(data Tensor, r *rand.Rand, dims Dims) error
}

// Array is a leaf node: a declared shape plus an ordered filter chain.
// Filters run in append order against the live tensor.
type Array struct {
	shape   []int
	filters []Filter
}

func NewArray(shape ...int) *Array {
	return &Array{shape: cloneShape(shape)}
}

// AddFilter appends a filter to the chain and returns the node for chaining.
func (a *Array) AddFilter(f Filter) *Array {
	a.filters = append(a.filters, f)
	return a
}

func (a *Array) ResolveParams(p Params) error {
	for _, f := range a.filters {
		if err := f.SetParams(p); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return nil
}

func (a *Array) Process(data Tensor, r *rand.Rand, dims Dims) error {
	if !SameShape(data.Shape(), a.shape) {
		return &ShapeMismatchError{Want: cloneShape(a.shape), Got: data.Shape()}
	}
	for _, f := range a.filters {
		if err := f.Apply(data, r, dims); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return nil
}

// Series iterates the leading axis of its input, exposing the position under
// a named dimension (default "time") and recursing into the child with the
// corresponding sub-tensor view. Positions are visited in ascending order so
// that history-bearing filters observe a stable traversal.
type Series struct {
	child Node
	dim   string
}

func NewSeries(child Node) *Series {
	return &Series{child: child, dim: "time"}
}

// NewNamedSeries names the axis the child sees in its dimension context.
func NewNamedSeries(child Node, dim string) *Series {
	return &Series{child: child, dim: dim}
}

func (s *Series) ResolveParams(p Params) error { return s.child.ResolveParams(p) }

func (s *Series) Process(data Tensor, r *rand.Rand, dims Dims) error {
	shape := data.Shape()
	if len(shape) == 0 {
		return fmt.Errorf("series: data has no leading axis")
	}
	for i := 0; i < shape[0]; i++ {
		d := dims.clone()
		d[s.dim] = i
		if err := s.child.Process(data.View(i), r, d); err != nil {
			return fmt.Errorf("%s=%d: %w", s.dim, i, err)
		}
	}
	return nil
}

// TupleSeries dispatches element i of an input Tuple to child i,
// independently. Children are visited in declaration order.
type TupleSeries struct {
	children []Node
}

func NewTupleSeries(children ...Node) *TupleSeries {
	return &TupleSeries{children: children}
}

func (ts *TupleSeries) ResolveParams(p Params) error {
	for _, c := range ts.children {
		if err := c.ResolveParams(p); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TupleSeries) Process(data Tensor, r *rand.Rand, dims Dims) error {
	tu, ok := data.(Tuple)
	if !ok {
		return fmt.Errorf("tuple series: expected Tuple, got %s", data.Kind())
	}
	if len(tu) != len(ts.children) {
		return fmt.Errorf("tuple series: %d children, tuple has %d elements", len(ts.children), len(tu))
	}
	for i, c := range ts.children {
		if err := c.Process(tu[i], r, dims); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Process resolves params against root and runs one traversal over data,
// mutating it in place.
func Process(root Node, data Tensor, p Params, r *rand.Rand) error {
	if err := root.ResolveParams(p); err != nil {
		return err
	}
	return root.Process(data, r, Dims{})
}

// ProcessClone runs one traversal against a private copy of data, leaving
// the input intact, and returns the corrupted copy.
func ProcessClone(root Node, data Tensor, p Params, r *rand.Rand) (Tensor, error) {
	out := data.Clone()
	if err := Process(root, out, p, r); err != nil {
		return nil, err
	}
	return out, nil
}
