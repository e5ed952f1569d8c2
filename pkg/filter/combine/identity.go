// Package combine provides combinator filters: identities, constants,
// element-wise binary combinations of two child filters, probabilistic
// wrappers, and data-type adapters. Child filters are picked up from the
// shared parameter mapping by key, the same indirection primitive filters use
// for scalar parameters.
package combine

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Identity leaves data unchanged and consumes no draws.
type Identity struct{}

func NewIdentity() Identity { return Identity{} }

func (Identity) Name() string                               { return "identity" }
func (Identity) SetParams(pg.Params) error                  { return nil }
func (Identity) Apply(pg.Tensor, *rand.Rand, pg.Dims) error { return nil }

// Constant fills the tensor with a single value.
type Constant struct {
	ValueKey string

	value float64
}

func NewConstant(valueKey string) *Constant {
	return &Constant{ValueKey: valueKey}
}

func (f *Constant) Name() string { return "constant" }

func (f *Constant) SetParams(p pg.Params) error {
	var err error
	f.value, err = p.Float(f.ValueKey)
	return err
}

func (f *Constant) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	switch x := t.(type) {
	case *pg.Float64Tensor:
		x.Fill(f.value)
	case *pg.Int64Tensor:
		x.Fill(int64(f.value))
	}
	return nil
}
