package combine

import (
	"fmt"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Difference replaces data with the delta the wrapped filter introduces, i.e.
// Subtraction(filter, Identity).
type Difference struct {
	FilterKey string

	f pg.Filter
}

func NewDifference(filterKey string) *Difference {
	return &Difference{FilterKey: filterKey}
}

func (f *Difference) Name() string { return "difference" }

func (f *Difference) SetParams(p pg.Params) error {
	var err error
	if f.f, err = p.Filter(f.FilterKey); err != nil {
		return err
	}
	return f.f.SetParams(p)
}

func (f *Difference) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	return applyBinary(t, r, dims, f.f, Identity{},
		func(a, b float64) float64 { return a - b },
		func(a, b int64) int64 { return a - b })
}

// ApplyWithProbability runs the wrapped filter with the given probability.
// Exactly one uniform draw decides; when the filter is skipped no further
// draws are consumed, so filters chained after this one will not stay
// synchronized across runs whose probability outcomes differ. That is the
// documented contract, not a defect.
type ApplyWithProbability struct {
	FilterKey      string
	ProbabilityKey string

	f    pg.Filter
	prob float64
}

func NewApplyWithProbability(filterKey, probabilityKey string) *ApplyWithProbability {
	return &ApplyWithProbability{FilterKey: filterKey, ProbabilityKey: probabilityKey}
}

func (f *ApplyWithProbability) Name() string { return "apply_with_probability" }

func (f *ApplyWithProbability) SetParams(p pg.Params) error {
	var err error
	if f.f, err = p.Filter(f.FilterKey); err != nil {
		return err
	}
	if err = f.f.SetParams(p); err != nil {
		return err
	}
	f.prob, err = p.Float(f.ProbabilityKey)
	return err
}

func (f *ApplyWithProbability) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	if r.Float64() < f.prob {
		return f.f.Apply(t, r, dims)
	}
	return nil
}

// ModifyAsDataType casts a copy of the data to another element type, applies
// the wrapped filter to the copy, casts back, and writes the result
// element-wise into the original tensor. Used when a filter's arithmetic must
// happen in a wider or narrower type than the container's storage type.
type ModifyAsDataType struct {
	DTypeKey  string
	FilterKey string

	dtype string
	f     pg.Filter
}

func NewModifyAsDataType(dtypeKey, filterKey string) *ModifyAsDataType {
	return &ModifyAsDataType{DTypeKey: dtypeKey, FilterKey: filterKey}
}

func (f *ModifyAsDataType) Name() string { return "modify_as_data_type" }

func (f *ModifyAsDataType) SetParams(p pg.Params) error {
	var err error
	if f.dtype, err = p.String(f.DTypeKey); err != nil {
		return err
	}
	if f.f, err = p.Filter(f.FilterKey); err != nil {
		return err
	}
	return f.f.SetParams(p)
}

func (f *ModifyAsDataType) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	work, err := castTensor(t, f.dtype)
	if err != nil {
		return err
	}
	if err := f.f.Apply(work, r, dims); err != nil {
		return err
	}
	return castBack(t, work)
}

func castTensor(t pg.Tensor, dtype string) (pg.Tensor, error) {
	switch dtype {
	case "float64":
		switch x := t.(type) {
		case *pg.Float64Tensor:
			return x.Clone(), nil
		case *pg.Int64Tensor:
			out := pg.NewFloat64Tensor(x.Shape()...)
			d, s := out.Data(), x.Data()
			for i := range s {
				d[i] = float64(s[i])
			}
			return out, nil
		}
	case "int64":
		switch x := t.(type) {
		case *pg.Int64Tensor:
			return x.Clone(), nil
		case *pg.Float64Tensor:
			out := pg.NewInt64Tensor(x.Shape()...)
			d, s := out.Data(), x.Data()
			for i := range s {
				d[i] = int64(s[i])
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("modify_as_data_type: cannot cast %s tensor to %q", t.Kind(), dtype)
}

func castBack(dst, src pg.Tensor) error {
	switch d := dst.(type) {
	case *pg.Float64Tensor:
		dd := d.Data()
		switch s := src.(type) {
		case *pg.Float64Tensor:
			copy(dd, s.Data())
		case *pg.Int64Tensor:
			sd := s.Data()
			for i := range dd {
				dd[i] = float64(sd[i])
			}
		}
	case *pg.Int64Tensor:
		dd := d.Data()
		switch s := src.(type) {
		case *pg.Int64Tensor:
			copy(dd, s.Data())
		case *pg.Float64Tensor:
			sd := s.Data()
			for i := range dd {
				dd[i] = int64(sd[i])
			}
		}
	}
	return nil
}

// ApplyToTuple forwards the wrapped filter to one element of a Tuple. Unlike
// the other combinators its child is fixed at construction: the tuple slot a
// filter touches is pipeline structure, not a sweepable parameter.
type ApplyToTuple struct {
	Filter pg.Filter
	Index  int
}

func NewApplyToTuple(f pg.Filter, index int) *ApplyToTuple {
	return &ApplyToTuple{Filter: f, Index: index}
}

func (f *ApplyToTuple) Name() string { return "apply_to_tuple" }

func (f *ApplyToTuple) SetParams(p pg.Params) error { return f.Filter.SetParams(p) }

func (f *ApplyToTuple) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	tu, ok := t.(pg.Tuple)
	if !ok {
		return fmt.Errorf("apply_to_tuple: expected Tuple, got %s", t.Kind())
	}
	return f.Filter.Apply(tu[f.Index], r, dims)
}
