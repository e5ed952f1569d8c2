package combine

import (
	"math"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

type floatOp func(a, b float64) float64
type intOp func(a, b int64) int64

// Binary applies two child filters to independent copies of the input, then
// combines the copies element-wise with a fixed operator into the original
// tensor. The copies are mandatory: the two branches would otherwise stomp on
// each other's in-place mutations. Filter A always runs before filter B, so
// the random-draw order is stable.
type Binary struct {
	FilterAKey string
	FilterBKey string

	name string
	a, b pg.Filter
	fop  floatOp
	iop  intOp
}

func (f *Binary) Name() string { return f.name }

func (f *Binary) SetParams(p pg.Params) error {
	var err error
	if f.a, err = p.Filter(f.FilterAKey); err != nil {
		return err
	}
	if f.b, err = p.Filter(f.FilterBKey); err != nil {
		return err
	}
	if err = f.a.SetParams(p); err != nil {
		return err
	}
	return f.b.SetParams(p)
}

func (f *Binary) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	return applyBinary(t, r, dims, f.a, f.b, f.fop, f.iop)
}

func applyBinary(t pg.Tensor, r *rand.Rand, dims pg.Dims, a, b pg.Filter, fop floatOp, iop intOp) error {
	ca := t.Clone()
	cb := t.Clone()
	if err := a.Apply(ca, r, dims); err != nil {
		return err
	}
	if err := b.Apply(cb, r, dims); err != nil {
		return err
	}
	switch x := t.(type) {
	case *pg.Float64Tensor:
		if fop == nil {
			return nil
		}
		da, db, d := ca.(*pg.Float64Tensor).Data(), cb.(*pg.Float64Tensor).Data(), x.Data()
		for i := range d {
			d[i] = fop(da[i], db[i])
		}
	case *pg.Int64Tensor:
		if iop == nil {
			return nil
		}
		da, db, d := ca.(*pg.Int64Tensor).Data(), cb.(*pg.Int64Tensor).Data(), x.Data()
		for i := range d {
			d[i] = iop(da[i], db[i])
		}
	}
	return nil
}

func newBinary(name string, aKey, bKey string, fop floatOp, iop intOp) *Binary {
	return &Binary{name: name, FilterAKey: aKey, FilterBKey: bKey, fop: fop, iop: iop}
}

func NewAddition(aKey, bKey string) *Binary {
	return newBinary("addition", aKey, bKey,
		func(a, b float64) float64 { return a + b },
		func(a, b int64) int64 { return a + b })
}

func NewSubtraction(aKey, bKey string) *Binary {
	return newBinary("subtraction", aKey, bKey,
		func(a, b float64) float64 { return a - b },
		func(a, b int64) int64 { return a - b })
}

func NewMultiplication(aKey, bKey string) *Binary {
	return newBinary("multiplication", aKey, bKey,
		func(a, b float64) float64 { return a * b },
		func(a, b int64) int64 { return a * b })
}

func NewDivision(aKey, bKey string) *Binary {
	return newBinary("division", aKey, bKey,
		func(a, b float64) float64 { return a / b },
		func(a, b int64) int64 { return a / b })
}

func NewIntegerDivision(aKey, bKey string) *Binary {
	return newBinary("integer_division", aKey, bKey,
		func(a, b float64) float64 { return math.Floor(a / b) },
		floorDiv)
}

func NewModulo(aKey, bKey string) *Binary {
	return newBinary("modulo", aKey, bKey, floorModFloat, floorMod)
}

func NewAnd(aKey, bKey string) *Binary {
	return newBinary("and", aKey, bKey, nil,
		func(a, b int64) int64 { return a & b })
}

func NewOr(aKey, bKey string) *Binary {
	return newBinary("or", aKey, bKey, nil,
		func(a, b int64) int64 { return a | b })
}

func NewXor(aKey, bKey string) *Binary {
	return newBinary("xor", aKey, bKey, nil,
		func(a, b int64) int64 { return a ^ b })
}

func NewMax(aKey, bKey string) *Binary {
	return newBinary("max", aKey, bKey, math.Max,
		func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		})
}

func NewMin(aKey, bKey string) *Binary {
	return newBinary("min", aKey, bKey, math.Min,
		func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		})
}

// floorDiv rounds the quotient toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod takes the sign of the divisor.
func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (a < 0) != (b < 0) {
		m += b
	}
	return m
}

func floorModFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (a < 0) != (b < 0) {
		m += b
	}
	return m
}
