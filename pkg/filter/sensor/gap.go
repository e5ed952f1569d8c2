// Package sensor provides filters emulating malfunctioning sensors.
package sensor

import (
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Gap simulates sensor failure as a two-state Markov chain with states
// working and broken. The chain is walked once per element in flat row-major
// order; while broken, elements are overwritten with the missing value.
//
// Gap is the one filter whose behavior depends on invocation history: the
// chain state persists across Apply calls on the same instance, so gaps can
// span the step boundaries of a Series traversal. SetParams resets the state
// to working, which makes each sweep iteration start from a clean chain.
type Gap struct {
	ProbBreakKey    string
	ProbRecoverKey  string
	MissingValueKey string

	probBreak   float64
	probRecover float64
	missing     float64
	working     bool
}

func NewGap(probBreakKey, probRecoverKey, missingValueKey string) *Gap {
	return &Gap{
		ProbBreakKey:    probBreakKey,
		ProbRecoverKey:  probRecoverKey,
		MissingValueKey: missingValueKey,
		working:         true,
	}
}

func (f *Gap) Name() string { return "gap" }

func (f *Gap) SetParams(p pg.Params) error {
	var err error
	if f.probBreak, err = p.Float(f.ProbBreakKey); err != nil {
		return err
	}
	if f.probRecover, err = p.Float(f.ProbRecoverKey); err != nil {
		return err
	}
	if f.missing, err = p.Float(f.MissingValueKey); err != nil {
		return err
	}
	f.working = true
	return nil
}

func (f *Gap) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	x, ok := t.(*pg.Float64Tensor)
	if !ok {
		return nil
	}
	d := x.Data()
	for i := range d {
		// One transition draw per element, before the element is written.
		if f.working {
			if r.Float64() < f.probBreak {
				f.working = false
			}
		} else {
			if r.Float64() < f.probRecover {
				f.working = true
			}
		}
		if !f.working {
			d[i] = f.missing
		}
	}
	return nil
}
