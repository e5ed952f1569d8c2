package noise

import (
	"fmt"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/exp/rand"
)

// Behaviour is a user-supplied corruption function injected through the
// parameter mapping. It receives one element value and the live random
// source and returns the replacement value.
type Behaviour func(v float64, r *rand.Rand) float64

// StrangeBehaviour overwrites each element with the output of a user-defined
// callback, emulating anomalous sensor conditions.
type StrangeBehaviour struct {
	BehaviourKey string

	fn Behaviour
}

func NewStrangeBehaviour(behaviourKey string) *StrangeBehaviour {
	return &StrangeBehaviour{BehaviourKey: behaviourKey}
}

func (f *StrangeBehaviour) Name() string { return "strange_behaviour" }

func (f *StrangeBehaviour) SetParams(p pg.Params) error {
	v, err := p.Value(f.BehaviourKey)
	if err != nil {
		return err
	}
	fn, ok := v.(Behaviour)
	if !ok {
		if plain, okPlain := v.(func(float64, *rand.Rand) float64); okPlain {
			fn = plain
		} else {
			return fmt.Errorf("parameter %q: expected noise.Behaviour, got %T", f.BehaviourKey, v)
		}
	}
	f.fn = fn
	return nil
}

func (f *StrangeBehaviour) Apply(t pg.Tensor, r *rand.Rand, dims pg.Dims) error {
	if x, ok := t.(*pg.Float64Tensor); ok {
		d := x.Data()
		for i := range d {
			d[i] = f.fn(d[i], r)
		}
	}
	return nil
}
