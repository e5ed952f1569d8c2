package problemgen

import (
	"golang.org/x/exp/rand"
)

// Dims is the named-dimension context passed alongside data, for filters
// needing positional awareness beyond the raw tensor (e.g. the "time" index
// supplied by a Series container).
type Dims map[string]int

// Index returns the position recorded under name, or MissingContextError.
func (d Dims) Index(name string) (int, error) {
	v, ok := d[name]
	if !ok {
		return 0, &MissingContextError{Dim: name}
	}
	return v, nil
}

func (d Dims) clone() Dims {
	out := make(Dims, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Filter is an error source attached to an Array node. SetParams resolves the
// filter's parameter keys against the runtime mapping; it runs once per sweep
// point, before any Apply of that traversal, and resets any per-run filter
// state. Apply mutates the tensor in place and must be a pure function of
// (data, random source state, resolved parameters) so that two identically
// seeded runs produce identical output. Filters must not resize or replace
// the tensor; combinator filters operate on private copies of their input.
type Filter interface {
	Name() string
	SetParams(p Params) error
	Apply(t Tensor, r *rand.Rand, dims Dims) error
}
