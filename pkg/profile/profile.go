// Package profile summarizes how a corruption pipeline changed a tensor.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

type NumStats struct {
	Count int     `json:"count"`
	NaNs  int     `json:"nans"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

type StringStats struct {
	Count int            `json:"count"`
	Freqs map[string]int `json:"top,omitempty"`
}

type TensorProfile struct {
	Kind    string       `json:"kind"`
	Shape   []int        `json:"shape"`
	Changed int          `json:"changed"`
	Num     *NumStats    `json:"num,omitempty"`
	Str     *StringStats `json:"str,omitempty"`
}

// Collector accumulates per-tensor corruption statistics. Feed it the clean
// and corrupted tensors for each sweep point of interest, then render a text
// or JSON report.
type Collector struct {
	profiles []TensorProfile
	labels   []string
	topK     int
}

func NewCollector(topK int) *Collector {
	return &Collector{topK: topK}
}

// Consume records the difference between a clean tensor and its corrupted
// counterpart. The two tensors must share kind and shape; Changed counts
// element positions whose value differs (a NaN replacing a number counts as
// changed, NaN staying NaN does not). Tuples are profiled element by element.
func (c *Collector) Consume(label string, clean, corrupted pg.Tensor) error {
	if clean.Kind() != corrupted.Kind() || !pg.SameShape(clean.Shape(), corrupted.Shape()) {
		return &pg.ShapeMismatchError{Want: clean.Shape(), Got: corrupted.Shape()}
	}
	p := TensorProfile{Kind: kindString(corrupted.Kind()), Shape: corrupted.Shape()}
	switch ct := corrupted.(type) {
	case *pg.Float64Tensor:
		cl := clean.(*pg.Float64Tensor)
		p.Num = numStats(ct.Data())
		p.Changed = changedFloats(cl.Data(), ct.Data())
	case *pg.Int64Tensor:
		cl := clean.(*pg.Int64Tensor)
		d := ct.Data()
		fs := make([]float64, len(d))
		for i, v := range d {
			fs[i] = float64(v)
		}
		p.Num = numStats(fs)
		for i, v := range cl.Data() {
			if v != d[i] {
				p.Changed++
			}
		}
	case *pg.StringTensor:
		cl := clean.(*pg.StringTensor)
		d := ct.Data()
		st := &StringStats{Count: len(d)}
		if c.topK > 0 {
			st.Freqs = make(map[string]int)
			for _, v := range d {
				st.Freqs[v]++
			}
		}
		p.Str = st
		for i, v := range cl.Data() {
			if v != d[i] {
				p.Changed++
			}
		}
	case pg.Tuple:
		cl := clean.(pg.Tuple)
		for i := range ct {
			if err := c.Consume(fmt.Sprintf("%s[%d]", label, i), cl[i], ct[i]); err != nil {
				return err
			}
		}
		return nil
	}
	c.profiles = append(c.profiles, p)
	c.labels = append(c.labels, label)
	return nil
}

func numStats(d []float64) *NumStats {
	s := &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range d {
		if math.IsNaN(v) {
			s.NaNs++
			continue
		}
		s.Count++
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	if s.Count > 0 {
		s.Mean = sum / float64(s.Count)
		ss := 0.0
		for _, v := range d {
			if math.IsNaN(v) {
				continue
			}
			dv := v - s.Mean
			ss += dv * dv
		}
		s.Std = math.Sqrt(ss / float64(s.Count))
	}
	return s
}

func changedFloats(a, b []float64) int {
	n := 0
	for i, v := range a {
		w := b[i]
		if math.IsNaN(v) && math.IsNaN(w) {
			continue
		}
		if v != w || math.IsNaN(v) != math.IsNaN(w) {
			n++
		}
	}
	return n
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Corruption Summary\n")
	for i, p := range c.profiles {
		b.WriteString(fmt.Sprintf("- %s (%s %v): changed=%d ", c.labels[i], p.Kind, p.Shape, p.Changed))
		switch {
		case p.Num != nil:
			b.WriteString(fmt.Sprintf("count=%d nans=%d min=%.6g max=%.6g mean=%.6g std=%.6g\n",
				p.Num.Count, p.Num.NaNs, p.Num.Min, p.Num.Max, p.Num.Mean, p.Num.Std))
		case p.Str != nil:
			b.WriteString(fmt.Sprintf("count=%d\n", p.Str.Count))
			if len(p.Str.Freqs) > 0 {
				type kv struct {
					k string
					v int
				}
				arr := make([]kv, 0, len(p.Str.Freqs))
				for k, v := range p.Str.Freqs {
					arr = append(arr, kv{k, v})
				}
				sort.Slice(arr, func(i, j int) bool {
					if arr[i].v != arr[j].v {
						return arr[i].v > arr[j].v
					}
					return arr[i].k < arr[j].k
				})
				n := c.topK
				if n > len(arr) {
					n = len(arr)
				}
				for i := 0; i < n; i++ {
					b.WriteString(fmt.Sprintf("    %q: %d\n", arr[i].k, arr[i].v))
				}
			}
		default:
			b.WriteString("\n")
		}
	}
	return b.String()
}

type JSONReport struct {
	Tensors []JSONTensor `json:"tensors"`
}

type JSONTensor struct {
	Label string `json:"label"`
	TensorProfile
}

func (c *Collector) ReportJSON() JSONReport {
	out := JSONReport{Tensors: make([]JSONTensor, 0, len(c.profiles))}
	for i, p := range c.profiles {
		out.Tensors = append(out.Tensors, JSONTensor{Label: c.labels[i], TensorProfile: p})
	}
	return out
}

func kindString(k pg.Kind) string {
	switch k {
	case pg.KindFloat64:
		return "float64"
	case pg.KindInt64:
		return "int64"
	case pg.KindString:
		return "string"
	case pg.KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}
