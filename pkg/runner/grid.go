// Package runner cross-products an error-parameter grid against downstream
// consumer models, evaluating the corruption pipeline once per sweep point
// and collecting metrics into an append-only result table.
package runner

import (
	"sort"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 1 {
		return []float64{start}
	}
	out := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Expand enumerates the Cartesian product of a per-key value grid as a list
// of parameter mappings. Keys are visited in sorted order so enumeration is
// deterministic; the last key varies fastest.
func Expand(grid map[string][]any) []pg.Params {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []pg.Params{{}}
	for _, k := range keys {
		vals := grid[k]
		next := make([]pg.Params, 0, len(out)*len(vals))
		for _, base := range out {
			for _, v := range vals {
				p := base.Clone()
				p[k] = v
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// Floats converts a float slice into grid values.
func Floats(vals []float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
