// Package report renders sweep results for terminal consumption.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/runner"
)

// Table renders the result records as an aligned text table: one row per
// record with the scalar error parameters, model identity, model parameters,
// metrics, and any per-iteration error.
func Table(w io.Writer, res *runner.Results) {
	paramKeys := res.ParamKeys()
	metricKeys := res.MetricKeys()

	header := append([]string{}, paramKeys...)
	header = append(header, "model", "model params")
	header = append(header, metricKeys...)
	header = append(header, "error")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	for _, rec := range res.Records {
		row := make([]string, 0, len(header))
		for _, k := range paramKeys {
			row = append(row, formatValue(rec.ErrParams[k]))
		}
		row = append(row, rec.Model, formatParams(rec.ModelParams))
		for _, k := range metricKeys {
			if v, ok := rec.Metrics[k]; ok {
				row = append(row, fmt.Sprintf("%.4g", v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, rec.Err)
		table.Append(row)
	}
	table.Render()
}

// Curve plots one metric against one scalar error parameter for a single
// model as an ASCII chart. Records missing the metric or the parameter are
// skipped; points are sorted by parameter value.
func Curve(res *runner.Results, model, param, metric string, height int) string {
	type point struct{ x, y float64 }
	var pts []point
	for _, rec := range res.Records {
		if rec.Model != model || rec.Err != "" {
			continue
		}
		x, err := rec.ErrParams.Float(param)
		if err != nil {
			continue
		}
		y, ok := rec.Metrics[metric]
		if !ok {
			continue
		}
		pts = append(pts, point{x, y})
	}
	if len(pts) == 0 {
		return ""
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })
	ys := make([]float64, len(pts))
	for i, p := range pts {
		ys[i] = p.y
	}
	caption := fmt.Sprintf("%s: %s vs %s", model, metric, param)
	return asciigraph.Plot(ys, asciigraph.Height(height), asciigraph.Caption(caption))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.4g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatParams(p pg.Params) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%s", k, formatValue(p[k]))
	}
	return out
}
