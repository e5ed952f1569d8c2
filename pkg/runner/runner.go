package runner

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"golang.org/x/sync/errgroup"
)

// Metrics is the flat metric mapping a consumer model returns.
type Metrics map[string]float64

// Model is a downstream consumer of corrupted data. Run must not mutate the
// data: one corrupted tensor is shared by every model evaluation of a sweep
// point.
type Model interface {
	Name() string
	Run(ctx context.Context, data pg.Tensor, params pg.Params) (Metrics, error)
}

// ModelSpec pairs a model with its own parameter grid.
type ModelSpec struct {
	Model  Model
	Params []pg.Params
}

// PipelineFunc constructs a fresh corruption pipeline. The driver calls it
// once per sweep iteration so that no filter state (Gap's Markov chain in
// particular) is shared across concurrent iterations. The returned Params
// carry objects owned by that tree instance (child filters of combinators,
// radius generators, substitution tables); the driver merges them into the
// sweep point before resolution, so concurrent iterations never resolve onto
// a shared filter instance. Return nil when the tree injects nothing.
type PipelineFunc func() (pg.Node, pg.Params)

// Options configures a sweep run.
type Options struct {
	// Seed is the base seed; error point i uses Seed+i, so repeated runs
	// reproduce identical corrupted data.
	Seed uint64
	// Workers bounds concurrent error-point evaluations. Zero or negative
	// means GOMAXPROCS.
	Workers int
}

// Record is one row of the result table: the originating parameter triple
// plus the metrics the model returned. Failed iterations carry the failure
// in Err with the offending parameters preserved.
type Record struct {
	ErrParams   pg.Params
	Model       string
	ModelParams pg.Params
	Metrics     Metrics
	Err         string
}

// Results is the append-only sweep result table.
type Results struct {
	Records []Record
}

// ParamKeys returns the sorted union of error-parameter keys whose values
// are scalars, for tabular presentation.
func (rs *Results) ParamKeys() []string {
	set := map[string]struct{}{}
	for _, rec := range rs.Records {
		for k, v := range rec.ErrParams {
			switch v.(type) {
			case float64, float32, int, int64, string, bool:
				set[k] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// MetricKeys returns the sorted union of metric names.
func (rs *Results) MetricKeys() []string {
	set := map[string]struct{}{}
	for _, rec := range rs.Records {
		for k := range rec.Metrics {
			set[k] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Run evaluates every (error point, model, model params) combination. For
// each error point it builds a fresh pipeline, corrupts a private copy of
// base with a deterministically derived seed, and hands the corrupted data to
// every model evaluation of that point. Error points run concurrently up to
// opts.Workers; iterations are independent, so output is identical regardless
// of scheduling. A per-iteration failure is recorded and the sweep continues;
// Run itself fails only on context cancellation.
func Run(ctx context.Context, base pg.Tensor, build PipelineFunc, errParams []pg.Params, models []ModelSpec, opts Options) (*Results, error) {
	perPoint := make([][]Record, len(errParams))

	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	for i := range errParams {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			perPoint[i] = evalPoint(gctx, base, build, errParams[i], models, opts.Seed+uint64(i))
			return gctx.Err()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res := &Results{}
	for _, recs := range perPoint {
		res.Records = append(res.Records, recs...)
	}
	if err != nil {
		return res, fmt.Errorf("sweep interrupted: %w", err)
	}
	return res, nil
}

// Corrupt runs one sweep point outside a full sweep: it builds a fresh
// pipeline and returns a corrupted copy of base, leaving base intact.
func Corrupt(base pg.Tensor, build PipelineFunc, point pg.Params, seed uint64) (pg.Tensor, error) {
	node, owned := build()
	return pg.ProcessClone(node, base, withOwned(point, owned), pg.NewRand(seed))
}

// withOwned layers a tree's own injected objects over the sweep point. The
// point itself is never mutated: it is shared with the result records.
func withOwned(point, owned pg.Params) pg.Params {
	if len(owned) == 0 {
		return point
	}
	merged := point.Clone()
	merged.Merge(owned)
	return merged
}

func evalPoint(ctx context.Context, base pg.Tensor, build PipelineFunc, errPoint pg.Params, models []ModelSpec, seed uint64) []Record {
	node, owned := build()
	corrupted, err := pg.ProcessClone(node, base, withOwned(errPoint, owned), pg.NewRand(seed))
	if err != nil {
		return []Record{{ErrParams: errPoint, Err: err.Error()}}
	}

	var out []Record
	for _, spec := range models {
		for _, mp := range spec.Params {
			rec := Record{ErrParams: errPoint, Model: spec.Model.Name(), ModelParams: mp}
			metrics, err := spec.Model.Run(ctx, corrupted, mp)
			if err != nil {
				rec.Err = err.Error()
			} else {
				rec.Metrics = metrics
			}
			out = append(out, rec)
		}
	}
	return out
}
