package resultio

import (
	"os"
	"path/filepath"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/runner"
)

func sampleResults() *runner.Results {
	return &runner.Results{Records: []runner.Record{
		{
			ErrParams:   pg.Params{"std": 1.5, "gen": struct{}{}},
			Model:       "knn",
			ModelParams: pg.Params{"k": 3},
			Metrics:     runner.Metrics{"accuracy": 0.9},
		},
		{
			ErrParams:   pg.Params{"std": 3.0},
			Model:       "knn",
			ModelParams: pg.Params{"k": 3},
			Err:         "model exploded",
		},
	}}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	if err := WriteJSONL(path, sampleResults()); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if v, err := rows[0].Float("err_std"); err != nil || v != 1.5 {
		t.Fatalf("err_std = %v, %v", v, err)
	}
	if v, err := rows[0].Float("metric_accuracy"); err != nil || v != 0.9 {
		t.Fatalf("metric_accuracy = %v, %v", v, err)
	}
	if v, err := rows[0].Float("param_k"); err != nil || v != 3 {
		t.Fatalf("param_k = %v, %v", v, err)
	}
	if _, ok := rows[0]["gen"]; ok {
		t.Fatal("non-scalar parameter leaked into the output")
	}
	if s, err := rows[1].String("error"); err != nil || s != "model exploded" {
		t.Fatalf("error = %q, %v", s, err)
	}
	if _, ok := rows[1]["metric_accuracy"]; ok {
		t.Fatal("failed record should have no metrics")
	}
}

func TestJSONLGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.gz")
	if err := WriteJSONL(path, sampleResults()); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestParquetWriteProducesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := WriteParquet(path, sampleResults()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("parquet file is empty")
	}
}
