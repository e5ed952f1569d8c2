package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

const pipelineJSON = `{
	"series": {
		"child": {
			"array": {
				"shape": [4],
				"filters": [
					{"gaussian_noise": {"mean_key": "m", "std_key": "s"}},
					{"apply_with_probability": {
						"filter": {"missing": {"probability_key": "mp"}},
						"probability_key": "ap"
					}}
				]
			}
		}
	}
}`

func TestBuildNodeAndInjectedKeys(t *testing.T) {
	in := newInjector()
	node, err := buildNode(json.RawMessage(pipelineJSON), in)
	if err != nil {
		t.Fatal(err)
	}
	params := pg.Params{"m": 0.0, "s": 1.0, "mp": 0.1, "ap": 0.5}
	params.Merge(in.fixed)
	if err := node.ResolveParams(params); err != nil {
		t.Fatal(err)
	}
	data := pg.NewFloat64Tensor(3, 4)
	if err := node.Process(data, pg.NewRand(1), pg.Dims{}); err != nil {
		t.Fatal(err)
	}
}

func TestRebuildsOwnPrivateInjectedObjects(t *testing.T) {
	a, b := newInjector(), newInjector()
	if _, err := buildNode(json.RawMessage(pipelineJSON), a); err != nil {
		t.Fatal(err)
	}
	if _, err := buildNode(json.RawMessage(pipelineJSON), b); err != nil {
		t.Fatal(err)
	}
	if len(a.fixed) != len(b.fixed) {
		t.Fatalf("key counts differ: %d vs %d", len(a.fixed), len(b.fixed))
	}
	for k, va := range a.fixed {
		vb, ok := b.fixed[k]
		if !ok {
			t.Fatalf("key %q not regenerated", k)
		}
		// each build must own fresh instances; combinators call SetParams
		// on them, and builds run concurrently in a sweep
		if va == vb {
			t.Fatalf("key %q resolves to a shared instance", k)
		}
	}
}

func TestBuildFilterUnknown(t *testing.T) {
	if _, err := buildFilter(json.RawMessage(`{"nope": {}}`), newInjector()); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestRangeSpecForms(t *testing.T) {
	vals, err := RangeSpec{Value: 2.5}.expand()
	if err != nil || len(vals) != 1 {
		t.Fatalf("value form: %v, %v", vals, err)
	}
	vals, err = RangeSpec{Values: []any{1, 2, 3}}.expand()
	if err != nil || len(vals) != 3 {
		t.Fatalf("values form: %v, %v", vals, err)
	}
	start, stop := 0.0, 1.0
	vals, err = RangeSpec{Start: &start, Stop: &stop, Num: 5}.expand()
	if err != nil || len(vals) != 5 {
		t.Fatalf("linspace form: %v, %v", vals, err)
	}
	if _, err := (RangeSpec{}).expand(); err == nil {
		t.Fatal("empty spec should fail")
	}
}

func TestExpandGrid(t *testing.T) {
	points, err := expandGrid(map[string]RangeSpec{
		"p": {Values: []any{0.1, 0.2}},
		"q": {Value: 3.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	for _, p := range points {
		if p["q"] != 3.0 {
			t.Fatalf("point missing fixed axis: %v", p)
		}
	}
}

func TestLoadConfigFormats(t *testing.T) {
	dir := t.TempDir()
	jsonCfg := `{"dataset": {"path": "d.csv"}, "params": {"p": {"value": 1}}}`
	yamlCfg := "dataset:\n  path: d.csv\nparams:\n  p:\n    value: 1\n"
	tomlCfg := "[dataset]\npath = \"d.csv\"\n[params.p]\nvalue = 1\n"
	cases := map[string]string{"c.json": jsonCfg, "c.yaml": yamlCfg, "c.toml": tomlCfg}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if cfg.Dataset.Path != "d.csv" {
			t.Fatalf("%s: dataset path = %q", name, cfg.Dataset.Path)
		}
		if _, ok := cfg.Params["p"]; !ok {
			t.Fatalf("%s: params missing", name)
		}
	}
}
