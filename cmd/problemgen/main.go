package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	glearn "github.com/datamosh/problemgen/adapters/golearn"
	"github.com/datamosh/problemgen/pkg/dataset"
	"github.com/datamosh/problemgen/pkg/io/resultio"
	"github.com/datamosh/problemgen/pkg/io/tensorio"
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/profile"
	"github.com/datamosh/problemgen/pkg/report"
	"github.com/datamosh/problemgen/pkg/runner"
)

var (
	version = "0.1.0-dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to sweep config (JSON, YAML, or TOML)")
	outPath := flag.String("out", "", "Override the output path from the config")
	seed := flag.Uint64("seed", 42, "Base seed for the sweep")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = GOMAXPROCS)")
	doProfile := flag.Bool("profile", false, "Print corruption statistics for the first sweep point")
	flag.Parse()

	if *showVersion {
		fmt.Println("problemgen", version)
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "no config provided; nothing to do. try --config <file> or --version")
		os.Exit(2)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	data, err := loadData(cfg)
	if err != nil {
		fatal(err)
	}

	// Dry run to reject a broken pipeline before the sweep starts. The
	// per-iteration factory rebuilds the tree with a fresh injector and
	// hands back that tree's own injected objects, so no filter instance
	// is ever shared between concurrent iterations.
	if _, err := buildNode(cfg.Pipeline, newInjector()); err != nil {
		fatal(err)
	}
	build := func() (pg.Node, pg.Params) {
		in := newInjector()
		n, err := buildNode(cfg.Pipeline, in)
		if err != nil {
			panic(err) // validated above
		}
		return n, in.fixed
	}

	errParams, err := expandGrid(cfg.Params)
	if err != nil {
		fatal(err)
	}
	if len(errParams) == 0 {
		errParams = []pg.Params{{}}
	}

	models, err := buildModels(cfg.Models)
	if err != nil {
		fatal(err)
	}

	if *doProfile {
		if err := profilePoint(data, build, errParams[0], *seed); err != nil {
			fatal(err)
		}
	}

	res, err := runner.Run(context.Background(), data, build, errParams, models, runner.Options{
		Seed:    *seed,
		Workers: *workers,
	})
	if res == nil && err != nil {
		fatal(err)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	path := cfg.Output.Path
	if *outPath != "" {
		path = *outPath
	}
	if path != "" {
		if err := writeResults(path, res); err != nil {
			fatal(err)
		}
	}
	if cfg.Output.Table || path == "" {
		report.Table(os.Stdout, res)
	}
	if c := cfg.Output.Curve; c != nil {
		h := c.Height
		if h <= 0 {
			h = 10
		}
		if plot := report.Curve(res, c.Model, c.Param, c.Metric, h); plot != "" {
			fmt.Println(plot)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func loadData(cfg *Config) (pg.Tensor, error) {
	ds := cfg.Dataset
	if ds.Path == "" {
		return nil, fmt.Errorf("config has no dataset.path")
	}
	if ds.Tensor {
		return tensorio.ReadFile(ds.Path)
	}
	delim := rune(0)
	if ds.Delimiter != "" {
		delim = rune(ds.Delimiter[0])
	}
	x, y, err := dataset.Load(ds.Path, dataset.Options{
		HasHeader:   ds.HasHeader,
		Delimiter:   delim,
		LabelColumn: ds.Label,
	})
	if err != nil {
		return nil, err
	}
	return pg.Tuple{x, y}, nil
}

func buildModels(cfgs []ModelConfig) ([]runner.ModelSpec, error) {
	specs := make([]runner.ModelSpec, 0, len(cfgs))
	for _, mc := range cfgs {
		var m runner.Model
		switch mc.Name {
		case "knn":
			m = &glearn.KNNModel{TestFraction: mc.TestFraction}
		default:
			return nil, fmt.Errorf("unknown model %q", mc.Name)
		}
		points, err := expandGrid(mc.Params)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", mc.Name, err)
		}
		if len(points) == 0 {
			points = []pg.Params{{}}
		}
		specs = append(specs, runner.ModelSpec{Model: m, Params: points})
	}
	return specs, nil
}

func profilePoint(data pg.Tensor, build runner.PipelineFunc, point pg.Params, seed uint64) error {
	corrupted, err := runner.Corrupt(data, build, point, seed)
	if err != nil {
		return err
	}
	c := profile.NewCollector(5)
	if err := c.Consume("data", data, corrupted); err != nil {
		return err
	}
	fmt.Print(c.ReportText())
	return nil
}

func writeResults(path string, res *runner.Results) error {
	switch strings.ToLower(strings.TrimSuffix(filepath.Ext(path), ".gz")) {
	case ".parquet":
		return resultio.WriteParquet(path, res)
	case ".jsonl", ".gz", "":
		return resultio.WriteJSONL(path, res)
	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Records); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
}
