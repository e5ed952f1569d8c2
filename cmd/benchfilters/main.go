package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/datamosh/problemgen/pkg/filter/combine"
	"github.com/datamosh/problemgen/pkg/filter/missing"
	"github.com/datamosh/problemgen/pkg/filter/noise"
	"github.com/datamosh/problemgen/pkg/filter/sensor"
	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

func main() {
	var (
		rows    = flag.Int("rows", 1_000_000, "elements per tensor")
		reps    = flag.Int("reps", 10, "times to corrupt the tensor")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Uint64("seed", 42, "random seed")
	)
	flag.Parse()

	base := pg.NewFloat64Tensor(*rows)
	d := base.Data()
	for i := range d {
		d[i] = float64(i % 100)
	}

	params := pg.Params{
		"mean": 0.0, "std": 1.0,
		"prob":       0.05,
		"p_break":    0.01,
		"p_recover":  0.3,
		"gap_value":  math.NaN(),
		"apply_prob": 0.5,
	}
	build := func() (pg.Node, pg.Params) {
		node := pg.NewArray(*rows).
			AddFilter(noise.NewGaussian("mean", "std")).
			AddFilter(sensor.NewGap("p_break", "p_recover", "gap_value")).
			AddFilter(combine.NewApplyWithProbability("extra_noise", "apply_prob")).
			AddFilter(missing.NewMissing("prob"))
		return node, pg.Params{"extra_noise": noise.NewGaussian("mean", "std")}
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	for i := 0; i < *reps; i++ {
		node, owned := build()
		point := params.Clone()
		point.Merge(owned)
		if _, err := pg.ProcessClone(node, base, point, pg.NewRand(*seed+uint64(i))); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	total := *rows * *reps
	elemsPerSec := float64(total) / elapsed.Seconds()
	summary := map[string]any{
		"elements":              *rows,
		"reps":                  *reps,
		"elapsed_ms":            elapsed.Milliseconds(),
		"elements_per_sec":      elemsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Elements: %d x %d reps\n", *rows, *reps)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f elements/s\n", elemsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
