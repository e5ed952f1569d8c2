package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/datamosh/problemgen/pkg/filter/combine"
	imagef "github.com/datamosh/problemgen/pkg/filter/image"
	"github.com/datamosh/problemgen/pkg/filter/missing"
	"github.com/datamosh/problemgen/pkg/filter/noise"
	"github.com/datamosh/problemgen/pkg/filter/outliers"
	"github.com/datamosh/problemgen/pkg/filter/sensor"
	"github.com/datamosh/problemgen/pkg/filter/text"
	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/radius"
	"github.com/datamosh/problemgen/pkg/runner"
)

type Config struct {
	Dataset struct {
		Path      string `json:"path"`
		Tensor    bool   `json:"tensor"` // path is a binary tensor, not CSV
		HasHeader bool   `json:"has_header"`
		Delimiter string `json:"delimiter"`
		Label     string `json:"label"`
	} `json:"dataset"`
	Pipeline json.RawMessage      `json:"pipeline"`
	Params   map[string]RangeSpec `json:"params"`
	Models   []ModelConfig        `json:"models"`
	Output   struct {
		Path  string `json:"path"`
		Table bool   `json:"table"`
		Curve *struct {
			Model  string `json:"model"`
			Param  string `json:"param"`
			Metric string `json:"metric"`
			Height int    `json:"height"`
		} `json:"curve"`
	} `json:"output"`
}

type ModelConfig struct {
	Name         string               `json:"name"`
	TestFraction float64              `json:"test_fraction"`
	Params       map[string]RangeSpec `json:"params"`
}

// RangeSpec is one axis of a sweep: a fixed value, an explicit list, or a
// linspace. Exactly one form should be set.
type RangeSpec struct {
	Value  any      `json:"value"`
	Values []any    `json:"values"`
	Start  *float64 `json:"start"`
	Stop   *float64 `json:"stop"`
	Num    int      `json:"num"`
}

func (r RangeSpec) expand() ([]any, error) {
	switch {
	case len(r.Values) > 0:
		return r.Values, nil
	case r.Start != nil && r.Stop != nil:
		if r.Num < 2 {
			return nil, fmt.Errorf("range needs num >= 2, got %d", r.Num)
		}
		return runner.Floats(runner.Linspace(*r.Start, *r.Stop, r.Num)), nil
	case r.Value != nil:
		return []any{r.Value}, nil
	}
	return nil, fmt.Errorf("empty range spec")
}

// LoadConfig reads a sweep config, decoding YAML or TOML by extension and
// JSON otherwise.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// normalize through JSON so Pipeline stays a RawMessage
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		if b, err = json.Marshal(v); err != nil {
			return nil, err
		}
	case ".toml":
		var v any
		if err := toml.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		if b, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// injector collects filter objects, radius generators, and lookup tables
// built from the config. They cannot travel through the sweep grid as JSON
// scalars, so each one gets a synthetic key and is merged into every sweep
// point as a fixed parameter.
type injector struct {
	n     int
	fixed pg.Params
}

func newInjector() *injector { return &injector{fixed: pg.Params{}} }

func (in *injector) put(prefix string, v any) string {
	key := fmt.Sprintf("__%s%d", prefix, in.n)
	in.n++
	in.fixed[key] = v
	return key
}

func singleKey(raw json.RawMessage) (string, json.RawMessage, error) {
	var step map[string]json.RawMessage
	if err := json.Unmarshal(raw, &step); err != nil {
		return "", nil, err
	}
	if len(step) != 1 {
		return "", nil, fmt.Errorf("want exactly one key per step, got %d", len(step))
	}
	for k, v := range step {
		return k, v, nil
	}
	return "", nil, fmt.Errorf("empty step")
}

type radiusSpec struct {
	Gaussian *struct {
		Mean float64 `json:"mean"`
		Std  float64 `json:"std"`
	} `json:"gaussian"`
	Table map[string]float64 `json:"table"`
	Fixed *int               `json:"fixed"`
}

func buildRadius(raw json.RawMessage) (radius.Generator, error) {
	var s radiusSpec
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	switch {
	case s.Gaussian != nil:
		return radius.Gaussian{Mean: s.Gaussian.Mean, Std: s.Gaussian.Std}, nil
	case len(s.Table) > 0:
		maxR := 0
		parsed := map[int]float64{}
		for k, v := range s.Table {
			var r int
			if _, err := fmt.Sscanf(k, "%d", &r); err != nil {
				return nil, fmt.Errorf("radius table key %q: %w", k, err)
			}
			parsed[r] = v
			if r > maxR {
				maxR = r
			}
		}
		probs := make([]float64, maxR+1)
		for r, v := range parsed {
			probs[r] = v
		}
		return radius.ProbabilityTable{Probs: probs}, nil
	case s.Fixed != nil:
		return radius.Fixed{Radius: *s.Fixed}, nil
	}
	return nil, fmt.Errorf("empty radius generator spec")
}

type binarySpec struct {
	A json.RawMessage `json:"a"`
	B json.RawMessage `json:"b"`
}

func buildBinary(v json.RawMessage, in *injector, ctor func(a, b string) *combine.Binary) (pg.Filter, error) {
	var s binarySpec
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	fa, err := buildFilter(s.A, in)
	if err != nil {
		return nil, err
	}
	fb, err := buildFilter(s.B, in)
	if err != nil {
		return nil, err
	}
	return ctor(in.put("f", fa), in.put("f", fb)), nil
}

func buildFilter(raw json.RawMessage, in *injector) (pg.Filter, error) {
	kind, v, err := singleKey(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "gaussian_noise":
		var s struct {
			MeanKey string `json:"mean_key"`
			StdKey  string `json:"std_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return noise.NewGaussian(s.MeanKey, s.StdKey), nil
	case "gaussian_noise_time_dependent":
		var s struct {
			MeanKey         string `json:"mean_key"`
			StdKey          string `json:"std_key"`
			MeanIncreaseKey string `json:"mean_increase_key"`
			StdIncreaseKey  string `json:"std_increase_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return noise.NewGaussianTimeDependent(s.MeanKey, s.StdKey, s.MeanIncreaseKey, s.StdIncreaseKey), nil
	case "missing":
		var s struct {
			ProbabilityKey string `json:"probability_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return missing.NewMissing(s.ProbabilityKey), nil
	case "missing_area":
		var s struct {
			ProbabilityKey  string          `json:"probability_key"`
			MissingValueKey string          `json:"missing_value_key"`
			Radius          json.RawMessage `json:"radius"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		gen, err := buildRadius(s.Radius)
		if err != nil {
			return nil, err
		}
		return missing.NewArea(s.ProbabilityKey, in.put("radius", gen), s.MissingValueKey), nil
	case "gap":
		var s struct {
			ProbBreakKey    string `json:"prob_break_key"`
			ProbRecoverKey  string `json:"prob_recover_key"`
			MissingValueKey string `json:"missing_value_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return sensor.NewGap(s.ProbBreakKey, s.ProbRecoverKey, s.MissingValueKey), nil
	case "sensor_drift":
		var s struct {
			MagnitudeKey string `json:"magnitude_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return sensor.NewDrift(s.MagnitudeKey), nil
	case "clip":
		var s struct {
			MinKey string `json:"min_key"`
			MaxKey string `json:"max_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return outliers.NewClip(s.MinKey, s.MaxKey), nil
	case "uppercase":
		var s struct {
			ProbabilityKey string `json:"probability_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return text.NewUppercase(s.ProbabilityKey), nil
	case "ocr_error":
		var s struct {
			ProbabilityKey string `json:"probability_key"`
			Substitutions  map[string]struct {
				Chars []string  `json:"chars"`
				Probs []float64 `json:"probs"`
			} `json:"substitutions"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		subs := text.Substitutions{}
		for ch, r := range s.Substitutions {
			subs[ch] = text.Replacement{Chars: r.Chars, Probs: r.Probs}
		}
		return text.NewOCRError(in.put("subs", subs), s.ProbabilityKey), nil
	case "stain_area":
		var s struct {
			ProbabilityKey            string          `json:"probability_key"`
			TransparencyPercentageKey string          `json:"transparency_percentage_key"`
			Radius                    json.RawMessage `json:"radius"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		gen, err := buildRadius(s.Radius)
		if err != nil {
			return nil, err
		}
		return imagef.NewStain(s.ProbabilityKey, in.put("radius", gen), s.TransparencyPercentageKey), nil
	case "rain":
		var s struct {
			ProbabilityKey string `json:"probability_key"`
			RangeKey       string `json:"range_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return imagef.NewRain(s.ProbabilityKey, s.RangeKey), nil
	case "snow":
		var s struct {
			SnowflakeProbabilityKey string `json:"snowflake_probability_key"`
			SnowflakeAlphaKey       string `json:"snowflake_alpha_key"`
			SnowstormAlphaKey       string `json:"snowstorm_alpha_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return imagef.NewSnow(s.SnowflakeProbabilityKey, s.SnowflakeAlphaKey, s.SnowstormAlphaKey), nil
	case "lens_flare":
		return imagef.NewLensFlare(), nil
	case "blur_gaussian":
		var s struct {
			StdKey string `json:"std_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return imagef.NewGaussianBlur(s.StdKey), nil
	case "blur":
		var s struct {
			RepeatsKey string `json:"repeats_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return imagef.NewBlur(s.RepeatsKey), nil
	case "jpeg_compression":
		var s struct {
			QualityKey string `json:"quality_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return imagef.NewCompression(s.QualityKey), nil
	case "identity":
		return combine.Identity{}, nil
	case "constant":
		var s struct {
			ValueKey string `json:"value_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return combine.NewConstant(s.ValueKey), nil
	case "addition":
		return buildBinary(v, in, combine.NewAddition)
	case "subtraction":
		return buildBinary(v, in, combine.NewSubtraction)
	case "multiplication":
		return buildBinary(v, in, combine.NewMultiplication)
	case "division":
		return buildBinary(v, in, combine.NewDivision)
	case "integer_division":
		return buildBinary(v, in, combine.NewIntegerDivision)
	case "modulo":
		return buildBinary(v, in, combine.NewModulo)
	case "and":
		return buildBinary(v, in, combine.NewAnd)
	case "or":
		return buildBinary(v, in, combine.NewOr)
	case "xor":
		return buildBinary(v, in, combine.NewXor)
	case "min":
		return buildBinary(v, in, combine.NewMin)
	case "max":
		return buildBinary(v, in, combine.NewMax)
	case "difference":
		var s struct {
			Filter json.RawMessage `json:"filter"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		f, err := buildFilter(s.Filter, in)
		if err != nil {
			return nil, err
		}
		return combine.NewDifference(in.put("f", f)), nil
	case "apply_with_probability":
		var s struct {
			Filter         json.RawMessage `json:"filter"`
			ProbabilityKey string          `json:"probability_key"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		f, err := buildFilter(s.Filter, in)
		if err != nil {
			return nil, err
		}
		return combine.NewApplyWithProbability(in.put("f", f), s.ProbabilityKey), nil
	case "modify_as_datatype":
		var s struct {
			DTypeKey string          `json:"dtype_key"`
			Filter   json.RawMessage `json:"filter"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		f, err := buildFilter(s.Filter, in)
		if err != nil {
			return nil, err
		}
		return combine.NewModifyAsDataType(s.DTypeKey, in.put("f", f)), nil
	case "apply_to_tuple":
		var s struct {
			Filter json.RawMessage `json:"filter"`
			Index  int             `json:"index"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		f, err := buildFilter(s.Filter, in)
		if err != nil {
			return nil, err
		}
		return combine.NewApplyToTuple(f, s.Index), nil
	}
	return nil, fmt.Errorf("unknown filter %q", kind)
}

type nodeSpec struct {
	Array *struct {
		Shape   []int             `json:"shape"`
		Filters []json.RawMessage `json:"filters"`
	} `json:"array"`
	Series *struct {
		Child json.RawMessage `json:"child"`
		Dim   string          `json:"dim"`
	} `json:"series"`
	TupleSeries *struct {
		Children []json.RawMessage `json:"children"`
	} `json:"tuple_series"`
}

// buildNode turns the pipeline section of the config into a container tree.
// Because filters are stateless between sweep points only via SetParams,
// the tree is rebuilt per sweep point by the runner; buildNode is the
// factory body.
func buildNode(raw json.RawMessage, in *injector) (pg.Node, error) {
	var s nodeSpec
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	switch {
	case s.Array != nil:
		arr := pg.NewArray(s.Array.Shape...)
		for _, fr := range s.Array.Filters {
			f, err := buildFilter(fr, in)
			if err != nil {
				return nil, err
			}
			arr.AddFilter(f)
		}
		return arr, nil
	case s.Series != nil:
		child, err := buildNode(s.Series.Child, in)
		if err != nil {
			return nil, err
		}
		if s.Series.Dim != "" {
			return pg.NewNamedSeries(child, s.Series.Dim), nil
		}
		return pg.NewSeries(child), nil
	case s.TupleSeries != nil:
		children := make([]pg.Node, len(s.TupleSeries.Children))
		for i, cr := range s.TupleSeries.Children {
			c, err := buildNode(cr, in)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return pg.NewTupleSeries(children...), nil
	}
	return nil, fmt.Errorf("pipeline needs one of array, series, tuple_series")
}

// expandGrid cross-products the configured parameter ranges.
func expandGrid(specs map[string]RangeSpec) ([]pg.Params, error) {
	grid := map[string][]any{}
	for k, r := range specs {
		vals, err := r.expand()
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}
		grid[k] = vals
	}
	return runner.Expand(grid), nil
}
