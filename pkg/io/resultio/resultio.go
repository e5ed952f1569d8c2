// Package resultio persists sweep results as Parquet or JSON Lines.
//
// Both formats flatten each record into one row: error parameters become
// err_<key> columns, model parameters param_<key>, metrics metric_<key>.
// Non-scalar parameter values (filters, callbacks, lookup tables) are
// skipped; they have no tabular representation.
package resultio

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/runner"
)

func scalar(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func modelParamKeys(res *runner.Results) []string {
	set := map[string]struct{}{}
	for _, rec := range res.Records {
		for k, v := range rec.ModelParams {
			if _, ok := scalar(v); ok {
				set[k] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(rec runner.Record, errKeys, modelKeys, metricKeys []string) map[string]any {
	m := map[string]any{"model": rec.Model}
	for _, k := range errKeys {
		if v, ok := scalar(rec.ErrParams[k]); ok {
			m["err_"+k] = v
		}
	}
	for _, k := range modelKeys {
		if v, ok := scalar(rec.ModelParams[k]); ok {
			m["param_"+k] = v
		}
	}
	for _, k := range metricKeys {
		if v, ok := rec.Metrics[k]; ok {
			m["metric_"+k] = v
		}
	}
	if rec.Err != "" {
		m["error"] = rec.Err
	}
	return m
}

func parquetSchemaJSON(errKeys, modelKeys, metricKeys []string) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	add := func(name, typ string) {
		sc.Fields = append(sc.Fields, field{Tag: fmt.Sprintf("name=%s, repetitiontype=OPTIONAL, type=%s", name, typ)})
	}
	for _, k := range errKeys {
		add("err_"+k, "DOUBLE")
	}
	add("model", "BYTE_ARRAY, convertedtype=UTF8")
	for _, k := range modelKeys {
		add("param_"+k, "DOUBLE")
	}
	for _, k := range metricKeys {
		add("metric_"+k, "DOUBLE")
	}
	add("error", "BYTE_ARRAY, convertedtype=UTF8")
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteParquet writes the sweep results to a Parquet file.
func WriteParquet(path string, res *runner.Results) error {
	errKeys := res.ParamKeys()
	modelKeys := modelParamKeys(res)
	metricKeys := res.MetricKeys()

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(errKeys, modelKeys, metricKeys), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	for _, rec := range res.Records {
		b, err := json.Marshal(flatten(rec, errKeys, modelKeys, metricKeys))
		if err != nil {
			_ = writer.WriteStop()
			_ = fw.Close()
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			_ = writer.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// WriteJSONL writes one JSON object per record, gzip compressed when the
// path ends in .gz.
func WriteJSONL(path string, res *runner.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var w io.Writer = f
	var zw *gzip.Writer
	if filepath.Ext(path) == ".gz" {
		zw = gzip.NewWriter(f)
		w = zw
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	errKeys := res.ParamKeys()
	modelKeys := modelParamKeys(res)
	metricKeys := res.MetricKeys()
	var werr error
	for _, rec := range res.Records {
		if err := enc.Encode(flatten(rec, errKeys, modelKeys, metricKeys)); err != nil {
			werr = err
			break
		}
	}
	if err := bw.Flush(); werr == nil {
		werr = err
	}
	if zw != nil {
		if err := zw.Close(); werr == nil {
			werr = err
		}
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	return werr
}

// ReadJSONL loads records written by WriteJSONL back into generic maps,
// mainly for tooling and tests.
func ReadJSONL(path string) ([]pg.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	dec := json.NewDecoder(bufio.NewReader(r))
	var out []pg.Params
	for {
		m := pg.Params{}
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
