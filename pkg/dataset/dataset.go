// Package dataset loads numeric CSV datasets into tensors.
package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

type Options struct {
	HasHeader   bool
	Delimiter   rune   // 0 defaults to ','
	LabelColumn string // header name of the label column; "" means last
}

// Load reads a CSV file into a feature matrix X of shape [n, d] and an
// integer label vector y of shape [n]. Every non-label cell is parsed as a
// float; unparseable or empty cells become NaN. Label cells that do not
// parse as an integer get a fresh class id per distinct string, assigned in
// first-seen order. Paths ending in .gz are decompressed.
func Load(path string, opt Options) (*pg.Float64Tensor, *pg.Int64Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	var rd io.Reader = f
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		defer zr.Close()
		rd = zr
	}
	return Read(rd, opt)
}

func Read(rd io.Reader, opt Options) (*pg.Float64Tensor, *pg.Int64Tensor, error) {
	r := csv.NewReader(rd)
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	r.FieldsPerRecord = -1

	var header []string
	if opt.HasHeader {
		rec, err := r.Read()
		if err != nil {
			return nil, nil, err
		}
		header = append(header, rec...)
	}

	labelIdx := -1
	if opt.LabelColumn != "" {
		for i, h := range header {
			if h == opt.LabelColumn {
				labelIdx = i
			}
		}
		if labelIdx < 0 {
			return nil, nil, fmt.Errorf("dataset: label column %q not in header", opt.LabelColumn)
		}
	}

	var feats []float64
	var labels []int64
	classes := map[string]int64{}
	width := -1
	row := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) < 2 {
			continue
		}
		li := labelIdx
		if li < 0 || li >= len(rec) {
			li = len(rec) - 1
		}
		d := len(rec) - 1
		if width == -1 {
			width = d
		} else if d != width {
			return nil, nil, fmt.Errorf("dataset: row %d has %d feature columns, want %d", row, d, width)
		}
		for i, cell := range rec {
			if i == li {
				labels = append(labels, parseLabel(cell, classes))
				continue
			}
			feats = append(feats, parseCell(cell))
		}
		row++
	}
	if row == 0 {
		return nil, nil, fmt.Errorf("dataset: no data rows")
	}
	return pg.Float64TensorOf(feats, row, width), pg.Int64TensorOf(labels, row), nil
}

func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseLabel(s string, classes map[string]int64) int64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	id, ok := classes[s]
	if !ok {
		id = int64(len(classes))
		classes[s] = id
	}
	return id
}
