package domain

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DatasetVersion identifies the embedded reference dataset.
const DatasetVersion = "vit1-2024.1"

//go:embed data/vit1.csv
var vit1CSV []byte

// DefaultTable parses the embedded VIT-1 dataset.
func DefaultTable() (*Table, error) {
	t, err := LoadTable(bytes.NewReader(vit1CSV))
	if err != nil {
		return nil, fmt.Errorf("load embedded dataset %s: %w", DatasetVersion, err)
	}
	return t, nil
}

// LoadTableFile parses a dataset from disk.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return t, nil
}

// LoadTable parses a CSV dataset: '#' comments, a header of depression keys,
// then one line per dry-bulb key.
func LoadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty dataset", ErrMalformedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedTable, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has no depression keys", ErrMalformedTable)
	}

	cols, err := parseFields(header[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedTable, err)
	}

	var (
		rows  []float64
		cells [][]float64
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}

		line, _ := cr.FieldPos(0)
		vals, err := parseFields(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		rows = append(rows, vals[0])
		cells = append(cells, vals[1:])
	}

	return NewTable(rows, cols, cells)
}

func parseFields(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
