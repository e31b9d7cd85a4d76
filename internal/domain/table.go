package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// spacingTolerance bounds the deviation allowed between consecutive key gaps.
const spacingTolerance = 1e-9

// Table is an immutable psychrometric reference table: rows are dry-bulb
// temperatures, columns are depressions, cells are relative humidity in percent.
// It is safe for concurrent readers once constructed.
type Table struct {
	rows  []float64
	cols  []float64
	cells [][]float64
}

// NewTable validates and copies the given keys and grid into a Table.
func NewTable(rows, cols []float64, cells [][]float64) (*Table, error) {
	if err := validateKeys("row", rows); err != nil {
		return nil, err
	}
	if err := validateKeys("column", cols); err != nil {
		return nil, err
	}
	if len(cells) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows of cells for %d row keys", ErrMalformedTable, len(cells), len(rows))
	}

	grid := make([][]float64, len(cells))
	for i, line := range cells {
		if len(line) != len(cols) {
			return nil, fmt.Errorf("%w: row %g has %d cells, want %d", ErrMalformedTable, rows[i], len(line), len(cols))
		}
		for j, v := range line {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
				return nil, fmt.Errorf("%w: cell (%g, %g) = %g outside [0, 100]", ErrMalformedTable, rows[i], cols[j], v)
			}
		}
		grid[i] = append([]float64(nil), line...)
	}

	return &Table{
		rows:  append([]float64(nil), rows...),
		cols:  append([]float64(nil), cols...),
		cells: grid,
	}, nil
}

// validateKeys checks an axis: at least two finite keys, strictly increasing, uniformly spaced.
func validateKeys(axis string, keys []float64) error {
	if len(keys) < 2 {
		return fmt.Errorf("%w: %s axis needs at least two keys, got %d", ErrMalformedTable, axis, len(keys))
	}
	if floats.HasNaN(keys) || math.IsInf(floats.Min(keys), 0) || math.IsInf(floats.Max(keys), 0) {
		return fmt.Errorf("%w: %s axis has non-finite keys", ErrMalformedTable, axis)
	}

	step := keys[1] - keys[0]
	for i := 1; i < len(keys); i++ {
		gap := keys[i] - keys[i-1]
		if gap <= 0 {
			return fmt.Errorf("%w: %s keys not strictly increasing at %g", ErrMalformedTable, axis, keys[i])
		}
		if !scalar.EqualWithinAbs(gap, step, spacingTolerance*math.Max(1, step)) {
			return fmt.Errorf("%w: %s keys not uniformly spaced at %g (step %g, gap %g)", ErrMalformedTable, axis, keys[i], step, gap)
		}
	}
	return nil
}

// CellAt returns the humidity stored at the given indices.
// Out-of-range indices are a programming error and panic.
func (t *Table) CellAt(row, col int) float64 {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.cols) {
		panic(fmt.Sprintf("domain: cell index (%d, %d) out of range %dx%d", row, col, len(t.rows), len(t.cols)))
	}
	return t.cells[row][col]
}

// RowKeys returns a copy of the dry-bulb keys in increasing order.
func (t *Table) RowKeys() []float64 { return append([]float64(nil), t.rows...) }

// ColKeys returns a copy of the depression keys in increasing order.
func (t *Table) ColKeys() []float64 { return append([]float64(nil), t.cols...) }

// Rows returns the number of dry-bulb keys.
func (t *Table) Rows() int { return len(t.rows) }

// Cols returns the number of depression keys.
func (t *Table) Cols() int { return len(t.cols) }
