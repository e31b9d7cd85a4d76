// Command validate checks a psychrometric reference dataset before it is
// deployed via REFERENCE_TABLE_PATH. It verifies structure, monotonicity,
// exact reproduction of grid points, boundary detection and, optionally, that a
// mock readings fixture still produces the outcomes it records.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -table internal/domain/data/vit1.csv \
//	  -fixture data/mock/station_readings.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tablePath := flag.String("table", "", "path to a reference table CSV (default: embedded "+domain.DatasetVersion+")")
	fixturePath := flag.String("fixture", "", "optional path to a mock station readings JSON fixture")
	flag.Parse()

	if code := run(os.Stdout, *tablePath, *fixturePath); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, tablePath, fixturePath string) int {
	fmt.Fprintln(out, "=== Reference Table Validation ===")
	fmt.Fprintln(out)

	table, err := load(tablePath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load table: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateMonotonicity(table),
		validateGridExactness(table),
		validateBoundaries(table),
	}
	if fixturePath != "" {
		phases = append(phases, validateFixture(table, fixturePath))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	printSummary(out, table)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func load(path string) (*domain.Table, error) {
	if path == "" {
		return domain.DefaultTable()
	}
	return domain.LoadTableFile(path)
}

// ── Phase 1: Monotonicity ──
// Humidity must not rise with depression, nor fall with dry-bulb temperature.

func validateMonotonicity(t *domain.Table) *phase {
	p := &phase{name: "Phase 1: Monotonicity"}
	rows, cols := t.RowKeys(), t.ColKeys()

	for i := range rows {
		for j := 1; j < len(cols); j++ {
			if t.CellAt(i, j) > t.CellAt(i, j-1) {
				p.errorf("t_dry=%g: humidity rises from %g to %g between delta_t=%g and %g",
					rows[i], t.CellAt(i, j-1), t.CellAt(i, j), cols[j-1], cols[j])
			}
		}
	}
	for j := range cols {
		for i := 1; i < len(rows); i++ {
			if t.CellAt(i, j) < t.CellAt(i-1, j) {
				p.errorf("delta_t=%g: humidity falls from %g to %g between t_dry=%g and %g",
					cols[j], t.CellAt(i-1, j), t.CellAt(i, j), rows[i-1], rows[i])
			}
		}
	}
	return p
}

// ── Phase 2: Grid exactness ──
// Lookup on a grid point must return the stored cell unchanged.

func validateGridExactness(t *domain.Table) *phase {
	p := &phase{name: "Phase 2: Grid Exactness"}
	rows, cols := t.RowKeys(), t.ColKeys()

	for i, r := range rows {
		for j, c := range cols {
			got, err := t.Lookup(r, c)
			if err != nil {
				p.errorf("(%g, %g): %v", r, c, err)
				continue
			}
			if got != t.CellAt(i, j) {
				p.errorf("(%g, %g): lookup %v, cell %v", r, c, got, t.CellAt(i, j))
			}
		}
	}
	return p
}

// ── Phase 3: Boundaries ──
// Keys just outside the table must be rejected; the corners must resolve.

func validateBoundaries(t *domain.Table) *phase {
	p := &phase{name: "Phase 3: Boundaries"}
	rows, cols := t.RowKeys(), t.ColKeys()
	rMin, rMax := floats.Min(rows), floats.Max(rows)
	cMin, cMax := floats.Min(cols), floats.Max(cols)
	const eps = 1e-3

	outside := [][2]float64{
		{rMin - eps, cMin}, {rMax + eps, cMin},
		{rMin, cMin - eps}, {rMin, cMax + eps},
		{math.NaN(), cMin}, {rMin, math.Inf(1)},
	}
	for _, q := range outside {
		if _, err := t.Lookup(q[0], q[1]); err == nil {
			p.errorf("(%g, %g): expected out-of-range, got a value", q[0], q[1])
		}
	}

	corners := [][2]float64{{rMin, cMin}, {rMin, cMax}, {rMax, cMin}, {rMax, cMax}}
	for _, q := range corners {
		if _, err := t.Lookup(q[0], q[1]); err != nil {
			p.errorf("corner (%g, %g): %v", q[0], q[1], err)
		}
	}
	return p
}

// ── Phase 4: Fixture outcomes ──
// Each mock reading must still yield the outcome recorded alongside it.

type fixtureRow struct {
	Station string  `json:"station"`
	TDry    float64 `json:"t_dry"`
	TWet    float64 `json:"t_wet"`
	Expect  string  `json:"expect"`
}

func validateFixture(t *domain.Table, path string) *phase {
	p := &phase{name: "Phase 4: Fixture Outcomes"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read fixture: %v", err)
		return p
	}
	var rows []fixtureRow
	if err := json.Unmarshal(data, &rows); err != nil {
		p.errorf("decode fixture: %v", err)
		return p
	}

	calc := domain.NewCalculator(t)
	for i, row := range rows {
		res := calc.Calculate(row.TDry, row.TWet)
		if res.Outcome() != row.Expect {
			p.errorf("row %d (%s %g/%g): expected %s, got %s", i, row.Station, row.TDry, row.TWet, row.Expect, res.Outcome())
		}
	}
	return p
}

// printSummary reports the table's extent and the distribution of its cells.
func printSummary(out io.Writer, t *domain.Table) {
	rows, cols := t.RowKeys(), t.ColKeys()

	cells := make([]float64, 0, len(rows)*len(cols))
	for i := range rows {
		for j := range cols {
			cells = append(cells, t.CellAt(i, j))
		}
	}
	mean, std := stat.MeanStdDev(cells, nil)

	fmt.Fprintf(out, "Table: %d dry-bulb rows [%g, %g] x %d depression cols [%g, %g]\n",
		len(rows), floats.Min(rows), floats.Max(rows), len(cols), floats.Min(cols), floats.Max(cols))
	fmt.Fprintf(out, "Cells: min %.1f%%, max %.1f%%, mean %.1f%%, stddev %.1f\n",
		floats.Min(cells), floats.Max(cells), mean, std)
}
