// Command genmock generates the station readings fixture used by the pipeline,
// validation and integration test suites. Expected outcomes are computed with
// the real domain calculator against the embedded reference table, so the
// fixture always agrees with the code that will consume it.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/station_readings.json -n 20 -seed 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
)

var baseTime = time.Date(2024, time.July, 3, 6, 0, 0, 0, time.UTC)

// readingStep spaces observations so that timestamps never collide.
const readingStep = 67 * time.Minute

var stations = []string{
	"greenhouse-1", "greenhouse-2", "warehouse-a", "lab-3", "cellar", "seed-store",
}

// fixtureRow mirrors the station message payload plus the outcome it must produce.
type fixtureRow struct {
	Station    string  `json:"station"`
	TDry       float64 `json:"t_dry"`
	TWet       float64 `json:"t_wet"`
	ObservedAt string  `json:"observed_at"`
	Expect     string  `json:"expect"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the station readings JSON fixture")
	n := flag.Int("n", 20, "number of readings to generate")
	seed := flag.Uint64("seed", 7, "random seed")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n > 0")
	}

	table, err := domain.DefaultTable()
	if err != nil {
		return fmt.Errorf("load reference table: %w", err)
	}
	calc := domain.NewCalculator(table)

	rows := generate(calc, rand.New(rand.NewPCG(*seed, *seed)), *n)
	if err := writeJSON(*out, rows); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d readings: %s", len(rows), *out)

	printStats(calc, rows)
	return nil
}

// generate produces mostly in-range readings with every fifth one inverted and
// every seventh one outside the table, so each outcome appears in the fixture.
func generate(calc *domain.Calculator, rng *rand.Rand, n int) []fixtureRow {
	rows := make([]fixtureRow, 0, n)
	for i := range n {
		tDry := halfStep(10 + rng.Float64()*20)
		depression := halfStep(rng.Float64() * 8)

		switch {
		case i%7 == 6:
			tDry = halfStep(31 + rng.Float64()*8)
		case i%5 == 4:
			depression = -halfStep(0.5 + rng.Float64()*2)
		}
		tWet := tDry - depression

		rows = append(rows, fixtureRow{
			Station:    stations[i%len(stations)],
			TDry:       tDry,
			TWet:       tWet,
			ObservedAt: baseTime.Add(time.Duration(i) * readingStep).Format(time.RFC3339),
			Expect:     calc.Calculate(tDry, tWet).Outcome(),
		})
	}
	return rows
}

func halfStep(v float64) float64 { return math.Round(v*2) / 2 }

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type outcomeCount struct {
	outcome string
	count   int
}

func printStats(calc *domain.Calculator, rows []fixtureRow) {
	counts := map[string]int{}
	var humidity []float64
	for _, r := range rows {
		counts[r.Expect]++
		if res := calc.Calculate(r.TDry, r.TWet); res.Success {
			humidity = append(humidity, res.Humidity)
		}
	}

	oc := make([]outcomeCount, 0, len(counts))
	for o, c := range counts {
		oc = append(oc, outcomeCount{o, c})
	}
	sort.Slice(oc, func(i, j int) bool { return oc[i].count > oc[j].count })

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(rows))
	for _, o := range oc {
		fmt.Printf("  %s=%d\n", o.outcome, o.count)
	}
	if len(humidity) > 0 {
		mean, std := stat.MeanStdDev(humidity, nil)
		fmt.Printf("Humidity: mean %.1f%%, stddev %.1f\n", mean, std)
	}
}
