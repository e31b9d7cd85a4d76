package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// FailureKind classifies why a calculation produced no humidity.
type FailureKind string

const (
	KindInvalidInput         FailureKind = "invalid_input"
	KindOrderingViolation    FailureKind = "ordering_violation"
	KindNoDataForRange       FailureKind = "no_data_for_range"
	KindUpstreamParseFailure FailureKind = "upstream_parse_failure"
)

// Depressions within noiseTolerance of a multiple of 1/depressionPrecision are
// snapped to it, stripping float subtraction noise (e.g. 30.3-20.3) before lookup.
const (
	depressionPrecision = 1e6
	noiseTolerance      = 1e-9
)

// Result is the outcome of one calculation. On success TDry, DeltaT and
// Humidity are set; on failure Kind and Error describe the reason. A
// no-data failure also carries the attempted TDry and DeltaT.
type Result struct {
	Success  bool        `json:"success"`
	TDry     float64     `json:"t_dry"`
	DeltaT   float64     `json:"delta_t"`
	Humidity float64     `json:"humidity"`
	Kind     FailureKind `json:"kind,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// MarshalJSON emits the readings only on success and the reason only on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success  bool    `json:"success"`
			TDry     float64 `json:"t_dry"`
			DeltaT   float64 `json:"delta_t"`
			Humidity float64 `json:"humidity"`
		}{true, r.TDry, r.DeltaT, r.Humidity})
	}
	if r.Kind == KindNoDataForRange {
		return json.Marshal(struct {
			Success bool        `json:"success"`
			TDry    float64     `json:"t_dry"`
			DeltaT  float64     `json:"delta_t"`
			Kind    FailureKind `json:"kind"`
			Error   string      `json:"error"`
		}{false, r.TDry, r.DeltaT, r.Kind, r.Error})
	}
	return json.Marshal(struct {
		Success bool        `json:"success"`
		Kind    FailureKind `json:"kind"`
		Error   string      `json:"error"`
	}{false, r.Kind, r.Error})
}

// Err returns nil on success, otherwise an error wrapping the sentinel for Kind.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	var base error
	switch r.Kind {
	case KindInvalidInput:
		base = ErrInvalidInput
	case KindOrderingViolation:
		base = ErrOrderingViolation
	case KindNoDataForRange:
		base = ErrNoDataForRange
	case KindUpstreamParseFailure:
		base = ErrUpstreamParse
	default:
		return errors.New(r.Error)
	}
	return fmt.Errorf("%w: %s", base, r.Error)
}

// Outcome is the metrics label for the result: "ok" or the failure kind.
func (r Result) Outcome() string {
	if r.Success {
		return "ok"
	}
	return string(r.Kind)
}

// Calculator converts dry/wet-bulb pairs to relative humidity using a shared
// read-only Table. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	table *Table
}

// NewCalculator creates a Calculator backed by table.
func NewCalculator(table *Table) *Calculator {
	return &Calculator{table: table}
}

// Table returns the reference table the calculator reads from.
func (c *Calculator) Table() *Table { return c.table }

// Calculate validates the readings, derives the depression and looks up the humidity.
func (c *Calculator) Calculate(tDry, tWet float64) Result {
	if !isFinite(tDry) || !isFinite(tWet) {
		return failure(KindInvalidInput, fmt.Sprintf("temperatures must be finite numbers (t_dry=%v, t_wet=%v)", tDry, tWet))
	}
	if tWet > tDry {
		return failure(KindOrderingViolation, fmt.Sprintf("wet-bulb %.1f °C exceeds dry-bulb %.1f °C", tWet, tDry))
	}

	depression := snapDepression(tDry - tWet)

	humidity, err := c.table.Lookup(tDry, depression)
	if err != nil {
		res := failure(KindNoDataForRange, fmt.Sprintf(
			"no table data for t_dry=%.1f °C, delta_t=%.1f °C; an exact psychrometric formula is required",
			tDry, depression))
		res.TDry, res.DeltaT = tDry, depression
		return res
	}

	return Result{
		Success:  true,
		TDry:     tDry,
		DeltaT:   depression,
		Humidity: math.Round(humidity*10) / 10,
	}
}

// CalculateReading is Calculate for a transcribed or typed Reading.
func (c *Calculator) CalculateReading(r Reading) Result {
	return c.Calculate(r.TDry, r.TWet)
}

// UpstreamFailure converts a transcription error into a failed Result.
func UpstreamFailure(err error) Result {
	return failure(KindUpstreamParseFailure, err.Error())
}

// InvalidInput converts a request parsing error into a failed Result.
func InvalidInput(err error) Result {
	return failure(KindInvalidInput, err.Error())
}

func snapDepression(d float64) float64 {
	snapped := math.Round(d*depressionPrecision) / depressionPrecision
	if math.Abs(snapped-d) <= noiseTolerance {
		return snapped
	}
	return d
}

func failure(kind FailureKind, msg string) Result {
	return Result{Kind: kind, Error: msg}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
