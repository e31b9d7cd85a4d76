package domain

import (
	"math"
	"sort"
)

// Lookup interpolates the humidity for a dry-bulb temperature and depression.
// Both axes are closed intervals; anything outside them returns ErrOutOfRange
// rather than an extrapolated guess.
func (t *Table) Lookup(dryBulb, depression float64) (float64, error) {
	r0, r1, ok := bracket(t.rows, dryBulb)
	if !ok {
		return 0, ErrOutOfRange
	}
	c0, c1, ok := bracket(t.cols, depression)
	if !ok {
		return 0, ErrOutOfRange
	}

	var v float64
	switch {
	case r0 == r1 && c0 == c1:
		return t.cells[r0][c0], nil
	case r0 == r1:
		fc := fraction(t.cols, c0, c1, depression)
		v = lerp(t.cells[r0][c0], t.cells[r0][c1], fc)
	case c0 == c1:
		fr := fraction(t.rows, r0, r1, dryBulb)
		v = lerp(t.cells[r0][c0], t.cells[r1][c0], fr)
	default:
		fr := fraction(t.rows, r0, r1, dryBulb)
		fc := fraction(t.cols, c0, c1, depression)
		v = (1-fr)*(1-fc)*t.cells[r0][c0] +
			fr*(1-fc)*t.cells[r1][c0] +
			(1-fr)*fc*t.cells[r0][c1] +
			fr*fc*t.cells[r1][c1]
	}

	return clamp(v, 0, 100), nil
}

// bracket finds the keys surrounding x. lo == hi when x is exactly a key.
// ok is false when x is NaN or outside [keys[0], keys[last]].
func bracket(keys []float64, x float64) (lo, hi int, ok bool) {
	if math.IsNaN(x) || x < keys[0] || x > keys[len(keys)-1] {
		return 0, 0, false
	}
	i := sort.SearchFloat64s(keys, x)
	if keys[i] == x {
		return i, i, true
	}
	return i - 1, i, true
}

func fraction(keys []float64, lo, hi int, x float64) float64 {
	return (x - keys[lo]) / (keys[hi] - keys[lo])
}

func lerp(a, b, f float64) float64 {
	return (1-f)*a + f*b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
