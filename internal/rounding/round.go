// Package rounding rounds floating-point values to a fixed number of decimal
// digits with ties going away from zero.
package rounding

import "math"

// Round rounds x to points fractional digits. Halfway values move away from
// zero: Round(2.5, 0) == 3, Round(-2.5, 0) == -3.
//
// Round never returns negative zero. The result for NaN or infinite x is
// unspecified.
func Round(x float64, points uint8) float64 {
	scale := math.Pow(10, float64(points))
	scaled := x * scale
	if math.IsInf(scaled, 0) || math.Abs(scaled) >= 1<<52 {
		// x already has no digits beyond points that a float64 can hold
		return x
	}

	if scaled < 0 {
		scaled -= 0.5
	} else {
		scaled += 0.5
	}

	r := math.Trunc(scaled) / scale
	if r == 0 {
		return 0
	}
	return r
}
