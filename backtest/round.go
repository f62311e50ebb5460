package backtest

import "math"

// RoundDigits rounds v to n decimal digits, halves away from zero.
// Quantities, prices and interest all round through here so a value is
// stable under repeated rounding.
func RoundDigits(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}
