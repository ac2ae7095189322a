package sharpe

import (
	"math"
)

// HasSufficientData reports whether a price series carries enough valid
// history for a reliable Sharpe estimate.
//
// Only non-NaN observations count. The threshold is
// int(minYears * tradingDaysPerYear), truncated. Never fails; an empty series
// is simply insufficient.
func HasSufficientData(prices []float64, minYears float64, tradingDaysPerYear int) bool {
	valid := 0
	for _, p := range prices {
		if !math.IsNaN(p) {
			valid++
		}
	}

	minObservations := int(minYears * float64(tradingDaysPerYear))
	return valid >= minObservations
}
