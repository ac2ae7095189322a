// Package sharpe computes annualized Sharpe ratios from daily stock price
// series.
//
// Mathematical foundation:
//
//	Daily log returns:       r_t = ln(P_t / P_{t-1})
//	Annualized Sharpe ratio: mean(excess_daily) / std(r_daily) * sqrt(252)
//	Risk-free conversion:    annual_rf -> daily_rf = annual_rf / 252
//
// Missing observations are represented as NaN and propagate through return
// calculation without raising errors. All functions are pure and safe for
// concurrent use.
package sharpe

import (
	"fmt"
	"math"
)

// Method selects the return-calculation convention.
type Method string

// MethodLog is the only supported convention. Log returns are preferred for
// financial analysis: they are time-additive and handle compounding better
// than simple returns.
const MethodLog Method = "log"

// LogReturns calculates daily returns from a price series.
//
// Element i of the result is ln(prices[i+1] / prices[i]), so the result is one
// element shorter than the input. A NaN price at either endpoint of a pair
// yields a NaN return at that position; this is per-element propagation, not
// an error.
//
// Returns ErrUnsupportedMethod for any method other than MethodLog,
// ErrInsufficientPoints for fewer than 2 prices, and ErrNonPositivePrice if
// any non-NaN price is zero or negative.
func LogReturns(prices []float64, method Method) ([]float64, error) {
	if method != MethodLog {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(prices))
	}

	for _, p := range prices {
		if math.IsNaN(p) {
			continue // missing observation, exempt from positivity check
		}
		if p <= 0 {
			return nil, fmt.Errorf("%w: found %v", ErrNonPositivePrice, p)
		}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		// NaN at either endpoint propagates into the return.
		returns[i-1] = math.Log(prices[i] / prices[i-1])
	}

	return returns, nil
}

// dropMissing filters NaN values out of a return series.
func dropMissing(values []float64) []float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}
