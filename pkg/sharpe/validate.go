package sharpe

import (
	"fmt"
	"math"
)

// maxRiskFreeRate is the upper bound of the admissible annual risk-free rate.
const maxRiskFreeRate = 0.3

// ValidateRiskFreeRate checks the annual risk-free rate parameter.
//
// Returns ErrInvalidRate if the rate is NaN or infinite, and ErrRateOutOfRange
// if it falls outside the inclusive range [0, 0.3]. Both boundary values are
// valid.
func ValidateRiskFreeRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, rate)
	}

	if rate < 0 || rate > maxRiskFreeRate {
		return fmt.Errorf("%w: got %v", ErrRateOutOfRange, rate)
	}

	return nil
}
