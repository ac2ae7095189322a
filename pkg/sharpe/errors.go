package sharpe

import (
	"errors"
)

// Validation errors form a closed taxonomy. They indicate programming or input
// errors, propagate unchanged to the caller, and are never retried.
var (
	// ErrUnsupportedMethod is returned when a return-calculation method other
	// than MethodLog is requested.
	ErrUnsupportedMethod = errors.New("unsupported return method")

	// ErrInsufficientPoints is returned when fewer than 2 price observations
	// are supplied.
	ErrInsufficientPoints = errors.New("at least 2 price points required")

	// ErrNonPositivePrice is returned when a zero or negative price is present.
	// Log returns are undefined for non-positive prices.
	ErrNonPositivePrice = errors.New("all prices must be positive")

	// ErrInvalidRate is returned when the risk-free rate is not a numeric
	// value (NaN or infinite).
	ErrInvalidRate = errors.New("risk-free rate must be a finite number")

	// ErrRateOutOfRange is returned when the risk-free rate is outside the
	// inclusive range [0, 0.3].
	ErrRateOutOfRange = errors.New("risk-free rate outside valid range [0, 0.3]")
)

// CalculationError wraps any unexpected failure during ratio computation so
// that callers only ever see errors from this package's taxonomy.
type CalculationError struct {
	cause error
}

func (e *CalculationError) Error() string {
	return "sharpe calculation failed: " + e.cause.Error()
}

// Unwrap returns the original cause for diagnostics.
func (e *CalculationError) Unwrap() error {
	return e.cause
}
