package sharpe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Params holds the tunable inputs of a Sharpe ratio calculation.
type Params struct {
	RiskFreeRate       float64 // annual, as decimal (0.015 = 1.5%)
	MinYears           float64 // minimum years of history for a full calculation
	TradingDaysPerYear int     // periods per year, 252 for daily data
}

// DefaultParams returns the standard parameters: 1.5% annual risk-free rate,
// 3 years of minimum history, 252 trading days per year.
func DefaultParams() Params {
	return Params{
		RiskFreeRate:       0.015,
		MinYears:           3.0,
		TradingDaysPerYear: 252,
	}
}

// Result pairs the annualized ratio with a partial-data flag.
//
// Ratio may legitimately be NaN, +Inf or -Inf (see the degenerate-volatility
// policy in CalculateSharpeRatio); consumers must treat those as results, not
// error signals. Partial indicates the input fell short of the minimum-history
// threshold; it is informational and never blocks computation.
type Result struct {
	Ratio   float64
	Partial bool
}

// CalculateSharpeRatio calculates the annualized Sharpe ratio from a daily
// price series.
//
// Formula:
//
//	Daily returns:       r_t = ln(P_t / P_{t-1})
//	Daily risk-free:     rf_daily = annual_rf / tradingDaysPerYear
//	Daily excess:        excess_t = r_t - rf_daily
//	Annualized Sharpe:   mean(excess) / std(r, sample) * sqrt(tradingDaysPerYear)
//
// The volatility in the denominator is the Bessel-corrected (n-1) standard
// deviation of the raw returns, not of the excess returns. When volatility is
// zero the ratio is +Inf, -Inf or NaN depending on the sign of the mean
// excess. A series with no valid returns yields (NaN, partial) without error.
//
// Validation errors (ErrRateOutOfRange, ErrInsufficientPoints,
// ErrNonPositivePrice) propagate unchanged; anything unexpected is wrapped in
// a *CalculationError.
func CalculateSharpeRatio(prices []float64, p Params) (Result, error) {
	if err := ValidateRiskFreeRate(p.RiskFreeRate); err != nil {
		return Result{}, err
	}

	// Informational only: a ratio is still computed on partial data and the
	// caller decides how to treat it.
	partial := !HasSufficientData(prices, p.MinYears, p.TradingDaysPerYear)

	returns, err := LogReturns(prices, MethodLog)
	if err != nil {
		return Result{}, err
	}

	ratio, err := annualizedRatio(returns, p.RiskFreeRate, p.TradingDaysPerYear)
	if err != nil {
		return Result{}, err
	}

	return Result{Ratio: ratio, Partial: partial}, nil
}

// SharpeFromReturns calculates the annualized Sharpe ratio directly from a
// return series (not prices), skipping the log-return step.
//
// NaN returns are filtered out first; if nothing remains the result is NaN.
// No partial-data flag is produced: callers of this variant are expected to
// have validated history length upstream.
func SharpeFromReturns(returns []float64, riskFreeRate float64, tradingDaysPerYear int) (float64, error) {
	if err := ValidateRiskFreeRate(riskFreeRate); err != nil {
		return 0, err
	}

	return annualizedRatio(returns, riskFreeRate, tradingDaysPerYear)
}

// annualizedRatio computes the annualized ratio from a raw return series.
// Shared by the price-based and returns-only entry points. Any panic from the
// numeric steps is converted into a *CalculationError so the package never
// leaks an unhandled failure.
func annualizedRatio(returns []float64, riskFreeRate float64, tradingDaysPerYear int) (ratio float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CalculationError{cause: fmt.Errorf("panic during ratio computation: %v", r)}
		}
	}()

	valid := dropMissing(returns)
	if len(valid) == 0 {
		return math.NaN(), nil
	}

	rfPeriod := riskFreeRate / float64(tradingDaysPerYear)

	excess := make([]float64, len(valid))
	for i, r := range valid {
		excess[i] = r - rfPeriod
	}

	meanExcess := stat.Mean(excess, nil)
	// Volatility of the raw returns, not the excess returns.
	volatility := stat.StdDev(valid, nil)

	if volatility == 0 {
		switch {
		case meanExcess > 0:
			return math.Inf(1), nil
		case meanExcess < 0:
			return math.Inf(-1), nil
		default:
			return math.NaN(), nil
		}
	}

	return (meanExcess / volatility) * math.Sqrt(float64(tradingDaysPerYear)), nil
}
