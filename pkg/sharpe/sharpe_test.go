package sharpe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticPrices builds a log-normal daily price walk with positive drift,
// seeded for reproducibility.
func syntheticPrices(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	prices := make([]float64, n)
	prices[0] = 100.0
	for i := 1; i < n; i++ {
		prices[i] = prices[i-1] * math.Exp(0.0005+0.01*rng.NormFloat64())
	}
	return prices
}

func constantPrices(n int, value float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = value
	}
	return prices
}

func TestCalculateSharpeRatio_SyntheticSeries(t *testing.T) {
	prices := syntheticPrices(1000, 42)

	result, err := CalculateSharpeRatio(prices, DefaultParams())
	require.NoError(t, err)

	assert.False(t, math.IsNaN(result.Ratio), "ratio should be finite for a clean series")
	assert.False(t, math.IsInf(result.Ratio, 0))
	assert.False(t, result.Partial, "1000 observations exceed the 756 threshold")
}

func TestCalculateSharpeRatio_PartialFlagBoundary(t *testing.T) {
	p := DefaultParams()

	full := syntheticPrices(756, 7)
	result, err := CalculateSharpeRatio(full, p)
	require.NoError(t, err)
	assert.False(t, result.Partial)

	short := syntheticPrices(755, 7)
	result, err = CalculateSharpeRatio(short, p)
	require.NoError(t, err)
	assert.True(t, result.Partial, "755 observations fall short of 3 years")
	assert.False(t, math.IsNaN(result.Ratio), "partial data still produces a ratio")
}

func TestCalculateSharpeRatio_DegenerateVolatility(t *testing.T) {
	constant := constantPrices(1000, 100.0)

	// All returns are exactly zero. With a zero risk-free rate the mean
	// excess is zero too: the ratio is undefined.
	p := DefaultParams()
	p.RiskFreeRate = 0.0
	result, err := CalculateSharpeRatio(constant, p)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Ratio))

	// A positive risk-free rate makes the mean excess negative.
	p.RiskFreeRate = 0.05
	result, err = CalculateSharpeRatio(constant, p)
	require.NoError(t, err)
	assert.True(t, math.IsInf(result.Ratio, -1))
}

func TestCalculateSharpeRatio_DegeneratePositiveExcess(t *testing.T) {
	// Two identical doubling returns give exactly zero volatility with a
	// positive mean excess.
	p := DefaultParams()
	p.RiskFreeRate = 0.0

	result, err := CalculateSharpeRatio([]float64{100, 200, 400}, p)
	require.NoError(t, err)
	assert.True(t, math.IsInf(result.Ratio, 1))
}

func TestCalculateSharpeRatio_AllReturnsMissing(t *testing.T) {
	// Every return touches a gap, so filtering leaves nothing. That is a
	// NaN result, not an error.
	prices := []float64{100.0, math.NaN(), math.NaN(), 120.0}

	result, err := CalculateSharpeRatio(prices, DefaultParams())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Ratio))
	assert.True(t, result.Partial)
}

func TestCalculateSharpeRatio_ValidationErrors(t *testing.T) {
	prices := syntheticPrices(100, 1)

	p := DefaultParams()
	p.RiskFreeRate = 0.5
	_, err := CalculateSharpeRatio(prices, p)
	assert.ErrorIs(t, err, ErrRateOutOfRange)

	_, err = CalculateSharpeRatio([]float64{100.0}, DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = CalculateSharpeRatio([]float64{100.0, -50.0, 120.0}, DefaultParams())
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestCalculateSharpeRatio_RateMonotonicity(t *testing.T) {
	// For a fixed series with positive mean return, raising the risk-free
	// rate cannot raise the Sharpe ratio.
	prices := syntheticPrices(1000, 42)

	p := DefaultParams()
	p.RiskFreeRate = 0.01
	low, err := CalculateSharpeRatio(prices, p)
	require.NoError(t, err)

	p.RiskFreeRate = 0.03
	high, err := CalculateSharpeRatio(prices, p)
	require.NoError(t, err)

	require.False(t, math.IsInf(low.Ratio, 0))
	require.False(t, math.IsInf(high.Ratio, 0))
	assert.LessOrEqual(t, high.Ratio, low.Ratio+1e-12)
}

func TestSharpeFromReturns_MatchesPriceBased(t *testing.T) {
	prices := syntheticPrices(500, 11)
	returns, err := LogReturns(prices, MethodLog)
	require.NoError(t, err)

	fromPrices, err := CalculateSharpeRatio(prices, DefaultParams())
	require.NoError(t, err)

	fromReturns, err := SharpeFromReturns(returns, 0.015, 252)
	require.NoError(t, err)

	assert.InDelta(t, fromPrices.Ratio, fromReturns, 1e-12)
}

func TestSharpeFromReturns_DegenerateVolatility(t *testing.T) {
	// Identical exactly-representable returns: zero volatility, positive
	// excess.
	ratio, err := SharpeFromReturns([]float64{0.5, 0.5, 0.5}, 0.0, 252)
	require.NoError(t, err)
	assert.True(t, math.IsInf(ratio, 1))

	ratio, err = SharpeFromReturns([]float64{0.0, 0.0, 0.0}, 0.0, 252)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ratio))
}

func TestSharpeFromReturns_EmptyAfterFiltering(t *testing.T) {
	ratio, err := SharpeFromReturns([]float64{math.NaN(), math.NaN()}, 0.015, 252)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ratio))

	ratio, err = SharpeFromReturns(nil, 0.015, 252)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ratio))
}

func TestSharpeFromReturns_RateValidation(t *testing.T) {
	_, err := SharpeFromReturns([]float64{0.01, -0.02}, -0.01, 252)
	assert.ErrorIs(t, err, ErrRateOutOfRange)

	_, err = SharpeFromReturns([]float64{0.01, -0.02}, math.NaN(), 252)
	assert.ErrorIs(t, err, ErrInvalidRate)
}
