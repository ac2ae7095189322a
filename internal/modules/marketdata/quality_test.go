package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func barsFromCloses(closes []float64) []PriceBar {
	bars := make([]PriceBar, len(closes))
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = PriceBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func steadyCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.0005
	}
	return closes
}

func TestAssessQuality_ValidSeries(t *testing.T) {
	bars := barsFromCloses(steadyCloses(800))
	report := AssessQuality("AAPL", bars, DefaultQualityConfig())

	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 800, report.TotalPoints)
	assert.Equal(t, 0, report.MissingPoints)
	assert.InDelta(t, 800.0/252.0, report.YearsOfData, 1e-9)
}

func TestAssessQuality_EmptySeries(t *testing.T) {
	report := AssessQuality("AAPL", nil, DefaultQualityConfig())

	assert.False(t, report.Valid)
	assert.Contains(t, report.Issues, "no data")
}

func TestAssessQuality_TooFewPoints(t *testing.T) {
	bars := barsFromCloses(steadyCloses(100))
	report := AssessQuality("AAPL", bars, DefaultQualityConfig())

	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Issues)
}

func TestAssessQuality_TooManyMissing(t *testing.T) {
	closes := steadyCloses(800)
	// Blank out 10% of the series, above the 5% limit
	for i := 0; i < 80; i++ {
		closes[i*10] = math.NaN()
	}

	report := AssessQuality("AAPL", barsFromCloses(closes), DefaultQualityConfig())

	assert.False(t, report.Valid)
	assert.Equal(t, 80, report.MissingPoints)
	assert.InDelta(t, 0.10, report.MissingPct, 1e-9)
}

func TestAssessQuality_FewMissingStillValid(t *testing.T) {
	closes := steadyCloses(800)
	for i := 0; i < 10; i++ {
		closes[i*10+5] = math.NaN()
	}

	report := AssessQuality("AAPL", barsFromCloses(closes), DefaultQualityConfig())

	assert.True(t, report.Valid, "1.25%% missing should remain valid: %v", report.Issues)
	assert.Equal(t, 10, report.MissingPoints)
}

func TestAssessQuality_ExtremeMoves(t *testing.T) {
	closes := steadyCloses(800)
	// Six spikes above the 50% single-day threshold, one over the limit
	for i := 0; i < 6; i++ {
		closes[100+i*50] = closes[100+i*50-1] * 2.0
	}

	report := AssessQuality("AAPL", barsFromCloses(closes), DefaultQualityConfig())

	assert.False(t, report.Valid)
	assert.GreaterOrEqual(t, report.ExtremeMoves, 6)
}

func TestAssessQuality_ExtremeMovesSkipMissing(t *testing.T) {
	// A gap between two ordinary closes must not register as an extreme move
	closes := steadyCloses(800)
	closes[400] = math.NaN()

	report := AssessQuality("AAPL", barsFromCloses(closes), DefaultQualityConfig())

	assert.True(t, report.Valid)
	assert.Equal(t, 0, report.ExtremeMoves)
}

func TestAssessQuality_CustomThresholds(t *testing.T) {
	cfg := DefaultQualityConfig()
	cfg.MinDataPoints = 10
	cfg.MinYears = 0.01

	report := AssessQuality("AAPL", barsFromCloses(steadyCloses(20)), cfg)
	assert.True(t, report.Valid)
}
