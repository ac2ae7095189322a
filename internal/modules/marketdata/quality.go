package marketdata

import (
	"fmt"
	"math"
)

// QualityConfig sets the thresholds used when validating a ticker's history.
type QualityConfig struct {
	MinDataPoints        int     // minimum non-missing closes
	MinYears             float64 // minimum span of usable history
	MaxMissingPct        float64 // missing fraction above this invalidates
	ExtremeMoveThreshold float64 // single-day move counted as extreme
	MaxExtremeMoves      int     // extreme move count above this invalidates
	TradingDaysPerYear   int
}

// DefaultQualityConfig returns the standard validation thresholds.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinDataPoints:        252,
		MinYears:             3.0,
		MaxMissingPct:        0.05,
		ExtremeMoveThreshold: 0.50,
		MaxExtremeMoves:      5,
		TradingDaysPerYear:   252,
	}
}

// AssessQuality inspects a ticker's closing prices and reports whether the
// series is usable. Extreme moves are day-over-day changes larger than the
// configured threshold, measured between consecutive non-missing closes.
func AssessQuality(ticker string, bars []PriceBar, cfg QualityConfig) QualityReport {
	report := QualityReport{
		Ticker:      ticker,
		TotalPoints: len(bars),
		Valid:       true,
	}

	if len(bars) == 0 {
		report.Valid = false
		report.Issues = append(report.Issues, "no data")
		return report
	}

	var prevClose float64 = math.NaN()
	for _, bar := range bars {
		if math.IsNaN(bar.Close) {
			report.MissingPoints++
			continue
		}
		if !math.IsNaN(prevClose) && prevClose > 0 {
			change := math.Abs(bar.Close-prevClose) / prevClose
			if change > cfg.ExtremeMoveThreshold {
				report.ExtremeMoves++
			}
		}
		prevClose = bar.Close
	}

	report.MissingPct = float64(report.MissingPoints) / float64(report.TotalPoints)
	report.YearsOfData = float64(report.TotalPoints-report.MissingPoints) / float64(cfg.TradingDaysPerYear)

	usable := report.TotalPoints - report.MissingPoints
	if usable < cfg.MinDataPoints {
		report.Valid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("only %d usable points, need %d", usable, cfg.MinDataPoints))
	}

	if report.YearsOfData < cfg.MinYears {
		report.Valid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("only %.1f years of data, need %.1f", report.YearsOfData, cfg.MinYears))
	}

	if report.MissingPct > cfg.MaxMissingPct {
		report.Valid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("%.1f%% of points missing, limit is %.1f%%",
				report.MissingPct*100, cfg.MaxMissingPct*100))
	}

	if report.ExtremeMoves > cfg.MaxExtremeMoves {
		report.Valid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("%d extreme single-day moves, limit is %d",
				report.ExtremeMoves, cfg.MaxExtremeMoves))
	}

	return report
}
