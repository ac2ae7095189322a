// Package marketdata fetches, caches, and validates historical price data.
package marketdata

import (
	"time"

	"github.com/quantfolio/sharpewatch/internal/clients/yahoo"
)

// PriceBar is a single daily observation for one ticker. A NaN close marks
// a day where the provider had no data for this ticker.
type PriceBar struct {
	Date     time.Time `json:"date" msgpack:"date"`
	Open     float64   `json:"open" msgpack:"open"`
	High     float64   `json:"high" msgpack:"high"`
	Low      float64   `json:"low" msgpack:"low"`
	Close    float64   `json:"close" msgpack:"close"`
	AdjClose float64   `json:"adj_close" msgpack:"adj_close"`
	Volume   int64     `json:"volume" msgpack:"volume"`
}

// TickerData holds the full price history for one ticker.
type TickerData struct {
	Ticker string     `json:"ticker" msgpack:"ticker"`
	Bars   []PriceBar `json:"bars" msgpack:"bars"`
}

// FetchResult is the outcome of a multi-ticker fetch.
type FetchResult struct {
	Data          map[string]TickerData    `json:"-"`
	Succeeded     []string                 `json:"succeeded"`
	Failed        []string                 `json:"failed"`
	FromCache     bool                     `json:"from_cache"`
	Quality       map[string]QualityReport `json:"quality,omitempty"`
	FetchDuration time.Duration            `json:"fetch_duration"`
}

// QualityReport describes how usable a ticker's history is.
type QualityReport struct {
	Ticker        string   `json:"ticker"`
	TotalPoints   int      `json:"total_points"`
	MissingPoints int      `json:"missing_points"`
	MissingPct    float64  `json:"missing_pct"`
	ExtremeMoves  int      `json:"extreme_moves"`
	YearsOfData   float64  `json:"years_of_data"`
	Valid         bool     `json:"valid"`
	Issues        []string `json:"issues,omitempty"`
}

func barFromHistorical(p yahoo.HistoricalPrice) PriceBar {
	return PriceBar{
		Date:     p.Date,
		Open:     p.Open,
		High:     p.High,
		Low:      p.Low,
		Close:    p.Close,
		AdjClose: p.AdjClose,
		Volume:   p.Volume,
	}
}
