package yahoo

import (
	"time"
)

// HistoricalPrice is a single daily OHLCV bar.
//
// Fields the provider returned as null carry NaN rather than zero, so a gap
// in the series stays distinguishable from a genuine price.
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}
