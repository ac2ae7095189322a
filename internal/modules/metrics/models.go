// Package metrics exposes Sharpe ratio calculations over the HTTP API.
package metrics

import (
	"math"
	"strconv"
	"time"
)

// JSONFloat marshals non-finite values as the strings "NaN", "Infinity",
// and "-Infinity" instead of failing, since encoding/json rejects them.
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// SymbolSharpe is the Sharpe result for a single symbol.
type SymbolSharpe struct {
	Symbol       string    `json:"symbol"`
	SharpeRatio  JSONFloat `json:"sharpe_ratio"`
	Partial      bool      `json:"partial_data"`
	DataPoints   int       `json:"data_points"`
	RiskFreeRate float64   `json:"risk_free_rate"`
	Period       string    `json:"period"`
	FromCache    bool      `json:"from_cache"`
}

// BatchResult is the outcome of a batch Sharpe calculation.
type BatchResult struct {
	BatchID      string                  `json:"batch_id"`
	Results      map[string]SymbolResult `json:"results"`
	Requested    int                     `json:"requested"`
	Failed       []string                `json:"failed_to_fetch,omitempty"`
	RiskFreeRate float64                 `json:"risk_free_rate"`
	Period       string                  `json:"period"`
	Duration     time.Duration           `json:"-"`
	DurationMS   int64                   `json:"duration_ms"`
}

// SymbolResult is one symbol's entry in a batch result.
type SymbolResult struct {
	SharpeRatio JSONFloat `json:"sharpe_ratio"`
	Partial     bool      `json:"partial_data"`
}
