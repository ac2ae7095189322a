// Package universe manages the S&P 500 stock list used for screening.
package universe

import "regexp"

// tickerPattern matches plain US tickers: 1-5 uppercase letters, with an
// optional single-letter class suffix (BRK.B, BF.B).
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

// Stock is one constituent of the tracked universe.
type Stock struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// ValidTicker reports whether s looks like a plain US equity ticker.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}
