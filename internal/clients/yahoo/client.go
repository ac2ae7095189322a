// Package yahoo provides a Yahoo Finance client for historical price data.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// maxBackoff caps the exponential retry delay.
const maxBackoff = 16 * time.Second

// Client is a Yahoo Finance API client with retry logic
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(maxRetries int, timeout time.Duration, log zerolog.Logger) *Client {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:    "https://query1.finance.yahoo.com",
		maxRetries: maxRetries,
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetHistoricalPrices fetches historical OHLCV data for a symbol.
//
// Supports periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max.
// Failed requests are retried with exponential backoff (1s, 2s, 4s, 8s,
// capped at 16s) up to the configured attempt count.
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol, period string) ([]HistoricalPrice, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		prices, err := c.fetchChart(ctx, symbol, period)
		if err == nil {
			c.log.Debug().
				Str("symbol", symbol).
				Str("period", period).
				Int("count", len(prices)).
				Msg("Fetched historical prices")
			return prices, nil
		}

		lastErr = err
		if attempt < c.maxRetries-1 {
			wait := backoff(attempt)
			c.log.Warn().Err(err).
				Str("symbol", symbol).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("Failed to fetch historical prices, retrying")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// backoff returns the delay before retry attempt+1: 1s, 2s, 4s, 8s, capped.
func backoff(attempt int) time.Duration {
	wait := time.Duration(1<<uint(attempt)) * time.Second
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

// chartResponse mirrors the Yahoo Finance v8 chart API payload. Close and
// adjusted close use pointers because the provider returns null for days
// without an observation.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(ctx context.Context, symbol, period string) ([]HistoricalPrice, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol)

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return []HistoricalPrice{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in response")
		return []HistoricalPrice{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	var adjCloseData []*float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	prices := make([]HistoricalPrice, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		bar := HistoricalPrice{
			Date:     time.Unix(ts, 0).UTC(),
			Open:     deref(quote.Open, i),
			High:     deref(quote.High, i),
			Low:      deref(quote.Low, i),
			Close:    deref(quote.Close, i),
			AdjClose: deref(adjCloseData, i),
		}

		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}

		// Default adjusted close to close when the adjclose block is absent.
		if math.IsNaN(bar.AdjClose) && !math.IsNaN(bar.Close) {
			bar.AdjClose = bar.Close
		}

		prices = append(prices, bar)
	}

	return prices, nil
}

// deref extracts values[i], mapping out-of-range indices and provider nulls
// to NaN (a missing observation, not a zero price).
func deref(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
