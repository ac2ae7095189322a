package marketdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/sharpewatch/internal/clients/yahoo"
)

var (
	// ErrNoTickers is returned when a fetch request contains no usable tickers.
	ErrNoTickers = errors.New("no tickers provided")

	// ErrAllTickersFailed is returned when every requested ticker failed to fetch.
	ErrAllTickersFailed = errors.New("all tickers failed to fetch")
)

// PriceClient fetches historical prices for a single symbol.
type PriceClient interface {
	GetHistoricalPrices(ctx context.Context, symbol, period string) ([]yahoo.HistoricalPrice, error)
}

// Service coordinates price fetching, caching, and quality validation
type Service struct {
	client  PriceClient
	cache   *Cache
	quality QualityConfig
	log     zerolog.Logger
}

// NewService creates a new market data service. The cache may be nil to
// disable caching.
func NewService(client PriceClient, cache *Cache, quality QualityConfig, log zerolog.Logger) *Service {
	return &Service{
		client:  client,
		cache:   cache,
		quality: quality,
		log:     log.With().Str("service", "marketdata").Logger(),
	}
}

// GetStockData fetches daily price history for the given tickers over the
// given period. Cached results are served when fresh. Tickers that fail to
// fetch are reported in FetchResult.Failed without failing the whole call;
// the call errors only when no tickers were given or every ticker failed.
func (s *Service) GetStockData(ctx context.Context, tickers []string, period string) (*FetchResult, error) {
	cleaned := cleanTickers(tickers)
	if len(cleaned) == 0 {
		return nil, ErrNoTickers
	}

	start := time.Now()
	key := CacheKey(cleaned, period)

	if s.cache != nil {
		cached, err := s.cache.Get(key)
		if err != nil {
			s.log.Warn().Err(err).Msg("Cache read failed, falling through to fetch")
		} else if cached != nil {
			result := resultFromData(cached, cleaned, s.quality)
			result.FromCache = true
			result.FetchDuration = time.Since(start)
			s.log.Debug().Int("tickers", len(cleaned)).Str("period", period).Msg("Served price data from cache")
			return result, nil
		}
	}

	data := make(map[string]TickerData, len(cleaned))
	for _, ticker := range cleaned {
		history, err := s.client.GetHistoricalPrices(ctx, ticker, period)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch ticker")
			continue
		}
		if len(history) == 0 {
			s.log.Warn().Str("ticker", ticker).Msg("Provider returned no data for ticker")
			continue
		}

		bars := make([]PriceBar, len(history))
		for i, p := range history {
			bars[i] = barFromHistorical(p)
		}
		data[ticker] = TickerData{Ticker: ticker, Bars: bars}
	}

	if len(data) == 0 {
		return nil, ErrAllTickersFailed
	}

	if s.cache != nil {
		if err := s.cache.Put(key, cleaned, period, data); err != nil {
			s.log.Warn().Err(err).Msg("Failed to store price data in cache")
		}
	}

	result := resultFromData(data, cleaned, s.quality)
	result.FetchDuration = time.Since(start)

	s.log.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Str("period", period).
		Dur("duration", result.FetchDuration).
		Msg("Fetched stock data")

	return result, nil
}

// ClosingPrices extracts the daily close series for one ticker from a fetch
// result. Missing observations stay in the series as NaN so downstream
// return calculations see the gaps.
func (r *FetchResult) ClosingPrices(ticker string) []float64 {
	td, ok := r.Data[ticker]
	if !ok {
		return nil
	}

	prices := make([]float64, len(td.Bars))
	for i, bar := range td.Bars {
		prices[i] = bar.Close
	}
	return prices
}

func resultFromData(data map[string]TickerData, requested []string, cfg QualityConfig) *FetchResult {
	result := &FetchResult{
		Data:    data,
		Quality: make(map[string]QualityReport, len(data)),
	}

	for _, ticker := range requested {
		td, ok := data[ticker]
		if !ok {
			result.Failed = append(result.Failed, ticker)
			continue
		}
		result.Succeeded = append(result.Succeeded, ticker)
		result.Quality[ticker] = AssessQuality(ticker, td.Bars, cfg)
	}

	return result
}

// cleanTickers uppercases, trims, and deduplicates tickers, preserving
// first-seen order.
func cleanTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	var cleaned []string
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		cleaned = append(cleaned, t)
	}
	return cleaned
}
