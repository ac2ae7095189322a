package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
	"github.com/quantfolio/sharpewatch/pkg/sharpe"
)

// ErrSymbolNotFetched is returned when price data for a symbol could not
// be retrieved.
var ErrSymbolNotFetched = errors.New("failed to fetch price data for symbol")

// MarketData is the slice of the market data service this module needs.
type MarketData interface {
	GetStockData(ctx context.Context, tickers []string, period string) (*marketdata.FetchResult, error)
}

// Universe provides the ticker list for index-wide calculations.
type Universe interface {
	Tickers() ([]string, error)
}

// Service computes Sharpe ratios on top of fetched market data
type Service struct {
	market   MarketData
	universe Universe
	params   sharpe.Params
	log      zerolog.Logger
}

// NewService creates a new metrics service using the given default
// calculation parameters.
func NewService(market MarketData, universe Universe, params sharpe.Params, log zerolog.Logger) *Service {
	return &Service{
		market:   market,
		universe: universe,
		params:   params,
		log:      log.With().Str("service", "metrics").Logger(),
	}
}

// DefaultParams returns the service's default calculation parameters.
func (s *Service) DefaultParams() sharpe.Params {
	return s.params
}

// SharpeForSymbol fetches price history for one symbol and computes its
// Sharpe ratio.
func (s *Service) SharpeForSymbol(ctx context.Context, symbol, period string, p sharpe.Params) (*SymbolSharpe, error) {
	fetch, err := s.market.GetStockData(ctx, []string{symbol}, period)
	if err != nil {
		return nil, err
	}

	prices := fetch.ClosingPrices(symbol)
	if prices == nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFetched, symbol)
	}

	result, err := sharpe.CalculateSharpeRatio(prices, p)
	if err != nil {
		return nil, err
	}

	points := 0
	for _, v := range prices {
		if !math.IsNaN(v) {
			points++
		}
	}

	return &SymbolSharpe{
		Symbol:       symbol,
		SharpeRatio:  JSONFloat(result.Ratio),
		Partial:      result.Partial,
		DataPoints:   points,
		RiskFreeRate: p.RiskFreeRate,
		Period:       period,
		FromCache:    fetch.FromCache,
	}, nil
}

// SharpeForBatch fetches price history for a set of symbols and computes
// Sharpe ratios for all of them. Symbols that fail to fetch are listed in
// the result without aborting the batch; an invalid risk-free rate fails
// the whole batch before any fetching happens.
func (s *Service) SharpeForBatch(ctx context.Context, symbols []string, period string, p sharpe.Params) (*BatchResult, error) {
	if err := sharpe.ValidateRiskFreeRate(p.RiskFreeRate); err != nil {
		return nil, err
	}

	start := time.Now()

	fetch, err := s.market.GetStockData(ctx, symbols, period)
	if err != nil {
		return nil, err
	}

	priceData := make(map[string][]float64, len(fetch.Succeeded))
	for _, symbol := range fetch.Succeeded {
		priceData[symbol] = fetch.ClosingPrices(symbol)
	}

	ratios, err := sharpe.BatchCalculateSharpeRatios(priceData, p)
	if err != nil {
		return nil, err
	}

	results := make(map[string]SymbolResult, len(ratios))
	for symbol, r := range ratios {
		results[symbol] = SymbolResult{
			SharpeRatio: JSONFloat(r.Ratio),
			Partial:     r.Partial,
		}
	}

	batch := &BatchResult{
		BatchID:      uuid.New().String(),
		Results:      results,
		Requested:    len(symbols),
		Failed:       fetch.Failed,
		RiskFreeRate: p.RiskFreeRate,
		Period:       period,
		Duration:     time.Since(start),
	}
	batch.DurationMS = batch.Duration.Milliseconds()

	s.log.Info().
		Str("batch_id", batch.BatchID).
		Int("requested", batch.Requested).
		Int("calculated", len(results)).
		Int("failed", len(batch.Failed)).
		Dur("duration", batch.Duration).
		Msg("Batch Sharpe calculation complete")

	return batch, nil
}

// SharpeForUniverse computes Sharpe ratios for the stored stock universe,
// optionally limited to the first maxTickers symbols.
func (s *Service) SharpeForUniverse(ctx context.Context, maxTickers int, period string, p sharpe.Params) (*BatchResult, error) {
	tickers, err := s.universe.Tickers()
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	if len(tickers) == 0 {
		return nil, errors.New("universe is empty, load it first")
	}

	if maxTickers > 0 && maxTickers < len(tickers) {
		tickers = tickers[:maxTickers]
	}

	return s.SharpeForBatch(ctx, tickers, period, p)
}
