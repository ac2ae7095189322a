package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
	"github.com/quantfolio/sharpewatch/internal/modules/universe"
	"github.com/quantfolio/sharpewatch/pkg/sharpe"
)

const defaultPeriod = "5y"

// Handlers contains HTTP handlers for the Sharpe API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new metrics handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "metrics_handlers").Logger(),
	}
}

// batchRequest is the POST /api/sharpe/batch body.
type batchRequest struct {
	Symbols      []string `json:"symbols"`
	Period       string   `json:"period,omitempty"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	MinYears     *float64 `json:"min_years,omitempty"`
}

// HandleGetSharpe computes the Sharpe ratio for a single symbol
// GET /api/sharpe/{symbol}?period=5y&risk_free_rate=0.015&min_years=3
func (h *Handlers) HandleGetSharpe(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if !universe.ValidTicker(symbol) {
		http.Error(w, "Invalid symbol", http.StatusBadRequest)
		return
	}

	params, period, err := h.paramsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.SharpeForSymbol(r.Context(), symbol, period, params)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleBatchSharpe computes Sharpe ratios for a list of symbols
// POST /api/sharpe/batch
func (h *Handlers) HandleBatchSharpe(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Symbols) == 0 {
		http.Error(w, "No symbols provided", http.StatusBadRequest)
		return
	}

	params := h.service.DefaultParams()
	if req.RiskFreeRate != nil {
		params.RiskFreeRate = *req.RiskFreeRate
	}
	if req.MinYears != nil {
		params.MinYears = *req.MinYears
	}

	period := req.Period
	if period == "" {
		period = defaultPeriod
	}

	result, err := h.service.SharpeForBatch(r.Context(), req.Symbols, period, params)
	if err != nil {
		h.writeError(w, "", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleUniverseSharpe computes Sharpe ratios for the stored universe
// GET /api/sharpe/sp500?max_tickers=50&period=5y
func (h *Handlers) HandleUniverseSharpe(w http.ResponseWriter, r *http.Request) {
	params, period, err := h.paramsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxTickers := 0
	if raw := r.URL.Query().Get("max_tickers"); raw != "" {
		maxTickers, err = strconv.Atoi(raw)
		if err != nil || maxTickers < 0 {
			http.Error(w, "Invalid max_tickers", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.SharpeForUniverse(r.Context(), maxTickers, period, params)
	if err != nil {
		h.writeError(w, "", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// paramsFromQuery builds calculation parameters from query string overrides.
func (h *Handlers) paramsFromQuery(r *http.Request) (sharpe.Params, string, error) {
	params := h.service.DefaultParams()

	query := r.URL.Query()
	if raw := query.Get("risk_free_rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, "", errors.New("invalid risk_free_rate")
		}
		params.RiskFreeRate = rate
	}

	if raw := query.Get("min_years"); raw != "" {
		years, err := strconv.ParseFloat(raw, 64)
		if err != nil || years <= 0 {
			return params, "", errors.New("invalid min_years")
		}
		params.MinYears = years
	}

	period := query.Get("period")
	if period == "" {
		period = defaultPeriod
	}

	return params, period, nil
}

// writeError maps calculation and fetch errors to HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, symbol string, err error) {
	var status int
	switch {
	case errors.Is(err, sharpe.ErrRateOutOfRange), errors.Is(err, sharpe.ErrInvalidRate),
		errors.Is(err, marketdata.ErrNoTickers):
		status = http.StatusBadRequest
	case errors.Is(err, sharpe.ErrInsufficientPoints), errors.Is(err, sharpe.ErrNonPositivePrice):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrSymbolNotFetched), errors.Is(err, marketdata.ErrAllTickersFailed):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Sharpe calculation failed")
	} else {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Sharpe request rejected")
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
