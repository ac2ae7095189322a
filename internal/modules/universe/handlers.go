package universe

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the universe API
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new universe handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "universe_handlers").Logger(),
	}
}

// HandleGetUniverse returns the full stock universe
// GET /api/universe
func (h *Handlers) HandleGetUniverse(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch universe")
		http.Error(w, "Failed to fetch universe", http.StatusInternalServerError)
		return
	}

	if sector := r.URL.Query().Get("sector"); sector != "" {
		stocks, err = h.repo.GetBySector(sector)
		if err != nil {
			h.log.Error().Err(err).Str("sector", sector).Msg("Failed to fetch sector")
			http.Error(w, "Failed to fetch universe", http.StatusInternalServerError)
			return
		}
	}

	response := map[string]interface{}{
		"count":  len(stocks),
		"stocks": stocks,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// HandleGetSectors returns stock counts per sector
// GET /api/universe/sectors
func (h *Handlers) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.SectorCounts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch sector counts")
		http.Error(w, "Failed to fetch sectors", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"sectors": counts,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
