package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth handles health check requests. Each registered database is
// pinged; a failing database degrades the response to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	overall := "healthy"

	databases := make(map[string]string, len(s.databases))
	for _, db := range s.databases {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := db.QuickCheck(ctx)
		cancel()

		if err != nil {
			s.log.Warn().Err(err).Str("db", db.Name()).Msg("Health check ping failed")
			databases[db.Name()] = "unreachable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		databases[db.Name()] = "ok"
	}

	response := map[string]interface{}{
		"status":    overall,
		"version":   "1.0.0",
		"service":   "sharpewatch",
		"databases": databases,
	}

	s.writeJSON(w, status, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
