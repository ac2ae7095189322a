package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantfolio/sharpewatch/internal/database"
	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
	"github.com/quantfolio/sharpewatch/internal/modules/universe"
)

// SystemHandlers handles system monitoring and cache maintenance endpoints
type SystemHandlers struct {
	log          zerolog.Logger
	dataDir      string
	cache        *marketdata.Cache
	universeRepo *universe.Repository
	databases    []*database.DB
	startedAt    time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(dataDir string, cache *marketdata.Cache, universeRepo *universe.Repository, databases []*database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:          log.With().Str("component", "system_handlers").Logger(),
		dataDir:      dataDir,
		cache:        cache,
		universeRepo: universeRepo,
		databases:    databases,
		startedAt:    time.Now(),
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	UniverseCount int              `json:"universe_count"`
	CPUPercent    float64          `json:"cpu_percent"`
	RAMPercent    float64          `json:"ram_percent"`
	Goroutines    int              `json:"goroutines"`
	AllocMB       uint64           `json:"alloc_mb"`
	DataDirMB     float64          `json:"data_dir_mb"`
	Databases     []DatabaseStatus `json:"databases"`
}

// DatabaseStatus reports health and size for one database file
type DatabaseStatus struct {
	Name      string  `json:"name"`
	Profile   string  `json:"profile"`
	Path      string  `json:"path"`
	Healthy   bool    `json:"healthy"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
}

// HandleSystemStatus returns process and host statistics
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuPct, ramPct := h.getSystemStats()

	universeCount := 0
	if h.universeRepo != nil {
		if n, err := h.universeRepo.Count(); err == nil {
			universeCount = n
		} else {
			h.log.Warn().Err(err).Msg("Failed to count universe")
		}
	}

	response := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		UniverseCount: universeCount,
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
		Goroutines:    runtime.NumGoroutine(),
		AllocMB:       m.Alloc / 1024 / 1024,
		DataDirMB:     h.getDirSize(h.dataDir),
		Databases:     h.databaseStatuses(r.Context()),
	}

	h.writeJSON(w, response)
}

// databaseStatuses pings each registered database and collects file sizes.
// Errors degrade the entry instead of failing the status call.
func (h *SystemHandlers) databaseStatuses(ctx context.Context) []DatabaseStatus {
	statuses := make([]DatabaseStatus, 0, len(h.databases))
	for _, db := range h.databases {
		status := DatabaseStatus{
			Name:    db.Name(),
			Profile: string(db.Profile()),
			Path:    db.Path(),
			Healthy: true,
		}

		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := db.QuickCheck(checkCtx); err != nil {
			h.log.Warn().Err(err).Str("db", db.Name()).Msg("Database ping failed")
			status.Healthy = false
		}
		cancel()

		if stats, err := db.GetStats(); err == nil {
			status.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			status.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
		} else {
			h.log.Warn().Err(err).Str("db", db.Name()).Msg("Failed to get database stats")
		}

		statuses = append(statuses, status)
	}
	return statuses
}

// HandleCacheStats returns price cache statistics
// GET /api/system/cache/stats
func (h *SystemHandlers) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		http.Error(w, "Cache is disabled", http.StatusServiceUnavailable)
		return
	}

	stats, err := h.cache.Stats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get cache stats")
		http.Error(w, "Failed to get cache stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats)
}

// HandleCacheCleanup evicts expired cache entries
// POST /api/system/cache/cleanup
func (h *SystemHandlers) HandleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		http.Error(w, "Cache is disabled", http.StatusServiceUnavailable)
		return
	}

	removed, err := h.cache.CleanupExpired()
	if err != nil {
		h.log.Error().Err(err).Msg("Cache cleanup failed")
		http.Error(w, "Cache cleanup failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"status":  "success",
		"removed": removed,
	})
}

// HandleCacheClear removes all cache entries
// DELETE /api/system/cache
func (h *SystemHandlers) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		http.Error(w, "Cache is disabled", http.StatusServiceUnavailable)
		return
	}

	removed, err := h.cache.Clear()
	if err != nil {
		h.log.Error().Err(err).Msg("Cache clear failed")
		http.Error(w, "Cache clear failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"status":  "success",
		"removed": removed,
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) to avoid blocking the API call
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
