package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/sharpewatch/internal/database"
	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
	"github.com/quantfolio/sharpewatch/internal/modules/universe"
)

func setupTestDatabases(t *testing.T) (*database.DB, *database.DB) {
	dir := t.TempDir()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(dir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { cacheDB.Close() })
	require.NoError(t, cacheDB.Migrate())

	universeDB, err := database.New(database.Config{
		Path:    filepath.Join(dir, "universe.db"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	require.NoError(t, err)
	t.Cleanup(func() { universeDB.Close() })
	require.NoError(t, universeDB.Migrate())

	return cacheDB, universeDB
}

func setupSystemHandlers(t *testing.T) (*SystemHandlers, *sql.DB) {
	cacheDB, universeDB := setupTestDatabases(t)

	cache := marketdata.NewCache(cacheDB.Conn(), time.Hour, zerolog.Nop())
	repo := universe.NewRepository(universeDB.Conn(), zerolog.Nop())
	dbs := []*database.DB{cacheDB, universeDB}
	handlers := NewSystemHandlers(t.TempDir(), cache, repo, dbs, zerolog.Nop())
	return handlers, cacheDB.Conn()
}

func TestHandleSystemStatus(t *testing.T) {
	handlers, _ := setupSystemHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	handlers.HandleSystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "running", status.Status)
	assert.Greater(t, status.Goroutines, 0)

	require.Len(t, status.Databases, 2)
	for _, db := range status.Databases {
		assert.True(t, db.Healthy, "database %s should be healthy", db.Name)
		assert.NotEmpty(t, db.Path)
		assert.Greater(t, db.SizeMB+db.WALSizeMB, 0.0, "schema pages should be on disk for %s", db.Name)
	}
}

func TestHandleHealth(t *testing.T) {
	cacheDB, universeDB := setupTestDatabases(t)

	s := &Server{
		log:       zerolog.Nop(),
		databases: []*database.DB{cacheDB, universeDB},
	}

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string            `json:"status"`
		Databases map[string]string `json:"databases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Databases["cache"])
	assert.Equal(t, "ok", body.Databases["universe"])
}

func TestHandleHealth_UnreachableDatabase(t *testing.T) {
	cacheDB, universeDB := setupTestDatabases(t)
	require.NoError(t, cacheDB.Close())

	s := &Server{
		log:       zerolog.Nop(),
		databases: []*database.DB{cacheDB, universeDB},
	}

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status    string            `json:"status"`
		Databases map[string]string `json:"databases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unreachable", body.Databases["cache"])
	assert.Equal(t, "ok", body.Databases["universe"])
}

func TestHandleCacheStats(t *testing.T) {
	handlers, _ := setupSystemHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/cache/stats", nil)
	rec := httptest.NewRecorder()
	handlers.HandleCacheStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats marketdata.CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(0), stats.Entries)
}

func TestHandleCacheCleanupAndClear(t *testing.T) {
	handlers, db := setupSystemHandlers(t)

	stale := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	fresh := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(
		"INSERT INTO price_cache (cache_key, tickers, period, payload, size_bytes, created_at) VALUES "+
			"('stale', 'AAPL', '1y', X'80', 1, ?), ('fresh', 'MSFT', '1y', X'80', 1, ?)",
		stale, fresh,
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handlers.HandleCacheCleanup(rec, httptest.NewRequest(http.MethodPost, "/api/system/cache/cleanup", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_cache").Scan(&count))
	assert.Equal(t, 1, count, "cleanup should only remove expired entries")

	rec = httptest.NewRecorder()
	handlers.HandleCacheClear(rec, httptest.NewRequest(http.MethodDelete, "/api/system/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_cache").Scan(&count))
	assert.Equal(t, 0, count)
}
