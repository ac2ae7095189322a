package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNewAndMigrate_Cache(t *testing.T) {
	db := newTestDB(t, "cache", ProfileCache)
	require.NoError(t, db.Migrate())

	// Migration is idempotent
	require.NoError(t, db.Migrate())

	_, err := db.Conn().Exec(
		"INSERT INTO price_cache (cache_key, tickers, period, payload, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"k", "AAPL", "1y", []byte{0x80}, 1, "2026-01-01T00:00:00Z",
	)
	assert.NoError(t, err)
}

func TestNewAndMigrate_Universe(t *testing.T) {
	db := newTestDB(t, "universe", ProfileStandard)
	require.NoError(t, db.Migrate())

	_, err := db.Conn().Exec(
		"INSERT INTO stocks (ticker, name, sector, loaded_at) VALUES (?, ?, ?, ?)",
		"AAPL", "Apple Inc.", "Information Technology", "2026-01-01T00:00:00Z",
	)
	assert.NoError(t, err)
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newTestDB(t, "something_else", ProfileStandard)
	assert.NoError(t, db.Migrate())
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t, "cache", ProfileCache)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "universe", ProfileStandard)
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO stocks (ticker, name, sector, loaded_at) VALUES (?, ?, ?, ?)",
			"MSFT", "Microsoft", "Information Technology", "2026-01-01T00:00:00Z",
		)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM stocks").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t, "cache", ProfileCache)
	require.NoError(t, db.Migrate())

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageSize, int64(0))
	assert.Greater(t, stats.SizeBytes, int64(0))
}
