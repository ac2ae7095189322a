package marketdata

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores fetched price histories in the cache database. Payloads are
// msgpack-encoded maps of ticker to TickerData, keyed by a hash of the
// ticker set and period. Entries older than the TTL are evicted on read.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger

	hits   int64
	misses int64
}

// NewCache creates a price cache backed by the given database
func NewCache(db *sql.DB, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("repo", "price_cache").Logger(),
	}
}

// CacheKey builds a deterministic key for a ticker set and period. Ticker
// order does not matter.
func CacheKey(tickers []string, period string) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(strings.Join(sorted, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(period))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached data for a key, or nil when the entry is missing,
// expired, or undecodable. Expired and corrupt entries are deleted.
func (c *Cache) Get(key string) (map[string]TickerData, error) {
	var payload []byte
	var createdAt string

	query := "SELECT payload, created_at FROM price_cache WHERE cache_key = ?"
	err := c.db.QueryRow(query, key).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price cache: %w", err)
	}

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache timestamp: %w", err)
	}

	if time.Since(created) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		if _, err := c.db.Exec("DELETE FROM price_cache WHERE cache_key = ?", key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to evict expired cache entry")
		}
		return nil, nil
	}

	var data map[string]TickerData
	if err := msgpack.Unmarshal(payload, &data); err != nil {
		atomic.AddInt64(&c.misses, 1)
		c.log.Warn().Err(err).Str("key", key).Msg("Evicting corrupt cache entry")
		if _, err := c.db.Exec("DELETE FROM price_cache WHERE cache_key = ?", key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to evict corrupt cache entry")
		}
		return nil, nil
	}

	atomic.AddInt64(&c.hits, 1)
	return data, nil
}

// Put stores data under the given key, replacing any previous entry.
func (c *Cache) Put(key string, tickers []string, period string, data map[string]TickerData) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO price_cache
		(cache_key, tickers, period, payload, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.Exec(query,
		key,
		strings.Join(tickers, ","),
		period,
		payload,
		len(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	c.log.Debug().Str("key", key).Int("size_bytes", len(payload)).Msg("Stored price cache entry")
	return nil
}

// CleanupExpired deletes all entries older than the TTL and returns how
// many were removed.
func (c *Cache) CleanupExpired() (int64, error) {
	cutoff := time.Now().UTC().Add(-c.ttl).Format(time.RFC3339)

	result, err := c.db.Exec("DELETE FROM price_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired cache entries: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		c.log.Info().Int64("removed", removed).Msg("Evicted expired cache entries")
	}
	return removed, nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() (int64, error) {
	result, err := c.db.Exec("DELETE FROM price_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear price cache: %w", err)
	}

	removed, _ := result.RowsAffected()
	c.log.Info().Int64("removed", removed).Msg("Cleared price cache")
	return removed, nil
}

// CacheStats summarizes cache usage.
type CacheStats struct {
	Entries    int64   `json:"entries"`
	TotalBytes int64   `json:"total_bytes"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	TTLHours   float64 `json:"ttl_hours"`
}

// Stats returns entry counts, total payload size, and hit/miss counters.
func (c *Cache) Stats() (CacheStats, error) {
	var stats CacheStats
	stats.TTLHours = c.ttl.Hours()
	stats.Hits = atomic.LoadInt64(&c.hits)
	stats.Misses = atomic.LoadInt64(&c.misses)

	query := "SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM price_cache"
	if err := c.db.QueryRow(query).Scan(&stats.Entries, &stats.TotalBytes); err != nil {
		return stats, fmt.Errorf("failed to query cache stats: %w", err)
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats, nil
}
