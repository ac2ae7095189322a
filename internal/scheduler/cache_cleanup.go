package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
)

// CacheCleanupJob evicts expired price cache entries.
type CacheCleanupJob struct {
	cache *marketdata.Cache
	log   zerolog.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache *marketdata.Cache, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache: cache,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run deletes expired cache entries
func (j *CacheCleanupJob) Run() error {
	removed, err := j.cache.CleanupExpired()
	if err != nil {
		return err
	}

	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Cache cleanup complete")
	}
	return nil
}
