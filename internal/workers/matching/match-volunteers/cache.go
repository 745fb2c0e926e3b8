// internal/workers/matching/match-volunteers/cache.go
package matchvolunteers

import (
	"context"
	"time"

	"volunteer-workers/internal/common/database"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/location"
)

func ProjectCacheKey(projectID string) string {
	return "project:location:" + projectID
}

// CachedFinder is a read-through Redis cache in front of another
// ProjectFinder. Cache failures fall back to the wrapped finder; missing
// projects are never cached.
type CachedFinder struct {
	next   location.ProjectFinder
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedFinder(next location.ProjectFinder, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedFinder {
	return &CachedFinder{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

func (f *CachedFinder) FindProjectLocation(ctx context.Context, projectID string) (location.Descriptor, error) {
	if f.cache == nil {
		return f.next.FindProjectLocation(ctx, projectID)
	}

	key := ProjectCacheKey(projectID)

	var cached location.Descriptor
	found, err := f.cache.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.ProjectCacheLookups.WithLabelValues("error").Inc()
		f.logger.Warn("project cache read failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	case found:
		metrics.ProjectCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.ProjectCacheLookups.WithLabelValues("miss").Inc()
	}

	d, err := f.next.FindProjectLocation(ctx, projectID)
	if err != nil {
		return location.Descriptor{}, err
	}

	if err := f.cache.SetJSON(ctx, key, d, f.ttl); err != nil {
		f.logger.Warn("project cache write failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
	return d, nil
}
