package datasource

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/yourusername/value-finder/internal/models"
)

const historyCacheKey = "results"

// CachedHistorySource memoises another source's results for a TTL.
// Scheduled runs reuse the same season history between fetches.
type CachedHistorySource struct {
	source HistorySource
	cache  *cache.Cache
}

// NewCachedHistorySource wraps source. A non-positive ttl disables caching.
func NewCachedHistorySource(source HistorySource, ttl time.Duration) HistorySource {
	if ttl <= 0 {
		return source
	}
	return &CachedHistorySource{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Name returns the wrapped source name
func (c *CachedHistorySource) Name() string {
	return c.source.Name()
}

// FetchResults returns cached results or fetches them
func (c *CachedHistorySource) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	if cached, ok := c.cache.Get(historyCacheKey); ok {
		return cached.([]models.MatchResult), nil
	}
	results, err := c.source.FetchResults(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(historyCacheKey, results)
	return results, nil
}

// Invalidate drops the cached results
func (c *CachedHistorySource) Invalidate() {
	c.cache.Delete(historyCacheKey)
}
