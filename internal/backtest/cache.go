package backtest

import (
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// CacheKey identifies a cached backtest result
type CacheKey struct {
	LeagueID      int64
	Year          string
	MinTrainGames int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%d:%s:%d", k.LeagueID, k.Year, k.MinTrainGames)
}

// ResultCache keeps complete backtest results in memory
type ResultCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewResultCache creates a cache. A ttl of zero keeps results until invalidated.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		return &ResultCache{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &ResultCache{cache: cache.New(ttl, ttl*2), ttl: ttl}
}

// Get returns a copy of the cached result flagged as cached
func (c *ResultCache) Get(key CacheKey) (*models.BacktestResult, bool) {
	value, found := c.cache.Get(key.String())
	if !found {
		return nil, false
	}
	result := *value.(*models.BacktestResult)
	result.Cached = true
	return &result, true
}

// Set stores a result
func (c *ResultCache) Set(key CacheKey, result *models.BacktestResult) {
	c.cache.Set(key.String(), result, c.ttl)
}

// Invalidate removes every cached result of a league
func (c *ResultCache) Invalidate(leagueID int64) {
	prefix := fmt.Sprintf("%d:", leagueID)
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// ItemCount returns the number of cached results
func (c *ResultCache) ItemCount() int {
	return c.cache.ItemCount()
}
