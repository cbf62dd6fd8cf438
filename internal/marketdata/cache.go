package marketdata

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/guttosm/stockcast/internal/domain/models"
)

// Cached memoizes successful fetches per ticker and period for a TTL.
// Failures are never cached.
type Cached struct {
	next  Fetcher
	cache *cache.Cache
}

// NewCached wraps next. ttl <= 0 disables caching.
func NewCached(next Fetcher, ttl time.Duration) *Cached {
	c := &Cached{next: next}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *Cached) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	if c.cache == nil {
		return c.next.FetchPriceSeries(ctx, ticker, period)
	}
	key := ticker + "|" + period
	if v, ok := c.cache.Get(key); ok {
		return v.(*models.PriceSeries), nil
	}
	s, err := c.next.FetchPriceSeries(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, s)
	return s, nil
}
