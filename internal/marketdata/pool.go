package marketdata

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/guttosm/stockcast/internal/domain/models"
)

// Pooled bounds how many upstream fetches run at once. Waiting for a slot
// honours the caller's context, so a saturated pool degrades a request
// instead of stalling it.
type Pooled struct {
	next Fetcher
	sem  *semaphore.Weighted
}

// NewPooled wraps next with a pool of workers slots (minimum 1).
func NewPooled(next Fetcher, workers int) *Pooled {
	if workers < 1 {
		workers = 1
	}
	return &Pooled{next: next, sem: semaphore.NewWeighted(int64(workers))}
}

func (p *Pooled) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("fetch pool: %w", err)
	}
	defer p.sem.Release(1)
	return p.next.FetchPriceSeries(ctx, ticker, period)
}
