// Package marketdata fetches daily price history and layers retry, bounded
// concurrency, archiving and caching around the upstream source.
package marketdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/stockcast/internal/domain/models"
)

var (
	// ErrDataUnavailable means no usable history could be obtained.
	ErrDataUnavailable = errors.New("price data unavailable")
	// ErrNoData means the source answered but has nothing for the symbol; it is not retried.
	ErrNoData = fmt.Errorf("%w: no data for symbol", ErrDataUnavailable)
)

// Fetcher returns the daily history of ticker over period (e.g. "6mo").
// Implementations may block and may fail transiently.
type Fetcher interface {
	FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ticker, period string) (*models.PriceSeries, error)

func (f FetcherFunc) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	return f(ctx, ticker, period)
}
