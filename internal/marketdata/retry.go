package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/metrics"
)

// Retrying retries a Fetcher a fixed number of times with a constant delay,
// bounding each attempt with its own timeout. ErrNoData is not retried.
type Retrying struct {
	next           Fetcher
	attempts       int
	delay          time.Duration
	attemptTimeout time.Duration
	log            zerolog.Logger
}

// NewRetrying wraps next. attempts < 1 is treated as 1; a non-positive delay retries immediately.
func NewRetrying(next Fetcher, attempts int, delay, attemptTimeout time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = time.Nanosecond // retry.NewConstant panics on non-positive durations
	}
	return &Retrying{
		next:           next,
		attempts:       attempts,
		delay:          delay,
		attemptTimeout: attemptTimeout,
		log:            logger.With("fetch"),
	}
}

func (r *Retrying) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	backoff := retry.WithMaxRetries(uint64(r.attempts-1), retry.NewConstant(r.delay))

	var (
		out     *models.PriceSeries
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		actx := ctx
		if r.attemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
			defer cancel()
		}

		s, err := r.next.FetchPriceSeries(actx, ticker, period)
		if err == nil {
			metrics.FetchAttemptsTotal.WithLabelValues("success").Inc()
			out = s
			return nil
		}

		metrics.FetchAttemptsTotal.WithLabelValues("failure").Inc()
		r.log.Warn().Err(err).Str("ticker", ticker).Int("attempt", attempt).Int("max_attempts", r.attempts).Msg("fetch attempt failed")
		if errors.Is(err, ErrNoData) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s after %d attempt(s): %v", ErrDataUnavailable, ticker, attempt, err)
	}
	return out, nil
}
