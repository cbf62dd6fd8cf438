package marketdata

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/logger"
)

// archiveLimit is how many archived bars are served when upstream is down.
const archiveLimit = 250

// Archive persists and replays price history.
type Archive interface {
	ReplaceSeries(ctx context.Context, series *models.PriceSeries) error
	LoadSeries(ctx context.Context, ticker string, limit int) (*models.PriceSeries, error)
}

// Archived writes every successful fetch through to an Archive and serves
// the archived history when the upstream chain fails.
type Archived struct {
	next    Fetcher
	archive Archive
	log     zerolog.Logger
}

// NewArchived wraps next with archive.
//
// Behavior:
//   - On success the series is written through; a failed write is logged, not returned.
//   - On failure the most recent archived bars are served when there are any.
//   - Otherwise the upstream error is returned unchanged.
func NewArchived(next Fetcher, archive Archive) *Archived {
	return &Archived{next: next, archive: archive, log: logger.With("archive")}
}

func (a *Archived) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	s, err := a.next.FetchPriceSeries(ctx, ticker, period)
	if err == nil {
		if werr := a.archive.ReplaceSeries(ctx, s); werr != nil {
			a.log.Warn().Err(werr).Str("ticker", ticker).Msg("archive write failed")
		}
		return s, nil
	}

	stored, aerr := a.archive.LoadSeries(ctx, ticker, archiveLimit)
	if aerr != nil {
		a.log.Warn().Err(aerr).Str("ticker", ticker).Msg("archive read failed")
		return nil, err
	}
	if stored == nil || len(stored.Bars) == 0 {
		return nil, err
	}
	a.log.Warn().Err(err).Str("ticker", ticker).Int("bars", len(stored.Bars)).Msg("upstream unavailable, serving archived history")
	return stored, nil
}
