package service

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/forecast"
)

// ErrFallbackDefect means the synthetic generator itself failed. It is the
// only error Predict returns and always indicates a programming defect.
var ErrFallbackDefect = errors.New("fallback generator defect")

const (
	fallbackBasePrice  = 100.0
	fallbackPriceRange = 400
	fallbackChangeMod  = 10
	fallbackChangeBias = 5
	historicalPoints   = 30
)

// hashTicker is an indirection so tests can break the generator.
var hashTicker = stableHash

// stableHash is FNV-1a 32-bit, identical across processes and platforms.
func stableHash(ticker string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ticker))
	return h.Sum32()
}

// synthetic builds the deterministic prediction for ticker:
//
//	current = 100 + h%400
//	pct[1]  = h%10 - 5
//	price[1] = current * (1 + pct[1]/100), conf[1] = 75
//
// Days 2..3 follow the ladder recurrence. The 30-point history is a gentle
// ramp around current ending on now.
func synthetic(ticker string, now time.Time) (p *models.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrFallbackDefect, r)
		}
	}()

	h := hashTicker(ticker)
	current := fallbackBasePrice + float64(h%fallbackPriceRange)
	pct := float64(int(h%fallbackChangeMod) - fallbackChangeBias)

	ladder := forecast.Extend(models.ForecastPoint{
		Price:         current * (1 + pct/100),
		PercentChange: pct,
		Confidence:    forecast.BaseConfidence(),
	}, now)

	if math.IsNaN(current) || math.IsInf(current, 0) || current <= 0 {
		return nil, fmt.Errorf("%w: current price %v", ErrFallbackDefect, current)
	}
	if err := ladder.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackDefect, err)
	}

	day := models.TruncateToDate(now)
	historical := make([]models.HistoricalPoint, historicalPoints)
	for i := range historical {
		historical[i] = models.HistoricalPoint{
			Date:  day.AddDate(0, 0, i-(historicalPoints-1)).Format(models.DateLayout),
			Price: current * (1 + 0.001*float64(i-historicalPoints/2)),
		}
	}

	first := ladder[0]
	return &models.Prediction{
		Ticker:         ticker,
		CurrentPrice:   current,
		Forecast:       ladder,
		PredictedPrice: first.Price,
		PercentChange:  first.PercentChange,
		Recommendation: first.Recommendation,
		Confidence:     first.Confidence,
		Source:         models.SourceFallback,
		Historical:     historical,
	}, nil
}
