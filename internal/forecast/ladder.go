// Package forecast projects a single next-step prediction into the fixed
// multi-day ladder and classifies each day into an action.
//
// The ladder compounds day 1's signal instead of re-running inference:
//
//	price[i+1]  = price[i] * (1 + pct[i]/200)
//	pct[i+1]    = pct[i] * 1.1
//	conf[i+1]   = conf[i] * 0.9
//
// Confidence is a heuristic, not a prediction interval:
//
//	conf[1] = min(95, 75 + 2*|pct[1]|)
package forecast

import (
	"math"
	"time"

	"github.com/guttosm/stockcast/internal/domain/models"
)

const (
	baseConfidence   = 75.0
	maxConfidence    = 95.0
	confidencePerPct = 2.0
	confidenceDecay  = 0.9
	changeGrowth     = 1.1
	priceDamping     = 200.0
)

// PercentChange returns (predicted-current)/current*100.
func PercentChange(current, predicted float64) float64 {
	return (predicted - current) / current * 100
}

// Confidence returns the day-1 heuristic confidence for a percent change.
func Confidence(pct float64) float64 {
	return math.Min(maxConfidence, baseConfidence+confidencePerPct*math.Abs(pct))
}

// BaseConfidence is the flat day-1 confidence used by the synthetic ladder.
func BaseConfidence() float64 { return baseConfidence }

// Build returns the ladder for a model prediction made on fetchDate.
func Build(current, predicted float64, fetchDate time.Time) models.ForecastLadder {
	pct := PercentChange(current, predicted)
	first := models.ForecastPoint{
		Price:          predicted,
		PercentChange:  pct,
		Confidence:     Confidence(pct),
		Recommendation: Classify(pct),
	}
	return Extend(first, fetchDate)
}

// Extend fills days 2..D from an explicit day-1 point and stamps dates
// starting the calendar day after fetchDate.
func Extend(first models.ForecastPoint, fetchDate time.Time) models.ForecastLadder {
	day := models.TruncateToDate(fetchDate)
	ladder := make(models.ForecastLadder, models.ForecastDays)

	p := first
	for i := 0; i < models.ForecastDays; i++ {
		if i > 0 {
			p = Step(ladder[i-1])
		}
		p.Date = day.AddDate(0, 0, i+1).Format(models.DateLayout)
		p.Recommendation = Classify(p.PercentChange)
		ladder[i] = p
	}
	return ladder
}

// Step applies one rung of the recurrence. Date is left for the caller.
func Step(prev models.ForecastPoint) models.ForecastPoint {
	pct := prev.PercentChange * changeGrowth
	return models.ForecastPoint{
		Price:          prev.Price * (1 + prev.PercentChange/priceDamping),
		PercentChange:  pct,
		Confidence:     prev.Confidence * confidenceDecay,
		Recommendation: Classify(pct),
	}
}
