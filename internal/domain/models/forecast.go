package models

import (
	"fmt"
	"math"
)

// Recommendation is the discrete action derived from a percent change.
type Recommendation string

const (
	Buy  Recommendation = "BUY"
	Sell Recommendation = "SELL"
	Hold Recommendation = "HOLD"
)

// ForecastDays is the fixed length D of every forecast ladder.
const ForecastDays = 3

// ForecastPoint is one day of the forecast ladder.
//
// swagger:model ForecastPoint
type ForecastPoint struct {
	Date           string         `json:"date" example:"2025-09-15"`
	Price          float64        `json:"price" example:"103.02"`
	PercentChange  float64        `json:"percent_change" example:"2.2"`
	Confidence     float64        `json:"confidence" example:"71.1"`
	Recommendation Recommendation `json:"recommendation" example:"BUY"`
}

// ForecastLadder is the ordered day 1..D projection.
type ForecastLadder []ForecastPoint

// Validate checks the structural invariants every ladder must satisfy:
//   - exactly ForecastDays points
//   - finite prices, changes and confidences
//   - confidence non-increasing
//   - |percent_change| non-decreasing
func (l ForecastLadder) Validate() error {
	if len(l) != ForecastDays {
		return fmt.Errorf("ladder has %d points, want %d", len(l), ForecastDays)
	}
	for i, p := range l {
		if !finite(p.Price) || !finite(p.PercentChange) || !finite(p.Confidence) {
			return fmt.Errorf("day %d has non-finite values: %+v", i+1, p)
		}
		if i == 0 {
			continue
		}
		prev := l[i-1]
		if p.Confidence > prev.Confidence {
			return fmt.Errorf("confidence rises on day %d: %.4f > %.4f", i+1, p.Confidence, prev.Confidence)
		}
		if math.Abs(p.PercentChange) < math.Abs(prev.PercentChange) {
			return fmt.Errorf("percent change shrinks on day %d", i+1)
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Source tells the caller which tier produced the forecast.
type Source string

const (
	SourceModel       Source = "model"       // ticker's own trained artifact
	SourceAnchor      Source = "anchor"      // anchor ticker's artifact
	SourcePlaceholder Source = "placeholder" // synthesized untrained model
	SourceFallback    Source = "fallback"    // deterministic synthetic ladder
)

// HistoricalPoint is one point of the chart series returned with a prediction.
type HistoricalPoint struct {
	Date  string  `json:"date" example:"2025-09-12"`
	Price float64 `json:"price" example:"101.4"`
}

// Prediction is the full result of one pipeline run.
//
// CurrentPrice, Forecast and Ticker form the core contract; the remaining
// fields describe day 1 and how the result was produced.
type Prediction struct {
	Ticker         string            `json:"ticker"`
	CurrentPrice   float64           `json:"current_price"`
	Forecast       ForecastLadder    `json:"forecast"`
	PredictedPrice float64           `json:"predicted_price"`
	PercentChange  float64           `json:"percent_change"`
	Recommendation Recommendation    `json:"recommendation"`
	Confidence     float64           `json:"confidence"`
	Source         Source            `json:"source"`
	ModelTicker    string            `json:"model_ticker,omitempty"`
	DegradedReason string            `json:"degraded_reason,omitempty"`
	Historical     []HistoricalPoint `json:"historical"`
	GeneratedAt    string            `json:"generated_at"`
}
