package forecast

import "github.com/guttosm/stockcast/internal/domain/models"

// Threshold is the absolute percent change beyond which a signal is actionable.
const Threshold = 2.0

// Classify maps a percent change to BUY (> 2), SELL (< -2) or HOLD.
// The bounds are strict: exactly ±2 is HOLD.
func Classify(pct float64) models.Recommendation {
	switch {
	case pct > Threshold:
		return models.Buy
	case pct < -Threshold:
		return models.Sell
	default:
		return models.Hold
	}
}
