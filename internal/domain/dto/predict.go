package dto

import "github.com/guttosm/stockcast/internal/domain/models"

// PredictRequest is the body accepted by POST /api/v1/predict.
type PredictRequest struct {
	Ticker string `json:"ticker" example:"AAPL"`
}

// PredictResponse represents the JSON structure returned by the predict endpoints.
//
// Fields match the API contract and may differ from internal domain models.
type PredictResponse struct {
	Ticker         string                   `json:"ticker" example:"AAPL"`
	CurrentPrice   float64                  `json:"current_price" example:"100"`
	PredictedPrice float64                  `json:"predicted_price" example:"102"`
	PercentChange  float64                  `json:"percent_change" example:"2"`
	Recommendation string                   `json:"recommendation" example:"HOLD"`
	Confidence     float64                  `json:"confidence" example:"79"`
	Forecast       []models.ForecastPoint   `json:"forecast"`
	Historical     []models.HistoricalPoint `json:"historical"`
	Source         string                   `json:"source" example:"model"`
	ModelTicker    string                   `json:"model_ticker,omitempty" example:"AAPL"`
	DegradedReason string                   `json:"degraded_reason,omitempty" example:"fetch_data: data_unavailable: no data for symbol"`
	GeneratedAt    string                   `json:"generated_at" example:"2025-09-14T12:00:00Z"`
}

// NewPredictResponse maps a domain prediction onto the API shape.
// Nil slices are emitted as empty arrays.
func NewPredictResponse(p *models.Prediction) PredictResponse {
	historical := p.Historical
	if historical == nil {
		historical = []models.HistoricalPoint{}
	}
	forecast := []models.ForecastPoint(p.Forecast)
	if forecast == nil {
		forecast = []models.ForecastPoint{}
	}
	return PredictResponse{
		Ticker:         p.Ticker,
		CurrentPrice:   p.CurrentPrice,
		PredictedPrice: p.PredictedPrice,
		PercentChange:  p.PercentChange,
		Recommendation: string(p.Recommendation),
		Confidence:     p.Confidence,
		Forecast:       forecast,
		Historical:     historical,
		Source:         string(p.Source),
		ModelTicker:    p.ModelTicker,
		DegradedReason: p.DegradedReason,
		GeneratedAt:    p.GeneratedAt,
	}
}

// ModelsResponse lists the tickers currently cached by the model registry.
type ModelsResponse struct {
	Count   int      `json:"count" example:"2"`
	Tickers []string `json:"tickers" example:"AAPL,MSFT"`
}
