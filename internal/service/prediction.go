// Package service runs the prediction pipeline and guarantees a result:
//
//	FetchData → BuildWindow → ResolveModel → Infer → BuildLadder → Done
//
// A failure in any stage moves to the deterministic synthetic fallback.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/forecast"
	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/marketdata"
	"github.com/guttosm/stockcast/internal/metrics"
	"github.com/guttosm/stockcast/internal/model"
	"github.com/guttosm/stockcast/internal/window"
)

// PredictionService defines the prediction use case.
type PredictionService interface {
	// Predict never fails for data or model problems; the only error is ErrFallbackDefect.
	Predict(ctx context.Context, ticker string) (*models.Prediction, error)
}

// ModelResolver lends a model for a ticker.
type ModelResolver interface {
	Resolve(ctx context.Context, ticker string) (model.Handle, error)
}

// Predictor runs one forward pass.
type Predictor interface {
	Predict(w *window.Window, net *model.Network) (float64, error)
}

// Option customizes a prediction service.
type Option func(*predictionService)

// WithClock replaces time.Now; the clock reading is the fetch date of every ladder.
func WithClock(clock func() time.Time) Option {
	return func(s *predictionService) { s.clock = clock }
}

// WithPeriod sets the history range requested from the fetcher (default "6mo").
func WithPeriod(period string) Option {
	return func(s *predictionService) { s.period = period }
}

type predictionService struct {
	fetcher  marketdata.Fetcher
	resolver ModelResolver
	engine   Predictor
	period   string
	clock    func() time.Time
	log      zerolog.Logger
}

// NewPredictionService wires the prediction pipeline.
//
// Parameters:
//   - fetcher (marketdata.Fetcher): price history source (usually the cached/archived/retrying chain).
//   - resolver (ModelResolver): model registry.
//   - engine (Predictor): forward pass runner.
//   - opts (...Option): WithClock, WithPeriod.
//
// Returns:
//   - PredictionService: safe for concurrent use.
func NewPredictionService(fetcher marketdata.Fetcher, resolver ModelResolver, engine Predictor, opts ...Option) PredictionService {
	s := &predictionService{
		fetcher:  fetcher,
		resolver: resolver,
		engine:   engine,
		period:   "6mo",
		clock:    time.Now,
		log:      logger.With("predict"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NormalizeTicker upper-cases and trims a ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (s *predictionService) Predict(ctx context.Context, ticker string) (*models.Prediction, error) {
	ticker = NormalizeTicker(ticker)
	now := s.clock()

	p, f := s.run(ctx, ticker, now)
	if f == nil {
		return s.finish(p, now), nil
	}

	if next(f.kind) != StageFallback {
		return nil, fmt.Errorf("%w: no transition for %s", ErrFallbackDefect, f.kind)
	}

	metrics.FallbacksTotal.WithLabelValues(f.kind.String()).Inc()
	s.log.Warn().Str("ticker", ticker).Str("stage", string(f.stage)).Str("kind", f.kind.String()).Err(f.err).Msg("falling back to synthetic forecast")

	fb, err := synthetic(ticker, now)
	if err != nil {
		s.log.Error().Str("ticker", ticker).Err(err).Msg("fallback generator failed")
		return nil, err
	}
	fb.DegradedReason = f.Error()
	return s.finish(fb, now), nil
}

func (s *predictionService) finish(p *models.Prediction, now time.Time) *models.Prediction {
	p.GeneratedAt = now.UTC().Format(time.RFC3339)
	metrics.PredictionsTotal.WithLabelValues(string(p.Source)).Inc()
	return p
}

// run executes the happy path. A non-nil failure stops it at the failing stage.
func (s *predictionService) run(ctx context.Context, ticker string, now time.Time) (*models.Prediction, *failure) {
	series := s.fetch(ctx, ticker)
	if f := series.failure(); f != nil {
		return nil, f
	}

	win := s.buildWindow(series.value)
	if f := win.failure(); f != nil {
		return nil, f
	}

	handle := s.resolve(ctx, ticker)
	if f := handle.failure(); f != nil {
		return nil, f
	}

	predicted := s.infer(win.value, handle.value)
	if f := predicted.failure(); f != nil {
		return nil, f
	}

	current := series.value.Last().Close
	ladder := s.buildLadder(current, predicted.value, now)
	if f := ladder.failure(); f != nil {
		return nil, f
	}

	h := handle.value
	first := ladder.value[0]
	p := &models.Prediction{
		Ticker:         ticker,
		CurrentPrice:   current,
		Forecast:       ladder.value,
		PredictedPrice: first.Price,
		PercentChange:  first.PercentChange,
		Recommendation: first.Recommendation,
		Confidence:     first.Confidence,
		Source:         sourceOf(h.Match),
		ModelTicker:    h.Ticker,
		Historical:     series.value.Tail(historicalPoints),
	}
	if h.Match != model.MatchExact {
		p.DegradedReason = fmt.Sprintf("no model for %s, using %s model", ticker, h.Match)
	}
	s.log.Debug().Str("ticker", ticker).Str("source", string(p.Source)).Float64("current", current).Float64("predicted", predicted.value).Msg("prediction ready")
	return p, nil
}

func (s *predictionService) fetch(ctx context.Context, ticker string) stageResult[*models.PriceSeries] {
	series, err := s.fetcher.FetchPriceSeries(ctx, ticker, s.period)
	if err != nil {
		return fail[*models.PriceSeries](StageFetchData, KindDataUnavailable, err)
	}
	if err := series.Validate(); err != nil {
		if errors.Is(err, models.ErrEmptySeries) {
			return fail[*models.PriceSeries](StageFetchData, KindDataUnavailable, err)
		}
		return fail[*models.PriceSeries](StageFetchData, KindInsufficientHistory, err)
	}
	return ok(series)
}

func (s *predictionService) buildWindow(series *models.PriceSeries) stageResult[*window.Window] {
	w, err := window.Transform(series.Closes())
	if err != nil {
		return fail[*window.Window](StageBuildWindow, KindInsufficientHistory, err)
	}
	return ok(w)
}

func (s *predictionService) resolve(ctx context.Context, ticker string) stageResult[model.Handle] {
	h, err := s.resolver.Resolve(ctx, ticker)
	if err != nil {
		return fail[model.Handle](StageResolveModel, KindModelNotFound, err)
	}
	return ok(h)
}

func (s *predictionService) infer(w *window.Window, h model.Handle) stageResult[float64] {
	v, err := s.engine.Predict(w, h.Network)
	if err != nil {
		return fail[float64](StageInfer, KindModelInferenceError, err)
	}
	return ok(v)
}

func (s *predictionService) buildLadder(current, predicted float64, now time.Time) stageResult[models.ForecastLadder] {
	ladder := forecast.Build(current, predicted, now)
	if err := ladder.Validate(); err != nil {
		return fail[models.ForecastLadder](StageBuildLadder, KindModelInferenceError, err)
	}
	return ok(ladder)
}

func sourceOf(m model.Match) models.Source {
	switch m {
	case model.MatchExact:
		return models.SourceModel
	case model.MatchAnchor:
		return models.SourceAnchor
	default:
		return models.SourcePlaceholder
	}
}
