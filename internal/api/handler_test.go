package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/internal/domain/dto"
	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/middleware"
	"github.com/guttosm/stockcast/internal/service"
)

type mockPredictService struct {
	err      error
	asked    string
	deadline time.Duration // time left on the request context when Predict ran
}

func (m *mockPredictService) Predict(ctx context.Context, ticker string) (*models.Prediction, error) {
	m.asked = ticker
	if d, ok := ctx.Deadline(); ok {
		m.deadline = time.Until(d)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &models.Prediction{
		Ticker:         ticker,
		CurrentPrice:   100,
		PredictedPrice: 102,
		PercentChange:  2,
		Recommendation: models.Hold,
		Confidence:     79,
		Source:         models.SourceModel,
		Forecast: models.ForecastLadder{
			{Date: "2025-09-13", Price: 102, PercentChange: 2, Confidence: 79, Recommendation: models.Hold},
			{Date: "2025-09-14", Price: 103.02, PercentChange: 2.2, Confidence: 71.1, Recommendation: models.Buy},
			{Date: "2025-09-15", Price: 104.15, PercentChange: 2.42, Confidence: 63.99, Recommendation: models.Buy},
		},
	}, nil
}

var _ service.PredictionService = (*mockPredictService)(nil)

type staticModels []string

func (s staticModels) Loaded() []string { return s }

func setupRouterWithMock(s service.PredictionService, m ModelLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, m)
	r := gin.New()
	r.Use(middleware.ErrorHandler)
	v1 := r.Group("/api/v1")
	v1.POST("/predict", h.PostPredict)
	v1.GET("/predict/:ticker", h.GetPredict)
	v1.GET("/models", h.ListModels)
	return r
}

func TestPredict_TableDriven(t *testing.T) {
	cases := []struct {
		name      string
		svc       *mockPredictService
		method    string
		path      string
		body      string
		status    int
		wantAsked string
	}{
		{name: "get ok", svc: &mockPredictService{}, method: http.MethodGet, path: "/api/v1/predict/aapl", status: http.StatusOK, wantAsked: "AAPL"},
		{name: "post ok", svc: &mockPredictService{}, method: http.MethodPost, path: "/api/v1/predict", body: `{"ticker":" msft "}`, status: http.StatusOK, wantAsked: "MSFT"},
		{name: "post empty ticker", svc: &mockPredictService{}, method: http.MethodPost, path: "/api/v1/predict", body: `{"ticker":"  "}`, status: http.StatusBadRequest},
		{name: "post missing ticker", svc: &mockPredictService{}, method: http.MethodPost, path: "/api/v1/predict", body: `{}`, status: http.StatusBadRequest},
		{name: "post bad json", svc: &mockPredictService{}, method: http.MethodPost, path: "/api/v1/predict", body: `{`, status: http.StatusBadRequest},
		{name: "get blank ticker", svc: &mockPredictService{}, method: http.MethodGet, path: "/api/v1/predict/%20", status: http.StatusBadRequest},
		{name: "fallback defect", svc: &mockPredictService{err: fmt.Errorf("%w: boom", service.ErrFallbackDefect)}, method: http.MethodGet, path: "/api/v1/predict/ZZZZ", status: http.StatusInternalServerError, wantAsked: "ZZZZ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc, staticModels{})
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status: want %d got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.svc.asked != tc.wantAsked {
				t.Fatalf("service asked %q, want %q", tc.svc.asked, tc.wantAsked)
			}

			if tc.status == http.StatusOK {
				var out dto.PredictResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Ticker != tc.wantAsked || len(out.Forecast) != 3 || out.Recommendation != "HOLD" || out.Source != "model" {
					t.Fatalf("unexpected body: %+v", out)
				}
				return
			}

			var er dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Message == "" {
				t.Fatalf("expected error envelope, got %s (%v)", w.Body.String(), err)
			}
		})
	}
}

func TestListModels(t *testing.T) {
	cases := []struct {
		name   string
		models ModelLister
		want   int
	}{
		{name: "none", models: staticModels(nil), want: 0},
		{name: "two", models: staticModels{"AAPL", "MSFT"}, want: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(&mockPredictService{}, tc.models)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/models", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status %d", w.Code)
			}
			var out dto.ModelsResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Count != tc.want || len(out.Tickers) != tc.want || out.Tickers == nil {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}
