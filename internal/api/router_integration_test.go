//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/stockcast/config"
	"github.com/guttosm/stockcast/db"
	"github.com/guttosm/stockcast/internal/app"
	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/storage"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "stockcast",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=stockcast sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", h, mp.Port(), "stockcast")
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func openAndMigrate(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := db.Up(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedForE2E(t *testing.T, conn *sql.DB, ticker string, n int) {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &models.PriceSeries{Ticker: ticker}
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		series.Bars = append(series.Bars, models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000})
	}
	if err := storage.NewPriceRepository(conn).ReplaceSeries(context.Background(), series); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// The upstream always fails, so the archive tier must serve the seeded series
// and the answer comes from the model path anchored on the last archived close.
func TestAPI_E2E_Predict_FromArchive(t *testing.T) {
	dsn, host, port, term := startPG(t)
	defer term()
	conn := openAndMigrate(t, dsn)
	defer conn.Close()

	seedForE2E(t, conn, "E2E4", 80)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	// Point application config to containerized DB
	config.AppConfig.Postgres.Enabled = true
	config.AppConfig.Postgres.Host = host
	p, _ := nat.ParsePort(port.Port())
	config.AppConfig.Postgres.Port = int(p)
	config.AppConfig.Postgres.User = "postgres"
	config.AppConfig.Postgres.Password = "postgres"
	config.AppConfig.Postgres.DBName = "stockcast"
	config.AppConfig.Postgres.SSLMode = "disable"
	config.AppConfig.Postgres.Migrate = true
	config.AppConfig.Model.Dir = t.TempDir()
	config.AppConfig.Model.AnchorTicker = "AAPL"
	config.AppConfig.Fetch.BaseURL = upstream.URL
	config.AppConfig.Fetch.Period = "6mo"
	config.AppConfig.Fetch.Attempts = 1
	config.AppConfig.Fetch.AttemptTimeout = 2 * time.Second
	config.AppConfig.Fetch.Workers = 2

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict/e2e4", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Ticker       string  `json:"ticker"`
		CurrentPrice float64 `json:"current_price"`
		Source       string  `json:"source"`
		Forecast     []struct {
			Date string `json:"date"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Ticker != "E2E4" || body.CurrentPrice != 179 || body.Source == "fallback" || len(body.Forecast) != 3 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
