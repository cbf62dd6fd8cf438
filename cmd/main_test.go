package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/stockcast/config"
	"github.com/guttosm/stockcast/internal/domain/dto"
	"github.com/guttosm/stockcast/internal/domain/models"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	// Shutdown quickly with short timeout and no-op cleanup
	_, cancel := context.WithCancel(context.Background())
	go func() {
		// trigger gracefulShutdown select by simulating signal via closing after a brief delay
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// We cannot send OS signals easily here; instead, directly call Shutdown to simulate graceful flow.
	// Verify it doesn't panic and completes.
	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	// Use a server that responds immediately
	srv := startServer(dummyHandler{}, "0")

	cleaned := make(chan struct{}, 1)
	go func() {
		ctx := context.Background()
		gracefulShutdown(ctx, srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	// Send SIGTERM to current process
	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
		// success
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}

type stubService struct {
	calls chan string
}

func (s *stubService) Predict(_ context.Context, ticker string) (*models.Prediction, error) {
	if s.calls != nil {
		s.calls <- ticker
	}
	return &models.Prediction{Ticker: ticker, CurrentPrice: 10, Source: models.SourceFallback}, nil
}

func TestRunPredict(t *testing.T) {
	var buf bytes.Buffer
	if err := runPredict(context.Background(), &stubService{}, " tsla ", &buf); err != nil {
		t.Fatalf("runPredict: %v", err)
	}
	var out dto.PredictResponse
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Ticker != "TSLA" || out.Source != "fallback" {
		t.Fatalf("unexpected output: %s", buf.String())
	}

	if err := runPredict(context.Background(), &stubService{}, "   ", &buf); err == nil {
		t.Fatalf("expected error for blank ticker")
	}
}

func TestStartWarmup(t *testing.T) {
	s, err := startWarmup(context.Background(), &stubService{}, config.WarmupConfig{})
	if err != nil || s != nil {
		t.Fatalf("empty cron should disable warm-up, got %v %v", s, err)
	}

	if _, err := startWarmup(context.Background(), &stubService{}, config.WarmupConfig{Cron: "not a spec"}); err == nil {
		t.Fatalf("expected invalid cron error")
	}

	svc := &stubService{calls: make(chan string, 2)}
	s, err = startWarmup(context.Background(), svc, config.WarmupConfig{Cron: "0 0 0 1 1 *", Tickers: []string{"AAPL", "MSFT"}})
	if err != nil || s == nil {
		t.Fatalf("startWarmup: %v", err)
	}
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-svc.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("initial warm-up pass did not run")
		}
	}
}
