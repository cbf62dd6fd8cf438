package main

//
//  @title           stockcast API
//  @version         1.0
//  @description     Next-days stock price forecasts with a guaranteed answer.
//  @termsOfService  https://github.com/guttosm/stockcast
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/stockcast
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        predict
//  @tag.description Stock price forecasts
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/stockcast/config"
	_ "github.com/guttosm/stockcast/docs" // swagger docs
	"github.com/guttosm/stockcast/internal/app"
	"github.com/guttosm/stockcast/internal/domain/dto"
	"github.com/guttosm/stockcast/internal/ingestion"
	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/scheduler"
	"github.com/guttosm/stockcast/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// startWarmup registers and starts the warm-up job when a cron spec is configured.
// One pass runs immediately so the anchor and popular tickers are hot. Returns nil when disabled.
func startWarmup(ctx context.Context, svc service.PredictionService, cfg config.WarmupConfig) (*scheduler.Scheduler, error) {
	if cfg.Cron == "" {
		return nil, nil
	}
	s := scheduler.NewScheduler(ctx, svc, cfg.Tickers)
	if err := s.Register(cfg.Cron); err != nil {
		return nil, err
	}
	s.RunInBackground()
	s.Start()
	return s, nil
}

// runPredict resolves one ticker and writes the response body as indented JSON.
func runPredict(ctx context.Context, svc service.PredictionService, ticker string, w io.Writer) error {
	ticker = service.NormalizeTicker(ticker)
	if ticker == "" {
		return errors.New("ticker is required")
	}
	p, err := svc.Predict(ctx, ticker)
	if err != nil {
		return fmt.Errorf("predict %s: %w", ticker, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewPredictResponse(p))
}

// main is the entry point of the stockcast application.
//
// Modes (selected via --mode flag):
//   - api:     Starts the REST API (and the warm-up scheduler when WARMUP_CRON is set).
//   - seed:    Loads CSV price history from --dir into the Postgres archive.
//   - predict: Prints one prediction for --ticker as JSON and exits.
//
// Flags:
//   - --mode:     Execution mode ("api", "seed" or "predict"). Default: "api".
//   - --dir:      Directory containing .csv price files. Default: "./data".
//   - --parallel: Tickers written concurrently in seed mode (0=auto).
//   - --force:    Re-seed files already recorded in seed_log.
//   - --ticker:   Ticker for predict mode.
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api, seed or predict")
	dir := flag.String("dir", "./data", "Directory with .csv price files")
	parallel := flag.Int("parallel", 0, "How many tickers to write concurrently (0=auto up to CPU, max 7)")
	force := flag.Bool("force", false, "Re-seed files even if already recorded (replaces existing rows for their tickers)")
	ticker := flag.String("ticker", "", "Ticker for predict mode")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "seed":
		logger.L().Info().Str("dir", *dir).Msg("running seed")

		// Direct DB connection for seeding
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := ingestion.ProcessDirectory(ctx, *dir, db, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("seed failed")
		}
		logger.L().Info().Msg("seed completed successfully")

	case "predict":
		c, err := app.Build(ctx, config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		defer c.Close()

		if err := runPredict(ctx, c.Service, *ticker, os.Stdout); err != nil {
			logger.L().Fatal().Err(err).Msg("predict failed")
		}

	case "api":
		logger.L().Info().Msg("starting API server")

		c, err := app.Build(ctx, config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		warmup, err := startWarmup(ctx, c.Service, config.AppConfig.Warmup)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("warm-up scheduler error")
		}

		server := startServer(c.Router(), *port)
		gracefulShutdown(ctx, server, func() {
			if warmup != nil {
				warmup.Stop()
			}
			c.Close()
		})

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
