package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/config"
	"github.com/guttosm/stockcast/internal/api"
	"github.com/guttosm/stockcast/internal/inference"
	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/marketdata"
	"github.com/guttosm/stockcast/internal/model"
	"github.com/guttosm/stockcast/internal/service"
	"github.com/guttosm/stockcast/internal/storage"
)

// Components holds the wired prediction stack shared by the API, the
// one-shot predict mode and the warm-up scheduler.
type Components struct {
	Service  service.PredictionService
	Registry *model.Registry
	DB       *sql.DB // nil when the price archive is disabled

	requestTimeout time.Duration
}

// Build wires the market-data chain, the model registry and the prediction service.
//
// Parameters:
//   - ctx (context.Context): bounds the anchor preload.
//   - cfg (config.Config): application configuration.
//
// Returns:
//   - *Components: the wired stack; call Close on shutdown.
//   - error: when Postgres is enabled and cannot be opened, pinged or migrated.
//
// Fetch chain, outermost first:
//
//	Cached → Archived (Postgres only) → Retrying → Pooled → Yahoo
//
// The anchor model is preloaded so later misses can borrow it.
func Build(ctx context.Context, cfg config.Config) (*Components, error) {
	var db *sql.DB
	if cfg.Postgres.Enabled {
		// indirection for unit testing
		conn, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		db = conn
	}

	var fetcher marketdata.Fetcher = marketdata.NewYahooFetcher(cfg.Fetch.BaseURL, cfg.Fetch.AttemptTimeout, cfg.Fetch.RatePerSecond)
	fetcher = marketdata.NewPooled(fetcher, cfg.Fetch.Workers)
	fetcher = marketdata.NewRetrying(fetcher, cfg.Fetch.Attempts, cfg.Fetch.RetryDelay, cfg.Fetch.AttemptTimeout)
	if db != nil {
		fetcher = marketdata.NewArchived(fetcher, storage.NewPriceRepository(db))
	}
	fetcher = marketdata.NewCached(fetcher, cfg.Fetch.CacheTTL)

	registry := model.NewRegistry(model.NewFileStore(cfg.Model.Dir), cfg.Model.AnchorTicker)
	if err := registry.Preload(ctx, cfg.Model.AnchorTicker); err != nil {
		// later resolves retry the load
		logger.L().Warn().Err(err).Str("anchor", cfg.Model.AnchorTicker).Msg("anchor preload failed")
	}

	svc := service.NewPredictionService(fetcher, registry, inference.NewEngine(), service.WithPeriod(cfg.Fetch.Period))

	return &Components{Service: svc, Registry: registry, DB: db, requestTimeout: cfg.RequestTimeout()}, nil
}

// Router builds the Gin engine with the prediction API and the health probes.
func (c *Components) Router() *gin.Engine {
	handler := api.NewHandler(c.Service, c.Registry)
	router := api.NewRouter(handler, c.requestTimeout)

	var ping func(context.Context) error
	if c.DB != nil {
		ping = c.DB.PingContext
	}
	api.NewHealthHandler(ping, c.Registry.Len).Register(router)
	return router
}

// Close releases the database connection, if any.
func (c *Components) Close() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres() when the archive is enabled.
//   - Wires the fetch chain, model registry and prediction service (Build).
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	c, err := Build(context.Background(), config.AppConfig)
	if err != nil {
		return nil, nil, err
	}
	return c.Router(), c.Close, nil
}
