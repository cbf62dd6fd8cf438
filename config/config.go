package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// HTTP server, the Postgres price archive, the model store, market-data fetching and
// the optional warm-up scheduler.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_ENABLED=true
//	POSTGRES_HOST=localhost
//	MODEL_DIR=./models
//	MODEL_ANCHOR_TICKER=AAPL
//	FETCH_ATTEMPTS=3
//	FETCH_RETRY_DELAY=2s
//	WARMUP_CRON="0 */15 * * * *"
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL price archive settings
	Model    ModelConfig    // Model store and registry settings
	Fetch    FetchConfig    // Market-data fetch settings
	Warmup   WarmupConfig   // Scheduled warm-up settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
//
// Fields:
//   - Port: the TCP port the HTTP server will listen on (e.g., "8080").
//   - RequestTimeout: deadline for one /api/v1 request. Zero derives it from
//     FetchConfig.Budget() plus requestHeadroom, so every fetch attempt can run.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// requestHeadroom covers inference and the fallback after the fetch budget is spent.
const requestHeadroom = 5 * time.Second

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Enabled: when false the price archive tier is skipped entirely.
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - Migrate: apply embedded migrations on connect.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
	URL      string
}

// ModelConfig points the registry at the artifact directory and names the anchor ticker.
type ModelConfig struct {
	Dir          string
	AnchorTicker string
}

// FetchConfig tunes the market-data chain.
//
// One fetch can take up to Budget(); ServerConfig.RequestTimeout must not be
// shorter or later attempts are cut off by the request deadline.
type FetchConfig struct {
	BaseURL        string
	Period         string
	Attempts       int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
	Workers        int
	CacheTTL       time.Duration
	RatePerSecond  float64
}

// WarmupConfig configures the periodic warm-up job. An empty Cron disables it.
type WarmupConfig struct {
	Cron    string
	Tickers []string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "0")

	viper.SetDefault("POSTGRES_ENABLED", true)
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "stockcast")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MIGRATE", true)

	viper.SetDefault("MODEL_DIR", "./models")
	viper.SetDefault("MODEL_ANCHOR_TICKER", "AAPL")

	viper.SetDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("FETCH_PERIOD", "6mo")
	viper.SetDefault("FETCH_ATTEMPTS", 3)
	viper.SetDefault("FETCH_RETRY_DELAY", "2s")
	viper.SetDefault("FETCH_ATTEMPT_TIMEOUT", "5s")
	viper.SetDefault("FETCH_WORKERS", 8)
	viper.SetDefault("FETCH_CACHE_TTL", "5m")
	viper.SetDefault("FETCH_RATE_PER_SEC", 5.0)

	viper.SetDefault("WARMUP_CRON", "")
	viper.SetDefault("WARMUP_TICKERS", "AAPL,MSFT,GOOGL,AMZN,TSLA")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Enabled:  viper.GetBool("POSTGRES_ENABLED"),
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			Migrate:  viper.GetBool("POSTGRES_MIGRATE"),
		},
		Model: ModelConfig{
			Dir:          viper.GetString("MODEL_DIR"),
			AnchorTicker: strings.ToUpper(strings.TrimSpace(viper.GetString("MODEL_ANCHOR_TICKER"))),
		},
		Fetch: FetchConfig{
			BaseURL:        viper.GetString("YAHOO_BASE_URL"),
			Period:         viper.GetString("FETCH_PERIOD"),
			Attempts:       viper.GetInt("FETCH_ATTEMPTS"),
			RetryDelay:     viper.GetDuration("FETCH_RETRY_DELAY"),
			AttemptTimeout: viper.GetDuration("FETCH_ATTEMPT_TIMEOUT"),
			Workers:        viper.GetInt("FETCH_WORKERS"),
			CacheTTL:       viper.GetDuration("FETCH_CACHE_TTL"),
			RatePerSecond:  viper.GetFloat64("FETCH_RATE_PER_SEC"),
		},
		Warmup: WarmupConfig{
			Cron:    strings.TrimSpace(viper.GetString("WARMUP_CRON")),
			Tickers: splitTickers(viper.GetString("WARMUP_TICKERS")),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()
	AppConfig.Server.RequestTimeout = AppConfig.RequestTimeout()

	validateConfig()
}

// DSN builds the postgres:// connection string from the individual fields.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// RequestTimeout returns Server.RequestTimeout, or the fetch budget plus
// requestHeadroom when it is not set.
func (c Config) RequestTimeout() time.Duration {
	if c.Server.RequestTimeout > 0 {
		return c.Server.RequestTimeout
	}
	return c.Fetch.Budget() + requestHeadroom
}

// Budget is the worst-case duration of one fetch:
// every attempt hits its timeout and every retry waits the full delay.
func (f FetchConfig) Budget() time.Duration {
	if f.Attempts < 1 {
		return f.AttemptTimeout
	}
	return time.Duration(f.Attempts)*f.AttemptTimeout + time.Duration(f.Attempts-1)*f.RetryDelay
}

// splitTickers turns "aapl, msft,,TSLA" into [AAPL MSFT TSLA].
func splitTickers(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.ToUpper(strings.TrimSpace(part)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Postgres fields are only required when the archive is enabled.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("❌ Missing required environment variables: %v\n", missing)
	}
}

func missingKeys(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Model.Dir == "" {
		missing = append(missing, "MODEL_DIR")
	}
	if cfg.Model.AnchorTicker == "" {
		missing = append(missing, "MODEL_ANCHOR_TICKER")
	}
	if cfg.Fetch.Attempts < 1 {
		missing = append(missing, "FETCH_ATTEMPTS")
	}
	if cfg.Fetch.Workers < 1 {
		missing = append(missing, "FETCH_WORKERS")
	}
	if cfg.Fetch.BaseURL == "" {
		missing = append(missing, "YAHOO_BASE_URL")
	}

	if !cfg.Postgres.Enabled {
		return missing
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
