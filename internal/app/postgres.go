package app

import (
	"database/sql"
	"fmt"

	"github.com/guttosm/stockcast/config"
	"github.com/guttosm/stockcast/db"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// migrate is an indirection for unit testing; defaults to the embedded goose migrations.
var migrate = db.Up

// InitPostgres opens the price archive and verifies connectivity.
//
// Behavior:
//   - Opens a database handle with sql.Open using cfg.Postgres.DSN().
//   - Immediately pings the database to validate connectivity.
//   - Applies the embedded migrations when cfg.Postgres.Migrate is set.
//
// Example usage:
//
//	conn, err := app.InitPostgres(config.AppConfig)
//	if err != nil {
//	    log.Fatalf("❌ failed to connect: %v", err)
//	}
//	defer conn.Close()
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	conn, err := sqlOpener("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := migrate(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
	}

	return conn, nil
}

// postgresOpener is an indirection used by Build; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres
