package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/guttosm/stockcast/internal/domain/models"
)

// PriceRepository defines the contract for the Postgres price archive.
type PriceRepository interface {
	ReplaceSeries(ctx context.Context, series *models.PriceSeries) error
	LoadSeries(ctx context.Context, ticker string, limit int) (*models.PriceSeries, error)
	Tickers(ctx context.Context) ([]string, error)
	HasSeedForFile(ctx context.Context, filename string) (bool, error)
	UpsertSeedLog(ctx context.Context, filename string, rowCount int) error
	Ping(ctx context.Context) error
}

type priceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a PriceRepository backed by PostgreSQL.
//
// Parameters:
//   - db (*sql.DB): an open connection pool; the schema from package db must be applied.
//
// Returns:
//   - PriceRepository: safe for concurrent use.
func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

// ReplaceSeries swaps the stored history of series.Ticker for series.Bars in a single transaction.
func (r *priceRepository) ReplaceSeries(ctx context.Context, series *models.PriceSeries) error {
	if series == nil || series.Ticker == "" {
		return fmt.Errorf("replace series: empty ticker")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_history WHERE ticker = $1`, series.Ticker); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"price_history",
		"ticker",
		"trade_date",
		"open",
		"high",
		"low",
		"close",
		"volume",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx,
			series.Ticker,
			b.Date,
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// LoadSeries returns the most recent limit bars for ticker in ascending date
// order (limit <= 0 means all). It returns nil, nil when nothing is stored.
func (r *priceRepository) LoadSeries(ctx context.Context, ticker string, limit int) (*models.PriceSeries, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_date, open, high, low, close, volume
		FROM (
			SELECT trade_date, open, high, low, close, volume
			FROM price_history
			WHERE ticker = $1
			ORDER BY trade_date DESC
			LIMIT NULLIF($2, 0)
		) recent
		ORDER BY trade_date ASC
	`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	series := &models.PriceSeries{Ticker: ticker}
	for rows.Next() {
		var (
			b                       models.PriceBar
			open, high, low, volume sql.NullFloat64
			day                     time.Time
		)
		if err := rows.Scan(&day, &open, &high, &low, &b.Close, &volume); err != nil {
			return nil, err
		}
		b.Date = models.TruncateToDate(day)
		b.Open, b.High, b.Low, b.Volume = open.Float64, high.Float64, low.Float64, volume.Float64
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(series.Bars) == 0 {
		return nil, nil
	}
	return series, nil
}

// Tickers lists every ticker with archived history, alphabetically.
func (r *priceRepository) Tickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM price_history ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// HasSeedForFile reports whether filename was already seeded.
func (r *priceRepository) HasSeedForFile(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM seed_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertSeedLog records (or updates) a seed entry for filename.
func (r *priceRepository) UpsertSeedLog(ctx context.Context, filename string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seed_log (filename, row_count)
		VALUES ($1, $2)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  seeded_at = NOW()
	`, filename, rowCount)
	return err
}

// Ping checks the database is reachable.
func (r *priceRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
