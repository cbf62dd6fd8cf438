package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/stockcast/internal/domain/models"
	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/storage"
)

const maxParallelDefault = 7

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.PriceRepository {
	return storage.NewPriceRepository(db)
}

// ProcessDirectory seeds the price archive from every *.csv file in dir.
//
//   - dir:      directory containing seed CSV files.
//   - db:       open *sql.DB (PostgreSQL).
//   - parallel: concurrent ticker writes (<=0 means min(7, NumCPU)).
//   - force:    re-seed files already recorded in seed_log.
//
// Behavior:
//   - Files already in seed_log are skipped unless force is set.
//   - Rows of the remaining files are merged per ticker (later files win on date clashes).
//   - Each ticker's history is replaced wholesale in the archive.
//   - seed_log is updated only after every ticker was written.
//   - If any write fails, the rest are cancelled and that error is returned.
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	repo := repoCtor(db)
	log := logger.With("seed")

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		if _, statErr := os.Stat(dir); statErr != nil {
			return fmt.Errorf("stat %s: %w", dir, statErr)
		}
		return fmt.Errorf("no seed files (*.csv) in %s", dir)
	}
	sort.Strings(files)

	log.Info().Int("files", len(files)).Str("dir", dir).Msg("seed start")

	merged := map[string]map[time.Time]models.PriceBar{}
	var seeded []seededFile

	for i, f := range files {
		base := filepath.Base(f)

		exists, err := repo.HasSeedForFile(ctx, base)
		if err != nil {
			log.Error().Str("file", base).Err(err).Msg("check seed log failed")
			return fmt.Errorf("file %s: check seed log: %w", f, err)
		}
		if exists && !force {
			log.Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already seeded")
			continue
		}

		start := time.Now()
		series, rows, err := parseFile(ctx, f)
		if err != nil {
			log.Error().Str("file", base).Err(err).Msg("file failed")
			return fmt.Errorf("file %s: %w", f, err)
		}
		for ticker, s := range series {
			if merged[ticker] == nil {
				merged[ticker] = map[time.Time]models.PriceBar{}
			}
			for _, b := range s.Bars {
				merged[ticker][b.Date] = b
			}
		}
		seeded = append(seeded, seededFile{name: base, rows: rows})
		log.Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).Int("rows", rows).Int("tickers", len(series)).Dur("elapsed", time.Since(start)).Msg("file parsed")
	}

	if len(seeded) == 0 {
		log.Info().Msg("nothing to seed")
		return nil
	}

	maxParallel := maxParallelDefault
	if parallel > 0 {
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for ticker, days := range merged {
		s := toSeries(ticker, days)
		g.Go(func() error {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("ticker %s: %w", s.Ticker, err)
			}
			if err := repo.ReplaceSeries(gctx, s); err != nil {
				log.Error().Str("ticker", s.Ticker).Err(err).Msg("write failed")
				return fmt.Errorf("ticker %s: %w", s.Ticker, err)
			}
			log.Debug().Str("ticker", s.Ticker).Int("bars", len(s.Bars)).Msg("ticker written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, sf := range seeded {
		if err := repo.UpsertSeedLog(ctx, sf.name, sf.rows); err != nil {
			log.Error().Str("file", sf.name).Err(err).Msg("update seed log failed")
			return fmt.Errorf("file %s: upsert seed log: %w", sf.name, err)
		}
	}

	log.Info().Int("files", len(seeded)).Int("tickers", len(merged)).Str("tickers_list", strings.Join(sortedKeys(merged), ",")).Bool("force", force).Msg("seed done")
	return nil
}

type seededFile struct {
	name string
	rows int
}

func toSeries(ticker string, days map[time.Time]models.PriceBar) *models.PriceSeries {
	s := &models.PriceSeries{Ticker: ticker, Bars: make([]models.PriceBar, 0, len(days))}
	for _, b := range days {
		s.Bars = append(s.Bars, b)
	}
	sort.Slice(s.Bars, func(i, j int) bool { return s.Bars[i].Date.Before(s.Bars[j].Date) })
	return s
}

func sortedKeys(m map[string]map[time.Time]models.PriceBar) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
