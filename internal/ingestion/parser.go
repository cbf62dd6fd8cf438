package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stockcast/internal/domain/models"
)

// requiredHeaders must all be present (case-insensitive, any order).
// Ticker is optional; without it the ticker comes from the file name.
var requiredHeaders = []string{"date", "open", "high", "low", "close", "volume"}

// parseFile reads one seed CSV and groups its rows by ticker.
// It fails on:
//   - a missing required column
//   - malformed dates or numbers
//   - a file without a Ticker column whose name yields no ticker
//
// It tolerates:
//   - extra columns (ignored)
//   - rows with an empty or non-positive Close (skipped)
//   - duplicate dates (the last row wins)
//
// Returns the per-ticker series (ascending by date) and the number of rows kept.
func parseFile(ctx context.Context, path string) (map[string]*models.PriceSeries, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", h)
		}
	}

	tickerCol, hasTicker := cols["ticker"]
	fileTicker := tickerFromFilename(path)
	if !hasTicker && fileTicker == "" {
		return nil, 0, fmt.Errorf("no Ticker column and no ticker in file name %q", filepath.Base(path))
	}

	byTicker := map[string]map[time.Time]models.PriceBar{}
	lineNumber := 1
	kept := 0

	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		ticker := fileTicker
		if hasTicker {
			ticker = strings.ToUpper(strings.TrimSpace(field(rec, tickerCol)))
		}
		if ticker == "" {
			return nil, 0, fmt.Errorf("line %d: empty ticker", lineNumber)
		}

		bar, ok, err := recordToBar(rec, cols)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if !ok {
			continue
		}

		if byTicker[ticker] == nil {
			byTicker[ticker] = map[time.Time]models.PriceBar{}
		}
		if _, dup := byTicker[ticker][bar.Date]; !dup {
			kept++
		}
		byTicker[ticker][bar.Date] = bar
	}

	out := make(map[string]*models.PriceSeries, len(byTicker))
	for ticker, days := range byTicker {
		s := &models.PriceSeries{Ticker: ticker, Bars: make([]models.PriceBar, 0, len(days))}
		for _, b := range days {
			s.Bars = append(s.Bars, b)
		}
		sort.Slice(s.Bars, func(i, j int) bool { return s.Bars[i].Date.Before(s.Bars[j].Date) })
		out[ticker] = s
	}
	return out, kept, nil
}

// recordToBar converts one CSV record. ok is false when the row has no usable Close.
//
// Date accepts "2006-01-02" optionally followed by a clock part
// ("2023-01-03 00:00:00-05:00"); only the calendar date is kept.
func recordToBar(rec []string, cols map[string]int) (models.PriceBar, bool, error) {
	var b models.PriceBar

	ds := strings.TrimSpace(field(rec, cols["date"]))
	if len(ds) < len(models.DateLayout) {
		return b, false, fmt.Errorf("invalid Date %q", ds)
	}
	d, err := time.Parse(models.DateLayout, ds[:len(models.DateLayout)])
	if err != nil {
		return b, false, fmt.Errorf("invalid Date: %v", err)
	}
	b.Date = d

	nums := []struct {
		col string
		dst *float64
	}{
		{"open", &b.Open},
		{"high", &b.High},
		{"low", &b.Low},
		{"close", &b.Close},
		{"volume", &b.Volume},
	}
	for _, n := range nums {
		s := strings.TrimSpace(field(rec, cols[n.col]))
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return b, false, fmt.Errorf("invalid %s: %v", n.col, err)
		}
		*n.dst = v
	}

	if b.Close <= 0 {
		return b, false, nil
	}
	return b, true, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// tickerFromFilename maps "aapl.csv" and "AAPL_data.csv" to "AAPL".
func tickerFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexByte(base, '_'); i >= 0 {
		base = base[:i]
	}
	return strings.ToUpper(strings.TrimSpace(base))
}
