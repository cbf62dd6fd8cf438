package models

import (
	"errors"
	"fmt"
	"time"
)

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the ordered daily history of a single ticker.
//
// Invariants (checked by Validate):
//   - bars ascend strictly by date (no duplicates)
//   - at least one bar is present
type PriceSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`
}

// ErrEmptySeries is returned by Validate when the series carries no bars.
var ErrEmptySeries = errors.New("price series is empty")

// Validate checks ordering and non-emptiness.
func (s *PriceSeries) Validate() error {
	if s == nil || len(s.Bars) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("bar %d (%s) is not after bar %d (%s)",
				i, s.Bars[i].Date.Format(DateLayout), i-1, s.Bars[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// Closes returns the closing prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar. It panics on an empty series; call Validate first.
func (s *PriceSeries) Last() PriceBar {
	return s.Bars[len(s.Bars)-1]
}

// Tail returns the last n bars as chart points.
func (s *PriceSeries) Tail(n int) []HistoricalPoint {
	start := len(s.Bars) - n
	if start < 0 {
		start = 0
	}
	out := make([]HistoricalPoint, 0, len(s.Bars)-start)
	for _, b := range s.Bars[start:] {
		out = append(out, HistoricalPoint{Date: b.Date.Format(DateLayout), Price: b.Close})
	}
	return out
}

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// TruncateToDate drops the clock part of t, keeping its location.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
