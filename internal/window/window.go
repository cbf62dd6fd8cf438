// Package window turns a raw closing-price history into the fixed-length,
// min-max scaled input the models consume, and keeps the inverse transform.
package window

import (
	"errors"
	"fmt"
	"math"
)

// LookBack is the number of most recent closes fed to a model.
const LookBack = 60

var (
	// ErrInsufficientHistory is returned when there is no closing price at all.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrDegenerateSeries is returned when a close is not a finite positive number.
	ErrDegenerateSeries = errors.New("degenerate price series")
)

// Scaler is a min-max scaler fit on exactly one window.
type Scaler struct {
	Min float64
	Max float64
}

// scale returns the divisor; a flat window uses unit range.
func (s Scaler) scale() float64 {
	if r := s.Max - s.Min; r > 0 {
		return r
	}
	return 1
}

// Transform maps a raw value into the window's [0,1] space.
func (s Scaler) Transform(v float64) float64 {
	return (v - s.Min) / s.scale()
}

// Inverse maps a scaled value back onto the raw price axis.
func (s Scaler) Inverse(v float64) float64 {
	return v*s.scale() + s.Min
}

// Window is a NormalizedWindow: LookBack scaled closes plus the scaler that produced them.
type Window struct {
	Values []float64
	Raw    []float64
	Scaler Scaler
}

// Inverse maps a scaled value back to a price using this window's own scaler.
func (w *Window) Inverse(v float64) float64 { return w.Scaler.Inverse(v) }

// Build left-pads (repeating the earliest close) or trims (keeping the most
// recent) raw closes to LookBack values. The input is not modified.
func Build(raw []float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, ErrInsufficientHistory
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, fmt.Errorf("%w: close #%d is %v", ErrDegenerateSeries, i, v)
		}
	}

	out := make([]float64, LookBack)
	if len(raw) >= LookBack {
		copy(out, raw[len(raw)-LookBack:])
		return out, nil
	}
	pad := LookBack - len(raw)
	for i := 0; i < pad; i++ {
		out[i] = raw[0]
	}
	copy(out[pad:], raw)
	return out, nil
}

// Transform builds the fixed-length window and fits a fresh scaler on it.
func Transform(raw []float64) (*Window, error) {
	vals, err := Build(raw)
	if err != nil {
		return nil, err
	}

	s := Scaler{Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}

	scaled := make([]float64, len(vals))
	for i, v := range vals {
		scaled[i] = s.Transform(v)
	}
	return &Window{Values: scaled, Raw: vals, Scaler: s}, nil
}
