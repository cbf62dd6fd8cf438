// Package inference runs one forward pass over a prepared window.
package inference

import (
	"errors"
	"fmt"
	"math"

	"github.com/guttosm/stockcast/internal/model"
	"github.com/guttosm/stockcast/internal/window"
)

// ErrInference wraps every runtime failure of a forward pass. The engine
// never substitutes a value; callers decide how to degrade.
var ErrInference = errors.New("model inference failed")

// Engine predicts the next close from a NormalizedWindow.
type Engine struct{}

// NewEngine returns a ready engine. It holds no state.
func NewEngine() *Engine { return &Engine{} }

// Predict runs net over w and returns the next-step price on the raw axis,
// inverse-scaled with w's own scaler.
func (e *Engine) Predict(w *window.Window, net *model.Network) (float64, error) {
	if w == nil || net == nil {
		return 0, fmt.Errorf("%w: nil window or model", ErrInference)
	}
	if len(w.Values) != window.LookBack || net.LookBack != window.LookBack {
		return 0, fmt.Errorf("%w: window=%d model=%d want %d", ErrInference, len(w.Values), net.LookBack, window.LookBack)
	}

	scaled, err := net.Forward(w.Values)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInference, err)
	}
	price := w.Inverse(scaled)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: non-finite output %v", ErrInference, price)
	}
	return price, nil
}
