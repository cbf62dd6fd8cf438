package model

import (
	"math"
	"math/rand"

	"github.com/guttosm/stockcast/internal/window"
)

const (
	placeholderHidden = 25
	placeholderSeed   = 60_25_1
)

// NewPlaceholder synthesizes an untrained, structurally valid network:
// LookBack → 25 (tanh) → 1 (linear), Glorot-uniform weights drawn from a
// fixed-seed source so every placeholder is identical.
func NewPlaceholder(ticker string) *Network {
	rng := rand.New(rand.NewSource(placeholderSeed))
	return &Network{
		Ticker:   ticker,
		LookBack: window.LookBack,
		Layers: []Layer{
			dense(rng, window.LookBack, placeholderHidden, Tanh),
			dense(rng, placeholderHidden, 1, Linear),
		},
		placeholder: true,
	}
}

func dense(rng *rand.Rand, in, out int, act Activation) Layer {
	limit := math.Sqrt(6 / float64(in+out))
	w := make([][]float64, out)
	for i := range w {
		w[i] = make([]float64, in)
		for j := range w[i] {
			w[i][j] = (rng.Float64()*2 - 1) * limit
		}
	}
	return Layer{Weights: w, Biases: make([]float64, out), Activation: act}
}
