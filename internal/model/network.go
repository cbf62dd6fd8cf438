// Package model holds the trained-artifact representation, the file-based
// model store and the process-wide registry that lends models to inference.
package model

import (
	"errors"
	"fmt"
	"math"
)

// Activation names a layer's element-wise non-linearity.
type Activation string

const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Tanh    Activation = "tanh"
	Sigmoid Activation = "sigmoid"
)

// ErrShapeMismatch is returned when an input or a layer does not line up.
var ErrShapeMismatch = errors.New("shape mismatch")

// Layer is a dense layer: out = act(W·in + b). Weights are [out][in].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation Activation  `json:"activation"`
}

// Network is a serialized feed-forward regressor that maps LookBack scaled
// closes to one scaled next-step close. It is read-only once loaded.
type Network struct {
	Ticker    string  `json:"ticker"`
	LookBack  int     `json:"look_back"`
	Layers    []Layer `json:"layers"`
	TrainedAt string  `json:"trained_at,omitempty"`

	placeholder bool
}

// Placeholder reports whether the network was synthesized rather than trained.
func (n *Network) Placeholder() bool { return n.placeholder }

// Validate checks that layer shapes chain from LookBack inputs to one output.
func (n *Network) Validate() error {
	if n.LookBack <= 0 {
		return fmt.Errorf("%w: look_back=%d", ErrShapeMismatch, n.LookBack)
	}
	if len(n.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrShapeMismatch)
	}
	in := n.LookBack
	for i, l := range n.Layers {
		if len(l.Weights) == 0 || len(l.Weights) != len(l.Biases) {
			return fmt.Errorf("%w: layer %d has %d weight rows and %d biases", ErrShapeMismatch, i, len(l.Weights), len(l.Biases))
		}
		for j, row := range l.Weights {
			if len(row) != in {
				return fmt.Errorf("%w: layer %d row %d has %d inputs, want %d", ErrShapeMismatch, i, j, len(row), in)
			}
		}
		switch l.Activation {
		case Linear, ReLU, Tanh, Sigmoid, "":
		default:
			return fmt.Errorf("layer %d: unknown activation %q", i, l.Activation)
		}
		in = len(l.Weights)
	}
	if in != 1 {
		return fmt.Errorf("%w: network has %d outputs, want 1", ErrShapeMismatch, in)
	}
	return nil
}

// Forward runs one pass and returns the single scaled output.
func (n *Network) Forward(input []float64) (float64, error) {
	if len(input) != n.LookBack {
		return 0, fmt.Errorf("%w: input has %d values, model expects %d", ErrShapeMismatch, len(input), n.LookBack)
	}
	act := input
	for i, l := range n.Layers {
		next := make([]float64, len(l.Weights))
		for j, row := range l.Weights {
			if len(row) != len(act) {
				return 0, fmt.Errorf("%w: layer %d", ErrShapeMismatch, i)
			}
			sum := l.Biases[j]
			for k, w := range row {
				sum += w * act[k]
			}
			next[j] = activate(l.Activation, sum)
		}
		act = next
	}
	if len(act) != 1 {
		return 0, fmt.Errorf("%w: %d outputs", ErrShapeMismatch, len(act))
	}
	return act[0], nil
}

func activate(a Activation, x float64) float64 {
	switch a {
	case ReLU:
		return math.Max(0, x)
	case Tanh:
		return math.Tanh(x)
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	default:
		return x
	}
}
