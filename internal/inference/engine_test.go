package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/guttosm/stockcast/internal/model"
	"github.com/guttosm/stockcast/internal/window"
)

// lastValueNet outputs the last scaled input plus bias.
func lastValueNet(bias float64) *model.Network {
	row := make([]float64, window.LookBack)
	row[window.LookBack-1] = 1
	return &model.Network{
		LookBack: window.LookBack,
		Layers:   []model.Layer{{Weights: [][]float64{row}, Biases: []float64{bias}, Activation: model.Linear}},
	}
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestEngine_PredictInverseScales(t *testing.T) {
	w, err := window.Transform(ramp(60)) // min 100, max 159
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	got, err := NewEngine().Predict(w, lastValueNet(0.1))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := (1.0+0.1)*59 + 100
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("predict=%v, want %v", got, want)
	}
}

func TestEngine_Errors(t *testing.T) {
	w, _ := window.Transform(ramp(10))
	e := NewEngine()

	short := &window.Window{Values: []float64{0.5}}
	if _, err := e.Predict(short, lastValueNet(0)); !errors.Is(err, ErrInference) {
		t.Fatalf("short window: want ErrInference, got %v", err)
	}

	wrong := &model.Network{LookBack: 10, Layers: []model.Layer{{Weights: [][]float64{make([]float64, 10)}, Biases: []float64{0}}}}
	if _, err := e.Predict(w, wrong); !errors.Is(err, ErrInference) {
		t.Fatalf("model shape: want ErrInference, got %v", err)
	}

	if _, err := e.Predict(w, lastValueNet(math.Inf(1))); !errors.Is(err, ErrInference) {
		t.Fatalf("non-finite: want ErrInference, got %v", err)
	}

	if _, err := e.Predict(nil, nil); !errors.Is(err, ErrInference) {
		t.Fatalf("nil: want ErrInference, got %v", err)
	}
}
