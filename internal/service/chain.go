package service

import "fmt"

// Kind classifies a stage failure.
type Kind int

const (
	KindDataUnavailable Kind = iota + 1
	KindInsufficientHistory
	KindModelNotFound
	KindModelInferenceError
)

func (k Kind) String() string {
	switch k {
	case KindDataUnavailable:
		return "data_unavailable"
	case KindInsufficientHistory:
		return "insufficient_history"
	case KindModelNotFound:
		return "model_not_found"
	case KindModelInferenceError:
		return "model_inference_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Stage names a pipeline state.
type Stage string

const (
	StageFetchData    Stage = "fetch_data"
	StageBuildWindow  Stage = "build_window"
	StageResolveModel Stage = "resolve_model"
	StageInfer        Stage = "infer"
	StageBuildLadder  Stage = "build_ladder"
	StageFallback     Stage = "fallback"
	StageDone         Stage = "done"
)

// stageResult is the tagged outcome of one stage: either a value or a
// classified failure.
type stageResult[T any] struct {
	value T
	ok    bool
	stage Stage
	kind  Kind
	err   error
}

func ok[T any](v T) stageResult[T] {
	return stageResult[T]{value: v, ok: true}
}

func fail[T any](stage Stage, kind Kind, err error) stageResult[T] {
	return stageResult[T]{stage: stage, kind: kind, err: err}
}

// failure is a stage failure without its value type, used after the
// pipeline stops.
type failure struct {
	stage Stage
	kind  Kind
	err   error
}

func (f failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.stage, f.kind, f.err)
}

func (r stageResult[T]) failure() *failure {
	if r.ok {
		return nil
	}
	return &failure{stage: r.stage, kind: r.kind, err: r.err}
}

// decisions maps every failure kind to the next state. Every kind degrades
// to the synthetic fallback; none reaches the caller.
var decisions = map[Kind]Stage{
	KindDataUnavailable:     StageFallback,
	KindInsufficientHistory: StageFallback,
	KindModelNotFound:       StageFallback,
	KindModelInferenceError: StageFallback,
}

// next returns the state a failure of kind transitions to. Unknown kinds
// also fall back.
func next(kind Kind) Stage {
	if s, ok := decisions[kind]; ok {
		return s
	}
	return StageFallback
}
