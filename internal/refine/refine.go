// Package refine polishes a global-search incumbent with a derivative-free
// Nelder-Mead pass. The sort-then-interpolate objective is non-smooth, so the
// caller must treat the refined point as advisory and keep the incumbent
// whenever refinement fails to improve on it.
package refine

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/optimize"
)

type Config struct {
	MaxIterations int
	Tolerance     float64
}

const (
	DefaultMaxIterations = 2000
	DefaultTolerance     = 1e-9
)

// Result is the refined point and its objective value.
type Result struct {
	X           []float64
	F           float64
	Evaluations int
}

// Minimize runs a Nelder-Mead simplex from start. An optimizer failure is
// returned to the caller rather than masked, so the incumbent can be kept.
func Minimize(ctx context.Context, fn func([]float64) float64, start []float64, cfg Config) (Result, error) {
	if fn == nil {
		return Result{}, errors.New("objective function is required")
	}
	if len(start) == 0 {
		return Result{}, errors.New("starting point is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}

	evaluations := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evaluations++
			return fn(x)
		},
	}
	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Tolerance,
			Iterations: 50,
		},
	}

	initial := append([]float64(nil), start...)
	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil {
		return Result{}, err
	}
	return Result{
		X:           append([]float64(nil), result.X...),
		F:           result.F,
		Evaluations: evaluations,
	}, nil
}
