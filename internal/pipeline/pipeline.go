// Package pipeline orchestrates the full fit: load observations, run the
// multi-restart global search, polish the incumbent locally, and assemble the
// fitted curve with its diagnostics.
package pipeline

import (
	"context"
	"errors"
	"math"

	"spiralfit/internal/curve"
	"spiralfit/internal/dataset"
	"spiralfit/internal/evolve"
	"spiralfit/internal/model"
	"spiralfit/internal/objective"
	"spiralfit/internal/refine"
)

const (
	DefaultSeed     = 42
	DefaultRestarts = 3
)

// Config is the immutable run configuration. Tests vary seeds and budgets per
// case; nothing here is process-global.
type Config struct {
	// DataPath names the CSV observation source. It is ignored when
	// Observations is already populated.
	DataPath     string
	Observations dataset.Observations

	Seed           int64
	PopulationSize int
	MaxIterations  int
	Restarts       int
	Tolerance      float64
	UseEuclidean   bool

	RefineMaxIterations int

	// Progress, when set, observes every global-search generation.
	Progress func(restart int, point model.TracePoint)
}

// FitResult packages the accepted parameter vector together with the fitted
// curve samples and per-point residual distances for downstream reporting.
type FitResult struct {
	Params      model.Params
	Objective   float64
	Evaluations int
	Refined     bool

	Restarts []model.RestartResult

	Observations dataset.Observations
	T            []float64
	XFit         []float64
	YFit         []float64
	Residuals    []float64
}

// RestartSeed derives the deterministic seed of one restart from the base.
func RestartSeed(base int64, restart int) int64 {
	return base + int64(3*restart)
}

// Run executes the complete fitting pipeline. Restarts run sequentially and
// independently; the restart with the lowest objective becomes the incumbent,
// and local refinement is accepted only on strict improvement.
func Run(ctx context.Context, cfg Config) (FitResult, error) {
	obs := cfg.Observations
	if obs.Len() == 0 {
		if cfg.DataPath == "" {
			return FitResult{}, errors.New("either observations or a data path is required")
		}
		loaded, err := dataset.Load(cfg.DataPath)
		if err != nil {
			return FitResult{}, err
		}
		obs = loaded
	}

	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = DefaultRestarts
	}

	fn := objective.VectorFunc(obs, objective.Config{UseEuclidean: cfg.UseEuclidean})
	box := curve.Bounds()
	bounds := make([][2]float64, len(box))
	copy(bounds, box[:])

	result := FitResult{
		Observations: obs,
		Restarts:     make([]model.RestartResult, 0, cfg.Restarts),
	}

	incumbent := []float64(nil)
	incumbentF := math.Inf(1)
	for r := 1; r <= cfg.Restarts; r++ {
		restart := r
		seed := RestartSeed(cfg.Seed, r)
		runCfg := evolve.Config{
			PopulationSize: cfg.PopulationSize,
			MaxIterations:  cfg.MaxIterations,
			Seed:           seed,
			Tolerance:      cfg.Tolerance,
		}
		if cfg.Progress != nil {
			runCfg.OnGeneration = func(point model.TracePoint) {
				cfg.Progress(restart, point)
			}
		}

		run, err := evolve.Minimize(ctx, fn, bounds, runCfg)
		if err != nil {
			return FitResult{}, err
		}

		result.Restarts = append(result.Restarts, model.RestartResult{
			Restart:     r,
			Seed:        seed,
			Params:      model.FromVector(run.X),
			Objective:   run.F,
			Evaluations: run.Evaluations,
			Trace:       run.Trace,
		})
		result.Evaluations += run.Evaluations

		// The first restart always seeds the incumbent, even at +Inf, so an
		// all-infeasible fit still yields a parameter vector instead of a nil
		// incumbent downstream.
		if incumbent == nil || run.F < incumbentF {
			incumbent = run.X
			incumbentF = run.F
		}
	}

	best := append([]float64(nil), incumbent...)
	bestF := incumbentF

	polished, err := refine.Minimize(ctx, fn, incumbent, refine.Config{
		MaxIterations: cfg.RefineMaxIterations,
	})
	if err == nil {
		result.Evaluations += polished.Evaluations
		// The non-smooth landscape occasionally walks the simplex to a worse
		// point; keep the incumbent unless refinement strictly improved it.
		if polished.F < bestF {
			best = polished.X
			bestF = polished.F
			result.Refined = true
		}
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FitResult{}, err
	}

	result.Params = model.FromVector(best)
	result.Objective = bestF

	result.T = curve.Domain(obs.Len())
	result.XFit, result.YFit = curve.Evaluate(result.T, result.Params)
	result.Residuals = make([]float64, obs.Len())
	for i := range result.Residuals {
		result.Residuals[i] = math.Hypot(result.XFit[i]-obs.X[i], result.YFit[i]-obs.Y[i])
	}
	return result, nil
}
