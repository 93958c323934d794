// Package evolve implements box-constrained differential evolution
// (best/1/bin with a dithered mutation factor). The objective communicates
// infeasibility by returning +Inf, which the selection step treats as a
// valid, maximally unattractive fitness value.
package evolve

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"spiralfit/internal/model"
)

type Config struct {
	PopulationSize int
	MaxIterations  int
	Seed           int64
	CrossoverProb  float64
	MutationMin    float64
	MutationMax    float64
	Tolerance      float64

	// OnGeneration, when set, is notified after every generation. The
	// authoritative trace is the one returned in Result; the hook only
	// observes it and must not retain the point past the call.
	OnGeneration func(point model.TracePoint)
}

const (
	DefaultPopulationSize = 25
	DefaultMaxIterations  = 800
	DefaultCrossoverProb  = 0.7
	DefaultMutationMin    = 0.5
	DefaultMutationMax    = 1.0
	DefaultTolerance      = 0.01
)

// Result is the outcome of a single optimization run.
type Result struct {
	X           []float64
	F           float64
	Iterations  int
	Evaluations int
	Trace       []model.TracePoint
}

func (c Config) withDefaults() Config {
	if c.PopulationSize == 0 {
		c.PopulationSize = DefaultPopulationSize
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.CrossoverProb == 0 {
		c.CrossoverProb = DefaultCrossoverProb
	}
	if c.MutationMin == 0 && c.MutationMax == 0 {
		c.MutationMin = DefaultMutationMin
		c.MutationMax = DefaultMutationMax
	}
	if c.Tolerance == 0 {
		// A negative tolerance disables the convergence stop entirely.
		c.Tolerance = DefaultTolerance
	}
	return c
}

func (c Config) validate() error {
	if c.PopulationSize < 4 {
		return errors.New("population size must be >= 4")
	}
	if c.MaxIterations <= 0 {
		return errors.New("iteration cap must be > 0")
	}
	if c.CrossoverProb < 0 || c.CrossoverProb > 1 {
		return errors.New("crossover probability must be in [0, 1]")
	}
	if c.MutationMin < 0 || c.MutationMax < c.MutationMin || c.MutationMax > 2 {
		return errors.New("mutation factor range must satisfy 0 <= min <= max <= 2")
	}
	return nil
}

// Minimize runs differential evolution over the given box. The run is
// deterministic for a fixed seed: all randomness flows from a single
// rand.Rand created here, and candidates are processed sequentially.
func Minimize(ctx context.Context, fn func([]float64) float64, bounds [][2]float64, cfg Config) (Result, error) {
	if fn == nil {
		return Result{}, errors.New("objective function is required")
	}
	if len(bounds) == 0 {
		return Result{}, errors.New("bounds are required")
	}
	for _, b := range bounds {
		if b[1] < b[0] {
			return Result{}, errors.New("bounds must satisfy low <= high")
		}
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	dims := len(bounds)
	np := cfg.PopulationSize

	pop := make([][]float64, np)
	energy := make([]float64, np)
	evaluations := 0
	for i := range pop {
		pop[i] = make([]float64, dims)
		for j, b := range bounds {
			pop[i][j] = b[0] + rng.Float64()*(b[1]-b[0])
		}
		energy[i] = fn(pop[i])
		evaluations++
	}

	best := 0
	for i := 1; i < np; i++ {
		if energy[i] < energy[best] {
			best = i
		}
	}

	result := Result{
		Trace: make([]model.TracePoint, 0, cfg.MaxIterations),
	}

	trial := make([]float64, dims)
	for gen := 1; gen <= cfg.MaxIterations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		// Per-generation dither keeps single runs reproducible while varying
		// the mutation strength across generations.
		f := cfg.MutationMin + rng.Float64()*(cfg.MutationMax-cfg.MutationMin)

		for i := 0; i < np; i++ {
			r1, r2 := pickDistinctPair(rng, np, i)
			jRand := rng.Intn(dims)
			for j := 0; j < dims; j++ {
				if j == jRand || rng.Float64() < cfg.CrossoverProb {
					trial[j] = pop[best][j] + f*(pop[r1][j]-pop[r2][j])
				} else {
					trial[j] = pop[i][j]
				}
				if trial[j] < bounds[j][0] {
					trial[j] = bounds[j][0]
				} else if trial[j] > bounds[j][1] {
					trial[j] = bounds[j][1]
				}
			}

			trialEnergy := fn(trial)
			evaluations++
			if trialEnergy <= energy[i] {
				copy(pop[i], trial)
				energy[i] = trialEnergy
				if trialEnergy < energy[best] {
					best = i
				}
			}
		}

		result.Iterations = gen
		point := model.TracePoint{Iteration: gen, Objective: energy[best]}
		result.Trace = append(result.Trace, point)
		if cfg.OnGeneration != nil {
			cfg.OnGeneration(point)
		}

		if converged(energy, cfg.Tolerance) {
			break
		}
	}

	result.X = append([]float64(nil), pop[best]...)
	result.F = energy[best]
	result.Evaluations = evaluations
	return result, nil
}

func pickDistinctPair(rng *rand.Rand, np, exclude int) (int, int) {
	r1 := exclude
	for r1 == exclude {
		r1 = rng.Intn(np)
	}
	r2 := exclude
	for r2 == exclude || r2 == r1 {
		r2 = rng.Intn(np)
	}
	return r1, r2
}

// converged reports whether the population energies have collapsed within the
// relative tolerance. Populations still holding infeasible members never
// count as converged.
func converged(energy []float64, tol float64) bool {
	if tol <= 0 {
		return false
	}
	mean := 0.0
	for _, e := range energy {
		if math.IsInf(e, 0) || math.IsNaN(e) {
			return false
		}
		mean += e
	}
	mean /= float64(len(energy))

	variance := 0.0
	for _, e := range energy {
		d := e - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(energy)))
	return std <= tol*math.Abs(mean)
}
