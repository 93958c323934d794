// Package objective scores how well a candidate parameter vector explains the
// observed points. Infeasibility is always signaled through a +Inf value so
// that derivative-free optimizers can roam the whole box without special
// cases; the function never returns an error and never panics on in-box input.
package objective

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"spiralfit/internal/curve"
	"spiralfit/internal/dataset"
	"spiralfit/internal/model"
)

// Regularization pulls M toward a fixed prior so that ambiguous data does not
// drive the growth-rate estimate to the box edge.
const (
	RegPrior  = 0.015
	RegScale  = 0.02
	RegWeight = 200.0
)

// Config selects the residual aggregation. The default is the L1 sum of
// absolute y deviations; the Euclidean variant aggregates the point distance
// at the matched x position, which collapses to the same |dy| because the
// interpolated prediction shares the observation's x.
type Config struct {
	UseEuclidean bool
}

// Func builds the objective over a fixed observation set. Each invocation
// re-evaluates the curve from scratch; there is no memoized state, so the
// returned closure is safe to call from concurrent optimizer workers.
func Func(obs dataset.Observations, cfg Config) func(p model.Params) float64 {
	ts := curve.Domain(obs.Len())
	xObs := append([]float64(nil), obs.X...)
	yObs := append([]float64(nil), obs.Y...)

	return func(p model.Params) float64 {
		if !curve.InBounds(p) {
			return math.Inf(1)
		}

		xPred, yPred := curve.Evaluate(ts, p)
		for i := range xPred {
			if !isFinite(xPred[i]) || !isFinite(yPred[i]) {
				return math.Inf(1)
			}
		}

		// The curve is not monotonic in x, so the samples must be reordered
		// before they can act as an interpolation table.
		sortByX(xPred, yPred)
		xTable, yTable := collapseDuplicateX(xPred, yPred)
		if len(xTable) < 2 {
			return math.Inf(1)
		}

		var pl interp.PiecewiseLinear
		if err := pl.Fit(xTable, yTable); err != nil {
			return math.Inf(1)
		}
		lo, hi := xTable[0], xTable[len(xTable)-1]

		total := 0.0
		for i, x := range xObs {
			// Flat extrapolation: queries beyond the table return the
			// boundary y rather than extending the edge segment.
			if x < lo {
				x = lo
			} else if x > hi {
				x = hi
			}
			dy := pl.Predict(x) - yObs[i]
			if cfg.UseEuclidean {
				total += math.Hypot(0, dy)
			} else {
				total += math.Abs(dy)
			}
		}

		reg := (p.M - RegPrior) / RegScale
		total += RegWeight * reg * reg
		if !isFinite(total) {
			return math.Inf(1)
		}
		return total
	}
}

// VectorFunc adapts Func to the []float64 signature optimizers expect,
// in theta, M, X order.
func VectorFunc(obs dataset.Observations, cfg Config) func(v []float64) float64 {
	fn := Func(obs, cfg)
	return func(v []float64) float64 {
		return fn(model.FromVector(v))
	}
}

// Regularization returns the penalty term alone for a given growth rate.
func Regularization(m float64) float64 {
	reg := (m - RegPrior) / RegScale
	return RegWeight * reg * reg
}

func sortByX(xs, ys []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	sortedX := make([]float64, len(xs))
	sortedY := make([]float64, len(ys))
	for i, j := range idx {
		sortedX[i] = xs[j]
		sortedY[i] = ys[j]
	}
	copy(xs, sortedX)
	copy(ys, sortedY)
}

// collapseDuplicateX drops later entries holding an x already present, since
// the interpolation table requires strictly increasing abscissae.
func collapseDuplicateX(xs, ys []float64) ([]float64, []float64) {
	if len(xs) == 0 {
		return xs, ys
	}
	outX := xs[:1]
	outY := ys[:1]
	for i := 1; i < len(xs); i++ {
		if xs[i] == outX[len(outX)-1] {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
