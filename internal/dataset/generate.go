package dataset

import (
	"math/rand"

	"spiralfit/internal/curve"
	"spiralfit/internal/model"
)

// Generate synthesizes n observations from known curve parameters, sampled
// evenly over the curve-parameter domain with additive Gaussian noise.
// A fixed seed yields an identical dataset.
func Generate(p model.Params, n int, noiseStd float64, seed int64) Observations {
	rng := rand.New(rand.NewSource(seed))
	ts := curve.Domain(n)
	xs, ys := curve.Evaluate(ts, p)
	for i := range xs {
		if noiseStd > 0 {
			xs[i] += rng.NormFloat64() * noiseStd
			ys[i] += rng.NormFloat64() * noiseStd
		}
	}
	return Observations{X: xs, Y: ys}
}
