package curve

import (
	"math"

	"spiralfit/internal/model"
)

// Curve-parameter domain. The true per-point parameter is not observed, so
// fitting samples t evenly over this interval, one sample per observation.
const (
	TMin = 6.0
	TMax = 60.0
)

// Box constraints for the three free parameters.
const (
	ThetaMin = 0.0
	ThetaMax = 50.0
	MMin     = -0.08
	MMax     = 0.08
	XMin     = 0.0
	XMax     = 100.0
)

// expClamp bounds the exponent of the growth term so that extreme M values
// explored by the global optimizer cannot overflow to +Inf.
const expClamp = 30.0

// Bounds returns the parameter box in optimizer order: theta, M, X.
func Bounds() [3][2]float64 {
	return [3][2]float64{
		{ThetaMin, ThetaMax},
		{MMin, MMax},
		{XMin, XMax},
	}
}

// InBounds reports whether every coordinate of p lies inside the box.
func InBounds(p model.Params) bool {
	return p.ThetaDeg >= ThetaMin && p.ThetaDeg <= ThetaMax &&
		p.M >= MMin && p.M <= MMax &&
		p.X >= XMin && p.X <= XMax
}

// Point evaluates the parametric curve at a single t.
//
//	x(t) = t·cos(θ) − e^{clamp(M·|t|)}·sin(0.3t)·sin(θ) + X
//	y(t) = 42 + t·sin(θ) + e^{clamp(M·|t|)}·sin(0.3t)·cos(θ)
func Point(t float64, p model.Params) (x, y float64) {
	th := p.ThetaDeg * math.Pi / 180
	expTerm := math.Exp(clamp(p.M*math.Abs(t), -expClamp, expClamp))
	sinTerm := math.Sin(0.3 * t)
	x = t*math.Cos(th) - expTerm*sinTerm*math.Sin(th) + p.X
	y = 42 + t*math.Sin(th) + expTerm*sinTerm*math.Cos(th)
	return x, y
}

// Evaluate samples the curve at every t in ts.
func Evaluate(ts []float64, p model.Params) (xs, ys []float64) {
	xs = make([]float64, len(ts))
	ys = make([]float64, len(ts))
	for i, t := range ts {
		xs[i], ys[i] = Point(t, p)
	}
	return xs, ys
}

// Domain returns n evenly spaced t values spanning [TMin, TMax].
func Domain(n int) []float64 {
	if n <= 0 {
		return nil
	}
	ts := make([]float64, n)
	if n == 1 {
		ts[0] = TMin
		return ts
	}
	step := (TMax - TMin) / float64(n-1)
	for i := range ts {
		ts[i] = TMin + float64(i)*step
	}
	ts[n-1] = TMax
	return ts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
