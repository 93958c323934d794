package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ResidualSummary condenses the per-point residual distances of a fit.
type ResidualSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Max   float64 `json:"max"`
}

func SummarizeResiduals(residuals []float64) ResidualSummary {
	if len(residuals) == 0 {
		return ResidualSummary{}
	}
	summary := ResidualSummary{
		Count: len(residuals),
		Mean:  stat.Mean(residuals, nil),
		Max:   floats.Max(residuals),
	}
	// StdDev needs two samples; a NaN here would poison the JSON artifact.
	if len(residuals) > 1 {
		summary.Std = stat.StdDev(residuals, nil)
	}
	return summary
}
