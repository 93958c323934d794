package stats

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePlots renders the diagnostic PNGs for a run directory: the fitted
// curve over the observations, the first restart's search progress, and the
// residual distance along the curve parameter. Each plot is independent; a
// run with no trace still gets the curve and residual plots.
func WritePlots(runDir string, artifacts RunArtifacts) error {
	if len(artifacts.T) == 0 {
		return fmt.Errorf("no fitted curve samples to plot")
	}

	if err := plotFitCurve(filepath.Join(runDir, "fit_curve.png"), artifacts); err != nil {
		return err
	}
	if err := plotResiduals(filepath.Join(runDir, "residuals.png"), artifacts); err != nil {
		return err
	}
	if len(artifacts.Restarts) > 0 && len(artifacts.Restarts[0].Trace) > 0 {
		if err := plotProgress(filepath.Join(runDir, "progress.png"), artifacts); err != nil {
			return err
		}
	}
	return nil
}

func plotFitCurve(path string, artifacts RunArtifacts) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fitted curve (theta=%.2f, M=%.4f, X=%.2f)",
		artifacts.Params.ThetaDeg, artifacts.Params.M, artifacts.Params.X)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if len(artifacts.XObs) > 0 {
		obs := make(plotter.XYs, len(artifacts.XObs))
		for i := range artifacts.XObs {
			obs[i] = plotter.XY{X: artifacts.XObs[i], Y: artifacts.YObs[i]}
		}
		scatter, err := plotter.NewScatter(obs)
		if err != nil {
			return err
		}
		p.Add(scatter)
		p.Legend.Add("data", scatter)
	}

	fit := make(plotter.XYs, len(artifacts.T))
	for i := range artifacts.T {
		fit[i] = plotter.XY{X: artifacts.XFit[i], Y: artifacts.YFit[i]}
	}
	line, err := plotter.NewLine(fit)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add("fit", line)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func plotProgress(path string, artifacts RunArtifacts) error {
	p := plot.New()
	p.Title.Text = "Global search progress (restart 1)"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "best objective"

	trace := artifacts.Restarts[0].Trace
	pts := make(plotter.XYs, len(trace))
	for i, point := range trace {
		pts[i] = plotter.XY{X: float64(point.Iteration), Y: point.Objective}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func plotResiduals(path string, artifacts RunArtifacts) error {
	p := plot.New()
	p.Title.Text = "Residual distance along curve parameter"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "residual"

	pts := make(plotter.XYs, len(artifacts.T))
	for i := range artifacts.T {
		pts[i] = plotter.XY{X: artifacts.T[i], Y: artifacts.Residuals[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
