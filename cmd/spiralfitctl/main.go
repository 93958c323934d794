package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"spiralfit/internal/dataset"
	"spiralfit/internal/model"
	"spiralfit/internal/storage"
	fitapi "spiralfit/pkg/spiralfit"
)

const (
	resultsDir = "results"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "fit":
		return runFit(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s (commands: fit, generate, runs, export)", msg)
}

func runFit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional, defaults to a UUID)")
	dataPath := fs.String("data", "", "observation CSV path")
	seed := fs.Int64("seed", 42, "base rng seed")
	population := fs.Int("pop", 25, "population size per restart")
	iterations := fs.Int("iters", 800, "max generations per restart")
	restarts := fs.Int("restarts", 3, "independent global-search restarts")
	tolerance := fs.Float64("tolerance", 0.01, "relative convergence tolerance (<0 disables)")
	euclidean := fs.Bool("euclidean", false, "use euclidean point distance instead of vertical")
	refineIters := fs.Int("refine-iters", 2000, "max local refinement iterations")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "spiralfit.db", "sqlite database path")
	outDir := fs.String("out", resultsDir, "artifacts base directory")
	plots := fs.Bool("plots", false, "write diagnostic PNG plots")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = fitapi.RunRequest{
			RunID:               *runID,
			DataPath:            *dataPath,
			Seed:                *seed,
			PopulationSize:      *population,
			MaxIterations:       *iterations,
			Restarts:            *restarts,
			Tolerance:           *tolerance,
			UseEuclidean:        *euclidean,
			RefineMaxIterations: *refineIters,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":       *runID,
			"data":         *dataPath,
			"seed":         *seed,
			"pop":          *population,
			"iters":        *iterations,
			"restarts":     *restarts,
			"tolerance":    *tolerance,
			"euclidean":    *euclidean,
			"refine-iters": *refineIters,
		})
	}
	if req.DataPath == "" {
		return errors.New("fit requires -data (or data_path in the config)")
	}
	req.WritePlots = *plots

	client, err := fitapi.New(fitapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: *outDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	printer := newProgressPrinter(os.Stderr)
	req.Progress = printer.observe

	summary, err := client.Run(ctx, req)
	printer.done()
	if err != nil {
		return err
	}

	fmt.Printf("fit completed run_id=%s observations=%d seed=%d pop=%d iters=%d restarts=%d\n",
		summary.RunID, summary.Observations, req.Seed, req.PopulationSize, req.MaxIterations, req.Restarts)
	for _, r := range summary.Restarts {
		fmt.Printf("restart=%d seed=%d objective=%.6f evaluations=%s generations=%d\n",
			r.Restart, r.Seed, r.Objective, humanize.Comma(int64(r.Evaluations)), len(r.Trace))
	}
	fmt.Printf("theta_deg=%.6f m=%.6f x=%.6f\n", summary.Params.ThetaDeg, summary.Params.M, summary.Params.X)
	fmt.Printf("objective=%.6f refined=%t evaluations=%s elapsed=%s\n",
		summary.Objective, summary.Refined, humanize.Comma(int64(summary.Evaluations)), summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("latex=%s\n", latexCurve(summary.Params))
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

// latexCurve renders the fitted parametric curve as a LaTeX coordinate pair.
func latexCurve(p model.Params) string {
	th := p.ThetaDeg * math.Pi / 180
	x := fmt.Sprintf("t\\cos(%.6f) - e^{%.6f\\left|t\\right|}\\sin(0.3t)\\sin(%.6f) + %.6f", th, p.M, th, p.X)
	y := fmt.Sprintf("42 + t\\sin(%.6f) + e^{%.6f\\left|t\\right|}\\sin(0.3t)\\cos(%.6f)", th, p.M, th)
	return fmt.Sprintf("\\left(%s, %s\\right)", x, y)
}

func runGenerate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	outPath := fs.String("out", "", "output CSV path")
	count := fs.Int("n", 500, "observation count")
	theta := fs.Float64("theta", 25, "true rotation angle in degrees")
	m := fs.Float64("m", 0.015, "true exponential growth rate")
	x := fs.Float64("x", 50, "true horizontal offset")
	noise := fs.Float64("noise", 0.5, "gaussian noise standard deviation")
	seed := fs.Int64("seed", 1234, "rng seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return errors.New("generate requires -out")
	}
	if *count <= 0 {
		return errors.New("observation count must be > 0")
	}

	obs := dataset.Generate(model.Params{ThetaDeg: *theta, M: *m, X: *x}, *count, *noise, *seed)
	if err := dataset.Write(*outPath, obs); err != nil {
		return err
	}

	fmt.Printf("generated path=%s observations=%d theta_deg=%.4f m=%.4f x=%.4f noise=%.4f seed=%d\n",
		*outPath, obs.Len(), *theta, *m, *x, *noise, *seed)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "spiralfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := fitapi.New(fitapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, fitapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		type runsItem struct {
			RunID        string       `json:"run_id"`
			CreatedAtUTC string       `json:"created_at_utc"`
			Params       model.Params `json:"params"`
			Objective    float64      `json:"objective"`
			Refined      bool         `json:"refined"`
		}
		items := make([]runsItem, 0, len(runs))
		for _, r := range runs {
			items = append(items, runsItem{
				RunID:        r.RunID,
				CreatedAtUTC: r.CreatedAtUTC,
				Params:       r.Params,
				Objective:    r.Objective,
				Refined:      r.Refined,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created_at=%s theta_deg=%.6f m=%.6f x=%.6f objective=%.6f refined=%t\n",
			r.RunID, r.CreatedAtUTC, r.Params.ThetaDeg, r.Params.M, r.Params.X, r.Objective, r.Refined)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "export output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "spiralfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := fitapi.New(fitapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	export, err := client.Export(ctx, fitapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s path=%s\n", export.RunID, export.Path)
	return nil
}
