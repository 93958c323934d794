// Package spiralfit is the embedding API for the curve-fitting pipeline. It
// wraps the run orchestration, result persistence, and artifact export behind
// a single client so callers do not wire the internal packages themselves.
package spiralfit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spiralfit/internal/model"
	"spiralfit/internal/pipeline"
	"spiralfit/internal/stats"
	"spiralfit/internal/storage"
)

const (
	defaultResultsDir = "results"
	defaultExportsDir = "exports"
	defaultDBPath     = "spiralfit.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
	ExportsDir string
}

type Client struct {
	store       storage.Store
	storeKind   string
	initialized bool

	resultsDir string
	exportsDir string
}

type RunRequest struct {
	RunID    string
	DataPath string

	Seed           int64
	PopulationSize int
	MaxIterations  int
	Restarts       int
	Tolerance      float64
	UseEuclidean   bool

	RefineMaxIterations int

	WritePlots bool

	// Progress, when set, observes every global-search generation.
	Progress func(restart int, point model.TracePoint)
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Params       model.Params
	Objective    float64
	Evaluations  int
	Refined      bool
	Observations int
	Restarts     []model.RestartResult
	Elapsed      time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Params       model.Params
	Objective    float64
	Refined      bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID string
	Path  string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		storeKind:  storeKind,
		resultsDir: resultsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Run executes the full fit and persists the run record, restart results, and
// on-disk artifacts before returning.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.DataPath == "" {
		return RunSummary{}, errors.New("data path is required")
	}
	if req.Seed == 0 {
		req.Seed = pipeline.DefaultSeed
	}
	if req.Restarts <= 0 {
		req.Restarts = pipeline.DefaultRestarts
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	started := time.Now()
	result, err := pipeline.Run(ctx, pipeline.Config{
		DataPath:            req.DataPath,
		Seed:                req.Seed,
		PopulationSize:      req.PopulationSize,
		MaxIterations:       req.MaxIterations,
		Restarts:            req.Restarts,
		Tolerance:           req.Tolerance,
		UseEuclidean:        req.UseEuclidean,
		RefineMaxIterations: req.RefineMaxIterations,
		Progress:            req.Progress,
	})
	if err != nil {
		return RunSummary{}, err
	}
	elapsed := time.Since(started)

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	run := storage.Stamp(model.FitRun{
		ID:             runID,
		CreatedAtUTC:   createdAt,
		DataPath:       req.DataPath,
		Observations:   result.Observations.Len(),
		Seed:           req.Seed,
		PopulationSize: req.PopulationSize,
		MaxIterations:  req.MaxIterations,
		Restarts:       req.Restarts,
		Params:         result.Params,
		Objective:      result.Objective,
		Evaluations:    result.Evaluations,
		Refined:        result.Refined,
	})
	if err := c.store.SaveFitRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveRestarts(ctx, runID, result.Restarts); err != nil {
		return RunSummary{}, err
	}

	artifacts := stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			CreatedAtUTC:   createdAt,
			DataPath:       req.DataPath,
			Observations:   result.Observations.Len(),
			Seed:           req.Seed,
			PopulationSize: req.PopulationSize,
			MaxIterations:  req.MaxIterations,
			Restarts:       req.Restarts,
			Tolerance:      req.Tolerance,
			UseEuclidean:   req.UseEuclidean,
			StoreKind:      c.storeKind,
		},
		Params:      result.Params,
		Objective:   result.Objective,
		Evaluations: result.Evaluations,
		Refined:     result.Refined,
		Restarts:    result.Restarts,
		T:           result.T,
		XFit:        result.XFit,
		YFit:        result.YFit,
		XObs:        result.Observations.X,
		YObs:        result.Observations.Y,
		Residuals:   result.Residuals,
	}
	runDir, err := stats.WriteRunArtifacts(c.resultsDir, artifacts)
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.resultsDir, stats.RunIndexEntry{
		RunID:        runID,
		CreatedAtUTC: createdAt,
		Params:       result.Params,
		Objective:    result.Objective,
		Refined:      result.Refined,
	}); err != nil {
		return RunSummary{}, err
	}
	if req.WritePlots {
		if err := stats.WritePlots(runDir, artifacts); err != nil {
			return RunSummary{}, err
		}
	}

	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Params:       result.Params,
		Objective:    result.Objective,
		Evaluations:  result.Evaluations,
		Refined:      result.Refined,
		Observations: result.Observations.Len(),
		Restarts:     result.Restarts,
		Elapsed:      elapsed,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListFitRuns(ctx)
	if err != nil {
		return nil, err
	}
	// The store lists oldest first; a capped listing keeps the newest runs.
	if len(runs) > req.Limit {
		runs = runs[len(runs)-req.Limit:]
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:        run.ID,
			CreatedAtUTC: run.CreatedAtUTC,
			Params:       run.Params,
			Objective:    run.Objective,
			Refined:      run.Refined,
		})
	}
	return out, nil
}

// Export writes one stored run to an XLSX workbook under the exports
// directory, one Summary sheet plus a trace sheet per restart.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	if err := c.ensureStore(ctx); err != nil {
		return ExportSummary{}, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListFitRuns(ctx)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(runs) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = runs[len(runs)-1].ID
	}

	run, ok, err := c.store.GetFitRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}
	restarts, _, err := c.store.GetRestarts(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	path := filepath.Join(req.OutDir, runID+".xlsx")
	if err := ensureDir(req.OutDir); err != nil {
		return ExportSummary{}, err
	}
	if err := stats.ExportXLSX(path, run, restarts); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Path: filepath.Clean(path)}, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
