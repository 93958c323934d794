package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"spiralfit/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig records every knob that shaped a fit, for reproducibility.
type RunConfig struct {
	RunID          string  `json:"run_id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	DataPath       string  `json:"data_path,omitempty"`
	Observations   int     `json:"observations"`
	Seed           int64   `json:"seed"`
	PopulationSize int     `json:"population_size"`
	MaxIterations  int     `json:"max_iterations"`
	Restarts       int     `json:"restarts"`
	Tolerance      float64 `json:"tolerance,omitempty"`
	UseEuclidean   bool    `json:"use_euclidean,omitempty"`
	StoreKind      string  `json:"store_kind,omitempty"`
}

// RunResult is the JSON-facing summary of the accepted fit. Restart traces
// live in the per-restart progress CSVs, not here.
type RunResult struct {
	Params      model.Params     `json:"params"`
	Objective   float64          `json:"objective"`
	Evaluations int              `json:"evaluations"`
	Refined     bool             `json:"refined"`
	Restarts    []RestartSummary `json:"restarts"`
	Residuals   ResidualSummary  `json:"residuals"`
}

type RestartSummary struct {
	Restart     int          `json:"restart"`
	Seed        int64        `json:"seed"`
	Params      model.Params `json:"params"`
	Objective   float64      `json:"objective"`
	Evaluations int          `json:"evaluations"`
	Generations int          `json:"generations"`
}

// RunArtifacts bundles everything emitted for one fit run.
type RunArtifacts struct {
	Config      RunConfig
	Params      model.Params
	Objective   float64
	Evaluations int
	Refined     bool
	Restarts    []model.RestartResult

	T         []float64
	XFit      []float64
	YFit      []float64
	XObs      []float64
	YObs      []float64
	Residuals []float64
}

type RunIndexEntry struct {
	RunID        string       `json:"run_id"`
	CreatedAtUTC string       `json:"created_at_utc"`
	Params       model.Params `json:"params"`
	Objective    float64      `json:"objective"`
	Refined      bool         `json:"refined"`
}

// WriteRunArtifacts writes the per-run artifact directory and returns its
// path: config.json, result.json, one progress CSV per restart, and the
// fitted curve samples with per-point residual distances.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}

	result := RunResult{
		Params:      artifacts.Params,
		Objective:   artifacts.Objective,
		Evaluations: artifacts.Evaluations,
		Refined:     artifacts.Refined,
		Restarts:    make([]RestartSummary, 0, len(artifacts.Restarts)),
		Residuals:   SummarizeResiduals(artifacts.Residuals),
	}
	for _, r := range artifacts.Restarts {
		result.Restarts = append(result.Restarts, RestartSummary{
			Restart:     r.Restart,
			Seed:        r.Seed,
			Params:      r.Params,
			Objective:   r.Objective,
			Evaluations: r.Evaluations,
			Generations: len(r.Trace),
		})
	}
	if err := writeJSON(filepath.Join(runDir, "result.json"), result); err != nil {
		return "", err
	}

	for _, r := range artifacts.Restarts {
		if err := writeProgressCSV(filepath.Join(runDir, progressFileName(r.Restart)), r.Trace); err != nil {
			return "", err
		}
	}

	if len(artifacts.T) > 0 {
		if err := writeCurveCSV(filepath.Join(runDir, "curve.csv"), artifacts); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func progressFileName(restart int) string {
	return fmt.Sprintf("progress_run%d.csv", restart)
}

func writeProgressCSV(path string, trace []model.TracePoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"iteration", "objective"}); err != nil {
		return err
	}
	for _, point := range trace {
		if err := writer.Write([]string{
			strconv.Itoa(point.Iteration),
			strconv.FormatFloat(point.Objective, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadProgressCSV loads one restart's progress trace back from disk.
func ReadProgressCSV(baseDir, runID string, restart int) ([]model.TracePoint, bool, error) {
	path := filepath.Join(baseDir, runID, progressFileName(restart))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, false, err
	}

	trace := make([]model.TracePoint, 0, 128)
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("progress row must have at least 2 columns")
		}
		iteration, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		objective, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		trace = append(trace, model.TracePoint{Iteration: iteration, Objective: objective})
	}
	return trace, true, nil
}

func writeCurveCSV(path string, artifacts RunArtifacts) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"t", "x_fit", "y_fit", "residual"}); err != nil {
		return err
	}
	for i := range artifacts.T {
		if err := writer.Write([]string{
			strconv.FormatFloat(artifacts.T[i], 'f', -1, 64),
			strconv.FormatFloat(artifacts.XFit[i], 'f', -1, 64),
			strconv.FormatFloat(artifacts.YFit[i], 'f', -1, 64),
			strconv.FormatFloat(artifacts.Residuals[i], 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// AppendRunIndex upserts one entry into the base directory's run index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	sort.Slice(index, func(a, b int) bool {
		if index[a].CreatedAtUTC == index[b].CreatedAtUTC {
			return index[a].RunID < index[b].RunID
		}
		return index[a].CreatedAtUTC < index[b].CreatedAtUTC
	})
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
