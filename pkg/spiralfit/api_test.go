package spiralfit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"spiralfit/internal/dataset"
	"spiralfit/internal/model"
	"spiralfit/internal/storage"
)

func writeTestData(t *testing.T, dir string) string {
	t.Helper()
	obs := dataset.Generate(model.Params{ThetaDeg: 10, M: 0.015, X: 30}, 40, 0.5, 7)
	path := filepath.Join(dir, "data.csv")
	if err := dataset.Write(path, obs); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, dir string) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:  "memory",
		ResultsDir: filepath.Join(dir, "results"),
		ExportsDir: filepath.Join(dir, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientRunPersistsAndWritesArtifacts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client := newTestClient(t, dir)

	summary, err := client.Run(ctx, RunRequest{
		RunID:          "run-1",
		DataPath:       writeTestData(t, dir),
		Seed:           42,
		PopulationSize: 12,
		MaxIterations:  40,
		Restarts:       2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RunID != "run-1" {
		t.Fatalf("run id = %s", summary.RunID)
	}
	if summary.Observations != 40 {
		t.Fatalf("observations = %d", summary.Observations)
	}
	if len(summary.Restarts) != 2 {
		t.Fatalf("restarts = %d", len(summary.Restarts))
	}
	if summary.Evaluations <= 0 {
		t.Fatalf("evaluations = %d", summary.Evaluations)
	}

	for _, name := range []string{"config.json", "result.json", "progress_run1.csv", "curve.csv"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Params != summary.Params {
		t.Fatalf("stored params %+v differ from summary %+v", runs[0].Params, summary.Params)
	}
}

func TestClientRunsLimitKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, t.TempDir())
	if err := client.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := storage.Stamp(model.FitRun{
			ID:           id,
			CreatedAtUTC: fmt.Sprintf("2026-08-23T10:00:0%d.000000000Z", i),
		})
		if err := client.store.SaveFitRun(ctx, run); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 2})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-b" || runs[1].RunID != "run-c" {
		t.Fatalf("expected the two newest runs, got %+v", runs)
	}
}

func TestClientRunGeneratesRunID(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client := newTestClient(t, dir)

	summary, err := client.Run(ctx, RunRequest{
		DataPath:       writeTestData(t, dir),
		PopulationSize: 10,
		MaxIterations:  20,
		Restarts:       1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

func TestClientRunRequiresDataPath(t *testing.T) {
	client := newTestClient(t, t.TempDir())
	if _, err := client.Run(context.Background(), RunRequest{}); err == nil {
		t.Fatal("expected error for missing data path")
	}
}

func TestClientExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client := newTestClient(t, dir)

	summary, err := client.Run(ctx, RunRequest{
		RunID:          "run-1",
		DataPath:       writeTestData(t, dir),
		PopulationSize: 10,
		MaxIterations:  20,
		Restarts:       1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	export, err := client.Export(ctx, ExportRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.RunID != summary.RunID {
		t.Fatalf("export run id = %s", export.RunID)
	}
	if _, err := os.Stat(export.Path); err != nil {
		t.Fatalf("missing workbook: %v", err)
	}

	latest, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export latest: %v", err)
	}
	if latest.RunID != summary.RunID {
		t.Fatalf("latest run id = %s", latest.RunID)
	}
}

func TestClientExportValidation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, t.TempDir())

	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.Export(ctx, ExportRequest{RunID: "run-1", Latest: true}); err == nil {
		t.Fatal("expected error with both run id and latest")
	}
	if _, err := client.Export(ctx, ExportRequest{Latest: true}); err == nil {
		t.Fatal("expected error with no stored runs")
	}
	if _, err := client.Export(ctx, ExportRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}
