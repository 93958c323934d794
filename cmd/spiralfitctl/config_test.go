package main

import (
	"os"
	"path/filepath"
	"testing"

	fitapi "spiralfit/pkg/spiralfit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"run_id": "run-1",
		"data_path": "data.csv",
		"seed": 7,
		"population_size": 30,
		"max_iterations": 400,
		"restarts": 5,
		"tolerance": 0.02,
		"use_euclidean": true,
		"refine_max_iterations": 1500
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.RunID != "run-1" || req.DataPath != "data.csv" {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if req.Seed != 7 || req.PopulationSize != 30 || req.MaxIterations != 400 || req.Restarts != 5 {
		t.Fatalf("unexpected budgets: %+v", req)
	}
	if req.Tolerance != 0.02 || !req.UseEuclidean || req.RefineMaxIterations != 1500 {
		t.Fatalf("unexpected tuning fields: %+v", req)
	}
}

func TestLoadRunRequestIgnoresUnknownAndFractionalInts(t *testing.T) {
	path := writeConfig(t, `{"population_size": 30.5, "unknown_key": "x", "seed": 9}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.PopulationSize != 0 {
		t.Fatalf("fractional population accepted: %d", req.PopulationSize)
	}
	if req.Seed != 9 {
		t.Fatalf("seed = %d", req.Seed)
	}
}

func TestLoadRunRequestBadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestOverrideFromFlags(t *testing.T) {
	req := fitapi.RunRequest{
		DataPath:       "config.csv",
		Seed:           7,
		PopulationSize: 30,
	}
	overrideFromFlags(&req, map[string]bool{"seed": true, "pop": true}, map[string]any{
		"data": "flag.csv",
		"seed": int64(99),
		"pop":  40,
	})

	if req.DataPath != "config.csv" {
		t.Fatalf("unset flag overrode config: %s", req.DataPath)
	}
	if req.Seed != 99 || req.PopulationSize != 40 {
		t.Fatalf("set flags not applied: %+v", req)
	}
}
