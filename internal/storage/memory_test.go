package storage

import (
	"context"
	"testing"

	"spiralfit/internal/model"
)

func sampleRun(id string) model.FitRun {
	return Stamp(model.FitRun{
		ID:             id,
		CreatedAtUTC:   "2026-01-02T03:04:05Z",
		Observations:   500,
		Seed:           42,
		PopulationSize: 25,
		MaxIterations:  800,
		Restarts:       3,
		Params:         model.Params{ThetaDeg: 25.1, M: 0.0148, X: 49.9},
		Objective:      187.25,
		Evaluations:    60000,
		Refined:        true,
	})
}

func TestMemoryStoreFitRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := sampleRun("run-1")
	if err := store.SaveFitRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}

	output, ok, err := store.GetFitRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.Params != input.Params || output.Objective != input.Objective {
		t.Fatalf("unexpected run: %+v", output)
	}

	_, ok, err = store.GetFitRun(ctx, "run-absent")
	if err != nil {
		t.Fatalf("get absent run: %v", err)
	}
	if ok {
		t.Fatal("unexpected hit for absent run")
	}
}

func TestMemoryStoreListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	newer := sampleRun("run-b")
	newer.CreatedAtUTC = "2026-02-01T00:00:00Z"
	older := sampleRun("run-a")
	older.CreatedAtUTC = "2026-01-01T00:00:00Z"
	if err := store.SaveFitRun(ctx, newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}
	if err := store.SaveFitRun(ctx, older); err != nil {
		t.Fatalf("save older: %v", err)
	}

	runs, err := store.ListFitRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestMemoryStoreRestartsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.RestartResult{{
		Restart:   1,
		Seed:      45,
		Params:    model.Params{ThetaDeg: 24, M: 0.01, X: 48},
		Objective: 201.5,
		Trace: []model.TracePoint{
			{Iteration: 1, Objective: 900},
			{Iteration: 2, Objective: 450.5},
		},
	}}
	if err := store.SaveRestarts(ctx, "run-1", input); err != nil {
		t.Fatalf("save restarts: %v", err)
	}

	output, ok, err := store.GetRestarts(ctx, "run-1")
	if err != nil {
		t.Fatalf("get restarts: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted restarts")
	}
	if len(output) != 1 || len(output[0].Trace) != 2 || output[0].Trace[1].Objective != 450.5 {
		t.Fatalf("unexpected restarts: %+v", output)
	}
}

func TestCodecRejectsVersionMismatch(t *testing.T) {
	run := sampleRun("run-1")
	run.SchemaVersion = CurrentSchemaVersion + 1
	payload, err := EncodeFitRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeFitRun(payload); err == nil {
		t.Fatal("expected version mismatch error")
	}
}

func TestFactoryKinds(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("unexpected store type %T", store)
	}
	if _, err := NewStore("bogus", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close: %v", err)
	}
}
