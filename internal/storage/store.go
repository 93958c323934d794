package storage

import (
	"context"

	"spiralfit/internal/model"
)

// Store defines persistence operations for fit runs and their traces.
type Store interface {
	Init(ctx context.Context) error
	SaveFitRun(ctx context.Context, run model.FitRun) error
	GetFitRun(ctx context.Context, id string) (model.FitRun, bool, error)
	ListFitRuns(ctx context.Context) ([]model.FitRun, error)
	SaveRestarts(ctx context.Context, runID string, restarts []model.RestartResult) error
	GetRestarts(ctx context.Context, runID string) ([]model.RestartResult, bool, error)
}
