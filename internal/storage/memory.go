package storage

import (
	"context"
	"sort"
	"sync"

	"spiralfit/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.FitRun
	restarts    map[string][]model.RestartResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.FitRun)
	s.restarts = make(map[string][]model.RestartResult)
	return nil
}

func (s *MemoryStore) SaveFitRun(_ context.Context, run model.FitRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetFitRun(_ context.Context, id string) (model.FitRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListFitRuns(_ context.Context) ([]model.FitRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.FitRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(a, b int) bool {
		if runs[a].CreatedAtUTC == runs[b].CreatedAtUTC {
			return runs[a].ID < runs[b].ID
		}
		return runs[a].CreatedAtUTC < runs[b].CreatedAtUTC
	})
	return runs, nil
}

func (s *MemoryStore) SaveRestarts(_ context.Context, runID string, restarts []model.RestartResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restarts[runID] = append([]model.RestartResult(nil), restarts...)
	return nil
}

func (s *MemoryStore) GetRestarts(_ context.Context, runID string) ([]model.RestartResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restarts, ok := s.restarts[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.RestartResult(nil), restarts...), true, nil
}
