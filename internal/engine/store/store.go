// Package store keeps the collection engine's in-memory view of measurement
// runs, plus the not-yet-flushed batches destined for the writers.
package store

import (
	"sort"
	"sync"
	"time"

	"NetGauge/internal/model"
)

// Store is safe for concurrent use by the engine workers and the API.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*model.Run

	pendingReadings  map[string][]model.Reading
	pendingSummaries map[string]model.Summary
}

// New creates an empty store.
func New() *Store {
	return &Store{
		runs:             make(map[string]*model.Run),
		pendingReadings:  make(map[string][]model.Reading),
		pendingSummaries: make(map[string]model.Summary),
	}
}

// AddReading records one per-second reading for a run.
func (s *Store) AddReading(runID string, r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.ensureRun(runID, r.Timestamp)
	run.Readings = append(run.Readings, r)
	run.UpdatedAt = r.Timestamp

	s.pendingReadings[runID] = append(s.pendingReadings[runID], r)
}

// SetSummary records the end-of-run summary for a run.
func (s *Store) SetSummary(runID string, summary model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	run := s.ensureRun(runID, now)
	run.Summary = &summary
	run.UpdatedAt = now

	s.pendingSummaries[runID] = summary
}

// ensureRun must be called with the write lock held.
func (s *Store) ensureRun(runID string, at time.Time) *model.Run {
	run, ok := s.runs[runID]
	if !ok {
		run = &model.Run{ID: runID, StartedAt: at}
		s.runs[runID] = run
	}
	return run
}

// Run returns a copy of one run, or ok=false if it is unknown.
func (s *Store) Run(runID string) (model.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return model.Run{}, false
	}
	return copyRun(run), true
}

// Runs returns copies of all known runs, most recently updated first.
func (s *Store) Runs() []model.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, copyRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// DrainPending hands the accumulated batches to the caller and resets them.
func (s *Store) DrainPending() (map[string][]model.Reading, map[string]model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings := s.pendingReadings
	summaries := s.pendingSummaries
	s.pendingReadings = make(map[string][]model.Reading)
	s.pendingSummaries = make(map[string]model.Summary)
	return readings, summaries
}

func copyRun(run *model.Run) model.Run {
	out := *run
	out.Readings = append([]model.Reading(nil), run.Readings...)
	if run.Summary != nil {
		summary := *run.Summary
		out.Summary = &summary
	}
	return out
}
