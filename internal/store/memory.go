package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryJournal implements Journal for testing and for runs that do not
// persist.
type InMemoryJournal struct {
	mu     sync.RWMutex
	runs   []Run
	events []Event
}

// NewInMemoryJournal creates an empty journal.
func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{}
}

func (j *InMemoryJournal) run(id string) (int, bool) {
	for i, r := range j.runs {
		if r.ID == id {
			return i, true
		}
	}
	return 0, false
}

// StartRun implements Journal.
func (j *InMemoryJournal) StartRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, exists := j.run(run.ID); exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	j.runs = append(j.runs, run)
	return nil
}

// FinishRun implements Journal.
func (j *InMemoryJournal) FinishRun(ctx context.Context, runID string, ticks uint64, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	i, ok := j.run(runID)
	if !ok {
		return fmt.Errorf("finish %s: %w", runID, ErrRunNotFound)
	}
	j.runs[i].EndedAt = &at
	j.runs[i].Ticks = ticks
	return nil
}

// Record implements Journal.
func (j *InMemoryJournal) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.run(event.RunID); !ok {
		return fmt.Errorf("record event for %s: %w", event.RunID, ErrRunNotFound)
	}
	j.events = append(j.events, event)
	return nil
}

// Events implements Journal.
func (j *InMemoryJournal) Events(ctx context.Context, q Query) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Event
	for i := len(j.events) - 1; i >= 0; i-- {
		if !q.matches(j.events[i]) {
			continue
		}
		out = append(out, j.events[i])
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Runs implements Journal.
func (j *InMemoryJournal) Runs(ctx context.Context, limit int) ([]Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Run
	for i := len(j.runs) - 1; i >= 0; i-- {
		out = append(out, j.runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Counts implements Journal.
func (j *InMemoryJournal) Counts(ctx context.Context, runID string) (map[string]int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range j.events {
		if runID == "" || e.RunID == runID {
			counts[e.Kind]++
		}
	}
	return counts, nil
}

// Close implements Journal.
func (j *InMemoryJournal) Close() error { return nil }
