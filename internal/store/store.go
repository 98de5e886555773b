// Package store defines the Journal interface for recording simulation runs
// and the commit events they produce.
//
// A journal is write-mostly diagnostics: it is never read back into an
// engine, only listed by the CLI and inspected by tests.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when an operation names an unknown run.
var ErrRunNotFound = errors.New("run not found")

// Run is one engine lifetime.
type Run struct {
	ID        string     `json:"id"`
	Seed      uint64     `json:"seed"`
	Neurons   int        `json:"neurons"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Ticks     uint64     `json:"ticks"`
}

// Event is one recorded commit. Kind is the commit outcome name
// ("recognized", "learned", "memory_full", ...).
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	ConceptID int       `json:"concept_id"`
	Label     string    `json:"label,omitempty"`
	Points    int       `json:"points"`
	Spread    float64   `json:"spread"`
	Score     float64   `json:"score"`
	Tick      uint64    `json:"tick"`
	Elapsed   float64   `json:"elapsed"`
	CreatedAt time.Time `json:"created_at"`
}

// Query filters Events. Zero fields match everything; Limit 0 means no limit.
// Results are newest first.
type Query struct {
	RunID string
	Kind  string
	Limit int
}

func (q Query) matches(e Event) bool {
	if q.RunID != "" && e.RunID != q.RunID {
		return false
	}
	if q.Kind != "" && e.Kind != q.Kind {
		return false
	}
	return true
}

// Journal records runs and commit events.
type Journal interface {
	// StartRun registers a new run. run.ID must be set.
	StartRun(ctx context.Context, run Run) error

	// FinishRun stamps the end time and final tick count of a run.
	FinishRun(ctx context.Context, runID string, ticks uint64, at time.Time) error

	// Record appends an event. An empty ID is filled in.
	Record(ctx context.Context, event Event) error

	// Events lists events matching q, newest first.
	Events(ctx context.Context, q Query) ([]Event, error)

	// Runs lists runs, newest first. limit 0 means no limit.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Counts returns the number of events per kind, optionally for one run.
	Counts(ctx context.Context, runID string) (map[string]int, error)

	Close() error
}
