package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/neurosim/internal/engine"
)

// recordTimeout bounds a single journal write from a commit hook.
const recordTimeout = 2 * time.Second

// Recorder writes one run's commits to a Journal. Its Hook is registered on
// the engine with engine.WithCommitHook.
type Recorder struct {
	journal Journal
	runID   string
	log     *slog.Logger
}

// NewRecorder starts a new run in j and returns a recorder for it.
func NewRecorder(ctx context.Context, j Journal, seed uint64, neurons int, log *slog.Logger) (*Recorder, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Recorder{journal: j, runID: uuid.NewString(), log: log}
	if err := j.StartRun(ctx, Run{ID: r.runID, Seed: seed, Neurons: neurons, StartedAt: time.Now()}); err != nil {
		return nil, err
	}
	return r, nil
}

// RunID returns the id of the run being recorded.
func (r *Recorder) RunID() string { return r.runID }

// Hook returns a commit hook that records every non-idle commit. Journal
// failures are logged, never returned to the engine.
func (r *Recorder) Hook() engine.CommitHook {
	return func(res engine.CommitResult) {
		if res.Outcome == engine.OutcomeIdle {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.journal.Record(ctx, EventFromCommit(r.runID, res)); err != nil {
			r.log.Warn("journal write failed", "run", r.runID, "outcome", res.Outcome, "error", err)
		}
	}
}

// Finish stamps the run with its final tick count.
func (r *Recorder) Finish(ctx context.Context, ticks uint64) error {
	return r.journal.FinishRun(ctx, r.runID, ticks, time.Now())
}

// EventFromCommit converts a commit result into a journal event.
func EventFromCommit(runID string, res engine.CommitResult) Event {
	return Event{
		RunID:     runID,
		Kind:      res.Outcome.String(),
		ConceptID: res.ConceptID,
		Label:     res.Label,
		Points:    res.Points,
		Spread:    res.Spread,
		Score:     res.Score,
		Tick:      res.Tick,
		Elapsed:   res.Elapsed,
	}
}
