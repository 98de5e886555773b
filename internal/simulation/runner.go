package simulation

import (
	"context"
	"math"
	"testing"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/store"
)

const defaultDt = 1.0 / 60.0

// Runner orchestrates scripted simulation experiments against a real engine
// and an in-memory journal.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	params := engine.DefaultParams().Quiet()
	if scenario.Params != nil {
		params = *scenario.Params
	}
	dt := scenario.Dt
	if dt <= 0 {
		dt = defaultDt
	}

	// Phase 1: journal and engine.
	journal := store.NewInMemoryJournal()
	rec, err := store.NewRecorder(ctx, journal, scenario.Seed, params.NeuronCount, logging.Discard())
	if err != nil {
		r.t.Fatalf("Run(%s): starting journal run: %v", scenario.Name, err)
	}
	opts := []engine.Option{
		engine.WithSeed(scenario.Seed),
		engine.WithCommitHook(rec.Hook()),
	}
	if scenario.Bare {
		opts = append(opts, engine.WithoutWiring())
	}
	e, err := engine.New(params, opts...)
	if err != nil {
		r.t.Fatalf("Run(%s): engine.New: %v", scenario.Name, err)
	}

	// Phase 2: steps.
	steps := make([]StepResult, len(scenario.Steps))
	elapsed := 0.0
	for i, step := range scenario.Steps {
		if scenario.BeforeStep != nil {
			scenario.BeforeStep(i, e)
		}
		steps[i] = r.runStep(e, i, step, dt, &elapsed)
	}

	if err := rec.Finish(ctx, e.Stats().Ticks); err != nil {
		r.t.Fatalf("Run(%s): finishing journal run: %v", scenario.Name, err)
	}

	return SimulationResult{
		Steps:   steps,
		Engine:  e,
		Journal: journal,
		RunID:   rec.RunID(),
	}
}

func (r *Runner) runStep(e *engine.Engine, index int, step Step, dt float64, elapsed *float64) StepResult {
	r.t.Helper()
	sr := StepResult{Index: index, Label: step.Label, Fired: make(map[int]bool)}
	firedBefore := e.Stats().Fired

	// Firing resets refractory to the full period, so a rise between two
	// observations means the neuron fired in between.
	refractory := make(map[int]float64)
	for _, n := range e.Neurons() {
		refractory[n.ID] = n.Refractory
	}

	for id, p := range step.Potentials {
		if err := e.SetPotential(id, p); err != nil {
			r.t.Fatalf("step %d (%s): SetPotential(%d): %v", index, step.Label, id, err)
		}
	}
	if step.Inject != nil {
		e.InjectStimulus(step.Inject.Count, step.Inject.Strength)
	}
	if c := step.Collapse; c != nil {
		e.CollapseAt(c.X, c.Y, c.Z, c.Radius, c.Intensity)
	}
	if s := step.Stimulate; s != nil {
		e.StimulateNear(s.X, s.Y, s.Z, s.Radius)
	}
	for _, id := range step.Trace {
		if err := e.AddToTrace(id, step.Immediate); err != nil {
			sr.TraceErr = err
			break
		}
	}
	if step.Commit {
		res := e.CommitTrace()
		sr.Commit = &res
	}
	if step.Recall != "" {
		sr.RecallErr = e.RecallSymbol(step.Recall)
	}

	sr.MinPotential = math.Inf(1)
	observe := func() {
		for _, n := range e.Neurons() {
			sr.MinPotential = math.Min(sr.MinPotential, n.Potential)
			if n.Refractory > refractory[n.ID] {
				sr.Fired[n.ID] = true
			}
			refractory[n.ID] = n.Refractory
		}
	}
	observe()
	for k := 0; k < step.Ticks; k++ {
		*elapsed += dt
		e.Advance(dt, *elapsed)
		observe()
	}

	sr.Stats = e.Stats()
	sr.Neurons = e.Neurons()
	sr.Signals = sr.Stats.LiveSignals
	sr.FiredDuring = sr.Stats.Fired - firedBefore
	return sr
}
