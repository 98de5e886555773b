package simulation

import (
	"context"
	"math"
	"testing"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/store"
)

// AssertOutcomes asserts the sequence of commit outcomes across all steps.
func AssertOutcomes(t *testing.T, result SimulationResult, want ...engine.Outcome) {
	t.Helper()
	got := result.Commits()
	if len(got) != len(want) {
		t.Fatalf("AssertOutcomes: %d commits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Outcome != want[i] {
			t.Errorf("AssertOutcomes: commit %d outcome %s (score %.2f, points %d), want %s",
				i, got[i].Outcome, got[i].Score, got[i].Points, want[i])
		}
	}
}

// AssertNoNegativePotential asserts that no neuron potential dropped below
// zero after any tick of any step.
func AssertNoNegativePotential(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, sr := range result.Steps {
		if sr.MinPotential < 0 || math.IsNaN(sr.MinPotential) {
			t.Errorf("AssertNoNegativePotential: step %d (%s): min potential %v", sr.Index, sr.Label, sr.MinPotential)
		}
	}
}

// AssertQuiet asserts that a step ended with no in-flight signals, no firing
// during the step and every potential at zero.
func AssertQuiet(t *testing.T, result SimulationResult, step int) {
	t.Helper()
	sr := stepAt(t, result, step)
	if sr.Signals != 0 {
		t.Errorf("AssertQuiet: step %d: %d live signals", step, sr.Signals)
	}
	if sr.FiredDuring != 0 {
		t.Errorf("AssertQuiet: step %d: %d neurons fired", step, sr.FiredDuring)
	}
	for _, n := range sr.Neurons {
		if n.Potential != 0 {
			t.Errorf("AssertQuiet: step %d: neuron %d potential %v", step, n.ID, n.Potential)
			return
		}
	}
}

// AssertFired asserts that every listed neuron fired at some point during
// the step.
func AssertFired(t *testing.T, result SimulationResult, step int, ids []int) {
	t.Helper()
	sr := stepAt(t, result, step)
	for _, id := range ids {
		if id < 0 || id >= len(sr.Neurons) {
			t.Errorf("AssertFired: step %d: neuron %d out of range", step, id)
			continue
		}
		if !sr.Fired[id] {
			t.Errorf("AssertFired: step %d: neuron %d (%s) did not fire", step, id, sr.Neurons[id].Role)
		}
	}
}

// AssertPatternFired asserts that the concept labelled label and every output
// of its pattern fired in the step.
func AssertPatternFired(t *testing.T, result SimulationResult, step int, label string) {
	t.Helper()
	for _, p := range result.Engine.Patterns() {
		if p.Label == label {
			AssertFired(t, result, step, append([]int{p.ConceptID}, p.Outputs...))
			return
		}
	}
	t.Errorf("AssertPatternFired: no pattern labelled %q", label)
}

// AssertJournalCounts asserts the number of journal events per outcome kind
// for the scenario's run.
func AssertJournalCounts(t *testing.T, result SimulationResult, want map[string]int) {
	t.Helper()
	counts, err := result.Journal.Counts(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("AssertJournalCounts: %v", err)
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("AssertJournalCounts: %s = %d, want %d (all: %v)", kind, counts[kind], n, counts)
		}
	}
}

// AssertRunFinished asserts the journal run is closed with the engine's
// final tick count.
func AssertRunFinished(t *testing.T, result SimulationResult) {
	t.Helper()
	runs, err := result.Journal.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("AssertRunFinished: %v", err)
	}
	var run *store.Run
	for i := range runs {
		if runs[i].ID == result.RunID {
			run = &runs[i]
		}
	}
	if run == nil {
		t.Fatalf("AssertRunFinished: run %s not in journal", result.RunID)
	}
	if run.EndedAt == nil {
		t.Error("AssertRunFinished: run not finished")
	}
	if ticks := result.Engine.Stats().Ticks; run.Ticks != ticks {
		t.Errorf("AssertRunFinished: run ticks %d, want %d", run.Ticks, ticks)
	}
}

func stepAt(t *testing.T, result SimulationResult, step int) StepResult {
	t.Helper()
	if step < 0 || step >= len(result.Steps) {
		t.Fatalf("step %d out of range (have %d)", step, len(result.Steps))
	}
	return result.Steps[step]
}
