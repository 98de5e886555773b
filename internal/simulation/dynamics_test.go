package simulation_test

import (
	"testing"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/simulation"
)

// TestIdleEngineStaysQuiet runs a wired engine with no input and no noise.
// Nothing may fire and no signal may appear.
func TestIdleEngineStaysQuiet(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:  "idle",
		Steps: []simulation.Step{{Ticks: 120}},
	})
	simulation.AssertQuiet(t, result, 0)
}

// TestNoisyRunNeverGoesNegative drives a noisy engine with excitatory and
// inhibitory bursts. Potentials must stay non-negative throughout.
func TestNoisyRunNeverGoesNegative(t *testing.T) {
	params := engine.DefaultParams()
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:   "noisy",
		Seed:   7,
		Params: &params,
		Steps: []simulation.Step{
			{Label: "excite", Inject: &simulation.Injection{Count: 80, Strength: 0.6}, Ticks: 60},
			{Label: "inhibit", Inject: &simulation.Injection{Count: 200, Strength: -2}, Ticks: 60},
			{Label: "excite-again", Inject: &simulation.Injection{Count: 80, Strength: 0.6}, Ticks: 120},
		},
	})

	simulation.AssertNoNegativePotential(t, result)
	if result.Steps[0].FiredDuring == 0 {
		t.Error("excitatory burst fired nothing")
	}
}

// TestSameSeedSameRun checks that a noisy run is fully reproducible from
// its seed.
func TestSameSeedSameRun(t *testing.T) {
	params := engine.DefaultParams()
	scenario := simulation.Scenario{
		Name:   "replay",
		Seed:   42,
		Params: &params,
		Steps: []simulation.Step{
			{Inject: &simulation.Injection{Count: 50, Strength: 0.5}, Ticks: 90},
			{Trace: diagonalStroke(), Commit: true, Ticks: 90},
		},
	}

	a := simulation.NewRunner(t).Run(scenario)
	b := simulation.NewRunner(t).Run(scenario)

	last := len(scenario.Steps) - 1
	if a.Steps[last].Stats.Fired != b.Steps[last].Stats.Fired {
		t.Errorf("Fired differs: %d vs %d", a.Steps[last].Stats.Fired, b.Steps[last].Stats.Fired)
	}
	for i := range a.Steps[last].Neurons {
		na, nb := a.Steps[last].Neurons[i], b.Steps[last].Neurons[i]
		if na.Potential != nb.Potential || na.Refractory != nb.Refractory {
			t.Fatalf("neuron %d differs: %+v vs %+v", i, na, nb)
		}
	}
}

// TestImmediateStrokeFires checks that immediate-mode contacts fire at once
// instead of buffering.
func TestImmediateStrokeFires(t *testing.T) {
	ids := []int{cell(3, 3), cell(3, 4), cell(3, 5)}
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:  "immediate",
		Steps: []simulation.Step{{Trace: ids, Immediate: true}},
	})

	simulation.AssertFired(t, result, 0, ids)
	if got := result.Steps[0].FiredDuring; got < uint64(len(ids)) {
		t.Errorf("FiredDuring = %d, want at least %d", got, len(ids))
	}
	if got := result.Steps[0].Stats.TraceLen; got != 0 {
		t.Errorf("TraceLen = %d, want 0", got)
	}
}

// TestSuprathresholdNeuronAutoFires raises one neuron above threshold and
// lets a single tick run.
func TestSuprathresholdNeuronAutoFires(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:  "auto-fire",
		Steps: []simulation.Step{{Potentials: map[int]float64{0: 0.9}, Ticks: 1}},
	})
	simulation.AssertFired(t, result, 0, []int{0})
}
