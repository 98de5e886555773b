package simulation

import (
	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/store"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name string
	Seed uint64

	// Params overrides the engine parameters. Nil means DefaultParams().Quiet().
	Params *engine.Params

	// Bare builds the engine without wiring or canonical patterns.
	Bare bool

	// Dt is the tick length in seconds. Zero means 1/60.
	Dt float64

	Steps []Step

	// BeforeStep, when non-nil, is called before each step executes.
	// Use this to poke engine state the gesture vocabulary cannot express.
	BeforeStep func(stepIndex int, e *engine.Engine)
}

// Step is one batch of gestures followed by a number of ticks.
type Step struct {
	// Label is an optional human-readable tag for debugging output.
	Label string

	Inject    *Injection
	Collapse  *Pointer
	Stimulate *Pointer
	// Potentials are written with SetPotential before any other gesture.
	Potentials map[int]float64

	Trace     []int
	Immediate bool
	Commit    bool

	Recall string

	// Ticks is how many ticks of Scenario.Dt run after the gestures.
	Ticks int
}

// Injection is a random stimulus burst.
type Injection struct {
	Count    int
	Strength float64
}

// Pointer is a pointer gesture in world coordinates.
type Pointer struct {
	X, Y, Z   float64
	Radius    float64
	Intensity float64 // ignored by Stimulate
}

// StepResult captures the state after a single step.
type StepResult struct {
	Index int
	Label string

	// Commit is set when the step committed the trace.
	Commit *engine.CommitResult
	// TraceErr is the first AddToTrace error, if any.
	TraceErr error
	// RecallErr is the RecallSymbol error, if any.
	RecallErr error

	Stats   engine.Stats
	Neurons []engine.NeuronView
	Signals int

	// MinPotential is the lowest potential seen after any tick of the step.
	MinPotential float64
	// FiredDuring is Stats.Fired growth over the step.
	FiredDuring uint64
	// Fired holds every neuron that fired during the step, whether from a
	// gesture or on any tick.
	Fired map[int]bool
}

// SimulationResult captures all steps and the final engine state.
type SimulationResult struct {
	Steps   []StepResult
	Engine  *engine.Engine
	Journal *store.InMemoryJournal
	RunID   string
}

// Commits returns every commit result in step order.
func (r SimulationResult) Commits() []engine.CommitResult {
	var out []engine.CommitResult
	for _, s := range r.Steps {
		if s.Commit != nil {
			out = append(out, *s.Commit)
		}
	}
	return out
}
