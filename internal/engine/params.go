package engine

import "github.com/nvandessel/neurosim/internal/constants"

// Params holds every tunable number of the simulation. DefaultParams returns
// the reference baseline; config.NeurosimConfig.EngineParams builds one from
// a config file.
type Params struct {
	NeuronCount int

	// Dynamics
	Decay             float64
	LatchDecay        float64
	LatchFloor        float64
	Epsilon           float64
	RefractoryPeriod  float64
	HigherLayerFloor  float64
	AutoFireDepth     int
	MinFireEnergy     float64
	MaxDelta          float64
	ConnectionFade    float64
	NoiseProbability  float64
	SensoryNoise      float64
	HigherNoiseChance float64
	HigherNoise       float64

	// Propagation
	PropagationSpeed float64
	EnergyRetention  float64
	PruneWeightFloor float64
	ResidualEmit     float64

	// Masking
	ConceptActiveFloor float64
	MaskAttenuation    float64

	// Trace, recognition and learning
	TraceGlow          float64
	TraceLatch         float64
	ImmediateFireDepth int
	MinCommitPoints    int
	MinCommitSpread    float64
	MinLearnPoints     int
	MinLearnSpread     float64
	AcceptThreshold    float64
	RecallDepth        int
	ProjectionWeight   float64
	HoverBump          float64
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		NeuronCount: constants.DefaultNeuronCount,

		Decay:             constants.DecayFactor,
		LatchDecay:        constants.LatchDecayFactor,
		LatchFloor:        constants.LatchFloor,
		Epsilon:           constants.PotentialEpsilon,
		RefractoryPeriod:  constants.RefractoryPeriod,
		HigherLayerFloor:  constants.HigherLayerFireFloor,
		AutoFireDepth:     constants.AutoFireDepth,
		MinFireEnergy:     constants.MinFireEnergy,
		MaxDelta:          constants.MaxDelta,
		ConnectionFade:    constants.ConnectionActivityDecay,
		NoiseProbability:  constants.NoiseProbability,
		SensoryNoise:      constants.SensoryNoise,
		HigherNoiseChance: constants.HigherLayerNoiseProbability,
		HigherNoise:       constants.HigherLayerNoise,

		PropagationSpeed: constants.PropagationSpeed,
		EnergyRetention:  constants.EnergyRetention,
		PruneWeightFloor: constants.PruneWeightFloor,
		ResidualEmit:     constants.ResidualEmitProbability,

		ConceptActiveFloor: constants.ConceptActiveFloor,
		MaskAttenuation:    constants.MaskAttenuation,

		TraceGlow:          constants.TraceGlow,
		TraceLatch:         constants.TraceLatch,
		ImmediateFireDepth: constants.ImmediateFireDepth,
		MinCommitPoints:    constants.MinCommitPoints,
		MinCommitSpread:    constants.MinCommitSpread,
		MinLearnPoints:     constants.MinLearnPoints,
		MinLearnSpread:     constants.MinLearnSpread,
		AcceptThreshold:    constants.AcceptThreshold,
		RecallDepth:        constants.RecallDepth,
		ProjectionWeight:   constants.ProjectionWeight,
		HoverBump:          constants.HoverBump,
	}
}

// Quiet returns a copy of p with every stochastic term disabled: no
// spontaneous activity and no residual emission over weak edges.
func (p Params) Quiet() Params {
	p.NoiseProbability = 0
	p.ResidualEmit = 0
	return p
}
