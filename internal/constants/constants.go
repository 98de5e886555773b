// Package constants provides named constants used throughout the neurosim codebase.
// Values are the tuned baselines of the reference simulation; every one of them
// can be overridden through config.
package constants

// Network shape
const (
	// DefaultNeuronCount is the number of neurons allocated by the default layout.
	DefaultNeuronCount = 800

	// DefaultThreshold is the firing threshold assigned to every neuron.
	DefaultThreshold = 0.25
)

// Decay and clamping
const (
	// DecayFactor is the per-tick potential retention for most neurons.
	DecayFactor = 0.90

	// LatchDecayFactor is the slower retention used by motor neurons above
	// LatchFloor, which keeps drawn output visible for longer.
	LatchDecayFactor = 0.96

	// LatchFloor is the potential above which motor neurons use LatchDecayFactor.
	LatchFloor = 0.4

	// PotentialEpsilon is the potential below which a neuron is reset to zero.
	PotentialEpsilon = 0.005

	// ConnectionActivityDecay is the per-tick retention of a connection's visual activity.
	ConnectionActivityDecay = 0.75
)

// Firing
const (
	// RefractoryPeriod is the cooldown in seconds after a neuron fires.
	RefractoryPeriod = 0.15

	// HigherLayerFireFloor is the extra potential a non-sensory neuron needs
	// before the automatic threshold check lets it fire.
	HigherLayerFireFloor = 0.3

	// AutoFireDepth is the cascade depth of threshold-triggered firing.
	AutoFireDepth = 4

	// MinFireEnergy is the energy below which a fire request is ignored.
	MinFireEnergy = 0.05

	// PruneWeightFloor is the |weight| below which an edge only carries a
	// signal with probability ResidualEmitProbability.
	PruneWeightFloor = 0.05

	// ResidualEmitProbability keeps rare long-range effects over weak edges.
	ResidualEmitProbability = 0.15

	// PropagationSpeed is the signal progress per second (1.0 = arrival).
	PropagationSpeed = 2.5

	// EnergyRetention is the fraction of energy carried into a cascaded fire.
	EnergyRetention = 0.90

	// MaxDelta is the largest tick length in seconds accepted by Advance.
	MaxDelta = 0.1
)

// Spontaneous activity
const (
	// NoiseProbability is the per-tick chance of spontaneous activity.
	NoiseProbability = 0.001

	// SensoryNoise is the potential added to a sensory neuron by noise.
	SensoryNoise = 0.1

	// HigherLayerNoiseProbability is the extra gate applied to non-sensory roles.
	HigherLayerNoiseProbability = 0.01

	// HigherLayerNoise is the potential added to a non-sensory neuron by noise.
	HigherLayerNoise = 0.05
)

// Top-down masking
const (
	// ConceptActiveFloor is the potential above which a concept counts as active.
	ConceptActiveFloor = 0.3

	// MaskAttenuation multiplies motor neurons outside every active concept's pattern.
	MaskAttenuation = 0.1
)

// Input trace, recognition and learning
const (
	// TraceGlow is the potential shown on a buffered (drawn, not fired) sensory neuron.
	TraceGlow = 0.8

	// TraceLatch is the potential held on buffered neurons during a tick.
	TraceLatch = 1.0

	// ImmediateFireDepth is the cascade depth of rapid-mode drawing.
	ImmediateFireDepth = 6

	// MinCommitPoints is the smallest trace accepted by commit.
	MinCommitPoints = 5

	// MinCommitSpread is the smallest bounding diagonal accepted by commit.
	MinCommitSpread = 8.0

	// MinLearnPoints is the smallest trace that may become a new pattern.
	MinLearnPoints = 20

	// MinLearnSpread is the smallest bounding diagonal that may become a new pattern.
	MinLearnSpread = 15.0

	// AcceptThreshold is the Jaccard score a stored pattern must exceed to be recognized.
	AcceptThreshold = 0.35

	// RecallDepth is the cascade depth used when a concept is recognized or learned.
	RecallDepth = 12

	// ProjectionWeight is the fixed weight of concept to output edges.
	ProjectionWeight = 1.5
)

// Pointer stimulation
const (
	// HoverBump is the peak potential added by StimulateNear.
	HoverBump = 0.05
)

// Host surfaces
const (
	// DefaultFPS is the driver's target tick rate.
	DefaultFPS = 60

	// DefaultGestureRate is the sustained rate of mutating MCP calls per second.
	DefaultGestureRate = 30.0

	// DefaultGestureBurst is the burst size of mutating MCP calls.
	DefaultGestureBurst = 60
)
