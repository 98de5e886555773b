package mcp

import (
	"github.com/nvandessel/neurosim/internal/engine"
)

// InjectInput defines the input for neurosim_inject.
type InjectInput struct {
	Count    int     `json:"count" jsonschema:"Number of randomly chosen neurons to stimulate"`
	Strength float64 `json:"strength" jsonschema:"Potential added to each chosen neuron (negative values inhibit, clamped at zero)"`
}

// InjectOutput defines the output for neurosim_inject.
type InjectOutput struct {
	Count    int     `json:"count"`
	Strength float64 `json:"strength"`
	Tick     uint64  `json:"tick"`
}

// CollapseInput defines the input for neurosim_collapse.
type CollapseInput struct {
	X         float64 `json:"x" jsonschema:"World x coordinate of the pointer"`
	Y         float64 `json:"y" jsonschema:"World y coordinate of the pointer"`
	Z         float64 `json:"z,omitempty" jsonschema:"World z coordinate of the pointer (default 0)"`
	Radius    float64 `json:"radius" jsonschema:"Falloff radius in world units; must be positive"`
	Intensity float64 `json:"intensity,omitempty" jsonschema:"Potential added at the centre (default 1.0)"`
}

// StimulateInput defines the input for neurosim_stimulate.
type StimulateInput struct {
	X      float64 `json:"x" jsonschema:"World x coordinate of the pointer"`
	Y      float64 `json:"y" jsonschema:"World y coordinate of the pointer"`
	Z      float64 `json:"z,omitempty" jsonschema:"World z coordinate of the pointer (default 0)"`
	Radius float64 `json:"radius" jsonschema:"Falloff radius in world units; must be positive"`
}

// GestureOutput defines the output for the pointer gesture tools.
type GestureOutput struct {
	Affected int    `json:"affected"`
	Tick     uint64 `json:"tick"`
}

// TraceInput defines the input for neurosim_trace.
type TraceInput struct {
	IDs       []int `json:"ids" jsonschema:"Sensory neuron ids touched by the stroke, in order"`
	Immediate bool  `json:"immediate,omitempty" jsonschema:"Fire each neuron at once instead of buffering it for commit"`
}

// TraceOutput defines the output for neurosim_trace.
type TraceOutput struct {
	Added    int   `json:"added"`
	TraceLen int   `json:"trace_len"`
	Trace    []int `json:"trace"`
}

// CommitInput defines the input for neurosim_commit.
type CommitInput struct{}

// CommitOutput defines the output for neurosim_commit.
type CommitOutput struct {
	Outcome   string  `json:"outcome"`
	Points    int     `json:"points"`
	Spread    float64 `json:"spread"`
	ConceptID int     `json:"concept_id"`
	Label     string  `json:"label,omitempty"`
	Score     float64 `json:"score"`
	Tick      uint64  `json:"tick"`
	Message   string  `json:"message"`
}

// RecallInput defines the input for neurosim_recall.
type RecallInput struct {
	Label string `json:"label" jsonschema:"Label of a stored pattern, e.g. SQUARE or LEARNED_426"`
}

// RecallOutput defines the output for neurosim_recall.
type RecallOutput struct {
	Label     string `json:"label"`
	ConceptID int    `json:"concept_id"`
	Outputs   []int  `json:"outputs"`
}

// StatsInput defines the input for neurosim_stats.
type StatsInput struct{}

// StatsOutput defines the output for neurosim_stats.
type StatsOutput struct {
	Stats engine.Stats `json:"stats"`
}

// SnapshotInput defines the input for neurosim_snapshot.
type SnapshotInput struct {
	Role         string  `json:"role,omitempty" jsonschema:"Only include neurons with this role (SENSORY, MOTOR, FEATURE_EDGE, FEATURE_ANGLE, ASSOCIATION, MEMORY, CONCEPT, INHIBITORY)"`
	MinPotential float64 `json:"min_potential,omitempty" jsonschema:"Only include neurons at or above this potential"`
	Connections  bool    `json:"connections,omitempty" jsonschema:"Include the connection list"`
}

// SnapshotNeuron is one neuron in a snapshot response.
type SnapshotNeuron struct {
	ID         int        `json:"id"`
	Role       string     `json:"role"`
	Position   [3]float64 `json:"position"`
	Potential  float64    `json:"potential"`
	Threshold  float64    `json:"threshold"`
	Refractory float64    `json:"refractory"`
	Label      string     `json:"label,omitempty"`
	InSequence bool       `json:"in_sequence,omitempty"`
}

// SnapshotOutput defines the output for neurosim_snapshot.
type SnapshotOutput struct {
	Tick        uint64                  `json:"tick"`
	Elapsed     float64                 `json:"elapsed"`
	Neurons     []SnapshotNeuron        `json:"neurons"`
	Signals     []engine.SignalView     `json:"signals"`
	Connections []engine.ConnectionView `json:"connections,omitempty"`
}
