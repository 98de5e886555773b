package engine

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/network"
)

// NeuronView is a read-only copy of one neuron's state.
type NeuronView struct {
	ID         int          `json:"id"`
	Position   mgl64.Vec3   `json:"position"`
	Role       network.Role `json:"role"`
	Potential  float64      `json:"potential"`
	Threshold  float64      `json:"threshold"`
	Refractory float64      `json:"refractory"`
	Label      string       `json:"label"`
	InSequence bool         `json:"in_sequence"`
}

// ConnectionView is a read-only copy of one connection.
type ConnectionView struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Weight   float64 `json:"weight"`
	Activity float64 `json:"activity"`
}

// SignalView is a read-only copy of one in-flight signal.
type SignalView struct {
	From           int     `json:"from"`
	To             int     `json:"to"`
	Conn           int     `json:"conn"`
	Weight         float64 `json:"weight"`
	Progress       float64 `json:"progress"`
	Energy         float64 `json:"energy"`
	RemainingDepth int     `json:"remaining_depth"`
}

// Stats are cumulative counters since the engine was created.
type Stats struct {
	Ticks          uint64  `json:"ticks"`
	Elapsed        float64 `json:"elapsed"`
	Neurons        int     `json:"neurons"`
	Connections    int     `json:"connections"`
	LiveSignals    int     `json:"live_signals"`
	Patterns       int     `json:"patterns"`
	ConceptSlots   int     `json:"concept_slots"`
	ActiveConcepts int     `json:"active_concepts"`
	TraceLen       int     `json:"trace_len"`
	Fired          uint64  `json:"fired"`
	Emitted        uint64  `json:"emitted"`
	Delivered      uint64  `json:"delivered"`
	Rejected       int     `json:"rejected"`
	Recognized     int     `json:"recognized"`
	LearnRejected  int     `json:"learn_rejected"`
	Learned        int     `json:"learned"`
	MemoryFull     int     `json:"memory_full"`
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Elapsed     float64          `json:"elapsed"`
	Neurons     []NeuronView     `json:"neurons"`
	Connections []ConnectionView `json:"connections"`
	Signals     []SignalView     `json:"signals"`
}

// Snapshot copies the full simulation state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Tick:        e.tick,
		Elapsed:     e.elapsed,
		Neurons:     e.neuronViews(),
		Connections: e.connectionViews(),
		Signals:     e.signalViews(),
	}
}

// Neuron returns a copy of neuron id.
func (e *Engine) Neuron(id int) (NeuronView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.neurons.Get(id)
	if err != nil {
		return NeuronView{}, err
	}
	return e.view(n), nil
}

// Neurons returns a copy of every neuron.
func (e *Engine) Neurons() []NeuronView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.neuronViews()
}

// Connections returns a copy of every connection in creation order.
func (e *Engine) Connections() []ConnectionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectionViews()
}

// Signals returns a copy of every in-flight signal.
func (e *Engine) Signals() []SignalView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signalViews()
}

// Patterns returns every stored pattern ordered by concept id.
func (e *Engine) Patterns() []memory.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memory.Patterns()
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.Ticks = e.tick
	s.Elapsed = e.elapsed
	s.Neurons = e.neurons.Len()
	s.Connections = e.graph.Len()
	s.LiveSignals = len(e.signals)
	s.Patterns = e.memory.Len()
	s.ConceptSlots = e.memory.Capacity()
	s.ActiveConcepts = len(e.activeConcepts)
	s.TraceLen = len(e.traceOrder)
	return s
}

func (e *Engine) view(n *network.Neuron) NeuronView {
	_, in := e.trace[n.ID]
	return NeuronView{
		ID:         n.ID,
		Position:   n.Position,
		Role:       n.Role,
		Potential:  n.Potential,
		Threshold:  n.Threshold,
		Refractory: n.Refractory,
		Label:      n.Label,
		InSequence: in,
	}
}

func (e *Engine) neuronViews() []NeuronView {
	all := e.neurons.All()
	out := make([]NeuronView, len(all))
	for i := range all {
		out[i] = e.view(&all[i])
	}
	return out
}

func (e *Engine) connectionViews() []ConnectionView {
	conns := e.graph.Connections()
	out := make([]ConnectionView, len(conns))
	for i, c := range conns {
		out[i] = ConnectionView{From: c.From, To: c.To, Weight: c.Weight, Activity: c.Activity}
	}
	return out
}

func (e *Engine) signalViews() []SignalView {
	out := make([]SignalView, len(e.signals))
	for i, s := range e.signals {
		out[i] = SignalView(s)
	}
	return out
}
