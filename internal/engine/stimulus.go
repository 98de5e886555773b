package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nvandessel/neurosim/internal/network"
)

// ErrUnknownSymbol is returned by RecallSymbol when no concept carries the label.
var ErrUnknownSymbol = errors.New("unknown symbol")

// InjectStimulus adds strength to the potential of count randomly chosen
// neurons. Potentials are clamped at zero for negative strengths.
func (e *Engine) InjectStimulus(count int, strength float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.neurons.Len()
	if total == 0 || math.IsNaN(strength) {
		return
	}
	for i := 0; i < count; i++ {
		n := e.neurons.At(e.rng.IntN(total))
		n.Potential = math.Max(0, n.Potential+strength)
	}
	e.log.Debug("stimulus injected", "count", count, "strength", strength)
}

// CollapseAt adds potential to every neuron within radius of (x, y, z),
// scaled linearly from intensity at the point to zero at the radius, and
// clears their refractory state. A non-positive radius or a non-finite
// intensity does nothing.
func (e *Engine) CollapseAt(x, y, z, radius, intensity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if math.IsNaN(intensity) || math.IsInf(intensity, 0) {
		return
	}
	e.nearby(mgl64.Vec3{x, y, z}, radius, func(n *network.Neuron, falloff float64) {
		n.Potential = math.Max(0, n.Potential+intensity*falloff)
		n.Refractory = 0
	})
}

// StimulateNear adds a small bump to neurons within radius of (x, y, z).
func (e *Engine) StimulateNear(x, y, z, radius float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nearby(mgl64.Vec3{x, y, z}, radius, func(n *network.Neuron, falloff float64) {
		n.Potential += e.params.HoverBump * falloff
	})
}

// nearby calls fn for each neuron strictly inside radius with falloff in (0, 1].
func (e *Engine) nearby(p mgl64.Vec3, radius float64, fn func(*network.Neuron, float64)) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return
	}
	neurons := e.neurons.All()
	for i := range neurons {
		d := neurons[i].Position.Sub(p).Len()
		if d < radius {
			fn(&neurons[i], 1-d/radius)
		}
	}
}

// RecallSymbol drives the concept labelled label to full potential and fires
// it, projecting its pattern onto the output layer.
func (e *Engine) RecallSymbol(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.memory.Lookup(label)
	if !ok {
		return fmt.Errorf("recall %q: %w", label, ErrUnknownSymbol)
	}
	concept := e.neurons.At(id)
	concept.Potential = 1.0
	e.fire(concept, e.params.RecallDepth, 1.0)
	e.log.Debug("symbol recalled", "label", label, "concept", id)
	return nil
}

// AddConnection adds a directed edge with an explicit weight. Self-loops and
// existing pairs are ignored (added is false).
func (e *Engine) AddConnection(from, to int, weight float64) (added bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return false, fmt.Errorf("connection weight %v is not finite", weight)
	}
	if _, err := e.neurons.Get(from); err != nil {
		return false, fmt.Errorf("connection source: %w", err)
	}
	if _, err := e.neurons.Get(to); err != nil {
		return false, fmt.Errorf("connection target: %w", err)
	}
	_, added = e.graph.Add(from, to, weight)
	return added, nil
}

// StorePattern stores outputs as the pattern of conceptID and wires the
// projection edges, as learning would.
func (e *Engine) StorePattern(conceptID int, outputs []int, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.neurons.Get(conceptID)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		o, err := e.neurons.Get(out)
		if err != nil {
			return fmt.Errorf("pattern output: %w", err)
		}
		if o.Role != network.RoleMotor {
			return fmt.Errorf("pattern output %d is %s: %w", out, o.Role, network.ErrOutOfRange)
		}
	}
	if err := e.memory.Store(conceptID, outputs, label, true); err != nil {
		return err
	}
	n.Label = label
	for _, out := range outputs {
		e.graph.Add(conceptID, out, e.params.ProjectionWeight)
	}
	return nil
}

// Fire fires neuron id with the given cascade depth and energy. fired is
// false when the neuron is refractory or energy is below the floor or not
// finite.
func (e *Engine) Fire(id, depth int, energy float64) (fired bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.neurons.Get(id)
	if err != nil {
		return false, err
	}
	return e.fire(n, depth, energy), nil
}

// SetPotential overwrites the potential of neuron id, clamped at zero.
func (e *Engine) SetPotential(id int, potential float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.neurons.Get(id)
	if err != nil {
		return err
	}
	if math.IsNaN(potential) {
		potential = 0
	}
	n.Potential = math.Max(0, potential)
	return nil
}
