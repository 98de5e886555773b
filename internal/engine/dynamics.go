package engine

import (
	"context"
	"math"

	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/network"
)

// Advance runs one tick of length dt seconds. elapsed is the host's clock
// and is only recorded. dt is clamped to [0, MaxDelta].
//
// Order: active concepts are computed first, then every neuron goes through
// latch/decay, refractory countdown, masking, noise and the fire check, then
// in-flight signals advance and deliver, then connection activity fades.
func (e *Engine) Advance(dt, elapsed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	dt = e.clampDelta(dt)
	e.tick++
	e.elapsed = elapsed

	masking := e.computeMask()

	neurons := e.neurons.All()
	for i := range neurons {
		e.stepNeuron(&neurons[i], dt, masking)
	}

	e.advanceSignals(dt)
	e.graph.DecayActivity(e.params.ConnectionFade)

	if e.log.Enabled(context.Background(), logging.LevelTrace) {
		e.log.Log(context.Background(), logging.LevelTrace, "tick",
			"tick", e.tick,
			"dt", dt,
			"signals", len(e.signals),
			"arrivals", len(e.arrivals),
			"active_concepts", len(e.activeConcepts))
	}
}

func (e *Engine) clampDelta(dt float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	if dt > e.params.MaxDelta {
		return e.params.MaxDelta
	}
	return dt
}

// computeMask collects active concepts and the union of their patterns into
// e.allowed. It reports whether masking applies this tick.
func (e *Engine) computeMask() bool {
	e.activeConcepts = e.activeConcepts[:0]
	for id := range e.allowed {
		delete(e.allowed, id)
	}
	for _, id := range e.neurons.Block(network.RoleConcept) {
		if e.neurons.At(id).Potential > e.params.ConceptActiveFloor {
			e.activeConcepts = append(e.activeConcepts, id)
		}
	}
	if len(e.activeConcepts) == 0 {
		return false
	}
	e.memory.Union(e.allowed, e.activeConcepts)
	return true
}

func (e *Engine) stepNeuron(n *network.Neuron, dt float64, masking bool) {
	_, latched := e.trace[n.ID]

	if latched {
		n.Potential = e.params.TraceLatch
	} else {
		n.Potential *= e.decayFactor(n)
	}
	if n.Potential < e.params.Epsilon {
		n.Potential = 0
	}

	if n.Refractory > 0 {
		n.Refractory = math.Max(0, n.Refractory-dt)
	}

	if masking && e.maskable(n) {
		if _, ok := e.allowed[n.ID]; !ok {
			n.Potential *= e.params.MaskAttenuation
		}
	}

	if !latched {
		e.spontaneous(n)
	}

	if n.Potential > n.Threshold && n.Refractory <= 0 && e.mayAutoFire(n, latched) {
		e.fire(n, e.params.AutoFireDepth, n.Potential)
	}
}

func (e *Engine) decayFactor(n *network.Neuron) float64 {
	switch n.Role {
	case network.RoleMotor:
		if n.Potential > e.params.LatchFloor {
			return e.params.LatchDecay
		}
		return e.params.Decay
	case network.RoleSensory, network.RoleFeatureEdge, network.RoleFeatureAngle,
		network.RoleAssociation, network.RoleMemory, network.RoleConcept, network.RoleInhibitory:
		return e.params.Decay
	}
	panic("engine: unhandled role " + n.Role.String())
}

// maskable reports whether top-down masking may attenuate n.
func (e *Engine) maskable(n *network.Neuron) bool {
	switch n.Role {
	case network.RoleMotor:
		return true
	case network.RoleSensory, network.RoleFeatureEdge, network.RoleFeatureAngle,
		network.RoleAssociation, network.RoleMemory, network.RoleConcept, network.RoleInhibitory:
		return false
	}
	panic("engine: unhandled role " + n.Role.String())
}

// spontaneous applies stochastic background activity. Higher layers pass an
// extra gate so noise rarely starts a cascade.
func (e *Engine) spontaneous(n *network.Neuron) {
	if e.params.NoiseProbability <= 0 || e.rng.Float64() >= e.params.NoiseProbability {
		return
	}
	switch n.Role {
	case network.RoleSensory:
		n.Potential += e.params.SensoryNoise
	case network.RoleMotor, network.RoleFeatureEdge, network.RoleFeatureAngle,
		network.RoleAssociation, network.RoleMemory, network.RoleConcept, network.RoleInhibitory:
		if e.rng.Float64() < e.params.HigherNoiseChance {
			n.Potential += e.params.HigherNoise
		}
	}
}

// mayAutoFire is the role-specific gate of the automatic threshold check.
// Buffered sensory neurons only fire through CommitTrace.
func (e *Engine) mayAutoFire(n *network.Neuron, latched bool) bool {
	switch n.Role {
	case network.RoleSensory:
		return !latched
	case network.RoleMotor, network.RoleFeatureEdge, network.RoleFeatureAngle,
		network.RoleAssociation, network.RoleMemory, network.RoleConcept, network.RoleInhibitory:
		return n.Potential > e.params.HigherLayerFloor
	}
	panic("engine: unhandled role " + n.Role.String())
}
