package engine

import (
	"math"

	"github.com/nvandessel/neurosim/internal/network"
)

// Signal is a spike travelling along a connection. Conn indexes the graph's
// connection slice, which never shrinks.
type Signal struct {
	From           int
	To             int
	Conn           int
	Weight         float64
	Progress       float64
	Energy         float64
	RemainingDepth int
}

// fire resets n and emits one signal per outbound edge. It is a no-op while
// n is refractory or when energy is below MinFireEnergy or not finite.
func (e *Engine) fire(n *network.Neuron, depth int, energy float64) bool {
	if n.Refractory > 0 || !(energy >= e.params.MinFireEnergy) || math.IsInf(energy, 0) {
		return false
	}
	n.Refractory = e.params.RefractoryPeriod
	n.Potential = 0
	e.stats.Fired++

	for _, ci := range e.graph.Outbound(n.ID) {
		c := e.graph.At(ci)
		if math.Abs(c.Weight) <= e.params.PruneWeightFloor && !e.residualEmit() {
			continue
		}
		e.signals = append(e.signals, Signal{
			From:           n.ID,
			To:             c.To,
			Conn:           ci,
			Weight:         c.Weight,
			Energy:         energy,
			RemainingDepth: depth - 1,
		})
		e.stats.Emitted++
	}
	return true
}

func (e *Engine) residualEmit() bool {
	return e.params.ResidualEmit > 0 && e.rng.Float64() < e.params.ResidualEmit
}

// advanceSignals moves every live signal forward and delivers the ones that
// arrive. The live set is compacted in place; arrivals are delivered after
// compaction, so signals emitted by cascades start moving next tick.
func (e *Engine) advanceSignals(dt float64) {
	step := dt * e.params.PropagationSpeed
	e.arrivals = e.arrivals[:0]

	live := e.signals[:0]
	for _, s := range e.signals {
		s.Progress += step
		if s.Progress >= 1.0 {
			e.arrivals = append(e.arrivals, s)
			continue
		}
		live = append(live, s)
	}
	// Zero the tail so arrived signals do not linger in the backing array.
	for i := len(live); i < len(e.signals); i++ {
		e.signals[i] = Signal{}
	}
	e.signals = live

	for _, s := range e.arrivals {
		e.deliver(s)
	}
}

// deliver applies an arrived signal to its target. Sensory neurons are
// terminals for feedback and are never re-excited.
func (e *Engine) deliver(s Signal) {
	target := e.neurons.At(s.To)
	e.stats.Delivered++
	if target.Role == network.RoleSensory {
		return
	}

	target.Potential = math.Max(0, target.Potential+s.Weight*s.Energy)
	e.graph.At(s.Conn).Activity = 1.0

	if target.Potential > target.Threshold && target.Refractory <= 0 && s.RemainingDepth > 0 {
		e.fire(target, s.RemainingDepth, s.Energy*e.params.EnergyRetention)
	}
}
