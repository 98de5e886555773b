package engine

import (
	"math"
	"sort"

	"github.com/nvandessel/neurosim/internal/network"
)

// Structural weight factors of the initial wiring.
const (
	sensoryToEdgeFactor  = 1.5
	edgeToAngleFactor    = 1.3
	featureToPoolFactor  = 1.0
	poolToConceptFactor  = 2.0
	inhibitionFactor     = -2.0
	anglesPerEdgeFanIn   = 7
	featureFanOut        = 4
	poolToConceptChance  = 0.3
	inhibitionRadius     = 40.0
	inhibitionMaxTargets = 15
)

// wire builds the initial connection graph: sensory patches feed edge
// detectors, edge detectors feed angle detectors, features fan out into the
// memory/association pool, the pool feeds concepts, and inhibitory neurons
// suppress nearby motor neurons.
func (e *Engine) wire() {
	sensory, _ := e.layout.Block(network.RoleSensory)
	sensoryGrid, _ := sensory.Place.(network.Grid)
	edges := e.neurons.Block(network.RoleFeatureEdge)
	angles := e.neurons.Block(network.RoleFeatureAngle)
	concepts := e.neurons.Block(network.RoleConcept)
	pool := append(e.neurons.Block(network.RoleMemory), e.neurons.Block(network.RoleAssociation)...)

	// 1. Each edge detector watches a 3x3 sensory patch, stride 2.
	if sensory.Len() > 0 && sensoryGrid.Width > 0 {
		for k, edge := range edges {
			rowOffset := (k / 7) * 2
			colOffset := (k % 7) * 2
			for dr := 0; dr < 3; dr++ {
				for dc := 0; dc < 3; dc++ {
					col := colOffset + dc
					if col >= sensoryGrid.Width {
						continue
					}
					rid := sensory.Start + (rowOffset+dr)*sensoryGrid.Width + col
					if sensory.Contains(rid) {
						e.graph.AddRandom(rid, edge, sensoryToEdgeFactor, e.rng)
					}
				}
			}
		}
	}

	// 2. Angle detectors take their nearest edge detectors.
	for _, angle := range angles {
		a := e.neurons.At(angle)
		near := append([]int(nil), edges...)
		sort.SliceStable(near, func(i, j int) bool {
			return network.Distance(a, e.neurons.At(near[i])) < network.Distance(a, e.neurons.At(near[j]))
		})
		if len(near) > anglesPerEdgeFanIn {
			near = near[:anglesPerEdgeFanIn]
		}
		for _, edge := range near {
			e.graph.AddRandom(edge, angle, edgeToAngleFactor, e.rng)
		}
	}

	// 3. Features fan out into the memory/association pool.
	if len(pool) > 0 {
		for _, feat := range append(append([]int(nil), edges...), angles...) {
			for i := 0; i < featureFanOut; i++ {
				target := pool[e.rng.IntN(len(pool))]
				e.graph.AddRandom(feat, target, featureToPoolFactor, e.rng)
			}
		}
	}

	// 4. Some of the pool feeds concepts.
	if len(concepts) > 0 {
		for _, m := range pool {
			if e.rng.Float64() < poolToConceptChance {
				target := concepts[e.rng.IntN(len(concepts))]
				e.graph.AddRandom(m, target, poolToConceptFactor, e.rng)
			}
		}
	}

	// 5. Inhibitory neurons gate nearby motor neurons.
	motors := e.neurons.Block(network.RoleMotor)
	for _, inh := range e.neurons.Block(network.RoleInhibitory) {
		n := e.neurons.At(inh)
		targets := 0
		for _, m := range motors {
			if targets >= inhibitionMaxTargets {
				break
			}
			if network.Distance(n, e.neurons.At(m)) < inhibitionRadius {
				e.graph.AddRandom(inh, m, inhibitionFactor, e.rng)
				targets++
			}
		}
	}
}

// shape decides whether motor grid cell (r, c) belongs to a canonical shape.
type shape struct {
	label  string
	offset int
	member func(r, c int) bool
}

// canonicalShapes are hand-wired onto concept slots at the given offsets
// into the concept block.
var canonicalShapes = []shape{
	{label: "CIRCLE", offset: 0, member: func(r, c int) bool {
		d := math.Hypot(float64(r-3), float64(c-3))
		return d > 1.8 && d < 3.3
	}},
	{label: "TRIANGLE", offset: 5, member: func(r, c int) bool {
		if r == 5 && c >= 1 && c <= 5 {
			return true
		}
		return abs(c-3) == abs(r-1) && r >= 1 && r < 5
	}},
	{label: "SQUARE", offset: 10, member: func(r, c int) bool {
		if (r == 1 || r == 5) && c >= 1 && c <= 5 {
			return true
		}
		return (c == 1 || c == 5) && r >= 1 && r <= 5
	}},
	{label: "CROSS", offset: 15, member: func(r, c int) bool {
		return r == 3 || c == 3
	}},
}

// wireCanonicalShapes stores the canonical shapes in pattern memory and adds
// their projection edges.
func (e *Engine) wireCanonicalShapes() error {
	concepts, ok := e.layout.Block(network.RoleConcept)
	if !ok {
		return nil
	}
	motor, ok := e.layout.Block(network.RoleMotor)
	if !ok {
		return nil
	}
	grid, ok := motor.Place.(network.Grid)
	if !ok || grid.Width <= 0 {
		return nil
	}

	for _, s := range canonicalShapes {
		conceptID := concepts.Start + s.offset
		if !concepts.Contains(conceptID) {
			continue
		}
		var outputs []int
		for id := motor.Start; id < motor.End; id++ {
			r, c := grid.Cell(id - motor.Start)
			if s.member(r, c) {
				outputs = append(outputs, id)
			}
		}
		if err := e.memory.Store(conceptID, outputs, s.label, false); err != nil {
			return err
		}
		e.neurons.At(conceptID).Label = s.label
		for _, out := range outputs {
			e.graph.Add(conceptID, out, e.params.ProjectionWeight)
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
