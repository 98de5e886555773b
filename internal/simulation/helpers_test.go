package simulation_test

import (
	"testing"

	"github.com/nvandessel/neurosim/internal/engine"
)

// cell returns the sensory id at row r, column c of the 14-wide retina.
func cell(r, c int) int { return r*14 + c }

// diagonalStroke is a thick diagonal line that matches no canonical shape.
func diagonalStroke() []int {
	var ids []int
	for i := 0; i < 14; i++ {
		ids = append(ids, cell(i, i))
		if i+1 < 14 {
			ids = append(ids, cell(i, i+1))
		}
	}
	return ids
}

// shapeTrace returns the sensory trace that projects exactly onto the
// stored pattern labelled label.
func shapeTrace(t *testing.T, label string) []int {
	t.Helper()
	e, err := engine.New(engine.DefaultParams().Quiet())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	for _, p := range e.Patterns() {
		if p.Label != label {
			continue
		}
		ids := make([]int, 0, len(p.Outputs))
		for _, out := range p.Outputs {
			id, ok := e.Layout().SensoryFor(out)
			if !ok {
				t.Fatalf("no sensory cell for output %d", out)
			}
			ids = append(ids, id)
		}
		return ids
	}
	t.Fatalf("no pattern labelled %q", label)
	return nil
}
