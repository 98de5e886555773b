package network

import (
	"math/rand/v2"
	"testing"
)

func TestGraph_AddDedup(t *testing.T) {
	g := NewGraph()

	idx, added := g.Add(1, 2, 0.5)
	if !added || idx != 0 {
		t.Fatalf("Add(1, 2) = %d, %v; want 0, true", idx, added)
	}
	idx, added = g.Add(1, 2, 0.9)
	if added || idx != 0 {
		t.Errorf("repeat Add(1, 2) = %d, %v; want 0, false", idx, added)
	}
	if g.At(0).Weight != 0.5 {
		t.Errorf("weight overwritten: %v", g.At(0).Weight)
	}
	if _, added := g.Add(3, 3, 1); added {
		t.Error("self-loop was added")
	}
	if _, added := g.Add(2, 1, 0.1); !added {
		t.Error("reverse edge should be distinct")
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestGraph_Outbound(t *testing.T) {
	g := NewGraph()
	g.Add(1, 2, 1)
	g.Add(1, 3, 1)
	g.Add(2, 3, 1)

	out := g.Outbound(1)
	if len(out) != 2 {
		t.Fatalf("Outbound(1) = %v, want 2 edges", out)
	}
	if g.At(out[0]).To != 2 || g.At(out[1]).To != 3 {
		t.Errorf("outbound order = %v", out)
	}
	if len(g.Outbound(3)) != 0 {
		t.Error("neuron 3 has no outbound edges")
	}
	if !g.Has(2, 3) || g.Has(3, 2) {
		t.Error("Has disagrees with inserted edges")
	}
}

func TestGraph_AddRandomWeights(t *testing.T) {
	g := NewGraph()
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		g.AddRandom(i, i+1, 2.0, rng)
	}
	for _, c := range g.Connections() {
		if c.Weight < 0.4 || c.Weight >= 0.6 {
			t.Errorf("weight %v outside [0.4, 0.6)", c.Weight)
		}
	}

	idx, added := g.AddRandom(0, 1, 2.0, rng)
	if added || idx != 0 {
		t.Errorf("repeat AddRandom = %d, %v; want 0, false", idx, added)
	}
}

func TestGraph_DecayActivity(t *testing.T) {
	g := NewGraph()
	g.Add(1, 2, 1)
	g.At(0).Activity = 1
	g.DecayActivity(0.75)
	g.DecayActivity(0.75)
	if got := g.At(0).Activity; got != 0.5625 {
		t.Errorf("activity = %v, want 0.5625", got)
	}
}
