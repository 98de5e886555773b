package network

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/neurosim/internal/constants"
)

func TestNewStore(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	s, err := NewStore(800, DefaultLayout(800), rng)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.Len() != 800 {
		t.Fatalf("Len() = %d, want 800", s.Len())
	}
	for i, n := range s.All() {
		if n.ID != i {
			t.Fatalf("neuron at %d has id %d", i, n.ID)
		}
		if n.Potential != 0 || n.Refractory != 0 {
			t.Errorf("neuron %d not at rest", i)
		}
		if n.Threshold != constants.DefaultThreshold {
			t.Errorf("neuron %d threshold = %v", i, n.Threshold)
		}
		if n.Label != n.Role.String() {
			t.Errorf("neuron %d label = %q, want %q", i, n.Label, n.Role)
		}
	}

	if got := len(s.Block(RoleConcept)); got != 50 {
		t.Errorf("concept block size = %d, want 50", got)
	}
	if got := len(s.Block(RoleInhibitory)); got != 100 {
		t.Errorf("inhibitory block size = %d, want 100", got)
	}
}

func TestNewStore_SmallCount(t *testing.T) {
	s, err := NewStore(210, DefaultLayout(800), rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(s.Block(RoleMotor)); got != 10 {
		t.Errorf("motor block size = %d, want 10", got)
	}
	if s.Block(RoleConcept) != nil {
		t.Error("concept block should be empty")
	}
}

func TestStore_Get(t *testing.T) {
	s, err := NewStore(10, DefaultLayout(10), rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	n, err := s.Get(3)
	if err != nil || n.ID != 3 {
		t.Fatalf("Get(3) = %+v, %v", n, err)
	}
	n.Potential = 0.5
	if s.At(3).Potential != 0.5 {
		t.Error("Get must return a pointer into the store")
	}
	for _, id := range []int{-1, 10} {
		if _, err := s.Get(id); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Get(%d) err = %v, want ErrOutOfRange", id, err)
		}
	}
}

func TestDistance(t *testing.T) {
	s, _ := NewStore(200, DefaultLayout(200), rand.New(rand.NewPCG(1, 1)))
	// Adjacent sensory columns are one grid step apart.
	if got := Distance(s.At(0), s.At(1)); got != 6 {
		t.Errorf("Distance(0, 1) = %v, want 6", got)
	}
	if got := Distance(s.At(0), s.At(15)); got < 8.48 || got > 8.49 {
		t.Errorf("Distance(0, 15) = %v, want ~8.485", got)
	}
}
