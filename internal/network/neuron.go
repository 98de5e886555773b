package network

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nvandessel/neurosim/internal/constants"
)

// Neuron is a single simulated node. Position only drives layout, masking
// distance and pointer hit tests; it has no physics.
type Neuron struct {
	ID         int
	Position   mgl64.Vec3
	Role       Role
	Potential  float64
	Threshold  float64
	Refractory float64
	Label      string
}

// Store owns every neuron of a population. Neurons are created once by
// NewStore and never destroyed; ids are dense in [0, Len()).
type Store struct {
	layout  Layout
	neurons []Neuron
}

// NewStore allocates count neurons following layout. Positions for scattered
// blocks are drawn from rng.
func NewStore(count int, layout Layout, rng Source) (*Store, error) {
	if count < 0 {
		return nil, fmt.Errorf("neuron count %d: %w", count, ErrOutOfRange)
	}
	layout = layout.Clip(count)
	if err := layout.Validate(count); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	s := &Store{
		layout:  layout,
		neurons: make([]Neuron, count),
	}
	for _, b := range layout.Blocks {
		for id := b.Start; id < b.End; id++ {
			s.neurons[id] = Neuron{
				ID:        id,
				Position:  b.Place.Place(id-b.Start, rng),
				Role:      b.Role,
				Threshold: constants.DefaultThreshold,
				Label:     b.Role.String(),
			}
		}
	}
	return s, nil
}

// Len returns the number of neurons.
func (s *Store) Len() int { return len(s.neurons) }

// Layout returns the (clipped) layout the store was built with.
func (s *Store) Layout() Layout { return s.layout }

// Get returns a pointer to the neuron with the given id. The pointer stays
// valid for the lifetime of the store.
func (s *Store) Get(id int) (*Neuron, error) {
	if id < 0 || id >= len(s.neurons) {
		return nil, fmt.Errorf("neuron %d (have %d): %w", id, len(s.neurons), ErrOutOfRange)
	}
	return &s.neurons[id], nil
}

// At returns the neuron at id without bounds reporting. Callers must have
// validated id.
func (s *Store) At(id int) *Neuron { return &s.neurons[id] }

// All returns the backing slice. Callers may mutate neuron state but must not
// append to or reslice it.
func (s *Store) All() []Neuron { return s.neurons }

// Block returns the ids of the block with the given role.
func (s *Store) Block(role Role) []int {
	b, ok := s.layout.Block(role)
	if !ok {
		return nil
	}
	ids := make([]int, 0, b.Len())
	for id := b.Start; id < b.End; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Distance returns the euclidean distance between two neurons.
func Distance(a, b *Neuron) float64 {
	return a.Position.Sub(b.Position).Len()
}
