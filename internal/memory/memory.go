// Package memory implements pattern memory: the mapping from concept neurons
// to the set of output neurons that make up each concept's learned shape.
package memory

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotConcept is returned when an id is not one of the memory's concept slots.
	ErrNotConcept = errors.New("not a concept slot")

	// ErrSlotTaken is returned when storing into a slot that already holds a pattern.
	ErrSlotTaken = errors.New("concept slot already holds a pattern")
)

// Pattern is one stored concept shape. Patterns are immutable once stored.
type Pattern struct {
	ConceptID int    `json:"concept_id"`
	Outputs   []int  `json:"outputs"`
	Label     string `json:"label"`
	Learned   bool   `json:"learned"`
}

// Match is the result of scoring a trace against stored patterns.
type Match struct {
	ConceptID int
	Score     float64
	Found     bool
}

// Memory holds at most one pattern per concept slot. Capacity is the number
// of slots it was created with.
type Memory struct {
	slots    []int
	isSlot   map[int]bool
	patterns map[int]map[int]struct{}
	meta     map[int]Pattern
}

// New creates a memory whose slots are the given concept ids. Slot order
// decides which free slot FreeSlot hands out first.
func New(conceptIDs []int) *Memory {
	slots := append([]int(nil), conceptIDs...)
	sort.Ints(slots)
	isSlot := make(map[int]bool, len(slots))
	for _, id := range slots {
		isSlot[id] = true
	}
	return &Memory{
		slots:    slots,
		isSlot:   isSlot,
		patterns: make(map[int]map[int]struct{}),
		meta:     make(map[int]Pattern),
	}
}

// Capacity returns the number of concept slots.
func (m *Memory) Capacity() int { return len(m.slots) }

// Len returns the number of stored patterns.
func (m *Memory) Len() int { return len(m.patterns) }

// Store saves outputs as the pattern of conceptID.
func (m *Memory) Store(conceptID int, outputs []int, label string, learned bool) error {
	if !m.isSlot[conceptID] {
		return fmt.Errorf("concept %d: %w", conceptID, ErrNotConcept)
	}
	if _, taken := m.patterns[conceptID]; taken {
		return fmt.Errorf("concept %d: %w", conceptID, ErrSlotTaken)
	}
	set := SetOf(outputs)
	m.patterns[conceptID] = set
	m.meta[conceptID] = Pattern{
		ConceptID: conceptID,
		Outputs:   sortedIDs(set),
		Label:     label,
		Learned:   learned,
	}
	return nil
}

// FreeSlot returns the lowest concept id without a pattern.
func (m *Memory) FreeSlot() (int, bool) {
	for _, id := range m.slots {
		if _, taken := m.patterns[id]; !taken {
			return id, true
		}
	}
	return 0, false
}

// Outputs returns the stored output set of conceptID, or nil.
// The returned set must not be modified.
func (m *Memory) Outputs(conceptID int) map[int]struct{} {
	return m.patterns[conceptID]
}

// Has reports whether conceptID holds a pattern.
func (m *Memory) Has(conceptID int) bool {
	_, ok := m.patterns[conceptID]
	return ok
}

// Best scores trace against every stored pattern and returns the highest
// Jaccard score. Ties go to the lowest concept id so results are stable.
func (m *Memory) Best(trace map[int]struct{}) Match {
	var best Match
	for _, id := range m.slots {
		pattern, ok := m.patterns[id]
		if !ok {
			continue
		}
		score := Jaccard(trace, pattern)
		if !best.Found || score > best.Score {
			best = Match{ConceptID: id, Score: score, Found: true}
		}
	}
	return best
}

// Union adds the outputs of every listed concept into dst.
func (m *Memory) Union(dst map[int]struct{}, conceptIDs []int) {
	for _, id := range conceptIDs {
		for out := range m.patterns[id] {
			dst[out] = struct{}{}
		}
	}
}

// Lookup returns the concept id whose pattern carries label.
func (m *Memory) Lookup(label string) (int, bool) {
	for _, id := range m.slots {
		if p, ok := m.meta[id]; ok && p.Label == label {
			return id, true
		}
	}
	return 0, false
}

// Patterns returns every stored pattern ordered by concept id.
func (m *Memory) Patterns() []Pattern {
	out := make([]Pattern, 0, len(m.meta))
	for _, id := range m.slots {
		if p, ok := m.meta[id]; ok {
			p.Outputs = append([]int(nil), p.Outputs...)
			out = append(out, p)
		}
	}
	return out
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
