package memory

import (
	"errors"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []int{1}, nil, 0},
		{"identical", []int{1, 2, 3}, []int{3, 2, 1}, 1},
		{"disjoint", []int{1, 2}, []int{3, 4}, 0},
		{"half", []int{1, 2, 3}, []int{2, 3, 4}, 0.5},
		{"duplicates ignored", []int{1, 1, 2}, []int{2, 2}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(SetOf(tt.a), SetOf(tt.b)); got != tt.want {
				t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMemory_StoreAndFreeSlot(t *testing.T) {
	m := New([]int{12, 10, 11})
	if m.Capacity() != 3 {
		t.Fatalf("Capacity() = %d, want 3", m.Capacity())
	}

	slot, ok := m.FreeSlot()
	if !ok || slot != 10 {
		t.Fatalf("FreeSlot() = %d, %v; want 10, true", slot, ok)
	}
	if err := m.Store(10, []int{1, 2}, "A", false); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if slot, _ := m.FreeSlot(); slot != 11 {
		t.Errorf("FreeSlot() = %d, want 11", slot)
	}

	if err := m.Store(10, []int{3}, "B", true); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("Store into taken slot err = %v, want ErrSlotTaken", err)
	}
	if err := m.Store(99, []int{3}, "B", true); !errors.Is(err, ErrNotConcept) {
		t.Errorf("Store into non-slot err = %v, want ErrNotConcept", err)
	}

	m.Store(11, nil, "B", true)
	m.Store(12, nil, "C", true)
	if _, ok := m.FreeSlot(); ok {
		t.Error("FreeSlot() should fail when every slot is taken")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestMemory_Best(t *testing.T) {
	m := New([]int{1, 2, 3})
	if got := m.Best(SetOf([]int{5})); got.Found {
		t.Errorf("Best on empty memory = %+v, want not found", got)
	}

	m.Store(1, []int{10, 11, 12, 13}, "A", false)
	m.Store(2, []int{12, 13, 14, 15}, "B", false)
	m.Store(3, []int{10, 11, 12, 13}, "C", true)

	got := m.Best(SetOf([]int{10, 11, 12}))
	if !got.Found || got.ConceptID != 1 || got.Score != 0.75 {
		t.Errorf("Best = %+v, want concept 1 with 0.75 (tie goes to lowest id)", got)
	}

	got = m.Best(SetOf([]int{14, 15}))
	if got.ConceptID != 2 || got.Score != 0.5 {
		t.Errorf("Best = %+v, want concept 2 with 0.5", got)
	}
}

func TestMemory_UnionAndLookup(t *testing.T) {
	m := New([]int{1, 2, 3})
	m.Store(1, []int{10, 11}, "A", false)
	m.Store(2, []int{11, 12}, "B", false)

	dst := make(map[int]struct{})
	m.Union(dst, []int{1, 2, 3})
	if len(dst) != 3 {
		t.Errorf("union = %v, want {10, 11, 12}", dst)
	}

	if id, ok := m.Lookup("B"); !ok || id != 2 {
		t.Errorf("Lookup(B) = %d, %v", id, ok)
	}
	if _, ok := m.Lookup("Z"); ok {
		t.Error("Lookup(Z) should fail")
	}
}

func TestMemory_PatternsAreCopies(t *testing.T) {
	m := New([]int{1})
	m.Store(1, []int{3, 1, 2, 1}, "A", true)

	ps := m.Patterns()
	if len(ps) != 1 {
		t.Fatalf("Patterns() = %v", ps)
	}
	want := []int{1, 2, 3}
	for i, id := range want {
		if ps[0].Outputs[i] != id {
			t.Fatalf("outputs = %v, want %v", ps[0].Outputs, want)
		}
	}
	ps[0].Outputs[0] = 99
	if m.Patterns()[0].Outputs[0] != 1 {
		t.Error("Patterns must return copies")
	}
	if !m.Has(1) || m.Has(2) {
		t.Error("Has disagrees with stored patterns")
	}
}
