package eviction

import (
	"slices"
	"testing"
)

func TestFIFO_EvictsOldestDespiteHits(t *testing.T) {
	p := NewFIFO[string]()
	p.OnInsert("k1")
	p.OnInsert("k2")
	p.OnInsert("k3")

	// Hits never reorder a FIFO queue.
	p.OnHit("k1")
	p.OnHit("k1")

	k, ok := p.Evict()
	if !ok || k != "k1" {
		t.Fatalf("Evict() = (%q, %v), want (k1, true)", k, ok)
	}
	if got := walkKeys(p); !slices.Equal(got, []string{"k2", "k3"}) {
		t.Errorf("Walk() = %v, want [k2 k3]", got)
	}
}

func TestFIFO_RemoveFromMiddle(t *testing.T) {
	p := NewFIFO[int]()
	for i := 1; i <= 4; i++ {
		p.OnInsert(i)
	}
	p.Remove(2)

	var evicted []int
	for {
		k, ok := p.Evict()
		if !ok {
			break
		}
		evicted = append(evicted, k)
	}
	if !slices.Equal(evicted, []int{1, 3, 4}) {
		t.Errorf("eviction order = %v, want [1 3 4]", evicted)
	}
}
