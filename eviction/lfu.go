package eviction

import (
	"container/list"
	"slices"
)

// lfuNode is the per-key bookkeeping of the LFU policy.
type lfuNode[K comparable] struct {
	key  K
	freq uint64
	elem *list.Element
}

// lfu buckets keys by access frequency. Each bucket is a list ordered by the
// time keys entered it, so the front of the lowest bucket is the victim.
//
// A key starts at frequency 1 on insert and gains 1 per hit.
type lfu[K comparable] struct {
	nodes   map[K]*lfuNode[K]
	buckets map[uint64]*list.List
	minFreq uint64
}

// NewLFU creates an empty least-frequently-used policy.
func NewLFU[K comparable]() Policy[K] {
	return &lfu[K]{
		nodes:   make(map[K]*lfuNode[K]),
		buckets: make(map[uint64]*list.List),
	}
}

func (l *lfu[K]) OnInsert(key K) {
	if _, ok := l.nodes[key]; ok {
		return
	}
	n := &lfuNode[K]{key: key, freq: 1}
	n.elem = l.bucket(1).PushBack(n)
	l.nodes[key] = n
	l.minFreq = 1
}

func (l *lfu[K]) OnHit(key K) {
	n, ok := l.nodes[key]
	if !ok {
		return
	}
	old := n.freq
	l.detach(n)
	if l.minFreq == old && l.buckets[old] == nil {
		l.minFreq = old + 1
	}
	n.freq++
	n.elem = l.bucket(n.freq).PushBack(n)
}

func (l *lfu[K]) Evict() (K, bool) {
	if len(l.nodes) == 0 {
		var zero K
		return zero, false
	}
	b := l.buckets[l.minFreq]
	if b == nil {
		l.recomputeMin()
		b = l.buckets[l.minFreq]
	}
	n := b.Front().Value.(*lfuNode[K])
	l.detach(n)
	delete(l.nodes, n.key)
	if len(l.nodes) > 0 && l.buckets[l.minFreq] == nil {
		l.recomputeMin()
	}
	return n.key, true
}

func (l *lfu[K]) Remove(key K) {
	n, ok := l.nodes[key]
	if !ok {
		return
	}
	l.detach(n)
	delete(l.nodes, key)
	if n.freq == l.minFreq && l.buckets[n.freq] == nil {
		l.recomputeMin()
	}
}

// Walk visits keys from the lowest frequency bucket upwards.
func (l *lfu[K]) Walk(fn func(K) bool) {
	freqs := make([]uint64, 0, len(l.buckets))
	for f := range l.buckets {
		freqs = append(freqs, f)
	}
	slices.Sort(freqs)
	for _, f := range freqs {
		for elem := l.buckets[f].Front(); elem != nil; elem = elem.Next() {
			if !fn(elem.Value.(*lfuNode[K]).key) {
				return
			}
		}
	}
}

func (l *lfu[K]) Len() int {
	return len(l.nodes)
}

func (l *lfu[K]) Reset() {
	clear(l.nodes)
	clear(l.buckets)
	l.minFreq = 0
}

// Frequency reports the access count of key, or 0 when untracked.
func (l *lfu[K]) Frequency(key K) uint64 {
	if n, ok := l.nodes[key]; ok {
		return n.freq
	}
	return 0
}

func (l *lfu[K]) bucket(freq uint64) *list.List {
	b, ok := l.buckets[freq]
	if !ok {
		b = list.New()
		l.buckets[freq] = b
	}
	return b
}

// detach unlinks n from its bucket and drops the bucket once empty.
func (l *lfu[K]) detach(n *lfuNode[K]) {
	b := l.buckets[n.freq]
	b.Remove(n.elem)
	n.elem = nil
	if b.Len() == 0 {
		delete(l.buckets, n.freq)
	}
}

func (l *lfu[K]) recomputeMin() {
	l.minFreq = 0
	for f := range l.buckets {
		if l.minFreq == 0 || f < l.minFreq {
			l.minFreq = f
		}
	}
}
