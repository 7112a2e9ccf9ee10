package eviction

import "container/list"

// fifo keeps keys in insertion order. The front of the queue is the oldest key.
type fifo[K comparable] struct {
	queue *list.List
	items map[K]*list.Element
}

// NewFIFO creates an empty first-in first-out policy.
func NewFIFO[K comparable]() Policy[K] {
	return &fifo[K]{
		queue: list.New(),
		items: make(map[K]*list.Element),
	}
}

func (f *fifo[K]) OnInsert(key K) {
	if _, ok := f.items[key]; ok {
		return
	}
	f.items[key] = f.queue.PushBack(key)
}

// OnHit is a no-op: reads never change insertion order.
func (f *fifo[K]) OnHit(K) {}

func (f *fifo[K]) Evict() (K, bool) {
	elem := f.queue.Front()
	if elem == nil {
		var zero K
		return zero, false
	}
	key := f.queue.Remove(elem).(K)
	delete(f.items, key)
	return key, true
}

func (f *fifo[K]) Remove(key K) {
	if elem, ok := f.items[key]; ok {
		f.queue.Remove(elem)
		delete(f.items, key)
	}
}

func (f *fifo[K]) Walk(fn func(K) bool) {
	for elem := f.queue.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(K)) {
			return
		}
	}
}

func (f *fifo[K]) Len() int {
	return len(f.items)
}

func (f *fifo[K]) Reset() {
	f.queue.Init()
	clear(f.items)
}
