package eviction

import "container/list"

// lru keeps keys in recency order. The front is the most recently used key,
// the back is the next victim.
type lru[K comparable] struct {
	order *list.List
	items map[K]*list.Element
}

// NewLRU creates an empty least-recently-used policy.
func NewLRU[K comparable]() Policy[K] {
	return &lru[K]{
		order: list.New(),
		items: make(map[K]*list.Element),
	}
}

func (l *lru[K]) OnInsert(key K) {
	if _, ok := l.items[key]; ok {
		return
	}
	l.items[key] = l.order.PushFront(key)
}

func (l *lru[K]) OnHit(key K) {
	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
	}
}

func (l *lru[K]) Evict() (K, bool) {
	elem := l.order.Back()
	if elem == nil {
		var zero K
		return zero, false
	}
	key := l.order.Remove(elem).(K)
	delete(l.items, key)
	return key, true
}

func (l *lru[K]) Remove(key K) {
	if elem, ok := l.items[key]; ok {
		l.order.Remove(elem)
		delete(l.items, key)
	}
}

func (l *lru[K]) Walk(fn func(K) bool) {
	for elem := l.order.Back(); elem != nil; elem = elem.Prev() {
		if !fn(elem.Value.(K)) {
			return
		}
	}
}

func (l *lru[K]) Len() int {
	return len(l.items)
}

func (l *lru[K]) Reset() {
	l.order.Init()
	clear(l.items)
}
