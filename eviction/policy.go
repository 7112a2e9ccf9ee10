package eviction

import (
	"errors"
	"fmt"
)

// ErrUnknownType indicates a policy type that New does not recognize.
var ErrUnknownType = errors.New("eviction: unknown policy type")

// Policy orders the keys of a cache and picks eviction victims.
//
// Contract:
//   - Concurrency: implementations are not safe for concurrent use.
//   - Ownership: a Policy holds keys only; the caller owns the entries.
//   - OnInsert on a tracked key and OnHit/Remove on an untracked key are no-ops.
type Policy[K comparable] interface {
	// OnInsert starts tracking a newly stored key.
	OnInsert(key K)

	// OnHit records a successful read of key.
	OnHit(key K)

	// Evict removes and returns the next victim. ok is false when empty.
	Evict() (key K, ok bool)

	// Remove stops tracking key without treating it as an eviction.
	Remove(key K)

	// Walk visits tracked keys in eviction order, next victim first,
	// until fn returns false. fn must not mutate the policy.
	Walk(fn func(key K) bool)

	// Len returns the number of tracked keys.
	Len() int

	// Reset drops every tracked key.
	Reset()
}

// Type identifies a built-in policy.
type Type int

const (
	// FIFO evicts the oldest inserted key, regardless of access.
	FIFO Type = iota + 1
	// LRU evicts the key that has not been read for the longest time.
	LRU
	// LFU evicts the key read the fewest times.
	LFU
)

func (t Type) String() string {
	switch t {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case LFU:
		return "LFU"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// New creates an empty policy of the given type.
func New[K comparable](t Type) (Policy[K], error) {
	switch t {
	case FIFO:
		return NewFIFO[K](), nil
	case LRU:
		return NewLRU[K](), nil
	case LFU:
		return NewLFU[K](), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
}
