// Package eviction provides the replacement policies used by bounded caches.
//
// A Policy only orders keys. It never owns the cached values: the store that
// composes a Policy keeps the entries and asks the Policy which key to drop
// when it runs out of room. Three policies are provided:
//
//   - FIFO evicts the oldest inserted key regardless of later reads.
//   - LRU evicts the least recently used key.
//   - LFU evicts the least frequently used key.
//
// Policies are not safe for concurrent use. Callers serialize access, usually
// under the same lock that guards the entry map.
package eviction
