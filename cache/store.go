package cache

import (
	"time"

	"github.com/jonwraymond/memoization/eviction"
)

// Unbounded is the max size of a store that never evicts.
const Unbounded = -1

// StoreConfig configures a Store.
type StoreConfig struct {
	// MaxSize bounds the number of entries. Unbounded disables eviction and
	// zero disables storage altogether.
	MaxSize int

	// TTL is the lifetime of new entries. Zero means entries never expire.
	TTL time.Duration

	// Policy orders entries for eviction and iteration. Defaults to FIFO.
	Policy eviction.Policy[Key]

	// Clock defaults to time.Now.
	Clock Clock
}

// LookupResult describes the outcome of Store.Lookup.
type LookupResult struct {
	Entry *Entry
	Found bool

	// Reaped is set when an expired entry was found and removed.
	Reaped bool
}

// Store is a capacity-bounded key to entry map composed with one eviction
// policy. The store owns every entry; the policy only holds keys.
//
// Store is not safe for concurrent use.
type Store struct {
	entries map[Key]*Entry
	policy  eviction.Policy[Key]
	maxSize int
	ttl     time.Duration
	now     Clock
}

// NewStore creates an empty store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Policy == nil {
		cfg.Policy = eviction.NewFIFO[Key]()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.MaxSize < 0 {
		cfg.MaxSize = Unbounded
	}
	return &Store{
		entries: make(map[Key]*Entry),
		policy:  cfg.Policy,
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		now:     cfg.Clock,
	}
}

// Lookup returns the live entry for key and records the hit with the policy.
// An expired entry is removed and reported as not found.
func (s *Store) Lookup(key Key) LookupResult {
	e, ok := s.entries[key]
	if !ok {
		return LookupResult{}
	}
	if !e.IsAlive(s.now()) {
		s.remove(key)
		return LookupResult{Reaped: true}
	}
	s.policy.OnHit(key)
	return LookupResult{Entry: e, Found: true}
}

// Peek returns the entry for key, alive or not, without touching the policy.
func (s *Store) Peek(key Key) (*Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Insert stores value under key, first evicting one victim when the store
// is already at its max size. Re-inserting a present key replaces its value and
// lifetime in place without changing its eviction order.
func (s *Store) Insert(key Key, args Args, value any) (evicted Key, ok bool) {
	if s.maxSize == 0 {
		return nil, false
	}

	now := s.now()
	if e, exists := s.entries[key]; exists {
		e.Args = args
		e.Value = value
		e.CreatedAt = now
		e.ExpiresAt = s.expiry(now)
		return nil, false
	}

	// Make room before the new key joins the policy, so a fresh LFU key is
	// never its own victim.
	if s.maxSize != Unbounded && len(s.entries) >= s.maxSize {
		if victim, found := s.policy.Evict(); found {
			delete(s.entries, victim)
			evicted, ok = victim, true
		}
	}

	s.entries[key] = &Entry{
		Key:       key,
		Args:      args,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: s.expiry(now),
	}
	s.policy.OnInsert(key)
	return evicted, ok
}

// Remove deletes key. It reports whether the key was present.
func (s *Store) Remove(key Key) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.remove(key)
	return true
}

// RemoveIf deletes every entry for which pred returns true and returns the
// number removed. Entries are visited in eviction order.
func (s *Store) RemoveIf(pred func(e *Entry, alive bool) bool) int {
	now := s.now()
	var doomed []Key
	s.policy.Walk(func(key Key) bool {
		e := s.entries[key]
		if pred(e, e.IsAlive(now)) {
			doomed = append(doomed, key)
		}
		return true
	})
	for _, key := range doomed {
		s.remove(key)
	}
	return len(doomed)
}

// ForEach visits entries in eviction order until fn returns false.
func (s *Store) ForEach(fn func(e *Entry, alive bool) bool) {
	now := s.now()
	s.policy.Walk(func(key Key) bool {
		e := s.entries[key]
		return fn(e, e.IsAlive(now))
	})
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return len(s.entries)
}

// MaxSize returns the configured bound, or Unbounded.
func (s *Store) MaxSize() int {
	return s.maxSize
}

// IsEmpty reports whether the store holds no entries.
func (s *Store) IsEmpty() bool {
	return len(s.entries) == 0
}

// IsFull reports whether a bounded store holds exactly max size entries.
func (s *Store) IsFull() bool {
	return s.maxSize != Unbounded && len(s.entries) == s.maxSize
}

// Clear drops every entry.
func (s *Store) Clear() {
	clear(s.entries)
	s.policy.Reset()
}

func (s *Store) remove(key Key) {
	delete(s.entries, key)
	s.policy.Remove(key)
}

func (s *Store) expiry(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}
