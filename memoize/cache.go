package memoize

import (
	"context"
	"sync"

	"github.com/jonwraymond/memoization/cache"
)

// Func is a function that can be memoized. It must be deterministic in
// args; ctx is passed through untouched.
type Func func(ctx context.Context, args cache.Args) (any, error)

// Cache is a memoized function together with its management surface.
// Extension algorithms registered with a Registry implement it.
//
// Contract:
//   - Concurrency: safe for concurrent use when built with ThreadSafe.
//   - Errors: Call returns the underlying function's error unchanged and
//     records nothing for that attempt.
//   - Tolerance: every management method works on empty caches and on
//     caches holding only expired entries.
type Cache interface {
	// Call returns the cached result for args, computing it on a miss.
	Call(ctx context.Context, args cache.Args) (any, error)

	// Do calls with positional arguments only.
	Do(ctx context.Context, positional ...any) (any, error)

	// Info returns a statistics and configuration snapshot.
	Info() CacheInfo

	// Clear empties the cache and resets statistics.
	Clear()

	IsEmpty() bool
	IsFull() bool

	// ContainsArgs reports whether a result is cached for args.
	ContainsArgs(args cache.Args, opts ...QueryOption) bool

	// ContainsKey reports whether a result is cached under key.
	ContainsKey(key cache.Key, opts ...QueryOption) bool

	// ContainsResult reports whether any entry holds a value deeply equal
	// to result. It scans every entry.
	ContainsResult(result any, opts ...QueryOption) bool

	// ForEach visits entries in eviction order until fn returns false.
	ForEach(fn func(args cache.Args, result any, alive bool) bool, opts ...QueryOption)

	Arguments(opts ...QueryOption) []cache.Args
	Results(opts ...QueryOption) []any
	Items(opts ...QueryOption) []Item

	// RemoveIf removes every entry for which pred returns true, in one
	// pass under the cache's guard, and returns how many were removed.
	RemoveIf(pred func(args cache.Args, result any, alive bool) bool) int
}

// Item is one cached argument set and its result.
type Item struct {
	Key    cache.Key
	Args   cache.Args
	Result any
	Alive  bool
}

// QueryOption tunes a management query.
type QueryOption func(*Query)

// Query holds resolved query options.
type Query struct {
	IncludeExpired bool
}

// IncludeExpired makes queries also report expired entries that have not
// been reaped yet.
func IncludeExpired() QueryOption {
	return func(q *Query) { q.IncludeExpired = true }
}

// ResolveQuery applies opts. The default is alive entries only.
func ResolveQuery(opts ...QueryOption) Query {
	var q Query
	for _, opt := range opts {
		if opt != nil {
			opt(&q)
		}
	}
	return q
}

// Visible reports whether an entry with the given liveness is part of the
// query's result.
func (q Query) Visible(alive bool) bool {
	return alive || q.IncludeExpired
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// NewLocker returns a mutex when threadSafe is set and a no-op otherwise.
func NewLocker(threadSafe bool) sync.Locker {
	if threadSafe {
		return &sync.Mutex{}
	}
	return nopLocker{}
}
