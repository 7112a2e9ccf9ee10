// Package memoize caches the results of deterministic functions.
//
// A memoized function is created with New (or Registry.New) from a Func and
// a set of Options. Every call derives a Key from its arguments, answers from
// the cache when a live entry exists and otherwise runs the function and
// stores the result, evicting one entry under the configured Algorithm when
// the cache grows past its maximum size.
//
// # Modes
//
//   - WithMaxSize(n) with n > 0: bounded cache using FIFO, LRU (default) or
//     LFU eviction, or any Algorithm registered as an extension.
//   - WithMaxSize(0): statistics only. Nothing is stored; every call counts
//     as a miss.
//   - no max size: unbounded cache that never evicts.
//
// # Concurrency
//
// By default every instance owns one mutex guarding its store, eviction
// policy and statistics. The mutex is never held while the underlying
// function runs, so two goroutines that miss on the same key both compute
// and the last insert wins. WithThreadSafe(false) removes the mutex
// entirely; the caller must then serialize all use of the instance.
//
// # Expiry
//
// Entries created with a TTL are checked lazily. An expired entry keeps its
// capacity slot until a lookup reaps it or the policy evicts it, so
// CacheInfo.CurrentSize may count entries that are no longer alive.
package memoize
