// Package tinylfu is an extension eviction algorithm for memoize backed by
// github.com/dgraph-io/ristretto.
//
// Ristretto decides admission and eviction with a TinyLFU sketch and a
// sampled LFU victim search, so the cache may refuse to store a freshly
// computed result when the cache is full of more popular entries. Expiry
// is still handled by this package, lazily, exactly like the built-in
// algorithms.
//
// The algorithm is not part of memoize.DefaultRegistry; call Register to add
// it to a registry.
package tinylfu
