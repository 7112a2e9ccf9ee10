// Package cache provides the storage layer of the memoization engine.
//
// It derives comparable keys from call arguments (Args and MakeKey), stores
// Entries with optional TTL liveness, and bounds the entry map with an
// eviction.Policy (Store). Nothing in this package is synchronized; the
// memoize package serializes access when a cache is configured thread-safe.
package cache
