// Package observe provides observability primitives for memoized functions.
//
// It wires OpenTelemetry tracing and metrics plus a JSON structured logger
// behind a single Observer, and turns them into a Recorder that the memoize
// package calls on every hit, miss, eviction and underlying computation.
// Nothing here executes or caches anything on its own.
package observe
