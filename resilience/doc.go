// Package resilience guards the function behind a memoized cache.
//
// A memoized function only calls its underlying computation on a miss, so
// misses are where slow or flaky dependencies hurt. Guard wraps a
// memoize.Func with up to three protections:
//
//   - Bulkhead: limits how many computations run at once. memoize does not
//     deduplicate concurrent misses, so a burst of misses for one key can
//     otherwise fan out to the dependency.
//   - Retry: re-runs a failed computation with backoff. The last error is
//     returned unchanged, so failures still propagate to callers and are
//     never cached.
//   - Timeout: bounds each attempt.
//
//	fn := resilience.Guard(fetch,
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(time.Second),
//	)
//	c, err := memoize.New(fn, memoize.WithMaxSize(128))
package resilience
