// Package health reports whether memoized functions are serving well.
//
// A Checker reports a Status: Healthy, Degraded or Unhealthy. CacheChecker
// turns a memoize.CacheInfo snapshot into a Status using a minimum hit ratio
// and an optional full-cache warning.
//
//	checker := health.NewCacheChecker("square", sq, health.CacheCheckerConfig{
//	    MinHitRatio:  0.5,
//	    MinCalls:     100,
//	    WarnWhenFull: true,
//	})
//
// Aggregator combines checkers and computes an overall status:
//
//	agg := health.NewAggregator()
//	agg.Register("square", checker)
//	overall := agg.OverallStatus(agg.CheckAll(ctx))
//
// # HTTP Endpoints
//
// RegisterHandlers mounts liveness, readiness and detailed probes:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// CacheInfoHandler serves the statistics of named caches as JSON.
package health
