package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/memoization/memoize"
)

// InfoSource reports the statistics of one memoized function.
// Every memoize.Cache satisfies it.
type InfoSource interface {
	Info() memoize.CacheInfo
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// MinHitRatio is the hit ratio below which the cache is degraded.
	// Zero disables the ratio check.
	MinHitRatio float64

	// MinCalls is the number of lookups required before the ratio is judged.
	// Default: 100
	MinCalls uint64

	// WarnWhenFull reports a bounded cache at capacity as degraded.
	WarnWhenFull bool
}

// CacheChecker checks the effectiveness of a memoized function.
type CacheChecker struct {
	name   string
	src    InfoSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a checker over src.
func NewCacheChecker(name string, src InfoSource, config CacheCheckerConfig) *CacheChecker {
	if config.MinCalls == 0 {
		config.MinCalls = 100
	}
	if config.MinHitRatio < 0 {
		config.MinHitRatio = 0
	}
	return &CacheChecker{name: name, src: src, config: config}
}

func (c *CacheChecker) Name() string {
	return c.name
}

// Check reads a CacheInfo snapshot and judges it against the config.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}
	if c.src == nil {
		return Unhealthy("no info source", ErrNilSource)
	}

	info := c.src.Info()
	details := InfoDetails(info)
	calls := info.Hits + info.Misses

	var problems []string
	if c.config.MinHitRatio > 0 && calls >= c.config.MinCalls && info.HitRatio() < c.config.MinHitRatio {
		problems = append(problems, fmt.Sprintf("hit ratio %.2f below %.2f", info.HitRatio(), c.config.MinHitRatio))
	}
	if c.config.WarnWhenFull && info.HasMaxSize && info.MaxSize > 0 && info.CurrentSize >= info.MaxSize {
		problems = append(problems, fmt.Sprintf("cache full at %d entries", info.CurrentSize))
	}
	if len(problems) > 0 {
		return Degraded(strings.Join(problems, "; ")).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("hit ratio %.2f over %d calls", info.HitRatio(), calls)).WithDetails(details)
}

// InfoDetails flattens info into result details.
func InfoDetails(info memoize.CacheInfo) map[string]any {
	details := map[string]any{
		"hits":              info.Hits,
		"misses":            info.Misses,
		"hit_ratio":         info.HitRatio(),
		"current_size":      info.CurrentSize,
		"algorithm":         info.Algorithm.String(),
		"thread_safe":       info.ThreadSafe,
		"order_independent": info.OrderIndependent,
		"use_custom_key":    info.UseCustomKey,
	}
	if info.HasMaxSize {
		details["max_size"] = info.MaxSize
	}
	if info.TTL > 0 {
		details["ttl"] = info.TTL.String()
	}
	return details
}
