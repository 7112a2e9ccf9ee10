package memoize

import (
	"fmt"
	"strconv"
	"time"
)

// CacheInfo is a point-in-time snapshot of one memoized function. It is
// built fresh on every Info call and never changes afterwards.
type CacheInfo struct {
	Hits        uint64
	Misses      uint64
	CurrentSize int

	// MaxSize is meaningful only when HasMaxSize is set.
	MaxSize    int
	HasMaxSize bool

	Algorithm Algorithm

	// TTL is zero when entries never expire.
	TTL time.Duration

	ThreadSafe       bool
	OrderIndependent bool
	UseCustomKey     bool
}

// HitRatio returns hits / (hits + misses), or 0 before the first lookup.
func (i CacheInfo) HitRatio() float64 {
	total := i.Hits + i.Misses
	if total == 0 {
		return 0
	}
	return float64(i.Hits) / float64(total)
}

func (i CacheInfo) String() string {
	maxSize := "none"
	if i.HasMaxSize {
		maxSize = strconv.Itoa(i.MaxSize)
	}
	ttl := "none"
	if i.TTL > 0 {
		ttl = i.TTL.String()
	}
	return fmt.Sprintf(
		"CacheInfo(hits=%d, misses=%d, current_size=%d, max_size=%s, algorithm=%s, ttl=%s, thread_safe=%t, order_independent=%t, use_custom_key=%t)",
		i.Hits, i.Misses, i.CurrentSize, maxSize, i.Algorithm, ttl,
		i.ThreadSafe, i.OrderIndependent, i.UseCustomKey,
	)
}

// InfoFor echoes cfg into a snapshot carrying the given live values.
// Extension caches use it to build their Info.
func InfoFor(cfg Config, hits, misses uint64, size int) CacheInfo {
	return CacheInfo{
		Hits:             hits,
		Misses:           misses,
		CurrentSize:      size,
		MaxSize:          cfg.MaxSize,
		HasMaxSize:       cfg.HasMaxSize,
		Algorithm:        cfg.Algorithm,
		TTL:              cfg.TTL,
		ThreadSafe:       cfg.ThreadSafe,
		OrderIndependent: cfg.OrderIndependent,
		UseCustomKey:     cfg.UseCustomKey(),
	}
}
