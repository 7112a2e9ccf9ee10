package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/memoization/cache"
)

func BenchmarkGuard(b *testing.B) {
	fn := Guard(func(context.Context, cache.Args) (any, error) { return 1, nil },
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: 4})),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 2})),
		WithTimeout(time.Second),
	)
	ctx := context.Background()
	args := cache.Positional(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fn(ctx, args)
	}
}

func BenchmarkBulkhead_Do(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 4})
	ctx := context.Background()
	op := func(context.Context) (any, error) { return nil, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bh.Do(ctx, op)
	}
}
