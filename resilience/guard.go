package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/memoize"
)

type guard struct {
	bulkhead *Bulkhead
	retry    *Retry
	timeout  time.Duration
}

// Option configures Guard.
type Option func(*guard)

// WithBulkhead limits concurrent computations.
func WithBulkhead(b *Bulkhead) Option {
	return func(g *guard) { g.bulkhead = b }
}

// WithRetry retries failed computations.
func WithRetry(r *Retry) Option {
	return func(g *guard) { g.retry = r }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(g *guard) { g.timeout = d }
}

// Guard wraps fn. The bulkhead slot is held across every retry, and each
// attempt gets its own timeout.
// A nil fn stays nil so memoize.New still reports ErrNilFunc.
func Guard(fn memoize.Func, opts ...Option) memoize.Func {
	if fn == nil {
		return nil
	}
	g := &guard{}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return func(ctx context.Context, args cache.Args) (any, error) {
		op := func(ctx context.Context) (any, error) {
			return fn(ctx, args)
		}
		if g.timeout > 0 {
			attempt := op
			op = func(ctx context.Context) (any, error) {
				return WithDeadline(ctx, g.timeout, attempt)
			}
		}
		if g.retry != nil {
			inner := op
			op = func(ctx context.Context) (any, error) {
				return g.retry.Do(ctx, inner)
			}
		}
		if g.bulkhead != nil {
			inner := op
			op = func(ctx context.Context) (any, error) {
				return g.bulkhead.Do(ctx, inner)
			}
		}
		return op(ctx)
	}
}
