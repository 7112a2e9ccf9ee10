package memoize

import (
	"context"
	"fmt"

	"github.com/jonwraymond/memoization/cache"
)

// Call invokes c with positional arguments and asserts the result to R.
// A nil result yields R's zero value.
func Call[R any](ctx context.Context, c Cache, positional ...any) (R, error) {
	var zero R
	v, err := c.Do(ctx, positional...)
	if err != nil {
		return zero, err
	}
	return As[R](v)
}

// As asserts a cached result to R.
func As[R any](v any) (R, error) {
	var zero R
	if v == nil {
		return zero, nil
	}
	r, ok := v.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrResultType, v, zero)
	}
	return r, nil
}

// Typed is a memoized single-argument function with static types.
type Typed[A, R any] struct {
	cache Cache
}

// Wrap memoizes fn on DefaultRegistry.
func Wrap[A, R any](fn func(context.Context, A) (R, error), opts ...Option) (*Typed[A, R], error) {
	return WrapWith(DefaultRegistry, fn, opts...)
}

// WrapWith memoizes fn on reg.
func WrapWith[A, R any](reg *Registry, fn func(context.Context, A) (R, error), opts ...Option) (*Typed[A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	untyped := func(ctx context.Context, args cache.Args) (any, error) {
		a, err := As[A](args.Positional[0])
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	}
	c, err := reg.New(untyped, append([]Option{WithName(funcNameOf(fn))}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Typed[A, R]{cache: c}, nil
}

// Get returns the memoized result for a.
func (t *Typed[A, R]) Get(ctx context.Context, a A) (R, error) {
	return Call[R](ctx, t.cache, a)
}

// Cache exposes the management surface.
func (t *Typed[A, R]) Cache() Cache {
	return t.cache
}
