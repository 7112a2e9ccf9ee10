package memoize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/memoization/cache"
)

const (
	checkMaxSize = 5
	checkTTL     = 500 * time.Millisecond
)

// Validate exercises the factory registered for alg against the Cache
// contract and reports every violation found, joined. It checks behavior
// that any algorithm must share: echoed configuration, statistics,
// results passed through unchanged and a working management surface. It
// does not check eviction order.
func Validate(reg *Registry, alg Algorithm) error {
	if reg == nil {
		reg = DefaultRegistry
	}
	factory, ok := reg.Lookup(alg)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}

	identity := func(_ context.Context, args cache.Args) (any, error) {
		return args.Positional[0], nil
	}
	epoch := time.Unix(0, 0)
	cfg := NewConfig(
		WithMaxSize(checkMaxSize),
		WithTTL(checkTTL),
		WithAlgorithm(alg),
		WithThreadSafe(true),
		WithName("memoize.validate"),
		WithClock(func() time.Time { return epoch }),
	).withDefaults(identity)
	cfg.InstanceID = uuid.NewString()
	cfg.AlgorithmName = reg.Name(alg)

	v := &validation{name: cfg.AlgorithmName}
	c, err := factory(identity, cfg)
	if err != nil {
		v.fail("factory returned error: %v", err)
		return v.err()
	}
	if c == nil {
		v.fail("factory returned a nil cache")
		return v.err()
	}
	if closer, ok := c.(interface{ Close() }); ok {
		defer closer.Close()
	}

	ctx := context.Background()
	for x := 0; x < checkMaxSize; x++ {
		v.guard("Do", func() {
			got, err := c.Do(ctx, x)
			if err != nil {
				v.fail("Do(%d) error = %v", x, err)
			} else if got != x {
				v.fail("Do(%d) = %v, want %d", x, got, x)
			}
		})
	}

	v.guard("Info", func() {
		info := c.Info()
		if info.Algorithm != alg {
			v.fail("Info().Algorithm = %s, want %s", info.Algorithm, alg)
		}
		if !info.HasMaxSize || info.MaxSize != checkMaxSize {
			v.fail("Info().MaxSize = %d (set %t), want %d", info.MaxSize, info.HasMaxSize, checkMaxSize)
		}
		if info.TTL != checkTTL {
			v.fail("Info().TTL = %s, want %s", info.TTL, checkTTL)
		}
		if !info.ThreadSafe {
			v.fail("Info().ThreadSafe = false, want true")
		}
		if info.Hits != 0 || info.Misses != checkMaxSize {
			v.fail("Info() hits/misses = %d/%d, want 0/%d", info.Hits, info.Misses, checkMaxSize)
		}
		if info.CurrentSize < 0 || info.CurrentSize > checkMaxSize {
			v.fail("Info().CurrentSize = %d, want within [0, %d]", info.CurrentSize, checkMaxSize)
		}
	})

	v.guard("Call", func() {
		got, err := c.Call(ctx, cache.Positional(0))
		if err != nil || got != 0 {
			v.fail("Call(0) = %v, %v; want 0, nil", got, err)
		}
		if info := c.Info(); info.Hits+info.Misses != checkMaxSize+1 {
			v.fail("Info() hits+misses = %d, want %d", info.Hits+info.Misses, checkMaxSize+1)
		}
	})

	v.guard("management", func() {
		size := c.Info().CurrentSize
		if got := len(c.Items()); got > size {
			v.fail("len(Items()) = %d, exceeds CurrentSize %d", got, size)
		}
		if len(c.Arguments()) != len(c.Results()) {
			v.fail("Arguments and Results disagree on length")
		}
		if size > 0 && c.IsEmpty() {
			v.fail("IsEmpty() = true with CurrentSize %d", size)
		}
		_ = c.IsFull()
		_ = c.ContainsArgs(cache.Positional(0))
		_ = c.ContainsResult(0, IncludeExpired())
		c.ForEach(func(cache.Args, any, bool) bool { return true })
		if n := c.RemoveIf(func(cache.Args, any, bool) bool { return false }); n != 0 {
			v.fail("RemoveIf(never) = %d, want 0", n)
		}
	})

	v.guard("Clear", func() {
		c.Clear()
		c.Clear()
		info := c.Info()
		if info.Hits != 0 || info.Misses != 0 || info.CurrentSize != 0 {
			v.fail("after Clear, Info() = %s", info)
		}
		if !c.IsEmpty() {
			v.fail("after Clear, IsEmpty() = false")
		}
		if info.Algorithm != alg || info.MaxSize != checkMaxSize {
			v.fail("Clear changed configuration: %s", info)
		}
	})

	return v.err()
}

// ValidateExtensions runs Validate for every registered algorithm that is
// not built in.
func ValidateExtensions(reg *Registry) error {
	if reg == nil {
		reg = DefaultRegistry
	}
	var errs []error
	found := false
	for _, alg := range reg.Algorithms() {
		if alg.In(Builtin) {
			continue
		}
		found = true
		errs = append(errs, Validate(reg, alg))
	}
	if !found {
		return ErrNoExtensions
	}
	return errors.Join(errs...)
}

type validation struct {
	name string
	errs []error
}

func (v *validation) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: %s: %s", ErrContractViolation, v.name, fmt.Sprintf(format, args...)))
}

// guard turns a panic inside step into a violation.
func (v *validation) guard(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			v.fail("%s panicked: %v", step, r)
		}
	}()
	fn()
}

func (v *validation) err() error {
	return errors.Join(v.errs...)
}
