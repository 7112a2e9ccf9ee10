package memoize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/memoization/cache"
)

// relabeled reports a different algorithm than the cache it wraps.
type relabeled struct {
	Cache
	alg Algorithm
}

func (r relabeled) Info() CacheInfo {
	info := r.Cache.Info()
	info.Algorithm = r.alg
	return info
}

// lruExtension serves any algorithm id by delegating to the built-in LRU.
func lruExtension(fn Func, cfg Config) (Cache, error) {
	inner := cfg
	inner.Algorithm = LRU
	c, err := newMemoized(fn, inner)
	if err != nil {
		return nil, err
	}
	return relabeled{Cache: c, alg: cfg.Algorithm}, nil
}

func TestValidate_Builtins(t *testing.T) {
	r := NewDefaultRegistry()
	for _, alg := range r.Algorithms() {
		if err := Validate(r, alg); err != nil {
			t.Errorf("Validate(%s) error = %v", alg, err)
		}
	}
}

func TestValidate_GoodExtension(t *testing.T) {
	r := NewDefaultRegistry()
	r.MustRegister(fakeAlgorithm, "fake", lruExtension)
	if err := ValidateExtensions(r); err != nil {
		t.Errorf("ValidateExtensions() error = %v", err)
	}
}

func TestValidate_ReportsViolations(t *testing.T) {
	r := NewRegistry()
	// Delegating without relabeling echoes the wrong algorithm.
	r.MustRegister(fakeAlgorithm, "liar", func(fn Func, cfg Config) (Cache, error) {
		inner := cfg
		inner.Algorithm = LRU
		return newMemoized(fn, inner)
	})

	err := Validate(r, fakeAlgorithm)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Validate() error = %v, want ErrContractViolation", err)
	}
	if !strings.Contains(err.Error(), "liar") || !strings.Contains(err.Error(), "Algorithm") {
		t.Errorf("error should name the extension and the field: %v", err)
	}
}

type panickyCache struct {
	Cache
}

func (panickyCache) Items(...QueryOption) []Item { panic("not implemented") }

func TestValidate_RecoversPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fakeAlgorithm, "panicky", func(fn Func, cfg Config) (Cache, error) {
		c, err := lruExtension(fn, cfg)
		return panickyCache{Cache: c}, err
	})

	err := Validate(r, fakeAlgorithm)
	if !errors.Is(err, ErrContractViolation) || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("Validate() error = %v, want a recovered panic", err)
	}
}

func TestValidate_FactoryFailures(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.MustRegister(1<<4, "failing", func(Func, Config) (Cache, error) { return nil, boom })
	r.MustRegister(1<<5, "nil", func(Func, Config) (Cache, error) { return nil, nil })

	for _, alg := range []Algorithm{1 << 4, 1 << 5} {
		if err := Validate(r, alg); !errors.Is(err, ErrContractViolation) {
			t.Errorf("Validate(%s) error = %v", alg, err)
		}
	}
	if err := Validate(r, 1<<6); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Validate(unregistered) error = %v", err)
	}
}

func TestValidateExtensions_NoneRegistered(t *testing.T) {
	if err := ValidateExtensions(NewDefaultRegistry()); !errors.Is(err, ErrNoExtensions) {
		t.Errorf("ValidateExtensions() error = %v, want ErrNoExtensions", err)
	}
}

func TestValidate_ProbeIsIdentity(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fakeAlgorithm, "doubling", func(fn Func, cfg Config) (Cache, error) {
		c, err := lruExtension(func(ctx context.Context, args cache.Args) (any, error) {
			v, err := fn(ctx, args)
			return v.(int) * 2, err
		}, cfg)
		return c, err
	})
	err := Validate(r, fakeAlgorithm)
	if !errors.Is(err, ErrContractViolation) || !strings.Contains(err.Error(), "Do(1)") {
		t.Errorf("Validate() error = %v, want a result mismatch", err)
	}
}
