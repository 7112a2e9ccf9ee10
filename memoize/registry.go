package memoize

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Factory builds a Cache for one algorithm. cfg is validated and carries
// defaults; cfg.MaxSize is always positive.
type Factory func(fn Func, cfg Config) (Cache, error)

type registration struct {
	name    string
	factory Factory
}

// Registry maps algorithm identifiers to factories.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Identity: each algorithm is registered at most once.
type Registry struct {
	mu      sync.RWMutex
	entries map[Algorithm]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Algorithm]registration)}
}

// NewDefaultRegistry creates a registry holding FIFO, LRU and LFU.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, alg := range []Algorithm{FIFO, LRU, LFU} {
		r.MustRegister(alg, alg.String(), builtinFactory)
	}
	return r
}

// DefaultRegistry is used by New and Register.
var DefaultRegistry = NewDefaultRegistry()

// Register adds a factory for alg under a display name.
func (r *Registry) Register(alg Algorithm, name string, f Factory) error {
	if !alg.Valid() {
		return fmt.Errorf("%w, got: %d", ErrInvalidAlgorithm, uint32(alg))
	}
	if f == nil {
		return ErrNilFactory
	}
	if name == "" {
		name = alg.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[alg]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAlgorithm, alg)
	}
	r.entries[alg] = registration{name: name, factory: f}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(alg Algorithm, name string, f Factory) {
	if err := r.Register(alg, name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered for alg.
func (r *Registry) Lookup(alg Algorithm) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[alg]
	return reg.factory, ok
}

// Name returns the display name registered for alg, or alg.String().
func (r *Registry) Name(alg Algorithm) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg, ok := r.entries[alg]; ok {
		return reg.name
	}
	return alg.String()
}

// Algorithms returns the registered identifiers in ascending order.
func (r *Registry) Algorithms() []Algorithm {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Algorithm, 0, len(r.entries))
	for alg := range r.entries {
		out = append(out, alg)
	}
	slices.Sort(out)
	return out
}

// New validates opts and builds a memoized fn. Bounded caches come from
// the algorithm's factory; statistics-only and unbounded caches are built
// in.
func (r *Registry) New(fn Func, opts ...Option) (Cache, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults(fn)
	cfg.InstanceID = uuid.NewString()

	var factory Factory
	if cfg.HasMaxSize {
		f, ok := r.Lookup(cfg.Algorithm)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, cfg.Algorithm)
		}
		factory = f
		cfg.AlgorithmName = r.Name(cfg.Algorithm)
	}

	if !cfg.Bounded() {
		return newMemoized(fn, cfg)
	}

	c, err := factory(fn, cfg)
	if err != nil {
		return nil, fmt.Errorf("memoize: %s factory: %w", cfg.AlgorithmName, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilCache, cfg.AlgorithmName)
	}
	return c, nil
}

// New memoizes fn using DefaultRegistry.
func New(fn Func, opts ...Option) (Cache, error) {
	return DefaultRegistry.New(fn, opts...)
}

// Register adds a factory to DefaultRegistry.
func Register(alg Algorithm, name string, f Factory) error {
	return DefaultRegistry.Register(alg, name, f)
}
