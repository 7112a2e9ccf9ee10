package memoize

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/observe"
)

// Config is the resolved configuration of one memoized function. Factories
// receive it after validation, with defaults filled in.
type Config struct {
	// MaxSize bounds the number of cached entries when HasMaxSize is set.
	// Zero keeps statistics only.
	MaxSize    int
	HasMaxSize bool

	// TTL is the lifetime of each entry when HasTTL is set.
	TTL    time.Duration
	HasTTL bool

	// Algorithm selects the eviction algorithm. Only meaningful with a max
	// size; LRU when left unset.
	Algorithm Algorithm

	// ThreadSafe guards the instance with a mutex. Default true.
	ThreadSafe bool

	// OrderIndependent makes keyword order irrelevant to the default key.
	OrderIndependent bool

	// KeyMaker replaces the default key derivation when non-nil.
	KeyMaker cache.KeyMaker

	// Name labels logs, metrics and spans. Defaults to the function's
	// runtime name.
	Name string

	// InstanceID tells apart wrappers of the same function. Assigned by
	// the registry.
	InstanceID string

	// AlgorithmName is the registered name of Algorithm.
	AlgorithmName string

	Recorder observe.Recorder
	Logger   observe.Logger
	Clock    cache.Clock
}

// Option configures a memoized function.
type Option func(*Config)

// WithMaxSize bounds the cache to n entries. Zero keeps statistics only.
func WithMaxSize(n int) Option {
	return func(c *Config) {
		c.MaxSize = n
		c.HasMaxSize = true
	}
}

// WithTTL expires entries d after they are stored.
func WithTTL(d time.Duration) Option {
	return func(c *Config) {
		c.TTL = d
		c.HasTTL = true
	}
}

// WithAlgorithm selects the eviction algorithm of a bounded cache.
func WithAlgorithm(a Algorithm) Option {
	return func(c *Config) {
		c.Algorithm = a
	}
}

// WithThreadSafe enables or disables the per-instance mutex.
func WithThreadSafe(b bool) Option {
	return func(c *Config) {
		c.ThreadSafe = b
	}
}

// WithOrderIndependent makes f(a=1, b=2) and f(b=2, a=1) share a key.
func WithOrderIndependent(b bool) Option {
	return func(c *Config) {
		c.OrderIndependent = b
	}
}

// WithKeyMaker replaces default key derivation entirely. The maker is
// responsible for injectivity; the cache only checks that its keys are
// comparable.
func WithKeyMaker(km cache.KeyMaker) Option {
	return func(c *Config) {
		c.KeyMaker = km
	}
}

// WithName sets the name used in telemetry.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithObserver routes hit, miss, eviction and compute events to r.
func WithObserver(r observe.Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithClock replaces time.Now for TTL decisions.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

// NewConfig applies opts over the defaults. The result is not validated.
func NewConfig(opts ...Option) Config {
	cfg := Config{ThreadSafe: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks the option values a caller supplied. It does not consult
// any registry.
func (c Config) Validate() error {
	if c.HasMaxSize && c.MaxSize < 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidMaxSize, c.MaxSize)
	}
	if c.HasTTL && c.TTL <= 0 {
		return fmt.Errorf("%w, got: %s", ErrInvalidTTL, c.TTL)
	}
	if c.Algorithm != 0 {
		if !c.Algorithm.Valid() {
			return fmt.Errorf("%w, got: %d", ErrInvalidAlgorithm, uint32(c.Algorithm))
		}
		if !c.HasMaxSize {
			return fmt.Errorf("%w: %s", ErrAlgorithmWithoutMaxSize, c.Algorithm)
		}
	}
	return nil
}

// UseCustomKey reports whether a custom key maker is configured.
func (c Config) UseCustomKey() bool {
	return c.KeyMaker != nil
}

// Bounded reports whether the cache stores entries under a max size.
func (c Config) Bounded() bool {
	return c.HasMaxSize && c.MaxSize > 0
}

// StatisticsOnly reports whether the cache keeps no entries.
func (c Config) StatisticsOnly() bool {
	return c.HasMaxSize && c.MaxSize == 0
}

// StoreMaxSize translates the configuration into a cache.StoreConfig bound.
func (c Config) StoreMaxSize() int {
	if !c.HasMaxSize {
		return cache.Unbounded
	}
	return c.MaxSize
}

// FuncMeta returns the telemetry identity of the memoized function.
func (c Config) FuncMeta() observe.FuncMeta {
	return observe.FuncMeta{
		Name:       c.Name,
		InstanceID: c.InstanceID,
		Algorithm:  c.AlgorithmName,
	}
}

// withDefaults fills unset fields. fn supplies the default name.
func (c Config) withDefaults(fn Func) Config {
	if c.Algorithm == 0 {
		c.Algorithm = LRU
	}
	if c.AlgorithmName == "" {
		c.AlgorithmName = c.Algorithm.String()
	}
	if c.Name == "" {
		c.Name = funcName(fn)
	}
	if c.Recorder == nil {
		c.Recorder = observe.NopRecorder()
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if !c.HasTTL {
		c.TTL = 0
	}
	return c
}

func funcName(fn Func) string {
	if fn == nil {
		return "anonymous"
	}
	return funcNameOf(fn)
}

// funcNameOf returns the package-qualified runtime name of a func value.
func funcNameOf(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "anonymous"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// DeriveKey derives the cache key for args. A custom key maker's keys are
// checked for comparability only; their injectivity is the maker's job.
func (c Config) DeriveKey(args cache.Args) (cache.Key, error) {
	if c.KeyMaker == nil {
		return cache.MakeKey(args, c.OrderIndependent), nil
	}
	key, err := c.KeyMaker(args)
	if err != nil {
		return nil, fmt.Errorf("memoize: key maker: %w", err)
	}
	if err := cache.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("memoize: key maker: %w", err)
	}
	return key, nil
}
