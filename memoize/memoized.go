package memoize

import (
	"context"
	"reflect"
	"sync"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/eviction"
	"github.com/jonwraymond/memoization/observe"
)

// Memoized is the built-in Cache. It composes one cache.Store with one
// eviction policy and guards both, plus statistics, with a single lock.
type Memoized struct {
	fn    Func
	cfg   Config
	mu    sync.Locker
	store *cache.Store
	stats stats

	meta observe.FuncMeta
	rec  observe.Recorder
	log  observe.Logger
}

// newMemoized builds a cache for an already validated and defaulted cfg.
// Unbounded and statistics-only caches keep FIFO order and never evict.
func newMemoized(fn Func, cfg Config) (*Memoized, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	typ := eviction.FIFO
	if cfg.Bounded() {
		t, err := cfg.Algorithm.evictionType()
		if err != nil {
			return nil, err
		}
		typ = t
	}
	policy, err := eviction.New[cache.Key](typ)
	if err != nil {
		return nil, err
	}

	meta := cfg.FuncMeta()
	return &Memoized{
		fn:  fn,
		cfg: cfg,
		mu:  NewLocker(cfg.ThreadSafe),
		store: cache.NewStore(cache.StoreConfig{
			MaxSize: cfg.StoreMaxSize(),
			TTL:     cfg.TTL,
			Policy:  policy,
			Clock:   cfg.Clock,
		}),
		meta: meta,
		rec:  cfg.Recorder,
		log:  cfg.Logger.WithFunc(meta),
	}, nil
}

// builtinFactory is the Factory registered for FIFO, LRU and LFU.
func builtinFactory(fn Func, cfg Config) (Cache, error) {
	return newMemoized(fn, cfg)
}

// Call returns the cached result for args or computes, stores and returns
// it. The lock is released while the underlying function runs.
func (m *Memoized) Call(ctx context.Context, args cache.Args) (any, error) {
	key, err := m.cfg.DeriveKey(args)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	res := m.store.Lookup(key)
	if res.Found {
		m.stats.hit()
		value := res.Entry.Value
		m.mu.Unlock()

		m.rec.Hit(ctx, m.meta)
		m.log.Debug(ctx, "cache hit", observe.Field{Key: "args", Value: args.String()})
		return value, nil
	}
	m.mu.Unlock()

	if res.Reaped {
		m.rec.Evicted(ctx, m.meta, observe.EvictExpired)
		m.log.Debug(ctx, "expired entry reaped")
	}

	value, err := m.rec.Compute(ctx, m.meta, func(ctx context.Context) (any, error) {
		return m.fn(ctx, args)
	})
	if err != nil {
		m.log.Error(ctx, "underlying function failed", observe.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	m.mu.Lock()
	victim, evicted := m.store.Insert(key, args.Clone(), value)
	m.stats.miss()
	size := m.store.Len()
	m.mu.Unlock()

	m.rec.Miss(ctx, m.meta)
	m.log.Debug(ctx, "cache miss", observe.Field{Key: "size", Value: size})
	if evicted {
		m.rec.Evicted(ctx, m.meta, observe.EvictCapacity)
		m.log.Debug(ctx, "entry evicted", observe.Field{Key: "rendered_key", Value: cache.IsRendered(victim)})
	}
	return value, nil
}

// Do calls with positional arguments only.
func (m *Memoized) Do(ctx context.Context, positional ...any) (any, error) {
	return m.Call(ctx, cache.Positional(positional...))
}

// Info returns a fresh snapshot.
func (m *Memoized) Info() CacheInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return InfoFor(m.cfg, m.stats.hits, m.stats.misses, m.store.Len())
}

// Clear empties the store and resets statistics. Configuration is kept.
func (m *Memoized) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Clear()
	m.stats.reset()
}

func (m *Memoized) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.IsEmpty()
}

// IsFull reports whether a bounded cache holds max size entries, expired
// ones included. A statistics-only cache is always full.
func (m *Memoized) IsFull() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.IsFull()
}

func (m *Memoized) ContainsArgs(args cache.Args, opts ...QueryOption) bool {
	key, err := m.cfg.DeriveKey(args)
	if err != nil {
		return false
	}
	return m.ContainsKey(key, opts...)
}

func (m *Memoized) ContainsKey(key cache.Key, opts ...QueryOption) bool {
	if cache.ValidateKey(key) != nil {
		return false
	}
	q := ResolveQuery(opts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store.Peek(key)
	return ok && q.Visible(e.IsAlive(m.cfg.Clock()))
}

func (m *Memoized) ContainsResult(result any, opts ...QueryOption) bool {
	found := false
	m.ForEach(func(_ cache.Args, r any, _ bool) bool {
		if reflect.DeepEqual(r, result) {
			found = true
			return false
		}
		return true
	}, opts...)
	return found
}

// ForEach visits a snapshot taken under the lock, so fn may call back into
// the cache.
func (m *Memoized) ForEach(fn func(args cache.Args, result any, alive bool) bool, opts ...QueryOption) {
	for _, it := range m.Items(opts...) {
		if !fn(it.Args, it.Result, it.Alive) {
			return
		}
	}
}

func (m *Memoized) Arguments(opts ...QueryOption) []cache.Args {
	items := m.Items(opts...)
	out := make([]cache.Args, len(items))
	for i, it := range items {
		out[i] = it.Args
	}
	return out
}

func (m *Memoized) Results(opts ...QueryOption) []any {
	items := m.Items(opts...)
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.Result
	}
	return out
}

// Items returns entries in eviction order, next victim first.
func (m *Memoized) Items(opts ...QueryOption) []Item {
	q := ResolveQuery(opts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]Item, 0, m.store.Len())
	m.store.ForEach(func(e *cache.Entry, alive bool) bool {
		if q.Visible(alive) {
			items = append(items, Item{Key: e.Key, Args: e.Args.Clone(), Result: e.Value, Alive: alive})
		}
		return true
	})
	return items
}

// RemoveIf runs pred under the lock; pred must not call back into m.
func (m *Memoized) RemoveIf(pred func(args cache.Args, result any, alive bool) bool) int {
	if pred == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.RemoveIf(func(e *cache.Entry, alive bool) bool {
		return pred(e.Args.Clone(), e.Value, alive)
	})
}

var _ Cache = (*Memoized)(nil)
