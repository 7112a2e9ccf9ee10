package tinylfu

import (
	"cmp"
	"context"
	"fmt"
	"hash/maphash"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/memoize"
	"github.com/jonwraymond/memoization/observe"
)

// Algorithm is the registry flag of this extension.
const Algorithm memoize.Algorithm = 1 << 3

// Name is the display name used in telemetry.
const Name = "TinyLFU"

// Register adds the algorithm to reg.
func Register(reg *memoize.Registry) error {
	return reg.Register(Algorithm, Name, New)
}

var (
	keySeed      = maphash.MakeSeed()
	conflictSeed = maphash.MakeSeed()
)

// keyToHash hashes any comparable cache key for ristretto. The default
// ristretto hasher only understands strings, byte slices and integers.
func keyToHash(key any) (uint64, uint64) {
	return maphash.Comparable(keySeed, key), maphash.Comparable(conflictSeed, key)
}

type entry struct {
	seq       uint64
	key       cache.Key
	args      cache.Args
	value     any
	expiresAt time.Time
}

func (e *entry) alive(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// Cache is a memoize.Cache whose entries live in a ristretto cache.
//
// The instance is always internally synchronized because ristretto reports
// evictions from its own goroutine; Config.ThreadSafe is only echoed.
type Cache struct {
	fn  memoize.Func
	cfg memoize.Config
	rc  *ristretto.Cache

	mu     sync.Mutex
	index  map[cache.Key]*entry
	seq    uint64
	hits   uint64
	misses uint64

	meta observe.FuncMeta
	rec  observe.Recorder
	log  observe.Logger
}

// New is the memoize.Factory for Algorithm.
func New(fn memoize.Func, cfg memoize.Config) (memoize.Cache, error) {
	if fn == nil {
		return nil, memoize.ErrNilFunc
	}
	if cfg.MaxSize <= 0 {
		return nil, fmt.Errorf("%w, got: %d", memoize.ErrInvalidMaxSize, cfg.MaxSize)
	}

	if cfg.Recorder == nil {
		cfg.Recorder = observe.NopRecorder()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	meta := cfg.FuncMeta()
	c := &Cache{
		fn:    fn,
		cfg:   cfg,
		index: make(map[cache.Key]*entry),
		meta:  meta,
		rec:   cfg.Recorder,
		log:   cfg.Logger.WithFunc(meta),
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        max(int64(cfg.MaxSize)*10, 100),
		MaxCost:            int64(cfg.MaxSize),
		BufferItems:        64,
		KeyToHash:          keyToHash,
		IgnoreInternalCost: true,
		OnEvict:            c.onEvict,
		OnReject:           c.onReject,
	})
	if err != nil {
		return nil, fmt.Errorf("tinylfu: create ristretto cache: %w", err)
	}
	c.rc = rc
	return c, nil
}

// Close stops ristretto's background goroutine. The cache must not be used
// afterwards.
func (c *Cache) Close() {
	c.rc.Close()
}

func (c *Cache) Call(ctx context.Context, args cache.Args) (any, error) {
	key, err := c.cfg.DeriveKey(args)
	if err != nil {
		return nil, err
	}

	// Get also feeds the admission sketch on misses.
	if v, ok := c.rc.Get(key); ok {
		e := v.(*entry)
		if e.alive(c.cfg.Clock()) {
			c.mu.Lock()
			c.hits++
			c.mu.Unlock()
			c.rec.Hit(ctx, c.meta)
			c.log.Debug(ctx, "cache hit", observe.Field{Key: "args", Value: args.String()})
			return e.value, nil
		}
		if c.unindex(e) {
			c.rc.Del(key)
			c.rec.Evicted(ctx, c.meta, observe.EvictExpired)
			c.log.Debug(ctx, "expired entry reaped")
		}
	}

	value, err := c.rec.Compute(ctx, c.meta, func(ctx context.Context) (any, error) {
		return c.fn(ctx, args)
	})
	if err != nil {
		c.log.Error(ctx, "underlying function failed", observe.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	now := c.cfg.Clock()
	e := &entry{key: key, args: args.Clone(), value: value}
	if c.cfg.TTL > 0 {
		e.expiresAt = now.Add(c.cfg.TTL)
	}

	c.mu.Lock()
	c.seq++
	e.seq = c.seq
	c.index[key] = e
	c.misses++
	c.mu.Unlock()

	if !c.rc.Set(key, e, 1) {
		c.unindex(e)
		c.log.Debug(ctx, "set dropped by ristretto")
	}
	// Apply the set, and any evictions it causes, before returning.
	c.rc.Wait()

	c.rec.Miss(ctx, c.meta)
	return value, nil
}

func (c *Cache) Do(ctx context.Context, positional ...any) (any, error) {
	return c.Call(ctx, cache.Positional(positional...))
}

func (c *Cache) onEvict(item *ristretto.Item) {
	e, ok := item.Value.(*entry)
	if !ok || !c.unindex(e) {
		return
	}
	c.rec.Evicted(context.Background(), c.meta, observe.EvictCapacity)
	c.log.Debug(context.Background(), "entry evicted")
}

func (c *Cache) onReject(item *ristretto.Item) {
	e, ok := item.Value.(*entry)
	if !ok || !c.unindex(e) {
		return
	}
	c.log.Debug(context.Background(), "admission rejected")
}

// unindex removes e if it is still the indexed entry for its key.
func (c *Cache) unindex(e *entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.index[e.key]; ok && cur == e {
		delete(c.index, e.key)
		return true
	}
	return false
}

func (c *Cache) Info() memoize.CacheInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return memoize.InfoFor(c.cfg, c.hits, c.misses, len(c.index))
}

// Clear drops every entry and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.index = make(map[cache.Key]*entry)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()

	// Ristretto reports cleared items through OnEvict; none match the new
	// index, so nothing is counted as evicted.
	c.rc.Clear()
}

func (c *Cache) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index) == 0
}

func (c *Cache) IsFull() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index) >= c.cfg.MaxSize
}

func (c *Cache) ContainsArgs(args cache.Args, opts ...memoize.QueryOption) bool {
	key, err := c.cfg.DeriveKey(args)
	if err != nil {
		return false
	}
	return c.ContainsKey(key, opts...)
}

func (c *Cache) ContainsKey(key cache.Key, opts ...memoize.QueryOption) bool {
	if cache.ValidateKey(key) != nil {
		return false
	}
	q := memoize.ResolveQuery(opts...)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.index[key]
	return ok && q.Visible(e.alive(c.cfg.Clock()))
}

func (c *Cache) ContainsResult(result any, opts ...memoize.QueryOption) bool {
	for _, it := range c.Items(opts...) {
		if reflect.DeepEqual(it.Result, result) {
			return true
		}
	}
	return false
}

func (c *Cache) ForEach(fn func(args cache.Args, result any, alive bool) bool, opts ...memoize.QueryOption) {
	for _, it := range c.Items(opts...) {
		if !fn(it.Args, it.Result, it.Alive) {
			return
		}
	}
}

func (c *Cache) Arguments(opts ...memoize.QueryOption) []cache.Args {
	items := c.Items(opts...)
	out := make([]cache.Args, len(items))
	for i, it := range items {
		out[i] = it.Args
	}
	return out
}

func (c *Cache) Results(opts ...memoize.QueryOption) []any {
	items := c.Items(opts...)
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.Result
	}
	return out
}

// Items returns entries in insertion order. Ristretto does not expose its
// eviction order.
func (c *Cache) Items(opts ...memoize.QueryOption) []memoize.Item {
	q := memoize.ResolveQuery(opts...)
	c.mu.Lock()
	now := c.cfg.Clock()
	entries := make([]*entry, 0, len(c.index))
	for _, e := range c.index {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	items := make([]memoize.Item, 0, len(entries))
	for _, e := range entries {
		alive := e.alive(now)
		if q.Visible(alive) {
			items = append(items, memoize.Item{Key: e.key, Args: e.args.Clone(), Result: e.value, Alive: alive})
		}
	}
	return items
}

// RemoveIf evaluates pred under the lock and deletes from ristretto after
// releasing it.
func (c *Cache) RemoveIf(pred func(args cache.Args, result any, alive bool) bool) int {
	if pred == nil {
		return 0
	}
	c.mu.Lock()
	now := c.cfg.Clock()
	var doomed []cache.Key
	for key, e := range c.index {
		if pred(e.args.Clone(), e.value, e.alive(now)) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		delete(c.index, key)
	}
	c.mu.Unlock()

	for _, key := range doomed {
		c.rc.Del(key)
	}
	if len(doomed) > 0 {
		c.rc.Wait()
	}
	return len(doomed)
}

var _ memoize.Cache = (*Cache)(nil)
