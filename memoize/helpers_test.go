package memoize

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/observe"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingSquare returns x*x for an int first argument and counts calls.
type countingSquare struct {
	calls atomic.Int64
}

func (s *countingSquare) fn(_ context.Context, args cache.Args) (any, error) {
	s.calls.Add(1)
	x := args.Positional[0].(int)
	return x * x, nil
}

func mustNew(t *testing.T, fn Func, opts ...Option) Cache {
	t.Helper()
	c, err := NewDefaultRegistry().New(fn, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func mustDo(t *testing.T, c Cache, positional ...any) any {
	t.Helper()
	v, err := c.Do(context.Background(), positional...)
	if err != nil {
		t.Fatalf("Do(%v) error = %v", positional, err)
	}
	return v
}

// fakeRecorder counts Recorder events.
type fakeRecorder struct {
	mu        sync.Mutex
	hits      int
	misses    int
	computes  int
	evictions map[observe.EvictReason]int
	metas     []observe.FuncMeta
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{evictions: make(map[observe.EvictReason]int)}
}

func (r *fakeRecorder) Compute(ctx context.Context, meta observe.FuncMeta, fn observe.ComputeFunc) (any, error) {
	r.mu.Lock()
	r.computes++
	r.metas = append(r.metas, meta)
	r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeRecorder) Hit(context.Context, observe.FuncMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *fakeRecorder) Miss(context.Context, observe.FuncMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *fakeRecorder) Evicted(_ context.Context, _ observe.FuncMeta, reason observe.EvictReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictions[reason]++
}

func positionalInts(items []Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.Args.Positional[0].(int))
	}
	return out
}
