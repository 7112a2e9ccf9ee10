package memoize

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/memoization/cache"
)

func TestMemoized_ConcurrentCallsKeepInvariants(t *testing.T) {
	const (
		workers  = 8
		perGroup = 500
		maxSize  = 5
	)
	for _, alg := range []Algorithm{FIFO, LRU, LFU} {
		t.Run(alg.String(), func(t *testing.T) {
			sq := &countingSquare{}
			c := mustNew(t, sq.fn, WithMaxSize(maxSize), WithAlgorithm(alg), WithTTL(time.Hour))

			g, ctx := errgroup.WithContext(context.Background())
			for w := 0; w < workers; w++ {
				g.Go(func() error {
					for i := 0; i < perGroup; i++ {
						x := (w*31 + i) % 13
						v, err := c.Do(ctx, x)
						if err != nil {
							return err
						}
						if v != x*x {
							t.Errorf("square(%d) = %v", x, v)
						}
						if i%50 == 0 {
							_ = c.Items()
							_ = c.ContainsResult(x * x)
						}
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				t.Fatalf("worker error = %v", err)
			}

			info := c.Info()
			if info.Hits+info.Misses != workers*perGroup {
				t.Errorf("hits+misses = %d, want %d", info.Hits+info.Misses, workers*perGroup)
			}
			if info.CurrentSize > maxSize {
				t.Errorf("CurrentSize = %d exceeds %d", info.CurrentSize, maxSize)
			}
			// Every computation is stored and counted as one miss.
			if got := uint64(sq.calls.Load()); got != info.Misses {
				t.Errorf("underlying calls = %d, misses = %d", got, info.Misses)
			}
		})
	}
}

func TestMemoized_LockNotHeldDuringCompute(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	fn := func(_ context.Context, args cache.Args) (any, error) {
		if args.Positional[0] == "slow" {
			once.Do(func() { close(started) })
			<-release
		}
		return args.Positional[0], nil
	}
	c := mustNew(t, fn, WithMaxSize(4))

	var g errgroup.Group
	g.Go(func() error {
		_, err := c.Do(context.Background(), "slow")
		return err
	})

	<-started
	// The slow call is in flight; other keys and management calls proceed.
	if v := mustDo(t, c, "fast"); v != "fast" {
		t.Errorf("Do(fast) = %v", v)
	}
	if !c.ContainsArgs(cache.Positional("fast")) {
		t.Error("fast result should be cached while slow is computing")
	}
	close(release)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestMemoized_NoSingleFlight(t *testing.T) {
	var calls atomic.Int64
	gate := make(chan struct{})
	var arrived sync.WaitGroup
	arrived.Add(2)
	fn := func(context.Context, cache.Args) (any, error) {
		calls.Add(1)
		arrived.Done()
		<-gate
		return 1, nil
	}
	c := mustNew(t, fn, WithMaxSize(2))

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := c.Do(context.Background(), "same")
			return err
		})
	}
	arrived.Wait()
	close(gate)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 2 {
		t.Errorf("underlying calls = %d, want both racers to compute", calls.Load())
	}
	info := c.Info()
	if info.Misses != 2 || info.CurrentSize != 1 {
		t.Errorf("Info() = %s, want misses=2 current_size=1 (last insert wins)", info)
	}
}
