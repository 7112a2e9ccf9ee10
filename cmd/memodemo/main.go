// Command memodemo exercises the memoization engine: it runs the square
// scenario, drives a concurrent workload over a chosen algorithm and, with
// -addr set, serves Prometheus metrics, health probes and cache statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/memoization/cache"
	"github.com/jonwraymond/memoization/health"
	"github.com/jonwraymond/memoization/memoize"
	"github.com/jonwraymond/memoization/observe"
	"github.com/jonwraymond/memoization/resilience"
	"github.com/jonwraymond/memoization/tinylfu"
)

var (
	addr      = flag.String("addr", "", "Listen address for /metrics and health probes; empty exits after the run")
	algorithm = flag.String("algorithm", "LRU", "Eviction algorithm for the load: FIFO, LRU, LFU or TinyLFU")
	maxSize   = flag.Int("size", 64, "Max entries for the load cache")
	ttl       = flag.Duration("ttl", 0, "Entry TTL for the load cache; 0 never expires")
	workers   = flag.Int("c", 8, "Number of concurrent workers")
	calls     = flag.Int("n", 10000, "Calls per worker")
	keys      = flag.Int("keys", 256, "Distinct arguments drawn by workers")
	work      = flag.Duration("work", 50*time.Microsecond, "Simulated cost of one computation")
	timeout   = flag.Duration("timeout", time.Second, "Per-attempt timeout of one computation")
	retries   = flag.Int("retries", 2, "Attempts per computation, including the first")
	inflight  = flag.Int("inflight", 4, "Computations allowed to run at once")
	logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn or error")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("memodemo: %v", err)
	}
}

func run(ctx context.Context) error {
	promReg := prometheus.NewRegistry()
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "memodemo",
		Version:     "dev",
		Labels:      map[string]string{"workload": "demo"},
		Metrics: observe.MetricsConfig{
			Enabled:    true,
			Exporter:   observe.ExporterPrometheus,
			Registerer: promReg,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   *logLevel,
		},
	})
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	rec := obs.Recorder()
	logger := obs.Logger()
	logger.Info(ctx, "telemetry ready", observe.Field{Key: "service.instance.id", Value: obs.InstanceID()})

	reg := memoize.NewDefaultRegistry()
	if err := tinylfu.Register(reg); err != nil {
		return err
	}
	if err := memoize.ValidateExtensions(reg); err != nil {
		return fmt.Errorf("extension contract: %w", err)
	}

	square, err := runSquare(ctx, reg, rec, logger)
	if err != nil {
		return err
	}

	alg, err := parseAlgorithm(reg, *algorithm)
	if err != nil {
		return err
	}
	load, err := runLoad(ctx, reg, alg, rec, logger)
	if err != nil {
		return err
	}
	if closer, ok := load.(interface{ Close() }); ok {
		defer closer.Close()
	}

	if *addr == "" {
		return nil
	}
	return serve(ctx, promReg, map[string]health.InfoSource{
		"square": square,
		"load":   load,
	}, logger)
}

// runSquare wraps x*x with two LRU slots and replays 1, 2, 1, 3: one hit,
// three misses and 2 evicted.
func runSquare(ctx context.Context, reg *memoize.Registry, rec observe.Recorder, logger observe.Logger) (memoize.Cache, error) {
	square, err := reg.New(func(_ context.Context, args cache.Args) (any, error) {
		x := args.Positional[0].(int)
		return x * x, nil
	},
		memoize.WithMaxSize(2),
		memoize.WithAlgorithm(memoize.LRU),
		memoize.WithName("square"),
		memoize.WithObserver(rec),
		memoize.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	for _, x := range []int{1, 2, 1, 3} {
		v, err := memoize.Call[int](ctx, square, x)
		if err != nil {
			return nil, err
		}
		fmt.Printf("square(%d) = %d\n", x, v)
	}
	fmt.Println(square.Info())
	fmt.Printf("cached arguments: %v\n", square.Arguments())
	if square.ContainsArgs(cache.Positional(2)) {
		return nil, errors.New("square(2) should have been evicted")
	}
	return square, nil
}

func runLoad(ctx context.Context, reg *memoize.Registry, alg memoize.Algorithm, rec observe.Recorder, logger observe.Logger) (memoize.Cache, error) {
	opts := []memoize.Option{
		memoize.WithMaxSize(*maxSize),
		memoize.WithAlgorithm(alg),
		memoize.WithName("load"),
		memoize.WithObserver(rec),
		memoize.WithLogger(logger),
	}
	if *ttl > 0 {
		opts = append(opts, memoize.WithTTL(*ttl))
	}
	compute := func(ctx context.Context, args cache.Args) (any, error) {
		select {
		case <-time.After(*work):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return args.Positional[0].(int) * 3, nil
	}
	guarded := resilience.Guard(compute,
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: *inflight,
			MaxWait:       *timeout,
		})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  *retries,
			InitialDelay: 10 * time.Millisecond,
			Jitter:       true,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.Warn(ctx, "retrying computation",
					observe.Field{Key: "attempt", Value: attempt},
					observe.Field{Key: "error", Value: err.Error()},
					observe.Field{Key: "delay", Value: delay.String()},
				)
			},
		})),
		resilience.WithTimeout(*timeout),
	)
	slow, err := reg.New(guarded, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		g.Go(func() error {
			for i := 0; i < *calls; i++ {
				// Skewed draw: low arguments are requested far more often.
				x := int(rand.ExpFloat64()*float64(*keys)/4) % *keys
				if _, err := slow.Do(gctx, x); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	info := slow.Info()
	elapsed := time.Since(start)
	logger.Info(ctx, "load finished",
		observe.Field{Key: "algorithm", Value: reg.Name(alg)},
		observe.Field{Key: "elapsed", Value: elapsed.String()},
		observe.Field{Key: "calls_per_sec", Value: float64(info.Hits+info.Misses) / elapsed.Seconds()},
		observe.Field{Key: "hit_ratio", Value: info.HitRatio()},
		observe.Field{Key: "current_size", Value: info.CurrentSize},
	)
	fmt.Println(info)
	return slow, nil
}

func serve(ctx context.Context, promReg *prometheus.Registry, sources map[string]health.InfoSource, logger observe.Logger) error {
	agg := health.NewAggregator()
	for name, src := range sources {
		agg.Register(name, health.NewCacheChecker(name, src, health.CacheCheckerConfig{
			MinHitRatio: 0.2,
			MinCalls:    10,
		}))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /memo", health.CacheInfoHandler(sources))
	mux.HandleFunc("GET /memo/{name}", health.CacheInfoHandler(sources))
	health.RegisterHandlers(mux, agg)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "serving", observe.Field{Key: "addr", Value: *addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func parseAlgorithm(reg *memoize.Registry, name string) (memoize.Algorithm, error) {
	for _, alg := range reg.Algorithms() {
		if strings.EqualFold(reg.Name(alg), name) {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", memoize.ErrUnknownAlgorithm, name)
}
