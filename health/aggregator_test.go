package health

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(r Result) Checker {
	return NewCheckerFunc("fixed", func(context.Context) Result { return r })
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()
	if agg.config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", agg.config.Timeout)
	}
	if agg.config.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", agg.config.MaxConcurrency)
	}

	agg = NewAggregator(AggregatorConfig{Timeout: -1, MaxConcurrency: 2})
	if agg.config.Timeout != 10*time.Second || agg.config.MaxConcurrency != 2 {
		t.Errorf("config = %+v", agg.config)
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register("b", fixed(Healthy("ok")))
	agg.Register("a", fixed(Healthy("ok")))
	agg.Register("b", fixed(Degraded("replaced")))

	if got, want := agg.CheckerNames(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("CheckerNames() = %v, want %v", got, want)
	}
	r, err := agg.Check(context.Background(), "b")
	if err != nil || r.Status != StatusDegraded {
		t.Errorf("Check(b) = %v, %v; want the replacement", r.Status, err)
	}

	agg.Unregister("b")
	agg.Unregister("missing")
	if got := agg.CheckerNames(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("CheckerNames() after Unregister = %v", got)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	if _, err := NewAggregator().Check(context.Background(), "nope"); err != ErrCheckerNotFound {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	tests := []struct {
		name           string
		maxConcurrency int
	}{
		{"unbounded", 0},
		{"sequential", 1},
		{"limited", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(AggregatorConfig{MaxConcurrency: tt.maxConcurrency})
			agg.Register("healthy", fixed(Healthy("ok")))
			agg.Register("degraded", fixed(Degraded("slow")))
			agg.Register("unhealthy", fixed(Unhealthy("down", nil)))

			results := agg.CheckAll(context.Background())
			if len(results) != 3 {
				t.Fatalf("len(results) = %d, want 3", len(results))
			}
			for name, want := range map[string]Status{
				"healthy": StatusHealthy, "degraded": StatusDegraded, "unhealthy": StatusUnhealthy,
			} {
				if results[name].Status != want {
					t.Errorf("%s status = %v, want %v", name, results[name].Status, want)
				}
				if results[name].Duration < 0 {
					t.Errorf("%s duration = %v", name, results[name].Duration)
				}
			}
		})
	}
}

func TestAggregator_CheckAllSequentialLimit(t *testing.T) {
	var running, peak atomic.Int32
	check := NewCheckerFunc("c", func(context.Context) Result {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return Healthy("ok")
	})

	agg := NewAggregator(AggregatorConfig{MaxConcurrency: 1})
	for _, name := range []string{"a", "b", "c", "d"} {
		agg.Register(name, check)
	}
	agg.CheckAll(context.Background())
	if got := peak.Load(); got != 1 {
		t.Errorf("peak concurrency = %d, want 1", got)
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	if results := NewAggregator().CheckAll(context.Background()); len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestAggregator_CheckAllTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("ok")
	}))

	results := agg.CheckAll(context.Background())
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("status = %v, want StatusUnhealthy", results["slow"].Status)
	}
	if results["slow"].Error != ErrCheckTimeout {
		t.Errorf("error = %v, want ErrCheckTimeout", results["slow"].Error)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy("ok"), "b": Healthy("ok")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy("ok"), "b": Degraded("slow")}, StatusDegraded},
		{"one unhealthy", map[string]Result{"a": Healthy("ok"), "b": Unhealthy("down", nil)}, StatusUnhealthy},
		{"unhealthy overrides degraded", map[string]Result{"a": Degraded("slow"), "b": Unhealthy("down", nil)}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", fixed(Healthy("ok")))
	agg.Register("slow", fixed(Degraded("slow")))

	checker := agg.Checker()
	if checker.Name() != "aggregate" {
		t.Errorf("Name() = %q, want aggregate", checker.Name())
	}
	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", result.Status)
	}
	if result.Message != "some checks degraded" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(result.Details) != 2 {
		t.Errorf("Details = %v", result.Details)
	}
}
