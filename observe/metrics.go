package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EvictReason says why an entry left the cache without being asked to.
type EvictReason string

const (
	// EvictCapacity means the entry was the policy's victim on an insert
	// that pushed the cache past its maximum size.
	EvictCapacity EvictReason = "capacity"

	// EvictExpired means the entry outlived its TTL and was reaped by a lookup.
	EvictExpired EvictReason = "expired"
)

// Metrics records cache metrics for memoized functions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; ctx only carries exemplar/baggage data.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records a completed lookup outcome.
	RecordLookup(ctx context.Context, meta FuncMeta, hit bool)

	// RecordEviction records an entry leaving the cache.
	RecordEviction(ctx context.Context, meta FuncMeta, reason EvictReason)

	// RecordCompute records one run of the underlying function.
	RecordCompute(ctx context.Context, meta FuncMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	calls        metric.Int64Counter
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	evictions    metric.Int64Counter
	errors       metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates the memo.* instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	m := &metricsImpl{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.calls, "memo.calls.total", "Total number of completed cache lookups", "{call}"},
		{&m.hits, "memo.hits", "Lookups answered from the cache", "{call}"},
		{&m.misses, "memo.misses", "Lookups that computed and stored a new result", "{call}"},
		{&m.evictions, "memo.evictions", "Entries removed by capacity or expiry", "{entry}"},
		{&m.errors, "memo.errors", "Underlying function failures", "{error}"},
	}
	for _, c := range counters {
		ctr, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
		*c.dst = ctr
	}

	hist, err := meter.Float64Histogram(
		"memo.compute.duration_ms",
		metric.WithDescription("Underlying function duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.durationHist = hist

	return m, nil
}

func funcAttrs(meta FuncMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("memo.func", meta.Name),
	}
	if meta.Algorithm != "" {
		attrs = append(attrs, attribute.String("memo.algorithm", meta.Algorithm))
	}
	return attrs
}

func (m *metricsImpl) RecordLookup(ctx context.Context, meta FuncMeta, hit bool) {
	opt := metric.WithAttributes(funcAttrs(meta)...)
	m.calls.Add(ctx, 1, opt)
	if hit {
		m.hits.Add(ctx, 1, opt)
	} else {
		m.misses.Add(ctx, 1, opt)
	}
}

func (m *metricsImpl) RecordEviction(ctx context.Context, meta FuncMeta, reason EvictReason) {
	attrs := append(funcAttrs(meta), attribute.String("memo.evict.reason", string(reason)))
	m.evictions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordCompute(ctx context.Context, meta FuncMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(funcAttrs(meta)...)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, FuncMeta, bool)                  {}
func (noopMetrics) RecordEviction(context.Context, FuncMeta, EvictReason)         {}
func (noopMetrics) RecordCompute(context.Context, FuncMeta, time.Duration, error) {}
