package observe

import (
	"context"
	"time"
)

// ComputeFunc is one run of the underlying function, already bound to its
// arguments.
type ComputeFunc func(ctx context.Context) (any, error)

// Recorder receives the lifecycle events of a memoized function.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Compute passes its (possibly span-carrying) context to fn.
//   - Errors: errors from fn are recorded and returned unchanged.
//   - Ownership: results pass through without modification.
type Recorder interface {
	// Compute runs fn, surrounding it with a span and duration metrics.
	Compute(ctx context.Context, meta FuncMeta, fn ComputeFunc) (any, error)

	// Hit records a lookup answered from the cache.
	Hit(ctx context.Context, meta FuncMeta)

	// Miss records a lookup whose freshly computed result was stored.
	Miss(ctx context.Context, meta FuncMeta)

	// Evicted records an entry removed by capacity pressure or expiry.
	Evicted(ctx context.Context, meta FuncMeta, reason EvictReason)
}

type recorder struct {
	tracer  Tracer
	metrics Metrics
	now     func() time.Time
}

// NewRecorder creates a Recorder from explicit components. Nil components
// are replaced with no-ops.
func NewRecorder(tracer Tracer, metrics Metrics) Recorder {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &recorder{tracer: tracer, metrics: metrics, now: time.Now}
}

// RecorderFromObserver returns the Recorder owned by obs.
func RecorderFromObserver(obs Observer) (Recorder, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return obs.Recorder(), nil
}

func (r *recorder) Compute(ctx context.Context, meta FuncMeta, fn ComputeFunc) (any, error) {
	ctx, span := r.tracer.StartSpan(ctx, meta)
	start := r.now()

	result, err := fn(ctx)

	duration := r.now().Sub(start)
	r.tracer.EndSpan(span, err)
	r.metrics.RecordCompute(ctx, meta, duration, err)

	return result, err
}

func (r *recorder) Hit(ctx context.Context, meta FuncMeta) {
	r.metrics.RecordLookup(ctx, meta, true)
}

func (r *recorder) Miss(ctx context.Context, meta FuncMeta) {
	r.metrics.RecordLookup(ctx, meta, false)
}

func (r *recorder) Evicted(ctx context.Context, meta FuncMeta, reason EvictReason) {
	r.metrics.RecordEviction(ctx, meta, reason)
}

type nopRecorder struct{}

// NopRecorder returns a Recorder that only runs fn.
func NopRecorder() Recorder { return nopRecorder{} }

func (nopRecorder) Compute(ctx context.Context, _ FuncMeta, fn ComputeFunc) (any, error) {
	return fn(ctx)
}

func (nopRecorder) Hit(context.Context, FuncMeta)                  {}
func (nopRecorder) Miss(context.Context, FuncMeta)                 {}
func (nopRecorder) Evicted(context.Context, FuncMeta, EvictReason) {}
