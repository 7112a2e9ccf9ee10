package observe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/memoization/observe/exporters"
)

// ScopeName is the instrumentation scope of every memo span and instrument.
const ScopeName = "github.com/jonwraymond/memoization"

// Exporter names a telemetry backend. The empty name behaves like
// ExporterNone.
type Exporter string

const (
	ExporterNone       Exporter = "none"
	ExporterStdout     Exporter = "stdout"
	ExporterOTLP       Exporter = "otlp"
	ExporterPrometheus Exporter = "prometheus" // metrics only
)

// Config describes the telemetry of one process hosting memoized functions.
type Config struct {
	ServiceName string
	Version     string

	// InstanceID becomes service.instance.id on the exported resource.
	// Empty means a random UUID, so two replicas never merge their counters.
	InstanceID string

	// Labels are attached to the resource as memo.label.<key>, for example
	// the workload a cache fleet serves.
	Labels map[string]string

	Tracing TracingConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

// TracingConfig controls spans around underlying computations. Hits never
// produce spans.
type TracingConfig struct {
	Enabled   bool
	Exporter  Exporter // none, stdout or otlp
	SamplePct float64  // fraction of computations traced, 0.0 to 1.0
}

// MetricsConfig controls the memo.* instruments.
type MetricsConfig struct {
	Enabled  bool
	Exporter Exporter

	// Registerer receives the collector for ExporterPrometheus. Nil means
	// the client_golang default registerer.
	Registerer prometheus.Registerer
}

// LoggingConfig controls the structured logger handed to memoized functions.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug, info, warn or error
}

// Validate reports the first problem with c. Settings of a disabled
// subsystem are ignored.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		switch t.Exporter {
		case "", ExporterNone, ExporterStdout, ExporterOTLP:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < 0 || t.SamplePct > 1 {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled {
		switch m.Exporter {
		case "", ExporterNone, ExporterStdout, ExporterOTLP, ExporterPrometheus:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
		}
	}
	if l := c.Logging; l.Enabled {
		switch l.Level {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
	}
	return nil
}

// Observer owns the telemetry providers of a process and the Recorder that
// memoized functions report to.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown is idempotent; later calls return the first result.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger

	// Recorder returns the Recorder bound to this observer's instruments.
	// Every call returns the same value.
	Recorder() Recorder

	// InstanceID returns the service.instance.id exported with all telemetry.
	InstanceID() string

	// Shutdown flushes and stops the tracer and meter providers.
	Shutdown(ctx context.Context) error
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithFunc(meta FuncMeta) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	instanceID string
	tracer     trace.Tracer
	meter      metric.Meter
	logger     Logger
	recorder   Recorder

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewObserver sets up the providers selected by cfg, registers them as the
// otel globals, and creates the memo.* instruments behind Recorder.
// Disabled subsystems fall back to no-op implementations.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &observer{instanceID: cfg.InstanceID}
	if o.instanceID == "" {
		o.instanceID = uuid.NewString()
	}

	res, err := resource.New(ctx, resource.WithAttributes(memoAttributes(cfg, o.instanceID)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	o.tracer = tracenoop.NewTracerProvider().Tracer(ScopeName)
	if cfg.Tracing.Enabled {
		if o.tp, err = newTracerProvider(ctx, cfg.Tracing, res); err != nil {
			return nil, fmt.Errorf("failed to setup tracing: %w", err)
		}
		otel.SetTracerProvider(o.tp)
		o.tracer = o.tp.Tracer(ScopeName)
	}

	o.meter = noop.NewMeterProvider().Meter(ScopeName)
	if cfg.Metrics.Enabled {
		if o.mp, err = newMeterProvider(ctx, cfg.Metrics, res); err != nil {
			_ = o.Shutdown(ctx)
			return nil, fmt.Errorf("failed to setup metrics: %w", err)
		}
		otel.SetMeterProvider(o.mp)
		o.meter = o.mp.Meter(ScopeName)
	}

	metrics, err := newMetrics(o.meter)
	if err != nil {
		_ = o.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create memo instruments: %w", err)
	}
	o.recorder = NewRecorder(NewTracer(o.tracer), metrics)

	o.logger = NopLogger()
	if cfg.Logging.Enabled {
		o.logger = NewLogger(cfg.Logging.Level)
	}
	return o, nil
}

// memoAttributes lists the resource attributes for cfg. Labels are sorted
// so the resource is the same for equal configs.
func memoAttributes(cfg Config, instanceID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceInstanceID(instanceID),
	}
	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	keys := make([]string, 0, len(cfg.Labels))
	for k := range cfg.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String("memo.label."+k, cfg.Labels[k]))
	}
	return attrs
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, string(cfg.Exporter))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplePct)),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var (
		reader sdkmetric.Reader
		err    error
	)
	if cfg.Exporter == ExporterPrometheus && cfg.Registerer != nil {
		reader, err = exporters.NewPrometheusReader(cfg.Registerer)
	} else {
		reader, err = exporters.NewMetricsReader(ctx, string(cfg.Exporter))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics reader: %w", err)
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }
func (o *observer) Recorder() Recorder   { return o.recorder }
func (o *observer) InstanceID() string   { return o.instanceID }

func (o *observer) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		var errs []error
		if o.tp != nil {
			if err := o.tp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
			}
		}
		if o.mp != nil {
			if err := o.mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
			}
		}
		o.shutdownErr = errors.Join(errs...)
	})
	return o.shutdownErr
}
