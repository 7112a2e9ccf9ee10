package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func validConfig() Config {
	return Config{
		ServiceName: "memo-test",
		Version:     "1.0.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrMissingServiceName},
		{name: "unknown tracing exporter", mutate: func(c *Config) { c.Tracing.Exporter = "jaeger" }, wantErr: ErrInvalidTracingExporter},
		{name: "sample pct above one", mutate: func(c *Config) { c.Tracing.SamplePct = 1.5 }, wantErr: ErrInvalidSamplePct},
		{name: "sample pct negative", mutate: func(c *Config) { c.Tracing.SamplePct = -0.1 }, wantErr: ErrInvalidSamplePct},
		{name: "unknown metrics exporter", mutate: func(c *Config) { c.Metrics.Exporter = "statsd" }, wantErr: ErrInvalidMetricsExporter},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: ErrInvalidLogLevel},
		{
			name: "disabled subsystems are not checked",
			mutate: func(c *Config) {
				c.Tracing = TracingConfig{Exporter: "jaeger", SamplePct: 7}
				c.Metrics = MetricsConfig{Exporter: "statsd"}
				c.Logging = LoggingConfig{Level: "verbose"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_DisabledIsNoop(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "memo-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil tracer, meter and logger")
	}
	if _, ok := obs.Logger().(nopLogger); !ok {
		t.Errorf("Logger() = %T, want nopLogger", obs.Logger())
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestNewObserver_EnabledProviders(t *testing.T) {
	obs, err := NewObserver(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	_, span := obs.Tracer().Start(context.Background(), "memo.compute.square")
	if !span.SpanContext().IsValid() {
		t.Error("expected a real span from the SDK tracer")
	}
	span.End()

	for i := 0; i < 2; i++ {
		if err := obs.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() #%d error = %v", i+1, err)
		}
	}
}

func TestNewObserver_PrometheusRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := validConfig()
	cfg.Metrics = MetricsConfig{Enabled: true, Exporter: "prometheus", Registerer: reg}

	obs, err := NewObserver(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	obs.Recorder().Hit(context.Background(), FuncMeta{Name: "square"})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "memo_hits_total" {
			found = true
		}
	}
	if !found {
		t.Error("memo_hits_total not exported to the custom registry")
	}
}

func TestObserver_ShutdownIdempotentForNoop(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "memo-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := obs.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() #%d error = %v", i+1, err)
		}
	}
}

func TestNewObserver_InstanceAndRecorder(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "memo-test", InstanceID: "replica-1"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if got := obs.InstanceID(); got != "replica-1" {
		t.Errorf("InstanceID() = %q, want replica-1", got)
	}
	if obs.Recorder() == nil || obs.Recorder() != obs.Recorder() {
		t.Error("Recorder() should return one shared recorder")
	}
	rec, err := RecorderFromObserver(obs)
	if err != nil || rec != obs.Recorder() {
		t.Errorf("RecorderFromObserver() = %v, %v; want the observer's recorder", rec, err)
	}

	other, err := NewObserver(context.Background(), Config{ServiceName: "memo-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer other.Shutdown(context.Background())
	if other.InstanceID() == "" || other.InstanceID() == obs.InstanceID() {
		t.Errorf("generated InstanceID() = %q", other.InstanceID())
	}
}

func TestMemoAttributes(t *testing.T) {
	cfg := Config{
		ServiceName: "memo-test",
		Version:     "1.2.3",
		Labels:      map[string]string{"workload": "square", "tier": "hot"},
	}
	got := map[string]string{}
	var order []string
	for _, kv := range memoAttributes(cfg, "replica-1") {
		got[string(kv.Key)] = kv.Value.AsString()
		order = append(order, string(kv.Key))
	}

	want := map[string]string{
		"service.name":        "memo-test",
		"service.version":     "1.2.3",
		"service.instance.id": "replica-1",
		"memo.label.workload": "square",
		"memo.label.tier":     "hot",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("attributes = %v", got)
	}
	if order[len(order)-2] != "memo.label.tier" || order[len(order)-1] != "memo.label.workload" {
		t.Errorf("labels not sorted: %v", order)
	}

	for _, kv := range memoAttributes(Config{ServiceName: "memo-test"}, "x") {
		if kv.Key == "service.version" {
			t.Error("empty Version should not produce service.version")
		}
	}
}

func TestFuncMeta(t *testing.T) {
	tests := []struct {
		meta     FuncMeta
		spanName string
		funcID   string
		valid    bool
	}{
		{FuncMeta{Name: "square"}, "memo.compute.square", "square", true},
		{FuncMeta{Name: "square", InstanceID: "a1"}, "memo.compute.square", "square#a1", true},
		{FuncMeta{Name: "  "}, "memo.compute.  ", "  ", false},
	}
	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.spanName {
			t.Errorf("SpanName() = %q, want %q", got, tt.spanName)
		}
		if got := tt.meta.FuncID(); got != tt.funcID {
			t.Errorf("FuncID() = %q, want %q", got, tt.funcID)
		}
		if err := tt.meta.Validate(); (err == nil) != tt.valid {
			t.Errorf("Validate(%+v) = %v, valid %v", tt.meta, err, tt.valid)
		}
	}
}
