package observe

import (
	"context"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func BenchmarkLogger_Debug(b *testing.B) {
	logger := NewLoggerWithWriter("debug", io.Discard).WithFunc(FuncMeta{Name: "square", Algorithm: "LRU"})
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "cache hit", Field{Key: "size", Value: 3})
	}
}

func BenchmarkLogger_LevelFiltered(b *testing.B) {
	logger := NewLoggerWithWriter("error", io.Discard)
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "dropped", Field{Key: "size", Value: 3})
	}
}

func BenchmarkRecorder_Hit(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	rec := NewRecorder(nil, m)
	meta := FuncMeta{Name: "square", Algorithm: "LRU"}
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec.Hit(ctx, meta)
	}
}

func BenchmarkRecorder_Compute(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	rec := NewRecorder(nil, m)
	meta := FuncMeta{Name: "square"}
	ctx := context.Background()
	fn := func(context.Context) (any, error) { return 16, nil }
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = rec.Compute(ctx, meta, fn)
	}
}

func BenchmarkMetrics_RecordCompute(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	meta := FuncMeta{Name: "square"}
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		m.RecordCompute(ctx, meta, time.Millisecond, nil)
	}
}
