package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/coursedesk/sessiongate"
)

type fakeSource struct {
	mu       sync.RWMutex
	counters map[sessiongate.MetricID]uint64
	latency  []uint64
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() sessiongate.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := sessiongate.MetricsSnapshot{
		Counters:   make(map[sessiongate.MetricID]uint64, len(f.counters)),
		Histograms: map[sessiongate.MetricID][]uint64{},
	}
	for k, v := range f.counters {
		out.Counters[k] = v
	}
	if f.latency != nil {
		out.Histograms[sessiongate.MetricLoginLatency] = append([]uint64(nil), f.latency...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func int64Value(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				return data.DataPoints[0].Value
			case metricdata.Gauge[int64]:
				return data.DataPoints[0].Value
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestExporterCollectsSnapshot(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		counters: map[sessiongate.MetricID]uint64{
			sessiongate.MetricLoginSuccess:      3,
			sessiongate.MetricRehydrateRejected: 1,
		},
		latency: []uint64{1, 1, 0, 0, 0, 0, 0, 2},
		dropped: 4,
	}

	exp, err := NewExporter(provider.Meter("sessiongate-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got := int64Value(t, rm, "sessiongate_login_success_total"); got != 3 {
		t.Fatalf("login success = %d, want 3", got)
	}
	if got := int64Value(t, rm, "sessiongate_rehydrate_rejected_total"); got != 1 {
		t.Fatalf("rehydrate rejected = %d, want 1", got)
	}
	if got := int64Value(t, rm, "sessiongate_login_latency_seconds_bucket_le_0_1"); got != 2 {
		t.Fatalf("cumulative bucket 0.1 = %d, want 2", got)
	}
	if got := int64Value(t, rm, "sessiongate_login_latency_seconds_count"); got != 4 {
		t.Fatalf("latency count = %d, want 4", got)
	}
	if got := int64Value(t, rm, "sessiongate_audit_dropped_total"); got != 4 {
		t.Fatalf("audit dropped = %d, want 4", got)
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	_, provider := newMeter()
	if _, err := NewExporter(provider.Meter("sessiongate-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporter(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterWithManager(t *testing.T) {
	reader, provider := newMeter()
	mgr, err := sessiongate.New().
		WithAuthenticator(sessiongate.AuthenticatorFunc(func(context.Context, sessiongate.Credentials) (sessiongate.LoginResponse, error) {
			return sessiongate.LoginResponse{}, sessiongate.ErrCredentialsRejected
		})).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer mgr.Close()
	mgr.Initialize(context.Background())

	exp, err := NewExporter(provider.Meter("sessiongate-test"), mgr)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := int64Value(t, rm, "sessiongate_rehydrate_empty_total"); got != 1 {
		t.Fatalf("rehydrate empty = %d, want 1", got)
	}
}

func TestExporterConcurrentCollect(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{counters: map[sessiongate.MetricID]uint64{sessiongate.MetricLogout: 1}}

	exp, err := NewExporter(provider.Meter("sessiongate-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.counters[sessiongate.MetricLogout] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
