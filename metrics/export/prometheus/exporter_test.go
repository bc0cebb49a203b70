package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type fakeSource struct {
	snapshot dashAuth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() dashAuth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func gather(t *testing.T, src fakeSource) map[string]*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewExporterFromSource(src)); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestCollectEmptyWhenMetricsDisabled(t *testing.T) {
	got := gather(t, fakeSource{
		snapshot: dashAuth.MetricsSnapshot{
			Counters:   map[dashAuth.MetricID]uint64{},
			Histograms: map[dashAuth.MetricID][]uint64{},
		},
	})
	if len(got) != 0 {
		t.Fatalf("expected no families for disabled metrics, got %d", len(got))
	}
}

func TestCollectCountersAndHistogram(t *testing.T) {
	got := gather(t, fakeSource{
		snapshot: dashAuth.MetricsSnapshot{
			Counters: map[dashAuth.MetricID]uint64{
				dashAuth.MetricLoginSuccess: 7,
			},
			Histograms: map[dashAuth.MetricID][]uint64{
				dashAuth.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	login := got["dashauth_login_success_total"]
	if login == nil || login.GetMetric()[0].GetCounter().GetValue() != 7 {
		t.Fatalf("expected login_success=7, got %v", login)
	}

	latency := got["dashauth_request_latency_seconds"]
	if latency == nil {
		t.Fatal("expected latency histogram")
	}
	h := latency.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 36 {
		t.Fatalf("expected 36 samples, got %d", h.GetSampleCount())
	}
	first := h.GetBucket()[0]
	if first.GetUpperBound() != 0.05 || first.GetCumulativeCount() != 1 {
		t.Fatalf("unexpected first bucket %v", first)
	}

	dropped := got["dashauth_audit_dropped_total"]
	if dropped == nil || dropped.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected audit dropped=2, got %v", dropped)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: dashAuth.MetricsSnapshot{
			Counters:   map[dashAuth.MetricID]uint64{dashAuth.MetricLogout: 1},
			Histograms: map[dashAuth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dashauth_logout_total 1") {
		t.Fatalf("expected logout counter, got:\n%s", rec.Body.String())
	}
}

func BenchmarkGather(b *testing.B) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewExporterFromSource(fakeSource{
		snapshot: dashAuth.MetricsSnapshot{
			Counters: map[dashAuth.MetricID]uint64{
				dashAuth.MetricLoginSuccess:   1000,
				dashAuth.MetricLoginFailure:   40,
				dashAuth.MetricHydrateCleared: 3,
			},
			Histograms: map[dashAuth.MetricID][]uint64{
				dashAuth.MetricRequestLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	}))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Gather()
	}
}
