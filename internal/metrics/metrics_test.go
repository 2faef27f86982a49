package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Simulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSimulation("multi", false, 108, 2*time.Millisecond)
	m.ObserveSimulation("multi", true, 108, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "ecsim_simulations_total", map[string]string{"mode": "multi", "cache": "miss"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "ecsim_simulations_total", map[string]string{"mode": "multi", "cache": "hit"}))
	assert.Equal(t, 108.0, counterValue(t, mfs, "ecsim_simulation_rows_total", nil))

	h := findMetric(t, mfs, "ecsim_simulation_duration_seconds", map[string]string{"mode": "multi"})
	assert.Equal(t, uint64(2), h.GetHistogram().GetSampleCount())
}

func TestMetrics_CompletionAndHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCompletion("gemini-2.0-flash", nil)
	m.ObserveCompletion("gemini-2.0-flash", errors.New("quota"))
	m.ObserveCompletion("", nil)
	m.ObserveHTTP(http.MethodPost, "/api/v1/simulations", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "ecsim_insight_completions_total", map[string]string{"model": "gemini-2.0-flash", "outcome": "error"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "ecsim_insight_completions_total", map[string]string{"model": "unknown", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "ecsim_http_requests_total", map[string]string{"route": "/api/v1/simulations", "status": "200"}))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSimulation("single", false, 1, time.Millisecond)
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)

	New(nil).ObserveCompletion("x", nil)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).ObserveSimulation("single", false, 36, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecsim_simulation_rows_total 36")
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, p := range pairs {
			if p.GetName() == name && p.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
