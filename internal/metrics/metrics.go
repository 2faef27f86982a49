package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecsim"

// Metrics records simulation, completion and HTTP activity.
// A nil *Metrics, or one built with a nil registerer, records nothing.
type Metrics struct {
	simulations   *prometheus.CounterVec
	simDuration   *prometheus.HistogramVec
	rows          prometheus.Counter
	completions   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New registers the metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by mode and whether the memo cache answered.",
		}, []string{"mode", "cache"}),
		simDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Time to produce a simulation report.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"mode"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_rows_total",
			Help:      "Rows emitted by the engine.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_completions_total",
			Help:      "AI commentary requests by model and outcome.",
		}, []string{"model", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.simulations, m.simDuration, m.rows, m.completions, m.httpRequests, m.httpDurations)
	return m
}

// ObserveSimulation records one simulation request.
func (m *Metrics) ObserveSimulation(mode string, cached bool, rows int, d time.Duration) {
	if m == nil || m.simulations == nil {
		return
	}
	cache := "miss"
	if cached {
		cache = "hit"
	}
	mode = normalizeLabel(mode)
	m.simulations.WithLabelValues(mode, cache).Inc()
	m.simDuration.WithLabelValues(mode).Observe(d.Seconds())
	if !cached {
		m.rows.Add(float64(rows))
	}
}

// ObserveCompletion records one AI commentary attempt.
func (m *Metrics) ObserveCompletion(model string, err error) {
	if m == nil || m.completions == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.completions.WithLabelValues(normalizeLabel(model), outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
