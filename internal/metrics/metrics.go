package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch and analysis outcomes used as label values.
const (
	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeNetwork   = "network"
	OutcomeProvider  = "provider"
	OutcomeError     = "error"
)

// Metrics holds the chart server's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration    *prometheus.HistogramVec // labels: source, outcome
	BarsFetched      prometheus.Counter
	IndicatorsTotal  *prometheus.CounterVec // labels: kind
	AnalysisDuration *prometheus.HistogramVec // labels: outcome
	Sessions         prometheus.Gauge
	WSClients        prometheus.Gauge
}

// New registers every collector on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockchart_fetch_duration_seconds",
			Help:    "Quote fetch latency including normalization",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
		BarsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockchart_bars_fetched_total",
			Help: "Daily bars loaded into sessions",
		}),
		IndicatorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockchart_indicator_computations_total",
			Help: "Indicator computations by kind",
		}, []string{"kind"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockchart_analysis_duration_seconds",
			Help:    "Chart snapshot plus vision model latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockchart_sessions",
			Help: "Browser sessions held in memory",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockchart_ws_clients",
			Help: "Connected websocket clients",
		}),
	}

	m.registry.MustRegister(
		m.FetchDuration,
		m.BarsFetched,
		m.IndicatorsTotal,
		m.AnalysisDuration,
		m.Sessions,
		m.WSClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(source, outcome string, started time.Time, bars int) {
	m.FetchDuration.WithLabelValues(source, outcome).Observe(time.Since(started).Seconds())
	if outcome == OutcomeOK {
		m.BarsFetched.Add(float64(bars))
	}
}

// ObserveAnalysis records one analysis attempt.
func (m *Metrics) ObserveAnalysis(outcome string, started time.Time) {
	m.AnalysisDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// CountIndicator records one computation of kind.
func (m *Metrics) CountIndicator(kind string) {
	m.IndicatorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
