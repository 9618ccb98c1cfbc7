package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	records       *prometheus.CounterVec
	droppedItems  prometheus.Counter
	runsTotal     *prometheus.CounterVec
	lastRunTS     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "fetch_total",
		Help:      "Hearing-list fetches by court and outcome",
	}, []string{"court", "outcome"})
	m.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "docket",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of hearing-list fetches",
		Buckets:   prometheus.DefBuckets,
	})
	m.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "records_extracted_total",
		Help:      "Hearing records extracted by indicator",
	}, []string{"indicator"})
	m.droppedItems = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "extract_dropped_items_total",
		Help:      "Scanned markup items discarded by positional alignment",
	})
	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"outcome"})
	m.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "docket",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful pipeline run",
	})

	m.registry.MustRegister(
		m.fetchTotal, m.fetchDuration, m.records,
		m.droppedItems, m.runsTotal, m.lastRunTS,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveFetch(court, outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(court, outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) AddRecord(indicator string) {
	m.records.WithLabelValues(indicator).Inc()
}

func (m *Metrics) AddDropped(n int) {
	if n > 0 {
		m.droppedItems.Add(float64(n))
	}
}

// ObserveRun records a finished run. Outcome is one of ok, cached, no_data, error.
func (m *Metrics) ObserveRun(outcome string) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	if outcome != "error" {
		m.lastRunTS.Set(float64(time.Now().Unix()))
	}
}
