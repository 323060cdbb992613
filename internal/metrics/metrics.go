// Package metrics exposes exporter health as Prometheus collectors
package metrics

import (
	"net/http"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mesonet_exporter"

// Metrics holds the exporter's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	runDuration   prometheus.Histogram
	runs          *prometheus.CounterVec
	stations      prometheus.Gauge
	filesWritten  prometheus.Gauge
	lastRunFinish prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by endpoint and result kind.",
		}, []string{"endpoint", "kind"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full export run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Export runs by outcome.",
		}, []string{"outcome"}),
		stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations",
			Help:      "Stations included in the last run.",
		}),
		filesWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_written",
			Help:      "Output files written by the last run.",
		}),
		lastRunFinish: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.requests, m.requestTime, m.runDuration, m.runs,
		m.stations, m.filesWritten, m.lastRunFinish,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest implements mesonet.Observer
func (m *Metrics) ObserveRequest(endpoint string, kind mesonet.ResultKind, elapsed time.Duration) {
	m.requests.WithLabelValues(endpoint, kind.String()).Inc()
	m.requestTime.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRun records the outcome of one export run
func (m *Metrics) ObserveRun(stations, files int, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	m.stations.Set(float64(stations))
	m.filesWritten.Set(float64(files))
	m.lastRunFinish.SetToCurrentTime()
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ mesonet.Observer = (*Metrics)(nil)
