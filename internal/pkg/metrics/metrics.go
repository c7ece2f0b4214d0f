package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	CartReloads    *prometheus.CounterVec
	CartReloadMS   prometheus.Histogram
	CartEnrichment *prometheus.CounterVec
	Sessions       prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		CartReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "reloads_total",
			Help:      "Cart reloads by outcome.",
		}, []string{"outcome"}),
		CartReloadMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "reload_duration_ms",
			Help:      "Duration of a full cart reload including enrichment.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		CartEnrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "enrichment_total",
			Help:      "Product lookups made while enriching cart lines, by result.",
		}, []string{"result"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Browser sessions currently held in memory.",
		}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.CartReloads, m.CartReloadMS, m.CartEnrichment, m.Sessions)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(handler, status string, d time.Duration) {
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(d.Milliseconds()))
}

// ReloadFinished records the outcome of a cart reload
func (m *Metrics) ReloadFinished(outcome string, d time.Duration) {
	m.CartReloads.WithLabelValues(outcome).Inc()
	m.CartReloadMS.Observe(float64(d.Milliseconds()))
}

// Enriched records the result of one product lookup during enrichment
func (m *Metrics) Enriched(result string) {
	m.CartEnrichment.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionOpened() { m.Sessions.Inc() }
func (m *Metrics) SessionClosed() { m.Sessions.Dec() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
