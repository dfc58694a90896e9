package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records timeline store activity. It satisfies timeline.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	loadFailures prometheus.Counter
	saves        *prometheus.CounterVec
	timelines    prometheus.Gauge
	events       prometheus.Gauge
	requests     *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.loadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timelines",
		Name:      "load_failures_total",
		Help:      "Startup loads that fell back to an empty collection",
	})
	m.saves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timelines",
		Name:      "saves_total",
		Help:      "Collection saves by result",
	}, []string{"result"})
	m.timelines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timelines",
		Name:      "timelines",
		Help:      "Timelines in the collection",
	})
	m.events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timelines",
		Name:      "events",
		Help:      "Events across all timelines",
	})
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timelines",
		Name:      "http_requests_total",
		Help:      "HTTP API requests by route and status code",
	}, []string{"route", "code"})

	m.registry.MustRegister(
		m.loadFailures, m.saves, m.timelines, m.events, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) LoadFailed()    { m.loadFailures.Inc() }
func (m *Metrics) SaveSucceeded() { m.saves.WithLabelValues("ok").Inc() }
func (m *Metrics) SaveFailed()    { m.saves.WithLabelValues("error").Inc() }

func (m *Metrics) CollectionSize(timelines, events int) {
	m.timelines.Set(float64(timelines))
	m.events.Set(float64(events))
}

// ObserveRequest counts one HTTP API request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
