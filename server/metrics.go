package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	HTTPRequests  *prometheus.CounterVec
	Adaptations   *prometheus.CounterVec
	AIGenerations *prometheus.CounterVec
	Publishes     *prometheus.CounterVec
}

// NewMetrics registers the dashboard collectors, plus Go runtime and process
// collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		Adaptations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_adapt_total",
			Help: "Content adaptations by platform.",
		}, []string{"platform"}),
		AIGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ai_generations_total",
			Help: "AI assistant generations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_publish_total",
			Help: "Publish attempts by platform and outcome.",
		}, []string{"platform", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.Adaptations,
		m.AIGenerations,
		m.Publishes,
	)
	return m
}

func (m *Metrics) IncRequest(method, route, status string) {
	if m == nil || m.HTTPRequests == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

func (m *Metrics) IncAdapt(platformID string) {
	if m == nil || m.Adaptations == nil {
		return
	}
	m.Adaptations.WithLabelValues(platformID).Inc()
}

func (m *Metrics) IncGeneration(provider, outcome string) {
	if m == nil || m.AIGenerations == nil {
		return
	}
	m.AIGenerations.WithLabelValues(provider, outcome).Inc()
}

// ObservePublish matches the publisher observer signature.
func (m *Metrics) ObservePublish(platformID string, ok bool) {
	if m == nil || m.Publishes == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.Publishes.WithLabelValues(platformID, outcome).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
