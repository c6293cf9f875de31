package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the service's Prometheus collectors, on a registry of their own
type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	requests    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	confidence  prometheus.Histogram
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "headsup",
			Name:      "connections",
			Help:      "Connected websocket clients.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headsup",
			Name:      "requests_total",
			Help:      "Messages received, by type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headsup",
			Name:      "request_errors_total",
			Help:      "Error replies, by code.",
		}, []string{"code"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headsup",
			Name:      "decisions_total",
			Help:      "Engine decisions, by round and action.",
		}, []string{"round", "action"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "headsup",
			Name:      "decision_confidence",
			Help:      "Share of the opponent range the engine beat when deciding.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
	m.registry.MustRegister(
		m.connections, m.requests, m.errors, m.decisions, m.confidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the collectors, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
