package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // method, route, status
	RequestDuration *prometheus.HistogramVec // method, route
	GateOutcomes    *prometheus.CounterVec   // gate, result
}

// NewMetrics registers on a private registry so several servers can coexist
// in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parking_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GateOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_gate_outcomes_total",
				Help: "Gate requests by gate and result",
			},
			[]string{"gate", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.GateOutcomes,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
