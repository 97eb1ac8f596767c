// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/aretw0/lousa/pkg/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors, registered on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	RelayRequests *prometheus.CounterVec
	RelayDuration *prometheus.HistogramVec
	Checks        *prometheus.CounterVec
	BoardOps      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RelayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lousa_relay_requests_total",
				Help: "Total number of relay calls by provider and HTTP status",
			},
			[]string{"provider", "status"},
		),
		RelayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lousa_relay_duration_seconds",
				Help:    "Duration of relay calls",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		Checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lousa_checks_total",
				Help: "Total number of equivalence checks by verdict",
			},
			[]string{"verdict"},
		),
		BoardOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lousa_board_ops_total",
				Help: "Total number of recorded board operations",
			},
			[]string{"op"},
		),
	}
	m.Registry.MustRegister(
		m.RelayRequests, m.RelayDuration, m.Checks, m.BoardOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRelay is a relay.WithObserver callback.
func (m *Metrics) ObserveRelay(o relay.Outcome) {
	m.RelayRequests.WithLabelValues(o.Provider, strconv.Itoa(o.Status)).Inc()
	m.RelayDuration.WithLabelValues(o.Provider).Observe(o.Duration.Seconds())
}

// ObserveCheck counts a verdict by name.
func (m *Metrics) ObserveCheck(verdict string) {
	m.Checks.WithLabelValues(verdict).Inc()
}

// ObserveBoardOp is a board.WithObserver callback.
func (m *Metrics) ObserveBoardOp(op string) {
	m.BoardOps.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
