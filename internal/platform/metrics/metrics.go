package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP and entity metrics of the service.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	EntityChanges   *prometheus.CounterVec
}

// New creates and registers all metrics with reg; nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spoolman_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		EntityChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spoolman_entity_changes_total",
			Help: "Total number of persisted entity changes by resource and kind",
		}, []string{"resource", "kind"}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// IncEntityChange counts one created, updated or deleted entity.
func (m *Metrics) IncEntityChange(resource, kind string) {
	if m == nil {
		return
	}
	m.EntityChanges.WithLabelValues(resource, kind).Inc()
}
