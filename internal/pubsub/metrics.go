package pubsub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event fan-out.
type Metrics struct {
	Published         *prometheus.CounterVec
	Deliveries        prometheus.Counter
	DeliveryFailures  prometheus.Counter
	ActiveSubscribers prometheus.Gauge
	SinkFailures      *prometheus.CounterVec
}

// NewMetrics registers pubsub metrics with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spoolman_events_published_total",
			Help: "Total number of change events published, by resource and type",
		}, []string{"resource", "type"}),
		Deliveries: f.NewCounter(prometheus.CounterOpts{
			Name: "spoolman_event_deliveries_total",
			Help: "Total number of events handed to subscribers",
		}),
		DeliveryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "spoolman_event_delivery_failures_total",
			Help: "Total number of deliveries that failed and removed the subscriber",
		}),
		ActiveSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "spoolman_active_subscribers",
			Help: "Number of subscribers currently registered",
		}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spoolman_event_sink_failures_total",
			Help: "Total number of events a sink failed to accept",
		}, []string{"sink"}),
	}
}

func (m *Metrics) incPublished(ev Event) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(ev.Resource, string(ev.Type)).Inc()
}

func (m *Metrics) addDeliveries(n int) {
	if m == nil {
		return
	}
	m.Deliveries.Add(float64(n))
}

func (m *Metrics) incDeliveryFailures() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

func (m *Metrics) setSubscribers(n int) {
	if m == nil {
		return
	}
	m.ActiveSubscribers.Set(float64(n))
}

func (m *Metrics) incSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}
