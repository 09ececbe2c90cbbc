package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the contract did, next to the HTTP metrics of the echo middleware.
type Metrics struct {
	pubsub *Pubsub

	mEvents          *prometheus.CounterVec
	mReceiptFailures prometheus.Counter
	mSubscribers     prometheus.Gauge
}

func NewMetrics(pubsub *Pubsub) *Metrics {
	return &Metrics{
		pubsub: pubsub,
		mEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoiceflow_events_total",
			Help: "Events emitted by committed calls.",
		}, []string{"type"}),
		mReceiptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invoiceflow_receipt_failures_total",
			Help: "Payments whose receipt could not be minted.",
		}),
		mSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "invoiceflow_event_subscribers",
			Help: "In-process event subscribers.",
		}),
	}
}

func (m *Metrics) eventCommitted(eventType string) {
	if m == nil {
		return
	}
	m.mEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) receiptFailed() {
	if m == nil {
		return
	}
	m.mReceiptFailures.Inc()
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.mEvents.Describe(ch)
	m.mReceiptFailures.Describe(ch)
	m.mSubscribers.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	if m.pubsub != nil {
		m.mSubscribers.Set(float64(m.pubsub.Count()))
	}
	m.mEvents.Collect(ch)
	m.mReceiptFailures.Collect(ch)
	m.mSubscribers.Collect(ch)
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
