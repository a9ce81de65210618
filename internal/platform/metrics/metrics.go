package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics methods are safe to call on a nil receiver.
type Metrics struct {
	FetchesTotal          *prometheus.CounterVec
	FetchDuration         *prometheus.HistogramVec
	RateUpdatesTotal      *prometheus.CounterVec
	UpdateCyclesTotal     *prometheus.CounterVec
	PaymentsRecordedTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "multicurrency_rate_fetches_total",
			Help: "Rate provider fetches by provider and outcome",
		}, []string{"provider", "outcome"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "multicurrency_rate_fetch_duration_seconds",
			Help:    "Rate provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		RateUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "multicurrency_rate_updates_total",
			Help: "Rate update attempts by outcome",
		}, []string{"outcome"}),
		UpdateCyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "multicurrency_update_cycles_total",
			Help: "Scheduler update cycles by trigger and final state",
		}, []string{"trigger", "state"}),
		PaymentsRecordedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "multicurrency_payments_recorded_total",
			Help: "Recorded currency payments by currency",
		}, []string{"currency"}),
	}
}

func (m *Metrics) ObserveFetch(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(provider, outcome).Inc()
	m.FetchDuration.WithLabelValues(provider).Observe(took.Seconds())
}

func (m *Metrics) RateUpdate(outcome string) {
	if m == nil {
		return
	}
	m.RateUpdatesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) UpdateCycle(trigger, state string) {
	if m == nil {
		return
	}
	m.UpdateCyclesTotal.WithLabelValues(trigger, state).Inc()
}

func (m *Metrics) PaymentRecorded(currency string) {
	if m == nil {
		return
	}
	m.PaymentsRecordedTotal.WithLabelValues(currency).Inc()
}
