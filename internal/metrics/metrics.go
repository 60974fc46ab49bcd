package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeOptimistic = "optimistic" // restore kept the cached session after a failed refresh
	OutcomeSignedOut  = "signed_out"
)

// Metrics provides observability for the session lifecycle.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Logins           *prometheus.CounterVec
	Refreshes        *prometheus.CounterVec
	Restores         *prometheus.CounterVec
	Logouts          prometheus.Counter
	ExchangeDuration *prometheus.HistogramVec
}

// New creates the session metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_refreshes_total",
			Help: "Token refresh attempts by outcome",
		}, []string{"outcome"}),
		Restores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_restores_total",
			Help: "Startup session restorations by outcome",
		}, []string{"outcome"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_logouts_total",
			Help: "Explicit logouts",
		}),
		ExchangeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_gateway_exchange_duration_seconds",
			Help:    "Duration of auth gateway exchanges",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
	}
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Restore(outcome string) {
	if m == nil {
		return
	}
	m.Restores.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

// ObserveExchange records the duration of a gateway exchange.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveExchange(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ExchangeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
