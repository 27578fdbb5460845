package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics counts auth operations and wizard transitions, exposed on /metrics.
type metrics struct {
	authOps           *prometheus.CounterVec
	wizardTransitions *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *metrics
)

// newMetrics returns the process-wide metrics. Collectors register with the
// default registry exactly once, so constructing multiple servers is safe.
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		sharedMetrics = registerMetrics()
	})
	return sharedMetrics
}

func registerMetrics() *metrics {
	return &metrics{
		authOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spotdesk_auth_operations_total",
			Help: "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		wizardTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spotdesk_booking_wizard_transitions_total",
			Help: "Booking wizard transitions by step.",
		}, []string{"step"}),
	}
}

func (m *metrics) authOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.authOps.WithLabelValues(operation, outcome).Inc()
}

func (m *metrics) wizardStep(step string) {
	m.wizardTransitions.WithLabelValues(step).Inc()
}
