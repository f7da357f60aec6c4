package metrics

import (
	"ubot-platform/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		sessionTransitionsTotal,
		deploymentsTotal,
	)
}

var (
	sessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session state transitions, labeled by target status and result.",
		},
		[]string{"to", "result"}, // to: 'pairing', 'pairing_requested', 'deployed'
	)

	deploymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deployments_started_total",
			Help: "Total number of deployments started.",
		},
	)
)

func IncSessionTransition(to model.SessionStatus, result string) {
	sessionTransitionsTotal.WithLabelValues(string(to), norm(result)).Inc()
	if to == model.SessionStatusDeployed && result == "ok" {
		deploymentsTotal.Inc()
	}
}
