package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "crowdup", Name: "auth_events_total", Help: "Number of session operations by operation and result."},
		[]string{"operation", "result"},
	)
	OriginRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "crowdup", Name: "origin_rejected_total", Help: "Number of mutating requests rejected by the origin guard."},
	)
)

// AuthEvent counts one session operation outcome (success, rejected or error).
func AuthEvent(operation, result string) {
	AuthEvents.WithLabelValues(operation, result).Inc()
}

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthEvents)
	reg.MustRegister(OriginRejected)
}
