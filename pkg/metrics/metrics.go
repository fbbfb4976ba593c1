package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values used with SessionOperations.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultJoined  = "joined"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "authwidget", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "authwidget", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	SessionOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "authwidget", Name: "session_operations_total", Help: "Session controller operations by operation and result."},
		[]string{"operation", "result"},
	)
	ListenerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "authwidget", Name: "listener_panics_total", Help: "Auth listeners that panicked during publish."},
	)
	RefreshScheduled = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "authwidget", Name: "refresh_scheduled", Help: "1 when a proactive refresh timer is pending, 0 otherwise."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(SessionOperations)
	reg.MustRegister(ListenerPanics)
	reg.MustRegister(RefreshScheduled)
}
