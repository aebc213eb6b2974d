package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Operations counts attendance manager outcomes by operation and result.
	Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asistencias_operaciones_total",
		Help: "Attendance operations by operation and result.",
	}, []string{"operacion", "resultado"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "asistencias_http_request_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(Operations, RequestDuration)
}
