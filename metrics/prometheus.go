package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TotalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	MonitorCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_cycles_total",
			Help: "Total number of completed monitoring cycles",
		},
	)

	MonitorCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "monitor_cycle_duration_seconds",
			Help:    "Duration of one collect-evaluate-dispatch cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	AlertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_fired_total",
			Help: "Alerts that passed the cooldown gate and were dispatched",
		},
		[]string{"severity"},
	)

	AlertsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_suppressed_total",
			Help: "Alert candidates suppressed by an active cooldown",
		},
	)

	NotifyErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_notify_errors_total",
			Help: "Channel send failures during alert dispatch",
		},
		[]string{"channel"},
	)

	SnapshotsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metric_snapshots_stored_total",
			Help: "Metric snapshots persisted to the backend",
		},
	)
)

func init() {
	prometheus.MustRegister(TotalRequests)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveRequests)
	prometheus.MustRegister(MonitorCycles)
	prometheus.MustRegister(MonitorCycleDuration)
	prometheus.MustRegister(AlertsFired)
	prometheus.MustRegister(AlertsSuppressed)
	prometheus.MustRegister(NotifyErrors)
	prometheus.MustRegister(SnapshotsStored)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ActiveRequests.WithLabelValues(r.Method, r.URL.Path).Inc()

		rw := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(rw, r)

		ActiveRequests.WithLabelValues(r.Method, r.URL.Path).Dec()

		duration := time.Since(start).Seconds()
		RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		TotalRequests.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.status)).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func ObserveCycle(d time.Duration) {
	MonitorCycles.Inc()
	MonitorCycleDuration.Observe(d.Seconds())
}

func IncrementAlertsFired(severity string) {
	AlertsFired.WithLabelValues(severity).Inc()
}

func IncrementAlertsSuppressed() {
	AlertsSuppressed.Inc()
}

func IncrementNotifyErrors(channel string) {
	NotifyErrors.WithLabelValues(channel).Inc()
}

func IncrementSnapshotsStored() {
	SnapshotsStored.Inc()
}
