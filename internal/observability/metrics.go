package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_service",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted to Postgres.",
	})
	loginCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_service",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts grouped by outcome.",
	}, []string{"outcome"})
	statsRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workout_service",
		Subsystem: "stats",
		Name:      "request_duration_seconds",
		Help:      "Time spent fetching history and computing derived statistics.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, loginCounter, statsRequestDuration)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordLogin counts a login attempt. Outcome is "ok", "rejected", or "error".
func RecordLogin(outcome string) {
	loginCounter.WithLabelValues(outcome).Inc()
}

// ObserveStatsRequest records how long a statistics request took end to end.
func ObserveStatsRequest(d time.Duration) {
	statsRequestDuration.Observe(d.Seconds())
}
