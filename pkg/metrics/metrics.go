// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skill_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skill_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ActivitiesTotal tracks inbound activities by type.
	ActivitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skill_activities_total",
			Help: "Inbound activities routed, by activity type",
		},
		[]string{"type"},
	)

	// TurnsTotal tracks finished turns by outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skill_turns_total",
			Help: "Dialog turns finished, by outcome",
		},
		[]string{"status"},
	)

	// TurnFailuresTotal tracks turns that ended in the error handler.
	TurnFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skill_turn_failures_total",
			Help: "Turns that failed and were reported to the caller",
		},
	)

	// PromptsTotal tracks prompts sent to the user by kind.
	PromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skill_prompts_total",
			Help: "Prompts sent while filling slots, by prompt kind",
		},
		[]string{"kind"},
	)

	// BookingsTotal tracks booking dialog outcomes.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skill_bookings_total",
			Help: "Booking dialogs finished, by outcome",
		},
		[]string{"outcome"},
	)

	// RecognitionDuration tracks intent recognition call duration.
	RecognitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skill_recognition_duration_seconds",
			Help:    "Intent recognition call duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRecognition records metrics for an intent recognition call.
func RecordRecognition(provider, status string, duration float64) {
	RecognitionDuration.WithLabelValues(provider, status).Observe(duration)
}
