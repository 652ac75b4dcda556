package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route pattern
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamification_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress tracks requests being served
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gamification_http_requests_in_progress",
			Help: "Number of HTTP requests in progress",
		},
		[]string{"method"},
	)

	BadgeEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_badge_evaluations_total",
			Help: "Badge evaluations by outcome (noop, awarded, skipped, error)",
		},
		[]string{"outcome"},
	)

	BadgeEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamification_badge_evaluation_duration_seconds",
			Help:    "Time spent evaluating one user's badges, lock wait included",
			Buckets: prometheus.DefBuckets,
		},
	)

	BadgesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_badges_awarded_total",
			Help: "Badges granted, by badge id",
		},
		[]string{"badge"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_notifications_created_total",
			Help: "Notifications written, by type",
		},
		[]string{"type"},
	)

	RescanQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_badge_rescan_queued_total",
			Help: "User ids pushed onto the badge rescan queue",
		},
	)
)

const (
	OutcomeNoop    = "noop"
	OutcomeAwarded = "awarded"
	OutcomeSkipped = "skipped" // unknown user
	OutcomeError   = "error"
)

func ObserveBadgeEvaluation(outcome string, elapsed time.Duration) {
	BadgeEvaluations.WithLabelValues(outcome).Inc()
	BadgeEvaluationDuration.Observe(elapsed.Seconds())
}
