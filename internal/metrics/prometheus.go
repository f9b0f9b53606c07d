// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the promotion board.
var (
	// Counters.
	ApplicationsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "badge_applications_submitted_total",
			Help: "Total number of badge applications submitted for review",
		},
	)

	ApplicationsReviewedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badge_applications_reviewed_total",
			Help: "Total number of badge application review decisions",
		},
		[]string{"decision"},
	)

	PromotionsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promotions_submitted_total",
			Help: "Total number of promotions submitted for decision",
		},
	)

	PromotionsDecidedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotions_decided_total",
			Help: "Total number of promotion decisions recorded",
		},
		[]string{"decision"},
	)

	ReservationConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_conflicts_total",
			Help: "Total number of reservation attempts rejected because the badge was already held",
		},
	)

	// Gauges.
	ActiveReservations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_reservations",
			Help: "Current number of non-consumed reservations",
		},
	)

	// Histograms.
	ValidationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promotion_validation_duration_seconds",
			Help:    "Time spent computing a promotion eligibility preview",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

// RecordApplicationSubmitted records a badge application submission.
func RecordApplicationSubmitted() {
	ApplicationsSubmittedTotal.Inc()
}

// RecordApplicationReviewed records a badge application review decision.
func RecordApplicationReviewed(decision string) {
	ApplicationsReviewedTotal.WithLabelValues(decision).Inc()
}

// RecordPromotionSubmitted records a promotion submission.
func RecordPromotionSubmitted() {
	PromotionsSubmittedTotal.Inc()
}

// RecordPromotionDecided records a promotion decision.
func RecordPromotionDecided(decision string) {
	PromotionsDecidedTotal.WithLabelValues(decision).Inc()
}

// RecordReservationConflict records a rejected reservation attempt.
func RecordReservationConflict() {
	ReservationConflictsTotal.Inc()
}

// SetActiveReservations updates the active reservation gauge.
func SetActiveReservations(n float64) {
	ActiveReservations.Set(n)
}

// ObserveValidationDuration records how long an eligibility preview took.
func ObserveValidationDuration(seconds float64) {
	ValidationDurationSeconds.Observe(seconds)
}
