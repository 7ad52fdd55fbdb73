// Package metrics registers the service's Prometheus collectors with the
// default registry; promhttp.Handler on the metrics port serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calculation modes.
const (
	ModeStrict  = "strict"
	ModePreview = "preview"
)

// Calculation outcomes.
const (
	OutcomeEligible    = "eligible"
	OutcomeNotEligible = "not_eligible"
	OutcomeRejected    = "rejected"
	OutcomeMalformed   = "malformed"
	OutcomeCancelled   = "cancelled"
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qualify_calculations_total",
			Help: "Total number of calculations by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qualify_calculation_duration_seconds",
			Help:    "Duration of a calculation in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"mode"},
	)

	TotalPoints = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qualify_total_points",
			Help:    "Distribution of computed total points",
			Buckets: []float64{50, 100, 150, 200, 250, 300, 350, 400, 500, 750, 1000},
		},
		[]string{"mode"},
	)

	DraftsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qualify_drafts_saved_total",
			Help: "Total number of drafts saved",
		},
	)
)

// Outcome maps an eligibility verdict to its outcome label.
func Outcome(eligible bool) string {
	if eligible {
		return OutcomeEligible
	}
	return OutcomeNotEligible
}
