package metrics

import (
	"net/http"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	admissionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_admission_decisions_total",
			Help: "Admission control decisions for new participation requests",
		},
		[]string{"decision"},
	)

	requestModerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_request_moderation_total",
			Help: "Requests moved by organizer moderation, including auto-rejections",
		},
		[]string{"status"},
	)

	ratingMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_rating_mutations_total",
			Help: "Rating ledger mutations",
		},
		[]string{"target", "op"},
	)

	statsClientErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_stats_client_errors_total",
			Help: "Failed calls to the statistics collector",
		},
		[]string{"op"},
	)
)

// RecordAdmission counts a committed admission decision.
func RecordAdmission(d domain.Decision) {
	admissionDecisionsTotal.WithLabelValues(string(d)).Inc()
}

// RecordModeration counts requests moved to status by a bulk update.
func RecordModeration(status domain.RequestStatus, n int) {
	if n <= 0 {
		return
	}
	requestModerationTotal.WithLabelValues(string(status)).Add(float64(n))
}

// RecordRating counts an add/remove on the given target kind.
func RecordRating(kind domain.TargetKind, op string) {
	ratingMutationsTotal.WithLabelValues(string(kind), op).Inc()
}

// RecordStatsError counts a failed hit/stats call.
func RecordStatsError(op string) {
	statsClientErrorsTotal.WithLabelValues(op).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
