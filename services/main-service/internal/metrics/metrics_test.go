package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAdmission(t *testing.T) {
	before := testutil.ToFloat64(admissionDecisionsTotal.WithLabelValues("queue"))
	RecordAdmission(domain.DecisionQueue)
	assert.Equal(t, before+1, testutil.ToFloat64(admissionDecisionsTotal.WithLabelValues("queue")))
}

func TestRecordModeration_IgnoresEmpty(t *testing.T) {
	before := testutil.ToFloat64(requestModerationTotal.WithLabelValues("REJECTED"))
	RecordModeration(domain.RequestRejected, 0)
	RecordModeration(domain.RequestRejected, 3)
	assert.Equal(t, before+3, testutil.ToFloat64(requestModerationTotal.WithLabelValues("REJECTED")))
}

func TestHandler_ExposesCounters(t *testing.T) {
	RecordRating(domain.TargetEvent, "add")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "ewm_rating_mutations_total"))
}
