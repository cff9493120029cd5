package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not_found", domain.ErrNotFound("hit missing"), http.StatusNotFound, "not_found"},
		{"invalid", domain.ErrInvalid("bad window"), http.StatusBadRequest, "invalid"},
		{"unknown_code", &domain.AppError{Code: "weird"}, http.StatusInternalServerError, "weird"},
		{"generic_error", errors.New("db crash"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			req = req.WithContext(appCtx.WithRequestID(context.Background(), "rid-7"))

			Err(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "rid-7", body.Error.RequestID)
		})
	}

	t.Run("generic_error_hides_details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Err(rr, httptest.NewRequest(http.MethodGet, "/stats", nil), errors.New("password=hunter2"))
		assert.NotContains(t, rr.Body.String(), "hunter2")
	})

	t.Run("meta_is_forwarded", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Err(rr, httptest.NewRequest(http.MethodGet, "/stats", nil),
			domain.ErrInvalidMeta("bad", map[string]string{"field": "start"}))

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "start", body.Error.Meta["field"])
	})
}

func TestJSON_WritesPlainPayload(t *testing.T) {
	rr := httptest.NewRecorder()

	JSON(rr, http.StatusOK, []map[string]any{{"uri": "/events/1", "hits": 2}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"uri":"/events/1","hits":2}]`, rr.Body.String())
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()

	Data(rr, http.StatusOK, map[string]string{"status": "ok"})

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	dataMap := env.Data.(map[string]any)
	assert.Equal(t, "ok", dataMap["status"])
}
