package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appCtx "github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/context"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	t.Run("keeps_incoming_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "abc")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", rr.Header().Get(HeaderXRequestID))
	})

	t.Run("generates_when_missing_or_oversized", func(t *testing.T) {
		for _, in := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderXRequestID, in)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Len(t, seen, 36)
			assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))
		}
	})
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
