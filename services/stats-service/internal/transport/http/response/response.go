package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/context"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/logger"
)

type Envelope struct {
	Data any `json:"data"`
}

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// JSON writes v as is. Stats payloads go out unwrapped so existing
// collectors can read them.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, Envelope{Data: v})
}

func Fail(w http.ResponseWriter, status int, code, message string, meta map[string]string, requestID string) {
	JSON(w, status, ErrorBody{Error: ErrorPayload{
		Code:      code,
		Message:   message,
		Meta:      meta,
		RequestID: requestID,
	}})
}

func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := appCtx.GetRequestID(r.Context())

	var ae *domain.AppError
	if errors.As(err, &ae) {
		Fail(w, statusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Meta, requestID)
		return
	}

	// keep details in logs only
	logger.WithCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, "internal_error", "internal error", nil, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeInvalid:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
