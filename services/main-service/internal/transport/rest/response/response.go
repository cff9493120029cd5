package response

import (
	"encoding/json"
	"net/http"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is {"error":{"code","reason","message","request_id"}}.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps payload in the success envelope with an explicit status.
func Data(w http.ResponseWriter, status int, payload any) {
	write(w, status, Envelope{Data: payload})
}

func OK(w http.ResponseWriter, payload any)      { Data(w, http.StatusOK, payload) }
func Created(w http.ResponseWriter, payload any) { Data(w, http.StatusCreated, payload) }

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Fail(w http.ResponseWriter, status int, p ErrorPayload) {
	write(w, status, ErrorBody{Error: p})
}

// StatusFor maps an AppError code onto its HTTP status. Unknown codes are 500.
func StatusFor(code domain.ErrCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeNotAllowed:
		return http.StatusForbidden
	case domain.CodeInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
