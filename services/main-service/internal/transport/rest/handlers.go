package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/baechuer/explore-with-me/services/main-service/internal/service"
	"github.com/baechuer/explore-with-me/services/main-service/internal/transport/rest/response"
	"github.com/go-chi/render"
)

// Pinger is a dependency probed by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users        *service.UserService
	Categories   *service.CategoryService
	Events       *service.EventService
	Compilations *service.CompilationService
	Requests     *service.RequestService
	Ratings      *service.RatingService
}

type Handler struct {
	users        *service.UserService
	categories   *service.CategoryService
	events       *service.EventService
	compilations *service.CompilationService
	requests     *service.RequestService
	ratings      *service.RatingService
	health       map[string]Pinger
}

func NewHandler(s Services, health map[string]Pinger) *Handler {
	if s.Users == nil || s.Categories == nil || s.Events == nil ||
		s.Compilations == nil || s.Requests == nil || s.Ratings == nil {
		panic("rest.NewHandler: nil service")
	}
	return &Handler{
		users:        s.Users,
		categories:   s.Categories,
		events:       s.Events,
		compilations: s.Compilations,
		requests:     s.Requests,
		ratings:      s.Ratings,
		health:       health,
	}
}

// Healthz reports 503 when any dependency fails its ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.health))
	status := http.StatusOK
	for name, p := range h.health {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	response.Data(w, status, map[string]any{"checks": checks})
}

// decodeBody decodes JSON into dst and runs its validate tags.
func decodeBody(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var ae *domain.AppError
		if errors.As(err, &ae) {
			return err
		}
		return domain.Invalid(domain.ReasonValidation, "invalid body")
	}
	return validateRequest(dst)
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		fail(w, r, response.StatusFor(ae.Code), string(ae.Code), ae.Reason, ae.Message)
		return
	}
	// keep details in logs only
	logger.WithCtx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("unhandled error")
	fail(w, r, http.StatusInternalServerError, "internal", "", "internal error")
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, reason, message string) {
	response.Fail(w, status, response.ErrorPayload{
		Code:      code,
		Reason:    reason,
		Message:   message,
		RequestID: appCtx.TraceID(r.Context()),
	})
}
