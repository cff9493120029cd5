package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/logger"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("healthz: postgres ping failed")
		response.Data(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "postgres": "down"})
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"status": "ok", "postgres": "up"})
}
