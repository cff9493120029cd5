package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/handlers"
	mw "github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/middleware"
)

type RateLimit struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

func New(h *handlers.StatsHandler, z *handlers.HealthHandler, rl RateLimit) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(mw.AccessLog)

	r.Get("/healthz", z.Healthz)

	r.Group(func(r chi.Router) {
		if rl.Enabled {
			r.Use(httprate.LimitByIP(rl.Limit, rl.Window))
		}
		r.Post("/hit", h.Hit)
		r.Get("/stats", h.Stats)
	})

	return r
}
