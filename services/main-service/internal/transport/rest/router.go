package rest

import (
	"net/http"

	"github.com/baechuer/explore-with-me/services/main-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Handler   *Handler
	Limiter   RateLimiter
	RateLimit RateLimitConfig
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.RateLimit.Enabled && d.Limiter == nil {
		panic("rest.NewRouter: rate limit enabled without a limiter")
	}
	h := d.Handler

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	r.Use(SecurityHeaders)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(d.Limiter, d.RateLimit))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/users", h.CreateUser)
			r.Get("/users", h.ListUsers)
			r.Delete("/users/{userId}", h.DeleteUser)

			r.Post("/categories", h.CreateCategory)
			r.Patch("/categories/{catId}", h.RenameCategory)
			r.Delete("/categories/{catId}", h.DeleteCategory)

			r.Get("/events", h.SearchAdminEvents)
			r.Patch("/events/{eventId}", h.UpdateEventByAdmin)

			r.Post("/compilations", h.CreateCompilation)
			r.Patch("/compilations/{compId}", h.UpdateCompilation)
			r.Delete("/compilations/{compId}", h.DeleteCompilation)
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Post("/events", h.CreateEvent)
			r.Get("/events", h.ListUserEvents)
			r.Get("/events/{eventId}", h.GetUserEvent)
			r.Patch("/events/{eventId}", h.UpdateUserEvent)
			r.Get("/events/{eventId}/requests", h.GetEventParticipants)
			r.Patch("/events/{eventId}/requests", h.UpdateRequestStatuses)

			r.Get("/requests", h.ListUserRequests)
			r.Post("/requests", h.AddRequest)
			r.Patch("/requests/{requestId}/cancel", h.CancelRequest)

			r.Post("/ratings/events/{eventId}", h.RateEvent)
			r.Delete("/ratings/events/{eventId}", h.UnrateEvent)
			r.Post("/ratings/initiators/{initiatorId}", h.RateInitiator)
			r.Delete("/ratings/initiators/{initiatorId}", h.UnrateInitiator)
		})

		r.Get("/events", h.ListPublishedEvents)
		r.Get("/events/{id}", h.GetPublishedEvent)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{catId}", h.GetCategory)
		r.Get("/compilations", h.ListCompilations)
		r.Get("/compilations/{compId}", h.GetCompilation)
	})

	return r
}
