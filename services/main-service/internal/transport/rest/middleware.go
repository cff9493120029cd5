package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
)

// RateLimiter is satisfied by the redis cache.
type RateLimiter interface {
	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// RateLimitMiddleware applies a fixed window per client IP. Limiter errors let the request through.
func RateLimitMiddleware(l RateLimiter, cfg RateLimitConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := l.AllowRequest(r.Context(), clientIP(r), cfg.Limit, cfg.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				fail(w, r, http.StatusTooManyRequests, "rate_limited", "", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// JSON-only API
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
		next.ServeHTTP(w, r)
	})
}
