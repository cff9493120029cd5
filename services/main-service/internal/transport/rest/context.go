package rest

import (
	"net"
	"net/http"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/service"
)

// clientIP keeps it simple: RemoteAddr host part.
// X-Forwarded-For is not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// visitFrom describes the current request for the view counter.
func visitFrom(r *http.Request) service.Visit {
	return service.Visit{URI: r.URL.Path, IP: clientIP(r)}
}
