package domain

import (
	"net"
	"strings"
	"time"
)

// TimeLayout is the wire format shared with the main service.
const TimeLayout = "2006-01-02 15:04:05"

// Hit is one recorded visit of a uri by a client ip.
type Hit struct {
	ID        int64
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

func (h Hit) Validate() error {
	if strings.TrimSpace(h.App) == "" {
		return ErrInvalid("app is required")
	}
	if strings.TrimSpace(h.URI) == "" {
		return ErrInvalid("uri is required")
	}
	if net.ParseIP(strings.TrimSpace(h.IP)) == nil {
		return ErrInvalidMeta("ip is not a valid address", map[string]string{"ip": h.IP})
	}
	return nil
}

// ViewStats is the hit count of one (app, uri) pair.
type ViewStats struct {
	App  string
	URI  string
	Hits int64
}
