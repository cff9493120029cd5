package dto

import (
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

type HitReq struct {
	App string `json:"app" validate:"required,max=255"`
	URI string `json:"uri" validate:"required,max=2048"`
	IP  string `json:"ip" validate:"required,ip"`
	// empty means "now"
	Timestamp string `json:"timestamp"`
}

func (r HitReq) ToDomain() (domain.Hit, error) {
	h := domain.Hit{App: r.App, URI: r.URI, IP: r.IP}
	if ts := strings.TrimSpace(r.Timestamp); ts != "" {
		t, err := ParseTime(ts)
		if err != nil {
			return domain.Hit{}, domain.ErrInvalidMeta("timestamp must use layout "+domain.TimeLayout,
				map[string]string{"field": "timestamp"})
		}
		h.Timestamp = t
	}
	return h, nil
}

type HitResp struct {
	ID        int64  `json:"id"`
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type ViewStatsResp struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(domain.TimeLayout, s, time.UTC)
}
