package dto

import "github.com/baechuer/explore-with-me/services/stats-service/internal/domain"

func FromHit(h domain.Hit) HitResp {
	return HitResp{
		ID:        h.ID,
		App:       h.App,
		URI:       h.URI,
		IP:        h.IP,
		Timestamp: h.Timestamp.UTC().Format(domain.TimeLayout),
	}
}

func FromViewStats(in []domain.ViewStats) []ViewStatsResp {
	out := make([]ViewStatsResp, 0, len(in))
	for _, s := range in {
		out = append(out, ViewStatsResp{App: s.App, URI: s.URI, Hits: s.Hits})
	}
	return out
}
