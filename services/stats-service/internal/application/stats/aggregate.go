package stats

import (
	"sort"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

type groupKey struct {
	app string
	uri string
}

// Aggregate counts hits per (app, uri). With unique set, only the earliest hit
// of each ip in the window is counted. The result is sorted by hits desc, then
// uri and app asc, and is never nil.
func Aggregate(hits []domain.Hit, unique bool) []domain.ViewStats {
	ordered := make([]domain.Hit, len(hits))
	copy(ordered, hits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].ID < ordered[j].ID
	})

	seenIP := make(map[string]struct{})
	counts := make(map[groupKey]int64)
	for _, h := range ordered {
		if unique {
			if _, ok := seenIP[h.IP]; ok {
				continue
			}
			seenIP[h.IP] = struct{}{}
		}
		counts[groupKey{app: h.App, uri: h.URI}]++
	}

	out := make([]domain.ViewStats, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.ViewStats{App: k.app, URI: k.uri, Hits: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		if out[i].URI != out[j].URI {
			return out[i].URI < out[j].URI
		}
		return out[i].App < out[j].App
	})
	return out
}
