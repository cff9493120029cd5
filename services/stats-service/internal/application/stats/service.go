package stats

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/logger"
)

type Service struct {
	repo  HitRepo
	clock Clock
}

func New(repo HitRepo, clock Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

// Hit records one visit. A zero timestamp is stamped with the service clock.
func (s *Service) Hit(ctx context.Context, h domain.Hit) (domain.Hit, error) {
	h.App = strings.TrimSpace(h.App)
	h.URI = strings.TrimSpace(h.URI)
	h.IP = strings.TrimSpace(h.IP)
	if err := h.Validate(); err != nil {
		return domain.Hit{}, err
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = s.clock.Now()
	}
	h.Timestamp = h.Timestamp.UTC().Truncate(time.Second)

	saved, err := s.repo.Save(ctx, h)
	if err != nil {
		return domain.Hit{}, err
	}
	logger.WithCtx(ctx).Debug().
		Int64("hit_id", saved.ID).
		Str("app", saved.App).
		Str("uri", saved.URI).
		Msg("hit recorded")
	return saved, nil
}

func (s *Service) Stats(ctx context.Context, q StatsQuery) ([]domain.ViewStats, error) {
	if q.Start.After(q.End) {
		return nil, domain.ErrInvalidMeta("start must not be after end", map[string]string{
			"start": q.Start.Format(domain.TimeLayout),
			"end":   q.End.Format(domain.TimeLayout),
		})
	}

	uris := make([]string, 0, len(q.URIs))
	for _, u := range q.URIs {
		if u = strings.TrimSpace(u); u != "" {
			uris = append(uris, u)
		}
	}

	hits, err := s.repo.ListInRange(ctx, q.Start, q.End, uris)
	if err != nil {
		return nil, err
	}
	return Aggregate(hits, q.Unique), nil
}
