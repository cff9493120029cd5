package stats

import (
	"context"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// HitRepo persists raw hits. ListInRange returns hits with start <= ts <= end,
// restricted to uris when the slice is non-empty, ordered by timestamp then id.
type HitRepo interface {
	Save(ctx context.Context, h domain.Hit) (domain.Hit, error)
	ListInRange(ctx context.Context, start, end time.Time, uris []string) ([]domain.Hit, error)
}
