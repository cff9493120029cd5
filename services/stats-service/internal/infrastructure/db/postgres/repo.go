package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Save(ctx context.Context, h domain.Hit) (domain.Hit, error) {
	row := r.db.QueryRowContext(ctx, insertHitSQL, h.App, h.URI, h.IP, h.Timestamp)
	if err := row.Scan(&h.ID); err != nil {
		return domain.Hit{}, fmt.Errorf("insert hit: %w", err)
	}
	return h, nil
}

func (r *Repo) ListInRange(ctx context.Context, start, end time.Time, uris []string) ([]domain.Hit, error) {
	if uris == nil {
		uris = []string{}
	}
	rows, err := r.db.QueryContext(ctx, listHitsInRangeSQL, start, end, pq.Array(uris))
	if err != nil {
		return nil, fmt.Errorf("list hits: %w", err)
	}
	defer rows.Close()

	var out []domain.Hit
	for rows.Next() {
		var h domain.Hit
		if err := rows.Scan(&h.ID, &h.App, &h.URI, &h.IP, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Timestamp = h.Timestamp.UTC()
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hits: %w", err)
	}
	return out, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
