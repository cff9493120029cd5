package postgres

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

// Both ledgers share the ratings table: exactly one of event_id and
// initiator_id is set, and each has its own partial unique index per rater.

func targetColumns(t domain.RatingTarget) (eventID, initiatorID *int64) {
	id := t.ID
	if t.Kind == domain.TargetInitiator {
		return nil, &id
	}
	return &id, nil
}

func (q *queries) CreateRating(ctx context.Context, r domain.Rating) (domain.Rating, error) {
	eventID, initiatorID := targetColumns(r.Target)
	err := q.db.QueryRow(ctx, `
		INSERT INTO ratings (rater_id, event_id, initiator_id, is_like)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, r.RaterID, eventID, initiatorID, r.Like).Scan(&r.ID)
	if err != nil {
		return domain.Rating{}, mapErr(err)
	}
	return r, nil
}

func (q *queries) GetRating(ctx context.Context, raterID int64, target domain.RatingTarget) (domain.Rating, error) {
	col := "event_id"
	if target.Kind == domain.TargetInitiator {
		col = "initiator_id"
	}
	r := domain.Rating{RaterID: raterID, Target: target}
	err := q.db.QueryRow(ctx, `
		SELECT id, is_like FROM ratings WHERE rater_id = $1 AND `+col+` = $2
	`, raterID, target.ID).Scan(&r.ID, &r.Like)
	if err != nil {
		return domain.Rating{}, mapErr(err)
	}
	return r, nil
}

func (q *queries) DeleteRating(ctx context.Context, id int64) error {
	return mustAffect(q.db.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id))
}
