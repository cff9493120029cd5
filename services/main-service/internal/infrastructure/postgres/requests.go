package postgres

import (
	"context"
	"fmt"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created`

func scanRequest(s scanner) (domain.Request, error) {
	var (
		r      domain.Request
		status string
	)
	if err := s.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &r.Created); err != nil {
		return domain.Request{}, err
	}
	r.Status = domain.RequestStatus(status)
	if !r.Status.Valid() {
		return domain.Request{}, fmt.Errorf("participation request %d: unknown status %q", r.ID, status)
	}
	return r, nil
}

// CreateRequest relies on the partial unique index over active requests, so a
// racing duplicate surfaces as ErrUniqueViolation.
func (q *queries) CreateRequest(ctx context.Context, r domain.Request) (domain.Request, error) {
	out, err := scanRequest(q.db.QueryRow(ctx, `
		INSERT INTO participation_requests (event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING `+requestColumns,
		r.EventID, r.RequesterID, string(r.Status), r.Created))
	if err != nil {
		return domain.Request{}, mapErr(err)
	}
	return out, nil
}

func (q *queries) GetRequest(ctx context.Context, id int64) (domain.Request, error) {
	r, err := scanRequest(q.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM participation_requests WHERE id = $1`, id))
	if err != nil {
		return domain.Request{}, mapErr(err)
	}
	return r, nil
}

func (q *queries) GetRequestsForUpdate(ctx context.Context, ids []int64) ([]domain.Request, error) {
	if len(ids) == 0 {
		return []domain.Request{}, nil
	}
	return q.listRequests(ctx, `
		SELECT `+requestColumns+`
		FROM participation_requests
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
}

func (q *queries) UpdateRequestStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, `UPDATE participation_requests SET status = $2 WHERE id = ANY($1)`, ids, string(status))
	return mapErr(err)
}

func (q *queries) HasActiveRequest(ctx context.Context, requesterID, eventID int64) (bool, error) {
	return q.exists(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM participation_requests
			WHERE requester_id = $1 AND event_id = $2 AND status <> 'CANCELED'
		)
	`, requesterID, eventID)
}

func (q *queries) HasConfirmedRequest(ctx context.Context, requesterID, eventID int64) (bool, error) {
	return q.exists(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM participation_requests
			WHERE requester_id = $1 AND event_id = $2 AND status = 'CONFIRMED'
		)
	`, requesterID, eventID)
}

func (q *queries) HasConfirmedRequestForInitiator(ctx context.Context, requesterID, initiatorID int64) (bool, error) {
	return q.exists(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM participation_requests r
			JOIN events e ON e.id = r.event_id
			WHERE r.requester_id = $1 AND e.initiator_id = $2 AND r.status = 'CONFIRMED'
		)
	`, requesterID, initiatorID)
}

func (q *queries) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]domain.Request, error) {
	return q.listRequests(ctx, `
		SELECT `+requestColumns+` FROM participation_requests WHERE requester_id = $1 ORDER BY id
	`, requesterID)
}

func (q *queries) ListRequestsByEvent(ctx context.Context, eventID int64, status domain.RequestStatus) ([]domain.Request, error) {
	return q.listRequests(ctx, `
		SELECT `+requestColumns+`
		FROM participation_requests
		WHERE event_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY id
	`, eventID, string(status))
}

func (q *queries) exists(ctx context.Context, sql string, args ...any) (bool, error) {
	var ok bool
	if err := q.db.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (q *queries) listRequests(ctx context.Context, sql string, args ...any) ([]domain.Request, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
