package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

const eventColumns = `
	id, title, annotation, description, category_id, initiator_id, lat, lon,
	event_date, created_on, published_on, paid, participant_limit, request_moderation,
	state, confirmed_requests, rating`

func scanEvent(s scanner) (domain.Event, error) {
	var (
		e     domain.Event
		state string
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.EventDate, &e.CreatedOn, &e.PublishedOn,
		&e.Paid, &e.ParticipantLimit, &e.RequestModeration, &state,
		&e.ConfirmedRequests, &e.Rating,
	)
	e.State = domain.EventState(state)
	return e, err
}

func (q *queries) CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO events (
			title, annotation, description, category_id, initiator_id, lat, lon,
			event_date, created_on, paid, participant_limit, request_moderation, state
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+eventColumns,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.Location.Lat, e.Location.Lon,
		e.EventDate, e.CreatedOn, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State),
	)
	out, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, mapErr(err)
	}
	return out, nil
}

func (q *queries) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return domain.Event{}, mapErr(err)
	}
	return e, nil
}

func (q *queries) GetEventForUpdate(ctx context.Context, id int64) (domain.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.Event{}, mapErr(err)
	}
	return e, nil
}

// UpdateEvent writes the editable fields and state. The counters are left to
// AddConfirmed and AdjustEventRating.
func (q *queries) UpdateEvent(ctx context.Context, e domain.Event) error {
	return mustAffect(q.db.Exec(ctx, `
		UPDATE events
		SET title = $2,
		    annotation = $3,
		    description = $4,
		    category_id = $5,
		    lat = $6,
		    lon = $7,
		    event_date = $8,
		    paid = $9,
		    participant_limit = $10,
		    request_moderation = $11,
		    state = $12,
		    published_on = $13
		WHERE id = $1
	`, e.ID, e.Title, e.Annotation, e.Description, e.CategoryID, e.Location.Lat, e.Location.Lon,
		e.EventDate, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State), e.PublishedOn))
}

func (q *queries) AddConfirmed(ctx context.Context, eventID int64, delta int) error {
	return mustAffect(q.db.Exec(ctx, `
		UPDATE events SET confirmed_requests = confirmed_requests + $2 WHERE id = $1
	`, eventID, delta))
}

func (q *queries) AdjustEventRating(ctx context.Context, eventID int64, delta int) error {
	return mustAffect(q.db.Exec(ctx, `UPDATE events SET rating = rating + $2 WHERE id = $1`, eventID, delta))
}

func (q *queries) ListEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]domain.Event, error) {
	return q.listEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE initiator_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, initiatorID, from, size)
}

func (q *queries) GetEventsByIDs(ctx context.Context, ids []int64) ([]domain.Event, error) {
	if len(ids) == 0 {
		return []domain.Event{}, nil
	}
	return q.listEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ANY($1) ORDER BY id`, ids)
}

func (q *queries) SearchEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	sql, args := buildSearch(f)
	return q.listEvents(ctx, sql, args...)
}

// buildSearch renders f into a parameterized query.
func buildSearch(f domain.EventFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if t := strings.TrimSpace(f.Text); t != "" {
		p := arg("%" + t + "%")
		where = append(where, "(annotation ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if len(f.UserIDs) > 0 {
		where = append(where, "initiator_id = ANY("+arg(f.UserIDs)+")")
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		where = append(where, "state = ANY("+arg(states)+")")
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, "category_id = ANY("+arg(f.CategoryIDs)+")")
	}
	if f.Paid != nil {
		where = append(where, "paid = "+arg(*f.Paid))
	}
	if f.RangeStart != nil {
		where = append(where, "event_date >= "+arg(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		where = append(where, "event_date <= "+arg(*f.RangeEnd))
	}
	if f.OnlyAvailable {
		where = append(where, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	var b strings.Builder
	b.WriteString("SELECT " + eventColumns + " FROM events")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch f.Sort {
	case domain.SortEventDate:
		b.WriteString(" ORDER BY event_date, id")
	case domain.SortRating:
		b.WriteString(" ORDER BY rating DESC, id")
	default:
		b.WriteString(" ORDER BY id")
	}
	if f.Size > 0 {
		b.WriteString(" OFFSET " + arg(f.From) + " LIMIT " + arg(f.Size))
	}
	return b.String(), args
}

func (q *queries) listEvents(ctx context.Context, sql string, args ...any) ([]domain.Event, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
