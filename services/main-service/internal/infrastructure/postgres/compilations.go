package postgres

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

// Compilation writes touch two tables; callers run them inside WithTx.

func (q *queries) CreateCompilation(ctx context.Context, c domain.Compilation) (domain.Compilation, error) {
	err := q.db.QueryRow(ctx, `
		INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id
	`, c.Title, c.Pinned).Scan(&c.ID)
	if err != nil {
		return domain.Compilation{}, mapErr(err)
	}
	if err := q.setCompilationEvents(ctx, c.ID, c.EventIDs); err != nil {
		return domain.Compilation{}, err
	}
	return c, nil
}

func (q *queries) UpdateCompilation(ctx context.Context, c domain.Compilation) error {
	err := mustAffect(q.db.Exec(ctx, `UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`, c.ID, c.Title, c.Pinned))
	if err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, c.ID); err != nil {
		return err
	}
	return q.setCompilationEvents(ctx, c.ID, c.EventIDs)
}

func (q *queries) setCompilationEvents(ctx context.Context, id int32, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO compilation_events (compilation_id, event_id, position)
		SELECT $1, e.id, e.ord
		FROM unnest($2::bigint[]) WITH ORDINALITY AS e(id, ord)
	`, id, eventIDs)
	return mapErr(err)
}

func (q *queries) DeleteCompilation(ctx context.Context, id int32) error {
	return mustAffect(q.db.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id))
}

func (q *queries) GetCompilation(ctx context.Context, id int32) (domain.Compilation, error) {
	var c domain.Compilation
	err := q.db.QueryRow(ctx, `SELECT id, title, pinned FROM compilations WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		return domain.Compilation{}, mapErr(err)
	}
	byComp, err := q.compilationEvents(ctx, []int32{id})
	if err != nil {
		return domain.Compilation{}, err
	}
	c.EventIDs = byComp[id]
	return c, nil
}

func (q *queries) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]domain.Compilation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, title, pinned
		FROM compilations
		WHERE $1::boolean IS NULL OR pinned = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, pinned, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Compilation{}
	var ids []int32
	for rows.Next() {
		var c domain.Compilation
		if err := rows.Scan(&c.ID, &c.Title, &c.Pinned); err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return out, nil
	}
	byComp, err := q.compilationEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].EventIDs = byComp[out[i].ID]
	}
	return out, nil
}

func (q *queries) compilationEvents(ctx context.Context, ids []int32) (map[int32][]int64, error) {
	rows, err := q.db.Query(ctx, `
		SELECT compilation_id, event_id
		FROM compilation_events
		WHERE compilation_id = ANY($1)
		ORDER BY compilation_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int32][]int64{}
	for rows.Next() {
		var (
			cid int32
			eid int64
		)
		if err := rows.Scan(&cid, &eid); err != nil {
			return nil, err
		}
		out[cid] = append(out[cid], eid)
	}
	return out, rows.Err()
}
