package postgres

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

func (q *queries) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := q.db.QueryRow(ctx, `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, rating
	`, u.Name, u.Email).Scan(&u.ID, &u.Rating)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return u, nil
}

func (q *queries) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, `SELECT id, name, email, rating FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Rating)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return u, nil
}

func (q *queries) ListUsers(ctx context.Context, ids []int64, from, size int) ([]domain.User, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, email, rating
		FROM users
		WHERE COALESCE(cardinality($1::bigint[]), 0) = 0 OR id = ANY($1)
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, ids, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Rating); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (q *queries) DeleteUser(ctx context.Context, id int64) error {
	return mustAffect(q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func (q *queries) AdjustUserRating(ctx context.Context, id int64, delta int) error {
	return mustAffect(q.db.Exec(ctx, `UPDATE users SET rating = rating + $2 WHERE id = $1`, id, delta))
}
