package postgres

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

func (q *queries) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	c := domain.Category{Name: name}
	if err := q.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID); err != nil {
		return domain.Category{}, mapErr(err)
	}
	return c, nil
}

func (q *queries) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := q.db.QueryRow(ctx, `UPDATE categories SET name = $2 WHERE id = $1 RETURNING name`, c.ID, c.Name).Scan(&c.Name)
	if err != nil {
		return domain.Category{}, mapErr(err)
	}
	return c, nil
}

func (q *queries) DeleteCategory(ctx context.Context, id int32) error {
	return mustAffect(q.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

func (q *queries) GetCategory(ctx context.Context, id int32) (domain.Category, error) {
	var c domain.Category
	if err := q.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name); err != nil {
		return domain.Category{}, mapErr(err)
	}
	return c, nil
}

func (q *queries) ListCategories(ctx context.Context, from, size int) ([]domain.Category, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2`, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
