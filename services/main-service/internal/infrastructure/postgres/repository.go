package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries implements domain.Tx over whatever dbtx it is bound to.
type queries struct {
	db dbtx
}

type Repository struct {
	queries
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{queries: queries{db: pool}, pool: pool}
}

// -------------------------
// Lock order, for every tx that touches one event:
//   1) events row (FOR UPDATE)
//   2) participation_requests rows (FOR UPDATE, ordered by id)
// AddParticipationRequest, CancelParticipationRequest and BulkUpdateStatus all
// follow it, so they cannot deadlock against each other.
// -------------------------

func (r *Repository) WithTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// mapErr turns driver errors into the domain sentinels services understand.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrUniqueViolation, pgErr.ConstraintName)
		case pgFKViolation:
			return fmt.Errorf("%w: %s", domain.ErrFKViolation, pgErr.ConstraintName)
		}
	}
	return err
}

// mustAffect reports ErrNoRows when an UPDATE/DELETE matched nothing.
func mustAffect(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoRows
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
