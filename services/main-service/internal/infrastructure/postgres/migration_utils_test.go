//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../../migrations"

// setupRepo connects to TEST_DB_DSN, applies the migrations and empties every table.
func setupRepo(t *testing.T) (*postgres.Repository, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ApplyMigrations(t, pool, migrationsDir)

	_, err = pool.Exec(context.Background(), `
		TRUNCATE TABLE compilation_events, compilations, ratings, participation_requests,
			events, categories, users, outbox
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	return postgres.New(pool), pool
}

// ApplyMigrations runs every .sql file in dir in name order. The files are
// idempotent so this is safe on a reused database.
func ApplyMigrations(t *testing.T, pool *pgxpool.Pool, dir string) {
	t.Helper()
	absDir, _ := filepath.Abs(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %q (abs: %q): %v", dir, absDir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		t.Fatalf("no migration files found in %q", absDir)
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = pool.Exec(ctx, string(content))
		cancel()
		if err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}
