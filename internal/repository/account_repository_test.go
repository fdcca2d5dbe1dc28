package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    uid          TEXT PRIMARY KEY,
    email        TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    photo_url    TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func setupTestPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, accountsSchema)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE accounts`)
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return pool
}

func TestAccountRepository(t *testing.T) {
	repo := NewAccountRepository(setupTestPostgres(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "U1")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = repo.Update(ctx, "U1", domain.AccountUpdate{DisplayName: strPtr("Ana")})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	require.NoError(t, repo.CreateIfAbsent(ctx, &domain.Account{UID: "U1", Email: "ana@example.com", PhotoURL: "a.png"}))
	require.NoError(t, repo.CreateIfAbsent(ctx, &domain.Account{UID: "U1", Email: "changed@example.com"}))

	account, err := repo.GetByID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", account.Email)

	require.NoError(t, repo.Update(ctx, "U1", domain.AccountUpdate{DisplayName: strPtr("Ana")}))
	account, err = repo.GetByID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", account.DisplayName)
	assert.Equal(t, "a.png", account.PhotoURL, "nil fields are left unchanged")
}
