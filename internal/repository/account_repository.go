package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// ErrAccountNotFound is returned when the identity directory has no record for a uid.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines persistence access for canonical identity records.
type AccountRepository interface {
	CreateIfAbsent(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, uid string, update domain.AccountUpdate) error
	GetByID(ctx context.Context, uid string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) CreateIfAbsent(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (uid, email, display_name, photo_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (uid) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		account.UID,
		account.Email,
		account.DisplayName,
		account.PhotoURL,
	)
	return err
}

func (r *accountRepository) Update(ctx context.Context, uid string, update domain.AccountUpdate) error {
	const query = `
        UPDATE accounts SET
            display_name = COALESCE($2, display_name),
            photo_url = COALESCE($3, photo_url),
            updated_at = NOW()
        WHERE uid=$1`

	cmd, err := r.pool.Exec(ctx, query, uid, update.DisplayName, update.PhotoURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, uid string) (*domain.Account, error) {
	const query = `
        SELECT uid, email, display_name, photo_url, created_at, updated_at
        FROM accounts WHERE uid=$1`

	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, uid).Scan(
		&account.UID,
		&account.Email,
		&account.DisplayName,
		&account.PhotoURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
