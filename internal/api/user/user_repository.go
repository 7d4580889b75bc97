package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	GetByPhone(ctx context.Context, phoneNumber string) (*types.User, error)
	GetByToken(ctx context.Context, sessionToken string) (*types.User, error)
	Create(ctx context.Context, phoneNumber, name, email, sessionToken string) (*types.User, error)
	RefreshLogin(ctx context.Context, id int64, name, email, sessionToken string) (*types.User, error)
	ClearToken(ctx context.Context, id int64) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `
    id, phone_number, COALESCE(name, ''), COALESCE(email, ''),
    session_token, is_active, created_at, updated_at
`

func (r *PostgresRepository) scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.Name, &u.Email,
		&u.SessionToken, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return r.scanUser(r.pgpool.QueryRow(ctx, query, phoneNumber))
}

// GetByToken matches active users only; a logged-out token never resolves.
func (r *PostgresRepository) GetByToken(ctx context.Context, sessionToken string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE session_token = $1 AND is_active = TRUE`
	return r.scanUser(r.pgpool.QueryRow(ctx, query, sessionToken))
}

func (r *PostgresRepository) Create(ctx context.Context, phoneNumber, name, email, sessionToken string) (*types.User, error) {
	query := `
        INSERT INTO users (phone_number, name, email, session_token, is_active)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, TRUE)
        RETURNING ` + userColumns
	u, err := r.scanUser(r.pgpool.QueryRow(ctx, query, phoneNumber, name, email, sessionToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", phoneNumber, err)
	}
	return u, nil
}

// RefreshLogin rotates the session token and reactivates the account,
// updating name and email only when the caller supplied them.
func (r *PostgresRepository) RefreshLogin(ctx context.Context, id int64, name, email, sessionToken string) (*types.User, error) {
	query := `
        UPDATE users
        SET name = COALESCE(NULLIF($2, ''), name),
            email = COALESCE(NULLIF($3, ''), email),
            session_token = $4,
            is_active = TRUE,
            updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns
	u, err := r.scanUser(r.pgpool.QueryRow(ctx, query, id, name, email, sessionToken))
	if err != nil {
		return nil, fmt.Errorf("failed to refresh login for user %d: %w", id, err)
	}
	return u, nil
}

func (r *PostgresRepository) ClearToken(ctx context.Context, id int64) error {
	query := `
        UPDATE users
        SET session_token = NULL, is_active = FALSE, updated_at = now()
        WHERE id = $1
    `
	if _, err := r.pgpool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to clear token for user %d: %w", id, err)
	}
	return nil
}
