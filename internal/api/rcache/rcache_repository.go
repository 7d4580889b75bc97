package rcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// DB is the subset of pgxpool.Pool the repository needs. Tests substitute
// a pgxmock pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository is the durable cache tier backing Redis.
type Repository interface {
	Get(ctx context.Context, cacheKey string) ([]types.Place, error)
	Save(ctx context.Context, cacheKey string, coords types.Coordinates, category types.Category, language string, places []types.Place, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresRepository(db DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

// Get returns the cached places for the key, or nil when the entry is
// missing or past its expiry.
func (r *PostgresRepository) Get(ctx context.Context, cacheKey string) ([]types.Place, error) {
	query := `
        SELECT places
        FROM recommendations
        WHERE cache_key = $1 AND expires_at > now()
    `
	var payload []byte
	if err := r.db.QueryRow(ctx, query, cacheKey).Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recommendation cache: %w", err)
	}

	var places []types.Place
	if err := json.Unmarshal(payload, &places); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached places: %w", err)
	}
	return places, nil
}

// Save replaces any previous entry for the key.
func (r *PostgresRepository) Save(ctx context.Context, cacheKey string, coords types.Coordinates, category types.Category, language string, places []types.Place, ttl time.Duration) error {
	payload, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("failed to marshal places for cache: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM recommendations WHERE cache_key = $1`, cacheKey); err != nil {
		return fmt.Errorf("failed to delete stale cache entry: %w", err)
	}

	insert := `
        INSERT INTO recommendations (cache_key, latitude, longitude, category, language, places, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	if _, err = tx.Exec(ctx, insert,
		cacheKey, coords.Latitude, coords.Longitude, string(category), language, payload,
		time.Now().Add(ttl),
	); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpired removes entries past their expiry and reports the count.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM recommendations WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
