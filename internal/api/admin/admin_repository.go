package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Stats is the operational snapshot shown on the admin dashboard.
type Stats struct {
	TotalBookings        int64 `json:"total_bookings"`
	TotalSessions        int64 `json:"total_sessions"`
	ActiveSessions       int64 `json:"active_sessions"`
	TotalMessages        int64 `json:"total_messages"`
	CachedRecommendation int64 `json:"cached_recommendations"`
	TotalUsers           int64 `json:"total_users"`
}

// SessionListing joins a session with its booking for the admin view.
type SessionListing struct {
	types.SessionSummary
	BookingID string `json:"booking_id"`
	GuestName string `json:"guest_name"`
	HotelName string `json:"hotel_name"`
}

// MessageListing is one chat message with its session context.
type MessageListing struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Type      string    `json:"message_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	GetStats(ctx context.Context) (*Stats, error)
	ListSessions(ctx context.Context, limit int) ([]SessionListing, error)
	ListMessages(ctx context.Context, limit int) ([]MessageListing, error)
	DeleteStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error)
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

func (r *PostgresRepository) GetStats(ctx context.Context) (*Stats, error) {
	query := `
        SELECT
            (SELECT COUNT(*) FROM bookings),
            (SELECT COUNT(*) FROM chat_sessions),
            (SELECT COUNT(*) FROM chat_sessions WHERE is_active),
            (SELECT COUNT(*) FROM chat_messages),
            (SELECT COUNT(*) FROM recommendations WHERE expires_at > now()),
            (SELECT COUNT(*) FROM users)
    `
	var s Stats
	err := r.pgpool.QueryRow(ctx, query).Scan(
		&s.TotalBookings, &s.TotalSessions, &s.ActiveSessions,
		&s.TotalMessages, &s.CachedRecommendation, &s.TotalUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) ListSessions(ctx context.Context, limit int) ([]SessionListing, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT s.session_id, s.guest_language, s.is_active, s.created_at, s.last_active_at,
               (SELECT COUNT(*) FROM chat_messages m WHERE m.session_ref = s.id),
               b.booking_id, b.guest_name, COALESCE(b.hotel_name, '')
        FROM chat_sessions s
        JOIN bookings b ON b.id = s.booking_ref
        ORDER BY s.created_at DESC
        LIMIT $1
    `
	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionListing
	for rows.Next() {
		var s SessionListing
		err := rows.Scan(&s.SessionID, &s.Language, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
			&s.MessageCount, &s.BookingID, &s.GuestName, &s.HotelName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session listing: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PostgresRepository) ListMessages(ctx context.Context, limit int) ([]MessageListing, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT m.id, s.session_id::text, m.message_type, m.content, m.created_at
        FROM chat_messages m
        JOIN chat_sessions s ON s.id = m.session_ref
        ORDER BY m.created_at DESC
        LIMIT $1
    `
	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageListing
	for rows.Next() {
		var m MessageListing
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message listing: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteStaleSessions removes inactive sessions idle for longer than the
// window. Messages go with them through the cascade.
func (r *PostgresRepository) DeleteStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
        DELETE FROM chat_sessions
        WHERE is_active = FALSE AND last_active_at < now() - make_interval(secs => $1)
    `
	tag, err := r.pgpool.Exec(ctx, query, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
