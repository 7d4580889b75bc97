package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// DB is the subset of pgxpool.Pool the repository needs. Tests substitute
// a pgxmock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	GetByBookingID(ctx context.Context, bookingID string) (*types.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]types.Booking, error)
	GetSessions(ctx context.Context, bookingRef int64) ([]types.SessionSummary, error)
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

const bookingColumns = `
    id, booking_id, guest_name, COALESCE(guest_email, ''), COALESCE(guest_phone, ''),
    COALESCE(hotel_name, ''), COALESCE(hotel_location, ''), latitude, longitude,
    check_in_date, check_out_date, guest_language,
    COALESCE(reference_number, ''), COALESCE(hotel_id, ''),
    booking_status, COALESCE(booking_source, ''), created_at
`

func observeQuery(ctx context.Context, name string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("query", name))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && err != pgx.ErrNoRows {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func scanBooking(row pgx.Row) (*types.Booking, error) {
	var b types.Booking
	err := row.Scan(
		&b.ID, &b.BookingID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.HotelName, &b.HotelLocation, &b.Latitude, &b.Longitude,
		&b.CheckInDate, &b.CheckOutDate, &b.GuestLanguage,
		&b.ReferenceNumber, &b.HotelID,
		&b.BookingStatus, &b.BookingSource, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByBookingID returns nil without error when no booking carries the id.
func (r *PostgresRepository) GetByBookingID(ctx context.Context, bookingID string) (*types.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	start := time.Now()
	b, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	observeQuery(ctx, "bookings.get_by_booking_id", start, err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query booking %s: %w", bookingID, err)
	}
	return b, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]types.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, limit)
	observeQuery(ctx, "bookings.list_recent", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []types.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read booking rows: %w", err)
	}
	return bookings, nil
}

// GetSessions lists every chat session opened for the booking, newest first,
// with a per-session message count.
func (r *PostgresRepository) GetSessions(ctx context.Context, bookingRef int64) ([]types.SessionSummary, error) {
	query := `
        SELECT s.session_id, s.guest_language, s.is_active, s.created_at, s.last_active_at,
               COUNT(m.id) AS message_count
        FROM chat_sessions s
        LEFT JOIN chat_messages m ON m.session_ref = s.id
        WHERE s.booking_ref = $1
        GROUP BY s.id, s.session_id, s.guest_language, s.is_active, s.created_at, s.last_active_at
        ORDER BY s.created_at DESC
    `

	start := time.Now()
	rows, err := r.db.Query(ctx, query, bookingRef)
	observeQuery(ctx, "chat_sessions.list_for_booking", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for booking %d: %w", bookingRef, err)
	}
	defer rows.Close()

	var sessions []types.SessionSummary
	for rows.Next() {
		var s types.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Language, &s.IsActive, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session rows: %w", err)
	}
	return sessions, nil
}
