package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository persists normalized webhook state: the booking row and the
// chat sessions hanging off it. Session creation takes the opening bot
// turns so a session is never visible without its greeting.
type Repository interface {
	GetBookingByBookingID(ctx context.Context, bookingID string) (*types.Booking, error)
	CreateBookingWithSession(ctx context.Context, booking *types.Booking, opening []string) (int64, *types.ChatSession, error)
	UpdateBooking(ctx context.Context, id int64, patch types.BookingPatch) error
	CreateSession(ctx context.Context, bookingRef int64, language string, opening []string) (*types.ChatSession, error)
	DeactivateSessions(ctx context.Context, bookingRef int64) (int64, error)
}

// DB is the subset of pgxpool.Pool the repository needs. Tests substitute
// a pgxmock pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
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
    id, booking_id, guest_name, guest_email, guest_phone,
    hotel_name, hotel_location, latitude, longitude,
    check_in_date, check_out_date, guest_language,
    reference_number, hotel_id, booking_status, booking_source,
    raw_event, created_at
`

func (r *PostgresRepository) GetBookingByBookingID(ctx context.Context, bookingID string) (*types.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE booking_id = $1`, bookingColumns)

	var b types.Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.BookingID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.HotelName, &b.HotelLocation, &b.Latitude, &b.Longitude,
		&b.CheckInDate, &b.CheckOutDate, &b.GuestLanguage,
		&b.ReferenceNumber, &b.HotelID, &b.BookingStatus, &b.BookingSource,
		&b.RawEvent, &b.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find booking %s: %w", bookingID, err)
	}
	return &b, nil
}

// CreateBookingWithSession inserts the booking, its first chat session and
// the opening bot turns in one transaction.
func (r *PostgresRepository) CreateBookingWithSession(ctx context.Context, booking *types.Booking, opening []string) (int64, *types.ChatSession, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO bookings (
            booking_id, guest_name, guest_email, guest_phone,
            hotel_name, hotel_location, latitude, longitude,
            check_in_date, check_out_date, guest_language,
            reference_number, hotel_id, booking_status, booking_source, raw_event
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id
    `
	var id int64
	err = tx.QueryRow(ctx, query,
		booking.BookingID, booking.GuestName, booking.GuestEmail, booking.GuestPhone,
		booking.HotelName, booking.HotelLocation, booking.Latitude, booking.Longitude,
		booking.CheckInDate, booking.CheckOutDate, booking.GuestLanguage,
		booking.ReferenceNumber, booking.HotelID, booking.BookingStatus, booking.BookingSource,
		booking.RawEvent,
	).Scan(&id)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	session, err := createSessionTx(ctx, tx, id, booking.GuestLanguage, opening)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, session, nil
}

// UpdateBooking applies only the non-nil fields of the patch.
func (r *PostgresRepository) UpdateBooking(ctx context.Context, id int64, patch types.BookingPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.GuestName != nil {
		add("guest_name", *patch.GuestName)
	}
	if patch.GuestEmail != nil {
		add("guest_email", *patch.GuestEmail)
	}
	if patch.GuestPhone != nil {
		add("guest_phone", *patch.GuestPhone)
	}
	if patch.HotelName != nil {
		add("hotel_name", *patch.HotelName)
	}
	if patch.HotelLocation != nil {
		add("hotel_location", *patch.HotelLocation)
	}
	if patch.CheckInDate != nil {
		add("check_in_date", *patch.CheckInDate)
	}
	if patch.CheckOutDate != nil {
		add("check_out_date", *patch.CheckOutDate)
	}
	if patch.GuestLanguage != nil {
		add("guest_language", *patch.GuestLanguage)
	}
	if patch.BookingStatus != nil {
		add("booking_status", *patch.BookingStatus)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE bookings SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %d not found", id)
	}
	return nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, bookingRef int64, language string, opening []string) (*types.ChatSession, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := createSessionTx(ctx, tx, bookingRef, language, opening)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return session, nil
}

// createSessionTx opens the session row and seeds its opening bot turns
// inside the caller's transaction.
func createSessionTx(ctx context.Context, tx pgx.Tx, bookingRef int64, language string, opening []string) (*types.ChatSession, error) {
	query := `
        INSERT INTO chat_sessions (booking_ref, guest_language)
        VALUES ($1, $2)
        RETURNING id, session_id, booking_ref, guest_language, is_active, created_at, last_active_at
    `
	var session types.ChatSession
	err := tx.QueryRow(ctx, query, bookingRef, language).Scan(
		&session.ID, &session.SessionID, &session.BookingRef, &session.GuestLanguage,
		&session.IsActive, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	for _, content := range opening {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (session_ref, message_type, content) VALUES ($1, $2, $3)`,
			session.ID, string(types.MessageTypeBot), content,
		); err != nil {
			return nil, fmt.Errorf("failed to seed session message: %w", err)
		}
	}
	return &session, nil
}

func (r *PostgresRepository) DeactivateSessions(ctx context.Context, bookingRef int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE chat_sessions SET is_active = FALSE, last_active_at = now() WHERE booking_ref = $1 AND is_active`,
		bookingRef,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate sessions for booking %d: %w", bookingRef, err)
	}
	return tag.RowsAffected(), nil
}
