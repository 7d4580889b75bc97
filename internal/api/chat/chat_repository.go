package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository covers session and message persistence for the orchestrator.
type Repository interface {
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*types.ChatSession, error)
	GetBookingByRef(ctx context.Context, id int64) (*types.Booking, error)
	GetBookingByBookingID(ctx context.Context, bookingID string) (*types.Booking, error)
	CreateSession(ctx context.Context, bookingRef int64, language string) (*types.ChatSession, error)
	SaveMessage(ctx context.Context, sessionRef int64, msgType types.MessageType, content string, metadata map[string]any) (*types.ChatMessage, error)
	GetMessages(ctx context.Context, sessionRef int64, limit int) ([]types.ChatMessage, error)
	TouchSession(ctx context.Context, sessionRef int64) error
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

func (r *PostgresRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*types.ChatSession, error) {
	query := `
        SELECT id, session_id, booking_ref, guest_language, is_active, created_at, last_active_at
        FROM chat_sessions
        WHERE session_id = $1
    `
	var session types.ChatSession
	err := r.pgpool.QueryRow(ctx, query, sessionID).Scan(
		&session.ID, &session.SessionID, &session.BookingRef, &session.GuestLanguage,
		&session.IsActive, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (r *PostgresRepository) GetBookingByRef(ctx context.Context, id int64) (*types.Booking, error) {
	return r.getBooking(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) GetBookingByBookingID(ctx context.Context, bookingID string) (*types.Booking, error) {
	return r.getBooking(ctx, `WHERE booking_id = $1`, bookingID)
}

func (r *PostgresRepository) getBooking(ctx context.Context, where string, arg interface{}) (*types.Booking, error) {
	query := fmt.Sprintf(`
        SELECT id, booking_id, guest_name, guest_email, guest_phone,
               hotel_name, hotel_location, latitude, longitude,
               check_in_date, check_out_date, guest_language,
               reference_number, hotel_id, booking_status, booking_source,
               raw_event, created_at
        FROM bookings %s`, where)

	var b types.Booking
	err := r.pgpool.QueryRow(ctx, query, arg).Scan(
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
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, bookingRef int64, language string) (*types.ChatSession, error) {
	query := `
        INSERT INTO chat_sessions (booking_ref, guest_language)
        VALUES ($1, $2)
        RETURNING id, session_id, booking_ref, guest_language, is_active, created_at, last_active_at
    `
	var session types.ChatSession
	err := r.pgpool.QueryRow(ctx, query, bookingRef, language).Scan(
		&session.ID, &session.SessionID, &session.BookingRef, &session.GuestLanguage,
		&session.IsActive, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepository) SaveMessage(ctx context.Context, sessionRef int64, msgType types.MessageType, content string, metadata map[string]any) (*types.ChatMessage, error) {
	var metaJSON []byte
	if metadata != nil {
		var err error
		metaJSON, err = json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message metadata: %w", err)
		}
	}

	query := `
        INSERT INTO chat_messages (session_ref, message_type, content, metadata)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	message := &types.ChatMessage{
		SessionRef: sessionRef,
		Type:       msgType,
		Content:    content,
		Metadata:   metadata,
	}
	err := r.pgpool.QueryRow(ctx, query, sessionRef, string(msgType), content, metaJSON).Scan(
		&message.ID, &message.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}
	return message, nil
}

// GetMessages returns the most recent messages in chronological order.
func (r *PostgresRepository) GetMessages(ctx context.Context, sessionRef int64, limit int) ([]types.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, session_ref, message_type, content, metadata, created_at
        FROM (
            SELECT id, session_ref, message_type, content, metadata, created_at
            FROM chat_messages
            WHERE session_ref = $1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.pgpool.Query(ctx, query, sessionRef, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		var msgType string
		var metaJSON []byte
		if err := rows.Scan(&m.ID, &m.SessionRef, &msgType, &m.Content, &metaJSON, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Type = types.MessageType(msgType)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &m.Metadata); err != nil {
				r.logger.WarnContext(ctx, "Corrupt message metadata", slog.Int64("message_id", m.ID))
			}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}

func (r *PostgresRepository) TouchSession(ctx context.Context, sessionRef int64) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE chat_sessions SET last_active_at = now() WHERE id = $1`, sessionRef)
	if err != nil {
		return fmt.Errorf("failed to touch session %d: %w", sessionRef, err)
	}
	return nil
}
