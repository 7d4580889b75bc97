package booking

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var bookingRowColumns = []string{
	"id", "booking_id", "guest_name", "guest_email", "guest_phone",
	"hotel_name", "hotel_location", "latitude", "longitude",
	"check_in_date", "check_out_date", "guest_language",
	"reference_number", "hotel_id", "booking_status", "booking_source", "created_at",
}

func ptrFloat(f float64) *float64 { return &f }

func ptrTime(t time.Time) *time.Time { return &t }

func TestPostgresRepository_GetByBookingID(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	checkIn := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(`SELECT(.+)FROM bookings WHERE booking_id = \$1`).
		WithArgs("BK-1001").
		WillReturnRows(pgxmock.NewRows(bookingRowColumns).AddRow(
			int64(42), "BK-1001", "Asha Rao", "asha@example.com", "+919876543210",
			"Sea Breeze Resort", "Baga, Goa", ptrFloat(15.5553), ptrFloat(73.7517),
			ptrTime(checkIn), ptrTime(checkIn.AddDate(0, 0, 3)), "en",
			"GRP-7", "HTL-9", "active", "ota", time.Now(),
		))

	repo := NewPostgresRepository(mockPool, testLogger())
	booking, err := repo.GetByBookingID(context.Background(), "BK-1001")

	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, int64(42), booking.ID)
	assert.Equal(t, "Asha Rao", booking.GuestName)
	assert.Equal(t, "Sea Breeze Resort", booking.HotelName)
	require.NotNil(t, booking.Latitude)
	assert.InDelta(t, 15.5553, *booking.Latitude, 0.0001)
	require.NotNil(t, booking.CheckInDate)
	assert.Equal(t, checkIn, *booking.CheckInDate)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_GetByBookingID_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT(.+)FROM bookings WHERE booking_id = \$1`).
		WithArgs("BK-404").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mockPool, testLogger())
	booking, err := repo.GetByBookingID(context.Background(), "BK-404")

	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_GetSessions(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	first := uuid.New()
	second := uuid.New()
	now := time.Now()
	mockPool.ExpectQuery(`SELECT(.+)FROM chat_sessions s`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"session_id", "guest_language", "is_active", "created_at", "last_active_at", "message_count",
		}).
			AddRow(second, "en", true, now, now, 4).
			AddRow(first, "hi", false, now.Add(-time.Hour), now.Add(-time.Hour), 9))

	repo := NewPostgresRepository(mockPool, testLogger())
	sessions, err := repo.GetSessions(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].SessionID)
	assert.True(t, sessions[0].IsActive)
	assert.Equal(t, 4, sessions[0].MessageCount)
	assert.Equal(t, "hi", sessions[1].Language)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_ListRecent_DefaultsLimit(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT(.+)FROM bookings ORDER BY created_at DESC`).
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows(bookingRowColumns))

	repo := NewPostgresRepository(mockPool, testLogger())
	bookings, err := repo.ListRecent(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
