package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var ErrBookingNotFound = errors.New("booking not found")

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetBooking(ctx context.Context, bookingID string) (*types.Booking, error)
	ListBookings(ctx context.Context, limit int) ([]types.Booking, error)
	GetSessions(ctx context.Context, bookingID string) ([]types.SessionSummary, error)
	SearchByPhone(ctx context.Context, phoneNumber, fromDate string) ([]types.ExternalBooking, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	search SearchClient
}

func NewServiceImpl(repo Repository, search SearchClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		search: search,
	}
}

func (s *ServiceImpl) GetBooking(ctx context.Context, bookingID string) (*types.Booking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "GetBooking", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
	defer span.End()

	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Booking lookup failed")
		return nil, err
	}
	if booking == nil {
		span.SetStatus(codes.Error, "Booking not found")
		return nil, ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "Booking found")
	return booking, nil
}

func (s *ServiceImpl) ListBookings(ctx context.Context, limit int) ([]types.Booking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "ListBookings")
	defer span.End()

	bookings, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Booking listing failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Bookings listed")
	return bookings, nil
}

func (s *ServiceImpl) GetSessions(ctx context.Context, bookingID string) ([]types.SessionSummary, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "GetSessions", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
	defer span.End()

	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	sessions, err := s.repo.GetSessions(ctx, booking.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session listing failed")
		return nil, fmt.Errorf("failed to list sessions for booking %s: %w", bookingID, err)
	}

	span.SetStatus(codes.Ok, "Sessions listed")
	return sessions, nil
}

func (s *ServiceImpl) SearchByPhone(ctx context.Context, phoneNumber, fromDate string) ([]types.ExternalBooking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "SearchByPhone")
	defer span.End()

	l := s.logger.With(slog.String("method", "SearchByPhone"))

	bookings, err := s.search.SearchByPhone(ctx, phoneNumber, fromDate)
	if err != nil {
		l.ErrorContext(ctx, "Booking search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Search completed")
	return bookings, nil
}
