package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/chat"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/geocode"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

// ErrInvalidEvent marks payloads the producer sent malformed or
// incomplete. The handler maps it to a client error instead of a server
// failure.
var ErrInvalidEvent = errors.New("invalid booking event")

var _ Service = (*ServiceImpl)(nil)

// Service turns raw booking webhook events into bookings and chat sessions.
type Service interface {
	ProcessEvent(ctx context.Context, event *types.BookingEvent, raw json.RawMessage) (*types.EventResult, error)
}

type ServiceImpl struct {
	logger          *slog.Logger
	repo            Repository
	geocoder        geocode.Service
	defaultLanguage string
}

func NewServiceImpl(repo Repository, geocoder geocode.Service, defaultLanguage string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:          logger,
		repo:            repo,
		geocoder:        geocoder,
		defaultLanguage: defaultLanguage,
	}
}

func (s *ServiceImpl) ProcessEvent(ctx context.Context, event *types.BookingEvent, raw json.RawMessage) (*types.EventResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer("EventService").Start(ctx, "ProcessEvent", trace.WithAttributes(
		attribute.String("event.type", event.EventType),
	))
	defer span.End()
	defer func() {
		metrics.Get().WebhookEventDuration.Record(ctx, time.Since(start).Seconds())
	}()
	metrics.Get().WebhookEventsTotal.Add(ctx, 1)

	l := s.logger.With(slog.String("method", "ProcessEvent"), slog.String("event_type", event.EventType))

	switch event.EventType {
	case types.EventBookingCreated, types.EventBookingUpdated, types.EventBookingCancelled:
	default:
		l.InfoContext(ctx, "Ignoring unsupported event type")
		span.SetStatus(codes.Ok, "Event ignored")
		return &types.EventResult{
			Status:  "ignored",
			Message: fmt.Sprintf("unsupported event type %q", event.EventType),
		}, nil
	}

	payload, err := mergePayload(event)
	if err != nil {
		l.WarnContext(ctx, "Unusable event payload", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Payload normalization failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if payload.BookingID == "" {
		err := fmt.Errorf("%w: missing booking_id", ErrInvalidEvent)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Missing booking_id")
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", payload.BookingID))

	if event.EventType == types.EventBookingCancelled {
		result, err := s.cancelBooking(ctx, payload.BookingID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Cancellation failed")
			return nil, err
		}
		span.SetStatus(codes.Ok, "Booking cancelled")
		return result, nil
	}

	normalized, mapsLink := s.normalize(payload, raw)

	// Updates may be sparse, only a creation must carry the full guest
	// and hotel identity.
	if event.EventType == types.EventBookingCreated {
		if err := validateBooking(normalized); err != nil {
			l.WarnContext(ctx, "Incomplete booking payload", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Incomplete booking payload")
			return nil, err
		}
	}

	// Geocoding is best effort, a booking without coordinates still chats.
	if coords, gerr := s.geocoder.Resolve(ctx, normalized.HotelLocation, mapsLink); gerr == nil && coords != nil {
		normalized.Latitude = &coords.Latitude
		normalized.Longitude = &coords.Longitude
	} else if gerr != nil {
		l.WarnContext(ctx, "Geocoding failed for booking",
			slog.String("booking_id", normalized.BookingID), slog.Any("error", gerr))
	}

	existing, err := s.repo.GetBookingByBookingID(ctx, normalized.BookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Booking lookup failed")
		return nil, err
	}

	var result *types.EventResult
	switch {
	case existing == nil && event.EventType == types.EventBookingUpdated:
		// An update for a booking that was never ingested has nothing to
		// patch. Creation stays reserved for booking.created.
		l.WarnContext(ctx, "Update for unknown booking", slog.String("booking_id", normalized.BookingID))
		result = &types.EventResult{
			Status:    "not_found",
			Message:   "update for unknown booking",
			BookingID: normalized.BookingID,
		}
	case existing == nil:
		result, err = s.createBooking(ctx, normalized)
	case event.EventType == types.EventBookingUpdated:
		result, err = s.patchBooking(ctx, existing, normalized)
	default:
		result, err = s.replayBooking(ctx, existing, normalized)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Booking upsert failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Event processed")
	return result, nil
}

// validateBooking enforces the minimum the concierge needs to greet a
// guest: who they are, how to reach them and where they are staying.
func validateBooking(b *types.Booking) error {
	var missing []string
	if b.GuestName == "" {
		missing = append(missing, "guest_name")
	}
	if b.GuestEmail == "" {
		missing = append(missing, "guest_email")
	}
	if b.HotelName == "" {
		missing = append(missing, "hotel_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidEvent, strings.Join(missing, ", "))
	}
	return nil
}

// openingMessages are the bot turns every new session starts with: the
// greeting and the localized category menu.
func openingMessages(booking *types.Booking, language string) []string {
	return []string{
		chat.WelcomeMessage(language, booking.GuestName, booking.HotelName),
		chat.MenuMessage(language),
	}
}

// createBooking inserts the booking and its first chat session in one
// transaction so the guest never sees a booking without a way to talk.
func (s *ServiceImpl) createBooking(ctx context.Context, booking *types.Booking) (*types.EventResult, error) {
	_, session, err := s.repo.CreateBookingWithSession(ctx, booking, openingMessages(booking, booking.GuestLanguage))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.InfoContext(ctx, "Booking created from event",
		slog.String("booking_id", booking.BookingID),
		slog.String("session_id", session.SessionID.String()),
	)

	result := &types.EventResult{
		Status:    "created",
		Message:   "booking created",
		BookingID: booking.BookingID,
		SessionID: session.SessionID.String(),
	}
	if booking.Latitude != nil && booking.Longitude != nil {
		result.Coordinates = &types.Coordinates{Latitude: *booking.Latitude, Longitude: *booking.Longitude}
	}
	return result, nil
}

// patchBooking applies a sparse update to a known booking. The guest's
// running conversations stay untouched, booking.updated never opens a
// new session.
func (s *ServiceImpl) patchBooking(ctx context.Context, existing, incoming *types.Booking) (*types.EventResult, error) {
	patch, updated := diffBookings(existing, incoming)

	if !patch.IsEmpty() {
		if err := s.repo.UpdateBooking(ctx, existing.ID, patch); err != nil {
			return nil, fmt.Errorf("failed to update booking: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Booking updated from event",
		slog.String("booking_id", existing.BookingID),
		slog.Any("updated_fields", updated),
	)

	result := &types.EventResult{
		Status:        "updated",
		Message:       "booking updated",
		BookingID:     existing.BookingID,
		UpdatedFields: updated,
	}
	if incoming.Latitude != nil && incoming.Longitude != nil {
		result.Coordinates = &types.Coordinates{Latitude: *incoming.Latitude, Longitude: *incoming.Longitude}
	}
	return result, nil
}

// replayBooking handles booking.created arriving for a booking we already
// hold, which the producer does when a reservation is re-confirmed. The
// row is refreshed and a fresh session opens so the guest restarts with
// current stay context.
func (s *ServiceImpl) replayBooking(ctx context.Context, existing, incoming *types.Booking) (*types.EventResult, error) {
	patch, updated := diffBookings(existing, incoming)

	if !patch.IsEmpty() {
		if err := s.repo.UpdateBooking(ctx, existing.ID, patch); err != nil {
			return nil, fmt.Errorf("failed to update booking: %w", err)
		}
	}

	session, err := s.repo.CreateSession(ctx, existing.ID, incoming.GuestLanguage, openingMessages(incoming, incoming.GuestLanguage))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	s.logger.InfoContext(ctx, "Booking replayed from event",
		slog.String("booking_id", existing.BookingID),
		slog.Any("updated_fields", updated),
	)

	result := &types.EventResult{
		Status:        "updated",
		Message:       "booking updated",
		BookingID:     existing.BookingID,
		SessionID:     session.SessionID.String(),
		UpdatedFields: updated,
	}
	if incoming.Latitude != nil && incoming.Longitude != nil {
		result.Coordinates = &types.Coordinates{Latitude: *incoming.Latitude, Longitude: *incoming.Longitude}
	}
	return result, nil
}

// cancelBooking keeps the booking row but marks it cancelled and turns off
// its sessions.
func (s *ServiceImpl) cancelBooking(ctx context.Context, bookingID string) (*types.EventResult, error) {
	existing, err := s.repo.GetBookingByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return &types.EventResult{
			Status:    "ignored",
			Message:   "cancellation for unknown booking",
			BookingID: bookingID,
		}, nil
	}

	status := "cancelled"
	if err := s.repo.UpdateBooking(ctx, existing.ID, types.BookingPatch{BookingStatus: &status}); err != nil {
		return nil, fmt.Errorf("failed to mark booking cancelled: %w", err)
	}

	deactivated, err := s.repo.DeactivateSessions(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "Booking cancelled",
		slog.String("booking_id", bookingID),
		slog.Int64("sessions_deactivated", deactivated),
	)

	return &types.EventResult{
		Status:    "cancelled",
		Message:   fmt.Sprintf("booking cancelled, %d session(s) deactivated", deactivated),
		BookingID: bookingID,
	}, nil
}

// mergePayload flattens either envelope shape into a single payload. The
// entity-list shape spreads booking and bill over separate entries.
func mergePayload(event *types.BookingEvent) (*types.BookingEventPayload, error) {
	switch event.Shape() {
	case types.ShapeLegacyFlat:
		return event.Booking, nil

	case types.ShapeEntityList:
		var payload *types.BookingEventPayload
		var bill *types.BillPayload
		for _, entity := range event.Events {
			switch entity.EntityName {
			case "booking":
				var p types.BookingEventPayload
				if err := json.Unmarshal(entity.Payload, &p); err != nil {
					return nil, fmt.Errorf("failed to parse booking entity: %w", err)
				}
				payload = &p
			case "bill":
				var b types.BillPayload
				if err := json.Unmarshal(entity.Payload, &b); err != nil {
					return nil, fmt.Errorf("failed to parse bill entity: %w", err)
				}
				bill = &b
			}
		}
		if payload == nil {
			return nil, fmt.Errorf("entity list has no booking entry")
		}
		payload.Bill = bill
		return payload, nil

	default:
		return nil, fmt.Errorf("unrecognized event payload shape")
	}
}

// normalize builds the canonical booking row from a merged payload.
func (s *ServiceImpl) normalize(payload *types.BookingEventPayload, raw json.RawMessage) (*types.Booking, string) {
	booking := &types.Booking{
		BookingID:       payload.BookingID,
		ReferenceNumber: payload.ReferenceNumber,
		HotelID:         payload.HotelID,
		BookingStatus:   "active",
		GuestLanguage:   payload.GuestLanguage,
		RawEvent:        raw,
	}
	if booking.GuestLanguage == "" {
		booking.GuestLanguage = s.defaultLanguage
	}
	if payload.Source != nil {
		booking.BookingSource = payload.Source.ChannelCode
	}

	// Guest identity: the legacy shape carries it inline, the entity shape
	// hides it in the customers array padded with placeholder entries.
	if payload.GuestName != "" {
		booking.GuestName = payload.GuestName
		booking.GuestEmail = payload.GuestEmail
		booking.GuestPhone = payload.GuestPhone
	} else if customer := primaryCustomer(payload.Customers); customer != nil {
		booking.GuestName = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
		booking.GuestEmail = customer.Email
		if customer.Phone != nil {
			booking.GuestPhone = customer.Phone.CountryCode + customer.Phone.Number
		}
	}

	var mapsLink string
	booking.HotelName = payload.HotelName
	booking.HotelLocation = payload.HotelLocation
	if payload.Bill != nil && payload.Bill.VendorDetails != nil {
		vendor := payload.Bill.VendorDetails
		if booking.HotelName == "" {
			booking.HotelName = vendor.HotelName
			if booking.HotelName == "" {
				booking.HotelName = vendor.VendorName
			}
		}
		if booking.HotelLocation == "" && vendor.Address != nil {
			booking.HotelLocation = joinAddress(vendor.Address)
		}
		mapsLink = vendor.MapsLink
	}

	booking.CheckInDate = parseEventDate(payload.CheckinDate, payload.CheckInDate)
	booking.CheckOutDate = parseEventDate(payload.CheckoutDate, payload.CheckOutDate)

	return booking, mapsLink
}

// primaryCustomer picks the first non-placeholder customer that has an
// email, falling back to the first entry at all.
func primaryCustomer(customers []types.Customer) *types.Customer {
	for i := range customers {
		c := &customers[i]
		if c.Dummy {
			continue
		}
		if c.Email != "" && !strings.Contains(strings.ToLower(c.Email), "dummy") {
			return c
		}
	}
	if len(customers) > 0 {
		return &customers[0]
	}
	return nil
}

func joinAddress(addr *types.VendorAddress) string {
	var parts []string
	for _, part := range []string{addr.Field1, addr.City, addr.State} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ", ")
}

// parseEventDate accepts either key variant and truncates timestamps like
// "2026-03-10T14:00:00" to the calendar date.
func parseEventDate(values ...string) *time.Time {
	for _, value := range values {
		if value == "" {
			continue
		}
		if idx := strings.Index(value, "T"); idx > 0 {
			value = value[:idx]
		}
		if d, err := time.Parse("2006-01-02", value); err == nil {
			return &d
		}
	}
	return nil
}

// diffBookings produces a patch with the incoming values that differ from
// the stored row, plus the column names touched.
func diffBookings(existing, incoming *types.Booking) (types.BookingPatch, []string) {
	var patch types.BookingPatch
	var updated []string

	if incoming.GuestName != "" && incoming.GuestName != existing.GuestName {
		patch.GuestName = &incoming.GuestName
		updated = append(updated, "guest_name")
	}
	if incoming.GuestEmail != "" && incoming.GuestEmail != existing.GuestEmail {
		patch.GuestEmail = &incoming.GuestEmail
		updated = append(updated, "guest_email")
	}
	if incoming.GuestPhone != "" && incoming.GuestPhone != existing.GuestPhone {
		patch.GuestPhone = &incoming.GuestPhone
		updated = append(updated, "guest_phone")
	}
	if incoming.HotelName != "" && incoming.HotelName != existing.HotelName {
		patch.HotelName = &incoming.HotelName
		updated = append(updated, "hotel_name")
	}
	if incoming.HotelLocation != "" && incoming.HotelLocation != existing.HotelLocation {
		patch.HotelLocation = &incoming.HotelLocation
		updated = append(updated, "hotel_location")
	}
	if incoming.CheckInDate != nil && !sameDate(incoming.CheckInDate, existing.CheckInDate) {
		patch.CheckInDate = incoming.CheckInDate
		updated = append(updated, "check_in_date")
	}
	if incoming.CheckOutDate != nil && !sameDate(incoming.CheckOutDate, existing.CheckOutDate) {
		patch.CheckOutDate = incoming.CheckOutDate
		updated = append(updated, "check_out_date")
	}
	if incoming.GuestLanguage != "" && incoming.GuestLanguage != existing.GuestLanguage {
		patch.GuestLanguage = &incoming.GuestLanguage
		updated = append(updated, "guest_language")
	}
	if incoming.Latitude != nil && incoming.Longitude != nil {
		if existing.Latitude == nil || existing.Longitude == nil ||
			*existing.Latitude != *incoming.Latitude || *existing.Longitude != *incoming.Longitude {
			patch.Latitude = incoming.Latitude
			patch.Longitude = incoming.Longitude
			updated = append(updated, "coordinates")
		}
	}
	// A replayed event reactivates a previously cancelled booking.
	if existing.BookingStatus == "cancelled" {
		status := "active"
		patch.BookingStatus = &status
		updated = append(updated, "booking_status")
	}

	return patch, updated
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
