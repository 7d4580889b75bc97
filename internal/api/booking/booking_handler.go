package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

// TokenValidator resolves a guest session token to its user. The search
// endpoint is the only booking surface that requires one.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.User, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
	tokens  TokenValidator
}

func NewBookingHandler(service Service, tokens TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		tokens:  tokens,
	}
}

// GetBooking handles GET /booking/{bookingID}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "GetBooking")
	defer span.End()

	bookingID := chi.URLParam(r, "bookingID")

	booking, err := h.service.GetBooking(ctx, bookingID)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to load booking")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Booking returned")
	api.WriteJSONResponse(w, r, http.StatusOK, booking)
}

// ListBookings handles GET /bookings.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "ListBookings")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	bookings, err := h.service.ListBookings(ctx, limit)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to list bookings")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Bookings listed")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetSessions handles GET /booking/{bookingID}/sessions.
func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "GetSessions")
	defer span.End()

	bookingID := chi.URLParam(r, "bookingID")

	sessions, err := h.service.GetSessions(ctx, bookingID)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to list sessions")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Sessions listed")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"booking_id": bookingID,
		"sessions":   sessions,
		"count":      len(sessions),
	})
}

type searchRequest struct {
	PhoneNumber string `json:"phone_number"`
	FromDate    string `json:"from_date,omitempty"`
}

// SearchBookings handles POST /bookings/search. The caller must hold a
// valid guest session token.
func (h *Handler) SearchBookings(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "SearchBookings")
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchBookings"))

	user, err := h.tokens.ValidateToken(ctx, bearerToken(r))
	if err != nil || user == nil {
		span.SetStatus(codes.Error, "Unauthorized")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "a valid session token is required")
		return
	}

	var req searchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.PhoneNumber == "" {
		req.PhoneNumber = user.PhoneNumber
	}
	if req.PhoneNumber == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "phone_number is required")
		return
	}

	bookings, err := h.service.SearchByPhone(ctx, req.PhoneNumber, req.FromDate)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Booking search failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Search completed")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Session-Token")
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}
