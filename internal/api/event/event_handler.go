package event

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
	secret  string
}

func NewEventHandler(service Service, secret string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		secret:  secret,
	}
}

// HandleBookingEvent handles POST /webhook/booking, the authenticated
// webhook endpoint.
func (h *Handler) HandleBookingEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "HandleBookingEvent")
	defer span.End()

	l := h.logger.With(slog.String("handler", "HandleBookingEvent"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		l.WarnContext(ctx, "Failed to read webhook body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Body read failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, "unable to read request body")
		return
	}

	if h.secret == "" {
		l.WarnContext(ctx, "Webhook secret not configured, accepting unsigned event")
	} else if !VerifySignature([]byte(h.secret), body, r.Header.Get(SignatureHeader)) {
		l.WarnContext(ctx, "Webhook signature verification failed")
		span.SetStatus(codes.Error, "Invalid signature")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	h.process(w, r, body)
}

// HandleSimulateEvent handles POST /simulate/booking-event. It skips signature
// verification so local tooling can replay payloads.
func (h *Handler) HandleSimulateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "HandleSimulateEvent")
	defer span.End()

	l := h.logger.With(slog.String("handler", "HandleSimulateEvent"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		l.WarnContext(ctx, "Failed to read body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Body read failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, "unable to read request body")
		return
	}

	h.process(w, r, body)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, body []byte) {
	ctx, span := otel.Tracer("EventHandler").Start(r.Context(), "process")
	defer span.End()

	l := h.logger.With(slog.String("handler", "process"))

	var event types.BookingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		l.WarnContext(ctx, "Malformed webhook JSON", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed JSON")
		api.ErrorResponse(w, r, http.StatusBadRequest, "malformed event payload")
		return
	}

	result, err := h.service.ProcessEvent(ctx, &event, body)
	if err != nil {
		l.ErrorContext(ctx, "Event processing failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Processing failed")
		// A payload the producer sent broken is the caller's fault, a
		// storage failure is ours.
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidEvent) {
			status = http.StatusBadRequest
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	l.InfoContext(ctx, "Event processed",
		slog.String("status", result.Status),
		slog.String("booking_id", result.BookingID),
	)
	span.SetStatus(codes.Ok, "Event processed")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
