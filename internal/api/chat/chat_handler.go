package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewChatHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// CreateSession handles POST /chat/session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "CreateSession")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateSession"))

	var req types.CreateSessionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookingID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "booking_id is required")
		return
	}

	resp, err := h.service.CreateSession(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to create session")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Session created")
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// SendMessage handles POST /chat/message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "SendMessage")
	defer span.End()

	l := h.logger.With(slog.String("handler", "SendMessage"))

	var req types.SendMessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" || req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "session_id and message are required")
		return
	}

	resp, err := h.service.SendMessage(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to handle message")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Message handled")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetHistory handles GET /chat/history/{sessionID}.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "GetHistory")
	defer span.End()

	sessionID := chi.URLParam(r, "sessionID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.service.GetHistory(ctx, sessionID, limit)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to load history")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "History returned")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetRecommendations handles GET /chat/recommendations/{sessionID}/{category}.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "GetRecommendations")
	defer span.End()

	sessionID := chi.URLParam(r, "sessionID")
	category := chi.URLParam(r, "category")

	resp, err := h.service.GetRecommendations(ctx, sessionID, category)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to fetch recommendations")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Recommendations returned")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetItinerary handles GET /chat/itinerary/{sessionID}.
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "GetItinerary")
	defer span.End()

	sessionID := chi.URLParam(r, "sessionID")

	resp, err := h.service.GenerateItinerary(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, r, err, "Failed to generate itinerary")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary returned")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrBookingNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionInactive):
		api.ErrorResponse(w, r, http.StatusGone, err.Error())
	case errors.Is(err, ErrInvalidCategory):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}
