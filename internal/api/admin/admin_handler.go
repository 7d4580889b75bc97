package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewAdminHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GetStats handles GET /admin/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "GetStats")
	defer span.End()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load stats", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Stats returned")
	api.WriteJSONResponse(w, r, http.StatusOK, stats)
}

// ListSessions handles GET /admin/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "ListSessions")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.service.ListSessions(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list sessions", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Sessions listed")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// ListMessages handles GET /admin/messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "ListMessages")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.service.ListMessages(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list messages", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Messages listed")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

// ClearSessions handles POST /admin/clear-sessions.
func (h *Handler) ClearSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "ClearSessions")
	defer span.End()

	removed, err := h.service.ClearSessions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to clear sessions", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Sessions cleared")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"removed": removed,
	})
}

// CleanupCache handles POST /admin/cleanup-cache.
func (h *Handler) CleanupCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "CleanupCache")
	defer span.End()

	removed, err := h.service.CleanupCache(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to clean cache", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Cache cleaned")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"removed": removed,
	})
}
