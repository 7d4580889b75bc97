package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewUserHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Login handles POST /user/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "Login")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidPhone) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Login failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Logged in")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Validate handles POST /user/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "Validate")
	defer span.End()

	u, err := h.service.ValidateToken(ctx, sessionToken(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "Token validation failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if u == nil {
		span.SetStatus(codes.Error, "Invalid token")
		api.ErrorResponse(w, r, http.StatusUnauthorized, ErrInvalidToken.Error())
		return
	}

	span.SetStatus(codes.Ok, "Token valid")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"valid": true,
		"user":  u,
	})
}

// Logout handles POST /user/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "Logout")
	defer span.End()

	if err := h.service.Logout(ctx, sessionToken(r)); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	span.SetStatus(codes.Ok, "Logged out")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "logged out",
	})
}

func sessionToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Session-Token")
}
