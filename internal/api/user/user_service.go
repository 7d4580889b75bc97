package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var (
	ErrInvalidPhone = errors.New("a valid phone number is required")
	ErrInvalidToken = errors.New("invalid or expired session token")
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*types.User, error)
	Logout(ctx context.Context, token string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// NormalizePhone strips separators and keeps digits only, so the same
// number always maps to the same account regardless of formatting.
func NormalizePhone(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Login creates the account on first contact and rotates the session token
// on every call. The previous token stops working immediately.
func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	phone := NormalizePhone(req.PhoneNumber)
	if phone == "" {
		span.SetStatus(codes.Error, "Invalid phone number")
		return nil, ErrInvalidPhone
	}

	existing, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, err
	}

	token := uuid.NewString()

	var u *types.User
	isNew := existing == nil
	if isNew {
		u, err = s.repo.Create(ctx, phone, req.Name, req.Email, token)
	} else {
		u, err = s.repo.RefreshLogin(ctx, existing.ID, req.Name, req.Email, token)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Login persistence failed")
		return nil, err
	}

	l.InfoContext(ctx, "User logged in",
		slog.String("phone_number", phone), slog.Bool("is_new_user", isNew))
	span.SetStatus(codes.Ok, "Logged in")

	return &types.LoginResponse{
		Status:       "success",
		User:         u,
		SessionToken: token,
		IsNewUser:    isNew,
	}, nil
}

// ValidateToken returns the active user holding the token, or nil when the
// token is unknown, cleared, or blank.
func (s *ServiceImpl) ValidateToken(ctx context.Context, token string) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ValidateToken")
	defer span.End()

	if token == "" {
		return nil, nil
	}
	u, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return u, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, token string) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Logout")
	defer span.End()

	u, err := s.ValidateToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if u == nil {
		span.SetStatus(codes.Error, "Unknown token")
		return ErrInvalidToken
	}

	if err := s.repo.ClearToken(ctx, u.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Logout failed")
		return err
	}

	s.logger.InfoContext(ctx, "User logged out", slog.String("phone_number", u.PhoneNumber))
	span.SetStatus(codes.Ok, "Logged out")
	return nil
}
