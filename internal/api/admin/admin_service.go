package admin

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-guest-concierge/internal/api/rcache"
)

// staleSessionWindow is how long an inactive session survives before the
// cleanup endpoint may remove it.
const staleSessionWindow = 24 * time.Hour

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
	ListSessions(ctx context.Context, limit int) ([]SessionListing, error)
	ListMessages(ctx context.Context, limit int) ([]MessageListing, error)
	ClearSessions(ctx context.Context) (int64, error)
	CleanupCache(ctx context.Context) (int64, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  rcache.Repository
}

func NewServiceImpl(repo Repository, cache rcache.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache,
	}
}

func (s *ServiceImpl) GetStats(ctx context.Context) (*Stats, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "GetStats")
	defer span.End()

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stats query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Stats returned")
	return stats, nil
}

func (s *ServiceImpl) ListSessions(ctx context.Context, limit int) ([]SessionListing, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "ListSessions")
	defer span.End()

	sessions, err := s.repo.ListSessions(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sessions, nil
}

func (s *ServiceImpl) ListMessages(ctx context.Context, limit int) ([]MessageListing, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "ListMessages")
	defer span.End()

	messages, err := s.repo.ListMessages(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return messages, nil
}

func (s *ServiceImpl) ClearSessions(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "ClearSessions")
	defer span.End()

	removed, err := s.repo.DeleteStaleSessions(ctx, staleSessionWindow)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session cleanup failed")
		return 0, err
	}

	s.logger.InfoContext(ctx, "Stale sessions cleared", slog.Int64("removed", removed))
	span.SetStatus(codes.Ok, "Sessions cleared")
	return removed, nil
}

// CleanupCache drops expired recommendation entries from the durable tier.
func (s *ServiceImpl) CleanupCache(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "CleanupCache")
	defer span.End()

	removed, err := s.cache.DeleteExpired(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Cache cleanup failed")
		return 0, err
	}

	s.logger.InfoContext(ctx, "Expired cache entries removed", slog.Int64("removed", removed))
	span.SetStatus(codes.Ok, "Cache cleaned")
	return removed, nil
}
