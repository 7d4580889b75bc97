package rcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the two-tier recommendation cache. Redis answers hot reads,
// Postgres keeps entries across restarts. Either tier may be absent.
type Service interface {
	Get(ctx context.Context, coords types.Coordinates, category types.Category, language string) ([]types.Place, bool)
	Set(ctx context.Context, coords types.Coordinates, category types.Category, language string, places []types.Place)
}

type ServiceImpl struct {
	logger *slog.Logger
	redis  *redis.Client
	repo   Repository
	ttl    time.Duration
}

// NewServiceImpl accepts a nil redis client, the durable tier then
// serves alone.
func NewServiceImpl(redisClient *redis.Client, repo Repository, ttl time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		redis:  redisClient,
		repo:   repo,
		ttl:    ttl,
	}
}

// CacheKey quantizes coordinates to four decimals, roughly eleven meters,
// so nearby lookups share entries.
func CacheKey(coords types.Coordinates, category types.Category, language string) string {
	return fmt.Sprintf("%.4f_%.4f_%s_%s", coords.Latitude, coords.Longitude, category, language)
}

func (s *ServiceImpl) Get(ctx context.Context, coords types.Coordinates, category types.Category, language string) ([]types.Place, bool) {
	ctx, span := otel.Tracer("RecommendationCache").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("cache.category", string(category)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Get"))
	key := CacheKey(coords, category, language)

	if s.redis != nil {
		payload, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var places []types.Place
			if err := json.Unmarshal(payload, &places); err == nil {
				metrics.Get().RecommendationCacheHits.Add(ctx, 1)
				span.SetStatus(codes.Ok, "Redis hit")
				return places, true
			}
			l.WarnContext(ctx, "Corrupt redis cache entry, dropping", slog.String("key", key))
			s.redis.Del(ctx, key)
		} else if err != redis.Nil {
			l.WarnContext(ctx, "Redis read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	places, err := s.repo.Get(ctx, key)
	if err != nil {
		l.ErrorContext(ctx, "Durable cache read failed", slog.String("key", key), slog.Any("error", err))
		span.RecordError(err)
	}
	if places == nil {
		metrics.Get().RecommendationCacheMisses.Add(ctx, 1)
		span.SetStatus(codes.Ok, "Cache miss")
		return nil, false
	}

	// Backfill the fast tier so the next read skips Postgres.
	s.writeRedis(ctx, key, places)
	metrics.Get().RecommendationCacheHits.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Durable tier hit")
	return places, true
}

func (s *ServiceImpl) Set(ctx context.Context, coords types.Coordinates, category types.Category, language string, places []types.Place) {
	ctx, span := otel.Tracer("RecommendationCache").Start(ctx, "Set")
	defer span.End()

	l := s.logger.With(slog.String("method", "Set"))
	key := CacheKey(coords, category, language)

	if err := s.repo.Save(ctx, key, coords, category, language, places, s.ttl); err != nil {
		l.ErrorContext(ctx, "Durable cache write failed", slog.String("key", key), slog.Any("error", err))
		span.RecordError(err)
	}
	s.writeRedis(ctx, key, places)
	span.SetStatus(codes.Ok, "Cache updated")
}

func (s *ServiceImpl) writeRedis(ctx context.Context, key string, places []types.Place) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(places)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "Redis write failed", slog.String("key", key), slog.Any("error", err))
	}
}
