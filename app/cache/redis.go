package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-guest-concierge/config"
)

// NewRedisClient connects to Redis using the loaded configuration.
// A nil client is returned when the server is unreachable so callers
// can degrade to the durable cache tier instead of failing startup.
func NewRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Repositories.Redis.Host, cfg.Repositories.Redis.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Repositories.Redis.Password,
		DB:       cfg.Repositories.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, falling back to database cache only",
			slog.String("addr", addr),
			slog.Any("error", err),
		)
		return nil
	}

	logger.Info("Redis connection established", slog.String("addr", addr))
	return client
}
