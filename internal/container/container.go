package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-guest-concierge/app/cache"
	database "github.com/FACorreiaa/go-guest-concierge/app/db"
	"github.com/FACorreiaa/go-guest-concierge/config"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/admin"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/booking"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/chat"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/event"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/geocode"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/itinerary"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/places"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/rcache"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/translate"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/user"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	EventHandler   *event.Handler
	ChatHandler    *chat.Handler
	BookingHandler *booking.Handler
	UserHandler    *user.Handler
	AdminHandler   *admin.Handler
}

// NewContainer initializes the dependency graph bottom-up: database and
// redis first, then provider clients, repositories, services, handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// Optional: nil when unreachable, the durable cache tier serves alone.
	redisClient := cache.NewRedisClient(cfg, logger)

	geocoder := geocode.NewServiceImpl(cfg.Providers.NominatimEndpoint, cfg.Providers.NominatimUserAgent, logger)
	placesClient := places.NewGoogleClient(cfg.Providers.GooglePlacesAPIKey, logger)
	translator := translate.NewServiceImpl(cfg.Providers.TranslateEndpoint, logger)

	// Without a Gemini key the service still starts; itinerary requests
	// get an unavailable reply instead of aborting the whole app.
	var generator itinerary.Generator
	if cfg.Providers.GeminiAPIKey == "" {
		logger.Warn("Gemini API key not set, itinerary generation disabled")
	} else {
		aiClient, err := itinerary.NewAIClient(ctx, cfg.Providers.GeminiAPIKey)
		if err != nil {
			logger.Error("Failed to initialize generative AI client", slog.Any("error", err))
			return nil, err
		}
		generator = aiClient
	}
	itineraryService := itinerary.NewServiceImpl(generator, logger)

	placesService := places.NewServiceImpl(placesClient,
		cfg.Chatbot.RecommendationRadius, cfg.Chatbot.MaxRecommendations, logger)

	rcacheRepo := rcache.NewPostgresRepository(pool, logger)
	cacheService := rcache.NewServiceImpl(redisClient, rcacheRepo, cfg.Chatbot.CacheTTL, logger)

	eventRepo := event.NewPostgresRepository(pool, logger)
	eventService := event.NewServiceImpl(eventRepo, geocoder, cfg.Chatbot.DefaultLanguage, logger)
	eventHandler := event.NewEventHandler(eventService, cfg.Webhook.Secret, logger)

	chatRepo := chat.NewPostgresRepository(pool, logger)
	chatService := chat.NewServiceImpl(chatRepo, placesService, cacheService, translator, itineraryService, logger)
	chatHandler := chat.NewChatHandler(chatService, logger)

	userRepo := user.NewPostgresRepository(pool, logger)
	userService := user.NewServiceImpl(userRepo, logger)
	userHandler := user.NewUserHandler(userService, logger)

	searchClient := booking.NewHTTPSearchClient(cfg.BookingSearch.URL, cfg.BookingSearch.Auth,
		cfg.BookingSearch.Timeout, logger)
	bookingRepo := booking.NewPostgresRepository(pool, logger)
	bookingService := booking.NewServiceImpl(bookingRepo, searchClient, logger)
	bookingHandler := booking.NewBookingHandler(bookingService, userService, logger)

	adminRepo := admin.NewPostgresRepository(pool, logger)
	adminService := admin.NewServiceImpl(adminRepo, rcacheRepo, logger)
	adminHandler := admin.NewAdminHandler(adminService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		Redis:          redisClient,
		EventHandler:   eventHandler,
		ChatHandler:    chatHandler,
		BookingHandler: bookingHandler,
		UserHandler:    userHandler,
		AdminHandler:   adminHandler,
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations.
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
