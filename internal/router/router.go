package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-guest-concierge/internal/api"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/admin"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/booking"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/chat"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/event"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/user"
)

const serviceName = "guest-concierge"

// Config carries the handlers the router mounts. Server-wide middleware
// (request id, logger, recoverer) is applied in main before mounting.
type Config struct {
	EventHandler   *event.Handler
	ChatHandler    *chat.Handler
	BookingHandler *booking.Handler
	UserHandler    *user.Handler
	AdminHandler   *admin.Handler
}

// SetupRouter wires every HTTP surface of the service.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-Token", "X-Signature-256"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthCheck)

	r.Post("/webhook/booking", cfg.EventHandler.HandleBookingEvent)
	r.Post("/simulate/booking-event", cfg.EventHandler.HandleSimulateEvent)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/session", cfg.ChatHandler.CreateSession)
		r.Post("/message", cfg.ChatHandler.SendMessage)
		r.Get("/history/{sessionID}", cfg.ChatHandler.GetHistory)
		r.Get("/recommendations/{sessionID}/{category}", cfg.ChatHandler.GetRecommendations)
		r.Get("/itinerary/{sessionID}", cfg.ChatHandler.GetItinerary)
	})

	r.Route("/booking", func(r chi.Router) {
		r.Get("/{bookingID}", cfg.BookingHandler.GetBooking)
		r.Get("/{bookingID}/sessions", cfg.BookingHandler.GetSessions)
	})
	r.Get("/bookings", cfg.BookingHandler.ListBookings)
	r.Post("/bookings/search", cfg.BookingHandler.SearchBookings)

	r.Route("/user", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.Login)
		r.Post("/validate", cfg.UserHandler.Validate)
		r.Post("/logout", cfg.UserHandler.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", cfg.AdminHandler.GetStats)
		r.Get("/sessions", cfg.AdminHandler.ListSessions)
		r.Get("/messages", cfg.AdminHandler.ListMessages)
		r.Post("/clear-sessions", cfg.AdminHandler.ClearSessions)
		r.Post("/cleanup-cache", cfg.AdminHandler.CleanupCache)
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
