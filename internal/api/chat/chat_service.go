package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/itinerary"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/places"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/rcache"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/translate"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionInactive = errors.New("chat session is no longer active")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidCategory = fmt.Errorf("unknown recommendation category, valid categories are: %s", types.CategoryNames())
)

var _ Service = (*ServiceImpl)(nil)

// Service is the conversation orchestrator: it owns sessions, classifies
// guest messages and routes them to recommendations, itineraries or
// canned replies.
type Service interface {
	CreateSession(ctx context.Context, req types.CreateSessionRequest) (*types.SessionResponse, error)
	SendMessage(ctx context.Context, req types.SendMessageRequest) (*types.MessageResponse, error)
	GetHistory(ctx context.Context, sessionID string, limit int) (*types.HistoryResponse, error)
	GetRecommendations(ctx context.Context, sessionID, category string) (*types.RecommendationsResponse, error)
	GenerateItinerary(ctx context.Context, sessionID string) (*types.MessageResponse, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	places     places.Service
	cache      rcache.Service
	translator translate.Service
	itinerary  itinerary.Service
}

func NewServiceImpl(
	repo Repository,
	placesSvc places.Service,
	cacheSvc rcache.Service,
	translator translate.Service,
	itinerarySvc itinerary.Service,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		places:     placesSvc,
		cache:      cacheSvc,
		translator: translator,
		itinerary:  itinerarySvc,
	}
}

func (s *ServiceImpl) CreateSession(ctx context.Context, req types.CreateSessionRequest) (*types.SessionResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "CreateSession", trace.WithAttributes(
		attribute.String("booking.id", req.BookingID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateSession"), slog.String("booking_id", req.BookingID))

	booking, err := s.repo.GetBookingByBookingID(ctx, req.BookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Booking lookup failed")
		return nil, err
	}
	if booking == nil {
		span.SetStatus(codes.Error, "Booking not found")
		return nil, ErrBookingNotFound
	}

	language := req.Language
	if language == "" {
		language = booking.GuestLanguage
	}

	session, err := s.repo.CreateSession(ctx, booking.ID, language)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session creation failed")
		return nil, err
	}

	// Every session opens with two bot turns: the greeting and the
	// category menu the guest picks from.
	welcome, err := s.repo.SaveMessage(ctx, session.ID, types.MessageTypeBot,
		WelcomeMessage(language, booking.GuestName, booking.HotelName), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Welcome message save failed")
		return nil, err
	}
	menu, err := s.repo.SaveMessage(ctx, session.ID, types.MessageTypeBot, MenuMessage(language), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Menu message save failed")
		return nil, err
	}

	l.InfoContext(ctx, "Chat session created", slog.String("session_id", session.SessionID.String()))
	span.SetStatus(codes.Ok, "Session created")

	return &types.SessionResponse{
		SessionID: session.SessionID.String(),
		Booking:   booking,
		Messages:  []types.ChatMessage{*welcome, *menu},
	}, nil
}

func (s *ServiceImpl) SendMessage(ctx context.Context, req types.SendMessageRequest) (*types.MessageResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "SendMessage")
	defer span.End()

	l := s.logger.With(slog.String("method", "SendMessage"), slog.String("session_id", req.SessionID))

	session, booking, err := s.loadSession(ctx, req.SessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session load failed")
		return nil, err
	}

	metrics.Get().ChatMessagesTotal.Add(ctx, 1)

	if _, err := s.repo.SaveMessage(ctx, session.ID, types.MessageTypeUser, req.Message, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "User message save failed")
		return nil, err
	}

	response := s.respond(ctx, session, booking, req.Message)

	if _, err := s.repo.SaveMessage(ctx, session.ID, types.MessageTypeBot, response.Message, response.Metadata); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bot message save failed")
		return nil, err
	}
	if err := s.repo.TouchSession(ctx, session.ID); err != nil {
		l.WarnContext(ctx, "Failed to touch session", slog.Any("error", err))
	}

	messages, err := s.repo.GetMessages(ctx, session.ID, 50)
	if err != nil {
		l.WarnContext(ctx, "Failed to load conversation", slog.Any("error", err))
	}

	span.SetStatus(codes.Ok, "Message handled")
	return &types.MessageResponse{
		SessionID: session.SessionID.String(),
		Response:  response,
		Messages:  messages,
	}, nil
}

func (s *ServiceImpl) GetHistory(ctx context.Context, sessionID string, limit int) (*types.HistoryResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "GetHistory")
	defer span.End()

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	booking, err := s.repo.GetBookingByRef(ctx, session.BookingRef)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	messages, err := s.repo.GetMessages(ctx, session.ID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "History loaded")
	return &types.HistoryResponse{
		SessionID: session.SessionID.String(),
		Booking:   booking,
		Messages:  messages,
		Language:  session.GuestLanguage,
	}, nil
}

func (s *ServiceImpl) GetRecommendations(ctx context.Context, sessionID, category string) (*types.RecommendationsResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "GetRecommendations", trace.WithAttributes(
		attribute.String("category", category),
	))
	defer span.End()

	if !types.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	session, booking, err := s.loadSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	recs, message := s.recommend(ctx, session, booking, types.Category(category))

	span.SetStatus(codes.Ok, "Recommendations returned")
	return &types.RecommendationsResponse{
		SessionID:       session.SessionID.String(),
		Category:        category,
		Recommendations: recs,
		Message:         message,
	}, nil
}

// loadSession resolves a session ID string to an active session and its
// booking.
func (s *ServiceImpl) loadSession(ctx context.Context, sessionID string) (*types.ChatSession, *types.Booking, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	if !session.IsActive {
		return nil, nil, ErrSessionInactive
	}

	booking, err := s.repo.GetBookingByRef(ctx, session.BookingRef)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, ErrBookingNotFound
	}
	return session, booking, nil
}

// respond classifies the message and produces the bot turn. It never
// returns an error: provider trouble is reported to the guest as text.
func (s *ServiceImpl) respond(ctx context.Context, session *types.ChatSession, booking *types.Booking, message string) types.BotResponse {
	language := session.GuestLanguage
	kind, category := detectIntent(message)

	switch kind {
	case intentGreeting:
		return types.BotResponse{
			Message:  WelcomeMessage(language, booking.GuestName, booking.HotelName),
			Metadata: map[string]any{"intent": "greeting"},
		}

	case intentItinerary:
		return s.itineraryResponse(ctx, session, booking)

	case intentCategory:
		recs, text := s.recommend(ctx, session, booking, category)
		return types.BotResponse{
			Message: text,
			Metadata: map[string]any{
				"intent":   "recommendations",
				"category": string(category),
				"count":    len(recs),
			},
		}

	default:
		return types.BotResponse{
			Message:  helpTemplate(language),
			Metadata: map[string]any{"intent": "help"},
		}
	}
}

func (s *ServiceImpl) itineraryResponse(ctx context.Context, session *types.ChatSession, booking *types.Booking) types.BotResponse {
	language := session.GuestLanguage

	text, err := s.itinerary.Generate(ctx, booking)
	if err != nil {
		reply := "I couldn't put together an itinerary right now. Please try again in a little while."
		switch {
		case errors.Is(err, itinerary.ErrUnavailable):
			reply = "Itinerary planning isn't available right now, but I can still recommend restaurants, sights and more near your hotel."
		case errors.Is(err, itinerary.ErrMissingStayDates):
			reply = "I don't have your check-in and check-out dates yet, so I can't plan your stay day by day. Please check with the front desk."
		default:
			s.logger.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		}
		return types.BotResponse{
			Message:  s.translator.Translate(ctx, reply, language),
			Metadata: map[string]any{"intent": "itinerary", "error": true},
		}
	}
	return types.BotResponse{
		Message:  s.translator.Translate(ctx, text, language),
		Metadata: map[string]any{"intent": "itinerary", "actions": []string{"back"}},
	}
}

// GenerateItinerary produces the stay itinerary on demand and appends it to
// the transcript as a bot turn.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, sessionID string) (*types.MessageResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "GenerateItinerary")
	defer span.End()

	session, booking, err := s.loadSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session load failed")
		return nil, err
	}

	response := s.itineraryResponse(ctx, session, booking)

	if _, err := s.repo.SaveMessage(ctx, session.ID, types.MessageTypeBot, response.Message, response.Metadata); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bot message save failed")
		return nil, err
	}
	if err := s.repo.TouchSession(ctx, session.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to touch session", slog.Any("error", err))
	}

	messages, err := s.repo.GetMessages(ctx, session.ID, 50)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load conversation", slog.Any("error", err))
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	return &types.MessageResponse{
		SessionID: session.SessionID.String(),
		Response:  response,
		Messages:  messages,
	}, nil
}

// recommend serves a category request from cache or the places provider
// and renders the chat text.
func (s *ServiceImpl) recommend(ctx context.Context, session *types.ChatSession, booking *types.Booking, category types.Category) ([]types.Place, string) {
	language := session.GuestLanguage

	if booking.Latitude == nil || booking.Longitude == nil {
		return nil, s.translator.Translate(ctx,
			"I don't have your hotel's exact location yet, so I can't look up nearby places. Please check with the front desk.", language)
	}
	coords := types.Coordinates{Latitude: *booking.Latitude, Longitude: *booking.Longitude}

	recs, hit := s.cache.Get(ctx, coords, category, language)
	if !hit {
		fetched, err := s.places.GetRecommendations(ctx, coords, category)
		if err != nil {
			s.logger.ErrorContext(ctx, "Recommendation fetch failed",
				slog.String("category", string(category)), slog.Any("error", err))
			return nil, s.translator.Translate(ctx,
				"I couldn't fetch recommendations right now. Please try again in a moment.", language)
		}
		recs = s.translator.TranslatePlaces(ctx, fetched, language)
		s.cache.Set(ctx, coords, category, language, recs)
	}

	if len(recs) == 0 {
		return nil, s.translator.Translate(ctx,
			"I couldn't find anything in that category near your hotel.", language)
	}

	return recs, formatRecommendations(categoryHeader(language, category), booking.HotelName, recs)
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "guest"
	}
	return fields[0]
}
