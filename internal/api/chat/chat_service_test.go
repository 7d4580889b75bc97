package chat

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/itinerary"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*types.ChatSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatSession), args.Error(1)
}

func (m *MockRepository) GetBookingByRef(ctx context.Context, id int64) (*types.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Booking), args.Error(1)
}

func (m *MockRepository) GetBookingByBookingID(ctx context.Context, bookingID string) (*types.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Booking), args.Error(1)
}

func (m *MockRepository) CreateSession(ctx context.Context, bookingRef int64, language string) (*types.ChatSession, error) {
	args := m.Called(ctx, bookingRef, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatSession), args.Error(1)
}

func (m *MockRepository) SaveMessage(ctx context.Context, sessionRef int64, msgType types.MessageType, content string, metadata map[string]any) (*types.ChatMessage, error) {
	args := m.Called(ctx, sessionRef, msgType, content, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatMessage), args.Error(1)
}

func (m *MockRepository) GetMessages(ctx context.Context, sessionRef int64, limit int) ([]types.ChatMessage, error) {
	args := m.Called(ctx, sessionRef, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatMessage), args.Error(1)
}

func (m *MockRepository) TouchSession(ctx context.Context, sessionRef int64) error {
	args := m.Called(ctx, sessionRef)
	return args.Error(0)
}

type MockPlacesService struct {
	mock.Mock
}

func (m *MockPlacesService) GetRecommendations(ctx context.Context, coords types.Coordinates, category types.Category) ([]types.Place, error) {
	args := m.Called(ctx, coords, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, coords types.Coordinates, category types.Category, language string) ([]types.Place, bool) {
	args := m.Called(ctx, coords, category, language)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]types.Place), args.Bool(1)
}

func (m *MockCacheService) Set(ctx context.Context, coords types.Coordinates, category types.Category, language string, places []types.Place) {
	m.Called(ctx, coords, category, language, places)
}

// passthroughTranslator leaves text alone so assertions can match the
// English copy.
type passthroughTranslator struct{}

func (passthroughTranslator) Translate(_ context.Context, text, _ string) string {
	return text
}

func (passthroughTranslator) TranslatePlaces(_ context.Context, places []types.Place, _ string) []types.Place {
	return places
}

type MockItineraryService struct {
	mock.Mock
}

func (m *MockItineraryService) Generate(ctx context.Context, booking *types.Booking) (string, error) {
	args := m.Called(ctx, booking)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixture struct {
	repo      *MockRepository
	places    *MockPlacesService
	cache     *MockCacheService
	itinerary *MockItineraryService
	svc       *ServiceImpl
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockRepository),
		places:    new(MockPlacesService),
		cache:     new(MockCacheService),
		itinerary: new(MockItineraryService),
	}
	f.svc = NewServiceImpl(f.repo, f.places, f.cache, passthroughTranslator{}, f.itinerary, testLogger())
	return f
}

var (
	lat = 15.5553
	lon = 73.7517
)

func activeBooking() *types.Booking {
	return &types.Booking{
		ID:            42,
		BookingID:     "BK-1001",
		GuestName:     "Asha Rao",
		HotelName:     "Sea Breeze Resort",
		HotelLocation: "Baga, Goa",
		Latitude:      &lat,
		Longitude:     &lon,
		GuestLanguage: "en",
		BookingStatus: "active",
	}
}

func activeSession() *types.ChatSession {
	return &types.ChatSession{
		ID:            7,
		SessionID:     uuid.MustParse("5d8a3ad2-9a1f-4b3c-8a77-1c2d3e4f5a6b"),
		BookingRef:    42,
		GuestLanguage: "en",
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
}

func TestCreateSession_SendsWelcomeInGuestLanguage(t *testing.T) {
	f := newFixture()

	booking := activeBooking()
	booking.GuestLanguage = "hi"
	session := activeSession()
	session.GuestLanguage = "hi"

	f.repo.On("GetBookingByBookingID", mock.Anything, "BK-1001").Return(booking, nil)
	f.repo.On("CreateSession", mock.Anything, int64(42), "hi").Return(session, nil)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot,
		mock.MatchedBy(func(content string) bool {
			return strings.Contains(content, "Asha") && strings.Contains(content, "Sea Breeze Resort")
		}), mock.Anything).Return(&types.ChatMessage{ID: 1, Type: types.MessageTypeBot}, nil).Once()
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot,
		mock.MatchedBy(func(content string) bool {
			return strings.Contains(content, "🍽️") && strings.Contains(content, "🗺️")
		}), mock.Anything).Return(&types.ChatMessage{ID: 2, Type: types.MessageTypeBot}, nil).Once()

	resp, err := f.svc.CreateSession(context.Background(), types.CreateSessionRequest{BookingID: "BK-1001"})
	require.NoError(t, err)
	assert.Equal(t, session.SessionID.String(), resp.SessionID)
	require.Len(t, resp.Messages, 2)
	f.repo.AssertExpectations(t)
}

func TestCreateSession_UnknownBooking(t *testing.T) {
	f := newFixture()
	f.repo.On("GetBookingByBookingID", mock.Anything, "BK-404").Return(nil, nil)

	_, err := f.svc.CreateSession(context.Background(), types.CreateSessionRequest{BookingID: "BK-404"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSendMessage_CategoryServedFromCache(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()
	cached := []types.Place{{PlaceID: "p1", Name: "Corner Cafe", Rating: 4.5}}

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeUser, "where to eat", mock.Anything).
		Return(&types.ChatMessage{ID: 1}, nil)
	f.cache.On("Get", mock.Anything, types.Coordinates{Latitude: lat, Longitude: lon},
		types.CategoryRestaurants, "en").Return(cached, true)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot, mock.Anything,
		mock.MatchedBy(func(meta map[string]any) bool {
			return meta["category"] == "restaurants" && meta["count"] == 1
		})).Return(&types.ChatMessage{ID: 2}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: session.SessionID.String(),
		Message:   "where to eat",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "Corner Cafe")
	f.places.AssertNotCalled(t, "GetRecommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_CacheMissFetchesAndStores(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()
	fetched := []types.Place{{PlaceID: "p1", Name: "Night Owl", Rating: 4.0}}
	coords := types.Coordinates{Latitude: lat, Longitude: lon}

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeUser, mock.Anything, mock.Anything).
		Return(&types.ChatMessage{ID: 1}, nil)
	f.cache.On("Get", mock.Anything, coords, types.CategoryNightlife, "en").Return(nil, false)
	f.places.On("GetRecommendations", mock.Anything, coords, types.CategoryNightlife).Return(fetched, nil)
	f.cache.On("Set", mock.Anything, coords, types.CategoryNightlife, "en", fetched).Return()
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot, mock.Anything, mock.Anything).
		Return(&types.ChatMessage{ID: 2}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: session.SessionID.String(),
		Message:   "any bars nearby",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "Night Owl")
	f.cache.AssertExpectations(t)
	f.places.AssertExpectations(t)
}

func TestSendMessage_NoCoordinatesExplainsInstead(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()
	booking.Latitude = nil
	booking.Longitude = nil

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.repo.On("SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.ChatMessage{}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: session.SessionID.String(),
		Message:   "restaurants",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "location")
	f.places.AssertNotCalled(t, "GetRecommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_ItineraryIntent(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.repo.On("SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.ChatMessage{}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)
	f.itinerary.On("Generate", mock.Anything, booking).Return("🗺️ YOUR PERSONALIZED ITINERARY - Goa\nDay 1 ...", nil)

	resp, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: session.SessionID.String(),
		Message:   "plan my stay please",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "ITINERARY")
	assert.Equal(t, "itinerary", resp.Response.Metadata["intent"])
	assert.Equal(t, []string{"back"}, resp.Response.Metadata["actions"])
}

func TestGenerateItinerary_MissingStayDatesExplainsWhy(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.itinerary.On("Generate", mock.Anything, booking).Return("", itinerary.ErrMissingStayDates)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot, mock.Anything,
		mock.MatchedBy(func(meta map[string]any) bool { return meta["error"] == true })).
		Return(&types.ChatMessage{ID: 3}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.GenerateItinerary(context.Background(), session.SessionID.String())
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "check-in and check-out dates")
}

func TestGenerateItinerary_GenerationDisabledKeepsChatUseful(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.itinerary.On("Generate", mock.Anything, booking).Return("", itinerary.ErrUnavailable)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot, mock.Anything,
		mock.MatchedBy(func(meta map[string]any) bool { return meta["error"] == true })).
		Return(&types.ChatMessage{ID: 3}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.GenerateItinerary(context.Background(), session.SessionID.String())
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "still recommend restaurants")
}

func TestGenerateItinerary_AppendsBotTurn(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.itinerary.On("Generate", mock.Anything, booking).Return("🗺️ YOUR PERSONALIZED ITINERARY - Goa\nDay 1 ...", nil)
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot,
		mock.MatchedBy(func(content string) bool { return strings.Contains(content, "ITINERARY") }),
		mock.Anything).Return(&types.ChatMessage{ID: 3}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.GenerateItinerary(context.Background(), session.SessionID.String())
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "ITINERARY")
	f.repo.AssertExpectations(t)
}

func TestGenerateItinerary_ProviderFailureFallsBack(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.itinerary.On("Generate", mock.Anything, booking).Return("", errors.New("model unavailable"))
	f.repo.On("SaveMessage", mock.Anything, int64(7), types.MessageTypeBot, mock.Anything,
		mock.MatchedBy(func(meta map[string]any) bool { return meta["error"] == true })).
		Return(&types.ChatMessage{ID: 3}, nil)
	f.repo.On("TouchSession", mock.Anything, int64(7)).Return(nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 50).Return([]types.ChatMessage{}, nil)

	resp, err := f.svc.GenerateItinerary(context.Background(), session.SessionID.String())
	require.NoError(t, err)
	assert.Contains(t, resp.Response.Message, "couldn't put together an itinerary")
}

func TestSendMessage_InactiveSession(t *testing.T) {
	f := newFixture()

	session := activeSession()
	session.IsActive = false
	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)

	_, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: session.SessionID.String(),
		Message:   "hello",
	})
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestSendMessage_BadSessionID(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendMessage(context.Background(), types.SendMessageRequest{
		SessionID: "not-a-uuid",
		Message:   "hello",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetRecommendations_RejectsUnknownCategory(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetRecommendations(context.Background(),
		uuid.NewString(), "spas")
	assert.ErrorIs(t, err, ErrInvalidCategory)
	// the 400 body tells the guest what they can actually ask for
	assert.Contains(t, err.Error(), "restaurants")
	assert.Contains(t, err.Error(), "rentals")
}

func TestGetHistory(t *testing.T) {
	f := newFixture()

	session := activeSession()
	booking := activeBooking()
	messages := []types.ChatMessage{{ID: 1, Type: types.MessageTypeBot, Content: "welcome"}}

	f.repo.On("GetSessionByID", mock.Anything, session.SessionID).Return(session, nil)
	f.repo.On("GetBookingByRef", mock.Anything, int64(42)).Return(booking, nil)
	f.repo.On("GetMessages", mock.Anything, int64(7), 0).Return(messages, nil)

	resp, err := f.svc.GetHistory(context.Background(), session.SessionID.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)
	assert.Len(t, resp.Messages, 1)
}
