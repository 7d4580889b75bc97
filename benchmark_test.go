package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-guest-concierge/internal/api/admin"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/booking"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/chat"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/event"
	"github.com/FACorreiaa/go-guest-concierge/internal/api/user"
	"github.com/FACorreiaa/go-guest-concierge/internal/router"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

// BenchmarkSuite serves requests through the full router with in-memory
// fakes, so the numbers reflect routing, handler, and JSON overhead only.
type BenchmarkSuite struct {
	router    http.Handler
	state     *conciergeState
	sessionID string
}

func setupBenchmarkSuite() *BenchmarkSuite {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	state := newConciergeState()

	lat, lon := 15.5553, 73.7517
	state.addBooking(&types.Booking{
		BookingID:     "BK-BENCH",
		GuestName:     "Asha Rao",
		HotelName:     "Sea Breeze Resort",
		HotelLocation: "Calangute, Goa",
		GuestLanguage: "en",
		Latitude:      &lat,
		Longitude:     &lon,
		BookingStatus: "confirmed",
		CreatedAt:     time.Now(),
	})
	sessionID := state.openSession("BK-BENCH", "en")

	r := router.SetupRouter(&router.Config{
		EventHandler:   event.NewEventHandler(&fakeEventService{state: state}, e2eWebhookSecret, logger),
		ChatHandler:    chat.NewChatHandler(&fakeChatService{state: state}, logger),
		BookingHandler: booking.NewBookingHandler(&fakeBookingService{state: state}, &fakeUserService{state: state}, logger),
		UserHandler:    user.NewUserHandler(&fakeUserService{state: state}, logger),
		AdminHandler:   admin.NewAdminHandler(&fakeAdminService{state: state}, logger),
	})

	return &BenchmarkSuite{router: r, state: state, sessionID: sessionID}
}

func (suite *BenchmarkSuite) serveJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// BenchmarkWebhookIngestion measures a signed booking event end to end.
func BenchmarkWebhookIngestion(b *testing.B) {
	suite := setupBenchmarkSuite()
	body, _ := json.Marshal(bookingCreatedPayload("BK-BENCH"))
	signature := event.ComputeSignature([]byte(e2eWebhookSecret), body)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/webhook/booking", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(event.SignatureHeader, signature)

		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
	}
}

// BenchmarkSignatureVerification isolates the HMAC check.
func BenchmarkSignatureVerification(b *testing.B) {
	body, _ := json.Marshal(bookingCreatedPayload("BK-BENCH"))
	secret := []byte(e2eWebhookSecret)
	header := event.ComputeSignature(secret, body)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		event.VerifySignature(secret, body, header)
	}
}

// BenchmarkChatMessage measures one guest turn through the router.
func BenchmarkChatMessage(b *testing.B) {
	suite := setupBenchmarkSuite()
	msg := types.SendMessageRequest{SessionID: suite.sessionID, Message: "any dinner ideas?"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.serveJSON("POST", "/chat/message", msg)
	}
}

// BenchmarkHistoryRetrieval measures history reads with a populated session.
func BenchmarkHistoryRetrieval(b *testing.B) {
	suite := setupBenchmarkSuite()
	for i := 0; i < 20; i++ {
		suite.serveJSON("POST", "/chat/message", types.SendMessageRequest{
			SessionID: suite.sessionID,
			Message:   "message",
		})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.serveJSON("GET", "/chat/history/"+suite.sessionID, nil)
	}
}

// BenchmarkRecommendations measures the category recommendation path.
func BenchmarkRecommendations(b *testing.B) {
	suite := setupBenchmarkSuite()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.serveJSON("GET", "/chat/recommendations/"+suite.sessionID+"/restaurants", nil)
	}
}

// BenchmarkGuestLogin measures login with phone normalization.
func BenchmarkGuestLogin(b *testing.B) {
	suite := setupBenchmarkSuite()
	login := types.LoginRequest{PhoneNumber: "+91 98765 43210", Name: "Asha Rao"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.serveJSON("POST", "/user/login", login)
	}
}

// BenchmarkPhoneNormalization isolates the digit filter.
func BenchmarkPhoneNormalization(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = user.NormalizePhone("+91 (98765) 43-210")
	}
}

// BenchmarkBookingSerialization exercises the custom date rendering.
func BenchmarkBookingSerialization(b *testing.B) {
	lat, lon := 15.5553, 73.7517
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 3)
	booking := types.Booking{
		ID:            1,
		BookingID:     "BK-BENCH",
		GuestName:     "Asha Rao",
		HotelName:     "Sea Breeze Resort",
		HotelLocation: "Calangute, Goa",
		Latitude:      &lat,
		Longitude:     &lon,
		CheckInDate:   &checkIn,
		CheckOutDate:  &checkOut,
		GuestLanguage: "en",
		BookingStatus: "confirmed",
		CreatedAt:     time.Now(),
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(booking)
	}
}

// BenchmarkRequestRouting cycles across the public surface.
func BenchmarkRequestRouting(b *testing.B) {
	suite := setupBenchmarkSuite()
	routes := []string{
		"/health",
		"/booking/BK-BENCH",
		"/bookings",
		"/chat/history/" + suite.sessionID,
		"/admin/stats",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.serveJSON("GET", routes[i%len(routes)], nil)
	}
}

// BenchmarkConcurrentHistory measures parallel reads on one session.
func BenchmarkConcurrentHistory(b *testing.B) {
	suite := setupBenchmarkSuite()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			suite.serveJSON("GET", "/chat/history/"+suite.sessionID, nil)
		}
	})
}

// BenchmarkSessionIDGeneration measures session identifier creation.
func BenchmarkSessionIDGeneration(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = uuid.New()
	}
}
