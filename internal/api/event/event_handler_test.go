package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) ProcessEvent(ctx context.Context, event *types.BookingEvent, raw json.RawMessage) (*types.EventResult, error) {
	args := m.Called(ctx, event, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.EventResult), args.Error(1)
}

func TestSignatureRoundTrip(t *testing.T) {
	secret := []byte("shh")
	body := []byte(`{"event_type":"booking.created"}`)

	header := ComputeSignature(secret, body)
	assert.True(t, VerifySignature(secret, body, header))
	assert.False(t, VerifySignature(secret, []byte("tampered"), header))
	assert.False(t, VerifySignature(secret, body, "sha256=deadbeef"))
	assert.False(t, VerifySignature(secret, body, "md5=whatever"))
	assert.False(t, VerifySignature(secret, body, ""))
}

func TestHandleBookingEvent_RejectsBadSignature(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "secret", testLogger())

	body := []byte(`{"event_type":"booking.created","booking":{"booking_id":"BK-1"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/booking-events", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "sha256=0000")
	rec := httptest.NewRecorder()

	h.HandleBookingEvent(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleBookingEvent_AcceptsSignedEvent(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "secret", testLogger())

	body := []byte(`{"event_type":"booking.created","booking":{"booking_id":"BK-1"}}`)
	svc.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(e *types.BookingEvent) bool {
		return e.EventType == "booking.created"
	}), mock.Anything).Return(&types.EventResult{Status: "created", BookingID: "BK-1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/booking-events", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, ComputeSignature([]byte("secret"), body))
	rec := httptest.NewRecorder()

	h.HandleBookingEvent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result types.EventResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "created", result.Status)
	svc.AssertExpectations(t)
}

func TestHandleBookingEvent_MalformedJSON(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "secret", testLogger())

	body := []byte(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/booking-events", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, ComputeSignature([]byte("secret"), body))
	rec := httptest.NewRecorder()

	h.HandleBookingEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimulateEvent_SkipsSignature(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "secret", testLogger())

	body := []byte(`{"event_type":"booking.created","booking":{"booking_id":"BK-1"}}`)
	svc.On("ProcessEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.EventResult{Status: "created"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate-event", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSimulateEvent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleBookingEvent_PersistenceFailureIsServerError(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "", testLogger())

	body := []byte(`{"event_type":"booking.created","booking":{"booking_id":"BK-1"}}`)
	svc.On("ProcessEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodPost, "/api/booking-events", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleBookingEvent(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleBookingEvent_InvalidPayloadIsClientError(t *testing.T) {
	svc := new(MockEventService)
	h := NewEventHandler(svc, "", testLogger())

	body := []byte(`{"event_type":"booking.created","booking":{"booking_id":"BK-1"}}`)
	svc.On("ProcessEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: missing required fields: guest_name", ErrInvalidEvent))

	req := httptest.NewRequest(http.MethodPost, "/api/booking-events", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleBookingEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
