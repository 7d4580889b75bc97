package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ SearchClient = (*HTTPSearchClient)(nil)

// SearchClient looks up live bookings for a guest phone number in the
// upstream reservation system.
type SearchClient interface {
	SearchByPhone(ctx context.Context, phoneNumber, fromDate string) ([]types.ExternalBooking, error)
}

type HTTPSearchClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	authHeader string
}

func NewHTTPSearchClient(apiURL, authHeader string, timeout time.Duration, logger *slog.Logger) *HTTPSearchClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSearchClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		authHeader: authHeader,
	}
}

// searchEnvelope is the upstream response wrapper. Success is signalled
// either by status == 1 or status_code == "SUCCESS".
type searchEnvelope struct {
	Status     json.RawMessage `json:"status"`
	StatusCode string          `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Bookings   json.RawMessage `json:"bookings"`
	Results    json.RawMessage `json:"results"`
}

func (e *searchEnvelope) succeeded() bool {
	if e.StatusCode == "SUCCESS" {
		return true
	}
	var numeric int
	if err := json.Unmarshal(e.Status, &numeric); err == nil {
		return numeric == 1
	}
	return false
}

// rawBooking mirrors the upstream booking entry across its shape
// variations.
type rawBooking struct {
	BookingID    string          `json:"booking_id"`
	ID           string          `json:"id"`
	GroupCode    string          `json:"group_code"`
	GuestName    string          `json:"guest_name"`
	GuestEmail   string          `json:"guest_email"`
	GuestPhone   string          `json:"guest_phone"`
	HotelCode    string          `json:"hotel_code"`
	HotelDetails struct {
		HotelName     string `json:"hotel_name"`
		LegalAddress  string `json:"legal_address"`
		PostalAddress string `json:"postal_address"`
	} `json:"hotel_details"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	Status             string  `json:"status"`
	Language           string  `json:"language"`
	TotalBookingAmount float64 `json:"total_booking_amount"`
	PaidAmount         float64 `json:"paid_amount"`
	Balance            float64 `json:"balance"`
}

func (c *HTTPSearchClient) SearchByPhone(ctx context.Context, phoneNumber, fromDate string) ([]types.ExternalBooking, error) {
	if c.apiURL == "" {
		return nil, fmt.Errorf("booking search is not configured")
	}
	if fromDate == "" {
		fromDate = time.Now().Format("2006-01-02")
	}

	l := c.logger.With(slog.String("method", "SearchByPhone"), slog.String("phone_number", phoneNumber))

	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid booking search URL: %w", err)
	}
	q := u.Query()
	q.Set("phone_number", phoneNumber)
	q.Set("from_date", fromDate)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build booking search request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().ProviderRequestDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("booking search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("booking search returned status %d", resp.StatusCode)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode booking search response: %w", err)
	}
	if !envelope.succeeded() {
		return nil, fmt.Errorf("booking search rejected the query: %s", envelope.Message)
	}

	bookings := extractBookings(&envelope)
	l.InfoContext(ctx, "Booking search completed", slog.Int("results", len(bookings)))
	return bookings, nil
}

// extractBookings walks the shapes the upstream API is known to emit:
// data.data.bookings, data.bookings, data.results, a single booking as
// data, or data as a bare list.
func extractBookings(envelope *searchEnvelope) []types.ExternalBooking {
	for _, candidate := range [][]byte{envelope.Data, envelope.Bookings, envelope.Results} {
		if len(candidate) == 0 {
			continue
		}
		if raws := parseBookingList(candidate); raws != nil {
			return normalizeBookings(raws)
		}
	}
	return nil
}

func parseBookingList(payload []byte) []rawBooking {
	// Bare list shape.
	var list []rawBooking
	if err := json.Unmarshal(payload, &list); err == nil {
		return list
	}

	var obj struct {
		Data     json.RawMessage `json:"data"`
		Bookings []rawBooking    `json:"bookings"`
		Results  []rawBooking    `json:"results"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}
	if obj.Bookings != nil {
		return obj.Bookings
	}
	if obj.Results != nil {
		return obj.Results
	}
	if len(obj.Data) > 0 {
		return parseBookingList(obj.Data)
	}

	// Single booking shape.
	var single rawBooking
	if err := json.Unmarshal(payload, &single); err == nil && (single.BookingID != "" || single.ID != "") {
		return []rawBooking{single}
	}
	return nil
}

func normalizeBookings(raws []rawBooking) []types.ExternalBooking {
	var out []types.ExternalBooking
	for i := range raws {
		if !isActiveBooking(&raws[i]) {
			continue
		}
		out = append(out, normalizeBooking(&raws[i]))
	}
	return out
}

// inactiveStatuses are never surfaced to guests.
var inactiveStatuses = map[string]bool{
	"checked_out": true,
	"cancelled":   true,
	"canceled":    true,
	"no_show":     true,
	"no-show":     true,
	"noshow":      true,
}

func isActiveBooking(b *rawBooking) bool {
	return !inactiveStatuses[strings.TrimSpace(strings.ToLower(b.Status))]
}

func normalizeBooking(b *rawBooking) types.ExternalBooking {
	bookingID := b.BookingID
	if bookingID == "" {
		bookingID = b.ID
	}
	guestName := b.GuestName
	if guestName == "" {
		guestName = "Guest"
	}
	hotelName := b.HotelDetails.HotelName
	if hotelName == "" {
		hotelName = "Unknown Hotel"
	}
	hotelLocation := b.HotelDetails.LegalAddress
	if hotelLocation == "" {
		hotelLocation = b.HotelDetails.PostalAddress
	}
	if hotelLocation == "" {
		hotelLocation = "Unknown Location"
	}
	status := b.Status
	if status == "" {
		status = "confirmed"
	}
	language := b.Language
	if language == "" {
		language = "en"
	}
	return types.ExternalBooking{
		BookingID:       bookingID,
		ReferenceNumber: b.GroupCode,
		GuestName:       guestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		HotelName:       hotelName,
		HotelLocation:   hotelLocation,
		HotelID:         b.HotelCode,
		CheckInDate:     normalizeDate(b.CheckIn),
		CheckOutDate:    normalizeDate(b.CheckOut),
		BookingStatus:   status,
		GuestLanguage:   language,
		TotalAmount:     b.TotalBookingAmount,
		PaidAmount:      b.PaidAmount,
		Balance:         b.Balance,
	}
}

// normalizeDate converts the upstream "06 June, 2025" form to a calendar
// date. Anything else passes through untouched.
func normalizeDate(s string) string {
	if s == "" || !strings.Contains(s, ",") {
		return s
	}
	t, err := time.Parse("02 January, 2006", s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
