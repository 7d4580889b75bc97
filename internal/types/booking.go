package types

import (
	"encoding/json"
	"time"
)

// Booking is the root entity driving all chat context. It is created from a
// "booking.created" webhook event and never hard-deleted: cancellation only
// flips the linked chat sessions inactive so the row stays around for audit.
type Booking struct {
	ID              int64           `json:"id"`
	BookingID       string          `json:"booking_id"`
	GuestName       string          `json:"guest_name"`
	GuestEmail      string          `json:"guest_email"`
	GuestPhone      string          `json:"guest_phone,omitempty"`
	HotelName       string          `json:"hotel_name"`
	HotelLocation   string          `json:"hotel_location"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	CheckInDate     *time.Time      `json:"-"`
	CheckOutDate    *time.Time      `json:"-"`
	GuestLanguage   string          `json:"guest_language"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	HotelID         string          `json:"hotel_id,omitempty"`
	BookingStatus   string          `json:"booking_status,omitempty"`
	BookingSource   string          `json:"booking_source,omitempty"`
	RawEvent        json.RawMessage `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MarshalJSON renders the stay dates as plain calendar dates, matching the
// wire format the dashboard and chat clients expect.
func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	aux := struct {
		alias
		CheckInDate  *string `json:"check_in_date"`
		CheckOutDate *string `json:"check_out_date"`
	}{alias: alias(b)}
	if b.CheckInDate != nil {
		s := b.CheckInDate.Format("2006-01-02")
		aux.CheckInDate = &s
	}
	if b.CheckOutDate != nil {
		s := b.CheckOutDate.Format("2006-01-02")
		aux.CheckOutDate = &s
	}
	return json.Marshal(aux)
}

// BookingPatch carries the sparse per-field update applied by
// "booking.updated" events. Only non-nil fields are written.
type BookingPatch struct {
	GuestName     *string
	GuestEmail    *string
	GuestPhone    *string
	HotelName     *string
	HotelLocation *string
	CheckInDate   *time.Time
	CheckOutDate  *time.Time
	GuestLanguage *string
	BookingStatus *string
	Latitude      *float64
	Longitude     *float64
}

// IsEmpty reports whether the patch would change nothing.
func (p BookingPatch) IsEmpty() bool {
	return p.GuestName == nil && p.GuestEmail == nil && p.GuestPhone == nil &&
		p.HotelName == nil && p.HotelLocation == nil && p.CheckInDate == nil &&
		p.CheckOutDate == nil && p.GuestLanguage == nil && p.BookingStatus == nil &&
		p.Latitude == nil && p.Longitude == nil
}
