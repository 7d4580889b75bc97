package types

import "time"

// User is the guest-login identity, independent of any booking. Identity is
// the normalized phone number; the session token is regenerated on every
// login and cleared on logout.
type User struct {
	ID           int64     `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	SessionToken *string   `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
}

type LoginResponse struct {
	Status       string `json:"status"`
	User         *User  `json:"user"`
	SessionToken string `json:"session_token"`
	IsNewUser    bool   `json:"is_new_user"`
}

// ExternalBooking is one hit from the upstream booking-search API, already
// normalized from its several response shapes.
type ExternalBooking struct {
	BookingID       string  `json:"booking_id"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	GuestName       string  `json:"guest_name"`
	GuestEmail      string  `json:"guest_email,omitempty"`
	GuestPhone      string  `json:"guest_phone,omitempty"`
	HotelName       string  `json:"hotel_name"`
	HotelLocation   string  `json:"hotel_location"`
	HotelID         string  `json:"hotel_id,omitempty"`
	CheckInDate     string  `json:"check_in_date,omitempty"`
	CheckOutDate    string  `json:"check_out_date,omitempty"`
	BookingStatus   string  `json:"booking_status"`
	GuestLanguage   string  `json:"guest_language"`
	TotalAmount     float64 `json:"total_amount,omitempty"`
	PaidAmount      float64 `json:"paid_amount,omitempty"`
	Balance         float64 `json:"balance,omitempty"`
}
