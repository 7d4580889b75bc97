package types

import "encoding/json"

// Booking event types accepted from the upstream producer.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the webhook envelope. The upstream producer changed its
// schema at some point, so two shapes are in the wild and both must keep
// working: the current one carries an Events entity list, the legacy one a
// flat payload under the Booking key. Shape() discriminates on the marker
// field instead of probing keys all over the handler.
type BookingEvent struct {
	EventType   string               `json:"event_type"`
	MessageID   string               `json:"message_id,omitempty"`
	GeneratedAt string               `json:"generated_at,omitempty"`
	Events      []EntityEvent        `json:"events,omitempty"`
	Booking     *BookingEventPayload `json:"booking,omitempty"`
}

// EventShape tags the detected payload variant.
type EventShape int

const (
	ShapeUnknown EventShape = iota
	ShapeEntityList
	ShapeLegacyFlat
)

// Shape returns the payload variant this envelope carries.
func (e *BookingEvent) Shape() EventShape {
	switch {
	case len(e.Events) > 0:
		return ShapeEntityList
	case e.Booking != nil:
		return ShapeLegacyFlat
	default:
		return ShapeUnknown
	}
}

// EntityEvent is one entry of the entity-list shape. Payload stays raw until
// the entity tag says what it is.
type EntityEvent struct {
	EntityName string          `json:"entity_name"`
	Payload    json.RawMessage `json:"payload"`
}

// BookingEventPayload holds booking fields from either shape. The nested
// shape fills the customers array and checkin_date/checkout_date keys; the
// legacy flat shape fills the guest_* and check_in_date/check_out_date keys.
type BookingEventPayload struct {
	BookingID       string       `json:"booking_id"`
	ReferenceNumber string       `json:"reference_number,omitempty"`
	HotelID         string       `json:"hotel_id,omitempty"`
	Status          string       `json:"status,omitempty"`
	CheckinDate     string       `json:"checkin_date,omitempty"`
	CheckoutDate    string       `json:"checkout_date,omitempty"`
	Source          *EventSource `json:"source,omitempty"`
	Customers       []Customer   `json:"customers,omitempty"`
	GuestLanguage   string       `json:"guest_language,omitempty"`

	// Legacy flat-shape fields.
	GuestName     string `json:"guest_name,omitempty"`
	GuestEmail    string `json:"guest_email,omitempty"`
	GuestPhone    string `json:"guest_phone,omitempty"`
	HotelName     string `json:"hotel_name,omitempty"`
	HotelLocation string `json:"hotel_location,omitempty"`
	CheckInDate   string `json:"check_in_date,omitempty"`
	CheckOutDate  string `json:"check_out_date,omitempty"`

	// Bill is merged in from the sibling "bill" entity when present.
	Bill *BillPayload `json:"-"`
}

type EventSource struct {
	ChannelCode     string `json:"channel_code,omitempty"`
	ApplicationCode string `json:"application_code,omitempty"`
	SubchannelCode  string `json:"subchannel_code,omitempty"`
}

type Customer struct {
	CustomerID string       `json:"customer_id,omitempty"`
	FirstName  string       `json:"first_name,omitempty"`
	LastName   string       `json:"last_name,omitempty"`
	Email      string       `json:"email,omitempty"`
	Phone      *PhoneNumber `json:"phone,omitempty"`
	IsPrimary  bool         `json:"is_primary,omitempty"`
	Dummy      bool         `json:"dummy,omitempty"`
}

type PhoneNumber struct {
	Number      string `json:"number,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

type BillPayload struct {
	VendorDetails *VendorDetails `json:"vendor_details,omitempty"`
}

type VendorDetails struct {
	HotelName  string         `json:"hotel_name,omitempty"`
	VendorName string         `json:"vendor_name,omitempty"`
	Address    *VendorAddress `json:"address,omitempty"`
	Phone      *PhoneNumber   `json:"phone,omitempty"`
	MapsLink   string         `json:"maps_link,omitempty"`
}

type VendorAddress struct {
	Field1  string `json:"field_1,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// EventResult is the normalized webhook response.
type EventResult struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	BookingID     string       `json:"booking_id,omitempty"`
	SessionID     string       `json:"session_id,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	UpdatedFields []string     `json:"updated_fields,omitempty"`
}
