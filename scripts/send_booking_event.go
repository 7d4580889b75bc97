package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/FACorreiaa/go-guest-concierge/internal/api/event"
)

var (
	target    = flag.String("url", "http://localhost:8080/webhook/booking", "webhook endpoint to post to")
	bookingID = flag.String("booking-id", "", "booking identifier, random when empty")
	guest     = flag.String("guest", "Test Guest", "guest name")
	hotel     = flag.String("hotel", "Test Hotel", "hotel name")
	location  = flag.String("location", "Panaji, Goa, India", "hotel location")
	language  = flag.String("language", "en", "guest language code")
	eventType = flag.String("event", "booking.created", "event type to send")
)

// Posts a signed booking event to a running instance, for local testing of
// the webhook path without the booking platform.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	flag.Parse()

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		log.Println("WEBHOOK_SECRET not set, sending unsigned event")
	}

	id := *bookingID
	if id == "" {
		id = "BK-" + uuid.NewString()[:8]
	}

	checkIn := time.Now().AddDate(0, 0, 1)
	payload := map[string]any{
		"event_type": *eventType,
		"booking": map[string]any{
			"booking_id":     id,
			"guest_name":     *guest,
			"hotel_name":     *hotel,
			"hotel_location": *location,
			"guest_language": *language,
			"check_in_date":  checkIn.Format("2006-01-02"),
			"check_out_date": checkIn.AddDate(0, 0, 3).Format("2006-01-02"),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to encode payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(event.SignatureHeader, event.ComputeSignature([]byte(secret), body))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s\n%s\n", resp.Status, id, out)
}
