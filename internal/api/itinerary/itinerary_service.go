package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var (
	// ErrUnavailable means the service runs without a configured model.
	ErrUnavailable = errors.New("itinerary generation is not configured")
	// ErrMissingStayDates means the booking lacks check-in or check-out,
	// so there is nothing to plan around.
	ErrMissingStayDates = errors.New("booking has no stay dates")
)

var _ Service = (*ServiceImpl)(nil)

// Service produces a day-by-day itinerary for the guest's stay.
type Service interface {
	Generate(ctx context.Context, booking *types.Booking) (string, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	generator Generator
}

func NewServiceImpl(generator Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		generator: generator,
	}
}

func (s *ServiceImpl) Generate(ctx context.Context, booking *types.Booking) (string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("booking.id", booking.BookingID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"), slog.String("booking_id", booking.BookingID))

	if s.generator == nil {
		span.SetStatus(codes.Error, "Generator not configured")
		return "", ErrUnavailable
	}

	nights, err := stayNights(booking.CheckInDate, booking.CheckOutDate)
	if err != nil {
		l.WarnContext(ctx, "Cannot plan stay without dates", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Missing stay dates")
		return "", err
	}
	prompt := buildPrompt(booking, nights)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	raw, err := s.generator.GenerateContent(ctx, prompt, config)
	if err != nil {
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", fmt.Errorf("failed to generate itinerary: %w", err)
	}

	formatted := FormatItinerary(raw, booking.HotelLocation, nights)
	l.InfoContext(ctx, "Itinerary generated", slog.Int("length", len(formatted)))
	span.SetStatus(codes.Ok, "Itinerary generated")
	return formatted, nil
}

// stayNights counts the nights between check-in and check-out. A booking
// missing either date cannot be planned.
func stayNights(checkIn, checkOut *time.Time) (int, error) {
	if checkIn == nil || checkOut == nil {
		return 0, ErrMissingStayDates
	}
	nights := int(checkOut.Sub(*checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights, nil
}

// stayStyle names the trip length so the model paces the days accordingly.
func stayStyle(nights int) string {
	switch {
	case nights == 1:
		return "short stay"
	case nights <= 3:
		return "weekend getaway"
	case nights <= 7:
		return "vacation"
	default:
		return "extended stay"
	}
}

func buildPrompt(booking *types.Booking, nights int) string {
	var sb strings.Builder
	sb.WriteString("You are a hotel concierge creating a travel itinerary for a guest.\n\n")
	fmt.Fprintf(&sb, "Guest: %s\n", booking.GuestName)
	fmt.Fprintf(&sb, "Hotel: %s, %s\n", booking.HotelName, booking.HotelLocation)
	fmt.Fprintf(&sb, "Trip length: %d night(s), a %s\n\n", nights, stayStyle(nights))
	sb.WriteString("Create a day-by-day itinerary with these rules:\n")
	sb.WriteString("- Begin with a line reading exactly: ITINERARY FOR <destination city>\n")
	fmt.Fprintf(&sb, "- One section per day, %d day(s) total, labelled Day 1, Day 2, ...\n", nights)
	sb.WriteString("- Each day has Morning 🌅, Afternoon ☀️ and Evening 🌙 entries\n")
	sb.WriteString("- Suggest real nearby attractions, food and experiences\n")
	sb.WriteString("- Keep each entry to one or two sentences\n")
	sb.WriteString("- Plain text only, no markdown formatting\n")
	return sb.String()
}

const (
	itineraryHeader = "🗺️ YOUR PERSONALIZED ITINERARY"
	itineraryFooter = "💡 Need changes?\nThis itinerary is AI-generated and can be adjusted to your preferences.\n\n🔙 Type 'back' to return to the category menu."
)

// tripDescription names the stay length the way the header shows it,
// e.g. "3-night weekend getaway".
func tripDescription(nights int) string {
	return fmt.Sprintf("%d-night %s", nights, stayStyle(nights))
}

// FormatItinerary cleans the model output and wraps it in the header and
// footer shown to the guest: destination, stay duration, the AI
// disclaimer and the way back to the menu.
func FormatItinerary(raw, fallbackLocation string, nights int) string {
	text := stripMarkdown(raw)

	city := extractCity(text)
	if city == "" {
		city = fallbackLocation
	}

	var sb strings.Builder
	sb.WriteString(itineraryHeader)
	if city != "" {
		sb.WriteString(" - ")
		sb.WriteString(city)
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "⏱️ Duration: %s\n", tripDescription(nights))
	sb.WriteString("🤖 Generated by AI\n\n")
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n\n")
	sb.WriteString(itineraryFooter)
	return sb.String()
}

// extractCity pulls the destination from the "ITINERARY FOR <city>" line
// the prompt asks the model to emit.
func extractCity(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "ITINERARY FOR ") {
			return strings.TrimSpace(line[len("ITINERARY FOR "):])
		}
	}
	return ""
}

func stripMarkdown(text string) string {
	replacer := strings.NewReplacer("**", "", "__", "", "##", "", "###", "")
	text = replacer.Replace(text)

	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "# ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		trimmed = strings.TrimPrefix(trimmed, "- ")
		// skip lines that were only markdown markers
		if trimmed == "#" || trimmed == "*" || trimmed == "-" {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
