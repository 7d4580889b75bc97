package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service resolves a hotel's free-form location into coordinates.
type Service interface {
	Resolve(ctx context.Context, location, mapsLink string) (*types.Coordinates, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	client    *http.Client
	endpoint  string
	userAgent string
}

func NewServiceImpl(endpoint, userAgent string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoint:  strings.TrimRight(endpoint, "/"),
		userAgent: userAgent,
	}
}

// Shared-map links embed coordinates in several shapes. Checked in order,
// most specific first; the bare "lat,lon" pair is the last resort and relies
// on the range check below to reject false positives.
var mapsLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`[?&]query=(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`[?&]q=(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`[?&]ll=(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`),
	regexp.MustCompile(`[?&]mlat=(-?\d+\.\d+)[^#]*[?&]mlon=(-?\d+\.\d+)`),
	regexp.MustCompile(`(-?\d+\.\d+)\s*,\s*(-?\d+\.\d+)`),
}

// ParseMapsLink extracts coordinates from a Google Maps share link when the
// link carries them inline. Short links without embedded coordinates return false.
func ParseMapsLink(link string) (*types.Coordinates, bool) {
	if link == "" {
		return nil, false
	}
	for _, re := range mapsLinkPatterns {
		m := re.FindStringSubmatch(link)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLon != nil {
			continue
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		return &types.Coordinates{Latitude: lat, Longitude: lon}, true
	}
	return nil, false
}

// Resolve tries the maps link first, then geocodes progressively shorter
// suffixes of the comma-separated address until one of them matches.
func (s *ServiceImpl) Resolve(ctx context.Context, location, mapsLink string) (*types.Coordinates, error) {
	ctx, span := otel.Tracer("GeocodeService").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("geocode.location", location),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Resolve"))

	if coords, ok := ParseMapsLink(mapsLink); ok {
		l.DebugContext(ctx, "Coordinates extracted from maps link",
			slog.Float64("lat", coords.Latitude), slog.Float64("lon", coords.Longitude))
		span.SetStatus(codes.Ok, "Coordinates from maps link")
		return coords, nil
	}

	for _, candidate := range addressCandidates(location) {
		coords, err := s.search(ctx, candidate)
		if err != nil {
			l.WarnContext(ctx, "Geocoding lookup failed",
				slog.String("query", candidate), slog.Any("error", err))
			continue
		}
		if coords != nil {
			l.InfoContext(ctx, "Location geocoded",
				slog.String("query", candidate),
				slog.Float64("lat", coords.Latitude), slog.Float64("lon", coords.Longitude))
			span.SetStatus(codes.Ok, "Location geocoded")
			return coords, nil
		}
	}

	err := fmt.Errorf("no coordinates found for location %q", location)
	span.RecordError(err)
	span.SetStatus(codes.Error, "Geocoding exhausted all candidates")
	return nil, err
}

// addressCandidates produces the lookup queries in decreasing specificity.
// "Sea Breeze Resort, Baga, Goa" yields the full address, then "Baga, Goa",
// then "Goa".
func addressCandidates(location string) []string {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}

	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var candidates []string
	for i := 0; i < len(parts); i++ {
		candidate := strings.Join(parts[i:], ", ")
		if candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (s *ServiceImpl) search(ctx context.Context, query string) (*types.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/search?%s", s.endpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocode response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocode response: %w", err)
	}
	return &types.Coordinates{Latitude: lat, Longitude: lon}, nil
}
