package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FACorreiaa/go-guest-concierge/app/observability/metrics"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// GoogleClient is a thin wrapper over the Places Nearby Search and
// Place Details endpoints.
type GoogleClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewGoogleClient(apiKey string, logger *slog.Logger) *GoogleClient {
	return &GoogleClient{
		logger:  logger,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *GoogleClient) WithBaseURL(baseURL string) *GoogleClient {
	c.baseURL = baseURL
	return c
}

type nearbyPlace struct {
	PlaceID    string  `json:"place_id"`
	Name       string  `json:"name"`
	Vicinity   string  `json:"vicinity"`
	Rating     float64 `json:"rating"`
	PriceLevel *int    `json:"price_level"`
	Geometry   struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Types []string `json:"types"`
}

type nearbyResponse struct {
	Status       string        `json:"status"`
	Results      []nearbyPlace `json:"results"`
	ErrorMessage string        `json:"error_message"`
}

type placeDetails struct {
	Phone        string `json:"formatted_phone_number"`
	Website      string `json:"website"`
	OpeningHours struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []struct {
		Text string `json:"text"`
	} `json:"reviews"`
}

type detailsResponse struct {
	Status string       `json:"status"`
	Result placeDetails `json:"result"`
}

// NearbySearch returns places of the given type around the coordinates.
// ZERO_RESULTS is not an error, it simply yields an empty slice.
func (c *GoogleClient) NearbySearch(ctx context.Context, lat, lon float64, radius int, placeType string) ([]nearbyPlace, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("type", placeType)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/nearbysearch/json?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nearby search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nearby search request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.Get().ProviderRequestDuration.Record(ctx, time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	var body nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode nearby search response: %w", err)
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS":
		return body.Results, nil
	default:
		return nil, fmt.Errorf("places API status %s: %s", body.Status, body.ErrorMessage)
	}
}

// PlaceDetails fetches contact info, opening hours and up to three reviews.
// Detail failures are non-fatal for recommendations, callers log and continue.
func (c *GoogleClient) PlaceDetails(ctx context.Context, placeID string) (*placeDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "formatted_phone_number,website,opening_hours,reviews")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/details/json?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build place details request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place details request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	var body detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode place details response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("places API status %s", body.Status)
	}
	return &body.Result, nil
}
