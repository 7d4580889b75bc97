package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service translates bot output into the guest's language. English input
// passes through untouched and any provider failure falls back to the
// original text, a reply in the wrong language beats no reply.
type Service interface {
	Translate(ctx context.Context, text, targetLang string) string
	TranslatePlaces(ctx context.Context, places []types.Place, targetLang string) []types.Place
}

type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	cache    *gocache.Cache
}

func NewServiceImpl(endpoint string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
		cache:    gocache.New(24*time.Hour, 30*time.Minute),
	}
}

func (s *ServiceImpl) Translate(ctx context.Context, text, targetLang string) string {
	if text == "" || targetLang == "" || targetLang == "en" {
		return text
	}

	ctx, span := otel.Tracer("TranslateService").Start(ctx, "Translate", trace.WithAttributes(
		attribute.String("translate.target", targetLang),
	))
	defer span.End()

	cacheKey := targetLang + ":" + text
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetStatus(codes.Ok, "Translation served from cache")
		return cached.(string)
	}

	translated, err := s.fetch(ctx, text, targetLang)
	if err != nil {
		s.logger.WarnContext(ctx, "Translation failed, returning original text",
			slog.String("target", targetLang), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Translation failed")
		return text
	}

	s.cache.Set(cacheKey, translated, gocache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Translation fetched")
	return translated
}

// maxTranslatedReviews caps per-place review translation so one place
// doesn't fan out into dozens of provider calls.
const maxTranslatedReviews = 3

// TranslatePlaces localizes the guest-facing fields of each place,
// including its name, category and the first few reviews. Addresses and
// links stay in their original form.
func (s *ServiceImpl) TranslatePlaces(ctx context.Context, places []types.Place, targetLang string) []types.Place {
	if targetLang == "" || targetLang == "en" {
		return places
	}
	out := make([]types.Place, len(places))
	copy(out, places)
	for i := range out {
		out[i].Name = s.Translate(ctx, out[i].Name, targetLang)
		out[i].Category = s.Translate(ctx, out[i].Category, targetLang)
		out[i].Description = s.Translate(ctx, out[i].Description, targetLang)
		out[i].VisitDuration = s.Translate(ctx, out[i].VisitDuration, targetLang)
		out[i].BestTime = s.Translate(ctx, out[i].BestTime, targetLang)
		out[i].PriceBand = s.Translate(ctx, out[i].PriceBand, targetLang)
		if len(out[i].Reviews) > 0 {
			reviews := make([]string, len(out[i].Reviews))
			copy(reviews, out[i].Reviews)
			for j := 0; j < len(reviews) && j < maxTranslatedReviews; j++ {
				reviews[j] = s.Translate(ctx, reviews[j], targetLang)
			}
			out[i].Reviews = reviews
		}
	}
	return out
}

// fetch calls the web translation endpoint. The response is a deeply
// nested array where each element of the first array holds a translated
// segment at index 0.
func (s *ServiceImpl) fetch(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/translate_a/single?%s", s.endpoint, params.Encode()), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build translation request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var body []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode translation response: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(body[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected translation response shape: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(segment[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response had no segments")
	}
	return sb.String(), nil
}
