package places

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Client abstracts the Places API for the recommendation service.
type Client interface {
	NearbySearch(ctx context.Context, lat, lon float64, radius int, placeType string) ([]nearbyPlace, error)
	PlaceDetails(ctx context.Context, placeID string) (*placeDetails, error)
}

// Service assembles nearby recommendations for a guest's hotel coordinates.
type Service interface {
	GetRecommendations(ctx context.Context, coords types.Coordinates, category types.Category) ([]types.Place, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	client     Client
	radius     int
	maxResults int
}

func NewServiceImpl(client Client, radius, maxResults int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		client:     client,
		radius:     radius,
		maxResults: maxResults,
	}
}

// categoryTypes maps each guest-facing category to the Places API types
// queried for it.
var categoryTypes = map[types.Category][]string{
	types.CategoryRestaurants: {"restaurant", "cafe", "bakery"},
	types.CategorySightseeing: {"tourist_attraction", "museum", "park"},
	types.CategoryShopping:    {"shopping_mall", "department_store"},
	types.CategoryNightlife:   {"night_club", "bar"},
	types.CategoryATMs:        {"atm", "bank"},
	types.CategoryPharmacy:    {"pharmacy", "drugstore"},
	types.CategoryRentals:     {"car_rental", "bicycle_store"},
}

// Utility categories are ranked by proximity, leisure ones by rating.
var distanceRanked = map[types.Category]bool{
	types.CategoryATMs:     true,
	types.CategoryPharmacy: true,
	types.CategoryRentals:  true,
}

var visitDurations = map[types.Category]string{
	types.CategoryRestaurants: "1-2 hours",
	types.CategorySightseeing: "2-3 hours",
	types.CategoryShopping:    "1-3 hours",
	types.CategoryNightlife:   "2-4 hours",
	types.CategoryATMs:        "5-10 minutes",
	types.CategoryPharmacy:    "10-15 minutes",
	types.CategoryRentals:     "30-45 minutes",
}

var bestTimes = map[types.Category]string{
	types.CategoryRestaurants: "12:00-15:00 or 19:00-22:00",
	types.CategorySightseeing: "Morning or late afternoon",
	types.CategoryShopping:    "11:00-20:00",
	types.CategoryNightlife:   "After 21:00",
	types.CategoryATMs:        "Any time",
	types.CategoryPharmacy:    "09:00-21:00",
	types.CategoryRentals:     "Morning",
}

func (s *ServiceImpl) GetRecommendations(ctx context.Context, coords types.Coordinates, category types.Category) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "GetRecommendations", trace.WithAttributes(
		attribute.String("places.category", string(category)),
		attribute.Float64("places.lat", coords.Latitude),
		attribute.Float64("places.lon", coords.Longitude),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetRecommendations"), slog.String("category", string(category)))

	placeTypes, ok := categoryTypes[category]
	if !ok {
		err := fmt.Errorf("unknown category %q", category)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown category")
		return nil, err
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		all  []types.Place
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, placeType := range placeTypes {
		placeType := placeType
		g.Go(func() error {
			results, err := s.client.NearbySearch(gctx, coords.Latitude, coords.Longitude, s.radius, placeType)
			if err != nil {
				return fmt.Errorf("nearby search for %s failed: %w", placeType, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, result := range results {
				if result.PlaceID == "" || seen[result.PlaceID] {
					continue
				}
				seen[result.PlaceID] = true
				all = append(all, s.toPlace(result, coords, category))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to fetch nearby places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Nearby search failed")
		return nil, err
	}

	if distanceRanked[category] {
		sort.Slice(all, func(i, j int) bool { return all[i].DistanceKm < all[j].DistanceKm })
	} else {
		sort.Slice(all, func(i, j int) bool { return all[i].Rating > all[j].Rating })
	}

	if len(all) > s.maxResults {
		all = all[:s.maxResults]
	}

	// Details only for the places that survive the cap, they cost a
	// request each.
	for i := range all {
		details, err := s.client.PlaceDetails(ctx, all[i].PlaceID)
		if err != nil {
			l.WarnContext(ctx, "Failed to fetch place details",
				slog.String("place_id", all[i].PlaceID), slog.Any("error", err))
			continue
		}
		all[i].Phone = details.Phone
		all[i].Website = details.Website
		all[i].OpeningHours = details.OpeningHours.WeekdayText
		for _, review := range details.Reviews {
			if len(all[i].Reviews) >= 3 {
				break
			}
			if review.Text != "" {
				all[i].Reviews = append(all[i].Reviews, review.Text)
			}
		}
	}

	l.InfoContext(ctx, "Recommendations assembled", slog.Int("count", len(all)))
	span.SetStatus(codes.Ok, "Recommendations assembled")
	return all, nil
}

func (s *ServiceImpl) toPlace(result nearbyPlace, origin types.Coordinates, category types.Category) types.Place {
	place := types.Place{
		PlaceID:       result.PlaceID,
		Name:          result.Name,
		Category:      string(category),
		Address:       result.Vicinity,
		Latitude:      result.Geometry.Location.Lat,
		Longitude:     result.Geometry.Location.Lng,
		Rating:        result.Rating,
		VisitDuration: visitDurations[category],
		BestTime:      bestTimes[category],
		MapsLink:      MapsLink(result.Geometry.Location.Lat, result.Geometry.Location.Lng),
	}
	place.DistanceKm = math.Round(haversineKm(origin.Latitude, origin.Longitude,
		place.Latitude, place.Longitude)*100) / 100
	if result.PriceLevel != nil {
		place.PriceLevel = *result.PriceLevel
		place.PriceBand = priceBand(*result.PriceLevel)
	}
	return place
}

func priceBand(level int) string {
	switch {
	case level <= 1:
		return "budget"
	case level == 2:
		return "mid-range"
	default:
		return "premium"
	}
}

// MapsLink builds a universal Google Maps link for the coordinates.
func MapsLink(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", lat, lon)
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
