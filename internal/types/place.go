package types

import "strings"

// Category is a recommendation domain around the guest's hotel.
type Category string

const (
	CategoryRestaurants Category = "restaurants"
	CategorySightseeing Category = "sightseeing"
	CategoryShopping    Category = "shopping"
	CategoryNightlife   Category = "nightlife"
	CategoryATMs        Category = "atms"
	CategoryPharmacy    Category = "pharmacy"
	CategoryRentals     Category = "rentals"
)

// Categories is the canonical enumeration, in menu order.
var Categories = []Category{
	CategoryRestaurants,
	CategorySightseeing,
	CategoryShopping,
	CategoryNightlife,
	CategoryATMs,
	CategoryPharmacy,
	CategoryRentals,
}

// CategoryNames returns the canonical category names, comma separated.
func CategoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Place is the normalized recommendation record handed to the chat layer and
// stored in the recommendation cache.
type Place struct {
	PlaceID       string   `json:"place_id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Description   string   `json:"description,omitempty"`
	Address       string   `json:"address,omitempty"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	DistanceKm    float64  `json:"distance"`
	Rating        float64  `json:"rating,omitempty"`
	PriceLevel    int      `json:"price_level,omitempty"`
	PriceBand     string   `json:"price_band,omitempty"`
	VisitDuration string   `json:"visit_duration,omitempty"`
	BestTime      string   `json:"best_time,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	OpeningHours  []string `json:"opening_hours,omitempty"`
	Reviews       []string `json:"reviews,omitempty"`
	MapsLink      string   `json:"maps_link,omitempty"`
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
