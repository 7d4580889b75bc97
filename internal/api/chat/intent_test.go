package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message      string
		wantKind     intentKind
		wantCategory types.Category
	}{
		{"Where can I eat tonight?", intentCategory, types.CategoryRestaurants},
		{"any good restaurants nearby", intentCategory, types.CategoryRestaurants},
		{"I'm hungry", intentCategory, types.CategoryRestaurants},
		{"what sights should I see", intentCategory, types.CategorySightseeing},
		{"nearest museum?", intentCategory, types.CategorySightseeing},
		{"where to buy souvenirs", intentCategory, types.CategoryShopping},
		{"shopping mall close by", intentCategory, types.CategoryShopping},
		{"any clubs around?", intentCategory, types.CategoryNightlife},
		{"where can I get drinks", intentCategory, types.CategoryNightlife},
		{"atm near me", intentCategory, types.CategoryATMs},
		{"I need to withdraw cash", intentCategory, types.CategoryATMs},
		{"is there a chemist nearby", intentCategory, types.CategoryPharmacy},
		{"I need medicine", intentCategory, types.CategoryPharmacy},
		{"can I rent a scooter", intentCategory, types.CategoryRentals},
		{"bike rental", intentCategory, types.CategoryRentals},
		{"plan my stay", intentItinerary, ""},
		{"can you make an itinerary", intentItinerary, ""},
		{"what to do here for 3 days", intentItinerary, ""},
		{"hello", intentGreeting, ""},
		{"Hi there", intentGreeting, ""},
		{"namaste", intentGreeting, ""},
		{"", intentHelp, ""},
		{"what is the meaning of life", intentHelp, ""},
		// "theater" must not trigger the food keyword "eat"
		{"is there a theater", intentHelp, ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			kind, category := detectIntent(tt.message)
			assert.Equal(t, tt.wantKind, kind, "message: %q", tt.message)
			assert.Equal(t, tt.wantCategory, category, "message: %q", tt.message)
		})
	}
}
