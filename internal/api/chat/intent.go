package chat

import (
	"strings"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type intentKind int

const (
	intentHelp intentKind = iota
	intentGreeting
	intentItinerary
	intentCategory
)

var itineraryKeywords = []string{
	"itinerary", "plan my", "plan for", "schedule", "what to do", "things to do", "day plan",
}

var greetingKeywords = []string{
	"hi", "hello", "hey", "namaste", "hola", "bonjour", "good morning", "good evening",
}

var categoryKeywords = map[types.Category][]string{
	types.CategoryRestaurants: {"restaurant", "food", "eat", "dinner", "lunch", "breakfast", "cafe", "hungry", "cuisine"},
	types.CategorySightseeing: {"sightseeing", "sights", "attraction", "museum", "tourist", "explore", "monument", "beach", "temple"},
	types.CategoryShopping:    {"shopping", "shop", "mall", "market", "souvenir", "buy"},
	types.CategoryNightlife:   {"nightlife", "club", "bar", "pub", "party", "drinks"},
	types.CategoryATMs:        {"atm", "cash", "bank", "money", "withdraw"},
	types.CategoryPharmacy:    {"pharmacy", "medicine", "chemist", "medical", "doctor", "tablet"},
	types.CategoryRentals:     {"rental", "rent", "bike", "scooter", "car hire", "vehicle"},
}

// categoryOrder keeps detection deterministic when keywords overlap.
var categoryOrder = []types.Category{
	types.CategoryRestaurants,
	types.CategorySightseeing,
	types.CategoryShopping,
	types.CategoryNightlife,
	types.CategoryATMs,
	types.CategoryPharmacy,
	types.CategoryRentals,
}

// detectIntent classifies a guest message by keyword. Guests type short
// commands ("food", "atm near me"), so substring matching over a small
// vocabulary beats anything heavier here.
func detectIntent(message string) (intentKind, types.Category) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return intentHelp, ""
	}

	for _, keyword := range itineraryKeywords {
		if strings.Contains(normalized, keyword) {
			return intentItinerary, ""
		}
	}

	// Explicit category names win before fuzzier keywords.
	for _, category := range categoryOrder {
		if strings.Contains(normalized, string(category)) {
			return intentCategory, category
		}
	}

	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if containsWord(normalized, keyword) {
				return intentCategory, category
			}
		}
	}

	for _, keyword := range greetingKeywords {
		if normalized == keyword || strings.HasPrefix(normalized, keyword+" ") ||
			strings.HasPrefix(normalized, keyword+"!") || strings.HasPrefix(normalized, keyword+",") {
			return intentGreeting, ""
		}
	}

	return intentHelp, ""
}

// containsWord matches a keyword on word boundaries so "eat" does not fire
// on "theater".
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if word == keyword || word == keyword+"s" {
			return true
		}
	}
	return false
}
