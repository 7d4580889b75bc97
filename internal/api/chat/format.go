package chat

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

// formatRecommendations renders places as the numbered list shown in chat.
func formatRecommendations(header string, hotelName string, places []types.Place) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, hotelName)
	sb.WriteString("\n")

	for i, place := range places {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, place.Name)
		if place.Rating > 0 {
			fmt.Fprintf(&sb, " ⭐ %.1f", place.Rating)
		}
		if place.DistanceKm > 0 {
			fmt.Fprintf(&sb, " (%.1f km)", place.DistanceKm)
		}
		sb.WriteString("\n")
		if place.Address != "" {
			fmt.Fprintf(&sb, "   📍 %s\n", place.Address)
		}
		if place.PriceBand != "" {
			fmt.Fprintf(&sb, "   💰 %s", place.PriceBand)
			if place.VisitDuration != "" {
				fmt.Fprintf(&sb, " · ⏱️ %s", place.VisitDuration)
			}
			sb.WriteString("\n")
		} else if place.VisitDuration != "" {
			fmt.Fprintf(&sb, "   ⏱️ %s\n", place.VisitDuration)
		}
		if place.BestTime != "" {
			fmt.Fprintf(&sb, "   🕐 Best time: %s\n", place.BestTime)
		}
		if place.Phone != "" {
			fmt.Fprintf(&sb, "   📞 %s\n", place.Phone)
		}
		if place.MapsLink != "" {
			fmt.Fprintf(&sb, "   🗺️ %s\n", place.MapsLink)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
