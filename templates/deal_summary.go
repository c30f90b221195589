package templates

import (
	"fmt"

	"skypulse-engine/internal/domain/entity"
)

// SummarySystemPrompt steers the language model toward short, value-focused
// match explanations.
const SummarySystemPrompt = "You are a helpful travel advisor. Be concise, enthusiastic, and focus on value."

// SummaryPrompt builds the language-model prompt for one scored match,
// carrying the deal, the user's original request and the score breakdown.
func SummaryPrompt(req *entity.SummaryRequest) string {
	deal := req.Deal
	return fmt.Sprintf(`You are a travel advisor. Explain why this flight deal is good for the user.

User's request: %q

Deal details:
- Route: %s to %s
- Price: %.0f %s
- Airline: %s
- Dates: %s to %s

Match score breakdown (out of 100): destination %.0f, price %.0f, dates %.0f, origin %.0f.

Write a brief, enthusiastic 2-3 sentence summary explaining why this is a great match.
Focus on value, convenience, and how it meets their needs.`,
		req.Subscription.Prompt,
		deal.DepartureCity, deal.ArrivalCity,
		deal.Price, deal.Currency,
		deal.Airline,
		deal.DepartureDate.Format("2006-01-02"), deal.ReturnDate.Format("2006-01-02"),
		req.Breakdown.Destination, req.Breakdown.Price, req.Breakdown.Date, req.Breakdown.Origin)
}

// FallbackSummary is the deterministic text written when the language model
// is unavailable or exhausted its retries.
func FallbackSummary(req *entity.SummaryRequest) string {
	searchedFor := req.Subscription.Destination
	if searchedFor == "" {
		searchedFor = "travel deals"
	}
	return fmt.Sprintf("Great deal on %s to %s for %.0f %s! This matches your search for %s.",
		req.Deal.DepartureCity, req.Deal.ArrivalCity, req.Deal.Price, req.Deal.Currency, searchedFor)
}

// AlertMessage builds the notification text for a triggered price alert.
func AlertMessage(event *entity.AlertEvent) string {
	return fmt.Sprintf("Price alert: %s to %s dropped to %.0f, at or below your target of %.0f.",
		event.Route.Origin, event.Route.Destination, event.TriggeredPrice, event.Alert.TargetPrice)
}
