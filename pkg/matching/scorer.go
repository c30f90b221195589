package matching

import (
	"strings"
	"time"

	"skypulse-engine/internal/domain/entity"
)

// Weights are the sub-score weights of the match scorer. They must sum to 100
// so the total stays a 0-100 measure.
type Weights struct {
	Destination float64
	Price       float64
	Date        float64
	Origin      float64
}

// DefaultWeights mirrors the historical scoring split.
var DefaultWeights = Weights{Destination: 40, Price: 30, Date: 20, Origin: 10}

// Sum returns the combined weight
func (w Weights) Sum() float64 {
	return w.Destination + w.Price + w.Date + w.Origin
}

// Scorer scores (deal, subscription) pairs. Scoring is pure and
// deterministic: no clock, no stores, no side effects, so concurrent scoring
// needs no locking.
type Scorer struct {
	weights   Weights
	threshold int
}

// NewScorer validates the configuration and returns a scorer. Weights that do
// not sum to 100 or a threshold outside (0, 100] are rejected with ConfigError.
func NewScorer(weights Weights, threshold int) (*Scorer, error) {
	if weights.Sum() != 100 {
		return nil, &entity.ConfigError{Field: "weights", Reason: "sub-score weights must sum to 100"}
	}
	if weights.Destination < 0 || weights.Price < 0 || weights.Date < 0 || weights.Origin < 0 {
		return nil, &entity.ConfigError{Field: "weights", Reason: "sub-score weights must be non-negative"}
	}
	if threshold <= 0 || threshold > 100 {
		return nil, &entity.ConfigError{Field: "matchThreshold", Reason: "threshold must be in (0, 100]"}
	}
	return &Scorer{weights: weights, threshold: threshold}, nil
}

// Threshold returns the inclusive match threshold.
func (s *Scorer) Threshold() int {
	return s.threshold
}

// Matches reports whether a total score produces a match record.
// The boundary is inclusive: a score equal to the threshold matches.
func (s *Scorer) Matches(total int) bool {
	return total >= s.threshold
}

// Score computes the weighted sub-scores of a deal against a subscription.
//
// An unset criterion places no constraint and is treated as satisfied, so it
// awards its full weight. Price is a binary pass under the cap: the cap
// itself already encodes affordability, so prices near it are not penalized
// twice. Date awards the weight scaled by how much of the deal's travel
// window falls inside the subscription window.
func (s *Scorer) Score(deal *entity.Deal, sub *entity.Subscription) (int, entity.ScoreBreakdown) {
	breakdown := entity.ScoreBreakdown{}

	if sub.Destination == "" || matchLocation(deal.ArrivalCity, sub.Destination) {
		breakdown.Destination = s.weights.Destination
	}
	if sub.Origin == "" || matchLocation(deal.DepartureCity, sub.Origin) {
		breakdown.Origin = s.weights.Origin
	}
	if sub.MaxPrice == nil || deal.Price <= *sub.MaxPrice {
		breakdown.Price = s.weights.Price
	}
	breakdown.Date = s.weights.Date * overlapFraction(deal.DepartureDate, deal.ReturnDate, sub.StartDate, sub.EndDate)

	return breakdown.Total(), breakdown
}

// ValidateDeal rejects deals missing the fields scoring depends on.
func ValidateDeal(deal *entity.Deal) error {
	if deal == nil {
		return &entity.ValidationError{Field: "deal", Reason: "deal is nil"}
	}
	if strings.TrimSpace(deal.DepartureCity) == "" {
		return &entity.ValidationError{Field: "departureCity", Reason: "route origin is required"}
	}
	if strings.TrimSpace(deal.ArrivalCity) == "" {
		return &entity.ValidationError{Field: "arrivalCity", Reason: "route destination is required"}
	}
	if deal.Price <= 0 {
		return &entity.ValidationError{Field: "price", Reason: "price must be positive"}
	}
	return nil
}

// matchLocation compares two location strings case-insensitively, accepting
// an exact match or containment either way ("Paris" matches "Paris CDG").
func matchLocation(dealCity, want string) bool {
	a := strings.ToLower(strings.TrimSpace(dealCity))
	b := strings.ToLower(strings.TrimSpace(want))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// overlapFraction returns the fraction of the deal's travel window that falls
// inside the subscription window, in [0, 1]. A missing subscription bound is
// open-ended; no bounds at all means no constraint and a full award. A
// single-day deal window is either inside (1) or outside (0).
func overlapFraction(dealStart, dealEnd time.Time, subStart, subEnd *time.Time) float64 {
	if subStart == nil && subEnd == nil {
		return 1
	}
	if dealEnd.Before(dealStart) {
		dealStart, dealEnd = dealEnd, dealStart
	}

	winStart, winEnd := dealStart, dealEnd
	if subStart != nil && subStart.After(winStart) {
		winStart = *subStart
	}
	if subEnd != nil && subEnd.Before(winEnd) {
		winEnd = *subEnd
	}
	if winEnd.Before(winStart) {
		return 0
	}

	total := dealEnd.Sub(dealStart)
	if total == 0 {
		return 1
	}
	return float64(winEnd.Sub(winStart)) / float64(total)
}
