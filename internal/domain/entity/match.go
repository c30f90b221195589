// internal/domain/entity/match.go
package entity

import (
	"math"
	"time"
)

// ScoreBreakdown holds the weighted sub-scores of one (deal, subscription)
// scoring pass. Weights: destination 40, price 30, date 20, origin 10.
type ScoreBreakdown struct {
	Destination float64 `bson:"destination" json:"destination"`
	Price       float64 `bson:"price" json:"price"`
	Date        float64 `bson:"date" json:"date"`
	Origin      float64 `bson:"origin" json:"origin"`
}

// Total returns the rounded aggregate score in [0, 100].
func (b ScoreBreakdown) Total() int {
	return int(math.Round(b.Destination + b.Price + b.Date + b.Origin))
}

// MatchRecord is the outcome of scoring a deal against a subscription.
// A record only exists for scores at or above the match threshold.
// Immutable after creation except for the summary backfill.
type MatchRecord struct {
	ID             string         `bson:"_id,omitempty"`
	DealID         string         `bson:"dealId"`
	SubscriptionID int64          `bson:"subscriptionId"`
	Score          int            `bson:"score"`
	Breakdown      ScoreBreakdown `bson:"breakdown"`
	Summary        string         `bson:"summary,omitempty"`
	SummaryAt      *time.Time     `bson:"summaryAt,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt"`
}

// SummaryRequest is the structured input handed to the language-model
// collaborator: the deal, the user's original prompt, and the breakdown.
type SummaryRequest struct {
	Deal         *Deal
	Subscription *Subscription
	Breakdown    ScoreBreakdown
}
