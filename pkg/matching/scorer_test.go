package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skypulse-engine/internal/domain/entity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights, 50)
	require.NoError(t, err)
	return s
}

func TestNewScorerRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name      string
		weights   Weights
		threshold int
	}{
		{"weights do not sum to 100", Weights{Destination: 40, Price: 30, Date: 20, Origin: 20}, 50},
		{"negative weight", Weights{Destination: 140, Price: -40, Date: -10, Origin: 10}, 50},
		{"zero threshold", DefaultWeights, 0},
		{"threshold above 100", DefaultWeights, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScorer(tt.weights, tt.threshold)
			require.Error(t, err)
			var cerr *entity.ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestScorePerfectMatch(t *testing.T) {
	s := newTestScorer(t)

	deal := &entity.Deal{
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 8),
		Price:         449,
		Currency:      "USD",
	}
	sub := &entity.Subscription{
		Destination: "Paris",
		MaxPrice:    ptrFloat(500),
	}

	total, breakdown := s.Score(deal, sub)
	assert.Equal(t, 100, total)
	assert.Equal(t, 40.0, breakdown.Destination)
	assert.Equal(t, 30.0, breakdown.Price)
	assert.Equal(t, 20.0, breakdown.Date)
	assert.Equal(t, 10.0, breakdown.Origin)
	assert.True(t, s.Matches(total))
}

func TestScorePriceAboveCapLosesOnlyPriceWeight(t *testing.T) {
	s := newTestScorer(t)

	deal := &entity.Deal{
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 8),
		Price:         449,
	}
	sub := &entity.Subscription{
		Destination: "Paris",
		MaxPrice:    ptrFloat(400),
	}

	total, breakdown := s.Score(deal, sub)
	assert.Equal(t, 70, total)
	assert.Equal(t, 0.0, breakdown.Price)
	assert.True(t, s.Matches(total), "a price miss alone should not sink the match")
}

func TestScoreThresholdIsInclusive(t *testing.T) {
	s := newTestScorer(t)

	// Destination 40 + origin (unset) 10; price over cap and dates disjoint
	// contribute nothing. Exactly at the boundary.
	deal := &entity.Deal{
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 8),
		Price:         600,
	}
	sub := &entity.Subscription{
		Destination: "Paris",
		MaxPrice:    ptrFloat(400),
		StartDate:   ptrTime(day(2026, 9, 1)),
		EndDate:     ptrTime(day(2026, 9, 30)),
	}

	total, _ := s.Score(deal, sub)
	require.Equal(t, 50, total)
	assert.True(t, s.Matches(total))
	assert.False(t, s.Matches(49))
}

func TestScoreUnsetCriteriaAwardFullWeight(t *testing.T) {
	s := newTestScorer(t)

	deal := &entity.Deal{
		DepartureCity: "Tokyo",
		ArrivalCity:   "Osaka",
		DepartureDate: day(2026, 3, 1),
		ReturnDate:    day(2026, 3, 5),
		Price:         10000,
	}
	sub := &entity.Subscription{Destination: "Osaka"}

	total, breakdown := s.Score(deal, sub)
	assert.Equal(t, 100, total)
	assert.Equal(t, 30.0, breakdown.Price, "no price cap means full price weight")
	assert.Equal(t, 10.0, breakdown.Origin, "no origin constraint means full origin weight")
	assert.Equal(t, 20.0, breakdown.Date, "no date window means full date weight")
}

func TestScoreDatePartialOverlap(t *testing.T) {
	s := newTestScorer(t)

	// Deal spans 10 days; the subscription window covers the first 5.
	deal := &entity.Deal{
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 11),
		Price:         300,
	}
	sub := &entity.Subscription{
		Destination: "Paris",
		StartDate:   ptrTime(day(2026, 6, 1)),
		EndDate:     ptrTime(day(2026, 6, 6)),
	}

	_, breakdown := s.Score(deal, sub)
	assert.InDelta(t, 10.0, breakdown.Date, 1e-9)
}

func TestScoreLocationContainment(t *testing.T) {
	s := newTestScorer(t)

	deal := &entity.Deal{
		DepartureCity: "new york jfk",
		ArrivalCity:   "Paris CDG",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 8),
		Price:         300,
	}
	sub := &entity.Subscription{
		Origin:      "New York",
		Destination: "paris",
	}

	_, breakdown := s.Score(deal, sub)
	assert.Equal(t, 40.0, breakdown.Destination)
	assert.Equal(t, 10.0, breakdown.Origin)
}

func TestScoreDeterministic(t *testing.T) {
	s := newTestScorer(t)

	deal := &entity.Deal{
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: day(2026, 6, 1),
		ReturnDate:    day(2026, 6, 11),
		Price:         449,
	}
	sub := &entity.Subscription{
		Origin:      "New York",
		Destination: "Paris",
		MaxPrice:    ptrFloat(500),
		StartDate:   ptrTime(day(2026, 6, 3)),
		EndDate:     ptrTime(day(2026, 6, 20)),
	}

	firstTotal, firstBreakdown := s.Score(deal, sub)
	for i := 0; i < 10; i++ {
		total, breakdown := s.Score(deal, sub)
		assert.Equal(t, firstTotal, total)
		assert.Equal(t, firstBreakdown, breakdown)
	}
}

func TestValidateDeal(t *testing.T) {
	tests := []struct {
		name    string
		deal    *entity.Deal
		wantErr bool
	}{
		{"nil deal", nil, true},
		{"missing departure city", &entity.Deal{ArrivalCity: "Paris", Price: 100}, true},
		{"missing arrival city", &entity.Deal{DepartureCity: "New York", Price: 100}, true},
		{"zero price", &entity.Deal{DepartureCity: "New York", ArrivalCity: "Paris"}, true},
		{"negative price", &entity.Deal{DepartureCity: "New York", ArrivalCity: "Paris", Price: -5}, true},
		{"valid", &entity.Deal{DepartureCity: "New York", ArrivalCity: "Paris", Price: 449}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeal(tt.deal)
			if tt.wantErr {
				var verr *entity.ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
