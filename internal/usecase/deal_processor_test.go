package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/pkg/matching"
	"skypulse-engine/pkg/pricing"
)

type processorFixture struct {
	processor *DealProcessor
	feedRepo  *fakeFeedRepo
	matchRepo *fakeMatchRepo
	priceRepo *fakePricePointRepo
	notifier  *fakeNotifier
	monitor   *PriceMonitor
	history   *pricing.History
	worker    *SummaryWorker
}

func newProcessorFixture(t *testing.T, subs []*entity.Subscription, pending ...*entity.FeedMessage) *processorFixture {
	t.Helper()

	history := pricing.NewHistory(365)
	trend := pricing.NewTrendAnalyzer(history, 0, 0, 0)
	seasonal := pricing.NewSeasonalDetector(history, nil)
	recommender := pricing.NewRecommender(trend, seasonal)
	alerts := pricing.NewAlertManager()

	feedRepo := newFakeFeedRepo(pending...)
	matchRepo := newFakeMatchRepo()
	priceRepo := &fakePricePointRepo{}
	alertRepo := newFakeAlertRepo()
	notifier := &fakeNotifier{}

	monitor := NewPriceMonitor(history, trend, seasonal, recommender, alerts,
		priceRepo, alertRepo, notifier, testMetrics, nopLogger{})

	scorer, err := matching.NewScorer(matching.DefaultWeights, 50)
	require.NoError(t, err)

	worker := NewSummaryWorker(&fakeSummarizer{result: "great pick"}, matchRepo,
		testMetrics, nopLogger{}, 16, 3, time.Millisecond)

	processor := NewDealProcessor(feedRepo, &fakeSubRepo{subs: subs}, matchRepo,
		scorer, monitor, worker, testMetrics, nopLogger{}, 50)

	return &processorFixture{
		processor: processor,
		feedRepo:  feedRepo,
		matchRepo: matchRepo,
		priceRepo: priceRepo,
		notifier:  notifier,
		monitor:   monitor,
		history:   history,
		worker:    worker,
	}
}

func testDeal() *entity.Deal {
	return &entity.Deal{
		ID:            "deal-1",
		DepartureCity: "New York",
		ArrivalCity:   "Paris",
		DepartureDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		Price:         449,
		Currency:      "USD",
		DiscoveredAt:  time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestProcessDealCreatesMatchesAboveThresholdOnly(t *testing.T) {
	maxPrice := 500.0
	lowCap := 100.0
	subs := []*entity.Subscription{
		{ID: 1, Destination: "Paris", MaxPrice: &maxPrice},
		{ID: 2, Origin: "London", Destination: "Tokyo", MaxPrice: &lowCap,
			StartDate: timePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
			EndDate:   timePtr(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))},
	}
	fx := newProcessorFixture(t, subs)

	matched, err := fx.processor.ProcessDeal(context.Background(), testDeal())
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	require.Len(t, fx.matchRepo.records, 1)
	record := fx.matchRepo.records[0]
	assert.Equal(t, "deal-1", record.DealID)
	assert.Equal(t, int64(1), record.SubscriptionID)
	assert.Equal(t, 100, record.Score)

	// One summary job queued for the match.
	assert.Len(t, fx.worker.jobs, 1)
}

func TestProcessDealRecordsPriceObservation(t *testing.T) {
	fx := newProcessorFixture(t, nil)
	deal := testDeal()

	_, err := fx.processor.ProcessDeal(context.Background(), deal)
	require.NoError(t, err)

	latest, ok := fx.history.Latest(deal.Route())
	require.True(t, ok)
	assert.Equal(t, 449.0, latest)

	require.Len(t, fx.priceRepo.points, 1)
	assert.Equal(t, "New York", fx.priceRepo.points[0].Origin)
	assert.Equal(t, "Paris", fx.priceRepo.points[0].Destination)
}

func TestProcessPendingMarksTerminalStatuses(t *testing.T) {
	valid := &entity.FeedMessage{
		MessageID:  "msg-valid",
		Body:       `{"departureCity": "New York", "arrivalCity": "Paris", "price": 449}`,
		ReceivedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	malformed := &entity.FeedMessage{
		MessageID:  "msg-bad",
		Body:       "no payload here",
		ReceivedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	invalid := &entity.FeedMessage{
		MessageID:  "msg-invalid",
		Body:       `{"departureCity": "New York", "arrivalCity": "Paris", "price": -10}`,
		ReceivedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}

	fx := newProcessorFixture(t, nil, valid, malformed, invalid)

	require.NoError(t, fx.processor.ProcessPending(context.Background()))

	assert.Equal(t, entity.StatusCompleted, fx.feedRepo.statuses["msg-valid"])
	assert.Equal(t, entity.StatusSkipped, fx.feedRepo.statuses["msg-bad"])
	assert.Equal(t, entity.StatusSkipped, fx.feedRepo.statuses["msg-invalid"])

	extracted := fx.feedRepo.data["msg-valid"]
	require.NotNil(t, extracted)
	assert.Equal(t, "New York-Paris", extracted["route"])
	assert.Equal(t, 449.0, extracted["price"])
}

func TestProcessPendingIsIdempotentAcrossPasses(t *testing.T) {
	valid := &entity.FeedMessage{
		MessageID:  "msg-once",
		Body:       `{"departureCity": "New York", "arrivalCity": "Paris", "price": 300}`,
		ReceivedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	fx := newProcessorFixture(t, nil, valid)

	require.NoError(t, fx.processor.ProcessPending(context.Background()))
	require.NoError(t, fx.processor.ProcessPending(context.Background()))

	// Marked terminal after the first pass, so only one observation lands.
	assert.Len(t, fx.priceRepo.points, 1)
}

func timePtr(t time.Time) *time.Time { return &t }
