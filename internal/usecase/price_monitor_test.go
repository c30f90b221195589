package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/pkg/pricing"
)

type monitorFixture struct {
	monitor   *PriceMonitor
	history   *pricing.History
	priceRepo *fakePricePointRepo
	alertRepo *fakeAlertRepo
	notifier  *fakeNotifier
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()

	history := pricing.NewHistory(365)
	trend := pricing.NewTrendAnalyzer(history, 0, 0, 0)
	seasonal := pricing.NewSeasonalDetector(history, nil)
	recommender := pricing.NewRecommender(trend, seasonal)
	alerts := pricing.NewAlertManager()

	priceRepo := &fakePricePointRepo{}
	alertRepo := newFakeAlertRepo()
	notifier := &fakeNotifier{}

	monitor := NewPriceMonitor(history, trend, seasonal, recommender, alerts,
		priceRepo, alertRepo, notifier, testMetrics, nopLogger{})

	return &monitorFixture{
		monitor:   monitor,
		history:   history,
		priceRepo: priceRepo,
		alertRepo: alertRepo,
		notifier:  notifier,
	}
}

var monitorRoute = entity.Route{Origin: "New York", Destination: "Paris"}

func TestObserveTriggersAlertAndNotifies(t *testing.T) {
	fx := newMonitorFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	alert, err := fx.monitor.CreateAlert(ctx, monitorRoute, "user-1", 400)
	require.NoError(t, err)
	assert.Contains(t, fx.alertRepo.alerts, alert.ID)

	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 450, base))
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 420, base.Add(time.Hour)))
	assert.Empty(t, fx.notifier.events)

	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 399, base.Add(2*time.Hour)))
	require.Len(t, fx.notifier.events, 1)
	assert.Equal(t, 399.0, fx.notifier.events[0].TriggeredPrice)
	assert.Equal(t, entity.AlertTriggered, fx.alertRepo.alerts[alert.ID].State)

	// A deeper drop stays quiet until an explicit re-arm.
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 350, base.Add(3*time.Hour)))
	assert.Len(t, fx.notifier.events, 1)

	_, err = fx.monitor.RearmAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 340, base.Add(4*time.Hour)))
	assert.Len(t, fx.notifier.events, 2)
}

func TestObservePersistsAndCachesRecommendation(t *testing.T) {
	fx := newMonitorFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 300, base))
	assert.Len(t, fx.priceRepo.points, 1)

	rec, ok := fx.monitor.Recommendation(monitorRoute)
	require.True(t, ok)
	assert.NotEmpty(t, rec.Action)

	_, ok = fx.monitor.Recommendation(entity.Route{Origin: "Tokyo", Destination: "Osaka"})
	assert.False(t, ok, "no history means no recommendation")
}

func TestWarmStartRebuildsHistoryAndAlerts(t *testing.T) {
	fx := newMonitorFixture(t)
	ctx := context.Background()
	now := time.Now()

	fx.priceRepo.points = []*entity.PricePoint{
		{Origin: "New York", Destination: "Paris", Price: 420, ObservedAt: now.AddDate(0, 0, -2)},
		{Origin: "New York", Destination: "Paris", Price: 410, ObservedAt: now.AddDate(0, 0, -1)},
	}
	fx.alertRepo.alerts["a1"] = &entity.PriceAlert{
		ID: "a1", Origin: "New York", Destination: "Paris",
		TargetPrice: 400, State: entity.AlertArmed,
	}

	require.NoError(t, fx.monitor.WarmStart(ctx, 365))

	latest, ok := fx.history.Latest(monitorRoute)
	require.True(t, ok)
	assert.Equal(t, 410.0, latest)

	// The reloaded alert is live: the next crossing fires.
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 395, now))
	assert.Len(t, fx.notifier.events, 1)
}

func TestWarmStartDropsPointsOlderThanRetention(t *testing.T) {
	fx := newMonitorFixture(t)
	ctx := context.Background()
	now := time.Now()

	// The store may hand back rows older than the in-memory window when the
	// nightly prune has not run yet. Re-appending applies retention again.
	fx.priceRepo.points = []*entity.PricePoint{
		{Origin: "New York", Destination: "Paris", Price: 1000, ObservedAt: now.AddDate(0, 0, -370)},
		{Origin: "New York", Destination: "Paris", Price: 200, ObservedAt: now.AddDate(0, 0, -1)},
	}

	require.NoError(t, fx.monitor.WarmStart(ctx, 400))

	latest, ok := fx.history.Latest(monitorRoute)
	require.True(t, ok)
	assert.Equal(t, 200.0, latest)

	stats, ok := fx.history.Stats(monitorRoute)
	require.True(t, ok)
	assert.Equal(t, 1, stats.SampleCount)
	assert.Equal(t, 200.0, stats.Max)
}

func TestObserveSurvivesNotifierFailure(t *testing.T) {
	fx := newMonitorFixture(t)
	fx.notifier.failWith = assert.AnError
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	alert, err := fx.monitor.CreateAlert(ctx, monitorRoute, "user-1", 400)
	require.NoError(t, err)

	// Delivery fails, but the observation and the alert transition land.
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 390, base))
	require.Len(t, fx.notifier.events, 1)
	assert.Equal(t, entity.AlertTriggered, fx.alertRepo.alerts[alert.ID].State)
	assert.Len(t, fx.priceRepo.points, 1)

	// The alert stays triggered: no retry storm on the next crossing.
	require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 380, base.Add(time.Hour)))
	assert.Len(t, fx.notifier.events, 1)
}

func TestInsightBundlesRouteState(t *testing.T) {
	fx := newMonitorFixture(t)
	ctx := context.Background()
	base := time.Now().AddDate(0, 0, -3)

	for i := 0; i < 4; i++ {
		require.NoError(t, fx.monitor.Observe(ctx, monitorRoute, 300+float64(i*10), base.AddDate(0, 0, i)))
	}

	insight := fx.monitor.Insight(monitorRoute)
	require.NotNil(t, insight.CurrentPrice)
	assert.Equal(t, 330.0, *insight.CurrentPrice)
	assert.Equal(t, 4, insight.Trend.Samples)
	require.NotNil(t, insight.Recommendation)

	require.NotNil(t, insight.Stats)
	assert.Equal(t, 4, insight.Stats.SampleCount)
	assert.InDelta(t, 315, insight.Stats.Mean, 1e-9)
	assert.Equal(t, 300.0, insight.Stats.Min)
	assert.Equal(t, 330.0, insight.Stats.Max)
	assert.InDelta(t, 315, insight.Stats.Median, 1e-9)

	empty := fx.monitor.Insight(entity.Route{Origin: "Tokyo", Destination: "Osaka"})
	assert.Nil(t, empty.CurrentPrice)
	assert.Nil(t, empty.Stats)
	assert.Nil(t, empty.Recommendation)
}

func TestCreateAlertValidation(t *testing.T) {
	fx := newMonitorFixture(t)

	_, err := fx.monitor.CreateAlert(context.Background(), monitorRoute, "user-1", 0)
	require.Error(t, err)
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, fx.alertRepo.alerts)
}
