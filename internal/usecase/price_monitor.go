package usecase

import (
	"context"
	"sync"
	"time"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/pkg/metrics"
	"skypulse-engine/pkg/pricing"
)

// PriceMonitor owns the per-route price intelligence path: every observation
// is appended to the in-memory history, persisted, evaluated against armed
// alerts, and folded into the route's latest recommendation.
type PriceMonitor struct {
	history        *pricing.History
	trend          *pricing.TrendAnalyzer
	seasonal       *pricing.SeasonalDetector
	recommender    *pricing.Recommender
	alerts         *pricing.AlertManager
	pricePointRepo repository.PricePointRepository
	alertRepo      repository.AlertRepository
	notifier       repository.AlertNotifier
	metrics        *metrics.Metrics
	logger         logger.Logger

	mu     sync.RWMutex
	latest map[entity.Route]pricing.Recommendation
}

// NewPriceMonitor creates a new price monitor
func NewPriceMonitor(
	history *pricing.History,
	trend *pricing.TrendAnalyzer,
	seasonal *pricing.SeasonalDetector,
	recommender *pricing.Recommender,
	alerts *pricing.AlertManager,
	pricePointRepo repository.PricePointRepository,
	alertRepo repository.AlertRepository,
	notifier repository.AlertNotifier,
	m *metrics.Metrics,
	logger logger.Logger,
) *PriceMonitor {
	return &PriceMonitor{
		history:        history,
		trend:          trend,
		seasonal:       seasonal,
		recommender:    recommender,
		alerts:         alerts,
		pricePointRepo: pricePointRepo,
		alertRepo:      alertRepo,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
		latest:         make(map[entity.Route]pricing.Recommendation),
	}
}

// WarmStart rebuilds the in-memory engine from persisted state. Appending
// through the store re-applies per-route retention, so stale points never
// make it back in.
func (m *PriceMonitor) WarmStart(ctx context.Context, retentionDays int) error {
	since := time.Now().AddDate(0, 0, -retentionDays)
	points, err := m.pricePointRepo.FindSince(ctx, since)
	if err != nil {
		return err
	}
	for _, p := range points {
		m.history.Append(p.Route(), p.Price, p.ObservedAt)
	}

	alerts, err := m.alertRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, a := range alerts {
		m.alerts.Load(a)
	}

	m.logger.Info("Warm start completed",
		"pricePoints", len(points),
		"routes", len(m.history.Routes()),
		"alerts", len(alerts))
	return nil
}

// Observe records one price observation for a route and runs the full
// intelligence path. Persistence failures propagate; alert notification is
// fire-and-forget.
func (m *PriceMonitor) Observe(ctx context.Context, route entity.Route, price float64, observedAt time.Time) error {
	m.history.Append(route, price, observedAt)
	m.metrics.PricePointsRecorded.Inc()

	point := &entity.PricePoint{
		Origin:      route.Origin,
		Destination: route.Destination,
		Price:       price,
		ObservedAt:  observedAt,
	}
	if err := m.pricePointRepo.Save(ctx, point); err != nil {
		m.metrics.ErrorsCount.WithLabelValues("price_point_save").Inc()
		return err
	}

	for _, event := range m.alerts.Evaluate(route, price, observedAt) {
		m.metrics.AlertsTriggered.Inc()
		m.logger.Info("Price alert triggered",
			"alertId", event.Alert.ID,
			"route", route.Key(),
			"targetPrice", event.Alert.TargetPrice,
			"triggeredPrice", price)

		if err := m.alertRepo.Update(ctx, event.Alert); err != nil {
			m.metrics.ErrorsCount.WithLabelValues("alert_update").Inc()
			m.logger.Error("Failed to persist alert transition", "alertId", event.Alert.ID, "error", err)
		}
		if err := m.notifier.NotifyTriggered(ctx, event); err != nil {
			m.metrics.ErrorsCount.WithLabelValues("alert_notify").Inc()
			m.logger.Error("Failed to deliver alert notification", "alertId", event.Alert.ID, "error", err)
		}
	}

	rec := m.recommender.Recommend(route, price)
	m.mu.Lock()
	m.latest[route] = rec
	m.mu.Unlock()

	m.logger.Debug("Recommendation recomputed",
		"route", route.Key(),
		"action", string(rec.Action),
		"confidence", rec.Confidence)

	return nil
}

// Recommendation returns the route's latest guidance, computing it on demand
// when no observation has arrived since boot.
func (m *PriceMonitor) Recommendation(route entity.Route) (pricing.Recommendation, bool) {
	m.mu.RLock()
	rec, ok := m.latest[route]
	m.mu.RUnlock()
	if ok {
		return rec, true
	}

	price, ok := m.history.Latest(route)
	if !ok {
		return pricing.Recommendation{}, false
	}
	return m.recommender.Recommend(route, price), true
}

// RouteInsight bundles the analytics views of one route for the admin API.
type RouteInsight struct {
	Route          entity.Route             `json:"route"`
	CurrentPrice   *float64                 `json:"currentPrice"`
	Stats          *pricing.RouteStats      `json:"stats"`
	Trend          pricing.Trend            `json:"trend"`
	Seasonal       pricing.SeasonalBaseline `json:"seasonal"`
	Recommendation *pricing.Recommendation  `json:"recommendation"`
}

// Insight returns the current analytics state of a route
func (m *PriceMonitor) Insight(route entity.Route) RouteInsight {
	insight := RouteInsight{Route: route}

	if price, ok := m.history.Latest(route); ok {
		insight.CurrentPrice = &price
		insight.Seasonal = m.seasonal.Baseline(route, time.Now(), price)
	}
	if stats, ok := m.history.Stats(route); ok {
		insight.Stats = &stats
	}
	insight.Trend = m.trend.Classify(route)
	if rec, ok := m.Recommendation(route); ok {
		insight.Recommendation = &rec
	}
	return insight
}

// CreateAlert arms a new price alert and persists it
func (m *PriceMonitor) CreateAlert(ctx context.Context, route entity.Route, userRef string, targetPrice float64) (*entity.PriceAlert, error) {
	alert, err := m.alerts.Create(route, userRef, targetPrice, time.Now())
	if err != nil {
		return nil, err
	}
	if err := m.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	m.logger.Info("Alert armed",
		"alertId", alert.ID,
		"route", route.Key(),
		"targetPrice", targetPrice)
	return alert, nil
}

// RearmAlert resets a triggered alert so it watches again
func (m *PriceMonitor) RearmAlert(ctx context.Context, alertID string) (*entity.PriceAlert, error) {
	alert, err := m.alerts.Rearm(alertID)
	if err != nil {
		return nil, err
	}
	if err := m.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}
	m.logger.Info("Alert re-armed", "alertId", alert.ID)
	return alert, nil
}

// PruneAll applies retention to every route, in memory and in the store.
// Scheduled nightly.
func (m *PriceMonitor) PruneAll(ctx context.Context) {
	for _, route := range m.history.Routes() {
		m.history.Prune(route)
		cutoff, ok := m.history.Cutoff(route)
		if !ok {
			continue
		}
		if err := m.pricePointRepo.DeleteBefore(ctx, route, cutoff); err != nil {
			m.metrics.ErrorsCount.WithLabelValues("price_point_prune").Inc()
			m.logger.Error("Failed to prune persisted price points", "route", route.Key(), "error", err)
		}
	}
	m.logger.Info("Price history pruned", "routes", len(m.history.Routes()))
}
