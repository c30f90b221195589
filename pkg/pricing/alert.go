package pricing

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"skypulse-engine/internal/domain/entity"
)

// AlertManager evaluates price observations against armed alerts. Each route
// bucket carries its own lock so evaluation on one route never blocks
// another; re-arming resolves the alert through a shared id index.
type AlertManager struct {
	mu      sync.RWMutex
	buckets map[entity.Route]*alertBucket
	byID    map[string]*indexedAlert
}

type alertBucket struct {
	mu     sync.Mutex
	alerts []*entity.PriceAlert
}

type indexedAlert struct {
	alert  *entity.PriceAlert
	bucket *alertBucket
}

// NewAlertManager creates an empty manager.
func NewAlertManager() *AlertManager {
	return &AlertManager{
		buckets: make(map[entity.Route]*alertBucket),
		byID:    make(map[string]*indexedAlert),
	}
}

func (m *AlertManager) bucket(route entity.Route) *alertBucket {
	m.mu.RLock()
	b, ok := m.buckets[route]
	m.mu.RUnlock()
	if ok {
		return b
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok = m.buckets[route]; !ok {
		b = &alertBucket{}
		m.buckets[route] = b
	}
	return b
}

// Create registers a new armed alert. A non-positive target price is
// rejected with ValidationError.
func (m *AlertManager) Create(route entity.Route, userRef string, targetPrice float64, now time.Time) (*entity.PriceAlert, error) {
	if targetPrice <= 0 {
		return nil, &entity.ValidationError{Field: "targetPrice", Reason: "target price must be positive"}
	}
	alert := &entity.PriceAlert{
		ID:          uuid.NewString(),
		UserRef:     userRef,
		Origin:      route.Origin,
		Destination: route.Destination,
		TargetPrice: targetPrice,
		State:       entity.AlertArmed,
		CreatedAt:   now,
	}
	m.Load(alert)
	return alert, nil
}

// Load places an existing alert (e.g. from warm start) under management.
func (m *AlertManager) Load(alert *entity.PriceAlert) {
	b := m.bucket(alert.Route())
	b.mu.Lock()
	b.alerts = append(b.alerts, alert)
	b.mu.Unlock()

	m.mu.Lock()
	m.byID[alert.ID] = &indexedAlert{alert: alert, bucket: b}
	m.mu.Unlock()
}

// Evaluate checks a new observation against the route's armed alerts and
// returns one event per Armed -> Triggered transition. Alerts already
// triggered are untouched: re-triggering requires an explicit re-arm.
func (m *AlertManager) Evaluate(route entity.Route, price float64, at time.Time) []*entity.AlertEvent {
	b := m.bucket(route)
	b.mu.Lock()
	defer b.mu.Unlock()

	var events []*entity.AlertEvent
	for _, alert := range b.alerts {
		if price > alert.TargetPrice {
			continue
		}
		if alert.Trigger(price, at) {
			events = append(events, &entity.AlertEvent{
				Alert:          alert,
				Route:          route,
				TriggeredPrice: price,
				TriggeredAt:    at,
			})
		}
	}
	return events
}

// Rearm resets a triggered alert to Armed so it watches again. Unknown ids
// are rejected with ValidationError; re-arming an armed alert is a no-op.
func (m *AlertManager) Rearm(id string) (*entity.PriceAlert, error) {
	m.mu.RLock()
	idx, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &entity.ValidationError{Field: "alertId", Reason: "unknown alert"}
	}

	idx.bucket.mu.Lock()
	defer idx.bucket.mu.Unlock()
	if !idx.alert.Armed() {
		idx.alert.Rearm()
	}
	return idx.alert, nil
}

// Armed returns the route's currently armed alerts.
func (m *AlertManager) Armed(route entity.Route) []*entity.PriceAlert {
	b := m.bucket(route)
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entity.PriceAlert
	for _, alert := range b.alerts {
		if alert.Armed() {
			out = append(out, alert)
		}
	}
	return out
}
