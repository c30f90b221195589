// Package pricing implements the per-route price intelligence engine:
// history retention, trend classification, seasonal baselines, buy/wait
// recommendations and price alerts.
package pricing

import (
	"sort"
	"sync"
	"time"

	"skypulse-engine/internal/domain/entity"
)

// DefaultRetentionDays is the rolling per-route retention window.
const DefaultRetentionDays = 365

// History is the keyed price-history store: route -> owned time series.
// Each route carries its own lock, so appends and reads on the same route
// are serialized while different routes proceed in parallel.
type History struct {
	mu        sync.RWMutex
	routes    map[entity.Route]*series
	retention time.Duration
}

type series struct {
	mu     sync.RWMutex
	points []entity.PricePoint
}

// NewHistory creates a store with the given retention window in days.
func NewHistory(retentionDays int) *History {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &History{
		routes:    make(map[entity.Route]*series),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (h *History) route(r entity.Route) *series {
	h.mu.RLock()
	s, ok := h.routes[r]
	h.mu.RUnlock()
	if ok {
		return s
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok = h.routes[r]; !ok {
		s = &series{}
		h.routes[r] = s
	}
	return s
}

// Append records one observation for a route, keeping the series ordered by
// observedAt (ties keep insertion order) and pruning points that fell out of
// the retention window measured from the newest point.
func (h *History) Append(route entity.Route, price float64, observedAt time.Time) {
	s := h.route(route)
	s.mu.Lock()
	defer s.mu.Unlock()

	point := entity.PricePoint{
		Origin:      route.Origin,
		Destination: route.Destination,
		Price:       price,
		ObservedAt:  observedAt,
	}

	n := len(s.points)
	if n == 0 || !observedAt.Before(s.points[n-1].ObservedAt) {
		s.points = append(s.points, point)
	} else {
		// Out-of-order arrival: insert after any existing equal timestamps.
		i := sort.Search(n, func(i int) bool {
			return s.points[i].ObservedAt.After(observedAt)
		})
		s.points = append(s.points, entity.PricePoint{})
		copy(s.points[i+1:], s.points[i:])
		s.points[i] = point
	}

	s.prune(h.retention)
}

// prune drops points older than the retention window. Caller holds the lock.
func (s *series) prune(retention time.Duration) {
	n := len(s.points)
	if n == 0 {
		return
	}
	cutoff := s.points[n-1].ObservedAt.Add(-retention)
	i := sort.Search(n, func(i int) bool {
		return !s.points[i].ObservedAt.Before(cutoff)
	})
	if i > 0 {
		s.points = append(s.points[:0], s.points[i:]...)
	}
}

// Prune applies the retention window to a route without appending.
func (h *History) Prune(route entity.Route) {
	s := h.route(route)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(h.retention)
}

// Query returns the route's points from the last sinceDays days, oldest to
// newest. sinceDays <= 0 means the full retained window. Points outside the
// retention window are filtered even when not yet pruned.
func (h *History) Query(route entity.Route, sinceDays int) []entity.PricePoint {
	s := h.route(route)
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.points)
	if n == 0 {
		return nil
	}

	newest := s.points[n-1].ObservedAt
	cutoff := newest.Add(-h.retention)
	if sinceDays > 0 {
		queryCutoff := newest.AddDate(0, 0, -sinceDays)
		if queryCutoff.After(cutoff) {
			cutoff = queryCutoff
		}
	}

	i := sort.Search(n, func(i int) bool {
		return !s.points[i].ObservedAt.Before(cutoff)
	})
	out := make([]entity.PricePoint, n-i)
	copy(out, s.points[i:])
	return out
}

// Latest returns the most recent retained price for a route.
func (h *History) Latest(route entity.Route) (float64, bool) {
	s := h.route(route)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.points) == 0 {
		return 0, false
	}
	return s.points[len(s.points)-1].Price, true
}

// Cutoff returns the retention cutoff for a route: anything observed before
// it is out of window. False when the route has no history.
func (h *History) Cutoff(route entity.Route) (time.Time, bool) {
	s := h.route(route)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.points) == 0 {
		return time.Time{}, false
	}
	return s.points[len(s.points)-1].ObservedAt.Add(-h.retention), true
}

// Routes lists every route with retained history.
func (h *History) Routes() []entity.Route {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]entity.Route, 0, len(h.routes))
	for r := range h.routes {
		out = append(out, r)
	}
	return out
}
