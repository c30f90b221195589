package pricing

import (
	"sort"
	"time"

	"skypulse-engine/internal/domain/entity"
)

// RouteStats aggregates a route's retained price history.
type RouteStats struct {
	SampleCount int       `json:"sampleCount"`
	Mean        float64   `json:"mean"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Median      float64   `json:"median"`
	Volatility  float64   `json:"volatility"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Stats computes the route's aggregates over the full retained window under
// the route lock. False when the route has no history.
func (h *History) Stats(route entity.Route) (RouteStats, bool) {
	s := h.route(route)
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.points)
	if n == 0 {
		return RouteStats{}, false
	}

	prices := make([]float64, n)
	min, max := s.points[0].Price, s.points[0].Price
	var sum float64
	for i, p := range s.points {
		prices[i] = p.Price
		sum += p.Price
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}

	return RouteStats{
		SampleCount: n,
		Mean:        sum / float64(n),
		Min:         min,
		Max:         max,
		Median:      median(prices),
		Volatility:  volatility(s.points),
		LastUpdated: s.points[n-1].ObservedAt,
	}, true
}

// median averages the two middle values for even-sized samples.
func median(prices []float64) float64 {
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
