package pricing

import (
	"math"

	"skypulse-engine/internal/domain/entity"
)

// TrendDirection is the short-term price direction of a route.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// Trend is the classification result for a route.
type Trend struct {
	Direction  TrendDirection `json:"direction"`
	Volatility float64        `json:"volatility"`
	Delta      float64        `json:"delta"`
	Samples    int            `json:"samples"`
}

const (
	defaultTrendWindowDays = 90
	defaultShortWindow     = 7
	defaultDeltaBand       = 0.05
)

// TrendAnalyzer classifies short-term price direction and volatility from
// the history store.
type TrendAnalyzer struct {
	history     *History
	windowDays  int
	shortWindow int
	deltaBand   float64
}

// NewTrendAnalyzer creates an analyzer over the given store. Zero values
// select the defaults (90-day window, short window of 7, ±5% bands).
func NewTrendAnalyzer(history *History, windowDays, shortWindow int, deltaBand float64) *TrendAnalyzer {
	if windowDays <= 0 {
		windowDays = defaultTrendWindowDays
	}
	if shortWindow <= 0 {
		shortWindow = defaultShortWindow
	}
	if deltaBand <= 0 {
		deltaBand = defaultDeltaBand
	}
	return &TrendAnalyzer{history: history, windowDays: windowDays, shortWindow: shortWindow, deltaBand: deltaBand}
}

// Classify compares the mean of the short window (the newest observations)
// against the mean of the older remainder of the queried window. With no
// older points the short window doubles as its own baseline, which yields a
// zero delta and a stable classification. Fewer than two points is always
// stable with zero volatility.
func (a *TrendAnalyzer) Classify(route entity.Route) Trend {
	points := a.history.Query(route, a.windowDays)
	n := len(points)
	if n < 2 {
		return Trend{Direction: TrendStable, Samples: n}
	}

	short := a.shortWindow
	if short > n {
		short = n
	}
	recent := points[n-short:]
	baseline := points[:n-short]
	if len(baseline) == 0 {
		baseline = recent
	}

	recentMean := mean(recent)
	baselineMean := mean(baseline)

	var delta float64
	if baselineMean != 0 {
		delta = (recentMean - baselineMean) / baselineMean
	}

	direction := TrendStable
	switch {
	case delta > a.deltaBand:
		direction = TrendRising
	case delta < -a.deltaBand:
		direction = TrendFalling
	}

	return Trend{
		Direction:  direction,
		Volatility: volatility(points),
		Delta:      delta,
		Samples:    n,
	}
}

func mean(points []entity.PricePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Price
	}
	return sum / float64(len(points))
}

// volatility is the coefficient of variation (stdev/mean) of the window,
// zero for fewer than two points.
func volatility(points []entity.PricePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	m := mean(points)
	if m == 0 {
		return 0
	}
	var sq float64
	for _, p := range points {
		d := p.Price - m
		sq += d * d
	}
	stdev := math.Sqrt(sq / float64(len(points)-1))
	return stdev / m
}
