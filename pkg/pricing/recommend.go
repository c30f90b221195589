package pricing

import (
	"time"

	"skypulse-engine/internal/domain/entity"
)

// Action is the buy/wait guidance for a route.
type Action string

const (
	ActionBuy     Action = "buy"
	ActionWait    Action = "wait"
	ActionNeutral Action = "neutral"
)

// Recommendation is the latest computed guidance for a route. Not persisted
// history: recomputed after each observation, latest wins.
type Recommendation struct {
	Route         entity.Route `json:"route"`
	Action        Action       `json:"action"`
	Confidence    float64      `json:"confidence"`
	ReasoningTags []string     `json:"reasoningTags"`
	ComputedAt    time.Time    `json:"computedAt"`
}

// deviationBand separates "near baseline" from meaningfully above/below it.
const deviationBand = 0.10

// confidenceFloor is the lowest confidence volatility damping can produce.
const confidenceFloor = 0.2

// decisionRule is one row of the recommendation table. trend empty means any
// direction; the deviation band is selected by the zone field. Rows are
// evaluated in order, first match wins.
type decisionRule struct {
	trend      TrendDirection
	zone       deviationZone
	action     Action
	confidence func(deviation float64) float64
	tags       []string
}

type deviationZone int

const (
	zoneBelow deviationZone = iota // deviation <= -band
	zoneNear                       // -band < deviation < +band
	zoneAbove                      // deviation >= +band
)

func fixed(c float64) func(float64) float64 {
	return func(float64) float64 { return c }
}

// aboveBaselineConfidence scales from 0.6 at +10% deviation to the 0.8 cap
// at +30%.
func aboveBaselineConfidence(deviation float64) float64 {
	c := 0.6 + (deviation - deviationBand)
	if c > 0.8 {
		c = 0.8
	}
	if c < 0.6 {
		c = 0.6
	}
	return c
}

// decisionTable re-expresses the scattered buy/wait heuristics of the
// original engine as one auditable lookup.
var decisionTable = []decisionRule{
	{trend: TrendFalling, zone: zoneBelow, action: ActionBuy, confidence: fixed(0.85),
		tags: []string{"trend-falling", "below-seasonal-baseline"}},
	{trend: TrendFalling, zone: zoneNear, action: ActionBuy, confidence: fixed(0.65),
		tags: []string{"trend-falling", "near-seasonal-baseline"}},
	{trend: TrendStable, zone: zoneBelow, action: ActionBuy, confidence: fixed(0.6),
		tags: []string{"trend-stable", "below-seasonal-baseline"}},
	// Price attractive but trend unfavorable: flagged as a conflict rather
	// than silently picking one side.
	{trend: TrendRising, zone: zoneBelow, action: ActionWait, confidence: fixed(0.5),
		tags: []string{"trend-rising", "below-seasonal-baseline", "conflicting-signals"}},
	{zone: zoneAbove, action: ActionWait, confidence: aboveBaselineConfidence,
		tags: []string{"above-seasonal-baseline"}},
	{trend: TrendStable, zone: zoneNear, action: ActionNeutral, confidence: fixed(0.4),
		tags: []string{"trend-stable", "near-seasonal-baseline"}},
	{trend: TrendRising, zone: zoneNear, action: ActionWait, confidence: fixed(0.5),
		tags: []string{"trend-rising", "near-seasonal-baseline"}},
}

func (r decisionRule) matches(trend TrendDirection, zone deviationZone) bool {
	if r.trend != "" && r.trend != trend {
		return false
	}
	return r.zone == zone
}

// Recommender combines trend and seasonal outputs into buy/wait guidance via
// the decision table.
type Recommender struct {
	trend    *TrendAnalyzer
	seasonal *SeasonalDetector
	now      func() time.Time
}

// NewRecommender creates a recommender over the two analyzers.
func NewRecommender(trend *TrendAnalyzer, seasonal *SeasonalDetector) *Recommender {
	return &Recommender{trend: trend, seasonal: seasonal, now: time.Now}
}

// Recommend classifies the route's trend and seasonal deviation and resolves
// the action through the decision table. Without seasonal data it falls back
// to the trend-only rule at low confidence. Confidence is damped by
// volatility and floored.
func (r *Recommender) Recommend(route entity.Route, currentPrice float64) Recommendation {
	trend := r.trend.Classify(route)
	seasonal := r.seasonal.Baseline(route, r.now(), currentPrice)

	rec := Recommendation{Route: route, ComputedAt: r.now()}

	if seasonal.Deviation == nil {
		rec.Action, rec.Confidence = trendOnlyFallback(trend.Direction)
		rec.ReasoningTags = []string{"insufficient-seasonal-data", "trend-" + string(trend.Direction)}
	} else {
		zone := classifyDeviation(*seasonal.Deviation)
		for _, rule := range decisionTable {
			if rule.matches(trend.Direction, zone) {
				rec.Action = rule.action
				rec.Confidence = rule.confidence(*seasonal.Deviation)
				rec.ReasoningTags = append([]string(nil), rule.tags...)
				break
			}
		}
	}

	rec.Confidence = dampen(rec.Confidence, trend.Volatility)
	return rec
}

func classifyDeviation(deviation float64) deviationZone {
	switch {
	case deviation <= -deviationBand:
		return zoneBelow
	case deviation >= deviationBand:
		return zoneAbove
	default:
		return zoneNear
	}
}

func trendOnlyFallback(direction TrendDirection) (Action, float64) {
	switch direction {
	case TrendFalling:
		return ActionBuy, 0.3
	case TrendRising:
		return ActionWait, 0.3
	default:
		return ActionNeutral, 0.3
	}
}

// dampen scales confidence down for volatile routes, never below the floor.
func dampen(confidence, volatility float64) float64 {
	factor := 1 - volatility
	if factor < 0.5 {
		factor = 0.5
	}
	confidence *= factor
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
