package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DealsProcessed      prometheus.Counter
	MatchesCreated      prometheus.Counter
	PricePointsRecorded prometheus.Counter
	AlertsTriggered     prometheus.Counter
	SummaryRetries      prometheus.Counter
	SummaryFallbacks    prometheus.Counter
	ScoringTime         prometheus.Histogram
	ProcessingTime      prometheus.Histogram
	ErrorsCount         *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DealsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_processed_total",
			Help:      "The total number of deals scored against subscriptions",
		}),
		MatchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "The total number of match records created",
		}),
		PricePointsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_points_recorded_total",
			Help:      "The total number of price observations appended to route history",
		}),
		AlertsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_triggered_total",
			Help:      "The total number of price alerts moved to triggered",
		}),
		SummaryRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_retries_total",
			Help:      "The total number of retried summary requests",
		}),
		SummaryFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_fallbacks_total",
			Help:      "The total number of matches that received the fallback summary",
		}),
		ScoringTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deal_scoring_time_seconds",
			Help:      "Time taken to score a deal against all subscriptions",
			Buckets:   prometheus.DefBuckets,
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_processing_time_seconds",
			Help:      "Time taken to process feed messages",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
