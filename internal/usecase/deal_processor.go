package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/pkg/matching"
	"skypulse-engine/pkg/metrics"
	"skypulse-engine/pkg/utils"
)

// DealProcessor drains pending feed messages, parses their deal payloads,
// scores each deal against the active subscriptions on its route, and feeds
// the price observation into the monitor.
type DealProcessor struct {
	feedRepo  repository.FeedMessageRepository
	subRepo   repository.SubscriptionRepository
	matchRepo repository.MatchRepository
	scorer    *matching.Scorer
	monitor   *PriceMonitor
	summaries *SummaryWorker
	metrics   *metrics.Metrics
	logger    logger.Logger
	batchSize int
}

// NewDealProcessor creates a new deal processor
func NewDealProcessor(
	feedRepo repository.FeedMessageRepository,
	subRepo repository.SubscriptionRepository,
	matchRepo repository.MatchRepository,
	scorer *matching.Scorer,
	monitor *PriceMonitor,
	summaries *SummaryWorker,
	m *metrics.Metrics,
	logger logger.Logger,
	batchSize int,
) *DealProcessor {
	return &DealProcessor{
		feedRepo:  feedRepo,
		subRepo:   subRepo,
		matchRepo: matchRepo,
		scorer:    scorer,
		monitor:   monitor,
		summaries: summaries,
		metrics:   m,
		logger:    logger,
		batchSize: batchSize,
	}
}

// ProcessPending drains one batch of pending feed messages. Each message is
// terminal after a single pass: COMPLETED, SKIPPED, or FAILED.
func (p *DealProcessor) ProcessPending(ctx context.Context) error {
	messages, err := p.feedRepo.FindPending(ctx, p.batchSize)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("feed_find_pending").Inc()
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Processing feed messages", "count", len(messages))
	timer := time.Now()

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.processMessage(ctx, msg)
	}

	p.metrics.ProcessingTime.Observe(time.Since(timer).Seconds())
	return nil
}

func (p *DealProcessor) processMessage(ctx context.Context, msg *entity.FeedMessage) {
	deal, err := utils.ParseDealPayload(msg.Body, msg.ReceivedAt)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			p.logger.Warn("Skipping malformed deal payload", "messageId", msg.MessageID, "error", err)
			p.markMessage(ctx, msg.MessageID, entity.StatusSkipped, err.Error(), nil)
			return
		}
		p.markMessage(ctx, msg.MessageID, entity.StatusFailed, err.Error(), nil)
		return
	}
	deal.ID = uuid.NewString()
	deal.SourceMessageID = msg.MessageID

	if err := matching.ValidateDeal(deal); err != nil {
		p.logger.Warn("Skipping invalid deal", "messageId", msg.MessageID, "error", err)
		p.markMessage(ctx, msg.MessageID, entity.StatusSkipped, err.Error(), nil)
		return
	}

	matched, err := p.ProcessDeal(ctx, deal)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("deal_process").Inc()
		p.logger.Error("Failed to process deal", "messageId", msg.MessageID, "error", err)
		p.markMessage(ctx, msg.MessageID, entity.StatusFailed, err.Error(), nil)
		return
	}

	p.markMessage(ctx, msg.MessageID, entity.StatusCompleted, "", map[string]interface{}{
		"dealId":      deal.ID,
		"route":       deal.Route().Key(),
		"price":       deal.Price,
		"airline":     deal.Airline,
		"matchCount":  matched,
		"departureAt": deal.DepartureDate,
	})
}

// ProcessDeal scores one validated deal against every active subscription on
// its route, persists the matches, and records the price observation. It
// returns the number of matches created.
func (p *DealProcessor) ProcessDeal(ctx context.Context, deal *entity.Deal) (int, error) {
	route := deal.Route()

	subs, err := p.subRepo.ActiveForRoute(ctx, route)
	if err != nil {
		return 0, err
	}

	timer := time.Now()
	matched := 0
	for _, sub := range subs {
		total, breakdown := p.scorer.Score(deal, sub)
		if !p.scorer.Matches(total) {
			continue
		}

		record := &entity.MatchRecord{
			DealID:         deal.ID,
			SubscriptionID: sub.ID,
			Score:          total,
			Breakdown:      breakdown,
			CreatedAt:      time.Now(),
		}
		if err := p.matchRepo.Save(ctx, record); err != nil {
			p.metrics.ErrorsCount.WithLabelValues("match_save").Inc()
			return matched, err
		}
		matched++
		p.metrics.MatchesCreated.Inc()
		p.logger.Info("Match created",
			"dealId", deal.ID,
			"subscriptionId", sub.ID,
			"score", total)

		p.summaries.Enqueue(ctx, SummaryJob{
			MatchID: record.ID,
			Request: &entity.SummaryRequest{
				Deal:         deal,
				Subscription: sub,
				Breakdown:    breakdown,
			},
		})
	}
	p.metrics.ScoringTime.Observe(time.Since(timer).Seconds())
	p.metrics.DealsProcessed.Inc()

	if err := p.monitor.Observe(ctx, route, deal.Price, deal.DiscoveredAt); err != nil {
		return matched, err
	}

	p.logger.Info("Deal processed",
		"dealId", deal.ID,
		"route", route.Key(),
		"subscriptions", len(subs),
		"matches", matched)
	return matched, nil
}

// StartPolling drains pending messages on a fixed interval until the context
// is cancelled.
func (p *DealProcessor) StartPolling(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("Deal processor polling started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Deal processor polling stopped")
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("Feed processing pass failed", "error", err)
			}
		}
	}
}

func (p *DealProcessor) markMessage(ctx context.Context, messageID, status, detail string, extracted map[string]interface{}) {
	if err := p.feedRepo.MarkProcessed(ctx, messageID, status, detail, extracted); err != nil {
		p.metrics.ErrorsCount.WithLabelValues("feed_mark_processed").Inc()
		p.logger.Error("Failed to mark feed message", "messageId", messageID, "status", status, "error", err)
	}
}
