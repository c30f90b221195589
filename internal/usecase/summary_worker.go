package usecase

import (
	"context"
	"math/rand"
	"time"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/pkg/metrics"
	"skypulse-engine/templates"
)

// SummaryJob carries one summary request together with the match record it
// backfills.
type SummaryJob struct {
	MatchID string
	Request *entity.SummaryRequest
}

// SummaryWorker generates match summaries off the scoring path. Jobs are
// retried with exponential backoff; once attempts are exhausted the worker
// backfills a deterministic template summary so every match ends up with one.
type SummaryWorker struct {
	summarizer  repository.Summarizer
	matchRepo   repository.MatchRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
	jobs        chan SummaryJob
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewSummaryWorker creates a new summary worker
func NewSummaryWorker(
	summarizer repository.Summarizer,
	matchRepo repository.MatchRepository,
	m *metrics.Metrics,
	logger logger.Logger,
	queueSize int,
	maxAttempts int,
	baseDelay time.Duration,
) *SummaryWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &SummaryWorker{
		summarizer:  summarizer,
		matchRepo:   matchRepo,
		metrics:     m,
		logger:      logger,
		jobs:        make(chan SummaryJob, queueSize),
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    60 * time.Second,
	}
}

// Enqueue hands a job to the worker without blocking the caller. When the
// queue is full the match gets the fallback summary right away; generation
// and its retries never run on the scoring path.
func (w *SummaryWorker) Enqueue(ctx context.Context, job SummaryJob) {
	select {
	case w.jobs <- job:
	default:
		w.metrics.SummaryFallbacks.Inc()
		w.logger.Warn("Summary queue full, writing fallback", "matchId", job.MatchID)
		w.backfill(ctx, job, templates.FallbackSummary(job.Request))
	}
}

// Start consumes jobs until the context is cancelled
func (w *SummaryWorker) Start(ctx context.Context) {
	w.logger.Info("Summary worker started", "queueSize", cap(w.jobs))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Summary worker stopped")
			return
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

func (w *SummaryWorker) process(ctx context.Context, job SummaryJob) {
	summary, err := w.summarizeWithRetry(ctx, job)
	if err != nil {
		w.metrics.SummaryFallbacks.Inc()
		w.logger.Warn("Summary generation exhausted retries, using fallback",
			"matchId", job.MatchID, "error", err)
		summary = templates.FallbackSummary(job.Request)
	}
	w.backfill(ctx, job, summary)
}

func (w *SummaryWorker) backfill(ctx context.Context, job SummaryJob, summary string) {
	if err := w.matchRepo.SetSummary(ctx, job.MatchID, summary); err != nil {
		w.metrics.ErrorsCount.WithLabelValues("summary_backfill").Inc()
		w.logger.Error("Failed to backfill match summary", "matchId", job.MatchID, "error", err)
	}
}

func (w *SummaryWorker) summarizeWithRetry(ctx context.Context, job SummaryJob) (string, error) {
	var lastErr error
	delay := w.baseDelay

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		summary, err := w.summarizer.Summarize(ctx, job.Request)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		w.metrics.SummaryRetries.Inc()
		w.logger.Warn("Summary attempt failed",
			"matchId", job.MatchID, "attempt", attempt, "error", err)

		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay *= 2
		if delay > w.maxDelay {
			delay = w.maxDelay
		}
	}
	return "", lastErr
}

// jitter spreads a delay by up to ±10% so retries from concurrent jobs
// don't land in lockstep.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * 0.1
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
