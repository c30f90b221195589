package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one
// instance.
var testMetrics = metrics.NewMetrics("skypulse_test")

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{})      {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})       {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})       {}
func (nopLogger) Error(msg string, keysAndValues ...interface{})      {}
func (nopLogger) Fatal(msg string, keysAndValues ...interface{})      {}
func (l nopLogger) With(keysAndValues ...interface{}) logger.Logger { return l }

type fakeFeedRepo struct {
	mu       sync.Mutex
	pending  []*entity.FeedMessage
	statuses map[string]string
	details  map[string]string
	data     map[string]map[string]interface{}
}

func newFakeFeedRepo(pending ...*entity.FeedMessage) *fakeFeedRepo {
	return &fakeFeedRepo{
		pending:  pending,
		statuses: make(map[string]string),
		details:  make(map[string]string),
		data:     make(map[string]map[string]interface{}),
	}
}

func (f *fakeFeedRepo) Save(ctx context.Context, msg *entity.FeedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msg)
	return nil
}

func (f *fakeFeedRepo) FindByMessageIDs(ctx context.Context, ids []string) (map[string]*entity.FeedMessage, error) {
	return map[string]*entity.FeedMessage{}, nil
}

func (f *fakeFeedRepo) FindPending(ctx context.Context, limit int) ([]*entity.FeedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.FeedMessage
	for _, m := range f.pending {
		if f.statuses[m.MessageID] == "" && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) GetLast(ctx context.Context) (*entity.FeedMessage, error) {
	return nil, nil
}

func (f *fakeFeedRepo) MarkProcessed(ctx context.Context, messageID, status, errorDetail string, extractedData map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[messageID] = status
	f.details[messageID] = errorDetail
	f.data[messageID] = extractedData
	return nil
}

type fakeSubRepo struct {
	subs []*entity.Subscription
}

func (f *fakeSubRepo) ActiveForRoute(ctx context.Context, route entity.Route) ([]*entity.Subscription, error) {
	return f.subs, nil
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	records   []*entity.MatchRecord
	summaries map[string]string
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{summaries: make(map[string]string)}
}

func (f *fakeMatchRepo) Save(ctx context.Context, record *entity.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == "" {
		record.ID = fmt.Sprintf("match-%d", len(f.records)+1)
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeMatchRepo) SetSummary(ctx context.Context, id, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[id] = summary
	return nil
}

func (f *fakeMatchRepo) FindByDeal(ctx context.Context, dealID string) ([]*entity.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.MatchRecord
	for _, r := range f.records {
		if r.DealID == dealID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePricePointRepo struct {
	mu     sync.Mutex
	points []*entity.PricePoint
}

func (f *fakePricePointRepo) Save(ctx context.Context, point *entity.PricePoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, point)
	return nil
}

func (f *fakePricePointRepo) FindSince(ctx context.Context, since time.Time) ([]*entity.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.PricePoint
	for _, p := range f.points {
		if !p.ObservedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePricePointRepo) DeleteBefore(ctx context.Context, route entity.Route, cutoff time.Time) error {
	return nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*entity.PriceAlert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[string]*entity.PriceAlert)}
}

func (f *fakeAlertRepo) Save(ctx context.Context, alert *entity.PriceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts[alert.ID] = alert
	return nil
}

func (f *fakeAlertRepo) Update(ctx context.Context, alert *entity.PriceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts[alert.ID] = alert
	return nil
}

func (f *fakeAlertRepo) FindAll(ctx context.Context) ([]*entity.PriceAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.PriceAlert
	for _, a := range f.alerts {
		out = append(out, a)
	}
	return out, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	events   []*entity.AlertEvent
	failWith error
}

func (f *fakeNotifier) NotifyTriggered(ctx context.Context, event *entity.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.failWith
}

// fakeSummarizer fails the first failures calls, then returns result.
type fakeSummarizer struct {
	mu       sync.Mutex
	failures int
	result   string
	calls    int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req *entity.SummaryRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", &entity.ExternalServiceError{Service: "summarizer", Err: fmt.Errorf("attempt %d failed", f.calls)}
	}
	return f.result, nil
}
