package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// MatchRepository persists match records. The record is written before any
// summary attempt; SetSummary backfills the text later.
type MatchRepository interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
	SetSummary(ctx context.Context, id string, summary string) error
	FindByDeal(ctx context.Context, dealID string) ([]*entity.MatchRecord, error)
}
