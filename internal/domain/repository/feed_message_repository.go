package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// FeedMessageRepository defines storage operations for raw deal-feed messages
type FeedMessageRepository interface {
	Save(ctx context.Context, msg *entity.FeedMessage) error
	FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.FeedMessage, error)
	FindPending(ctx context.Context, limit int) ([]*entity.FeedMessage, error)
	GetLast(ctx context.Context) (*entity.FeedMessage, error)
	MarkProcessed(ctx context.Context, messageID, status, errorDetail string, extractedData map[string]interface{}) error
}
