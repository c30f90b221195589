package repository

import (
	"context"
	"time"

	"skypulse-engine/internal/domain/entity"
)

// PricePointRepository persists price observations. FindSince streams the
// retained window back on warm start; DeleteBefore backs the nightly prune.
type PricePointRepository interface {
	Save(ctx context.Context, point *entity.PricePoint) error
	FindSince(ctx context.Context, since time.Time) ([]*entity.PricePoint, error)
	DeleteBefore(ctx context.Context, route entity.Route, cutoff time.Time) error
}
