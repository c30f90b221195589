package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// AlertRepository persists price alerts and their state transitions.
type AlertRepository interface {
	Save(ctx context.Context, alert *entity.PriceAlert) error
	Update(ctx context.Context, alert *entity.PriceAlert) error
	FindAll(ctx context.Context) ([]*entity.PriceAlert, error)
}
