package repository

import (
	"context"

	"gorm.io/gorm"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
)

// GormSubscriptionRepository implements the read-only SubscriptionRepository
// over the account service's Postgres schema.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GORM subscription repository
func NewGormSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &GormSubscriptionRepository{
		db: db,
	}
}

// ActiveForRoute returns active subscriptions whose location criteria do not
// exclude the route. The SQL prefilter mirrors the scorer's location rule
// (unset, or case-insensitive containment either way); the scorer remains
// the authority on the final score.
func (r *GormSubscriptionRepository) ActiveForRoute(ctx context.Context, route entity.Route) ([]*entity.Subscription, error) {
	var subs []*entity.Subscription
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("origin = '' OR ? ILIKE '%' || origin || '%' OR origin ILIKE '%' || ? || '%'", route.Origin, route.Origin).
		Where("destination = '' OR ? ILIKE '%' || destination || '%' OR destination ILIKE '%' || ? || '%'", route.Destination, route.Destination).
		Find(&subs)

	if result.Error != nil {
		return nil, &entity.PersistenceError{Op: "subscriptions.activeForRoute", Err: result.Error}
	}
	return subs, nil
}
