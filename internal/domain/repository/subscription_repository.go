package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// SubscriptionRepository is the read-only view of the subscription store.
// Subscription CRUD lives in the account service; the engine only queries
// active subscriptions whose location criteria do not exclude the route.
type SubscriptionRepository interface {
	ActiveForRoute(ctx context.Context, route entity.Route) ([]*entity.Subscription, error)
}
