package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// AlertNotifier is the outbound sink for Armed -> Triggered transitions.
// Fire-and-forget from the engine's perspective: delivery failures are
// logged, never retried, and never re-trigger the alert.
type AlertNotifier interface {
	NotifyTriggered(ctx context.Context, event *entity.AlertEvent) error
}
