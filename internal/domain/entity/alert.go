// internal/domain/entity/alert.go
package entity

import (
	"time"
)

// AlertState is the lifecycle state of a price alert.
type AlertState string

const (
	AlertArmed     AlertState = "ARMED"
	AlertTriggered AlertState = "TRIGGERED"
)

// PriceAlert is a user's target-price watch on a route. The state machine is
// Armed -> Triggered, at most once per arming; only an explicit Rearm makes
// the alert watch again. All transitions go through the methods below so a
// double-trigger is not expressible.
type PriceAlert struct {
	ID             string     `bson:"_id,omitempty"`
	UserRef        string     `bson:"userRef"`
	Origin         string     `bson:"origin"`
	Destination    string     `bson:"destination"`
	TargetPrice    float64    `bson:"targetPrice"`
	State          AlertState `bson:"state"`
	CreatedAt      time.Time  `bson:"createdAt"`
	TriggeredAt    *time.Time `bson:"triggeredAt,omitempty"`
	TriggeredPrice *float64   `bson:"triggeredPrice,omitempty"`
}

// Route returns the alert's watched (origin, destination) pair
func (a *PriceAlert) Route() Route {
	return Route{Origin: a.Origin, Destination: a.Destination}
}

// Armed reports whether the alert is currently watching.
func (a *PriceAlert) Armed() bool {
	return a.State == AlertArmed
}

// Trigger moves an armed alert to Triggered and records the crossing.
// Returns false without side effects when the alert is not armed.
func (a *PriceAlert) Trigger(price float64, at time.Time) bool {
	if a.State != AlertArmed {
		return false
	}
	a.State = AlertTriggered
	a.TriggeredAt = &at
	a.TriggeredPrice = &price
	return true
}

// Rearm resets a triggered alert back to Armed so it can fire again.
func (a *PriceAlert) Rearm() {
	a.State = AlertArmed
	a.TriggeredAt = nil
	a.TriggeredPrice = nil
}

// AlertEvent is emitted on every Armed -> Triggered transition and handed to
// the notification sink, fire-and-forget.
type AlertEvent struct {
	Alert          *PriceAlert `json:"alert"`
	Route          Route       `json:"route"`
	TriggeredPrice float64     `json:"triggeredPrice"`
	TriggeredAt    time.Time   `json:"triggeredAt"`
}
