// internal/domain/entity/price.go
package entity

import (
	"time"
)

// PricePoint is one price observation for a route at a time. Points are
// append-only; the engine prunes them once older than the retention window
// measured from the newest point on the same route.
type PricePoint struct {
	ID          string    `bson:"_id,omitempty"`
	Origin      string    `bson:"origin"`
	Destination string    `bson:"destination"`
	Price       float64   `bson:"price"`
	ObservedAt  time.Time `bson:"observedAt"`
}

// Route returns the point's (origin, destination) pair
func (p *PricePoint) Route() Route {
	return Route{Origin: p.Origin, Destination: p.Destination}
}
