// internal/domain/entity/deal.go
package entity

import (
	"time"
)

// Route is an ordered (origin, destination) city pair.
type Route struct {
	Origin      string `bson:"origin" json:"origin"`
	Destination string `bson:"destination" json:"destination"`
}

// Key returns the canonical string form used for logging and storage keys
func (r Route) Key() string {
	return r.Origin + "-" + r.Destination
}

// Deal represents a discovered flight offer. Immutable once scored.
type Deal struct {
	ID              string    `bson:"_id,omitempty"`
	Source          string    `bson:"source"`
	SourceMessageID string    `bson:"sourceMessageId,omitempty"`
	Airline         string    `bson:"airline"`
	FlightNumber    string    `bson:"flightNumber,omitempty"`
	DepartureCity   string    `bson:"departureCity"`
	ArrivalCity     string    `bson:"arrivalCity"`
	DepartureDate   time.Time `bson:"departureDate"`
	ReturnDate      time.Time `bson:"returnDate"`
	Price           float64   `bson:"price"`
	Currency        string    `bson:"currency"`
	BookingLink     string    `bson:"bookingLink,omitempty"`
	DiscoveredAt    time.Time `bson:"discoveredAt"`
}

// Route returns the deal's (origin, destination) pair
func (d *Deal) Route() Route {
	return Route{Origin: d.DepartureCity, Destination: d.ArrivalCity}
}
