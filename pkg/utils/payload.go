package utils

import (
	"encoding/json"
	"strings"
	"time"

	"skypulse-engine/internal/domain/entity"
)

// DealPayload is the normalized JSON document embedded in a deal-feed
// message. Upstream connectors own the newsletter parsing; by the time a
// message reaches this service the deal is already structured.
type DealPayload struct {
	Source        string  `json:"source"`
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flightNumber"`
	DepartureCity string  `json:"departureCity"`
	ArrivalCity   string  `json:"arrivalCity"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	BookingLink   string  `json:"bookingLink"`
}

const payloadDateLayout = "2006-01-02"

// ParseDealPayload extracts the JSON deal document from a feed message body
// and converts it to a domain deal. Malformed payloads are reported as
// ValidationError so the caller can mark the message failed and move on.
func ParseDealPayload(body string, receivedAt time.Time) (*entity.Deal, error) {
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, &entity.ValidationError{Field: "body", Reason: "no JSON payload found"}
	}

	var payload DealPayload
	if err := json.Unmarshal([]byte(body[start:end+1]), &payload); err != nil {
		return nil, &entity.ValidationError{Field: "body", Reason: "malformed deal payload: " + err.Error()}
	}

	deal := &entity.Deal{
		Source:        payload.Source,
		Airline:       payload.Airline,
		FlightNumber:  payload.FlightNumber,
		DepartureCity: payload.DepartureCity,
		ArrivalCity:   payload.ArrivalCity,
		Price:         payload.Price,
		Currency:      payload.Currency,
		BookingLink:   payload.BookingLink,
		DiscoveredAt:  receivedAt,
	}
	if deal.Currency == "" {
		deal.Currency = "USD"
	}

	if payload.DepartureDate != "" {
		t, err := time.Parse(payloadDateLayout, payload.DepartureDate)
		if err != nil {
			return nil, &entity.ValidationError{Field: "departureDate", Reason: "expected YYYY-MM-DD"}
		}
		deal.DepartureDate = t
	}
	if payload.ReturnDate != "" {
		t, err := time.Parse(payloadDateLayout, payload.ReturnDate)
		if err != nil {
			return nil, &entity.ValidationError{Field: "returnDate", Reason: "expected YYYY-MM-DD"}
		}
		deal.ReturnDate = t
	}

	return deal, nil
}
