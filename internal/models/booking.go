package models

import (
	"time"
)

// BookingStep marks where the user is in the booking flow
type BookingStep string

const (
	StepSearch          BookingStep = "search"
	StepOutboundResults BookingStep = "outbound-results"
	StepOutboundSeats   BookingStep = "outbound-seats"
	StepReturnResults   BookingStep = "return-results"
	StepReturnSeats     BookingStep = "return-seats"
	StepReview          BookingStep = "review"
	StepConfirmed       BookingStep = "confirmed"
)

// FlightLegSelection is the chosen flight of one leg with its seats and luggage
type FlightLegSelection struct {
	Flight          *Flight       `json:"flight"`
	RawOffer        ProviderOffer `json:"rawOffer,omitempty"`
	SelectedSeats   []string      `json:"selectedSeats"`
	SelectedLuggage []string      `json:"selectedLuggage"`
	ExtrasPrice     float64       `json:"extrasPrice"`
}

// BookingState represents an in-progress booking
type BookingState struct {
	SearchCriteria        *SearchCriteria     `json:"searchCriteria"`
	OutboundFlight        FlightLegSelection  `json:"outboundFlight"`
	ReturnFlight          *FlightLegSelection `json:"returnFlight"`
	CurrentStep           BookingStep         `json:"currentStep"`
	OutboundSearchResults *SearchResult       `json:"outboundSearchResults"`
	ReturnSearchResults   *SearchResult       `json:"returnSearchResults"`
	BookingReference      string              `json:"bookingReference,omitempty"`
}

// BookingSummaryVersion is the current version of BookingSummary
const BookingSummaryVersion = 1

// LegSummary is the booked part of one leg
type LegSummary struct {
	Flight      Flight   `json:"flight"`
	Seats       []string `json:"seats"`
	Luggage     []string `json:"luggage"`
	ExtrasPrice float64  `json:"extrasPrice"`
}

// BookingSummary is what was booked. It is produced at review and consumed verbatim on confirmation.
type BookingSummary struct {
	Version          int            `json:"version"`
	BookingReference string         `json:"bookingReference"`
	CreatedAt        time.Time      `json:"createdAt"`
	SearchCriteria   SearchCriteria `json:"searchCriteria"`
	Outbound         LegSummary     `json:"outbound"`
	Return           *LegSummary    `json:"return,omitempty"`
	TotalPrice       float64        `json:"totalPrice"`
	Currency         string         `json:"currency"`
}

// HasFlight reports whether a flight was chosen for the leg
func (l *FlightLegSelection) HasFlight() bool {
	return l != nil && l.Flight != nil
}

// Ready reports whether the leg has a flight and at least one seat
func (l *FlightLegSelection) Ready() bool {
	return l.HasFlight() && len(l.SelectedSeats) > 0
}

// Complete reports whether the leg has a seat for every passenger
func (l *FlightLegSelection) Complete(passengers int) bool {
	return l.HasFlight() && passengers > 0 && len(l.SelectedSeats) == passengers
}

// Clone returns a deep copy of the leg selection
func (l *FlightLegSelection) Clone() *FlightLegSelection {
	if l == nil {
		return nil
	}
	c := *l
	if l.Flight != nil {
		f := *l.Flight
		c.Flight = &f
	}
	c.SelectedSeats = append([]string{}, l.SelectedSeats...)
	c.SelectedLuggage = append([]string{}, l.SelectedLuggage...)
	if l.RawOffer != nil {
		c.RawOffer = append(ProviderOffer{}, l.RawOffer...)
	}
	return &c
}
