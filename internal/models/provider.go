package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payloads exchanged with the inventory provider (seat map display and branded fares upsell).

// ProviderSeatPrice is the price of a seat for one traveler
type ProviderSeatPrice struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Base     string `json:"base"`
}

// ProviderTravelerPricing holds seat availability for one traveler
type ProviderTravelerPricing struct {
	TravelerID             string             `json:"travelerId"`
	SeatAvailabilityStatus string             `json:"seatAvailabilityStatus"`
	Price                  *ProviderSeatPrice `json:"price,omitempty"`
}

// ProviderSeat is a seat as described by the provider
type ProviderSeat struct {
	Cabin                string                    `json:"cabin"`
	Number               string                    `json:"number"`
	CharacteristicsCodes []string                  `json:"characteristicsCodes,omitempty"`
	TravelerPricing      []ProviderTravelerPricing `json:"travelerPricing"`
}

// ProviderDeckConfiguration is the dimension of a deck
type ProviderDeckConfiguration struct {
	Width        int `json:"width"`
	Length       int `json:"length"`
	StartSeatRow int `json:"startSeatRow,omitempty"`
	EndSeatRow   int `json:"endSeatRow,omitempty"`
}

// ProviderDeck is one deck of an aircraft
type ProviderDeck struct {
	DeckType          string                    `json:"deckType"`
	DeckConfiguration ProviderDeckConfiguration `json:"deckConfiguration"`
	Seats             []ProviderSeat            `json:"seats"`
}

// ProviderSeatMapData is the seat map of one segment
type ProviderSeatMapData struct {
	Type          string         `json:"type"`
	FlightOfferID string         `json:"flightOfferId"`
	SegmentID     string         `json:"segmentId"`
	CarrierCode   string         `json:"carrierCode"`
	Number        string         `json:"number"`
	Decks         []ProviderDeck `json:"decks"`
}

// ProviderSeatMapResponse is the seat map lookup response
type ProviderSeatMapResponse struct {
	Data []ProviderSeatMapData `json:"data"`
}

// ProviderAdditionalService is a paid add-on priced by the provider
type ProviderAdditionalService struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// ProviderIncludedBags describes checked bags included in a fare
type ProviderIncludedBags struct {
	Quantity   int    `json:"quantity,omitempty"`
	Weight     int    `json:"weight,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
}

// ProviderFareDetails is the fare of one segment
type ProviderFareDetails struct {
	Cabin               string                `json:"cabin"`
	IncludedCheckedBags *ProviderIncludedBags `json:"includedCheckedBags,omitempty"`
}

// ProviderUpsellTravelerPricing holds per-segment fare details of one traveler
type ProviderUpsellTravelerPricing struct {
	FareDetailsBySegment []ProviderFareDetails `json:"fareDetailsBySegment"`
}

// ProviderUpsellPrice is the price block of an upsell offer
type ProviderUpsellPrice struct {
	Currency           string                      `json:"currency"`
	Total              string                      `json:"total"`
	AdditionalServices []ProviderAdditionalService `json:"additionalServices,omitempty"`
}

// ProviderUpsellOffer is one branded fare offer
type ProviderUpsellOffer struct {
	Type             string                          `json:"type"`
	ID               string                          `json:"id"`
	Price            ProviderUpsellPrice             `json:"price"`
	TravelerPricings []ProviderUpsellTravelerPricing `json:"travelerPricings"`
}

// ProviderUpsellResponse is the upsell lookup response
type ProviderUpsellResponse struct {
	Data []ProviderUpsellOffer `json:"data"`
}

// Seat availability statuses and additional service types
const (
	SeatStatusAvailable = "AVAILABLE"
	SeatStatusBlocked   = "BLOCKED"
	SeatStatusOccupied  = "OCCUPIED"

	ServiceCheckedBags = "CHECKED_BAGS"
)

// offerEnvelope is the part of a raw offer every inventory lookup needs
type offerEnvelope struct {
	ID               string            `json:"id"`
	Itineraries      []json.RawMessage `json:"itineraries"`
	TravelerPricings []json.RawMessage `json:"travelerPricings"`
}

var ErrInvalidOffer = errors.New("invalid provider offer")

// ValidateOffer checks that a raw offer carries itineraries and traveler pricings
func ValidateOffer(offer ProviderOffer) error {
	if len(offer) == 0 || string(offer) == "null" {
		return fmt.Errorf("%w: offer is empty", ErrInvalidOffer)
	}
	var env offerEnvelope
	if err := json.Unmarshal(offer, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOffer, err)
	}
	if env.Itineraries == nil {
		return fmt.Errorf("%w: missing itineraries", ErrInvalidOffer)
	}
	if env.TravelerPricings == nil {
		return fmt.Errorf("%w: missing travelerPricings", ErrInvalidOffer)
	}
	return nil
}
