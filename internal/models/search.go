package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TripType is either a one-way or a round trip
type TripType string

const (
	TripTypeOneWay    TripType = "oneway"
	TripTypeRoundTrip TripType = "roundtrip"
)

// CabinClass is the priced cabin of a search
type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// DateLayout is the layout of departure and return dates
const DateLayout = "2006-01-02"

// MaxPassengers bounds the passenger count of a single search
const MaxPassengers = 9

var ErrInvalidCriteria = errors.New("invalid search criteria")

// SearchCriteria represents what the user searched for
type SearchCriteria struct {
	TripType      TripType   `json:"tripType"`
	Origin        *Airport   `json:"origin"`
	Destination   *Airport   `json:"destination"`
	DepartureDate string     `json:"departureDate"`
	ReturnDate    string     `json:"returnDate,omitempty"`
	Passengers    int        `json:"passengers"`
	TravelClass   CabinClass `json:"travelClass"`
}

// SearchCriteriaPatch carries a partial update of search criteria.
// Nil fields are left untouched.
type SearchCriteriaPatch struct {
	TripType      *TripType   `json:"tripType,omitempty"`
	Origin        *Airport    `json:"origin,omitempty"`
	Destination   *Airport    `json:"destination,omitempty"`
	DepartureDate *string     `json:"departureDate,omitempty"`
	ReturnDate    *string     `json:"returnDate,omitempty"`
	Passengers    *int        `json:"passengers,omitempty"`
	TravelClass   *CabinClass `json:"travelClass,omitempty"`
}

// IsValid checks if the cabin class is known
func (c CabinClass) IsValid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// ProviderCode returns the upper-case cabin code used by flight data providers
func (c CabinClass) ProviderCode() string {
	return strings.ToUpper(string(c))
}

// IsRoundTrip reports whether the criteria describe a round trip
func (sc *SearchCriteria) IsRoundTrip() bool {
	return sc != nil && sc.TripType == TripTypeRoundTrip
}

// Validate checks the criteria invariants. One-way criteria have their return date cleared.
func (sc *SearchCriteria) Validate() error {
	if sc.TripType != TripTypeOneWay && sc.TripType != TripTypeRoundTrip {
		return fmt.Errorf("%w: unknown trip type %q", ErrInvalidCriteria, sc.TripType)
	}
	if sc.Origin == nil || sc.Origin.IATACode == "" {
		return fmt.Errorf("%w: origin airport is required", ErrInvalidCriteria)
	}
	if sc.Destination == nil || sc.Destination.IATACode == "" {
		return fmt.Errorf("%w: destination airport is required", ErrInvalidCriteria)
	}
	if strings.EqualFold(sc.Origin.IATACode, sc.Destination.IATACode) {
		return fmt.Errorf("%w: origin and destination must differ", ErrInvalidCriteria)
	}
	if sc.Passengers < 1 || sc.Passengers > MaxPassengers {
		return fmt.Errorf("%w: passengers must be between 1 and %d", ErrInvalidCriteria, MaxPassengers)
	}
	if !sc.TravelClass.IsValid() {
		return fmt.Errorf("%w: unknown travel class %q", ErrInvalidCriteria, sc.TravelClass)
	}

	departure, err := time.Parse(DateLayout, sc.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: invalid departure date: %v", ErrInvalidCriteria, err)
	}

	if sc.TripType == TripTypeOneWay {
		sc.ReturnDate = ""
		return nil
	}

	if sc.ReturnDate == "" {
		return fmt.Errorf("%w: return date is required for a round trip", ErrInvalidCriteria)
	}
	ret, err := time.Parse(DateLayout, sc.ReturnDate)
	if err != nil {
		return fmt.Errorf("%w: invalid return date: %v", ErrInvalidCriteria, err)
	}
	if ret.Before(departure) {
		return fmt.Errorf("%w: return date is before departure date", ErrInvalidCriteria)
	}
	return nil
}

// Apply merges the patch into a copy of the criteria
func (p *SearchCriteriaPatch) Apply(sc SearchCriteria) SearchCriteria {
	if p.TripType != nil {
		sc.TripType = *p.TripType
	}
	if p.Origin != nil {
		origin := *p.Origin
		sc.Origin = &origin
	}
	if p.Destination != nil {
		destination := *p.Destination
		sc.Destination = &destination
	}
	if p.DepartureDate != nil {
		sc.DepartureDate = *p.DepartureDate
	}
	if p.ReturnDate != nil {
		sc.ReturnDate = *p.ReturnDate
	}
	if p.Passengers != nil {
		sc.Passengers = *p.Passengers
	}
	if p.TravelClass != nil {
		sc.TravelClass = *p.TravelClass
	}
	return sc
}

// CacheKey returns a normalized identity of the criteria for caching and request collapsing
func (sc *SearchCriteria) CacheKey() string {
	origin, destination := "", ""
	if sc.Origin != nil {
		origin = strings.ToUpper(sc.Origin.IATACode)
	}
	if sc.Destination != nil {
		destination = strings.ToUpper(sc.Destination.IATACode)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%d:%s",
		sc.TripType, origin, destination, sc.DepartureDate, sc.ReturnDate, sc.Passengers, sc.TravelClass)
}
