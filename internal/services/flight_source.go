package services

import (
	"context"
	"errors"
	"fmt"

	"flights_booking_frontend/internal/models"
)

var (
	ErrNoReturnDate   = errors.New("return date is required for a return flight search")
	ErrNotSupported   = errors.New("operation not supported by this flight source")
	ErrSuperseded     = errors.New("superseded by a newer request")
	ErrFlightNotFound = errors.New("flight not found in search results")
)

// AirportSource finds airports by keyword
type AirportSource interface {
	SearchAirports(ctx context.Context, keyword string) ([]models.Airport, error)
}

// FlightDataSource is the flight data provider the booking flow reads from
type FlightDataSource interface {
	AirportSource
	SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error)
	SeatMap(ctx context.Context, offer models.ProviderOffer) (*models.ProviderSeatMapResponse, error)
	Upsell(ctx context.Context, offer models.ProviderOffer) (*models.ProviderUpsellResponse, error)
}

// OutboundCriteria returns the criteria of an outbound-only search
func OutboundCriteria(criteria models.SearchCriteria) models.SearchCriteria {
	criteria.TripType = models.TripTypeOneWay
	criteria.ReturnDate = ""
	return criteria
}

// ReturnCriteria returns the criteria of the return leg search: airports swapped,
// departing on the return date, one-way.
func ReturnCriteria(criteria models.SearchCriteria) (models.SearchCriteria, error) {
	if criteria.ReturnDate == "" {
		return models.SearchCriteria{}, ErrNoReturnDate
	}
	ret := criteria
	ret.Origin, ret.Destination = criteria.Destination, criteria.Origin
	ret.DepartureDate = criteria.ReturnDate
	ret.ReturnDate = ""
	ret.TripType = models.TripTypeOneWay
	return ret, nil
}

// SearchOutboundFlights searches the outbound leg only
func SearchOutboundFlights(ctx context.Context, source FlightDataSource, criteria models.SearchCriteria) (*models.SearchResult, error) {
	result, err := source.SearchFlights(ctx, OutboundCriteria(criteria))
	if err != nil {
		return nil, fmt.Errorf("outbound search failed: %w", err)
	}
	return result, nil
}

// SearchReturnFlights searches the return leg. It fails fast without a return date.
func SearchReturnFlights(ctx context.Context, source FlightDataSource, criteria models.SearchCriteria) (*models.SearchResult, error) {
	ret, err := ReturnCriteria(criteria)
	if err != nil {
		return nil, err
	}
	result, err := source.SearchFlights(ctx, ret)
	if err != nil {
		return nil, fmt.Errorf("return search failed: %w", err)
	}
	return result, nil
}
