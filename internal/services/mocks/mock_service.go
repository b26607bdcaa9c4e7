package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/services"
)

// MockFlightSource is a mock implementation of services.FlightDataSource
type MockFlightSource struct {
	mock.Mock
}

func (m *MockFlightSource) SearchAirports(ctx context.Context, keyword string) ([]models.Airport, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Airport), args.Error(1)
}

func (m *MockFlightSource) SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchResult), args.Error(1)
}

func (m *MockFlightSource) SeatMap(ctx context.Context, offer models.ProviderOffer) (*models.ProviderSeatMapResponse, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderSeatMapResponse), args.Error(1)
}

func (m *MockFlightSource) Upsell(ctx context.Context, offer models.ProviderOffer) (*models.ProviderUpsellResponse, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderUpsellResponse), args.Error(1)
}

// MockAirportService is a mock implementation of the airport lookup
type MockAirportService struct {
	mock.Mock
}

func (m *MockAirportService) SearchAirports(ctx context.Context, clientKey, keyword string) ([]models.Airport, error) {
	args := m.Called(ctx, clientKey, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Airport), args.Error(1)
}

// MockBookingService is a mock implementation of the booking flow
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) State(ctx context.Context, sessionID string) (models.BookingState, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.BookingState), args.Error(1)
}

func (m *MockBookingService) Reset(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockBookingService) EnterSearch(ctx context.Context, sessionID string) (models.BookingState, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.BookingState), args.Error(1)
}

func (m *MockBookingService) SetSearch(ctx context.Context, sessionID string, criteria models.SearchCriteria) (models.BookingState, error) {
	args := m.Called(ctx, sessionID, criteria)
	return args.Get(0).(models.BookingState), args.Error(1)
}

func (m *MockBookingService) PatchSearch(ctx context.Context, sessionID string, patch models.SearchCriteriaPatch) (models.BookingState, error) {
	args := m.Called(ctx, sessionID, patch)
	return args.Get(0).(models.BookingState), args.Error(1)
}

func (m *MockBookingService) Results(ctx context.Context, sessionID string, leg services.Leg, view models.ResultView) (*services.FlightResults, error) {
	args := m.Called(ctx, sessionID, leg, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FlightResults), args.Error(1)
}

func (m *MockBookingService) SelectFlight(ctx context.Context, sessionID string, leg services.Leg, flightID string) (models.BookingState, error) {
	args := m.Called(ctx, sessionID, leg, flightID)
	return args.Get(0).(models.BookingState), args.Error(1)
}

func (m *MockBookingService) SeatMap(ctx context.Context, sessionID string, leg services.Leg, segmentIndex int) (*services.SeatMapView, error) {
	args := m.Called(ctx, sessionID, leg, segmentIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SeatMapView), args.Error(1)
}

func (m *MockBookingService) UpdateSeats(ctx context.Context, sessionID string, leg services.Leg, req services.SeatsRequest) (models.BookingStep, error) {
	args := m.Called(ctx, sessionID, leg, req)
	return args.Get(0).(models.BookingStep), args.Error(1)
}

func (m *MockBookingService) Review(ctx context.Context, sessionID string) (*services.ReviewView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReviewView), args.Error(1)
}

func (m *MockBookingService) Confirm(ctx context.Context, sessionID string) (*models.BookingSummary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingSummary), args.Error(1)
}

func (m *MockBookingService) ThankYou(ctx context.Context, sessionID, ref string) (*models.BookingSummary, error) {
	args := m.Called(ctx, sessionID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingSummary), args.Error(1)
}
