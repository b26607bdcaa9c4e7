package booking

import (
	"errors"
	"time"

	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/seatmap"
)

var ErrIncompleteBooking = errors.New("booking is not ready for review")

// TotalPrice is the fares of both legs plus their extras. It is computed on demand, never stored.
// The return leg only counts on a round trip.
func TotalPrice(state *models.BookingState) float64 {
	total := 0.0
	if state.OutboundFlight.HasFlight() {
		total += state.OutboundFlight.Flight.Price
	}
	total += state.OutboundFlight.ExtrasPrice

	if state.SearchCriteria.IsRoundTrip() && state.ReturnFlight != nil {
		if state.ReturnFlight.HasFlight() {
			total += state.ReturnFlight.Flight.Price
		}
		total += state.ReturnFlight.ExtrasPrice
	}
	return total
}

// BuildSummary freezes the booked state into a versioned summary
func BuildSummary(state *models.BookingState, ref string, now time.Time) (models.BookingSummary, error) {
	if state.SearchCriteria == nil || !CanProceedToReview(state) {
		return models.BookingSummary{}, ErrIncompleteBooking
	}

	currency := state.OutboundFlight.Flight.Currency
	if currency == "" {
		currency = seatmap.DefaultCurrency
	}

	summary := models.BookingSummary{
		Version:          models.BookingSummaryVersion,
		BookingReference: ref,
		CreatedAt:        now.UTC(),
		SearchCriteria:   *state.SearchCriteria,
		Outbound:         legSummary(&state.OutboundFlight),
		TotalPrice:       TotalPrice(state),
		Currency:         currency,
	}
	if state.SearchCriteria.IsRoundTrip() && state.ReturnFlight.HasFlight() {
		ret := legSummary(state.ReturnFlight)
		summary.Return = &ret
	}
	return summary, nil
}

func legSummary(leg *models.FlightLegSelection) models.LegSummary {
	return models.LegSummary{
		Flight:      *leg.Flight,
		Seats:       copyIDs(leg.SelectedSeats),
		Luggage:     copyIDs(leg.SelectedLuggage),
		ExtrasPrice: leg.ExtrasPrice,
	}
}
