package booking

import (
	"flights_booking_frontend/internal/models"
)

var stepRoutes = map[models.BookingStep]string{
	models.StepSearch:          "/search",
	models.StepOutboundResults: "/flights/outbound",
	models.StepOutboundSeats:   "/flights/outbound/seatmap",
	models.StepReturnResults:   "/flights/return",
	models.StepReturnSeats:     "/flights/return/seatmap",
	models.StepReview:          "/review",
	models.StepConfirmed:       "/thank-you",
}

// StepRoute returns the route serving a step
func StepRoute(step models.BookingStep) string {
	if route, ok := stepRoutes[step]; ok {
		return route
	}
	return stepRoutes[models.StepSearch]
}

// Guard checks the prerequisites of a step. When they are missing it returns
// false and the step to send the user back to. ref is the booking reference
// presented to the confirmation step.
func Guard(step models.BookingStep, state *models.BookingState, ref string) (bool, models.BookingStep) {
	switch step {
	case models.StepOutboundResults:
		if state.SearchCriteria == nil {
			return false, models.StepSearch
		}
	case models.StepOutboundSeats:
		if state.SearchCriteria == nil {
			return false, models.StepSearch
		}
		if !state.OutboundFlight.HasFlight() {
			return false, models.StepOutboundResults
		}
	case models.StepReturnResults, models.StepReturnSeats:
		if !state.OutboundFlight.HasFlight() {
			return false, models.StepOutboundResults
		}
		if state.SearchCriteria == nil || state.SearchCriteria.ReturnDate == "" {
			return false, models.StepSearch
		}
		if step == models.StepReturnSeats && !state.ReturnFlight.HasFlight() {
			return false, models.StepReturnResults
		}
	case models.StepReview:
		if !state.OutboundFlight.HasFlight() {
			return false, models.StepSearch
		}
	case models.StepConfirmed:
		if ref == "" || !state.OutboundFlight.HasFlight() {
			return false, models.StepSearch
		}
	}
	return true, step
}

// NextStepAfterOutbound is where the flow continues once outbound seats are chosen
func NextStepAfterOutbound(state *models.BookingState) models.BookingStep {
	if state.SearchCriteria.IsRoundTrip() {
		return models.StepReturnResults
	}
	return models.StepReview
}
