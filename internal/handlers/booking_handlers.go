package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"flights_booking_frontend/internal/booking"
	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/services"
)

// BookingFlow is the booking flow the handlers drive
type BookingFlow interface {
	State(ctx context.Context, sessionID string) (models.BookingState, error)
	Reset(ctx context.Context, sessionID string) error
	EnterSearch(ctx context.Context, sessionID string) (models.BookingState, error)
	SetSearch(ctx context.Context, sessionID string, criteria models.SearchCriteria) (models.BookingState, error)
	PatchSearch(ctx context.Context, sessionID string, patch models.SearchCriteriaPatch) (models.BookingState, error)
	Results(ctx context.Context, sessionID string, leg services.Leg, view models.ResultView) (*services.FlightResults, error)
	SelectFlight(ctx context.Context, sessionID string, leg services.Leg, flightID string) (models.BookingState, error)
	SeatMap(ctx context.Context, sessionID string, leg services.Leg, segmentIndex int) (*services.SeatMapView, error)
	UpdateSeats(ctx context.Context, sessionID string, leg services.Leg, req services.SeatsRequest) (models.BookingStep, error)
	Review(ctx context.Context, sessionID string) (*services.ReviewView, error)
	Confirm(ctx context.Context, sessionID string) (*models.BookingSummary, error)
	ThankYou(ctx context.Context, sessionID, ref string) (*models.BookingSummary, error)
}

// NextResponse points the client to the screen that follows
type NextResponse struct {
	Next  string              `json:"next"`
	State *models.BookingState `json:"state,omitempty"`
}

// ConfirmResponse is returned once a booking is confirmed
type ConfirmResponse struct {
	BookingReference string `json:"bookingReference"`
	Redirect         string `json:"redirect"`
}

// BookingHandlers handles the search, review and confirmation screens
type BookingHandlers struct {
	flow    BookingFlow
	timeout time.Duration
}

// NewBookingHandlers creates new booking handlers
func NewBookingHandlers(flow BookingFlow, timeout time.Duration) *BookingHandlers {
	return &BookingHandlers{
		flow:    flow,
		timeout: timeout,
	}
}

// GetBooking returns the booking of the session
func (bh *BookingHandlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	state, err := bh.flow.State(ctx, SessionID(r))
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ResetBooking starts over
func (bh *BookingHandlers) ResetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	if err := bh.flow.Reset(ctx, SessionID(r)); err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSearch shows the search screen with the current criteria
func (bh *BookingHandlers) GetSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	state, err := bh.flow.EnterSearch(ctx, SessionID(r))
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SetSearch submits the search form
func (bh *BookingHandlers) SetSearch(w http.ResponseWriter, r *http.Request) {
	var criteria models.SearchCriteria
	if err := decodeBody(r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	state, err := bh.flow.SetSearch(ctx, SessionID(r), criteria)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{Next: booking.StepRoute(models.StepOutboundResults), State: &state})
}

// PatchSearch updates part of the search form
func (bh *BookingHandlers) PatchSearch(w http.ResponseWriter, r *http.Request) {
	var patch models.SearchCriteriaPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	state, err := bh.flow.PatchSearch(ctx, SessionID(r), patch)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Review shows the review screen
func (bh *BookingHandlers) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	review, err := bh.flow.Review(ctx, SessionID(r))
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Confirm confirms the booking
func (bh *BookingHandlers) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	summary, err := bh.flow.Confirm(ctx, SessionID(r))
	if err != nil {
		log.Printf("Booking confirmation failed: %v", err)
		writeServiceError(w, err, booking.StepRoute(models.StepReview))
		return
	}

	redirect := booking.StepRoute(models.StepConfirmed) + "?ref=" + url.QueryEscape(summary.BookingReference)
	writeJSON(w, http.StatusCreated, ConfirmResponse{BookingReference: summary.BookingReference, Redirect: redirect})
}

// ThankYou shows the confirmation screen once
func (bh *BookingHandlers) ThankYou(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.timeout)
	defer cancel()

	summary, err := bh.flow.ThankYou(ctx, SessionID(r), r.URL.Query().Get("ref"))
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
