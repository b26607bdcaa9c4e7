package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"flights_booking_frontend/internal/booking"
	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/services"
)

// AirportLookup finds airports for the search form
type AirportLookup interface {
	SearchAirports(ctx context.Context, clientKey, keyword string) ([]models.Airport, error)
}

// SelectFlightRequest picks a flight of the last results
type SelectFlightRequest struct {
	FlightID string `json:"flightId"`
}

// FlightHandlers handles the airport lookup and the per-leg flight screens
type FlightHandlers struct {
	flow     BookingFlow
	airports AirportLookup
	timeout  time.Duration
}

// NewFlightHandlers creates new flight handlers
func NewFlightHandlers(flow BookingFlow, airports AirportLookup, timeout time.Duration) *FlightHandlers {
	return &FlightHandlers{
		flow:     flow,
		airports: airports,
		timeout:  timeout,
	}
}

func legFromRequest(r *http.Request) services.Leg {
	return services.Leg(mux.Vars(r)["leg"])
}

// SearchAirports handles airport lookups while the user types
func (fh *FlightHandlers) SearchAirports(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	ctx, cancel := context.WithTimeout(r.Context(), fh.timeout)
	defer cancel()

	airports, err := fh.airports.SearchAirports(ctx, SessionID(r), keyword)
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("Airport search error: %v", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Airport search failed", Retry: true})
		return
	}
	writeJSON(w, http.StatusOK, airports)
}

// Results lists the flights of a leg
func (fh *FlightHandlers) Results(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view := models.ResultView{
		SortBy:    query.Get("sortBy"),
		Stops:     query.Get("stops"),
		Departure: query.Get("departure"),
	}
	if !view.IsValid() {
		writeError(w, http.StatusBadRequest, "Invalid sortBy, stops or departure parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fh.timeout)
	defer cancel()

	results, err := fh.flow.Results(ctx, SessionID(r), legFromRequest(r), view)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(models.StepSearch))
		return
	}

	writeJSON(w, http.StatusOK, results)
	log.Printf("Flight results served: %d of %d flights", len(results.Flights), results.Total)
}

// SelectFlight picks a flight for a leg
func (fh *FlightHandlers) SelectFlight(w http.ResponseWriter, r *http.Request) {
	var req SelectFlightRequest
	if err := decodeBody(r, &req); err != nil || req.FlightID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fh.timeout)
	defer cancel()

	leg := legFromRequest(r)
	state, err := fh.flow.SelectFlight(ctx, SessionID(r), leg, req.FlightID)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(leg.ResultsStep()))
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{Next: booking.StepRoute(leg.SeatsStep()), State: &state})
}

// SeatMap shows the seat map and luggage options of a leg
func (fh *FlightHandlers) SeatMap(w http.ResponseWriter, r *http.Request) {
	segment := 0
	if s := r.URL.Query().Get("segment"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid segment parameter")
			return
		}
		segment = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), fh.timeout)
	defer cancel()

	leg := legFromRequest(r)
	view, err := fh.flow.SeatMap(ctx, SessionID(r), leg, segment)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(leg.ResultsStep()))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateSeats confirms the seats and luggage of a leg
func (fh *FlightHandlers) UpdateSeats(w http.ResponseWriter, r *http.Request) {
	var req services.SeatsRequest
	if err := decodeBody(r, &req); err != nil || req.SegmentIndex < 0 {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fh.timeout)
	defer cancel()

	leg := legFromRequest(r)
	next, err := fh.flow.UpdateSeats(ctx, SessionID(r), leg, req)
	if err != nil {
		writeServiceError(w, err, booking.StepRoute(leg.SeatsStep()))
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{Next: booking.StepRoute(next)})
}
