package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"flights_booking_frontend/internal/booking"
	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/seatmap"
	"flights_booking_frontend/internal/services"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry,omitempty"`
	Back  string `json:"back,omitempty"`
}

// RedirectResponse tells the client which screen to show instead
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeRedirect(w http.ResponseWriter, route string) {
	w.Header().Set("Location", route)
	writeJSON(w, http.StatusSeeOther, RedirectResponse{Redirect: route})
}

// writeServiceError maps a booking flow error to a response. back is the screen
// to return to when an upstream call failed.
func writeServiceError(w http.ResponseWriter, err error, back string) {
	var redirect *services.RedirectError
	switch {
	case errors.As(err, &redirect):
		writeRedirect(w, redirect.Route())
	case errors.Is(err, models.ErrInvalidCriteria), errors.Is(err, seatmap.ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnknownLeg), errors.Is(err, services.ErrFlightNotFound),
		errors.Is(err, services.ErrSummaryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrIncompleteBooking), errors.Is(err, services.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("Request timed out: %v", err)
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out", Retry: true, Back: back})
	default:
		log.Printf("Upstream error: %v", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Retry: true, Back: back})
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
