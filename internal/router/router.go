package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"flights_booking_frontend/internal/handlers"
)

const legPattern = "/flights/{leg:outbound|return}"

// SetupRouter creates and configures the HTTP router
func SetupRouter(bh *handlers.BookingHandlers, fh *handlers.FlightHandlers, sessionTTL time.Duration) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	app := r.NewRoute().Subrouter()
	app.Use(handlers.SessionMiddleware(sessionTTL))

	// API routes
	api := app.PathPrefix("/api").Subrouter()
	api.HandleFunc("/airports/search", fh.SearchAirports).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/booking", bh.GetBooking).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/booking", bh.ResetBooking).Methods(http.MethodDelete, http.MethodOptions)

	// Search
	app.HandleFunc("/search", bh.GetSearch).Methods(http.MethodGet, http.MethodOptions)
	app.HandleFunc("/search", bh.SetSearch).Methods(http.MethodPost, http.MethodOptions)
	app.HandleFunc("/search", bh.PatchSearch).Methods(http.MethodPatch, http.MethodOptions)

	// Outbound and return legs
	app.HandleFunc(legPattern, fh.Results).Methods(http.MethodGet, http.MethodOptions)
	app.HandleFunc(legPattern+"/select", fh.SelectFlight).Methods(http.MethodPost, http.MethodOptions)
	app.HandleFunc(legPattern+"/seatmap", fh.SeatMap).Methods(http.MethodGet, http.MethodOptions)
	app.HandleFunc(legPattern+"/seats", fh.UpdateSeats).Methods(http.MethodPut, http.MethodOptions)

	// Review and confirmation
	app.HandleFunc("/review", bh.Review).Methods(http.MethodGet, http.MethodOptions)
	app.HandleFunc("/review/confirm", bh.Confirm).Methods(http.MethodPost, http.MethodOptions)
	app.HandleFunc("/thank-you", bh.ThankYou).Methods(http.MethodGet, http.MethodOptions)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+handlers.SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Location, "+handlers.SessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
