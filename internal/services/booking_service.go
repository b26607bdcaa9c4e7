package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"flights_booking_frontend/internal/booking"
	"flights_booking_frontend/internal/database"
	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/seatmap"
)

// SummaryTTL is how long a confirmed booking summary waits to be picked up
const SummaryTTL = 30 * time.Minute

var (
	ErrSummaryNotFound = errors.New("booking summary not found")
	ErrUnknownLeg      = errors.New("unknown flight leg")
)

// Leg names one direction of the trip
type Leg string

const (
	LegOutbound Leg = "outbound"
	LegReturn   Leg = "return"
)

// IsValid checks if the leg is known
func (l Leg) IsValid() bool {
	return l == LegOutbound || l == LegReturn
}

// ResultsStep is the step listing the flights of the leg
func (l Leg) ResultsStep() models.BookingStep {
	if l == LegReturn {
		return models.StepReturnResults
	}
	return models.StepOutboundResults
}

// SeatsStep is the step choosing seats and luggage on the leg
func (l Leg) SeatsStep() models.BookingStep {
	if l == LegReturn {
		return models.StepReturnSeats
	}
	return models.StepOutboundSeats
}

// RedirectError is returned when a step is entered without its prerequisites
type RedirectError struct {
	Step models.BookingStep
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("booking step prerequisites missing, continue at %s", e.Route())
}

// Route is where the user should continue
func (e *RedirectError) Route() string {
	return booking.StepRoute(e.Step)
}

// FlightResults is one page of a results screen
type FlightResults struct {
	Leg     Leg                   `json:"leg"`
	Flights []models.Flight       `json:"flights"`
	Total   int                   `json:"total"`
	View    models.ResultView     `json:"view"`
	Search  models.SearchCriteria `json:"searchCriteria"`
}

// SeatMapView is everything the seat and luggage screen of a leg shows
type SeatMapView struct {
	Leg             Leg                    `json:"leg"`
	Flight          models.Flight          `json:"flight"`
	SeatMap         models.SeatMap         `json:"seatMap"`
	Luggage         []models.LuggageOption `json:"luggage"`
	Passengers      int                    `json:"passengers"`
	SelectedSeats   []string               `json:"selectedSeats"`
	SelectedLuggage []string               `json:"selectedLuggage"`
	ExtrasPrice     float64                `json:"extrasPrice"`
}

// SeatsRequest carries the seats and luggage chosen for a leg
type SeatsRequest struct {
	Seats        []string `json:"seats"`
	Luggage      []string `json:"luggage"`
	SegmentIndex int      `json:"segmentIndex"`
}

// ReviewView is the review screen
type ReviewView struct {
	SearchCriteria *models.SearchCriteria     `json:"searchCriteria"`
	Outbound       models.FlightLegSelection  `json:"outbound"`
	Return         *models.FlightLegSelection `json:"return,omitempty"`
	TotalPrice     float64                    `json:"totalPrice"`
	Currency       string                     `json:"currency"`
	CanConfirm     bool                       `json:"canConfirm"`
}

// BookingService drives the booking flow of each session over its store
type BookingService struct {
	sessions *booking.Manager
	flights  *FlightService
	seats    seatmap.Provider
	cache    *database.RedisClient
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(sessions *booking.Manager, flights *FlightService, seats seatmap.Provider, cache *database.RedisClient) *BookingService {
	return &BookingService{
		sessions: sessions,
		flights:  flights,
		seats:    seats,
		cache:    cache,
		now:      time.Now,
	}
}

func (bs *BookingService) store(ctx context.Context, sessionID string) (*booking.Store, error) {
	store, err := bs.sessions.Store(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open booking: %w", err)
	}
	return store, nil
}

func guard(step models.BookingStep, state *models.BookingState, ref string) error {
	if ok, redirect := booking.Guard(step, state, ref); !ok {
		return &RedirectError{Step: redirect}
	}
	return nil
}

// State returns the booking of the session
func (bs *BookingService) State(ctx context.Context, sessionID string) (models.BookingState, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return models.BookingState{}, err
	}
	return store.State(), nil
}

// Reset clears the booking of the session
func (bs *BookingService) Reset(ctx context.Context, sessionID string) error {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return err
	}
	store.ResetBooking()
	log.Printf("Booking reset for session %s", sessionID)
	return nil
}

// EnterSearch marks the search screen as current
func (bs *BookingService) EnterSearch(ctx context.Context, sessionID string) (models.BookingState, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return models.BookingState{}, err
	}
	store.SetCurrentStep(models.StepSearch)
	return store.State(), nil
}

// SetSearch validates and records new search criteria
func (bs *BookingService) SetSearch(ctx context.Context, sessionID string, criteria models.SearchCriteria) (models.BookingState, error) {
	if err := criteria.Validate(); err != nil {
		return models.BookingState{}, err
	}
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return models.BookingState{}, err
	}
	store.SetSearchCriteria(criteria)
	log.Printf("Search set for session %s: %s", sessionID, criteria.CacheKey())
	return store.State(), nil
}

// PatchSearch merges a partial update into the criteria. The merged criteria must stay valid.
func (bs *BookingService) PatchSearch(ctx context.Context, sessionID string, patch models.SearchCriteriaPatch) (models.BookingState, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return models.BookingState{}, err
	}
	state := store.State()
	if state.SearchCriteria == nil {
		return state, nil
	}
	merged := patch.Apply(*state.SearchCriteria)
	if err := merged.Validate(); err != nil {
		return models.BookingState{}, err
	}
	store.UpdateSearchCriteria(patch)
	return store.State(), nil
}

// Results searches the flights of a leg, records them on the session and returns the requested view
func (bs *BookingService) Results(ctx context.Context, sessionID string, leg Leg, view models.ResultView) (*FlightResults, error) {
	if !leg.IsValid() {
		return nil, ErrUnknownLeg
	}
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := store.State()
	if err := guard(leg.ResultsStep(), &state, ""); err != nil {
		return nil, err
	}
	store.SetCurrentStep(leg.ResultsStep())

	var result *models.SearchResult
	if leg == LegReturn {
		result, err = bs.flights.SearchReturn(ctx, sessionID, *state.SearchCriteria, func(r *models.SearchResult) {
			store.SetReturnSearchResults(r.Flights, r.RawOffers)
		})
	} else {
		result, err = bs.flights.SearchOutbound(ctx, sessionID, *state.SearchCriteria, func(r *models.SearchResult) {
			store.SetOutboundSearchResults(r.Flights, r.RawOffers)
		})
	}
	if err != nil {
		return nil, err
	}

	flights := view.Apply(result.Flights)
	return &FlightResults{
		Leg:     leg,
		Flights: flights,
		Total:   len(result.Flights),
		View:    view,
		Search:  *state.SearchCriteria,
	}, nil
}

// SelectFlight picks a flight of the last results of the leg
func (bs *BookingService) SelectFlight(ctx context.Context, sessionID string, leg Leg, flightID string) (models.BookingState, error) {
	if !leg.IsValid() {
		return models.BookingState{}, ErrUnknownLeg
	}
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return models.BookingState{}, err
	}
	state := store.State()
	if err := guard(leg.ResultsStep(), &state, ""); err != nil {
		return models.BookingState{}, err
	}

	results := state.OutboundSearchResults
	if leg == LegReturn {
		results = state.ReturnSearchResults
	}
	flight, offer, ok := findFlight(results, flightID)
	if !ok {
		return models.BookingState{}, fmt.Errorf("%w: %s", ErrFlightNotFound, flightID)
	}

	if leg == LegReturn {
		store.SelectReturnFlight(flight, offer)
	} else {
		store.SelectOutboundFlight(flight, offer)
	}
	store.SetCurrentStep(leg.SeatsStep())
	log.Printf("Session %s selected %s flight %s", sessionID, leg, flightID)
	return store.State(), nil
}

// SeatMap returns the seat map and luggage options of the selected flight of a leg
func (bs *BookingService) SeatMap(ctx context.Context, sessionID string, leg Leg, segmentIndex int) (*SeatMapView, error) {
	if !leg.IsValid() {
		return nil, ErrUnknownLeg
	}
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := store.State()
	if err := guard(leg.SeatsStep(), &state, ""); err != nil {
		return nil, err
	}
	store.SetCurrentStep(leg.SeatsStep())

	current := legSelection(&state, leg)
	seatMap, luggage, err := bs.loadSeats(ctx, &state, current, segmentIndex)
	if err != nil {
		return nil, err
	}

	selection := seatmap.NewSelection(seatMap, luggage, state.SearchCriteria.Passengers)
	selection.Seats = copyIDs(current.SelectedSeats)
	selection.SelectedLuggage = copyIDs(current.SelectedLuggage)
	extras := current.ExtrasPrice
	if released := selection.ReleaseUnavailable(); len(released) > 0 {
		extras = selection.ExtrasPrice()
		if leg == LegReturn {
			store.UpdateReturnSeats(selection.Seats, selection.SelectedLuggage, extras)
		} else {
			store.UpdateOutboundSeats(selection.Seats, selection.SelectedLuggage, extras)
		}
		log.Printf("Session %s lost seats %v on %s leg, no longer available", sessionID, released, leg)
	}

	return &SeatMapView{
		Leg:             leg,
		Flight:          *current.Flight,
		SeatMap:         seatMap,
		Luggage:         luggage,
		Passengers:      state.SearchCriteria.Passengers,
		SelectedSeats:   selection.Seats,
		SelectedLuggage: selection.SelectedLuggage,
		ExtrasPrice:     extras,
	}, nil
}

// UpdateSeats validates and records the seats and luggage of a leg. The extras price is
// computed here from the seat map, never taken from the client. It returns the next step.
func (bs *BookingService) UpdateSeats(ctx context.Context, sessionID string, leg Leg, req SeatsRequest) (models.BookingStep, error) {
	if !leg.IsValid() {
		return "", ErrUnknownLeg
	}
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return "", err
	}
	state := store.State()
	if err := guard(leg.SeatsStep(), &state, ""); err != nil {
		return "", err
	}

	selection := legSelection(&state, leg)
	seatMap, luggage, err := bs.loadSeats(ctx, &state, selection, req.SegmentIndex)
	if err != nil {
		return "", err
	}
	if err := seatmap.ValidateSelection(seatMap, luggage, state.SearchCriteria.Passengers, req.Seats, req.Luggage); err != nil {
		return "", err
	}
	extras := seatmap.ExtrasPrice(seatMap, luggage, req.Seats, req.Luggage)

	next := models.StepReview
	if leg == LegReturn {
		store.UpdateReturnSeats(req.Seats, req.Luggage, extras)
	} else {
		store.UpdateOutboundSeats(req.Seats, req.Luggage, extras)
		next = booking.NextStepAfterOutbound(&state)
	}
	log.Printf("Session %s chose %d seats on %s leg, extras %.2f", sessionID, len(req.Seats), leg, extras)
	return next, nil
}

func (bs *BookingService) loadSeats(ctx context.Context, state *models.BookingState, selection *models.FlightLegSelection, segmentIndex int) (models.SeatMap, []models.LuggageOption, error) {
	req := seatmap.Request{
		Flight:       *selection.Flight,
		RawOffer:     selection.RawOffer,
		Cabin:        state.SearchCriteria.TravelClass,
		SegmentIndex: segmentIndex,
	}
	seatMap, err := bs.seats.SeatMap(ctx, req)
	if err != nil {
		return models.SeatMap{}, nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	luggage, err := bs.seats.Luggage(ctx, req)
	if err != nil {
		return models.SeatMap{}, nil, fmt.Errorf("failed to load luggage options: %w", err)
	}
	return seatMap, luggage, nil
}

// Review returns the review screen of the booking
func (bs *BookingService) Review(ctx context.Context, sessionID string) (*ReviewView, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := store.State()
	if err := guard(models.StepReview, &state, ""); err != nil {
		return nil, err
	}
	store.SetCurrentStep(models.StepReview)

	currency := state.OutboundFlight.Flight.Currency
	if currency == "" {
		currency = seatmap.DefaultCurrency
	}
	return &ReviewView{
		SearchCriteria: state.SearchCriteria,
		Outbound:       state.OutboundFlight,
		Return:         state.ReturnFlight,
		TotalPrice:     booking.TotalPrice(&state),
		Currency:       currency,
		CanConfirm:     state.SearchCriteria != nil && booking.CanProceedToReview(&state),
	}, nil
}

// Confirm issues a booking reference and hands the summary over to the confirmation screen
func (bs *BookingService) Confirm(ctx context.Context, sessionID string) (*models.BookingSummary, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := store.State()
	if err := guard(models.StepReview, &state, ""); err != nil {
		return nil, err
	}

	ref := newBookingReference()
	summary, err := booking.BuildSummary(&state, ref, bs.now())
	if err != nil {
		return nil, err
	}
	if err := bs.cache.SetJSON(ctx, database.GenerateSummaryKey(sessionID, ref), summary, SummaryTTL); err != nil {
		return nil, fmt.Errorf("failed to store booking summary: %w", err)
	}
	store.SetBookingReference(ref)

	log.Printf("Booking %s confirmed for session %s, total %.2f %s", ref, sessionID, summary.TotalPrice, summary.Currency)
	return &summary, nil
}

// ThankYou hands out the summary of a confirmed booking once and starts a fresh booking.
// Only the session that confirmed the booking can read its summary.
func (bs *BookingService) ThankYou(ctx context.Context, sessionID, ref string) (*models.BookingSummary, error) {
	store, err := bs.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := store.State()
	if err := guard(models.StepConfirmed, &state, ref); err != nil {
		return nil, err
	}
	if state.BookingReference != ref {
		return nil, fmt.Errorf("%w: %s", ErrSummaryNotFound, ref)
	}

	var summary models.BookingSummary
	err = bs.cache.TakeJSON(ctx, database.GenerateSummaryKey(sessionID, ref), &summary)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrCacheMiss):
		// summary expired but the session still holds the booking
		summary, err = booking.BuildSummary(&state, ref, bs.now())
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to read booking summary: %w", err)
	}

	if summary.Version != models.BookingSummaryVersion {
		return nil, fmt.Errorf("%w: unsupported summary version %d", ErrSummaryNotFound, summary.Version)
	}

	store.ResetBooking()
	return &summary, nil
}

func legSelection(state *models.BookingState, leg Leg) *models.FlightLegSelection {
	if leg == LegReturn {
		return state.ReturnFlight
	}
	return &state.OutboundFlight
}

func copyIDs(ids []string) []string {
	return append([]string{}, ids...)
}

func findFlight(results *models.SearchResult, flightID string) (models.Flight, models.ProviderOffer, bool) {
	if results == nil {
		return models.Flight{}, nil, false
	}
	for _, f := range results.Flights {
		if f.ID == flightID {
			return f, results.RawOffers[flightID], true
		}
	}
	return models.Flight{}, nil, false
}

func newBookingReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK" + strings.ToUpper(id[:8])
}
