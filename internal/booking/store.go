package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/seatmap"
)

// Storage persists serialized booking state per session.
// Load returns nil data when nothing was saved.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}

const persistTimeout = 2 * time.Second

// Store is the in-memory booking state of one session, mirrored to Storage on every change
type Store struct {
	mu        sync.Mutex
	sessionID string
	storage   Storage
	state     models.BookingState
}

// NewStore creates a store for a session. The saved state is loaded before the
// store is returned, so no write can overwrite it with the empty default.
// A load failure returns an error and no store; a corrupt saved state yields the empty state.
func NewStore(ctx context.Context, sessionID string, storage Storage) (*Store, error) {
	s := &Store{
		sessionID: sessionID,
		storage:   storage,
		state:     InitialState(),
	}
	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// InitialState returns the empty booking state
func InitialState() models.BookingState {
	return models.BookingState{
		OutboundFlight: emptyLeg(nil),
		CurrentStep:    models.StepSearch,
	}
}

func emptyLeg(criteria *models.SearchCriteria) models.FlightLegSelection {
	return models.FlightLegSelection{
		SelectedSeats:   []string{},
		SelectedLuggage: defaultLuggage(criteria),
	}
}

func defaultLuggage(criteria *models.SearchCriteria) []string {
	cabin := models.CabinEconomy
	if criteria != nil && criteria.TravelClass.IsValid() {
		cabin = criteria.TravelClass
	}
	return seatmap.IncludedLuggage(cabin)
}

func (s *Store) rehydrate(ctx context.Context) error {
	data, err := s.storage.Load(ctx, s.sessionID)
	if err != nil {
		return fmt.Errorf("failed to load booking state for session %s: %w", s.sessionID, err)
	}
	if data == nil {
		return nil
	}

	var state models.BookingState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("Discarding corrupt booking state for session %s: %v", s.sessionID, err)
		return nil
	}
	if state.OutboundFlight.SelectedSeats == nil {
		state.OutboundFlight.SelectedSeats = []string{}
	}
	if state.OutboundFlight.SelectedLuggage == nil {
		state.OutboundFlight.SelectedLuggage = defaultLuggage(state.SearchCriteria)
	}
	if state.CurrentStep == "" {
		state.CurrentStep = models.StepSearch
	}
	s.state = state
	log.Printf("Restored booking state for session %s at step %s", s.sessionID, state.CurrentStep)
	return nil
}

// persist writes the whole state. Failures are logged and the in-memory state is kept.
// Callers hold s.mu.
func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("Failed to serialize booking state for session %s: %v", s.sessionID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Save(ctx, s.sessionID, data); err != nil {
		log.Printf("Failed to save booking state for session %s: %v", s.sessionID, err)
	}
}

func (s *Store) mutate(fn func(state *models.BookingState) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn(&s.state) {
		s.persist()
	}
}

// SessionID returns the session the store belongs to
func (s *Store) SessionID() string {
	return s.sessionID
}

// State returns a deep copy of the current state
func (s *Store) State() models.BookingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// SetSearchCriteria replaces the criteria. A round trip gets an empty return leg, a one-way trip none.
func (s *Store) SetSearchCriteria(criteria models.SearchCriteria) {
	s.mutate(func(state *models.BookingState) bool {
		c := criteria
		state.SearchCriteria = &c
		state.ReturnFlight = nil
		normalizeTrip(state)
		return true
	})
}

// UpdateSearchCriteria merges a partial update into the current criteria. No-op without criteria.
// Switching to one-way drops the return leg and date; switching to a round trip adds an empty return leg.
func (s *Store) UpdateSearchCriteria(patch models.SearchCriteriaPatch) {
	s.mutate(func(state *models.BookingState) bool {
		if state.SearchCriteria == nil {
			return false
		}
		merged := patch.Apply(*state.SearchCriteria)
		state.SearchCriteria = &merged
		normalizeTrip(state)
		return true
	})
}

// normalizeTrip keeps the return leg present iff the trip is a round trip
func normalizeTrip(state *models.BookingState) {
	if !state.SearchCriteria.IsRoundTrip() {
		if state.SearchCriteria != nil {
			state.SearchCriteria.ReturnDate = ""
		}
		state.ReturnFlight = nil
		state.ReturnSearchResults = nil
		return
	}
	if state.ReturnFlight == nil {
		leg := emptyLeg(state.SearchCriteria)
		state.ReturnFlight = &leg
	}
}

// SelectOutboundFlight picks the outbound flight with a fresh seat and luggage selection.
// Any return choice is invalidated.
func (s *Store) SelectOutboundFlight(flight models.Flight, rawOffer models.ProviderOffer) {
	s.mutate(func(state *models.BookingState) bool {
		leg := emptyLeg(state.SearchCriteria)
		f := flight
		leg.Flight = &f
		leg.RawOffer = rawOffer
		state.OutboundFlight = leg

		if state.SearchCriteria.IsRoundTrip() {
			ret := emptyLeg(state.SearchCriteria)
			state.ReturnFlight = &ret
		} else {
			state.ReturnFlight = nil
		}
		return true
	})
}

// SelectReturnFlight picks the return flight. No-op unless a round-trip return leg exists.
func (s *Store) SelectReturnFlight(flight models.Flight, rawOffer models.ProviderOffer) {
	s.mutate(func(state *models.BookingState) bool {
		if !state.SearchCriteria.IsRoundTrip() || state.ReturnFlight == nil {
			return false
		}
		leg := emptyLeg(state.SearchCriteria)
		f := flight
		leg.Flight = &f
		leg.RawOffer = rawOffer
		state.ReturnFlight = &leg
		return true
	})
}

// UpdateOutboundSeats overwrites the outbound seats, luggage and extras price
func (s *Store) UpdateOutboundSeats(seats, luggage []string, extrasPrice float64) {
	s.mutate(func(state *models.BookingState) bool {
		state.OutboundFlight.SelectedSeats = copyIDs(seats)
		state.OutboundFlight.SelectedLuggage = copyIDs(luggage)
		state.OutboundFlight.ExtrasPrice = extrasPrice
		return true
	})
}

// UpdateReturnSeats overwrites the return seats, luggage and extras price. No-op without a return leg.
func (s *Store) UpdateReturnSeats(seats, luggage []string, extrasPrice float64) {
	s.mutate(func(state *models.BookingState) bool {
		if state.ReturnFlight == nil {
			return false
		}
		state.ReturnFlight.SelectedSeats = copyIDs(seats)
		state.ReturnFlight.SelectedLuggage = copyIDs(luggage)
		state.ReturnFlight.ExtrasPrice = extrasPrice
		return true
	})
}

// SetOutboundSearchResults caches the outbound flights and their raw offers
func (s *Store) SetOutboundSearchResults(flights []models.Flight, rawOffers map[string]models.ProviderOffer) {
	s.mutate(func(state *models.BookingState) bool {
		state.OutboundSearchResults = &models.SearchResult{Flights: flights, RawOffers: rawOffers}
		return true
	})
}

// SetReturnSearchResults caches the return flights and their raw offers
func (s *Store) SetReturnSearchResults(flights []models.Flight, rawOffers map[string]models.ProviderOffer) {
	s.mutate(func(state *models.BookingState) bool {
		state.ReturnSearchResults = &models.SearchResult{Flights: flights, RawOffers: rawOffers}
		return true
	})
}

// SetCurrentStep records the step the user is on
func (s *Store) SetCurrentStep(step models.BookingStep) {
	s.mutate(func(state *models.BookingState) bool {
		if state.CurrentStep == step {
			return false
		}
		state.CurrentStep = step
		return true
	})
}

// SetBookingReference records the reference issued on confirmation
func (s *Store) SetBookingReference(ref string) {
	s.mutate(func(state *models.BookingState) bool {
		state.BookingReference = ref
		state.CurrentStep = models.StepConfirmed
		return true
	})
}

// ResetBooking restores the empty state and clears the saved copy
func (s *Store) ResetBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = InitialState()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		log.Printf("Failed to clear booking state for session %s: %v", s.sessionID, err)
	}
}

// CanProceedToReturn reports whether the outbound leg has a flight and a seat on a round trip
func (s *Store) CanProceedToReturn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CanProceedToReturn(&s.state)
}

// CanProceedToReview reports whether every leg the trip needs has a flight and a seat
func (s *Store) CanProceedToReview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CanProceedToReview(&s.state)
}

// CanProceedToReturn reports whether the outbound leg has a flight and a seat on a round trip
func CanProceedToReturn(state *models.BookingState) bool {
	return state.OutboundFlight.Ready() && state.SearchCriteria.IsRoundTrip()
}

// CanProceedToReview reports whether every leg the trip needs has a flight and a seat
func CanProceedToReview(state *models.BookingState) bool {
	if !state.OutboundFlight.Ready() {
		return false
	}
	if !state.SearchCriteria.IsRoundTrip() {
		return true
	}
	return state.ReturnFlight.Ready()
}

func copyIDs(ids []string) []string {
	return append([]string{}, ids...)
}

func cloneState(state models.BookingState) models.BookingState {
	c := state
	if state.SearchCriteria != nil {
		sc := *state.SearchCriteria
		if sc.Origin != nil {
			origin := *sc.Origin
			sc.Origin = &origin
		}
		if sc.Destination != nil {
			destination := *sc.Destination
			sc.Destination = &destination
		}
		c.SearchCriteria = &sc
	}
	c.OutboundFlight = *state.OutboundFlight.Clone()
	c.ReturnFlight = state.ReturnFlight.Clone()
	c.OutboundSearchResults = cloneResults(state.OutboundSearchResults)
	c.ReturnSearchResults = cloneResults(state.ReturnSearchResults)
	return c
}

func cloneResults(r *models.SearchResult) *models.SearchResult {
	if r == nil {
		return nil
	}
	c := &models.SearchResult{
		Flights:   append([]models.Flight{}, r.Flights...),
		RawOffers: make(map[string]models.ProviderOffer, len(r.RawOffers)),
	}
	for k, v := range r.RawOffers {
		c.RawOffers[k] = v
	}
	return c
}
