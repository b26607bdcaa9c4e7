package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_booking_frontend/internal/models"
)

var (
	cdg = &models.Airport{IATACode: "CDG", Name: "Charles de Gaulle", CityName: "Paris", CountryName: "France"}
	lhr = &models.Airport{IATACode: "LHR", Name: "Heathrow", CityName: "London", CountryName: "United Kingdom"}
)

func roundTrip(passengers int) models.SearchCriteria {
	return models.SearchCriteria{
		TripType:      models.TripTypeRoundTrip,
		Origin:        cdg,
		Destination:   lhr,
		DepartureDate: "2026-11-02",
		ReturnDate:    "2026-11-09",
		Passengers:    passengers,
		TravelClass:   models.CabinEconomy,
	}
}

func oneWay(passengers int) models.SearchCriteria {
	c := roundTrip(passengers)
	c.TripType = models.TripTypeOneWay
	c.ReturnDate = ""
	return c
}

func flight(id string, price float64) models.Flight {
	return models.Flight{ID: id, Price: price, Currency: "EUR", Seats: 9}
}

// recordingStorage records the order of storage calls
type recordingStorage struct {
	mu      sync.Mutex
	inner   *MemoryStorage
	calls   []string
	loadErr error
	saveErr error
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{inner: NewMemoryStorage()}
}

func (r *recordingStorage) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	r.record("load")
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.inner.Load(ctx, sessionID)
}

func (r *recordingStorage) Save(ctx context.Context, sessionID string, data []byte) error {
	r.record("save")
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.inner.Save(ctx, sessionID, data)
}

func (r *recordingStorage) Delete(ctx context.Context, sessionID string) error {
	r.record("delete")
	return r.inner.Delete(ctx, sessionID)
}

func openStore(t *testing.T, sessionID string, storage Storage) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), sessionID, storage)
	require.NoError(t, err)
	return store
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	return openStore(t, "session-1", storage), storage
}

func TestInitialState(t *testing.T) {
	store, _ := newTestStore(t)
	state := store.State()

	assert.Nil(t, state.SearchCriteria)
	assert.Nil(t, state.ReturnFlight)
	assert.Nil(t, state.OutboundFlight.Flight)
	assert.Empty(t, state.OutboundFlight.SelectedSeats)
	assert.Equal(t, []string{"standard-1", "cabin"}, state.OutboundFlight.SelectedLuggage)
	assert.Equal(t, models.StepSearch, state.CurrentStep)
}

func TestSetSearchCriteriaReturnLeg(t *testing.T) {
	store, _ := newTestStore(t)

	store.SetSearchCriteria(roundTrip(2))
	state := store.State()
	require.NotNil(t, state.ReturnFlight)
	assert.Nil(t, state.ReturnFlight.Flight)
	assert.Empty(t, state.ReturnFlight.SelectedSeats)

	store.SetSearchCriteria(oneWay(1))
	assert.Nil(t, store.State().ReturnFlight)
}

func TestSetSearchCriteriaUsesCabinLuggage(t *testing.T) {
	store, _ := newTestStore(t)
	criteria := roundTrip(1)
	criteria.TravelClass = models.CabinBusiness
	store.SetSearchCriteria(criteria)

	assert.Equal(t, []string{"standard-1", "standard-2", "cabin"}, store.State().ReturnFlight.SelectedLuggage)
}

func TestUpdateSearchCriteria(t *testing.T) {
	store, _ := newTestStore(t)

	passengers := 3
	store.UpdateSearchCriteria(models.SearchCriteriaPatch{Passengers: &passengers})
	assert.Nil(t, store.State().SearchCriteria, "no-op without criteria")

	store.SetSearchCriteria(roundTrip(1))
	store.UpdateSearchCriteria(models.SearchCriteriaPatch{Passengers: &passengers})
	state := store.State()
	assert.Equal(t, 3, state.SearchCriteria.Passengers)
	assert.Equal(t, "CDG", state.SearchCriteria.Origin.IATACode)
}

func TestUpdateSearchCriteriaSwitchesTripType(t *testing.T) {
	store, _ := newTestStore(t)
	store.SetSearchCriteria(roundTrip(2))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	store.UpdateOutboundSeats([]string{"12A", "12B"}, []string{"standard-1", "cabin"}, 0)
	store.SelectReturnFlight(flight("RET-1", 180), nil)
	store.UpdateReturnSeats([]string{"14C", "14D"}, []string{"standard-1", "cabin", "extra1"}, 45)

	oneway := models.TripTypeOneWay
	store.UpdateSearchCriteria(models.SearchCriteriaPatch{TripType: &oneway})
	state := store.State()

	assert.Nil(t, state.ReturnFlight)
	assert.Empty(t, state.SearchCriteria.ReturnDate)
	assert.Equal(t, 200.0, TotalPrice(&state))
	ok, redirect := Guard(models.StepReturnResults, &state, "")
	assert.False(t, ok)
	assert.Equal(t, models.StepSearch, redirect)

	summary, err := BuildSummary(&state, "BK1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, summary.Return)
	assert.Equal(t, 200.0, summary.TotalPrice)

	roundtrip := models.TripTypeRoundTrip
	returnDate := "2026-11-12"
	store.UpdateSearchCriteria(models.SearchCriteriaPatch{TripType: &roundtrip, ReturnDate: &returnDate})
	state = store.State()
	require.NotNil(t, state.ReturnFlight)
	assert.Nil(t, state.ReturnFlight.Flight)
	assert.Equal(t, []string{"standard-1", "cabin"}, state.ReturnFlight.SelectedLuggage)
	assert.Equal(t, "OUT-1", state.OutboundFlight.Flight.ID, "outbound choice kept")
}

func TestTotalPriceIgnoresReturnLegOnOneWay(t *testing.T) {
	state := InitialState()
	criteria := oneWay(1)
	state.SearchCriteria = &criteria
	out, ret := flight("OUT-1", 120), flight("RET-1", 90)
	state.OutboundFlight.Flight = &out
	state.OutboundFlight.ExtrasPrice = 10
	state.ReturnFlight = &models.FlightLegSelection{Flight: &ret, ExtrasPrice: 30}

	assert.Equal(t, 130.0, TotalPrice(&state))
}

func TestSelectOutboundFlightResetsReturnLeg(t *testing.T) {
	store, _ := newTestStore(t)
	store.SetSearchCriteria(roundTrip(2))

	store.SelectOutboundFlight(flight("OUT-1", 200), json.RawMessage(`{"id":"OUT-1"}`))
	store.UpdateOutboundSeats([]string{"1A", "1B"}, []string{"standard-1", "cabin"}, 0)
	store.SelectReturnFlight(flight("RET-1", 180), nil)
	store.UpdateReturnSeats([]string{"2A", "2B"}, []string{"standard-1", "cabin", "extra1"}, 45)

	store.SelectOutboundFlight(flight("OUT-2", 210), nil)
	state := store.State()

	assert.Equal(t, "OUT-2", state.OutboundFlight.Flight.ID)
	assert.Empty(t, state.OutboundFlight.SelectedSeats)
	require.NotNil(t, state.ReturnFlight)
	assert.Nil(t, state.ReturnFlight.Flight)
	assert.Empty(t, state.ReturnFlight.SelectedSeats)
	assert.Equal(t, []string{"standard-1", "cabin"}, state.ReturnFlight.SelectedLuggage)
	assert.Zero(t, state.ReturnFlight.ExtrasPrice)
}

func TestReturnMutatorsAreGuarded(t *testing.T) {
	store, storage := newTestStore(t)
	store.SetSearchCriteria(oneWay(1))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	before, err := storage.Load(context.Background(), "session-1")
	require.NoError(t, err)

	store.SelectReturnFlight(flight("RET-1", 180), nil)
	store.UpdateReturnSeats([]string{"2A"}, nil, 10)

	assert.Nil(t, store.State().ReturnFlight)
	after, err := storage.Load(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCanProceed(t *testing.T) {
	store, _ := newTestStore(t)
	assert.False(t, store.CanProceedToReturn())
	assert.False(t, store.CanProceedToReview())

	store.SetSearchCriteria(roundTrip(1))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	assert.False(t, store.CanProceedToReturn())
	assert.False(t, store.CanProceedToReview())

	store.UpdateOutboundSeats([]string{"3C"}, []string{"standard-1", "cabin"}, 0)
	assert.True(t, store.CanProceedToReturn())
	assert.False(t, store.CanProceedToReview())

	store.SelectReturnFlight(flight("RET-1", 180), nil)
	assert.False(t, store.CanProceedToReview())
	store.UpdateReturnSeats([]string{"4D"}, []string{"standard-1", "cabin"}, 0)
	assert.True(t, store.CanProceedToReview())

	// outbound without seats blocks review whatever the trip type
	store.UpdateOutboundSeats(nil, []string{"standard-1", "cabin"}, 0)
	assert.False(t, store.CanProceedToReview())

	store.SetSearchCriteria(oneWay(1))
	assert.False(t, store.CanProceedToReturn())
	assert.False(t, store.CanProceedToReview())
	store.UpdateOutboundSeats([]string{"3C"}, nil, 0)
	assert.False(t, store.CanProceedToReturn())
	assert.True(t, store.CanProceedToReview())
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	store := openStore(t, "session-1", storage)
	store.SetSearchCriteria(roundTrip(2))
	store.SelectOutboundFlight(flight("OUT-1", 200), json.RawMessage(`{"id":"OUT-1"}`))
	store.UpdateOutboundSeats([]string{"1A", "1B"}, []string{"standard-1", "cabin"}, 24)
	store.SetOutboundSearchResults([]models.Flight{flight("OUT-1", 200)}, map[string]models.ProviderOffer{
		"OUT-1": json.RawMessage(`{"id":"OUT-1"}`),
	})
	store.SetCurrentStep(models.StepOutboundSeats)

	restored := openStore(t, "session-1", storage)
	assert.Equal(t, store.State(), restored.State())

	other := openStore(t, "session-2", storage)
	assert.Equal(t, InitialState(), other.State())
}

func TestRehydrateBeforeFirstWrite(t *testing.T) {
	storage := newRecordingStorage()
	first := openStore(t, "s", storage)
	first.SetSearchCriteria(roundTrip(1))

	storage.calls = nil
	second := openStore(t, "s", storage)
	second.SetCurrentStep(models.StepOutboundResults)

	assert.Equal(t, []string{"load", "save"}, storage.calls)
	state := second.State()
	require.NotNil(t, state.SearchCriteria, "saved criteria survived the first write")
	assert.Equal(t, "LHR", state.SearchCriteria.Destination.IATACode)
}

func TestRehydrateCorruptState(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "s", []byte(`{"searchCriteria": {`)))

	store := openStore(t, "s", storage)
	assert.Equal(t, InitialState(), store.State())
}

func TestRehydrateLoadError(t *testing.T) {
	storage := newRecordingStorage()
	saved := openStore(t, "s", storage)
	saved.SetSearchCriteria(roundTrip(1))

	storage.loadErr = errors.New("connection refused")
	store, err := NewStore(context.Background(), "s", storage)
	assert.ErrorIs(t, err, storage.loadErr)
	assert.Nil(t, store)

	storage.loadErr = nil
	restored := openStore(t, "s", storage)
	require.NotNil(t, restored.State().SearchCriteria, "saved booking kept after a failed load")
	assert.Equal(t, models.TripTypeRoundTrip, restored.State().SearchCriteria.TripType)
}

func TestSaveErrorKeepsMemoryState(t *testing.T) {
	storage := newRecordingStorage()
	storage.saveErr = errors.New("connection refused")

	store := openStore(t, "s", storage)
	store.SetSearchCriteria(oneWay(1))
	assert.NotNil(t, store.State().SearchCriteria)
}

func TestResetBooking(t *testing.T) {
	store, storage := newTestStore(t)
	store.SetSearchCriteria(roundTrip(1))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)

	store.ResetBooking()
	assert.Equal(t, InitialState(), store.State())

	data, err := storage.Load(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStateIsACopy(t *testing.T) {
	store, _ := newTestStore(t)
	store.SetSearchCriteria(roundTrip(1))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	store.UpdateOutboundSeats([]string{"1A"}, []string{"cabin"}, 0)

	state := store.State()
	state.OutboundFlight.SelectedSeats[0] = "9F"
	state.OutboundFlight.Flight.Price = 1
	state.SearchCriteria.Origin.IATACode = "JFK"

	fresh := store.State()
	assert.Equal(t, "1A", fresh.OutboundFlight.SelectedSeats[0])
	assert.Equal(t, 200.0, fresh.OutboundFlight.Flight.Price)
	assert.Equal(t, "CDG", fresh.SearchCriteria.Origin.IATACode)
}
