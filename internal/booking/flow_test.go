package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_booking_frontend/internal/models"
)

func TestGuard(t *testing.T) {
	withOutbound := func(criteria *models.SearchCriteria) *models.BookingState {
		state := InitialState()
		state.SearchCriteria = criteria
		f := flight("OUT-1", 200)
		state.OutboundFlight.Flight = &f
		return &state
	}
	rt := roundTrip(1)
	ow := oneWay(1)
	empty := InitialState()

	withReturn := withOutbound(&rt)
	r := flight("RET-1", 180)
	withReturn.ReturnFlight = &models.FlightLegSelection{Flight: &r}

	tests := []struct {
		name     string
		step     models.BookingStep
		state    *models.BookingState
		ref      string
		allowed  bool
		redirect models.BookingStep
	}{
		{name: "search always allowed", step: models.StepSearch, state: &empty, allowed: true, redirect: models.StepSearch},
		{name: "outbound needs criteria", step: models.StepOutboundResults, state: &empty, redirect: models.StepSearch},
		{name: "outbound with criteria", step: models.StepOutboundResults, state: withOutbound(&ow), allowed: true, redirect: models.StepOutboundResults},
		{name: "outbound seats need flight", step: models.StepOutboundSeats, state: &models.BookingState{SearchCriteria: &ow}, redirect: models.StepOutboundResults},
		{name: "return needs outbound flight", step: models.StepReturnResults, state: &models.BookingState{SearchCriteria: &rt}, redirect: models.StepOutboundResults},
		{name: "return needs return date", step: models.StepReturnResults, state: withOutbound(&ow), redirect: models.StepSearch},
		{name: "return allowed", step: models.StepReturnResults, state: withOutbound(&rt), allowed: true, redirect: models.StepReturnResults},
		{name: "return seats need return flight", step: models.StepReturnSeats, state: withOutbound(&rt), redirect: models.StepReturnResults},
		{name: "return seats allowed", step: models.StepReturnSeats, state: withReturn, allowed: true, redirect: models.StepReturnSeats},
		{name: "review needs outbound flight", step: models.StepReview, state: &empty, redirect: models.StepSearch},
		{name: "review allowed", step: models.StepReview, state: withOutbound(&ow), allowed: true, redirect: models.StepReview},
		{name: "confirmation needs reference", step: models.StepConfirmed, state: withOutbound(&ow), redirect: models.StepSearch},
		{name: "confirmation needs outbound", step: models.StepConfirmed, state: &empty, ref: "BK1234ABCD", redirect: models.StepSearch},
		{name: "confirmation allowed", step: models.StepConfirmed, state: withOutbound(&ow), ref: "BK1234ABCD", allowed: true, redirect: models.StepConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, redirect := Guard(tt.step, tt.state, tt.ref)
			assert.Equal(t, tt.allowed, allowed)
			assert.Equal(t, tt.redirect, redirect)
		})
	}
}

func TestStepRoute(t *testing.T) {
	assert.Equal(t, "/search", StepRoute(models.StepSearch))
	assert.Equal(t, "/flights/outbound", StepRoute(models.StepOutboundResults))
	assert.Equal(t, "/flights/return", StepRoute(models.StepReturnResults))
	assert.Equal(t, "/review", StepRoute(models.StepReview))
	assert.Equal(t, "/thank-you", StepRoute(models.StepConfirmed))
	assert.Equal(t, "/search", StepRoute("unknown"))
}

func TestNextStepAfterOutbound(t *testing.T) {
	rt, ow := roundTrip(1), oneWay(1)
	assert.Equal(t, models.StepReturnResults, NextStepAfterOutbound(&models.BookingState{SearchCriteria: &rt}))
	assert.Equal(t, models.StepReview, NextStepAfterOutbound(&models.BookingState{SearchCriteria: &ow}))
}

func TestRoundTripTotalScenario(t *testing.T) {
	store := openStore(t, "s", NewMemoryStorage())
	store.SetSearchCriteria(roundTrip(2))

	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	store.UpdateOutboundSeats([]string{"12A", "12B"}, []string{"standard-1", "cabin"}, 0)
	require.True(t, store.CanProceedToReturn())

	store.SelectReturnFlight(flight("RET-1", 180), nil)
	store.UpdateReturnSeats([]string{"14C", "14D"}, []string{"standard-1", "cabin", "extra1"}, 45)
	require.True(t, store.CanProceedToReview())

	state := store.State()
	assert.Equal(t, 0.0, state.OutboundFlight.ExtrasPrice)
	assert.Equal(t, 45.0, state.ReturnFlight.ExtrasPrice)
	assert.Equal(t, 425.0, TotalPrice(&state))
}

func TestOneWayTotal(t *testing.T) {
	store := openStore(t, "s", NewMemoryStorage())
	store.SetSearchCriteria(oneWay(1))
	store.SelectOutboundFlight(flight("OUT-1", 310), nil)
	store.UpdateOutboundSeats([]string{"3A"}, []string{"standard-1", "cabin", "extra2"}, 80)

	state := store.State()
	assert.Equal(t, 390.0, TotalPrice(&state))
}

func TestBuildSummary(t *testing.T) {
	store := openStore(t, "s", NewMemoryStorage())
	store.SetSearchCriteria(roundTrip(1))
	store.SelectOutboundFlight(flight("OUT-1", 200), nil)
	store.UpdateOutboundSeats([]string{"12A"}, []string{"standard-1", "cabin"}, 12)

	state := store.State()
	_, err := BuildSummary(&state, "BK00000001", time.Now())
	assert.ErrorIs(t, err, ErrIncompleteBooking)

	store.SelectReturnFlight(flight("RET-1", 180), nil)
	store.UpdateReturnSeats([]string{"14C"}, []string{"standard-1", "cabin"}, 0)
	state = store.State()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	summary, err := BuildSummary(&state, "BK00000001", now)
	require.NoError(t, err)

	assert.Equal(t, models.BookingSummaryVersion, summary.Version)
	assert.Equal(t, "BK00000001", summary.BookingReference)
	assert.Equal(t, now, summary.CreatedAt)
	assert.Equal(t, "OUT-1", summary.Outbound.Flight.ID)
	assert.Equal(t, []string{"12A"}, summary.Outbound.Seats)
	require.NotNil(t, summary.Return)
	assert.Equal(t, "RET-1", summary.Return.Flight.ID)
	assert.Equal(t, 392.0, summary.TotalPrice)
	assert.Equal(t, "EUR", summary.Currency)
}

func TestBuildSummaryOneWay(t *testing.T) {
	store := openStore(t, "s", NewMemoryStorage())
	store.SetSearchCriteria(oneWay(1))
	store.SelectOutboundFlight(models.Flight{ID: "OUT-1", Price: 99}, nil)
	store.UpdateOutboundSeats([]string{"1A"}, nil, 0)

	state := store.State()
	summary, err := BuildSummary(&state, "BK1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, summary.Return)
	assert.Equal(t, "EUR", summary.Currency)
	assert.Equal(t, 99.0, summary.TotalPrice)
}
