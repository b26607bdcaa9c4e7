package seatmap

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_booking_frontend/internal/models"
)

func providerSeat(cabin, number, status, total string, codes ...string) models.ProviderSeat {
	pricing := models.ProviderTravelerPricing{TravelerID: "1", SeatAvailabilityStatus: status}
	if total != "" {
		pricing.Price = &models.ProviderSeatPrice{Currency: "USD", Total: total}
	}
	return models.ProviderSeat{
		Cabin:                cabin,
		Number:               number,
		CharacteristicsCodes: codes,
		TravelerPricing:      []models.ProviderTravelerPricing{pricing},
	}
}

func sampleSeatMapResponse() *models.ProviderSeatMapResponse {
	return &models.ProviderSeatMapResponse{
		Data: []models.ProviderSeatMapData{
			{
				Decks: []models.ProviderDeck{
					{
						DeckType: "MAIN",
						Seats: []models.ProviderSeat{
							providerSeat("ECONOMY", "12A", models.SeatStatusAvailable, "18.50", "W", "1A"),
							providerSeat("ECONOMY", "12C", models.SeatStatusOccupied, "", "A"),
							providerSeat("ECONOMY", "12D", models.SeatStatusBlocked, "", "A", "RS"),
							providerSeat("ECONOMY", "11B", models.SeatStatusAvailable, "9"),
							providerSeat("BUSINESS", "2A", models.SeatStatusAvailable, "80", "W"),
							providerSeat("ECONOMY", "GALLEY", models.SeatStatusAvailable, ""),
							{Cabin: "ECONOMY", Number: "13F"},
						},
					},
				},
			},
		},
	}
}

func TestTransformSeatMap(t *testing.T) {
	seats := TransformSeatMap(sampleSeatMapResponse(), models.CabinEconomy)
	require.Len(t, seats, 5)

	window := seats[0]
	assert.Equal(t, "12A", window.ID)
	assert.Equal(t, 12, window.Row)
	assert.Equal(t, "A", window.Column)
	assert.True(t, window.IsAvailable)
	assert.False(t, window.IsBooked)
	assert.True(t, window.IsWindow)
	assert.True(t, window.IsExitRow)
	assert.Equal(t, 18.5, window.Price)
	assert.Equal(t, "USD", window.Currency)

	occupied := seats[1]
	assert.True(t, occupied.IsBooked)
	assert.False(t, occupied.IsAvailable)
	assert.True(t, occupied.IsAisle)
	assert.Equal(t, "EUR", occupied.Currency)

	blocked := seats[2]
	assert.False(t, blocked.IsBooked)
	assert.False(t, blocked.IsAvailable)
	assert.True(t, blocked.HasRestrictedRecline)

	// no traveler pricing means blocked
	noPricing := seats[4]
	assert.Equal(t, "13F", noPricing.ID)
	assert.False(t, noPricing.IsAvailable)
	assert.False(t, noPricing.Selectable())
}

func TestTransformSeatMapEmpty(t *testing.T) {
	assert.Empty(t, TransformSeatMap(nil, models.CabinEconomy))
	assert.Empty(t, TransformSeatMap(&models.ProviderSeatMapResponse{}, models.CabinEconomy))
	assert.Len(t, TransformSeatMap(sampleSeatMapResponse(), ""), 6)
}

func TestGridDimensions(t *testing.T) {
	seats := []models.Seat{
		{Row: 3, Column: "D"}, {Row: 1, Column: "A"}, {Row: 2, Column: "B"},
		{Row: 1, Column: "C"}, {Row: 1, Column: "E"}, {Row: 1, Column: "H"},
	}
	rows, columns, aisles := GridDimensions(seats)
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "H"}, columns)
	assert.Equal(t, []int{5}, aisles)

	rows, columns, aisles = GridDimensions(nil)
	assert.Zero(t, rows)
	assert.Empty(t, columns)
	assert.Empty(t, aisles)
}

func TestBuildSeatMapSortsSeats(t *testing.T) {
	sm := BuildSeatMap(TransformSeatMap(sampleSeatMapResponse(), models.CabinEconomy))
	ids := make([]string, 0, len(sm.Seats))
	for _, s := range sm.Seats {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"11B", "12A", "12C", "12D", "13F"}, ids)
	assert.Equal(t, 13, sm.Rows)
}

func sampleUpsellResponse() *models.ProviderUpsellResponse {
	return &models.ProviderUpsellResponse{
		Data: []models.ProviderUpsellOffer{
			{
				ID: "1",
				TravelerPricings: []models.ProviderUpsellTravelerPricing{
					{FareDetailsBySegment: []models.ProviderFareDetails{{Cabin: "ECONOMY"}}},
				},
			},
			{
				ID: "2",
				Price: models.ProviderUpsellPrice{
					Currency: "EUR",
					AdditionalServices: []models.ProviderAdditionalService{
						{Type: "SEATS", Amount: "12"},
						{Type: models.ServiceCheckedBags, Amount: "40"},
					},
				},
				TravelerPricings: []models.ProviderUpsellTravelerPricing{
					{FareDetailsBySegment: []models.ProviderFareDetails{{
						Cabin:               "BUSINESS",
						IncludedCheckedBags: &models.ProviderIncludedBags{Quantity: 2, Weight: 32, WeightUnit: "KG"},
					}}},
				},
			},
		},
	}
}

func TestTransformUpsell(t *testing.T) {
	options := TransformUpsell(sampleUpsellResponse(), models.CabinBusiness)
	require.Len(t, options, 4)
	assert.Equal(t, models.LuggageOption{ID: "standard", Label: "Standard Luggage", Weight: "32KG", Included: true}, options[0])
	assert.Equal(t, CabinBagID, options[1].ID)
	assert.Equal(t, 40.0, options[2].Price)
	assert.Equal(t, 60.0, options[3].Price)
	assert.False(t, options[3].Included)
}

func TestTransformUpsellFallsBackToFirstOffer(t *testing.T) {
	options := TransformUpsell(sampleUpsellResponse(), models.CabinFirst)
	require.Len(t, options, 1)
	assert.Equal(t, CabinBagID, options[0].ID)

	assert.Empty(t, TransformUpsell(nil, models.CabinEconomy))
}

type stubInventory struct {
	seatMap *models.ProviderSeatMapResponse
	upsell  *models.ProviderUpsellResponse
	err     error
}

func (s *stubInventory) SeatMap(_ context.Context, _ models.ProviderOffer) (*models.ProviderSeatMapResponse, error) {
	return s.seatMap, s.err
}

func (s *stubInventory) Upsell(_ context.Context, _ models.ProviderOffer) (*models.ProviderUpsellResponse, error) {
	return s.upsell, s.err
}

var validOffer = json.RawMessage(`{"id":"1","itineraries":[],"travelerPricings":[]}`)

func TestInventoryProvider(t *testing.T) {
	p := NewInventoryProvider(&stubInventory{seatMap: sampleSeatMapResponse(), upsell: sampleUpsellResponse()})
	req := Request{Flight: testFlight("F1", "A320", 400, 10), RawOffer: validOffer, Cabin: models.CabinEconomy}

	sm, err := p.SeatMap(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, sm.Seats, 5)
	assert.Equal(t, 13, sm.Rows)

	luggage, err := p.Luggage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, CabinBagID, luggage[0].ID)

	_, err = p.SeatMap(context.Background(), Request{Cabin: models.CabinEconomy})
	assert.ErrorIs(t, err, models.ErrInvalidOffer)
}

func TestFallbackProvider(t *testing.T) {
	req := Request{Flight: testFlight("F1", "A320", 400, 150), RawOffer: validOffer, Cabin: models.CabinEconomy}

	failing := NewFallbackProvider(NewInventoryProvider(&stubInventory{err: errors.New("upstream down")}), NewGenerator())
	sm, err := failing.SeatMap(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, sm.Seats, 150)

	luggage, err := failing.Luggage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, LuggageOptions(models.CabinEconomy), luggage)

	// an empty provider cabin also degrades to the generator
	empty := NewFallbackProvider(NewInventoryProvider(&stubInventory{seatMap: &models.ProviderSeatMapResponse{}}), NewGenerator())
	sm, err = empty.SeatMap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Airbus A320", sm.Aircraft)

	working := NewFallbackProvider(NewInventoryProvider(&stubInventory{seatMap: sampleSeatMapResponse()}), NewGenerator())
	sm, err = working.SeatMap(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, sm.Seats, 5)
}
