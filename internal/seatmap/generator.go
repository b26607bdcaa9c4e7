package seatmap

import (
	"context"
	"fmt"
	"math"
	"sort"

	"flights_booking_frontend/internal/models"
)

// Request identifies the seat map of one segment of a flight in one cabin
type Request struct {
	Flight       models.Flight
	RawOffer     models.ProviderOffer
	Cabin        models.CabinClass
	SegmentIndex int
}

// Provider supplies seat maps and luggage options. The deterministic Generator
// and the inventory-backed provider both satisfy it.
type Provider interface {
	SeatMap(ctx context.Context, req Request) (models.SeatMap, error)
	Luggage(ctx context.Context, req Request) ([]models.LuggageOption, error)
}

// DefaultCurrency is used when a flight carries no currency
const DefaultCurrency = "EUR"

// seat price as a share of the flight price, per cabin
var seatPriceShare = map[models.CabinClass]float64{
	models.CabinFirst:          0,
	models.CabinBusiness:       0.015,
	models.CabinPremiumEconomy: 0.02,
	models.CabinEconomy:        0.025,
}

// Generator produces reproducible seat maps without a reservation system.
// The same flight, segment and cabin always yield the same occupancy.
type Generator struct{}

// NewGenerator creates a new seat map generator
func NewGenerator() *Generator {
	return &Generator{}
}

// SeatMap builds the seat map of the requested segment and cabin. It never fails.
func (g *Generator) SeatMap(_ context.Context, req Request) (models.SeatMap, error) {
	return Generate(req.Flight, req.Cabin, req.SegmentIndex), nil
}

// Luggage returns the luggage table of the requested cabin
func (g *Generator) Luggage(_ context.Context, req Request) ([]models.LuggageOption, error) {
	return LuggageOptions(req.Cabin), nil
}

type rankedSeat struct {
	index int
	hash  int
}

// Generate builds the seat map for a flight segment and cabin
func Generate(flight models.Flight, cabin models.CabinClass, segmentIndex int) models.SeatMap {
	aircraftCode := ""
	available := flight.Seats
	if seg := flight.Segment(segmentIndex); seg != nil {
		aircraftCode = seg.AircraftCode
		if seg.AvailableSeats != nil {
			available = *seg.AvailableSeats
		}
	}

	aircraft := SelectAircraft(aircraftCode, flight.ID)
	rows, ok := aircraft.Cabins[cabin]
	if !ok || rows.Empty() {
		return models.SeatMap{
			Aircraft:       aircraft.Name,
			Seats:          []models.Seat{},
			Columns:        []string{},
			AislePositions: []int{},
		}
	}

	totalSeats := rows.Len() * len(aircraft.Columns)
	bookedCount := totalSeats - available
	if bookedCount < 0 {
		bookedCount = 0
	}
	if bookedCount > totalSeats {
		bookedCount = totalSeats
	}

	currency := flight.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	basePrice := math.Round(flight.Price * seatPriceShare[cabin])
	exitRow := rows.StartRow + int(math.Floor(float64(rows.Len())*0.4))

	seats := make([]models.Seat, 0, totalSeats)
	ranking := make([]rankedSeat, 0, totalSeats)
	for row := rows.StartRow; row <= rows.EndRow; row++ {
		for colIndex, column := range aircraft.Columns {
			isWindow := aircraft.isWindow(colIndex)
			isAisle := aircraft.isAisle(colIndex)
			isExitRow := row == exitRow

			price := basePrice
			if cabin != models.CabinFirst {
				switch {
				case isExitRow:
					price = math.Round(price * 1.5)
				case isWindow:
					price = math.Round(price * 1.2)
				case isAisle:
					price = math.Round(price * 1.1)
				}
			}

			ranking = append(ranking, rankedSeat{
				index: len(seats),
				hash:  Hash(fmt.Sprintf("%s-%d-%d-%s", flight.ID, segmentIndex, row, column)),
			})
			seats = append(seats, models.Seat{
				ID:          fmt.Sprintf("%d%s", row, column),
				Row:         row,
				Column:      column,
				IsAvailable: true,
				Price:       price,
				Currency:    currency,
				Cabin:       cabin.ProviderCode(),
				IsWindow:    isWindow,
				IsAisle:     isAisle,
				IsExitRow:   isExitRow,
			})
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].hash < ranking[j].hash
	})
	for _, r := range ranking[:bookedCount] {
		seats[r.index].IsBooked = true
		seats[r.index].IsAvailable = false
	}

	return models.SeatMap{
		Aircraft:       aircraft.Name,
		Seats:          seats,
		Rows:           rows.EndRow,
		Columns:        append([]string{}, aircraft.Columns...),
		AislePositions: append([]int{}, aircraft.AislePositions...),
	}
}
