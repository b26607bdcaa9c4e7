package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"flights_booking_frontend/internal/models"
)

var mockAirlines = []string{
	"Air France", "Lufthansa", "British Airways", "KLM", "Ryanair",
	"EasyJet", "Iberia", "Alitalia", "Swiss", "Austrian Airlines",
	"Turkish Airlines", "Emirates", "Qatar Airways",
}

var (
	outboundAircraft = []string{"A320", "A350", "B737", "B787"}
	returnAircraft   = []string{"320", "321", "737", "738", "777", "787"}
)

// cabin price multipliers over the economy fare
var cabinMultipliers = map[models.CabinClass]float64{
	models.CabinEconomy:        1,
	models.CabinPremiumEconomy: 1.6,
	models.CabinBusiness:       2.5,
	models.CabinFirst:          4,
}

// MockFlightSource generates flights without a backend. The same criteria always
// produce the same offers.
type MockFlightSource struct {
	airports *AirportCatalog
	latency  time.Duration
}

// NewMockFlightSource creates a new mock flight source with a simulated network latency
func NewMockFlightSource(airports *AirportCatalog, latency time.Duration) *MockFlightSource {
	return &MockFlightSource{airports: airports, latency: latency}
}

func (m *MockFlightSource) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SearchAirports searches the airport catalog
func (m *MockFlightSource) SearchAirports(ctx context.Context, keyword string) ([]models.Airport, error) {
	if err := m.wait(ctx, m.latency/4); err != nil {
		return nil, err
	}
	return m.airports.SearchAirports(ctx, keyword)
}

// SearchFlights generates 4 to 6 offers for the criteria, cheapest first
func (m *MockFlightSource) SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	if err := m.wait(ctx, m.latency); err != nil {
		return nil, err
	}

	result := &models.SearchResult{
		Flights:   []models.Flight{},
		RawOffers: map[string]models.ProviderOffer{},
	}
	if criteria.Origin == nil || criteria.Destination == nil {
		return result, nil
	}

	departure, err := time.Parse(models.DateLayout, criteria.DepartureDate)
	if err != nil {
		return nil, fmt.Errorf("invalid departure date: %w", err)
	}

	h := fnv.New64a()
	h.Write([]byte(criteria.CacheKey()))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	count := rng.Intn(3) + 4
	for i := 0; i < count; i++ {
		flight := generateFlight(rng, criteria, departure, i)
		offer, err := buildRawOffer(flight, criteria)
		if err != nil {
			return nil, fmt.Errorf("failed to build offer %s: %w", flight.ID, err)
		}
		result.Flights = append(result.Flights, flight)
		result.RawOffers[flight.ID] = offer
	}

	sort.SliceStable(result.Flights, func(i, j int) bool {
		return result.Flights[i].Price < result.Flights[j].Price
	})

	log.Printf("Generated %d mock flights for %s -> %s on %s",
		len(result.Flights), criteria.Origin.IATACode, criteria.Destination.IATACode, criteria.DepartureDate)
	return result, nil
}

// SeatMap is not available without a real inventory
func (m *MockFlightSource) SeatMap(_ context.Context, _ models.ProviderOffer) (*models.ProviderSeatMapResponse, error) {
	return nil, ErrNotSupported
}

// Upsell is not available without a real inventory
func (m *MockFlightSource) Upsell(_ context.Context, _ models.ProviderOffer) (*models.ProviderUpsellResponse, error) {
	return nil, ErrNotSupported
}

func generateFlight(rng *rand.Rand, criteria models.SearchCriteria, departureDate time.Time, index int) models.Flight {
	airline := mockAirlines[rng.Intn(len(mockAirlines))]
	airlineCode := strings.ToUpper(airline[:2])

	stops := 0
	if rng.Float64() <= 0.6 {
		stops = 1
		if rng.Float64() <= 0.5 {
			stops = 2
		}
	}

	depHour := 6 + rng.Intn(16)
	depMin := rng.Intn(4) * 15
	duration := time.Duration(2+rng.Intn(6))*time.Hour + time.Duration(rng.Intn(4)*15)*time.Minute
	isoDuration := models.FormatISODuration(int(duration.Minutes()))

	economy := float64(150 + rng.Intn(400))
	if stops == 0 {
		economy += 50
	}
	cabinPrices := make(map[string]float64, len(cabinMultipliers))
	for cabin, mult := range cabinMultipliers {
		cabinPrices[string(cabin)] = math.Round(economy * mult)
	}
	price, ok := cabinPrices[string(criteria.TravelClass)]
	if !ok {
		price = cabinPrices[string(models.CabinEconomy)]
	}

	depart := departureDate.Add(time.Duration(depHour)*time.Hour + time.Duration(depMin)*time.Minute)
	outboundSeats := rng.Intn(20) + 3
	itineraries := []models.Itinerary{{
		Duration:      isoDuration,
		NumberOfStops: stops,
		Segments: []models.Segment{{
			DepartureAirport: criteria.Origin.IATACode,
			DepartureCity:    criteria.Origin.CityName,
			ArrivalAirport:   criteria.Destination.IATACode,
			ArrivalCity:      criteria.Destination.CityName,
			DepartureTime:    depart.Format(models.SegmentTimeLayout),
			ArrivalTime:      depart.Add(duration).Format(models.SegmentTimeLayout),
			FlightNumber:     fmt.Sprintf("%s%d", airlineCode, rng.Intn(9000)+1000),
			AirlineCode:      airlineCode,
			AirlineName:      airline,
			Duration:         isoDuration,
			AircraftCode:     outboundAircraft[rng.Intn(len(outboundAircraft))],
			AvailableSeats:   &outboundSeats,
		}},
	}}

	if criteria.IsRoundTrip() && criteria.ReturnDate != "" {
		if returnDate, err := time.Parse(models.DateLayout, criteria.ReturnDate); err == nil {
			retDepart := returnDate.Add(time.Duration(6+rng.Intn(16))*time.Hour + time.Duration(rng.Intn(4)*15)*time.Minute)
			returnSeats := rng.Intn(20) + 3
			itineraries = append(itineraries, models.Itinerary{
				Duration:      isoDuration,
				NumberOfStops: stops,
				Segments: []models.Segment{{
					DepartureAirport: criteria.Destination.IATACode,
					DepartureCity:    criteria.Destination.CityName,
					ArrivalAirport:   criteria.Origin.IATACode,
					ArrivalCity:      criteria.Origin.CityName,
					DepartureTime:    retDepart.Format(models.SegmentTimeLayout),
					ArrivalTime:      retDepart.Add(duration).Format(models.SegmentTimeLayout),
					FlightNumber:     fmt.Sprintf("%s%d", airlineCode, rng.Intn(9000)+1000),
					AirlineCode:      airlineCode,
					AirlineName:      airline,
					Duration:         isoDuration,
					AircraftCode:     returnAircraft[rng.Intn(len(returnAircraft))],
					AvailableSeats:   &returnSeats,
				}},
			})
		}
	}

	return models.Flight{
		ID:                fmt.Sprintf("%s%s-%d", criteria.Origin.IATACode, criteria.Destination.IATACode, 1000+index),
		Price:             price,
		Currency:          "EUR",
		Seats:             rng.Intn(20) + 3,
		Itineraries:       itineraries,
		Airlines:          []string{airline},
		ValidatingAirline: airline,
		TotalDuration:     isoDuration,
		TotalStops:        stops,
		CabinPrices:       cabinPrices,
	}
}

// buildRawOffer renders a flight as a provider offer, the shape seat map and upsell lookups expect
func buildRawOffer(flight models.Flight, criteria models.SearchCriteria) (models.ProviderOffer, error) {
	passengers := criteria.Passengers
	if passengers < 1 {
		passengers = 1
	}
	travelerPricings := make([]map[string]interface{}, 0, passengers)
	for i := 1; i <= passengers; i++ {
		travelerPricings = append(travelerPricings, map[string]interface{}{
			"travelerId":   strconv.Itoa(i),
			"fareOption":   "STANDARD",
			"travelerType": "ADULT",
			"price": map[string]string{
				"currency": flight.Currency,
				"total":    strconv.FormatFloat(flight.Price, 'f', 2, 64),
			},
			"fareDetailsBySegment": []map[string]string{
				{"segmentId": "1", "cabin": criteria.TravelClass.ProviderCode()},
			},
		})
	}

	offer := map[string]interface{}{
		"type":                   "flight-offer",
		"id":                     flight.ID,
		"source":                 "MOCK",
		"itineraries":            flight.Itineraries,
		"validatingAirlineCodes": []string{flight.Itineraries[0].Segments[0].AirlineCode},
		"price": map[string]string{
			"currency":   flight.Currency,
			"total":      strconv.FormatFloat(flight.Price*float64(passengers), 'f', 2, 64),
			"grandTotal": strconv.FormatFloat(flight.Price*float64(passengers), 'f', 2, 64),
		},
		"travelerPricings": travelerPricings,
	}
	data, err := json.Marshal(offer)
	if err != nil {
		return nil, err
	}
	return models.ProviderOffer(data), nil
}
