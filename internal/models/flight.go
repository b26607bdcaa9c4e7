package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SegmentTimeLayout is the local date-time layout used by segment times
const SegmentTimeLayout = "2006-01-02T15:04:05"

// Segment represents one takeoff-to-landing flight within an itinerary
type Segment struct {
	DepartureAirport string `json:"departureAirport"`
	DepartureCity    string `json:"departureCity"`
	ArrivalAirport   string `json:"arrivalAirport"`
	ArrivalCity      string `json:"arrivalCity"`
	DepartureTime    string `json:"departureTime"`
	ArrivalTime      string `json:"arrivalTime"`
	FlightNumber     string `json:"flightNumber"`
	AirlineCode      string `json:"airlineCode"`
	AirlineName      string `json:"airlineName"`
	Duration         string `json:"duration"`
	SequenceNumber   int    `json:"sequenceNumber"`
	AircraftCode     string `json:"aircraftCode,omitempty"`
	AvailableSeats   *int   `json:"availableSeats,omitempty"`
}

// Itinerary is the ordered sequence of segments composing one leg
type Itinerary struct {
	Duration      string    `json:"duration"`
	Segments      []Segment `json:"segments"`
	NumberOfStops int       `json:"numberOfStops"`
}

// Flight represents a priced flight offer
type Flight struct {
	ID                string             `json:"id"`
	Price             float64            `json:"price"`
	Currency          string             `json:"currency"`
	Seats             int                `json:"seats"`
	Itineraries       []Itinerary        `json:"itineraries"`
	Airlines          []string           `json:"airlines"`
	ValidatingAirline string             `json:"validatingAirline,omitempty"`
	TotalDuration     string             `json:"totalDuration"`
	TotalStops        int                `json:"totalStops"`
	CabinPrices       map[string]float64 `json:"cabinPrices,omitempty"`
}

// ProviderOffer is the raw offer payload as returned by the flight data provider
type ProviderOffer = json.RawMessage

// SearchResult is a list of flights plus the raw provider offers keyed by flight id
type SearchResult struct {
	Flights   []Flight                 `json:"flights"`
	RawOffers map[string]ProviderOffer `json:"rawOffers"`
}

// Sort options for result views
const (
	SortPriceAsc     = "price-asc"
	SortPriceDesc    = "price-desc"
	SortDurationAsc  = "duration-asc"
	SortDurationDesc = "duration-desc"
	SortDepartureAsc = "departure-asc"
)

// Stop filters for result views
const (
	StopsAll     = "all"
	StopsDirect  = "direct"
	StopsOneStop = "oneStop"
)

// Departure windows for result views
const (
	DepartureAll       = "all"
	DepartureMorning   = "morning"
	DepartureAfternoon = "afternoon"
	DepartureEvening   = "evening"
)

// ResultView holds the sort and filter options of a results screen
type ResultView struct {
	SortBy    string `json:"sortBy"`
	Stops     string `json:"stops"`
	Departure string `json:"departure"`
}

var (
	ErrEmptyItinerary         = errors.New("itinerary has no segments")
	ErrDiscontinuousItinerary = errors.New("itinerary segments are not contiguous")
	ErrUnorderedItinerary     = errors.New("itinerary segments are not chronological")
)

// FirstSegment returns the first segment of the first itinerary, if any
func (f *Flight) FirstSegment() *Segment {
	if len(f.Itineraries) == 0 || len(f.Itineraries[0].Segments) == 0 {
		return nil
	}
	return &f.Itineraries[0].Segments[0]
}

// Segment returns the segment at index within the first itinerary, if any
func (f *Flight) Segment(index int) *Segment {
	if len(f.Itineraries) == 0 {
		return nil
	}
	segments := f.Itineraries[0].Segments
	if index < 0 || index >= len(segments) {
		return nil
	}
	return &segments[index]
}

// Validate checks that segments are chronologically ordered and contiguous
func (it *Itinerary) Validate() error {
	if len(it.Segments) == 0 {
		return ErrEmptyItinerary
	}
	for i := 1; i < len(it.Segments); i++ {
		prev, next := it.Segments[i-1], it.Segments[i]
		if !strings.EqualFold(prev.ArrivalAirport, next.DepartureAirport) {
			return fmt.Errorf("%w: %s arrives at %s but %s departs from %s",
				ErrDiscontinuousItinerary, prev.FlightNumber, prev.ArrivalAirport, next.FlightNumber, next.DepartureAirport)
		}
		arrival, err := time.Parse(SegmentTimeLayout, prev.ArrivalTime)
		if err != nil {
			return fmt.Errorf("invalid arrival time %q: %w", prev.ArrivalTime, err)
		}
		departure, err := time.Parse(SegmentTimeLayout, next.DepartureTime)
		if err != nil {
			return fmt.Errorf("invalid departure time %q: %w", next.DepartureTime, err)
		}
		if departure.Before(arrival) {
			return fmt.Errorf("%w: %s departs before %s arrives", ErrUnorderedItinerary, next.FlightNumber, prev.FlightNumber)
		}
	}
	return nil
}

// Validate checks every itinerary of the flight
func (f *Flight) Validate() error {
	if f.ID == "" {
		return errors.New("flight id is required")
	}
	if len(f.Itineraries) == 0 {
		return errors.New("flight has no itineraries")
	}
	for i := range f.Itineraries {
		if err := f.Itineraries[i].Validate(); err != nil {
			return fmt.Errorf("itinerary %d: %w", i, err)
		}
	}
	return nil
}

// ParseISODuration converts a PT#H#M duration into minutes. Malformed input yields 0.
func ParseISODuration(iso string) int {
	if !strings.HasPrefix(iso, "PT") {
		return 0
	}
	rest := iso[2:]
	minutes := 0
	if h := strings.Index(rest, "H"); h > 0 {
		hours, err := strconv.Atoi(rest[:h])
		if err != nil {
			return 0
		}
		minutes += hours * 60
		rest = rest[h+1:]
	}
	if m := strings.Index(rest, "M"); m > 0 {
		mins, err := strconv.Atoi(rest[:m])
		if err != nil {
			return 0
		}
		minutes += mins
	}
	return minutes
}

// FormatISODuration renders minutes as PT#H#M
func FormatISODuration(minutes int) string {
	return fmt.Sprintf("PT%dH%dM", minutes/60, minutes%60)
}

// departureHour returns the hour of the first departure, or -1 when unknown
func (f *Flight) departureHour() int {
	seg := f.FirstSegment()
	if seg == nil {
		return -1
	}
	t, err := time.Parse(SegmentTimeLayout, seg.DepartureTime)
	if err != nil {
		return -1
	}
	return t.Hour()
}

func (f *Flight) firstItineraryStops() int {
	if len(f.Itineraries) == 0 {
		return f.TotalStops
	}
	return f.Itineraries[0].NumberOfStops
}

// Apply filters and sorts a copy of flights according to the view
func (v ResultView) Apply(flights []Flight) []Flight {
	filtered := make([]Flight, 0, len(flights))
	for _, flight := range flights {
		switch v.Stops {
		case StopsDirect:
			if flight.firstItineraryStops() != 0 {
				continue
			}
		case StopsOneStop:
			if flight.firstItineraryStops() != 1 {
				continue
			}
		}

		if v.Departure != "" && v.Departure != DepartureAll {
			hour := flight.departureHour()
			if hour >= 0 {
				if v.Departure == DepartureMorning && (hour < 6 || hour >= 12) {
					continue
				}
				if v.Departure == DepartureAfternoon && (hour < 12 || hour >= 18) {
					continue
				}
				if v.Departure == DepartureEvening && hour < 18 {
					continue
				}
			}
		}
		filtered = append(filtered, flight)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch v.SortBy {
		case SortPriceDesc:
			return a.Price > b.Price
		case SortDurationAsc:
			return ParseISODuration(a.TotalDuration) < ParseISODuration(b.TotalDuration)
		case SortDurationDesc:
			return ParseISODuration(a.TotalDuration) > ParseISODuration(b.TotalDuration)
		case SortDepartureAsc:
			return departureTime(a) < departureTime(b)
		default:
			return a.Price < b.Price
		}
	})
	return filtered
}

func departureTime(f Flight) string {
	if seg := f.FirstSegment(); seg != nil {
		return seg.DepartureTime
	}
	return ""
}

// IsValid checks that every option of the view is known
func (v ResultView) IsValid() bool {
	switch v.SortBy {
	case "", SortPriceAsc, SortPriceDesc, SortDurationAsc, SortDurationDesc, SortDepartureAsc:
	default:
		return false
	}
	switch v.Stops {
	case "", StopsAll, StopsDirect, StopsOneStop:
	default:
		return false
	}
	switch v.Departure {
	case "", DepartureAll, DepartureMorning, DepartureAfternoon, DepartureEvening:
	default:
		return false
	}
	return true
}
