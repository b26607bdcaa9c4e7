package seatmap

import (
	"errors"
	"fmt"

	"flights_booking_frontend/internal/models"
)

var ErrInvalidSelection = errors.New("invalid seat or luggage selection")

// Selection is the seat and luggage choice of one leg for a given seat map
type Selection struct {
	SeatMap    models.SeatMap
	Luggage    []models.LuggageOption
	Passengers int

	Seats           []string
	SelectedLuggage []string
}

// NewSelection starts a selection with the included luggage preselected
func NewSelection(seatMap models.SeatMap, luggage []models.LuggageOption, passengers int) *Selection {
	return &Selection{
		SeatMap:         seatMap,
		Luggage:         luggage,
		Passengers:      passengers,
		Seats:           []string{},
		SelectedLuggage: models.IncludedLuggageIDs(luggage),
	}
}

func (s *Selection) seat(id string) *models.Seat {
	for i := range s.SeatMap.Seats {
		if s.SeatMap.Seats[i].ID == id {
			return &s.SeatMap.Seats[i]
		}
	}
	return nil
}

func (s *Selection) luggageOption(id string) *models.LuggageOption {
	for i := range s.Luggage {
		if s.Luggage[i].ID == id {
			return &s.Luggage[i]
		}
	}
	return nil
}

// ToggleSeat deselects a selected seat, or selects a selectable seat while
// fewer seats than passengers are chosen. It reports whether anything changed.
func (s *Selection) ToggleSeat(id string) bool {
	if idx := indexOf(s.Seats, id); idx >= 0 {
		s.Seats = append(s.Seats[:idx], s.Seats[idx+1:]...)
		return true
	}
	seat := s.seat(id)
	if seat == nil || !seat.Selectable() || len(s.Seats) >= s.Passengers {
		return false
	}
	s.Seats = append(s.Seats, id)
	return true
}

// ToggleLuggage adds or removes a paid luggage option. Included options never change.
func (s *Selection) ToggleLuggage(id string) bool {
	opt := s.luggageOption(id)
	if opt == nil || opt.Included {
		return false
	}
	if idx := indexOf(s.SelectedLuggage, id); idx >= 0 {
		s.SelectedLuggage = append(s.SelectedLuggage[:idx], s.SelectedLuggage[idx+1:]...)
		return true
	}
	s.SelectedLuggage = append(s.SelectedLuggage, id)
	return true
}

// Complete reports whether every passenger has a seat
func (s *Selection) Complete() bool {
	return s.Passengers > 0 && len(s.Seats) == s.Passengers
}

// ExtrasPrice sums the selected seat prices and the paid luggage
func (s *Selection) ExtrasPrice() float64 {
	return ExtrasPrice(s.SeatMap, s.Luggage, s.Seats, s.SelectedLuggage)
}

// ReleaseUnavailable drops selected seats that are no longer selectable and returns them
func (s *Selection) ReleaseUnavailable() []string {
	kept := s.Seats[:0]
	var released []string
	for _, id := range s.Seats {
		if seat := s.seat(id); seat != nil && seat.Selectable() {
			kept = append(kept, id)
			continue
		}
		released = append(released, id)
	}
	s.Seats = kept
	return released
}

// ValidateSelection checks a submitted leg selection against the seat map and luggage options
func ValidateSelection(seatMap models.SeatMap, luggage []models.LuggageOption, passengers int, seats, selectedLuggage []string) error {
	if len(seats) != passengers {
		return fmt.Errorf("%w: %d seats selected for %d passengers", ErrInvalidSelection, len(seats), passengers)
	}

	byID := make(map[string]models.Seat, len(seatMap.Seats))
	for _, seat := range seatMap.Seats {
		byID[seat.ID] = seat
	}
	seen := make(map[string]bool, len(seats))
	for _, id := range seats {
		if seen[id] {
			return fmt.Errorf("%w: seat %s selected twice", ErrInvalidSelection, id)
		}
		seen[id] = true
		seat, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown seat %s", ErrInvalidSelection, id)
		}
		if !seat.Selectable() {
			return fmt.Errorf("%w: seat %s is not available", ErrInvalidSelection, id)
		}
	}

	chosen := make(map[string]bool, len(selectedLuggage))
	for _, id := range selectedLuggage {
		found := false
		for _, opt := range luggage {
			if opt.ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: unknown luggage option %s", ErrInvalidSelection, id)
		}
		chosen[id] = true
	}
	for _, opt := range luggage {
		if opt.Included && !chosen[opt.ID] {
			return fmt.Errorf("%w: included luggage %s cannot be removed", ErrInvalidSelection, opt.ID)
		}
	}
	return nil
}

// ExtrasPrice sums the prices of the selected seats and of the selected luggage that is not included
func ExtrasPrice(seatMap models.SeatMap, luggage []models.LuggageOption, seats, selectedLuggage []string) float64 {
	total := 0.0
	for _, id := range seats {
		for _, seat := range seatMap.Seats {
			if seat.ID == id {
				total += seat.Price
				break
			}
		}
	}
	for _, id := range selectedLuggage {
		for _, opt := range luggage {
			if opt.ID == id && !opt.Included {
				total += opt.Price
				break
			}
		}
	}
	return total
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
