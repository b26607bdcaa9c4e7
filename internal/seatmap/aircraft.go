package seatmap

import (
	"strings"

	"flights_booking_frontend/internal/models"
)

// RowRange is the inclusive row range of a cabin. An empty range means the cabin is not offered.
type RowRange struct {
	StartRow int
	EndRow   int
}

// Empty reports whether the cabin has no rows
func (r RowRange) Empty() bool {
	return r.EndRow < r.StartRow || r.EndRow == 0
}

// Len returns the number of rows in the range
func (r RowRange) Len() int {
	if r.Empty() {
		return 0
	}
	return r.EndRow - r.StartRow + 1
}

// Aircraft is a seat layout template
type Aircraft struct {
	Name           string
	Columns        []string
	AislePositions []int // aisle after column index, e.g. 3 means between C and D
	Cabins         map[models.CabinClass]RowRange
}

var aircraftTemplates = []Aircraft{
	{
		Name:           "Airbus A320",
		Columns:        []string{"A", "B", "C", "D", "E", "F"},
		AislePositions: []int{3},
		Cabins: map[models.CabinClass]RowRange{
			models.CabinEconomy: {StartRow: 1, EndRow: 25},
		},
	},
	{
		Name:           "Airbus A350",
		Columns:        []string{"A", "B", "C", "D", "E", "F", "G", "H", "J", "K"},
		AislePositions: []int{3, 7},
		Cabins: map[models.CabinClass]RowRange{
			models.CabinFirst:          {StartRow: 1, EndRow: 4},
			models.CabinBusiness:       {StartRow: 1, EndRow: 10},
			models.CabinPremiumEconomy: {StartRow: 1, EndRow: 15},
			models.CabinEconomy:        {StartRow: 1, EndRow: 30},
		},
	},
	{
		Name:           "Boeing 787 Dreamliner",
		Columns:        []string{"A", "B", "C", "D", "E", "F", "G", "H", "J"},
		AislePositions: []int{3, 6},
		Cabins: map[models.CabinClass]RowRange{
			models.CabinBusiness:       {StartRow: 1, EndRow: 8},
			models.CabinPremiumEconomy: {StartRow: 1, EndRow: 12},
			models.CabinEconomy:        {StartRow: 1, EndRow: 28},
		},
	},
	{
		Name:           "Boeing 737",
		Columns:        []string{"A", "B", "C", "D", "E", "F"},
		AislePositions: []int{3},
		Cabins: map[models.CabinClass]RowRange{
			models.CabinEconomy: {StartRow: 1, EndRow: 28},
		},
	},
}

// aircraftByCode maps provider aircraft codes onto template indexes
var aircraftByCode = map[string]int{
	"A320": 0, "320": 0, "A321": 0, "321": 0,
	"A350": 1, "350": 1, "359": 1,
	"B787": 2, "787": 2, "788": 2, "789": 2,
	"B737": 3, "737": 3, "738": 3,
}

// SelectAircraft picks the template for an aircraft code, falling back to a
// flight-id based choice when the code is missing or unknown.
func SelectAircraft(aircraftCode, flightID string) Aircraft {
	if idx, ok := aircraftByCode[strings.ToUpper(strings.TrimSpace(aircraftCode))]; ok {
		return aircraftTemplates[idx]
	}
	return aircraftTemplates[Hash(flightID)%len(aircraftTemplates)]
}

// Hash is a 31-multiplier polynomial string hash with 32-bit wraparound, reduced to [0, 100)
func Hash(s string) int {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	v := int(h) % 100
	if v < 0 {
		v = -v
	}
	return v
}

func (a *Aircraft) isWindow(colIndex int) bool {
	return colIndex == 0 || colIndex == len(a.Columns)-1
}

func (a *Aircraft) isAisle(colIndex int) bool {
	for _, pos := range a.AislePositions {
		if colIndex == pos-1 || colIndex == pos {
			return true
		}
	}
	return false
}
