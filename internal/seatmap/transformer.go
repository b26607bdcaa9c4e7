package seatmap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"flights_booking_frontend/internal/models"
)

var seatNumberPattern = regexp.MustCompile(`^(\d+)([A-K])$`)

// TransformSeatMap converts a provider seat map into seats of the requested cabin.
// An empty cabin keeps every seat.
func TransformSeatMap(resp *models.ProviderSeatMapResponse, cabin models.CabinClass) []models.Seat {
	if resp == nil || len(resp.Data) == 0 {
		return []models.Seat{}
	}

	seats := make([]models.Seat, 0)
	for _, data := range resp.Data {
		for _, deck := range data.Decks {
			for _, ps := range deck.Seats {
				if cabin != "" && !strings.EqualFold(ps.Cabin, cabin.ProviderCode()) {
					continue
				}

				match := seatNumberPattern.FindStringSubmatch(ps.Number)
				if match == nil {
					continue
				}
				row, _ := strconv.Atoi(match[1])

				status := models.SeatStatusBlocked
				price := 0.0
				currency := DefaultCurrency
				if len(ps.TravelerPricing) > 0 {
					first := ps.TravelerPricing[0]
					if first.SeatAvailabilityStatus != "" {
						status = first.SeatAvailabilityStatus
					}
					if first.Price != nil {
						price, _ = strconv.ParseFloat(first.Price.Total, 64)
						if first.Price.Currency != "" {
							currency = first.Price.Currency
						}
					}
				}

				seat := models.Seat{
					ID:          ps.Number,
					Row:         row,
					Column:      match[2],
					IsBooked:    status == models.SeatStatusOccupied,
					IsAvailable: status == models.SeatStatusAvailable,
					Price:       price,
					Currency:    currency,
					Cabin:       ps.Cabin,
				}
				for _, code := range ps.CharacteristicsCodes {
					switch {
					case code == "W":
						seat.IsWindow = true
					case code == "A":
						seat.IsAisle = true
					case code == "RS":
						seat.HasRestrictedRecline = true
					case strings.HasPrefix(code, "1"):
						seat.IsExitRow = true
					}
				}
				seats = append(seats, seat)
			}
		}
	}
	return seats
}

// GridDimensions derives the row count, sorted columns and aisle positions of a seat set.
// An aisle is assumed wherever the column letters skip, e.g. C then E.
func GridDimensions(seats []models.Seat) (rows int, columns []string, aislePositions []int) {
	columns = []string{}
	aislePositions = []int{}
	if len(seats) == 0 {
		return 0, columns, aislePositions
	}

	seen := make(map[string]bool)
	for _, s := range seats {
		if s.Row > rows {
			rows = s.Row
		}
		if !seen[s.Column] {
			seen[s.Column] = true
			columns = append(columns, s.Column)
		}
	}
	sort.Strings(columns)

	for i := 1; i < len(columns); i++ {
		prev := columns[i-1][len(columns[i-1])-1]
		curr := columns[i][0]
		if int(curr)-int(prev) > 1 {
			aislePositions = append(aislePositions, i)
		}
	}
	return rows, columns, aislePositions
}

// BuildSeatMap wraps transformed seats with their grid layout
func BuildSeatMap(seats []models.Seat) models.SeatMap {
	rows, columns, aisles := GridDimensions(seats)
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Column < seats[j].Column
	})
	return models.SeatMap{
		Seats:          seats,
		Rows:           rows,
		Columns:        columns,
		AislePositions: aisles,
	}
}

// TransformUpsell converts a provider upsell response into luggage options for a cabin.
// The offer matching the cabin wins, otherwise the first one is used.
func TransformUpsell(resp *models.ProviderUpsellResponse, cabin models.CabinClass) []models.LuggageOption {
	if resp == nil || len(resp.Data) == 0 {
		return []models.LuggageOption{}
	}

	offer := &resp.Data[0]
	for i := range resp.Data {
		if fd := firstFareDetails(&resp.Data[i]); fd != nil && strings.EqualFold(fd.Cabin, cabin.ProviderCode()) {
			offer = &resp.Data[i]
			break
		}
	}

	options := make([]models.LuggageOption, 0, 4)
	if fd := firstFareDetails(offer); fd != nil && fd.IncludedCheckedBags != nil && fd.IncludedCheckedBags.Quantity > 0 {
		bags := fd.IncludedCheckedBags
		weight := bags.Weight
		if weight == 0 {
			weight = 23
		}
		unit := bags.WeightUnit
		if unit == "" {
			unit = "KG"
		}
		options = append(options, models.LuggageOption{
			ID:       "standard",
			Label:    "Standard Luggage",
			Weight:   fmt.Sprintf("%d%s", weight, unit),
			Included: true,
		})
	}

	options = append(options, models.LuggageOption{
		ID:       CabinBagID,
		Label:    "Cabin Baggage",
		Weight:   "7kg",
		Included: true,
	})

	for _, svc := range offer.Price.AdditionalServices {
		if svc.Type != models.ServiceCheckedBags {
			continue
		}
		price, err := strconv.ParseFloat(svc.Amount, 64)
		if err != nil {
			break
		}
		options = append(options,
			models.LuggageOption{ID: "extra1", Label: "1st Extra Bag", Weight: "23kg", Price: price},
			models.LuggageOption{ID: "extra2", Label: "2nd Extra Bag", Weight: "23kg", Price: price * 1.5},
		)
		break
	}
	return options
}

func firstFareDetails(offer *models.ProviderUpsellOffer) *models.ProviderFareDetails {
	if len(offer.TravelerPricings) == 0 || len(offer.TravelerPricings[0].FareDetailsBySegment) == 0 {
		return nil
	}
	return &offer.TravelerPricings[0].FareDetailsBySegment[0]
}
