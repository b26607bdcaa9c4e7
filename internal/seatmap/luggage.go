package seatmap

import (
	"fmt"
	"math"

	"flights_booking_frontend/internal/models"
)

type luggageAllowance struct {
	checkedBags   int
	checkedWeight string
	extraBagPrice float64
}

var luggageTable = map[models.CabinClass]luggageAllowance{
	models.CabinEconomy:        {checkedBags: 1, checkedWeight: "23kg", extraBagPrice: 45},
	models.CabinPremiumEconomy: {checkedBags: 2, checkedWeight: "23kg", extraBagPrice: 35},
	models.CabinBusiness:       {checkedBags: 2, checkedWeight: "32kg", extraBagPrice: 25},
	models.CabinFirst:          {checkedBags: 3, checkedWeight: "32kg"},
}

// CabinBagID is the id of the free cabin bag every fare includes
const CabinBagID = "cabin"

// LuggageOptions returns the luggage options of a cabin class. Unknown classes get the economy table.
func LuggageOptions(cabin models.CabinClass) []models.LuggageOption {
	cfg, ok := luggageTable[cabin]
	if !ok {
		cfg = luggageTable[models.CabinEconomy]
	}

	options := make([]models.LuggageOption, 0, cfg.checkedBags+3)
	for i := 1; i <= cfg.checkedBags; i++ {
		options = append(options, models.LuggageOption{
			ID:       fmt.Sprintf("standard-%d", i),
			Label:    fmt.Sprintf("Checked Bag %d", i),
			Weight:   cfg.checkedWeight,
			Included: true,
		})
	}

	options = append(options, models.LuggageOption{
		ID:       CabinBagID,
		Label:    "Cabin Baggage",
		Weight:   "7kg",
		Included: true,
	})

	// first class has unlimited bags, so no paid add-ons
	if cfg.extraBagPrice > 0 {
		options = append(options,
			models.LuggageOption{
				ID:     "extra1",
				Label:  fmt.Sprintf("Extra Bag %d", cfg.checkedBags+1),
				Weight: cfg.checkedWeight,
				Price:  cfg.extraBagPrice,
			},
			models.LuggageOption{
				ID:     "extra2",
				Label:  fmt.Sprintf("Extra Bag %d", cfg.checkedBags+2),
				Weight: cfg.checkedWeight,
				Price:  math.Round(cfg.extraBagPrice * 1.5),
			},
		)
	}
	return options
}

// IncludedLuggage returns the ids of the luggage included in a cabin class fare
func IncludedLuggage(cabin models.CabinClass) []string {
	return models.IncludedLuggageIDs(LuggageOptions(cabin))
}
