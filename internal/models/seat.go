package models

// Seat represents a seat as shown on the seat map
type Seat struct {
	ID                   string  `json:"id"`
	Row                  int     `json:"row"`
	Column               string  `json:"column"`
	IsBooked             bool    `json:"isBooked"`
	IsAvailable          bool    `json:"isAvailable"`
	Price                float64 `json:"price"`
	Currency             string  `json:"currency"`
	Cabin                string  `json:"cabin"`
	IsWindow             bool    `json:"isWindow,omitempty"`
	IsAisle              bool    `json:"isAisle,omitempty"`
	IsExitRow            bool    `json:"isExitRow,omitempty"`
	HasRestrictedRecline bool    `json:"hasRestrictedRecline,omitempty"`
}

// SeatMap is a seat grid together with its layout
type SeatMap struct {
	Aircraft       string   `json:"aircraft,omitempty"`
	Seats          []Seat   `json:"seats"`
	Rows           int      `json:"rows"`
	Columns        []string `json:"columns"`
	AislePositions []int    `json:"aislePositions"`
}

// LuggageOption is a selectable or included luggage item
type LuggageOption struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Weight   string  `json:"weight"`
	Price    float64 `json:"price"`
	Included bool    `json:"included"`
}

// Selectable reports whether the user may pick the seat
func (s *Seat) Selectable() bool {
	return s.IsAvailable && !s.IsBooked
}

// IncludedLuggageIDs returns the ids of the luggage options that cannot be deselected
func IncludedLuggageIDs(options []LuggageOption) []string {
	ids := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.Included {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}
