package models

import "strings"

// Airport represents an airport the user can fly from or to
type Airport struct {
	IATACode    string  `json:"iataCode" db:"iata_code"`
	Name        string  `json:"name" db:"name"`
	CityName    string  `json:"cityName" db:"city_name"`
	CountryName string  `json:"countryName" db:"country_name"`
	Lat         float64 `json:"lat" db:"latitude"`
	Lng         float64 `json:"lng" db:"longitude"`
}

// MinAirportKeywordLength is the shortest keyword that reaches a data source
const MinAirportKeywordLength = 2

// MaxAirportResults caps the number of airports returned for one keyword
const MaxAirportResults = 10

// Matches reports whether the keyword appears in the city, name or IATA code
func (a *Airport) Matches(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	return strings.Contains(strings.ToLower(a.CityName), kw) ||
		strings.Contains(strings.ToLower(a.Name), kw) ||
		strings.Contains(strings.ToLower(a.IATACode), kw)
}
