package services

import (
	"context"
	"strings"

	"flights_booking_frontend/internal/models"
)

var airportCatalog = []models.Airport{
	// Europe
	{IATACode: "CDG", Name: "Charles de Gaulle Airport", CityName: "Paris", CountryName: "France", Lat: 49.0097, Lng: 2.5479},
	{IATACode: "LHR", Name: "London Heathrow Airport", CityName: "London", CountryName: "United Kingdom", Lat: 51.4700, Lng: -0.4543},
	{IATACode: "AMS", Name: "Amsterdam Schiphol Airport", CityName: "Amsterdam", CountryName: "Netherlands", Lat: 52.3105, Lng: 4.7683},
	{IATACode: "FCO", Name: "Leonardo da Vinci Airport", CityName: "Rome", CountryName: "Italy", Lat: 41.8003, Lng: 12.2389},
	{IATACode: "MAD", Name: "Adolfo Suárez Madrid-Barajas", CityName: "Madrid", CountryName: "Spain", Lat: 40.4719, Lng: -3.5626},
	{IATACode: "BCN", Name: "Barcelona-El Prat Airport", CityName: "Barcelona", CountryName: "Spain", Lat: 41.2974, Lng: 2.0833},
	{IATACode: "MUC", Name: "Munich Airport", CityName: "Munich", CountryName: "Germany", Lat: 48.3537, Lng: 11.7750},
	{IATACode: "FRA", Name: "Frankfurt Airport", CityName: "Frankfurt", CountryName: "Germany", Lat: 50.0379, Lng: 8.5622},
	{IATACode: "VIE", Name: "Vienna International Airport", CityName: "Vienna", CountryName: "Austria", Lat: 48.1103, Lng: 16.5697},
	{IATACode: "ZRH", Name: "Zurich Airport", CityName: "Zurich", CountryName: "Switzerland", Lat: 47.4582, Lng: 8.5556},
	{IATACode: "BRU", Name: "Brussels Airport", CityName: "Brussels", CountryName: "Belgium", Lat: 50.9010, Lng: 4.4856},
	{IATACode: "MXP", Name: "Milan Malpensa Airport", CityName: "Milan", CountryName: "Italy", Lat: 45.6306, Lng: 8.7231},
	{IATACode: "PRG", Name: "Václav Havel Airport Prague", CityName: "Prague", CountryName: "Czech Republic", Lat: 50.1008, Lng: 14.2600},
	{IATACode: "LIS", Name: "Lisbon Portela Airport", CityName: "Lisbon", CountryName: "Portugal", Lat: 38.7756, Lng: -9.1354},
	{IATACode: "DUB", Name: "Dublin Airport", CityName: "Dublin", CountryName: "Ireland", Lat: 53.4213, Lng: -6.2701},
	{IATACode: "CPH", Name: "Copenhagen Airport", CityName: "Copenhagen", CountryName: "Denmark", Lat: 55.6180, Lng: 12.6508},
	{IATACode: "ARN", Name: "Stockholm Arlanda Airport", CityName: "Stockholm", CountryName: "Sweden", Lat: 59.6519, Lng: 17.9186},
	{IATACode: "OSL", Name: "Oslo Gardermoen Airport", CityName: "Oslo", CountryName: "Norway", Lat: 60.1939, Lng: 11.1004},
	{IATACode: "ATH", Name: "Athens International Airport", CityName: "Athens", CountryName: "Greece", Lat: 37.9364, Lng: 23.9445},
	{IATACode: "IST", Name: "Istanbul Airport", CityName: "Istanbul", CountryName: "Turkey", Lat: 41.2753, Lng: 28.7519},

	// North America
	{IATACode: "JFK", Name: "John F. Kennedy International", CityName: "New York", CountryName: "United States", Lat: 40.6413, Lng: -73.7781},
	{IATACode: "LAX", Name: "Los Angeles International", CityName: "Los Angeles", CountryName: "United States", Lat: 33.9416, Lng: -118.4085},
	{IATACode: "ORD", Name: "O'Hare International Airport", CityName: "Chicago", CountryName: "United States", Lat: 41.9742, Lng: -87.9073},
	{IATACode: "MIA", Name: "Miami International Airport", CityName: "Miami", CountryName: "United States", Lat: 25.7959, Lng: -80.2870},
	{IATACode: "SFO", Name: "San Francisco International", CityName: "San Francisco", CountryName: "United States", Lat: 37.6213, Lng: -122.3790},
	{IATACode: "YYZ", Name: "Toronto Pearson International", CityName: "Toronto", CountryName: "Canada", Lat: 43.6777, Lng: -79.6248},
	{IATACode: "YVR", Name: "Vancouver International Airport", CityName: "Vancouver", CountryName: "Canada", Lat: 49.1939, Lng: -123.1844},

	// Asia
	{IATACode: "DXB", Name: "Dubai International Airport", CityName: "Dubai", CountryName: "United Arab Emirates", Lat: 25.2532, Lng: 55.3657},
	{IATACode: "NRT", Name: "Narita International Airport", CityName: "Tokyo", CountryName: "Japan", Lat: 35.7647, Lng: 140.3864},
	{IATACode: "SIN", Name: "Singapore Changi Airport", CityName: "Singapore", CountryName: "Singapore", Lat: 1.3644, Lng: 103.9915},
}

// AirportCatalog is a fixed in-memory airport list
type AirportCatalog struct {
	airports []models.Airport
}

// NewAirportCatalog creates a catalog of the built-in airports
func NewAirportCatalog() *AirportCatalog {
	return &AirportCatalog{airports: airportCatalog}
}

// Airports returns a copy of every airport in the catalog
func (c *AirportCatalog) Airports() []models.Airport {
	return append([]models.Airport{}, c.airports...)
}

// Lookup returns the airport with the given IATA code
func (c *AirportCatalog) Lookup(code string) (models.Airport, bool) {
	for _, a := range c.airports {
		if strings.EqualFold(a.IATACode, code) {
			return a, true
		}
	}
	return models.Airport{}, false
}

// SearchAirports returns up to models.MaxAirportResults airports matching the keyword on city, name or code
func (c *AirportCatalog) SearchAirports(_ context.Context, keyword string) ([]models.Airport, error) {
	matches := make([]models.Airport, 0, models.MaxAirportResults)
	for i := range c.airports {
		if c.airports[i].Matches(keyword) {
			matches = append(matches, c.airports[i])
			if len(matches) == models.MaxAirportResults {
				break
			}
		}
	}
	return matches, nil
}
