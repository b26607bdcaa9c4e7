package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_booking_frontend/internal/models"
)

var airportColumns = []string{"iata_code", "name", "city_name", "country_name", "latitude", "longitude"}

func TestAirportDirectorySearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM airports")).
		WithArgs("%par%", models.MaxAirportResults).
		WillReturnRows(sqlmock.NewRows(airportColumns).
			AddRow("CDG", "Charles de Gaulle", "Paris", "France", 49.0097, 2.5479).
			AddRow("ORY", "Orly", "Paris", "France", 48.7262, 2.3652))

	airports, err := NewAirportDirectory(db).SearchAirports(context.Background(), " par ")
	require.NoError(t, err)
	require.Len(t, airports, 2)
	assert.Equal(t, "CDG", airports[0].IATACode)
	assert.Equal(t, "Paris", airports[1].CityName)
	assert.Equal(t, 2.3652, airports[1].Lng)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAirportDirectoryEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM airports")).
		WithArgs(`%50\%%`, models.MaxAirportResults).
		WillReturnRows(sqlmock.NewRows(airportColumns))

	airports, err := NewAirportDirectory(db).SearchAirports(context.Background(), "50%")
	require.NoError(t, err)
	assert.Empty(t, airports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAirportDirectoryNotReady(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM airports")).
		WillReturnError(&pq.Error{Code: undefinedTable, Message: `relation "airports" does not exist`})

	_, err = NewAirportDirectory(db).SearchAirports(context.Background(), "lon")
	assert.ErrorIs(t, err, ErrDirectoryNotReady)

	mock.ExpectQuery(regexp.QuoteMeta("FROM airports")).WillReturnError(errors.New("connection reset"))
	_, err = NewAirportDirectory(db).SearchAirports(context.Background(), "lon")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDirectoryNotReady)
}

func TestAirportDirectorySeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	airports := []models.Airport{
		{IATACode: "cdg", Name: "Charles de Gaulle", CityName: "Paris", CountryName: "France", Lat: 49.0097, Lng: 2.5479},
		{IATACode: "LHR", Name: "Heathrow", CityName: "London", CountryName: "United Kingdom", Lat: 51.47, Lng: -0.4543},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS airports")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO airports"))
	prep.ExpectExec().WithArgs("CDG", "Charles de Gaulle", "Paris", "France", 49.0097, 2.5479).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("LHR", "Heathrow", "London", "United Kingdom", 51.47, -0.4543).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewAirportDirectory(db).Seed(context.Background(), airports))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAirportDirectorySeedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS airports")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO airports"))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewAirportDirectory(db).Seed(context.Background(), []models.Airport{{IATACode: "CDG"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
