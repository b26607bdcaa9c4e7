package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"

	"flights_booking_frontend/internal/models"
)

// ErrDirectoryNotReady is returned when the airports table does not exist yet
var ErrDirectoryNotReady = errors.New("airport directory is not initialized")

const undefinedTable = "42P01"

// NewPostgresDB opens and checks a Postgres connection
func NewPostgresDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to Postgres")
	return db, nil
}

// AirportDirectory looks airports up in the airports table
type AirportDirectory struct {
	db *sql.DB
}

// NewAirportDirectory creates a new airport directory
func NewAirportDirectory(db *sql.DB) *AirportDirectory {
	return &AirportDirectory{db: db}
}

const createAirportsTable = `CREATE TABLE IF NOT EXISTS airports (
	iata_code    CHAR(3) PRIMARY KEY,
	name         TEXT NOT NULL,
	city_name    TEXT NOT NULL,
	country_name TEXT NOT NULL,
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL
)`

const upsertAirport = `INSERT INTO airports (iata_code, name, city_name, country_name, latitude, longitude)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (iata_code) DO UPDATE SET
	name = EXCLUDED.name,
	city_name = EXCLUDED.city_name,
	country_name = EXCLUDED.country_name,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude`

const searchAirports = `SELECT iata_code, name, city_name, country_name, latitude, longitude
FROM airports
WHERE iata_code ILIKE $1 OR name ILIKE $1 OR city_name ILIKE $1
ORDER BY iata_code
LIMIT $2`

// Seed creates the airports table if needed and upserts the given airports
func (d *AirportDirectory) Seed(ctx context.Context, airports []models.Airport) error {
	if _, err := d.db.ExecContext(ctx, createAirportsTable); err != nil {
		return fmt.Errorf("failed to create airports table: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertAirport)
	if err != nil {
		return fmt.Errorf("failed to prepare airport upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range airports {
		if _, err := stmt.ExecContext(ctx, strings.ToUpper(a.IATACode), a.Name, a.CityName, a.CountryName, a.Lat, a.Lng); err != nil {
			return fmt.Errorf("failed to upsert airport %s: %w", a.IATACode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit airports: %w", err)
	}
	log.Printf("Seeded %d airports", len(airports))
	return nil
}

// SearchAirports returns up to models.MaxAirportResults airports whose code, name or city contains the keyword
func (d *AirportDirectory) SearchAirports(ctx context.Context, keyword string) ([]models.Airport, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(keyword)) + "%"
	rows, err := d.db.QueryContext(ctx, searchAirports, pattern, models.MaxAirportResults)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
			return nil, ErrDirectoryNotReady
		}
		return nil, fmt.Errorf("failed to search airports: %w", err)
	}
	defer rows.Close()

	airports := make([]models.Airport, 0, models.MaxAirportResults)
	for rows.Next() {
		var a models.Airport
		if err := rows.Scan(&a.IATACode, &a.Name, &a.CityName, &a.CountryName, &a.Lat, &a.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		a.IATACode = strings.TrimSpace(a.IATACode)
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read airports: %w", err)
	}
	return airports, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
