package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"flights_booking_frontend/internal/database"
	"flights_booking_frontend/internal/models"
)

// AirportCacheTTL is how long airport lookups stay cached
const AirportCacheTTL = time.Hour

// AirportService looks up airports for the search form. Lookups are debounced per client:
// only the latest keyword a client typed within the debounce window reaches the source.
type AirportService struct {
	source   AirportSource
	cache    *database.RedisClient
	debounce time.Duration
	lookups  *supersedeTracker
}

// NewAirportService creates a new airport service
func NewAirportService(source AirportSource, cache *database.RedisClient, debounce time.Duration) *AirportService {
	return &AirportService{
		source:   source,
		cache:    cache,
		debounce: debounce,
		lookups:  newSupersedeTracker(),
	}
}

// SearchAirports returns the airports matching keyword for the client. Keywords shorter
// than models.MinAirportKeywordLength return an empty list without a lookup. A lookup
// overtaken by a newer one from the same client returns ErrSuperseded.
func (as *AirportService) SearchAirports(ctx context.Context, clientKey, keyword string) ([]models.Airport, error) {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) < models.MinAirportKeywordLength {
		return []models.Airport{}, nil
	}

	ticket := as.lookups.begin(clientKey)
	if err := as.wait(ctx); err != nil {
		as.lookups.abandon(clientKey, ticket)
		return nil, err
	}
	if !as.lookups.isLatest(clientKey, ticket) {
		as.lookups.abandon(clientKey, ticket)
		return nil, ErrSuperseded
	}

	cacheKey := database.GenerateAirportCacheKey(keyword)
	var airports []models.Airport
	if err := as.cache.GetJSON(ctx, cacheKey, &airports); err == nil {
		if !as.lookups.commit(clientKey, ticket, nil) {
			return nil, ErrSuperseded
		}
		return airports, nil
	} else if !errors.Is(err, database.ErrCacheMiss) {
		log.Printf("Failed to read airport cache: %v", err)
	}

	airports, err := as.source.SearchAirports(ctx, keyword)
	if err != nil {
		as.lookups.abandon(clientKey, ticket)
		return nil, fmt.Errorf("airport search failed: %w", err)
	}
	if airports == nil {
		airports = []models.Airport{}
	}
	if err := as.cache.SetJSON(ctx, cacheKey, airports, AirportCacheTTL); err != nil {
		log.Printf("Failed to cache airports: %v", err)
	}

	if !as.lookups.commit(clientKey, ticket, nil) {
		return nil, ErrSuperseded
	}
	return airports, nil
}

func (as *AirportService) wait(ctx context.Context) error {
	if as.debounce <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(as.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
