package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"flights_booking_frontend/internal/database"
	"flights_booking_frontend/internal/models"
)

// supersedeTracker hands out increasing tickets per key. Only the holder of the
// latest ticket may commit its result. Commits on one key run one at a time,
// commits on different keys run in parallel.
type supersedeTracker struct {
	mu   sync.Mutex
	next uint64
	keys map[string]*trackedKey
}

// trackedKey is dropped once none of its tickets is in flight
type trackedKey struct {
	commitMu sync.Mutex
	latest   uint64
	inFlight map[uint64]struct{}
}

func newSupersedeTracker() *supersedeTracker {
	return &supersedeTracker{keys: make(map[string]*trackedKey)}
}

func (t *supersedeTracker) begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.keys[key]
	if !ok {
		k = &trackedKey{inFlight: make(map[uint64]struct{})}
		t.keys[key] = k
	}
	t.next++
	k.latest = t.next
	k.inFlight[t.next] = struct{}{}
	return t.next
}

func (t *supersedeTracker) isLatest(key string, ticket uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.keys[key]
	if !ok {
		return false
	}
	_, live := k.inFlight[ticket]
	return live && k.latest == ticket
}

// acquire returns the key of a ticket still in flight
func (t *supersedeTracker) acquire(key string, ticket uint64) *trackedKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.keys[key]
	if !ok {
		return nil
	}
	if _, live := k.inFlight[ticket]; !live {
		return nil
	}
	return k
}

func (t *supersedeTracker) release(key string, ticket uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.keys[key]
	if !ok {
		return
	}
	delete(k.inFlight, ticket)
	if len(k.inFlight) == 0 {
		delete(t.keys, key)
	}
}

// commit runs fn and retires the ticket if it is still the latest for key.
// fn runs under the key's commit lock only, so a slow commit holds up no other key.
func (t *supersedeTracker) commit(key string, ticket uint64, fn func()) bool {
	k := t.acquire(key, ticket)
	if k == nil {
		return false
	}
	defer t.release(key, ticket)

	k.commitMu.Lock()
	defer k.commitMu.Unlock()
	if !t.isLatest(key, ticket) {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// abandon retires a ticket that will not commit
func (t *supersedeTracker) abandon(key string, ticket uint64) {
	t.release(key, ticket)
}

// FlightService searches flights with caching, request collapsing and supersession
type FlightService struct {
	source   FlightDataSource
	cache    *database.RedisClient
	cacheTTL time.Duration
	// Singleflight group to prevent cache stampede
	searchGroup  singleflight.Group
	searches     *supersedeTracker
	fetchTimeout time.Duration
}

// DefaultFetchTimeout bounds a flight search shared by collapsed callers
const DefaultFetchTimeout = 30 * time.Second

// NewFlightService creates a new flight service
func NewFlightService(source FlightDataSource, cache *database.RedisClient, cacheTTL time.Duration) *FlightService {
	return &FlightService{
		source:       source,
		cache:        cache,
		cacheTTL:     cacheTTL,
		searchGroup:  singleflight.Group{},
		searches:     newSupersedeTracker(),
		fetchTimeout: DefaultFetchTimeout,
	}
}

// Source returns the underlying flight data source
func (fs *FlightService) Source() FlightDataSource {
	return fs.source
}

// SearchFlights returns the flights for the criteria from cache or from the source
func (fs *FlightService) SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	cacheKey := database.GenerateSearchCacheKey(criteria.CacheKey())

	var cached models.SearchResult
	if err := fs.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		log.Printf("Cache hit for search key: %s", cacheKey)
		return &cached, nil
	} else if !errors.Is(err, database.ErrCacheMiss) {
		log.Printf("Failed to read search cache: %v", err)
	}

	// Cache miss - use singleflight to prevent stampede. The shared fetch is
	// detached from the caller that started it, each caller waits on its own ctx.
	ch := fs.searchGroup.DoChan(cacheKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fs.fetchTimeout)
		defer cancel()
		result, err := fs.source.SearchFlights(fetchCtx, criteria)
		if err != nil {
			return nil, err
		}
		if err := fs.cache.SetJSON(fetchCtx, cacheKey, result, fs.cacheTTL); err != nil {
			log.Printf("Failed to cache search results: %v", err)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to search flights: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to search flights: %w", res.Err)
		}
		if res.Shared {
			log.Printf("Shared in-flight search for key: %s", cacheKey)
		}
		return cloneSearchResult(res.Val.(*models.SearchResult)), nil
	}
}

// SearchLatest runs a search on behalf of key (a session and leg). When a newer
// search for the same key started meanwhile, the result is dropped and
// ErrSuperseded returned. Otherwise commit is called with the result before
// any newer search can commit.
func (fs *FlightService) SearchLatest(ctx context.Context, key string, criteria models.SearchCriteria, commit func(*models.SearchResult)) (*models.SearchResult, error) {
	ticket := fs.searches.begin(key)

	result, err := fs.SearchFlights(ctx, criteria)
	if err != nil {
		fs.searches.abandon(key, ticket)
		return nil, err
	}

	ok := fs.searches.commit(key, ticket, func() {
		if commit != nil {
			commit(result)
		}
	})
	if !ok {
		log.Printf("Discarding superseded search for %s", key)
		return nil, ErrSuperseded
	}
	return result, nil
}

func cloneSearchResult(r *models.SearchResult) *models.SearchResult {
	c := &models.SearchResult{
		Flights:   append([]models.Flight{}, r.Flights...),
		RawOffers: make(map[string]models.ProviderOffer, len(r.RawOffers)),
	}
	for id, offer := range r.RawOffers {
		c.RawOffers[id] = offer
	}
	return c
}

// SearchOutbound searches the outbound leg for a session
func (fs *FlightService) SearchOutbound(ctx context.Context, sessionID string, criteria models.SearchCriteria, commit func(*models.SearchResult)) (*models.SearchResult, error) {
	return fs.SearchLatest(ctx, sessionID+":outbound", OutboundCriteria(criteria), commit)
}

// SearchReturn searches the return leg for a session
func (fs *FlightService) SearchReturn(ctx context.Context, sessionID string, criteria models.SearchCriteria, commit func(*models.SearchResult)) (*models.SearchResult, error) {
	ret, err := ReturnCriteria(criteria)
	if err != nil {
		return nil, err
	}
	return fs.SearchLatest(ctx, sessionID+":return", ret, commit)
}
