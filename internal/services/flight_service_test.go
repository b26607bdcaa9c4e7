package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_booking_frontend/internal/database"
	"flights_booking_frontend/internal/models"
)

var (
	paris  = &models.Airport{IATACode: "CDG", Name: "Charles de Gaulle Airport", CityName: "Paris", CountryName: "France"}
	london = &models.Airport{IATACode: "LHR", Name: "London Heathrow Airport", CityName: "London", CountryName: "United Kingdom"}
)

func newTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := database.WrapRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func testCriteria(departure string) models.SearchCriteria {
	return models.SearchCriteria{
		TripType:      models.TripTypeRoundTrip,
		Origin:        paris,
		Destination:   london,
		DepartureDate: departure,
		ReturnDate:    "2026-11-09",
		Passengers:    1,
		TravelClass:   models.CabinEconomy,
	}
}

// gatedSource answers flight searches with one flight per departure date. A search
// blocks while its departure date has a closed gate.
type gatedSource struct {
	mu       sync.Mutex
	calls    int32
	gates    map[string]chan struct{}
	entered  chan string
	criteria []models.SearchCriteria
	err      error
}

func newGatedSource() *gatedSource {
	return &gatedSource{gates: map[string]chan struct{}{}, entered: make(chan string, 16)}
}

func (s *gatedSource) gate(date string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[date] = ch
	return ch
}

func (s *gatedSource) SearchAirports(_ context.Context, _ string) ([]models.Airport, error) {
	return nil, ErrNotSupported
}

func (s *gatedSource) SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	s.criteria = append(s.criteria, criteria)
	gate := s.gates[criteria.DepartureDate]
	s.mu.Unlock()

	s.entered <- criteria.DepartureDate
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	id := "F-" + criteria.DepartureDate
	return &models.SearchResult{
		Flights:   []models.Flight{{ID: id, Price: 100, Currency: "EUR"}},
		RawOffers: map[string]models.ProviderOffer{id: models.ProviderOffer(`{"id":"` + id + `"}`)},
	}, nil
}

func (s *gatedSource) SeatMap(_ context.Context, _ models.ProviderOffer) (*models.ProviderSeatMapResponse, error) {
	return nil, ErrNotSupported
}

func (s *gatedSource) Upsell(_ context.Context, _ models.ProviderOffer) (*models.ProviderUpsellResponse, error) {
	return nil, ErrNotSupported
}

func TestSupersedeTracker(t *testing.T) {
	tr := newSupersedeTracker()

	first := tr.begin("s1")
	second := tr.begin("s1")
	other := tr.begin("s2")

	assert.False(t, tr.isLatest("s1", first))
	assert.True(t, tr.isLatest("s1", second))

	called := false
	assert.False(t, tr.commit("s1", first, func() { called = true }))
	assert.False(t, called)

	assert.True(t, tr.commit("s1", second, func() { called = true }))
	assert.True(t, called)
	// a ticket commits once
	assert.False(t, tr.commit("s1", second, nil))

	tr.abandon("s2", other)
	assert.False(t, tr.isLatest("s2", other))
}

func TestSupersedeTrackerCommitsKeysIndependently(t *testing.T) {
	tr := newSupersedeTracker()
	slow := tr.begin("s1:outbound")
	fast := tr.begin("s2:outbound")

	inside := make(chan struct{})
	hold := make(chan struct{})
	slowDone := make(chan bool, 1)
	go func() {
		slowDone <- tr.commit("s1:outbound", slow, func() {
			close(inside)
			<-hold
		})
	}()
	<-inside

	fastDone := make(chan bool, 1)
	go func() { fastDone <- tr.commit("s2:outbound", fast, nil) }()
	select {
	case ok := <-fastDone:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("commit on s2 waited for the commit on s1")
	}

	close(hold)
	assert.True(t, <-slowDone)
	assert.Empty(t, tr.keys)
}

func TestSupersedeTrackerSerializesCommitsPerKey(t *testing.T) {
	tr := newSupersedeTracker()
	first := tr.begin("s1:outbound")

	var order []string
	inside := make(chan struct{})
	hold := make(chan struct{})
	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- tr.commit("s1:outbound", first, func() {
			close(inside)
			<-hold
			order = append(order, "first")
		})
	}()
	<-inside

	second := tr.begin("s1:outbound")
	secondDone := make(chan bool, 1)
	go func() {
		secondDone <- tr.commit("s1:outbound", second, func() { order = append(order, "second") })
	}()
	select {
	case <-secondDone:
		t.Fatal("newer commit ran while an older one was still writing")
	case <-time.After(20 * time.Millisecond):
	}

	close(hold)
	assert.True(t, <-firstDone)
	assert.True(t, <-secondDone)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Empty(t, tr.keys)
}

func TestSearchFlightsSharedFetchOutlivesCancelledCaller(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	gate := source.gate("2026-11-02")
	fs := NewFlightService(source, cache, time.Minute)
	criteria := OutboundCriteria(testCriteria("2026-11-02"))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := fs.SearchFlights(ctx, criteria)
		first <- err
	}()
	<-source.entered

	second := make(chan *models.SearchResult, 1)
	go func() {
		r, err := fs.SearchFlights(context.Background(), criteria)
		assert.NoError(t, err)
		second <- r
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(gate)
	r := <-second
	require.NotNil(t, r)
	assert.Equal(t, "F-2026-11-02", r.Flights[0].ID)
	assert.EqualValues(t, 1, atomic.LoadInt32(&source.calls))
}

func TestSearchFlightsUsesCache(t *testing.T) {
	cache, mr := newTestCache(t)
	source := newGatedSource()
	fs := NewFlightService(source, cache, 10*time.Minute)
	ctx := context.Background()
	criteria := OutboundCriteria(testCriteria("2026-11-02"))

	first, err := fs.SearchFlights(ctx, criteria)
	require.NoError(t, err)
	second, err := fs.SearchFlights(ctx, criteria)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&source.calls))

	key := database.GenerateSearchCacheKey(criteria.CacheKey())
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))
}

func TestSearchFlightsCollapsesConcurrentSearches(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	gate := source.gate("2026-11-02")
	fs := NewFlightService(source, cache, time.Minute)
	criteria := OutboundCriteria(testCriteria("2026-11-02"))

	var wg sync.WaitGroup
	results := make([]*models.SearchResult, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := fs.SearchFlights(context.Background(), criteria)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	<-source.entered
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&source.calls))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "F-2026-11-02", r.Flights[0].ID)
	}
}

func TestSearchLatestDiscardsSupersededResponse(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	slow := source.gate("2026-11-02")
	fs := NewFlightService(source, cache, time.Minute)

	var mu sync.Mutex
	var committed []string
	commit := func(r *models.SearchResult) {
		mu.Lock()
		defer mu.Unlock()
		committed = append(committed, r.Flights[0].ID)
	}

	done := make(chan error, 1)
	go func() {
		_, err := fs.SearchOutbound(context.Background(), "session-1", testCriteria("2026-11-02"), commit)
		done <- err
	}()
	require.Equal(t, "2026-11-02", <-source.entered)

	latest, err := fs.SearchOutbound(context.Background(), "session-1", testCriteria("2026-11-03"), commit)
	require.NoError(t, err)
	<-source.entered
	assert.Equal(t, "F-2026-11-03", latest.Flights[0].ID)

	close(slow)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"F-2026-11-03"}, committed)
}

func TestSearchLatestIsPerSessionAndLeg(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	slow := source.gate("2026-11-02")
	fs := NewFlightService(source, cache, time.Minute)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := fs.SearchOutbound(ctx, "session-1", testCriteria("2026-11-02"), nil)
		done <- err
	}()
	<-source.entered

	_, err := fs.SearchOutbound(ctx, "session-2", testCriteria("2026-11-03"), nil)
	require.NoError(t, err)
	_, err = fs.SearchReturn(ctx, "session-1", testCriteria("2026-11-03"), nil)
	require.NoError(t, err)

	close(slow)
	assert.NoError(t, <-done)
}

func TestSearchReturnSwapsAirports(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	fs := NewFlightService(source, cache, time.Minute)

	result, err := fs.SearchReturn(context.Background(), "session-1", testCriteria("2026-11-02"), nil)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-11-09", result.Flights[0].ID)

	require.Len(t, source.criteria, 1)
	sent := source.criteria[0]
	assert.Equal(t, "LHR", sent.Origin.IATACode)
	assert.Equal(t, "CDG", sent.Destination.IATACode)
	assert.Equal(t, "2026-11-09", sent.DepartureDate)
	assert.Empty(t, sent.ReturnDate)
	assert.Equal(t, models.TripTypeOneWay, sent.TripType)
}

func TestSearchReturnWithoutReturnDate(t *testing.T) {
	cache, _ := newTestCache(t)
	source := newGatedSource()
	fs := NewFlightService(source, cache, time.Minute)

	criteria := testCriteria("2026-11-02")
	criteria.ReturnDate = ""
	_, err := fs.SearchReturn(context.Background(), "session-1", criteria, nil)
	assert.ErrorIs(t, err, ErrNoReturnDate)
	assert.EqualValues(t, 0, atomic.LoadInt32(&source.calls))
}

func TestSearchFlightsUpstreamError(t *testing.T) {
	cache, mr := newTestCache(t)
	source := newGatedSource()
	source.err = errors.New("connection refused")
	fs := NewFlightService(source, cache, time.Minute)
	criteria := OutboundCriteria(testCriteria("2026-11-02"))

	committed := false
	_, err := fs.SearchOutbound(context.Background(), "session-1", testCriteria("2026-11-02"), func(*models.SearchResult) {
		committed = true
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, committed)
	assert.False(t, mr.Exists(database.GenerateSearchCacheKey(criteria.CacheKey())))
}
