package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flights_booking_frontend/internal/models"
)

const (
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

// APIError is returned when the flight API responds with a non-2xx status
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "flight api error"
	}
	return fmt.Sprintf("flight api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// HTTPFlightSource reads flights from a remote flight API
type HTTPFlightSource struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// NewHTTPFlightSource creates a new remote flight source. If httpClient is nil, a default client is used.
func NewHTTPFlightSource(baseURL string, httpClient *http.Client) *HTTPFlightSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFlightSource{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

type flightSearchRequest struct {
	OriginLocationCode      string `json:"originLocationCode"`
	DestinationLocationCode string `json:"destinationLocationCode"`
	DepartureDate           string `json:"departureDate"`
	ReturnDate              string `json:"returnDate,omitempty"`
	Adults                  int    `json:"adults"`
	TravelClass             string `json:"travelClass"`
}

type offerRequest struct {
	FlightOffer models.ProviderOffer `json:"flightOffer"`
}

// SearchAirports calls GET /airports/search
func (s *HTTPFlightSource) SearchAirports(ctx context.Context, keyword string) ([]models.Airport, error) {
	endpoint := fmt.Sprintf("%s/airports/search?keyword=%s", s.baseURL, url.QueryEscape(keyword))
	var airports []models.Airport
	if err := s.doJSON(ctx, http.MethodGet, endpoint, nil, &airports); err != nil {
		return nil, err
	}
	if airports == nil {
		airports = []models.Airport{}
	}
	return airports, nil
}

// SearchFlights calls POST /flights/search
func (s *HTTPFlightSource) SearchFlights(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	if criteria.Origin == nil || criteria.Destination == nil {
		return nil, fmt.Errorf("%w: origin and destination are required", models.ErrInvalidCriteria)
	}
	body := flightSearchRequest{
		OriginLocationCode:      criteria.Origin.IATACode,
		DestinationLocationCode: criteria.Destination.IATACode,
		DepartureDate:           criteria.DepartureDate,
		ReturnDate:              criteria.ReturnDate,
		Adults:                  criteria.Passengers,
		TravelClass:             criteria.TravelClass.ProviderCode(),
	}

	var result models.SearchResult
	if err := s.doJSON(ctx, http.MethodPost, s.baseURL+"/flights/search", body, &result); err != nil {
		return nil, err
	}
	if result.Flights == nil {
		result.Flights = []models.Flight{}
	}
	if result.RawOffers == nil {
		result.RawOffers = map[string]models.ProviderOffer{}
	}
	return &result, nil
}

// SeatMap calls POST /flights/seatmap with the raw offer
func (s *HTTPFlightSource) SeatMap(ctx context.Context, offer models.ProviderOffer) (*models.ProviderSeatMapResponse, error) {
	var resp models.ProviderSeatMapResponse
	if err := s.doJSON(ctx, http.MethodPost, s.baseURL+"/flights/seatmap", offerRequest{FlightOffer: offer}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upsell calls POST /flights/upsell with the raw offer
func (s *HTTPFlightSource) Upsell(ctx context.Context, offer models.ProviderOffer) (*models.ProviderUpsellResponse, error) {
	var resp models.ProviderUpsellResponse
	if err := s.doJSON(ctx, http.MethodPost, s.baseURL+"/flights/upsell", offerRequest{FlightOffer: offer}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *HTTPFlightSource) doJSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	maxAttempts := s.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := s.httpClient.Do(req)
		if err != nil {
			if shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := s.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request to %s failed: %w", endpoint, err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
			_ = res.Body.Close()

			apiErr := &APIError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := s.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		err = json.NewDecoder(res.Body).Decode(out)
		_ = res.Body.Close()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func shouldRetryNetworkError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (s *HTTPFlightSource) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(s.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *HTTPFlightSource) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := s.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	limit := s.retryCap
	if limit <= 0 {
		limit = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= limit/2 {
			return limit
		}
		delay *= 2
	}
	if delay > limit {
		return limit
	}
	return delay
}
