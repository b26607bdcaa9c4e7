package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"flights_booking_frontend/internal/handlers"
	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/services"
)

// StepResult is the outcome of one request of a walkthrough
type StepResult struct {
	User       int
	Step       string
	StatusCode int
	Duration   time.Duration
	Note       string
	Err        error
}

type flowClient struct {
	user    int
	baseURL string
	client  *http.Client
	results []StepResult
}

func newFlowClient(user int, baseURL string) (*flowClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &flowClient{
		user:    user,
		baseURL: baseURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			// guard redirects are part of what is checked
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// do sends one request and records it. out is decoded when the status matches expected.
func (fc *flowClient) do(ctx context.Context, step, method, path string, in, out interface{}, expected int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, fc.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := fc.client.Do(req)
	result := StepResult{User: fc.user, Step: step, Duration: time.Since(start)}
	if err != nil {
		result.Err = err
		fc.results = append(fc.results, result)
		return err
	}
	defer resp.Body.Close()
	result.StatusCode = resp.StatusCode

	if resp.StatusCode != expected {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		result.Err = fmt.Errorf("expected status %d, got %d: %s", expected, resp.StatusCode, bytes.TrimSpace(snippet))
		fc.results = append(fc.results, result)
		return result.Err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			result.Err = fmt.Errorf("failed to decode response: %w", err)
			fc.results = append(fc.results, result)
			return result.Err
		}
	}
	fc.results = append(fc.results, result)
	return nil
}

func (fc *flowClient) note(format string, args ...interface{}) {
	if n := len(fc.results); n > 0 {
		fc.results[n-1].Note = fmt.Sprintf(format, args...)
	}
}

// walk books one trip from search to confirmation
func (fc *flowClient) walk(ctx context.Context, criteria models.SearchCriteria) error {
	var redirect handlers.RedirectResponse
	if err := fc.do(ctx, "review before search", http.MethodGet, "/review", nil, &redirect, http.StatusSeeOther); err != nil {
		return err
	}
	fc.note("redirected to %s", redirect.Redirect)

	if err := fc.do(ctx, "search", http.MethodPost, "/search", criteria, nil, http.StatusOK); err != nil {
		return err
	}

	if err := fc.bookLeg(ctx, services.LegOutbound); err != nil {
		return err
	}
	if criteria.IsRoundTrip() {
		if err := fc.bookLeg(ctx, services.LegReturn); err != nil {
			return err
		}
	}

	var review services.ReviewView
	if err := fc.do(ctx, "review", http.MethodGet, "/review", nil, &review, http.StatusOK); err != nil {
		return err
	}
	fc.note("total %.2f %s", review.TotalPrice, review.Currency)

	var confirmed handlers.ConfirmResponse
	if err := fc.do(ctx, "confirm", http.MethodPost, "/review/confirm", nil, &confirmed, http.StatusCreated); err != nil {
		return err
	}
	fc.note("%s", confirmed.BookingReference)

	var summary models.BookingSummary
	if err := fc.do(ctx, "thank you", http.MethodGet, confirmed.Redirect, nil, &summary, http.StatusOK); err != nil {
		return err
	}
	if summary.TotalPrice != review.TotalPrice {
		fc.results[len(fc.results)-1].Err = fmt.Errorf("summary total %.2f differs from review total %.2f", summary.TotalPrice, review.TotalPrice)
		return fc.results[len(fc.results)-1].Err
	}
	fc.note("v%d", summary.Version)

	return fc.do(ctx, "thank you again", http.MethodGet, confirmed.Redirect, nil, nil, http.StatusSeeOther)
}

func (fc *flowClient) bookLeg(ctx context.Context, leg services.Leg) error {
	path := "/flights/" + string(leg)

	var results services.FlightResults
	if err := fc.do(ctx, string(leg)+" results", http.MethodGet, path, nil, &results, http.StatusOK); err != nil {
		return err
	}
	if len(results.Flights) == 0 {
		return fmt.Errorf("no %s flights", leg)
	}
	cheapest := results.Flights[0]
	fc.note("%d flights, cheapest %s at %.2f", results.Total, cheapest.ID, cheapest.Price)

	selectReq := handlers.SelectFlightRequest{FlightID: cheapest.ID}
	if err := fc.do(ctx, string(leg)+" select", http.MethodPost, path+"/select", selectReq, nil, http.StatusOK); err != nil {
		return err
	}

	var view services.SeatMapView
	if err := fc.do(ctx, string(leg)+" seat map", http.MethodGet, path+"/seatmap", nil, &view, http.StatusOK); err != nil {
		return err
	}
	seats := services.SeatsRequest{Luggage: view.SelectedLuggage}
	for _, seat := range view.SeatMap.Seats {
		if len(seats.Seats) == view.Passengers {
			break
		}
		if seat.Selectable() {
			seats.Seats = append(seats.Seats, seat.ID)
		}
	}
	fc.note("%s, %d seats", view.SeatMap.Aircraft, len(view.SeatMap.Seats))

	var next handlers.NextResponse
	if err := fc.do(ctx, string(leg)+" seats", http.MethodPut, path+"/seats", seats, &next, http.StatusOK); err != nil {
		return err
	}
	fc.note("%v, next %s", seats.Seats, next.Next)
	return nil
}

func runFlows(ctx context.Context, opts *options) error {
	criteria, err := opts.criteria()
	if err != nil {
		return err
	}

	log.Printf("Starting %d booking walkthroughs against %s", opts.users, opts.baseURL)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []StepResult
		failed  int
	)
	for i := 1; i <= opts.users; i++ {
		fc, err := newFlowClient(i, opts.baseURL)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(fc *flowClient) {
			defer wg.Done()
			err := fc.walk(ctx, criteria)

			mu.Lock()
			defer mu.Unlock()
			results = append(results, fc.results...)
			if err != nil {
				failed++
			}
		}(fc)
	}
	wg.Wait()

	renderResults(results)
	log.Printf("Walkthroughs completed: %d of %d succeeded", opts.users-failed, opts.users)
	if failed > 0 {
		return fmt.Errorf("%d walkthroughs failed", failed)
	}
	return nil
}

func renderResults(results []StepResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"User", "Step", "Status", "Duration", "Note"}, table.RowConfig{AutoMerge: true})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 5, WidthMax: 60},
	})

	for _, r := range sortedByUser(results) {
		note := r.Note
		if r.Err != nil {
			note = "FAILED: " + r.Err.Error()
		}
		t.AppendRow(table.Row{r.User, r.Step, r.StatusCode, r.Duration.Round(time.Millisecond), note})
	}
	t.Render()
}

func sortedByUser(results []StepResult) []StepResult {
	byUser := make(map[int][]StepResult)
	maxUser := 0
	for _, r := range results {
		byUser[r.User] = append(byUser[r.User], r)
		if r.User > maxUser {
			maxUser = r.User
		}
	}
	sorted := make([]StepResult, 0, len(results))
	for u := 1; u <= maxUser; u++ {
		sorted = append(sorted, byUser[u]...)
	}
	return sorted
}
