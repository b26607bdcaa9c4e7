package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/exp/maps"

	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/seatmap"
	"flights_booking_frontend/internal/services"
)

// printOffers shows what the generated flight source answers for a search, without a server
func printOffers(ctx context.Context, opts *options) error {
	criteria, err := opts.criteria()
	if err != nil {
		return err
	}

	source := services.NewMockFlightSource(services.NewAirportCatalog(), 0)
	outbound, err := services.SearchOutboundFlights(ctx, source, criteria)
	if err != nil {
		return err
	}
	renderOffers("Outbound", outbound, criteria.TravelClass)

	if criteria.IsRoundTrip() {
		ret, err := services.SearchReturnFlights(ctx, source, criteria)
		if err != nil {
			return err
		}
		renderOffers("Return", ret, criteria.TravelClass)
	}
	return nil
}

func renderOffers(title string, result *models.SearchResult, cabin models.CabinClass) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Flight", "Airline", "Departure", "Duration", "Stops", "Aircraft", "Price", "Free Seats"})

	for _, f := range result.Flights {
		seg := f.FirstSegment()
		if seg == nil {
			continue
		}
		seatMap := seatmap.Generate(f, cabin, 0)
		free := 0
		for i := range seatMap.Seats {
			if seatMap.Seats[i].Selectable() {
				free++
			}
		}
		t.AppendRow(table.Row{
			f.ID, f.ValidatingAirline, seg.DepartureTime, f.TotalDuration, f.TotalStops,
			seatMap.Aircraft, fmt.Sprintf("%.2f %s", f.Price, f.Currency), free,
		})
	}

	offerIDs := maps.Keys(result.RawOffers)
	sort.Strings(offerIDs)
	t.AppendFooter(table.Row{"Offers", fmt.Sprint(offerIDs)})
	t.Render()
}
