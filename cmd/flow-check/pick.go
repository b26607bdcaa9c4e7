package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/manifoldco/promptui"
	"golang.org/x/exp/maps"

	"flights_booking_frontend/internal/models"
)

// pickAirports looks airports up on the running frontend and lets the user choose origin and destination
func pickAirports(ctx context.Context, opts *options) error {
	fc, err := newFlowClient(0, opts.baseURL)
	if err != nil {
		return err
	}

	origin, err := pickAirport(ctx, fc, "From")
	if err != nil {
		return err
	}
	destination, err := pickAirport(ctx, fc, "To")
	if err != nil {
		return err
	}

	fmt.Printf("flow-check run --from %s --to %s\n", origin.IATACode, destination.IATACode)
	return nil
}

func pickAirport(ctx context.Context, fc *flowClient, label string) (models.Airport, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len([]rune(input)) < models.MinAirportKeywordLength {
				return errors.New("type at least two characters")
			}
			return nil
		},
	}
	keyword, err := prompt.Run()
	if err != nil {
		return models.Airport{}, err
	}

	var airports []models.Airport
	path := "/api/airports/search?keyword=" + url.QueryEscape(keyword)
	if err := fc.do(ctx, "airports", http.MethodGet, path, nil, &airports, http.StatusOK); err != nil {
		return models.Airport{}, err
	}
	if len(airports) == 0 {
		return models.Airport{}, fmt.Errorf("no airport matches %q", keyword)
	}

	byLabel := make(map[string]models.Airport, len(airports))
	for _, a := range airports {
		byLabel[fmt.Sprintf("%s (%s) %s", a.CityName, a.IATACode, a.Name)] = a
	}
	items := maps.Keys(byLabel)
	sort.Strings(items)

	selectAirport := promptui.Select{
		Label: "Select " + label,
		Items: items,
		Size:  10,
	}
	_, choice, err := selectAirport.Run()
	if err != nil {
		return models.Airport{}, err
	}
	airport, ok := byLabel[choice]
	if !ok {
		return models.Airport{}, fmt.Errorf("invalid airport %q", choice)
	}
	return airport, nil
}
