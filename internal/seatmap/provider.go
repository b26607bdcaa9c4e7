package seatmap

import (
	"context"
	"fmt"
	"log"

	"flights_booking_frontend/internal/models"
)

// Inventory looks up provider seat maps and branded fares for a raw offer
type Inventory interface {
	SeatMap(ctx context.Context, offer models.ProviderOffer) (*models.ProviderSeatMapResponse, error)
	Upsell(ctx context.Context, offer models.ProviderOffer) (*models.ProviderUpsellResponse, error)
}

// InventoryProvider serves seat maps and luggage from a real inventory lookup
type InventoryProvider struct {
	inventory Inventory
}

// NewInventoryProvider creates a new inventory-backed provider
func NewInventoryProvider(inventory Inventory) *InventoryProvider {
	return &InventoryProvider{inventory: inventory}
}

// SeatMap fetches and transforms the provider seat map of the request's offer
func (p *InventoryProvider) SeatMap(ctx context.Context, req Request) (models.SeatMap, error) {
	if err := models.ValidateOffer(req.RawOffer); err != nil {
		return models.SeatMap{}, err
	}
	resp, err := p.inventory.SeatMap(ctx, req.RawOffer)
	if err != nil {
		return models.SeatMap{}, fmt.Errorf("failed to fetch seat map: %w", err)
	}
	return BuildSeatMap(TransformSeatMap(resp, req.Cabin)), nil
}

// Luggage fetches and transforms the branded fares of the request's offer
func (p *InventoryProvider) Luggage(ctx context.Context, req Request) ([]models.LuggageOption, error) {
	if err := models.ValidateOffer(req.RawOffer); err != nil {
		return nil, err
	}
	resp, err := p.inventory.Upsell(ctx, req.RawOffer)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upsell offers: %w", err)
	}
	return TransformUpsell(resp, req.Cabin), nil
}

// FallbackProvider asks the primary provider first and degrades to the secondary
// when it fails or has nothing for the cabin.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
}

// NewFallbackProvider creates a provider chain
func NewFallbackProvider(primary, secondary Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, secondary: secondary}
}

// SeatMap returns the primary seat map, or the secondary one when the primary fails or is empty
func (p *FallbackProvider) SeatMap(ctx context.Context, req Request) (models.SeatMap, error) {
	sm, err := p.primary.SeatMap(ctx, req)
	if err == nil && len(sm.Seats) > 0 {
		return sm, nil
	}
	if err != nil {
		log.Printf("Seat map lookup failed for flight %s, using generated map: %v", req.Flight.ID, err)
	}
	return p.secondary.SeatMap(ctx, req)
}

// Luggage returns the primary luggage options, or the secondary ones when the primary fails
func (p *FallbackProvider) Luggage(ctx context.Context, req Request) ([]models.LuggageOption, error) {
	options, err := p.primary.Luggage(ctx, req)
	if err == nil && len(options) > 0 {
		return options, nil
	}
	if err != nil {
		log.Printf("Luggage lookup failed for flight %s, using standard table: %v", req.Flight.ID, err)
	}
	return p.secondary.Luggage(ctx, req)
}
