// Package pricing manages per-region product prices.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercegrid/backoffice/internal/app/domain/pricing"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Service manages prices. A product has at most one price per region;
// setting a price for an existing (product, region) pair overwrites it.
type Service struct {
	catalog storage.CatalogStore
	regions storage.RegionStore
	store   storage.PricingStore
	log     *logger.Logger
}

// New constructs a pricing service.
func New(catalog storage.CatalogStore, regions storage.RegionStore, store storage.PricingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("pricing")
	}
	return &Service{catalog: catalog, regions: regions, store: store, log: log}
}

// Set creates or overwrites the price of a product in a region. Amount is in
// the currency's minor unit. The currency is taken from the region.
func (s *Service) Set(ctx context.Context, productID, regionID string, amount int64) (pricing.Price, error) {
	productID = strings.TrimSpace(productID)
	regionID = strings.TrimSpace(regionID)
	if productID == "" {
		return pricing.Price{}, fmt.Errorf("product_id is required")
	}
	if regionID == "" {
		return pricing.Price{}, fmt.Errorf("region_id is required")
	}
	if amount < 0 {
		return pricing.Price{}, fmt.Errorf("amount cannot be negative")
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return pricing.Price{}, fmt.Errorf("product %s: %w", productID, err)
	}
	r, err := s.regions.GetRegion(ctx, regionID)
	if err != nil {
		return pricing.Price{}, fmt.Errorf("region %s: %w", regionID, err)
	}

	price, err := s.store.UpsertPrice(ctx, pricing.Price{
		ProductID: productID,
		RegionID:  regionID,
		Currency:  r.Currency,
		Amount:    amount,
	})
	if err != nil {
		return pricing.Price{}, err
	}

	s.log.WithField("product_id", productID).
		WithField("region_id", regionID).
		WithField("amount", amount).
		Info("price set")
	return price, nil
}

// ListForProduct returns every regional price of one product.
func (s *Service) ListForProduct(ctx context.Context, productID string) ([]pricing.Price, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.ListPrices(ctx, productID)
}

// Delete removes the price of a product in one region.
func (s *Service) Delete(ctx context.Context, productID, regionID string) error {
	return s.store.DeletePrice(ctx, productID, regionID)
}
