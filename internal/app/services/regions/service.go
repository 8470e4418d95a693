// Package regions manages sales regions.
package regions

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercegrid/backoffice/internal/app/domain/region"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Service manages regions.
type Service struct {
	store storage.RegionStore
	log   *logger.Logger
}

// New constructs a region service.
func New(store storage.RegionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("regions")
	}
	return &Service{store: store, log: log}
}

// Create registers a new region.
func (s *Service) Create(ctx context.Context, code, name, currency string) (region.Region, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if code == "" {
		return region.Region{}, fmt.Errorf("code is required")
	}
	if name == "" {
		return region.Region{}, fmt.Errorf("name is required")
	}
	if len(currency) != 3 {
		return region.Region{}, fmt.Errorf("currency must be a 3-letter code")
	}

	created, err := s.store.CreateRegion(ctx, region.Region{Code: code, Name: name, Currency: currency})
	if err != nil {
		return region.Region{}, err
	}
	s.log.WithField("region_id", created.ID).WithField("code", code).Info("region created")
	return created, nil
}

// Update modifies a region's mutable fields.
func (s *Service) Update(ctx context.Context, id string, name, currency *string) (region.Region, error) {
	r, err := s.store.GetRegion(ctx, id)
	if err != nil {
		return region.Region{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return region.Region{}, fmt.Errorf("name cannot be empty")
		}
		r.Name = trimmed
	}
	if currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*currency))
		if len(cur) != 3 {
			return region.Region{}, fmt.Errorf("currency must be a 3-letter code")
		}
		r.Currency = cur
	}

	return s.store.UpdateRegion(ctx, r)
}

// Get returns one region.
func (s *Service) Get(ctx context.Context, id string) (region.Region, error) {
	return s.store.GetRegion(ctx, id)
}

// List returns all regions ordered by code.
func (s *Service) List(ctx context.Context) ([]region.Region, error) {
	return s.store.ListRegions(ctx)
}

// Delete removes one region.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteRegion(ctx, id)
}
