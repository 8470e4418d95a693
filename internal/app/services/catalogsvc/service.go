// Package catalogsvc manages catalog sections and the publishable items
// (products and services). Publication state itself is owned by the
// publication service; this package only exposes read access to a section's
// mapping rows.
package catalogsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Service manages sections, products, and services.
type Service struct {
	store storage.CatalogStore
	log   *logger.Logger
}

// New constructs a catalog service.
func New(store storage.CatalogStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{store: store, log: log}
}

// CreateSection registers a new section at the end of the sibling order. An
// empty slug is derived from the name.
func (s *Service) CreateSection(ctx context.Context, name, slug string) (catalog.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Section{}, fmt.Errorf("name is required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = slugify(name)
	}

	created, err := s.store.CreateSection(ctx, catalog.Section{Name: name, Slug: slug})
	if err != nil {
		return catalog.Section{}, err
	}
	s.log.WithField("section_id", created.ID).WithField("slug", created.Slug).Info("section created")
	return created, nil
}

// UpdateSection modifies a section's name and slug. Position is managed by
// ReorderSections only.
func (s *Service) UpdateSection(ctx context.Context, id string, name, slug *string) (catalog.Section, error) {
	sec, err := s.store.GetSection(ctx, id)
	if err != nil {
		return catalog.Section{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return catalog.Section{}, fmt.Errorf("name cannot be empty")
		}
		sec.Name = trimmed
	}
	if slug != nil {
		trimmed := strings.TrimSpace(*slug)
		if trimmed == "" {
			return catalog.Section{}, fmt.Errorf("slug cannot be empty")
		}
		sec.Slug = trimmed
	}

	return s.store.UpdateSection(ctx, sec)
}

// GetSection returns one section.
func (s *Service) GetSection(ctx context.Context, id string) (catalog.Section, error) {
	return s.store.GetSection(ctx, id)
}

// ListSections returns all sections ordered by position.
func (s *Service) ListSections(ctx context.Context) ([]catalog.Section, error) {
	return s.store.ListSections(ctx)
}

// DeleteSection removes a section together with its mapping rows and closes
// the position gap among the surviving siblings.
func (s *Service) DeleteSection(ctx context.Context, id string) error {
	if err := s.store.DeleteSection(ctx, id); err != nil {
		return err
	}
	s.log.WithField("section_id", id).Info("section deleted")
	return nil
}

// ReorderSections rewrites the sibling order to match orderedIDs, which must
// name every section exactly once.
func (s *Service) ReorderSections(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return fmt.Errorf("section_ids is required")
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate section id %s", id)
		}
		seen[id] = struct{}{}
	}
	return s.store.ReorderSections(ctx, orderedIDs)
}

// SectionMappings returns a section's mapping rows ordered by position.
func (s *Service) SectionMappings(ctx context.Context, kind catalog.ItemKind, sectionID string) ([]catalog.Mapping, error) {
	if !catalog.ValidItemKind(kind) {
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	if _, err := s.store.GetSection(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.store.ListSectionMappings(ctx, kind, sectionID)
}

// CreateProduct registers a new product in draft status unless another valid
// status is given.
func (s *Service) CreateProduct(ctx context.Context, sku, name, description string, status catalog.ItemStatus) (catalog.Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return catalog.Product{}, fmt.Errorf("sku is required")
	}
	if name == "" {
		return catalog.Product{}, fmt.Errorf("name is required")
	}
	if status == "" {
		status = catalog.StatusDraft
	}
	if !catalog.ValidItemStatus(status) {
		return catalog.Product{}, fmt.Errorf("unknown status %q", status)
	}

	created, err := s.store.CreateProduct(ctx, catalog.Product{
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      status,
	})
	if err != nil {
		return catalog.Product{}, err
	}
	s.log.WithField("product_id", created.ID).WithField("sku", sku).Info("product created")
	return created, nil
}

// UpdateProduct modifies a product's mutable fields. The published flag is
// derived from the mapping tables and cannot be set here.
func (s *Service) UpdateProduct(ctx context.Context, id string, name, description *string, status *catalog.ItemStatus) (catalog.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return catalog.Product{}, fmt.Errorf("name cannot be empty")
		}
		p.Name = trimmed
	}
	if description != nil {
		p.Description = strings.TrimSpace(*description)
	}
	if status != nil {
		if !catalog.ValidItemStatus(*status) {
			return catalog.Product{}, fmt.Errorf("unknown status %q", *status)
		}
		p.Status = *status
	}

	return s.store.UpdateProduct(ctx, p)
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// ListProducts returns all products ordered by creation time.
func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.store.ListProducts(ctx)
}

// DeleteProduct removes a product and its mapping rows.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// CreateService registers a new service offering.
func (s *Service) CreateService(ctx context.Context, name, description string, status catalog.ItemStatus) (catalog.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Service{}, fmt.Errorf("name is required")
	}
	if status == "" {
		status = catalog.StatusDraft
	}
	if !catalog.ValidItemStatus(status) {
		return catalog.Service{}, fmt.Errorf("unknown status %q", status)
	}

	created, err := s.store.CreateService(ctx, catalog.Service{
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      status,
	})
	if err != nil {
		return catalog.Service{}, err
	}
	s.log.WithField("service_id", created.ID).Info("service created")
	return created, nil
}

// UpdateService modifies a service's mutable fields.
func (s *Service) UpdateService(ctx context.Context, id string, name, description *string, status *catalog.ItemStatus) (catalog.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return catalog.Service{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return catalog.Service{}, fmt.Errorf("name cannot be empty")
		}
		svc.Name = trimmed
	}
	if description != nil {
		svc.Description = strings.TrimSpace(*description)
	}
	if status != nil {
		if !catalog.ValidItemStatus(*status) {
			return catalog.Service{}, fmt.Errorf("unknown status %q", *status)
		}
		svc.Status = *status
	}

	return s.store.UpdateService(ctx, svc)
}

// GetService returns one service.
func (s *Service) GetService(ctx context.Context, id string) (catalog.Service, error) {
	return s.store.GetService(ctx, id)
}

// ListServices returns all services ordered by creation time.
func (s *Service) ListServices(ctx context.Context) ([]catalog.Service, error) {
	return s.store.ListServices(ctx)
}

// DeleteService removes a service and its mapping rows.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	return s.store.DeleteService(ctx, id)
}

// slugify lowercases the name and replaces runs of non-alphanumerics with a
// single hyphen.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
