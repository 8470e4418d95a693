// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/domain/group"
	"github.com/commercegrid/backoffice/internal/app/domain/pricing"
	"github.com/commercegrid/backoffice/internal/app/domain/region"
	"github.com/commercegrid/backoffice/internal/app/domain/user"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

// Store keeps every entity in maps guarded by one mutex.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	groups       map[string]group.Group
	memberships  map[string][]group.Membership
	regions      map[string]region.Region
	prices       map[string]pricing.Price
	sections     map[string]catalog.Section
	products     map[string]catalog.Product
	services     map[string]catalog.Service
	mappings     map[catalog.ItemKind]map[string][]catalog.Mapping
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.GroupStore = (*Store)(nil)
var _ storage.RegionStore = (*Store)(nil)
var _ storage.PricingStore = (*Store)(nil)
var _ storage.CatalogStore = (*Store)(nil)
var _ storage.PublicationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		groups:       make(map[string]group.Group),
		memberships:  make(map[string][]group.Membership),
		regions:      make(map[string]region.Region),
		prices:       make(map[string]pricing.Price),
		sections:     make(map[string]catalog.Section),
		products:     make(map[string]catalog.Product),
		services:     make(map[string]catalog.Service),
		mappings: map[catalog.ItemKind]map[string][]catalog.Mapping{
			catalog.KindProduct: make(map[string][]catalog.Mapping),
			catalog.KindService: make(map[string][]catalog.Mapping),
		},
	}
}

func priceKey(productID, regionID string) string {
	return productID + "/" + regionID
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	if _, exists := s.usersByEmail[strings.ToLower(u.Email)]; exists {
		return user.User{}, fmt.Errorf("email %s already in use", u.Email)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	if !strings.EqualFold(original.Email, u.Email) {
		if _, exists := s.usersByEmail[strings.ToLower(u.Email)]; exists {
			return user.User{}, fmt.Errorf("email %s already in use", u.Email)
		}
		delete(s.usersByEmail, strings.ToLower(original.Email))
		s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	delete(s.usersByEmail, strings.ToLower(u.Email))
	for groupID, members := range s.memberships {
		s.memberships[groupID] = removeMember(members, id)
	}
	return nil
}

func removeMember(members []group.Membership, userID string) []group.Membership {
	out := members[:0]
	for _, m := range members {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	return out
}

// GroupStore implementation ---------------------------------------------------

func (s *Store) CreateGroup(_ context.Context, g group.Group) (group.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	} else if _, exists := s.groups[g.ID]; exists {
		return group.Group{}, fmt.Errorf("group %s already exists", g.ID)
	}

	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.groups[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGroup(_ context.Context, g group.Group) (group.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.groups[g.ID]
	if !ok {
		return group.Group{}, storage.ErrNotFound
	}
	g.CreatedAt = original.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	s.groups[g.ID] = g
	return g, nil
}

func (s *Store) GetGroup(_ context.Context, id string) (group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return group.Group{}, storage.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGroups(_ context.Context) ([]group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]group.Group, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.groups, id)
	delete(s.memberships, id)
	return nil
}

func (s *Store) AddMembership(_ context.Context, m group.Membership) (group.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[m.GroupID]; !ok {
		return group.Membership{}, storage.ErrNotFound
	}
	for _, existing := range s.memberships[m.GroupID] {
		if existing.UserID == m.UserID {
			return existing, nil
		}
	}
	m.AddedAt = time.Now().UTC()
	s.memberships[m.GroupID] = append(s.memberships[m.GroupID], m)
	return m, nil
}

func (s *Store) RemoveMembership(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.memberships[groupID]
	for i, m := range members {
		if m.UserID == userID {
			s.memberships[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) ListMemberships(_ context.Context, groupID string) ([]group.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]group.Membership(nil), s.memberships[groupID]...), nil
}

// RegionStore implementation --------------------------------------------------

func (s *Store) CreateRegion(_ context.Context, r region.Region) (region.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if _, exists := s.regions[r.ID]; exists {
		return region.Region{}, fmt.Errorf("region %s already exists", r.ID)
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.regions[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRegion(_ context.Context, r region.Region) (region.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.regions[r.ID]
	if !ok {
		return region.Region{}, storage.ErrNotFound
	}
	r.CreatedAt = original.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	s.regions[r.ID] = r
	return r, nil
}

func (s *Store) GetRegion(_ context.Context, id string) (region.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.regions[id]
	if !ok {
		return region.Region{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRegions(_ context.Context) ([]region.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]region.Region, 0, len(s.regions))
	for _, r := range s.regions {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (s *Store) DeleteRegion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.regions, id)
	return nil
}

// PricingStore implementation -------------------------------------------------

func (s *Store) UpsertPrice(_ context.Context, p pricing.Price) (pricing.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := priceKey(p.ProductID, p.RegionID)
	now := time.Now().UTC()
	if existing, ok := s.prices[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.prices[key] = p
	return p, nil
}

func (s *Store) ListPrices(_ context.Context, productID string) ([]pricing.Price, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []pricing.Price
	for _, p := range s.prices {
		if p.ProductID == productID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegionID < result[j].RegionID })
	return result, nil
}

func (s *Store) DeletePrice(_ context.Context, productID, regionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := priceKey(productID, regionID)
	if _, ok := s.prices[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.prices, key)
	return nil
}

// CatalogStore implementation -------------------------------------------------

func (s *Store) CreateSection(_ context.Context, sec catalog.Section) (catalog.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sec.ID == "" {
		sec.ID = uuid.NewString()
	} else if _, exists := s.sections[sec.ID]; exists {
		return catalog.Section{}, fmt.Errorf("section %s already exists", sec.ID)
	}
	now := time.Now().UTC()
	sec.CreatedAt = now
	sec.UpdatedAt = now
	sec.Position = len(s.sections)
	s.sections[sec.ID] = sec
	return sec, nil
}

func (s *Store) UpdateSection(_ context.Context, sec catalog.Section) (catalog.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.sections[sec.ID]
	if !ok {
		return catalog.Section{}, storage.ErrNotFound
	}
	sec.Position = original.Position
	sec.CreatedAt = original.CreatedAt
	sec.UpdatedAt = time.Now().UTC()
	s.sections[sec.ID] = sec
	return sec, nil
}

func (s *Store) GetSection(_ context.Context, id string) (catalog.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := s.sections[id]
	if !ok {
		return catalog.Section{}, storage.ErrNotFound
	}
	return sec, nil
}

func (s *Store) ListSections(_ context.Context) ([]catalog.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		result = append(result, sec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (s *Store) DeleteSection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, ok := s.sections[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.sections, id)
	for key, sec := range s.sections {
		if sec.Position > deleted.Position {
			sec.Position--
			s.sections[key] = sec
		}
	}
	for kind := range s.mappings {
		orphaned := s.mappings[kind][id]
		delete(s.mappings[kind], id)
		for _, m := range orphaned {
			s.refreshPublishedLocked(kind, m.ItemID)
		}
	}
	return nil
}

// refreshPublishedLocked recomputes one item's derived published flag from
// the mapping tables. Caller holds the write lock.
func (s *Store) refreshPublishedLocked(kind catalog.ItemKind, itemID string) {
	published := false
	for _, rows := range s.mappings[kind] {
		for _, m := range rows {
			if m.ItemID == itemID {
				published = true
				break
			}
		}
		if published {
			break
		}
	}
	switch kind {
	case catalog.KindProduct:
		if p, ok := s.products[itemID]; ok && p.Published != published {
			p.Published = published
			p.UpdatedAt = time.Now().UTC()
			s.products[itemID] = p
		}
	case catalog.KindService:
		if svc, ok := s.services[itemID]; ok && svc.Published != published {
			svc.Published = published
			svc.UpdatedAt = time.Now().UTC()
			s.services[itemID] = svc
		}
	}
}

func (s *Store) ReorderSections(_ context.Context, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(orderedIDs) != len(s.sections) {
		return fmt.Errorf("reorder list has %d entries, store has %d sections", len(orderedIDs), len(s.sections))
	}
	for pos, id := range orderedIDs {
		sec, ok := s.sections[id]
		if !ok {
			return storage.ErrNotFound
		}
		sec.Position = pos
		sec.UpdatedAt = time.Now().UTC()
		s.sections[id] = sec
	}
	return nil
}

func (s *Store) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, exists := s.products[p.ID]; exists {
		return catalog.Product{}, fmt.Errorf("product %s already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Published = false
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ID]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	p.Published = original.Published
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.products, id)
	s.dropItemMappingsLocked(catalog.KindProduct, id)
	return nil
}

func (s *Store) CreateService(_ context.Context, svc catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	} else if _, exists := s.services[svc.ID]; exists {
		return catalog.Service{}, fmt.Errorf("service %s already exists", svc.ID)
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	svc.Published = false
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *Store) UpdateService(_ context.Context, svc catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.services[svc.ID]
	if !ok {
		return catalog.Service{}, storage.ErrNotFound
	}
	svc.Published = original.Published
	svc.CreatedAt = original.CreatedAt
	svc.UpdatedAt = time.Now().UTC()
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *Store) GetService(_ context.Context, id string) (catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return catalog.Service{}, storage.ErrNotFound
	}
	return svc, nil
}

func (s *Store) ListServices(_ context.Context) ([]catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Service, 0, len(s.services))
	for _, svc := range s.services {
		result = append(result, svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.services, id)
	s.dropItemMappingsLocked(catalog.KindService, id)
	return nil
}

func (s *Store) dropItemMappingsLocked(kind catalog.ItemKind, itemID string) {
	for sectionID, rows := range s.mappings[kind] {
		filtered := rows[:0]
		for _, m := range rows {
			if m.ItemID != itemID {
				filtered = append(filtered, m)
			}
		}
		s.mappings[kind][sectionID] = renumber(filtered)
	}
}

func (s *Store) ListSectionMappings(_ context.Context, kind catalog.ItemKind, sectionID string) ([]catalog.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]catalog.Mapping(nil), s.mappings[kind][sectionID]...), nil
}

func renumber(rows []catalog.Mapping) []catalog.Mapping {
	for i := range rows {
		rows[i].Position = i
	}
	return rows
}
