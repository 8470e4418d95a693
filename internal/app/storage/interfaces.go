// Package storage declares the persistence interfaces consumed by the
// service layer. Implementations live in the postgres and memory
// subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/domain/group"
	"github.com/commercegrid/backoffice/internal/app/domain/pricing"
	"github.com/commercegrid/backoffice/internal/app/domain/region"
	"github.com/commercegrid/backoffice/internal/app/domain/user"
)

// ErrNotFound is returned by every store when the requested row does not
// exist.
var ErrNotFound = errors.New("not found")

// UserStore persists back-office user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// GroupStore persists groups and their membership rows.
type GroupStore interface {
	CreateGroup(ctx context.Context, g group.Group) (group.Group, error)
	UpdateGroup(ctx context.Context, g group.Group) (group.Group, error)
	GetGroup(ctx context.Context, id string) (group.Group, error)
	ListGroups(ctx context.Context) ([]group.Group, error)
	DeleteGroup(ctx context.Context, id string) error

	AddMembership(ctx context.Context, m group.Membership) (group.Membership, error)
	RemoveMembership(ctx context.Context, groupID, userID string) error
	ListMemberships(ctx context.Context, groupID string) ([]group.Membership, error)
}

// RegionStore persists sales regions.
type RegionStore interface {
	CreateRegion(ctx context.Context, r region.Region) (region.Region, error)
	UpdateRegion(ctx context.Context, r region.Region) (region.Region, error)
	GetRegion(ctx context.Context, id string) (region.Region, error)
	ListRegions(ctx context.Context) ([]region.Region, error)
	DeleteRegion(ctx context.Context, id string) error
}

// PricingStore persists per-region product prices.
type PricingStore interface {
	UpsertPrice(ctx context.Context, p pricing.Price) (pricing.Price, error)
	ListPrices(ctx context.Context, productID string) ([]pricing.Price, error)
	DeletePrice(ctx context.Context, productID, regionID string) error
}

// CatalogStore persists sections and the publishable items.
type CatalogStore interface {
	CreateSection(ctx context.Context, s catalog.Section) (catalog.Section, error)
	UpdateSection(ctx context.Context, s catalog.Section) (catalog.Section, error)
	GetSection(ctx context.Context, id string) (catalog.Section, error)
	ListSections(ctx context.Context) ([]catalog.Section, error)
	DeleteSection(ctx context.Context, id string) error
	// ReorderSections rewrites sibling positions to match the given full
	// ordered ID list.
	ReorderSections(ctx context.Context, orderedIDs []string) error

	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateService(ctx context.Context, s catalog.Service) (catalog.Service, error)
	UpdateService(ctx context.Context, s catalog.Service) (catalog.Service, error)
	GetService(ctx context.Context, id string) (catalog.Service, error)
	ListServices(ctx context.Context) ([]catalog.Service, error)
	DeleteService(ctx context.Context, id string) error

	// ListSectionMappings returns a section's mapping rows ordered by
	// position.
	ListSectionMappings(ctx context.Context, kind catalog.ItemKind, sectionID string) ([]catalog.Mapping, error)
}

// PublicationTx is a transaction-scoped view over the mapping tables. All
// mutations stay invisible to readers until Commit; Rollback discards them.
// Implementations must tolerate Rollback after Commit so callers can defer
// it unconditionally.
type PublicationTx interface {
	// LockSections serialises this transaction against concurrent mutations
	// of the given sections' mapping sets. Callers must lock before any read
	// whose result feeds a mutation; implementations acquire the locks in a
	// deterministic order regardless of the order given.
	LockSections(ctx context.Context, kind catalog.ItemKind, sectionIDs []string) error
	// ItemStatuses returns the status of each existing item among ids;
	// unknown IDs are simply absent from the result.
	ItemStatuses(ctx context.Context, kind catalog.ItemKind, ids []string) (map[string]catalog.ItemStatus, error)
	// ExistingSections reports which of the given section IDs exist.
	ExistingSections(ctx context.Context, ids []string) (map[string]bool, error)
	// ExistingPairs returns the persisted (item, section) pairs among the
	// cross product of the given ID lists.
	ExistingPairs(ctx context.Context, kind catalog.ItemKind, itemIDs, sectionIDs []string) (map[catalog.Pair]struct{}, error)
	// SectionItems returns the item IDs currently mapped into a section,
	// ordered by position.
	SectionItems(ctx context.Context, kind catalog.ItemKind, sectionID string) ([]string, error)
	// AppendMappings inserts the given items at the end of a section's
	// sequence, in the order given. Pairs that already exist are skipped.
	AppendMappings(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error
	// RemoveMappings deletes the given pairs from a section and compacts
	// the surviving positions so they remain dense from 0.
	RemoveMappings(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string) error
	// ReplaceSection clears a section's mapping set and reinserts itemIDs
	// with positions 0..n-1 in the order given.
	ReplaceSection(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error
	// RecomputePublished refreshes the derived published flag for the
	// given items.
	RecomputePublished(ctx context.Context, kind catalog.ItemKind, itemIDs []string) error

	Commit() error
	Rollback() error
}

// PublicationStore opens mapping transactions.
type PublicationStore interface {
	BeginPublication(ctx context.Context) (PublicationTx, error)
}
