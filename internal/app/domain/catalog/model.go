// Package catalog holds the catalog domain: sections, the publishable items
// (products and services), and the section mapping rows that publish items
// into sections.
package catalog

import "time"

// ItemStatus enumerates the lifecycle states of a publishable item.
type ItemStatus string

const (
	StatusDraft    ItemStatus = "draft"
	StatusActive   ItemStatus = "active"
	StatusArchived ItemStatus = "archived"
)

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s ItemStatus) bool {
	return s == StatusDraft || s == StatusActive || s == StatusArchived
}

// ItemKind selects which publishable entity a mapping operation targets.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// ValidItemKind reports whether k is a known item kind.
func ValidItemKind(k ItemKind) bool {
	return k == KindProduct || k == KindService
}

// Section is a catalog grouping items are published into. Position orders
// the section among its siblings and stays dense from 0.
type Section struct {
	ID        string
	Name      string
	Slug      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is a publishable catalog item. Published is derived: true iff the
// product has at least one section mapping.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Status      ItemStatus
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service is a publishable offering, managed like a product but kept as its
// own entity with its own mapping table.
type Service struct {
	ID          string
	Name        string
	Description string
	Status      ItemStatus
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Mapping is a join row publishing one item into one section. Position is
// scoped per section and stays dense from 0.
type Mapping struct {
	ItemID      string
	SectionID   string
	Position    int
	PublishedBy string
	CreatedAt   time.Time
}

// Pair identifies a mapping by its natural key.
type Pair struct {
	ItemID    string
	SectionID string
}
