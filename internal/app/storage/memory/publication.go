package memory

import (
	"context"
	"errors"
	"time"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

// publicationTx stages mapping mutations against a copy of the store's
// mapping tables. Nothing is visible to readers until Commit, which swaps
// the staged state in under the store lock, giving the same all-or-nothing
// behaviour as a database transaction.
type publicationTx struct {
	store    *Store
	mappings map[catalog.ItemKind]map[string][]catalog.Mapping
	flags    map[catalog.ItemKind]map[string]bool
	done     bool
}

var _ storage.PublicationTx = (*publicationTx)(nil)

// BeginPublication opens a staged transaction over the mapping tables.
func (s *Store) BeginPublication(_ context.Context) (storage.PublicationTx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staged := make(map[catalog.ItemKind]map[string][]catalog.Mapping, len(s.mappings))
	for kind, sections := range s.mappings {
		staged[kind] = make(map[string][]catalog.Mapping, len(sections))
		for sectionID, rows := range sections {
			staged[kind][sectionID] = append([]catalog.Mapping(nil), rows...)
		}
	}

	return &publicationTx{
		store:    s,
		mappings: staged,
		flags: map[catalog.ItemKind]map[string]bool{
			catalog.KindProduct: make(map[string]bool),
			catalog.KindService: make(map[string]bool),
		},
	}, nil
}

// LockSections is a no-op: the staged transaction never blocks, and Commit
// swaps state in under the store's write lock.
func (tx *publicationTx) LockSections(_ context.Context, _ catalog.ItemKind, _ []string) error {
	return nil
}

func (tx *publicationTx) ItemStatuses(_ context.Context, kind catalog.ItemKind, ids []string) (map[string]catalog.ItemStatus, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	result := make(map[string]catalog.ItemStatus, len(ids))
	for _, id := range ids {
		switch kind {
		case catalog.KindProduct:
			if p, ok := tx.store.products[id]; ok {
				result[id] = p.Status
			}
		case catalog.KindService:
			if svc, ok := tx.store.services[id]; ok {
				result[id] = svc.Status
			}
		}
	}
	return result, nil
}

func (tx *publicationTx) ExistingSections(_ context.Context, ids []string) (map[string]bool, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := tx.store.sections[id]; ok {
			result[id] = true
		}
	}
	return result, nil
}

func (tx *publicationTx) ExistingPairs(_ context.Context, kind catalog.ItemKind, itemIDs, sectionIDs []string) (map[catalog.Pair]struct{}, error) {
	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	result := make(map[catalog.Pair]struct{})
	for _, sectionID := range sectionIDs {
		for _, m := range tx.mappings[kind][sectionID] {
			if _, ok := wanted[m.ItemID]; ok {
				result[catalog.Pair{ItemID: m.ItemID, SectionID: sectionID}] = struct{}{}
			}
		}
	}
	return result, nil
}

func (tx *publicationTx) SectionItems(_ context.Context, kind catalog.ItemKind, sectionID string) ([]string, error) {
	rows := tx.mappings[kind][sectionID]
	items := make([]string, 0, len(rows))
	for _, m := range rows {
		items = append(items, m.ItemID)
	}
	return items, nil
}

func (tx *publicationTx) AppendMappings(_ context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error {
	rows := tx.mappings[kind][sectionID]
	present := make(map[string]struct{}, len(rows))
	for _, m := range rows {
		present[m.ItemID] = struct{}{}
	}

	now := time.Now().UTC()
	for _, itemID := range itemIDs {
		if _, ok := present[itemID]; ok {
			continue
		}
		rows = append(rows, catalog.Mapping{
			ItemID:      itemID,
			SectionID:   sectionID,
			Position:    len(rows),
			PublishedBy: publishedBy,
			CreatedAt:   now,
		})
		present[itemID] = struct{}{}
	}
	tx.mappings[kind][sectionID] = rows
	return nil
}

func (tx *publicationTx) RemoveMappings(_ context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string) error {
	doomed := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		doomed[id] = struct{}{}
	}

	rows := tx.mappings[kind][sectionID]
	filtered := rows[:0]
	for _, m := range rows {
		if _, ok := doomed[m.ItemID]; !ok {
			filtered = append(filtered, m)
		}
	}
	tx.mappings[kind][sectionID] = renumber(filtered)
	return nil
}

func (tx *publicationTx) ReplaceSection(_ context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error {
	now := time.Now().UTC()
	rows := make([]catalog.Mapping, 0, len(itemIDs))
	for pos, itemID := range itemIDs {
		rows = append(rows, catalog.Mapping{
			ItemID:      itemID,
			SectionID:   sectionID,
			Position:    pos,
			PublishedBy: publishedBy,
			CreatedAt:   now,
		})
	}
	tx.mappings[kind][sectionID] = rows
	return nil
}

func (tx *publicationTx) RecomputePublished(_ context.Context, kind catalog.ItemKind, itemIDs []string) error {
	for _, itemID := range itemIDs {
		published := false
		for _, rows := range tx.mappings[kind] {
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
		tx.flags[kind][itemID] = published
	}
	return nil
}

// Commit swaps the staged mapping tables into the store wholesale. That
// gives atomicity but not write-write isolation: of two overlapping
// transactions, the later Commit wins and the earlier one's mappings are
// lost. The postgres store is the implementation with real isolation.
func (tx *publicationTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	tx.store.mappings = tx.mappings
	for id, published := range tx.flags[catalog.KindProduct] {
		if p, ok := tx.store.products[id]; ok {
			p.Published = published
			p.UpdatedAt = time.Now().UTC()
			tx.store.products[id] = p
		}
	}
	for id, published := range tx.flags[catalog.KindService] {
		if svc, ok := tx.store.services[id]; ok {
			svc.Published = published
			svc.UpdatedAt = time.Now().UTC()
			tx.store.services[id] = svc
		}
	}
	return nil
}

func (tx *publicationTx) Rollback() error {
	tx.done = true
	return nil
}
