// Package publication manages the many-to-many mapping between publishable
// catalog items (products, services) and catalog sections. Every operation
// runs as one database transaction: validate the referenced IDs, resolve the
// requested pairs against persisted state, mutate the mapping rows, refresh
// each affected item's derived published flag, then commit. Any failure
// rolls the whole batch back.
package publication

import (
	"context"
	"fmt"
	"strings"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Result reports how many mappings an operation touched. Updated counts
// requested pairs that already existed (re-publishing is a no-op).
type Result struct {
	Added   int `json:"addedCount"`
	Updated int `json:"updatedCount"`
	Removed int `json:"removedCount"`
}

// ValidationError rejects an operation before any mutation, naming the
// offending IDs. The message is safe to show to back-office operators.
type ValidationError struct {
	Message string
	IDs     []string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(ids []string, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), IDs: ids}
}

// Service coordinates mapping mutations.
type Service struct {
	store storage.PublicationStore
	log   *logger.Logger
}

// New constructs a publication service.
func New(store storage.PublicationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("publication")
	}
	return &Service{store: store, log: log}
}

// Publish maps every item onto every section, appending each new mapping at
// the end of its section's sequence. Items must be active; any unknown or
// ineligible ID rejects the whole batch. Re-publishing an existing pair is
// counted as updated, not added.
func (s *Service) Publish(ctx context.Context, kind catalog.ItemKind, itemIDs, sectionIDs []string, actor string) (Result, error) {
	itemIDs, sectionIDs = dedupe(itemIDs), dedupe(sectionIDs)
	if err := checkInput(kind, itemIDs, sectionIDs); err != nil {
		return Result{}, err
	}

	tx, err := s.store.BeginPublication(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	// Lock before the pair and position reads below; a concurrent writer
	// committing between read and insert would otherwise leave a gap.
	if err := tx.LockSections(ctx, kind, sectionIDs); err != nil {
		return Result{}, err
	}

	if err := s.validateItems(ctx, tx, kind, itemIDs, true); err != nil {
		return Result{}, err
	}
	if err := s.validateSections(ctx, tx, sectionIDs); err != nil {
		return Result{}, err
	}

	existing, err := tx.ExistingPairs(ctx, kind, itemIDs, sectionIDs)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, sectionID := range sectionIDs {
		var toAdd []string
		for _, itemID := range itemIDs {
			if _, ok := existing[catalog.Pair{ItemID: itemID, SectionID: sectionID}]; ok {
				result.Updated++
				continue
			}
			toAdd = append(toAdd, itemID)
		}
		if err := tx.AppendMappings(ctx, kind, sectionID, toAdd, actor); err != nil {
			return Result{}, err
		}
		result.Added += len(toAdd)
	}

	if err := tx.RecomputePublished(ctx, kind, itemIDs); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	s.log.WithField("kind", kind).
		WithField("added", result.Added).
		WithField("updated", result.Updated).
		WithField("actor", actor).
		Info("items published")
	return result, nil
}

// Unpublish removes the exact (item, section) pairs. Items and sections must
// exist, but no status precondition applies. Positions of the surviving
// mappings are compacted so each section's sequence stays dense.
func (s *Service) Unpublish(ctx context.Context, kind catalog.ItemKind, itemIDs, sectionIDs []string, actor string) (Result, error) {
	itemIDs, sectionIDs = dedupe(itemIDs), dedupe(sectionIDs)
	if err := checkInput(kind, itemIDs, sectionIDs); err != nil {
		return Result{}, err
	}

	tx, err := s.store.BeginPublication(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	if err := tx.LockSections(ctx, kind, sectionIDs); err != nil {
		return Result{}, err
	}

	if err := s.validateItems(ctx, tx, kind, itemIDs, false); err != nil {
		return Result{}, err
	}
	if err := s.validateSections(ctx, tx, sectionIDs); err != nil {
		return Result{}, err
	}

	existing, err := tx.ExistingPairs(ctx, kind, itemIDs, sectionIDs)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, sectionID := range sectionIDs {
		var toRemove []string
		for _, itemID := range itemIDs {
			if _, ok := existing[catalog.Pair{ItemID: itemID, SectionID: sectionID}]; ok {
				toRemove = append(toRemove, itemID)
			}
		}
		if err := tx.RemoveMappings(ctx, kind, sectionID, toRemove); err != nil {
			return Result{}, err
		}
		result.Removed += len(toRemove)
	}

	if err := tx.RecomputePublished(ctx, kind, itemIDs); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	s.log.WithField("kind", kind).
		WithField("removed", result.Removed).
		WithField("actor", actor).
		Info("items unpublished")
	return result, nil
}

// ReplaceSection sets one section's mapping list to exactly itemIDs, in that
// order, with positions 0..n-1. An empty list clears the section.
func (s *Service) ReplaceSection(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, actor string) (Result, error) {
	if !catalog.ValidItemKind(kind) {
		return Result{}, validationErrorf(nil, "unknown item kind %q", kind)
	}
	sectionID = strings.TrimSpace(sectionID)
	if sectionID == "" {
		return Result{}, validationErrorf(nil, "container_id is required")
	}
	itemIDs = dedupe(itemIDs)

	tx, err := s.store.BeginPublication(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	if err := tx.LockSections(ctx, kind, []string{sectionID}); err != nil {
		return Result{}, err
	}

	if len(itemIDs) > 0 {
		if err := s.validateItems(ctx, tx, kind, itemIDs, true); err != nil {
			return Result{}, err
		}
	}
	if err := s.validateSections(ctx, tx, []string{sectionID}); err != nil {
		return Result{}, err
	}

	current, err := tx.SectionItems(ctx, kind, sectionID)
	if err != nil {
		return Result{}, err
	}
	added, removed := diff(itemIDs, current)

	if err := tx.ReplaceSection(ctx, kind, sectionID, itemIDs, actor); err != nil {
		return Result{}, err
	}

	affected := append(append([]string{}, current...), added...)
	if err := tx.RecomputePublished(ctx, kind, affected); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	s.log.WithField("kind", kind).
		WithField("section_id", sectionID).
		WithField("added", len(added)).
		WithField("removed", len(removed)).
		WithField("actor", actor).
		Info("section mappings replaced")
	return Result{Added: len(added), Removed: len(removed)}, nil
}

// checkInput rejects empty batches before any store access.
func checkInput(kind catalog.ItemKind, itemIDs, sectionIDs []string) error {
	if !catalog.ValidItemKind(kind) {
		return validationErrorf(nil, "unknown item kind %q", kind)
	}
	if len(itemIDs) == 0 {
		return validationErrorf(nil, "item_ids is required")
	}
	if len(sectionIDs) == 0 {
		return validationErrorf(nil, "container_ids is required")
	}
	return nil
}

// validateItems fails closed: any unknown ID, or (when requireActive) any
// item not in active status, rejects the whole batch with the offending IDs.
func (s *Service) validateItems(ctx context.Context, tx storage.PublicationTx, kind catalog.ItemKind, ids []string, requireActive bool) error {
	statuses, err := tx.ItemStatuses(ctx, kind, ids)
	if err != nil {
		return err
	}

	var missing, inactive []string
	for _, id := range ids {
		status, ok := statuses[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if requireActive && status != catalog.StatusActive {
			inactive = append(inactive, id)
		}
	}
	if len(missing) > 0 {
		return validationErrorf(missing, "Unknown %ss: %s", kind, strings.Join(missing, ", "))
	}
	if len(inactive) > 0 {
		return validationErrorf(inactive, "Some %ss are not active: %s", kind, strings.Join(inactive, ", "))
	}
	return nil
}

func (s *Service) validateSections(ctx context.Context, tx storage.PublicationTx, ids []string) error {
	existing, err := tx.ExistingSections(ctx, ids)
	if err != nil {
		return err
	}

	var missing []string
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return validationErrorf(missing, "Unknown sections: %s", strings.Join(missing, ", "))
	}
	return nil
}
