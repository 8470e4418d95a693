package publication

import (
	"context"
	"testing"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

// tracingTx records the order of transaction calls. Reads report every item
// active and every section present so operations run to completion.
type tracingTx struct {
	calls []string
}

var _ storage.PublicationTx = (*tracingTx)(nil)

func (tx *tracingTx) LockSections(_ context.Context, _ catalog.ItemKind, _ []string) error {
	tx.calls = append(tx.calls, "LockSections")
	return nil
}

func (tx *tracingTx) ItemStatuses(_ context.Context, _ catalog.ItemKind, ids []string) (map[string]catalog.ItemStatus, error) {
	tx.calls = append(tx.calls, "ItemStatuses")
	statuses := make(map[string]catalog.ItemStatus, len(ids))
	for _, id := range ids {
		statuses[id] = catalog.StatusActive
	}
	return statuses, nil
}

func (tx *tracingTx) ExistingSections(_ context.Context, ids []string) (map[string]bool, error) {
	tx.calls = append(tx.calls, "ExistingSections")
	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

func (tx *tracingTx) ExistingPairs(_ context.Context, _ catalog.ItemKind, _, _ []string) (map[catalog.Pair]struct{}, error) {
	tx.calls = append(tx.calls, "ExistingPairs")
	return map[catalog.Pair]struct{}{}, nil
}

func (tx *tracingTx) SectionItems(_ context.Context, _ catalog.ItemKind, _ string) ([]string, error) {
	tx.calls = append(tx.calls, "SectionItems")
	return nil, nil
}

func (tx *tracingTx) AppendMappings(_ context.Context, _ catalog.ItemKind, _ string, _ []string, _ string) error {
	tx.calls = append(tx.calls, "AppendMappings")
	return nil
}

func (tx *tracingTx) RemoveMappings(_ context.Context, _ catalog.ItemKind, _ string, _ []string) error {
	tx.calls = append(tx.calls, "RemoveMappings")
	return nil
}

func (tx *tracingTx) ReplaceSection(_ context.Context, _ catalog.ItemKind, _ string, _ []string, _ string) error {
	tx.calls = append(tx.calls, "ReplaceSection")
	return nil
}

func (tx *tracingTx) RecomputePublished(_ context.Context, _ catalog.ItemKind, _ []string) error {
	tx.calls = append(tx.calls, "RecomputePublished")
	return nil
}

func (tx *tracingTx) Commit() error   { return nil }
func (tx *tracingTx) Rollback() error { return nil }

type tracingStore struct {
	tx *tracingTx
}

func (s *tracingStore) BeginPublication(_ context.Context) (storage.PublicationTx, error) {
	return s.tx, nil
}

// Section locks must be held before any read whose result feeds the
// mutation; a writer committing between an unlocked read and the insert
// would leave a position gap.
func TestOperationsLockSectionsBeforeReads(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		run  func(svc *Service) error
	}{
		{"publish", func(svc *Service) error {
			_, err := svc.Publish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1", "s2"}, "admin")
			return err
		}},
		{"unpublish", func(svc *Service) error {
			_, err := svc.Unpublish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1"}, "admin")
			return err
		}},
		{"replace", func(svc *Service) error {
			_, err := svc.ReplaceSection(ctx, catalog.KindProduct, "s1", []string{"p1"}, "admin")
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := &tracingTx{}
			svc := New(&tracingStore{tx: tx}, nil)

			if err := tc.run(svc); err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if len(tx.calls) == 0 || tx.calls[0] != "LockSections" {
				t.Fatalf("calls = %v, want LockSections first", tx.calls)
			}
		})
	}
}
