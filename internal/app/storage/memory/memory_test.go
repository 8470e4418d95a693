package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

func TestSectionPositionsCompactOnDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.CreateSection(ctx, catalog.Section{ID: id, Name: id, Slug: id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	if err := s.DeleteSection(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sections, _ := s.ListSections(ctx)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	for i, sec := range sections {
		if sec.Position != i {
			t.Fatalf("section %s position = %d, want %d", sec.ID, sec.Position, i)
		}
	}
	if sections[0].ID != "a" || sections[1].ID != "c" {
		t.Fatalf("order = [%s %s], want [a c]", sections[0].ID, sections[1].ID)
	}
}

func TestReorderSectionsRejectsPartialList(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := s.CreateSection(ctx, catalog.Section{ID: id, Name: id, Slug: id}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := s.ReorderSections(ctx, []string{"a"}); err == nil {
		t.Fatalf("expected error for partial list")
	}
	if err := s.ReorderSections(ctx, []string{"a", "nope"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}

	if err := s.ReorderSections(ctx, []string{"b", "a"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	sections, _ := s.ListSections(ctx)
	if sections[0].ID != "b" || sections[1].ID != "a" {
		t.Fatalf("order = [%s %s], want [b a]", sections[0].ID, sections[1].ID)
	}
}

func TestDeleteProductCompactsMappings(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateSection(ctx, catalog.Section{ID: "s1", Name: "s1", Slug: "s1"}); err != nil {
		t.Fatalf("create section: %v", err)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if _, err := s.CreateProduct(ctx, catalog.Product{ID: id, SKU: id, Name: id, Status: catalog.StatusActive}); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	tx, err := s.BeginPublication(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.AppendMappings(ctx, catalog.KindProduct, "s1", []string{"p1", "p2", "p3"}, ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := s.DeleteProduct(ctx, "p2"); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	mappings, _ := s.ListSectionMappings(ctx, catalog.KindProduct, "s1")
	if len(mappings) != 2 {
		t.Fatalf("got %d mappings, want 2", len(mappings))
	}
	for i, m := range mappings {
		if m.Position != i {
			t.Fatalf("mapping %s position = %d, want %d", m.ItemID, m.Position, i)
		}
	}
}

func TestPublicationRollbackDiscardsStagedWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateSection(ctx, catalog.Section{ID: "s1", Name: "s1", Slug: "s1"}); err != nil {
		t.Fatalf("create section: %v", err)
	}
	if _, err := s.CreateProduct(ctx, catalog.Product{ID: "p1", SKU: "p1", Name: "p1", Status: catalog.StatusActive}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	tx, err := s.BeginPublication(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.AppendMappings(ctx, catalog.KindProduct, "s1", []string{"p1"}, ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	mappings, _ := s.ListSectionMappings(ctx, catalog.KindProduct, "s1")
	if len(mappings) != 0 {
		t.Fatalf("rolled back writes leaked: %v", mappings)
	}
}
