package publication

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return &fixture{store: store, svc: New(store, nil)}
}

func (f *fixture) product(t *testing.T, id string, status catalog.ItemStatus) {
	t.Helper()
	if _, err := f.store.CreateProduct(context.Background(), catalog.Product{ID: id, SKU: "sku-" + id, Name: id, Status: status}); err != nil {
		t.Fatalf("create product %s: %v", id, err)
	}
}

func (f *fixture) section(t *testing.T, id string) {
	t.Helper()
	if _, err := f.store.CreateSection(context.Background(), catalog.Section{ID: id, Name: id, Slug: id}); err != nil {
		t.Fatalf("create section %s: %v", id, err)
	}
}

func (f *fixture) sectionItems(t *testing.T, sectionID string) []string {
	t.Helper()
	mappings, err := f.store.ListSectionMappings(context.Background(), catalog.KindProduct, sectionID)
	if err != nil {
		t.Fatalf("list mappings: %v", err)
	}
	ids := make([]string, len(mappings))
	for i, m := range mappings {
		if m.Position != i {
			t.Fatalf("section %s: position %d at index %d, want dense sequence", sectionID, m.Position, i)
		}
		ids[i] = m.ItemID
	}
	return ids
}

func TestPublishIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.product(t, "p2", catalog.StatusActive)
	f.section(t, "s1")

	ctx := context.Background()
	first, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1", "p2"}, []string{"s1"}, "admin")
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if first.Added != 2 || first.Updated != 0 {
		t.Fatalf("first publish counts = %+v, want 2 added", first)
	}

	second, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1", "p2"}, []string{"s1"}, "admin")
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.Added != 0 || second.Updated != 2 {
		t.Fatalf("second publish counts = %+v, want 2 updated", second)
	}

	items := f.sectionItems(t, "s1")
	if len(items) != 2 || items[0] != "p1" || items[1] != "p2" {
		t.Fatalf("section items = %v, want [p1 p2]", items)
	}
}

func TestPublishAppendsAfterExisting(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.product(t, "p2", catalog.StatusActive)
	f.product(t, "p3", catalog.StatusActive)
	f.section(t, "s1")

	ctx := context.Background()
	if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("publish p1: %v", err)
	}
	if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p2", "p3"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("publish p2, p3: %v", err)
	}

	items := f.sectionItems(t, "s1")
	want := []string{"p1", "p2", "p3"}
	for i, id := range want {
		if items[i] != id {
			t.Fatalf("section items = %v, want %v", items, want)
		}
	}
}

func TestPositionsStayDenseUnderInterleaving(t *testing.T) {
	f := newFixture(t)
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	for _, id := range ids {
		f.product(t, id, catalog.StatusActive)
	}
	f.section(t, "s1")
	f.section(t, "s2")

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		id := ids[rng.Intn(len(ids))]
		section := []string{"s1", "s2"}[rng.Intn(2)]
		if rng.Intn(2) == 0 {
			if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{id}, []string{section}, ""); err != nil {
				t.Fatalf("publish %s into %s: %v", id, section, err)
			}
		} else {
			if _, err := f.svc.Unpublish(ctx, catalog.KindProduct, []string{id}, []string{section}, ""); err != nil {
				t.Fatalf("unpublish %s from %s: %v", id, section, err)
			}
		}
		// sectionItems asserts positions are dense from 0.
		f.sectionItems(t, "s1")
		f.sectionItems(t, "s2")
	}
}

func TestValidationFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.product(t, "p2", catalog.StatusActive)
	f.section(t, "s1")

	ctx := context.Background()
	_, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1", "p2", "ghost"}, []string{"s1"}, "")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if valErr.Message != "Unknown products: ghost" {
		t.Fatalf("message = %q", valErr.Message)
	}

	if items := f.sectionItems(t, "s1"); len(items) != 0 {
		t.Fatalf("expected no mappings after failed publish, got %v", items)
	}
	p, err := f.store.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Published {
		t.Fatalf("p1 must stay unpublished after failed batch")
	}
}

func TestInactiveItemRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.product(t, "p2", catalog.StatusDraft)
	f.section(t, "s1")

	_, err := f.svc.Publish(context.Background(), catalog.KindProduct, []string{"p1", "p2"}, []string{"s1"}, "")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if valErr.Message != "Some products are not active: p2" {
		t.Fatalf("message = %q", valErr.Message)
	}
	if len(valErr.IDs) != 1 || valErr.IDs[0] != "p2" {
		t.Fatalf("offending IDs = %v, want [p2]", valErr.IDs)
	}
	if items := f.sectionItems(t, "s1"); len(items) != 0 {
		t.Fatalf("expected no mappings, got %v", items)
	}
}

func TestDerivedPublishedFlagTracksMappings(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.section(t, "s1")
	f.section(t, "s2")

	ctx := context.Background()
	if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1", "s2"}, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	p, _ := f.store.GetProduct(ctx, "p1")
	if !p.Published {
		t.Fatalf("p1 should be published after mapping")
	}

	if _, err := f.svc.Unpublish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("unpublish s1: %v", err)
	}
	p, _ = f.store.GetProduct(ctx, "p1")
	if !p.Published {
		t.Fatalf("p1 still mapped into s2, must remain published")
	}

	if _, err := f.svc.Unpublish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s2"}, ""); err != nil {
		t.Fatalf("unpublish s2: %v", err)
	}
	p, _ = f.store.GetProduct(ctx, "p1")
	if p.Published {
		t.Fatalf("p1 has no mappings left, must be unpublished")
	}
}

func TestUnpublishCountsOnlyExistingPairs(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.product(t, "p2", catalog.StatusActive)
	f.section(t, "s1")

	ctx := context.Background()
	if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := f.svc.Unpublish(ctx, catalog.KindProduct, []string{"p1", "p2"}, []string{"s1"}, "")
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("removed = %d, want 1 (p2 was never mapped)", result.Removed)
	}
}

func TestReplaceSectionSetsExactOrder(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c"} {
		f.product(t, id, catalog.StatusActive)
	}
	f.section(t, "s1")

	ctx := context.Background()
	if _, err := f.svc.ReplaceSection(ctx, catalog.KindProduct, "s1", []string{"b", "a", "c"}, ""); err != nil {
		t.Fatalf("replace 1: %v", err)
	}
	items := f.sectionItems(t, "s1")
	if items[0] != "b" || items[1] != "a" || items[2] != "c" {
		t.Fatalf("section items = %v, want [b a c]", items)
	}

	result, err := f.svc.ReplaceSection(ctx, catalog.KindProduct, "s1", []string{"a", "c"}, "")
	if err != nil {
		t.Fatalf("replace 2: %v", err)
	}
	if result.Added != 0 || result.Removed != 1 {
		t.Fatalf("counts = %+v, want 0 added, 1 removed", result)
	}

	items = f.sectionItems(t, "s1")
	if len(items) != 2 || items[0] != "a" || items[1] != "c" {
		t.Fatalf("section items = %v, want [a c] at positions 0, 1", items)
	}

	bProduct, _ := f.store.GetProduct(ctx, "b")
	if bProduct.Published {
		t.Fatalf("b was removed from its only section, must be unpublished")
	}
}

func TestReplaceSectionClearsWithEmptyList(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)
	f.section(t, "s1")

	ctx := context.Background()
	if _, err := f.svc.Publish(ctx, catalog.KindProduct, []string{"p1"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := f.svc.ReplaceSection(ctx, catalog.KindProduct, "s1", nil, "")
	if err != nil {
		t.Fatalf("replace with empty list: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("removed = %d, want 1", result.Removed)
	}
	if items := f.sectionItems(t, "s1"); len(items) != 0 {
		t.Fatalf("section should be empty, got %v", items)
	}
}

func TestEmptyInputRejectedBeforeStoreAccess(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		items    []string
		sections []string
		want     string
	}{
		{"no items", nil, []string{"s1"}, "item_ids is required"},
		{"no sections", []string{"p1"}, nil, "container_ids is required"},
		{"whitespace items", []string{"  ", ""}, []string{"s1"}, "item_ids is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Publish(context.Background(), catalog.KindProduct, tc.items, tc.sections, "")
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if valErr.Message != tc.want {
				t.Fatalf("message = %q, want %q", valErr.Message, tc.want)
			}
		})
	}
}

func TestUnknownKindRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Publish(context.Background(), "bundle", []string{"p1"}, []string{"s1"}, "")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnknownSectionRejected(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", catalog.StatusActive)

	_, err := f.svc.Publish(context.Background(), catalog.KindProduct, []string{"p1"}, []string{"nope"}, "")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if valErr.Message != "Unknown sections: nope" {
		t.Fatalf("message = %q", valErr.Message)
	}
}

func TestServicesPublishIndependentlyOfProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.store.CreateService(ctx, catalog.Service{ID: "svc1", Name: "install", Status: catalog.StatusActive}); err != nil {
		t.Fatalf("create service: %v", err)
	}
	f.section(t, "s1")

	if _, err := f.svc.Publish(ctx, catalog.KindService, []string{"svc1"}, []string{"s1"}, ""); err != nil {
		t.Fatalf("publish service: %v", err)
	}

	svc, _ := f.store.GetService(ctx, "svc1")
	if !svc.Published {
		t.Fatalf("service must be published")
	}
	productRows, _ := f.store.ListSectionMappings(ctx, catalog.KindProduct, "s1")
	if len(productRows) != 0 {
		t.Fatalf("product mapping table must be untouched, got %v", productRows)
	}
}
