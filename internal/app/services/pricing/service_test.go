package pricing

import (
	"context"
	"testing"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/domain/region"
	"github.com/commercegrid/backoffice/internal/app/storage/memory"
)

type fixture struct {
	svc       *Service
	productID string
	regionID  string
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	p, err := store.CreateProduct(ctx, catalog.Product{ID: "p1", SKU: "SKU-1", Name: "Widget", Status: catalog.StatusActive})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	r, err := store.CreateRegion(ctx, region.Region{ID: "r1", Code: "EU", Name: "Europe", Currency: "EUR"})
	if err != nil {
		t.Fatalf("create region: %v", err)
	}
	return fixture{svc: New(store, store, store, nil), productID: p.ID, regionID: r.ID}
}

func TestSetTakesCurrencyFromRegion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	price, err := f.svc.Set(ctx, f.productID, f.regionID, 1999)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if price.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR from region", price.Currency)
	}
	if price.Amount != 1999 {
		t.Fatalf("amount = %d", price.Amount)
	}
}

func TestSetOverwritesExistingPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Set(ctx, f.productID, f.regionID, 1000); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := f.svc.Set(ctx, f.productID, f.regionID, 2500); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	prices, err := f.svc.ListForProduct(ctx, f.productID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("got %d prices, want 1", len(prices))
	}
	if prices[0].Amount != 2500 {
		t.Fatalf("amount = %d, want 2500", prices[0].Amount)
	}
}

func TestSetValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Set(ctx, "ghost", f.regionID, 100); err == nil {
		t.Fatalf("unknown product must be rejected")
	}
	if _, err := f.svc.Set(ctx, f.productID, "nowhere", 100); err == nil {
		t.Fatalf("unknown region must be rejected")
	}
	if _, err := f.svc.Set(ctx, f.productID, f.regionID, -1); err == nil {
		t.Fatalf("negative amount must be rejected")
	}
	if _, err := f.svc.Set(ctx, "", f.regionID, 100); err == nil {
		t.Fatalf("empty product id must be rejected")
	}
}

func TestDeleteRemovesPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Set(ctx, f.productID, f.regionID, 100); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.svc.Delete(ctx, f.productID, f.regionID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	prices, err := f.svc.ListForProduct(ctx, f.productID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("got %d prices after delete", len(prices))
	}
}

func TestListForUnknownProductFails(t *testing.T) {
	f := setup(t)
	if _, err := f.svc.ListForProduct(context.Background(), "ghost"); err == nil {
		t.Fatalf("unknown product must be rejected")
	}
}
