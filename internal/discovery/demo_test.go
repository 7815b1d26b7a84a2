package discovery

import (
	"context"
	"strings"
	"testing"

	"reelpost/internal/logging"
	"reelpost/internal/testsupport"
)

func TestDemoSourceAppliesFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Filters.MinPrice = 20
	cfg.Filters.MaxPrice = 50
	cfg.Filters.MinCommissionRate = 15
	cfg.Filters.MinRating = 4.4

	source := NewDemoSource(cfg, logging.NewNop())
	products, err := source.Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantKeys := []string{"DEMO_0001", "DEMO_0002", "DEMO_0008"}
	if len(products) != len(wantKeys) {
		t.Fatalf("got %d products, want %d", len(products), len(wantKeys))
	}
	for i, product := range products {
		if product.ProductKey != wantKeys[i] {
			t.Fatalf("product[%d] key = %q, want %q", i, product.ProductKey, wantKeys[i])
		}
		if product.Title == "" || product.Description == "" || product.ProductURL == "" {
			t.Fatalf("product %q is missing display fields: %+v", product.ProductKey, product)
		}
	}
}

func TestDemoSourceHonoursLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	source := NewDemoSource(cfg, logging.NewNop())
	products, err := source.Fetch(context.Background(), 4)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("got %d products, want 4", len(products))
	}
}

func TestDemoSourceAffiliateLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.AffiliateID = "aff123"

	source := NewDemoSource(cfg, logging.NewNop())
	products, err := source.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("no products returned")
	}
	if !strings.HasSuffix(products[0].ProductURL, "?affiliate=aff123") {
		t.Fatalf("product url %q does not carry the affiliate id", products[0].ProductURL)
	}
}

func TestSyncUpsertsProducts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := NewDemoSource(cfg, logging.NewNop())
	written, err := Sync(context.Background(), store, source, 5)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if written != 5 {
		t.Fatalf("written = %d, want 5", written)
	}

	// A second sync refreshes in place instead of duplicating.
	if _, err := Sync(context.Background(), store, source, 5); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	products, err := store.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("catalog has %d products after resync, want 5", len(products))
	}
}
