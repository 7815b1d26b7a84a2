package testsupport

import (
	"context"
	"fmt"
	"testing"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProduct inserts a product for tests using the provided store.
func NewProduct(t testing.TB, store *catalog.Store, key string) *catalog.Product {
	t.Helper()

	product, err := store.UpsertProduct(context.Background(), &catalog.Product{
		ProductKey:     key,
		Title:          "Test Product " + key,
		Price:          19.99,
		CommissionRate: 15,
		Rating:         4.5,
		Category:       "gadgets",
		ProductURL:     fmt.Sprintf("https://shop.example.com/products/%s", key),
	})
	if err != nil {
		t.Fatalf("store.UpsertProduct: %v", err)
	}
	return product
}

// NewArtifact inserts a product and a ready artifact for tests.
func NewArtifact(t testing.TB, store *catalog.Store, key string) *catalog.Artifact {
	t.Helper()

	NewProduct(t, store, key)
	artifact, err := store.NewArtifact(
		context.Background(),
		key,
		fmt.Sprintf("/tmp/videos/%s.mp4", key),
		"Check this out!",
		"#TikTokShop #deal",
	)
	if err != nil {
		t.Fatalf("store.NewArtifact: %v", err)
	}
	return artifact
}
