package captions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelpost/internal/catalog"
	"reelpost/internal/logging"
	"reelpost/internal/testsupport"
)

func sampleProduct() *catalog.Product {
	return &catalog.Product{
		ProductKey:     "SKU777",
		Title:          "Wireless Bluetooth Earbuds Pro",
		Price:          39.99,
		CommissionRate: 18,
		Rating:         4.7,
		Category:       "Electronics",
	}
}

func TestTemplateCaptionIncludesProductDetails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	generator := NewTemplate(cfg)
	generator.pick = func(int) int { return 0 }

	caption, err := generator.Caption(context.Background(), sampleProduct())
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if !strings.Contains(caption, "Wireless Bluetooth Earbuds Pro") {
		t.Fatalf("caption %q is missing the product title", caption)
	}
	if !strings.Contains(caption, "$39.99") {
		t.Fatalf("caption %q is missing the price", caption)
	}
	if !strings.Contains(caption, "Link in bio!") {
		t.Fatalf("caption %q is missing the call to action", caption)
	}
}

func TestTemplateCaptionTruncatesLongTitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	generator := NewTemplate(cfg)
	generator.pick = func(int) int { return 0 }

	product := sampleProduct()
	product.Title = strings.Repeat("Mega Gadget ", 10)

	caption, err := generator.Caption(context.Background(), product)
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if strings.Contains(caption, product.Title) {
		t.Fatalf("caption %q carries the untruncated title", caption)
	}
}

func TestHashtagsDeduplicateAndCap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Captions.BaseTags = []string{"#TikTokShop", "tiktokshop", "#Deals"}
	cfg.Captions.MaxHashtags = 4

	line := Hashtags(cfg.Captions, sampleProduct())
	tags := strings.Fields(line)
	if len(tags) != 4 {
		t.Fatalf("tags = %v, want 4", tags)
	}
	if tags[0] != "#TikTokShop" || tags[1] != "#Deals" {
		t.Fatalf("base tags not first: %v", tags)
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "#") {
			t.Fatalf("tag %q lacks # prefix", tag)
		}
		key := strings.ToLower(tag)
		if seen[key] {
			t.Fatalf("duplicate tag %q in %v", tag, tags)
		}
		seen[key] = true
	}
}

func TestHashtagsReflectPriceAndCategory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Captions.BaseTags = nil
	cfg.Captions.MaxHashtags = 20

	product := sampleProduct()
	product.Price = 12.99
	product.Category = "Beauty"

	line := Hashtags(cfg.Captions, product)
	for _, want := range []string{"#Beauty", "#BeautyTok", "#AffordableFinds", "#Wireless"} {
		if !strings.Contains(line, want) {
			t.Fatalf("hashtags %q missing %q", line, want)
		}
	}
}

func TestBuildPostRespectsCaptionLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Captions.MaxLength = 80
	cfg.Captions.MaxHashtags = 2
	cfg.Captions.BaseTags = []string{"#Shop", "#Deal"}

	generator := NewTemplate(cfg)
	generator.pick = func(int) int { return 0 }

	post, err := BuildPost(context.Background(), generator, cfg, sampleProduct())
	if err != nil {
		t.Fatalf("BuildPost: %v", err)
	}
	total := len(post.Caption) + len("\n\n") + len(post.Hashtags)
	if total > cfg.Captions.MaxLength {
		t.Fatalf("post length %d exceeds limit %d", total, cfg.Captions.MaxLength)
	}
	if post.Hashtags != "#Shop #Deal" {
		t.Fatalf("hashtags = %q, want them untrimmed", post.Hashtags)
	}
}

type failingGenerator struct{}

func (failingGenerator) Caption(context.Context, *catalog.Product) (string, error) {
	return "", errors.New("quota exhausted")
}

func TestFallbackGeneratorUsesTemplates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	generator := &fallbackGenerator{
		primary:  failingGenerator{},
		fallback: NewTemplate(cfg),
		logger:   logging.NewNop(),
	}

	caption, err := generator.Caption(context.Background(), sampleProduct())
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if !strings.Contains(caption, "Wireless Bluetooth Earbuds Pro") {
		t.Fatalf("fallback caption %q is missing the product title", caption)
	}
}
