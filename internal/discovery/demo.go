package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
)

type demoCandidate struct {
	title          string
	price          float64
	commissionRate float64
	rating         float64
	category       string
}

// demoCatalog holds fixed candidates so demo runs exercise the whole
// pipeline deterministically, no shop credentials required.
var demoCatalog = []demoCandidate{
	{"Wireless Bluetooth Earbuds Pro", 39.99, 18, 4.7, "Electronics"},
	{"LED Makeup Mirror with Lights", 27.50, 22, 4.5, "Beauty"},
	{"Portable Phone Charger 20000mAh", 31.99, 12, 4.6, "Electronics"},
	{"Smart Watch Fitness Tracker", 54.99, 15, 4.4, "Electronics"},
	{"Hair Straightener Brush", 24.99, 20, 4.3, "Beauty"},
	{"Water Bottle with Time Marker", 18.95, 25, 4.8, "Fitness"},
	{"Phone Ring Light Clip", 14.99, 24, 4.2, "Electronics"},
	{"Resistance Bands Set", 21.99, 17, 4.6, "Fitness"},
	{"Jade Stone Face Roller", 16.50, 23, 4.5, "Beauty"},
	{"Adjustable Laptop Stand", 42.00, 10, 4.7, "Home"},
}

// DemoSource serves a built-in product list filtered by the configured
// criteria.
type DemoSource struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewDemoSource builds a demo source.
func NewDemoSource(cfg *config.Config, logger *slog.Logger) *DemoSource {
	return &DemoSource{cfg: cfg, logger: componentLogger(logger)}
}

// Fetch returns up to limit demo products that pass the filters.
func (d *DemoSource) Fetch(_ context.Context, limit int) ([]*catalog.Product, error) {
	if limit <= 0 || limit > len(demoCatalog) {
		limit = len(demoCatalog)
	}

	products := make([]*catalog.Product, 0, limit)
	for i, candidate := range demoCatalog {
		if len(products) >= limit {
			break
		}
		if !meetsCriteria(d.cfg.Filters, candidate.price, candidate.commissionRate, candidate.rating) {
			continue
		}

		key := fmt.Sprintf("DEMO_%04d", i+1)
		products = append(products, &catalog.Product{
			ProductKey:     key,
			Title:          candidate.title,
			Description:    fmt.Sprintf("High-quality %s with excellent reviews!", strings.ToLower(candidate.title)),
			Price:          candidate.price,
			CommissionRate: candidate.commissionRate,
			Rating:         candidate.rating,
			Category:       candidate.category,
			ImageURL:       "https://via.placeholder.com/400x400?text=" + url.QueryEscape(candidate.title),
			ProductURL:     affiliateLink(d.cfg.Discovery, key),
		})
	}

	d.logger.Info("demo products generated", logging.Int("count", len(products)))
	return products, nil
}

// affiliateLink forms the trackable product URL. Without an affiliate id
// configured the plain product URL is returned.
func affiliateLink(d config.Discovery, productKey string) string {
	link := "https://www.tiktok.com/shop/product/" + productKey
	if d.AffiliateID == "" {
		return link
	}
	return link + "?affiliate=" + url.QueryEscape(d.AffiliateID)
}
