package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

// Source produces candidate products for the catalog.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]*catalog.Product, error)
}

// New builds the source configured under [discovery].
func New(cfg *config.Config, logger *slog.Logger) (Source, error) {
	switch cfg.Discovery.Source {
	case "demo":
		return NewDemoSource(cfg, logger), nil
	case "shop":
		return NewShopSource(cfg, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "new", fmt.Sprintf("unknown source %q", cfg.Discovery.Source), nil)
	}
}

// Sync fetches candidates from the source and upserts them into the store.
// Upserts are idempotent on the product key, so repeated syncs refresh
// details without disturbing selection state. Returns the number of
// products written.
func Sync(ctx context.Context, store *catalog.Store, source Source, limit int) (int, error) {
	products, err := source.Fetch(ctx, limit)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, product := range products {
		if _, err := store.UpsertProduct(ctx, product); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// meetsCriteria applies the [filters] section. Commission rates are
// percentages, matching the shop API payloads.
func meetsCriteria(f config.Filters, price, commissionRate, rating float64) bool {
	if f.MinPrice > 0 && price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && price > f.MaxPrice {
		return false
	}
	if commissionRate < f.MinCommissionRate {
		return false
	}
	if rating < f.MinRating {
		return false
	}
	return true
}

func componentLogger(logger *slog.Logger) *slog.Logger {
	return logging.NewComponentLogger(logger, "discovery")
}
