package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/discovery"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var enrich bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch candidate products into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				source, err := discovery.New(cfg, logger)
				if err != nil {
					return err
				}

				written, err := discovery.Sync(cmd.Context(), store, source, limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d products from %s source\n", written, cfg.Discovery.Source)

				if enrich || cfg.Discovery.EnrichDescriptions {
					if err := enrichPending(cmd, cfg, store, logger); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of products to fetch")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "Extract product page descriptions after fetching")
	return cmd
}

func enrichPending(cmd *cobra.Command, cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
	products, err := store.ListProducts(cmd.Context(), catalog.ProductPending)
	if err != nil {
		return err
	}

	missing := make(map[string]struct{})
	for _, product := range products {
		if product.Description == "" {
			missing[product.ProductKey] = struct{}{}
		}
	}

	enricher := discovery.NewEnricher(cfg, logger)
	enricher.EnrichAll(cmd.Context(), products)

	enriched := 0
	for _, product := range products {
		if _, wanted := missing[product.ProductKey]; !wanted || product.Description == "" {
			continue
		}
		if _, err := store.UpsertProduct(cmd.Context(), product); err != nil {
			return err
		}
		enriched++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Descriptions filled for %d products\n", enriched)
	return nil
}
