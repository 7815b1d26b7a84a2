package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

func newProductsCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				var statuses []catalog.ProductStatus
				if statusFlag != "" {
					status, ok := catalog.ParseProductStatus(statusFlag)
					if !ok {
						return fmt.Errorf("unknown product status %q", statusFlag)
					}
					statuses = append(statuses, status)
				}

				products, err := store.ListProducts(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(products) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No products in the catalog. Run `reelpost fetch` first.")
					return nil
				}

				rows := make([][]string, 0, len(products))
				for _, product := range products {
					rows = append(rows, []string{
						strconv.FormatInt(product.ID, 10),
						product.ProductKey,
						truncateCell(product.Title, 40),
						formatPrice(product.Price),
						formatPercent(product.CommissionRate),
						fmt.Sprintf("%.1f", product.Rating),
						string(product.Status),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Key", "Title", "Price", "Comm", "Rating", "Status"},
					rows,
					0, 3, 4, 5,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by product status (pending, selected, artifact_ready)")
	cmd.AddCommand(newProductsSelectCommand(ctx))

	return cmd
}

func newProductsSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <product-key> [product-key...]",
		Short: "Mark products for rendering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				for _, key := range args {
					if _, err := store.ProductByKey(cmd.Context(), key); err != nil {
						return err
					}
					if err := store.UpdateProductStatus(cmd.Context(), key, catalog.ProductSelected); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", key)
				}
				return nil
			})
		},
	}
}
