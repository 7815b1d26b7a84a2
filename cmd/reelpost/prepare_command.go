package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"reelpost/internal/captions"
	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/render"
	"reelpost/internal/workflow"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Render promo clips and captions for selected products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				generator, err := captions.New(signalCtx, cfg, logger)
				if err != nil {
					return err
				}
				preparer := workflow.NewPreparer(cfg, store, render.New(cfg, logger), generator, logger)

				artifacts, err := preparer.PrepareAll(signalCtx)
				out := cmd.OutOrStdout()
				if len(artifacts) == 0 {
					if err == nil {
						fmt.Fprintln(out, "No selected products to prepare. Run `reelpost products select` first.")
					}
					return err
				}

				rows := make([][]string, 0, len(artifacts))
				for _, artifact := range artifacts {
					rows = append(rows, []string{
						strconv.FormatInt(artifact.ID, 10),
						artifact.ProductKey,
						filepath.Base(artifact.VideoPath),
						truncateCell(artifact.Caption, 48),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Artifact", "Product", "Video", "Caption"},
					rows,
					0,
				))
				return err
			})
		},
	}
}
