package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Post every ready artifact as one batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				controller, closeSession, err := newController(cfg, store, logger)
				if err != nil {
					return err
				}
				defer closeSession()

				runner := workflow.NewRunner(cfg, store, controller, nil, logger)
				summary, runErr := runner.Run(signalCtx)
				if summary != nil {
					printSummary(cmd, summary)
				}
				return runErr
			})
		},
	}
}

func printSummary(cmd *cobra.Command, summary *workflow.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Batch %s finished in %s\n", summary.BatchID, summary.Duration.Round(time.Second))
	fmt.Fprintln(out, renderTable(
		[]string{"Posted", "Skipped", "Aborted", "Failed"},
		[][]string{{
			strconv.Itoa(summary.Posted),
			strconv.Itoa(summary.Skipped),
			strconv.Itoa(summary.Aborted),
			strconv.Itoa(summary.Failed),
		}},
		0, 1, 2, 3,
	))
	if summary.Stopped != "" {
		fmt.Fprintf(out, "Batch stopped early: %s\n", summary.Stopped)
	}
}
