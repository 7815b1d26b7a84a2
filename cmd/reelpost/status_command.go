package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/deps"
	"reelpost/internal/policy"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog counts, posting policy, and tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				out := cmd.OutOrStdout()

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable(
					[]string{"", "Total", "Detail"},
					[][]string{
						{"Products", strconv.Itoa(stats.ProductsTotal), fmt.Sprintf("%d pending", stats.ProductsPending)},
						{"Artifacts", strconv.Itoa(stats.ArtifactsTotal), fmt.Sprintf("%d ready, %d posted, %d failed", stats.ArtifactsCreated, stats.ArtifactsPosted, stats.ArtifactsFailed)},
						{"Attempts", strconv.Itoa(stats.PostsConfirmed + stats.PostsAborted + stats.PostsErrored + stats.PostsInFlight), fmt.Sprintf("%d confirmed, %d aborted, %d errored, %d open", stats.PostsConfirmed, stats.PostsAborted, stats.PostsErrored, stats.PostsInFlight)},
					},
					1,
				))

				now := time.Now()
				events, err := store.EventsSince(cmd.Context(), now.Add(-policy.Window))
				if err != nil {
					return err
				}
				decision := policy.Evaluate(now, events, policy.FromSafety(cfg.Safety))
				if decision.Allowed {
					fmt.Fprintln(out, "Posting: allowed")
				} else {
					fmt.Fprintf(out, "Posting: denied (%s)\n", decision.Reason)
				}

				statuses := deps.CheckAll(cfg)
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					detail := status.Detail
					if detail == "" && status.Available {
						detail = status.Command
					}
					rows = append(rows, []string{status.Name, yesNo(status.Available), detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Tool", "Found", "Detail"},
					rows,
				))
				if missing := deps.MissingRequired(statuses); len(missing) > 0 {
					fmt.Fprintf(out, "Missing required tools: %s\n", strings.Join(missing, ", "))
				}
				return nil
			})
		},
	}
}
