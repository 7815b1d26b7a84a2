package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

func newPostsCommand(ctx *commandContext) *cobra.Command {
	var artifactID int64

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posting attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				var events []*catalog.PostEvent
				var err error
				if artifactID > 0 {
					events, err = store.EventsForArtifact(cmd.Context(), artifactID)
				} else {
					events, err = store.EventsSince(cmd.Context(), time.Time{})
				}
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No posting attempts recorded.")
					return nil
				}

				rows := make([][]string, 0, len(events))
				for _, event := range events {
					detail := event.ReferenceURL
					if detail == "" {
						detail = event.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(event.ID, 10),
						strconv.FormatInt(event.ArtifactID, 10),
						string(event.Outcome),
						formatTime(event.StartedAt),
						formatOptionalTime(event.ResolvedAt),
						truncateCell(detail, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Event", "Artifact", "Outcome", "Started", "Resolved", "Detail"},
					rows,
					0, 1,
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&artifactID, "artifact", 0, "Only show attempts for this artifact")
	return cmd
}
