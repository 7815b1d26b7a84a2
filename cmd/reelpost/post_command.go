package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/posting"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "post <artifact-id>",
		Short: "Post a single rendered artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifactID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid artifact id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				controller, closeSession, err := newController(cfg, store, logger)
				if err != nil {
					return err
				}
				defer closeSession()

				result, postErr := controller.Post(signalCtx, artifactID)
				if result != nil {
					printResult(cmd.OutOrStdout(), result)
				}
				return postErr
			})
		},
	}
}

func printResult(out io.Writer, result *posting.Result) {
	switch result.Outcome {
	case posting.OutcomePosted:
		fmt.Fprintf(out, "Posted artifact %d", result.ArtifactID)
		if result.ReferenceURL != "" {
			fmt.Fprintf(out, ": %s", result.ReferenceURL)
		}
		fmt.Fprintln(out)
	case posting.OutcomeSkipped:
		fmt.Fprintf(out, "Skipped artifact %d: %s\n", result.ArtifactID, result.Reason)
	case posting.OutcomeAborted:
		fmt.Fprintf(out, "Aborted artifact %d: %s\n", result.ArtifactID, result.Reason)
	default:
		fmt.Fprintf(out, "Attempt for artifact %d failed\n", result.ArtifactID)
	}
}
