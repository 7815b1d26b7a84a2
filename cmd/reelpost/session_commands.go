package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelpost/internal/confirm"
	"reelpost/internal/session"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the saved platform session",
	}

	sessionCmd.AddCommand(newSessionLoginCommand(ctx))
	sessionCmd.AddCommand(newSessionLogoutCommand(ctx))
	sessionCmd.AddCommand(newSessionStatusCommand(ctx))

	return sessionCmd
}

func newSessionLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Open the platform login page and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			manager, err := session.NewManager(cfg, confirm.NewConsole(), logger)
			if err != nil {
				return err
			}
			defer manager.Close()

			if _, err := manager.Ensure(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session ready for %s\n", cfg.Platform.Name)
			return nil
		},
	}
}

func newSessionLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			manager, err := session.NewManager(cfg, confirm.NewConsole(), logger)
			if err != nil {
				return err
			}
			defer manager.Close()

			if err := manager.Invalidate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved session discarded. The next post will prompt for login.")
			return nil
		},
	}
}

func newSessionStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			data, err := os.ReadFile(cfg.AuthStatePath())
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "No saved session. Run `reelpost session login` first.")
				return nil
			}
			if err != nil {
				return err
			}

			var state struct {
				Platform string            `json:"platform"`
				SavedAt  time.Time         `json:"saved_at"`
				Stale    bool              `json:"stale"`
				Cookies  []json.RawMessage `json:"cookies"`
			}
			if err := json.Unmarshal(data, &state); err != nil {
				return fmt.Errorf("parse auth state: %w", err)
			}

			fmt.Fprintf(out, "Platform: %s\n", state.Platform)
			fmt.Fprintf(out, "Saved at: %s\n", formatTime(state.SavedAt))
			fmt.Fprintf(out, "Cookies:  %d\n", len(state.Cookies))
			fmt.Fprintf(out, "Stale:    %s\n", yesNo(state.Stale))
			return nil
		},
	}
}
