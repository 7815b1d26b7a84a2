package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/confirm"
	"reelpost/internal/logging"
	"reelpost/internal/posting"
	"reelpost/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withStore resolves config and logging, opens the catalog store, and hands
// all three to fn. The store is closed when fn returns.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store, logger)
}

// newConfirmer builds the confirmation channel selected in [confirm].
func newConfirmer(cfg *config.Config) (confirm.Confirmer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Confirm.Channel)) {
	case "", "console":
		return confirm.NewConsole(), nil
	case "telegram":
		return confirm.NewTelegram(cfg.Confirm.TelegramToken, cfg.Confirm.TelegramChatID)
	default:
		return nil, errUnknownConfirmChannel(cfg.Confirm.Channel)
	}
}

// newController wires a posting controller with a live browser session
// manager. The returned close function shuts the browser down.
func newController(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*posting.Controller, func() error, error) {
	confirmer, err := newConfirmer(cfg)
	if err != nil {
		return nil, nil, err
	}
	manager, err := session.NewManager(cfg, confirm.NewConsole(), logger)
	if err != nil {
		return nil, nil, err
	}
	controller := posting.NewController(cfg, store, manager, confirmer, nil, logger)
	return controller, manager.Close, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
