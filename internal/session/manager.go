package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelpost/internal/browser"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

// LoginPrompter asks a human to complete the platform login in the opened
// browser window. Implementations block until the operator signals they are
// done or the context is canceled.
type LoginPrompter interface {
	PromptLogin(ctx context.Context, entryURL string) error
}

// Option customises Manager construction.
type Option func(*Manager)

// WithLauncher overrides the browser launcher (used in tests).
func WithLauncher(launcher browser.Launcher) Option {
	return func(m *Manager) {
		m.launcher = launcher
	}
}

// WithAuthStore injects a custom persistence layer.
func WithAuthStore(store AuthStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// Manager owns the browser session for the configured platform. It replays
// persisted cookies on launch and falls back to a human-driven login when the
// replay fails the auth probe.
type Manager struct {
	cfg      *config.Config
	launcher browser.Launcher
	store    AuthStore
	prompter LoginPrompter
	logger   *slog.Logger

	mu   sync.Mutex
	auto browser.Automation
}

// NewManager builds a session manager using the provided configuration.
func NewManager(cfg *config.Config, prompter LoginPrompter, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	mgr := &Manager{
		cfg:      cfg,
		launcher: browser.LaunchChrome,
		store:    NewFileAuthStore(cfg.AuthStatePath()),
		prompter: prompter,
		logger:   logging.NewComponentLogger(logger, "session"),
	}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr, nil
}

// Ensure returns an authenticated browser, launching and logging in as
// needed. The returned Automation stays owned by the manager; callers must
// not close it.
func (m *Manager) Ensure(ctx context.Context) (browser.Automation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auto != nil {
		if m.alive(ctx) {
			return m.auto, nil
		}
		// A dead handle (crashed or closed Chrome) must not poison every
		// caller; drop it and bring up a fresh one.
		m.logger.Warn("cached browser failed liveness probe, relaunching")
		_ = m.auto.Close()
		m.auto = nil
	}

	auto, err := m.launch(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.authenticate(ctx, auto); err != nil {
		_ = auto.Close()
		return nil, err
	}

	m.auto = auto
	return auto, nil
}

// Invalidate marks the persisted cookies stale and tears the browser down.
// The state file is kept on disk; the next Ensure forces a fresh login.
func (m *Manager) Invalidate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auto != nil {
		_ = m.auto.Close()
		m.auto = nil
	}

	state, err := m.store.Load()
	if err != nil {
		return err
	}
	if len(state.Cookies) == 0 {
		return nil
	}
	state.Stale = true
	if err := m.store.Save(state); err != nil {
		return err
	}
	m.logger.Info("session invalidated", logging.String("platform", m.cfg.Platform.Name))
	return nil
}

// Close shuts the browser down without touching persisted state.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auto == nil {
		return nil
	}
	err := m.auto.Close()
	m.auto = nil
	return err
}

// alive probes the cached handle with a cheap read. Callers hold m.mu.
func (m *Manager) alive(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := m.auto.ReadText(probeCtx, "body")
	return err == nil
}

func (m *Manager) launch(ctx context.Context) (browser.Automation, error) {
	opts := browser.Options{
		Headless:     m.cfg.Platform.Headless,
		ChromeBinary: m.cfg.Platform.ChromeBinary,
	}

	retries := m.cfg.Platform.LaunchRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		auto, err := m.launcher(ctx, opts)
		if err == nil {
			return auto, nil
		}
		lastErr = err
		m.logger.Warn("browser launch failed",
			logging.Int("attempt", attempt),
			logging.Int("retries", retries),
			logging.Error(err),
		)
		if attempt < retries {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, services.Wrap(services.ErrAutomation, "session", "launch", "browser did not start", lastErr)
}

func (m *Manager) authenticate(ctx context.Context, auto browser.Automation) error {
	state, err := m.store.Load()
	if err != nil {
		return err
	}

	if state.usable() {
		ok, err := m.restore(ctx, auto, state)
		if err != nil {
			return err
		}
		if ok {
			m.logger.Info("session restored from saved cookies",
				logging.String("platform", m.cfg.Platform.Name),
				logging.Int("cookies", len(state.Cookies)),
			)
			return m.snapshot(ctx, auto, state.ClientID)
		}
		m.logger.Warn("saved cookies rejected, manual login required")
	}

	return m.login(ctx, auto, state.ClientID)
}

func (m *Manager) restore(ctx context.Context, auto browser.Automation, state authState) (bool, error) {
	if err := auto.SetCookies(ctx, state.Cookies); err != nil {
		return false, err
	}
	if err := auto.Navigate(ctx, m.cfg.Platform.UploadURL); err != nil {
		return false, err
	}
	probeTimeout := time.Duration(m.cfg.Platform.AuthProbeTimeout) * time.Second
	return auto.WaitVisible(ctx, m.cfg.Platform.AuthProbeSelector, probeTimeout)
}

func (m *Manager) login(ctx context.Context, auto browser.Automation, clientID string) error {
	if m.prompter == nil {
		return services.Wrap(services.ErrAuthentication, "session", "login", "no saved session and no login prompter wired", nil)
	}

	if err := auto.Navigate(ctx, m.cfg.Platform.EntryURL); err != nil {
		return err
	}

	m.logger.Info("waiting for manual login", logging.String("url", m.cfg.Platform.EntryURL))
	if err := m.prompter.PromptLogin(ctx, m.cfg.Platform.EntryURL); err != nil {
		return services.Wrap(services.ErrAuthentication, "session", "login", "login prompt failed", err)
	}

	if err := auto.Navigate(ctx, m.cfg.Platform.UploadURL); err != nil {
		return err
	}
	loginTimeout := time.Duration(m.cfg.Platform.LoginTimeout) * time.Second
	ok, err := auto.WaitVisible(ctx, m.cfg.Platform.AuthProbeSelector, loginTimeout)
	if err != nil {
		return err
	}
	if !ok {
		return services.Wrap(services.ErrAuthentication, "session", "login", "auth probe not visible after login", nil)
	}

	return m.snapshot(ctx, auto, clientID)
}

func (m *Manager) snapshot(ctx context.Context, auto browser.Automation, clientID string) error {
	cookies, err := auto.Cookies(ctx)
	if err != nil {
		return err
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return m.store.Save(authState{
		Platform: m.cfg.Platform.Name,
		ClientID: clientID,
		Cookies:  cookies,
		SavedAt:  time.Now().UTC(),
	})
}
