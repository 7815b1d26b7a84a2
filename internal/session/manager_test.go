package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelpost/internal/browser"
	"reelpost/internal/logging"
	"reelpost/internal/testsupport"
)

type fakeAuto struct {
	visible     map[string]bool
	cookies     []browser.Cookie
	navigations []string
	setCalls    int
	readErr     error
	closed      bool
}

func (f *fakeAuto) Navigate(_ context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	return nil
}

func (f *fakeAuto) WaitVisible(_ context.Context, selector string, _ time.Duration) (bool, error) {
	return f.visible[selector], nil
}

func (f *fakeAuto) UploadFile(context.Context, string, string) error { return nil }

func (f *fakeAuto) FillField(context.Context, string, string) error { return nil }

func (f *fakeAuto) ReadText(context.Context, string) (string, error) { return "", f.readErr }

func (f *fakeAuto) ReadAttribute(context.Context, string, string) (string, error) { return "", nil }

func (f *fakeAuto) Cookies(context.Context) ([]browser.Cookie, error) { return f.cookies, nil }

func (f *fakeAuto) SetCookies(_ context.Context, _ []browser.Cookie) error {
	f.setCalls++
	return nil
}

func (f *fakeAuto) Close() error {
	f.closed = true
	return nil
}

type memStore struct {
	state authState
	saves int
}

func (s *memStore) Load() (authState, error) { return s.state, nil }

func (s *memStore) Save(state authState) error {
	s.state = state
	s.saves++
	return nil
}

type fakePrompter struct {
	calls int
	then  func()
}

func (p *fakePrompter) PromptLogin(context.Context, string) error {
	p.calls++
	if p.then != nil {
		p.then()
	}
	return nil
}

func newTestManager(t *testing.T, auto *fakeAuto, store *memStore, prompter LoginPrompter) *Manager {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	launcher := func(context.Context, browser.Options) (browser.Automation, error) {
		return auto, nil
	}
	mgr, err := NewManager(cfg, prompter, logging.NewNop(), WithLauncher(launcher), WithAuthStore(store))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

func TestEnsurePromptsLoginWhenNoSavedState(t *testing.T) {
	probe := testsupport.NewConfig(t).Platform.AuthProbeSelector
	auto := &fakeAuto{
		visible: map[string]bool{},
		cookies: []browser.Cookie{{Name: "sessionid", Value: "abc"}},
	}
	store := &memStore{}
	prompter := &fakePrompter{then: func() { auto.visible[probe] = true }}

	mgr := newTestManager(t, auto, store, prompter)
	got, err := mgr.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if got != browser.Automation(auto) {
		t.Fatal("expected the launched automation back")
	}
	if prompter.calls != 1 {
		t.Fatalf("expected 1 login prompt, got %d", prompter.calls)
	}
	if store.saves != 1 {
		t.Fatalf("expected state saved once, got %d", store.saves)
	}
	if len(store.state.Cookies) != 1 || store.state.ClientID == "" {
		t.Fatalf("unexpected saved state: %+v", store.state)
	}
	if store.state.Platform != "tiktok" {
		t.Fatalf("unexpected platform: %q", store.state.Platform)
	}
}

func TestEnsureRestoresSavedCookiesWithoutPrompt(t *testing.T) {
	probe := testsupport.NewConfig(t).Platform.AuthProbeSelector
	auto := &fakeAuto{
		visible: map[string]bool{probe: true},
		cookies: []browser.Cookie{{Name: "sessionid", Value: "abc"}},
	}
	store := &memStore{state: authState{
		Platform: "tiktok",
		ClientID: "client-1",
		Cookies:  []browser.Cookie{{Name: "sessionid", Value: "abc"}},
		SavedAt:  time.Now().UTC(),
	}}
	prompter := &fakePrompter{}

	mgr := newTestManager(t, auto, store, prompter)
	if _, err := mgr.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if prompter.calls != 0 {
		t.Fatalf("expected no login prompt, got %d", prompter.calls)
	}
	if auto.setCalls != 1 {
		t.Fatalf("expected cookies replayed once, got %d", auto.setCalls)
	}
	if store.state.ClientID != "client-1" {
		t.Fatalf("expected client id preserved, got %q", store.state.ClientID)
	}
}

func TestEnsureFallsBackToLoginWhenProbeFails(t *testing.T) {
	probe := testsupport.NewConfig(t).Platform.AuthProbeSelector
	auto := &fakeAuto{visible: map[string]bool{}}
	store := &memStore{state: authState{
		Cookies: []browser.Cookie{{Name: "sessionid", Value: "expired"}},
	}}
	prompter := &fakePrompter{then: func() { auto.visible[probe] = true }}

	mgr := newTestManager(t, auto, store, prompter)
	if _, err := mgr.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if prompter.calls != 1 {
		t.Fatalf("expected fallback login prompt, got %d prompts", prompter.calls)
	}
}

func TestEnsureReusesLiveBrowser(t *testing.T) {
	probe := testsupport.NewConfig(t).Platform.AuthProbeSelector
	auto := &fakeAuto{visible: map[string]bool{probe: true}}
	store := &memStore{state: authState{
		Cookies: []browser.Cookie{{Name: "sessionid", Value: "abc"}},
	}}

	mgr := newTestManager(t, auto, store, &fakePrompter{})
	first, err := mgr.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := mgr.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if first != second {
		t.Fatal("expected the same automation on repeat Ensure")
	}
	if auto.setCalls != 1 {
		t.Fatalf("expected a single cookie replay, got %d", auto.setCalls)
	}
}

func TestEnsureRelaunchesDeadBrowser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	probe := cfg.Platform.AuthProbeSelector
	sessionCookies := []browser.Cookie{{Name: "sessionid", Value: "abc"}}
	first := &fakeAuto{visible: map[string]bool{probe: true}, cookies: sessionCookies}
	second := &fakeAuto{visible: map[string]bool{probe: true}, cookies: sessionCookies}

	autos := []*fakeAuto{first, second}
	launches := 0
	launcher := func(context.Context, browser.Options) (browser.Automation, error) {
		auto := autos[launches]
		launches++
		return auto, nil
	}
	store := &memStore{state: authState{Cookies: sessionCookies}}
	mgr, err := NewManager(cfg, &fakePrompter{}, logging.NewNop(),
		WithLauncher(launcher), WithAuthStore(store))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	got, err := mgr.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if got != browser.Automation(first) {
		t.Fatal("expected the first automation")
	}

	// The browser dies between attempts; the cached handle must not be
	// handed out again.
	first.readErr = errors.New("chrome went away")

	got, err = mgr.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure after crash: %v", err)
	}
	if got != browser.Automation(second) {
		t.Fatal("expected a fresh automation after the liveness probe failed")
	}
	if !first.closed {
		t.Fatal("expected the dead handle closed")
	}
	if launches != 2 {
		t.Fatalf("expected 2 launches, got %d", launches)
	}
}

func TestInvalidateMarksStateStaleAndForcesLogin(t *testing.T) {
	probe := testsupport.NewConfig(t).Platform.AuthProbeSelector
	auto := &fakeAuto{visible: map[string]bool{probe: true}}
	store := &memStore{state: authState{
		Cookies: []browser.Cookie{{Name: "sessionid", Value: "abc"}},
	}}
	prompter := &fakePrompter{}

	mgr := newTestManager(t, auto, store, prompter)
	if _, err := mgr.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := mgr.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if !auto.closed {
		t.Fatal("expected browser closed on invalidate")
	}
	if !store.state.Stale {
		t.Fatal("expected state marked stale")
	}
	if len(store.state.Cookies) == 0 {
		t.Fatal("expected cookies kept on disk")
	}

	// With stale state the manager must go through the login path again.
	if _, err := mgr.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure after invalidate: %v", err)
	}
	if prompter.calls != 1 {
		t.Fatalf("expected login prompt after invalidate, got %d", prompter.calls)
	}
}

func TestLaunchRetriesBeforeGivingUp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	attempts := 0
	launcher := func(context.Context, browser.Options) (browser.Automation, error) {
		attempts++
		return nil, errors.New("no chrome")
	}
	mgr, err := NewManager(cfg, &fakePrompter{}, logging.NewNop(),
		WithLauncher(launcher), WithAuthStore(&memStore{}))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := mgr.Ensure(context.Background()); err == nil {
		t.Fatal("expected launch failure")
	}
	if attempts != cfg.Platform.LaunchRetries {
		t.Fatalf("expected %d attempts, got %d", cfg.Platform.LaunchRetries, attempts)
	}
}
