package services_test

import (
	"errors"
	"strings"
	"testing"

	"reelpost/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrAutomation, "uploading", "fill caption", "selector missing", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrAutomation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"uploading", "fill caption", "selector missing"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "render", "", "ffmpeg exited", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestNeedsOperator(t *testing.T) {
	authErr := services.Wrap(services.ErrAuthentication, "session", "probe", "login required", nil)
	if !services.NeedsOperator(authErr) {
		t.Fatal("expected authentication error to need operator")
	}

	transientErr := services.Wrap(services.ErrTransient, "uploading", "navigate", "net flake", errors.New("io"))
	if services.NeedsOperator(transientErr) {
		t.Fatal("expected transient error not to need operator")
	}

	if services.NeedsOperator(nil) {
		t.Fatal("expected nil error not to need operator")
	}
}
