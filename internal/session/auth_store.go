package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reelpost/internal/browser"
)

// AuthStore abstracts persistence for platform authentication state.
type AuthStore interface {
	Load() (authState, error)
	Save(authState) error
}

type authState struct {
	Platform string           `json:"platform"`
	ClientID string           `json:"client_id"`
	Cookies  []browser.Cookie `json:"cookies"`
	SavedAt  time.Time        `json:"saved_at"`
	// Stale marks cookies that failed an auth probe. They stay on disk for
	// inspection but are never replayed.
	Stale bool `json:"stale,omitempty"`
}

func (s authState) usable() bool {
	return len(s.Cookies) > 0 && !s.Stale
}

// FileAuthStore writes auth state to a JSON file on disk.
type FileAuthStore struct {
	path string
}

// NewFileAuthStore builds a FileAuthStore rooted at the provided path.
func NewFileAuthStore(path string) *FileAuthStore {
	return &FileAuthStore{path: path}
}

// Load reads auth state from disk. A missing file resolves to an empty state.
func (s *FileAuthStore) Load() (authState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return authState{}, nil
		}
		return authState{}, fmt.Errorf("read auth state: %w", err)
	}

	var state authState
	if err := json.Unmarshal(data, &state); err != nil {
		return authState{}, fmt.Errorf("decode auth state: %w", err)
	}
	return state, nil
}

// Save persists auth state to disk with restricted permissions.
func (s *FileAuthStore) Save(state authState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write auth state: %w", err)
	}
	return nil
}
