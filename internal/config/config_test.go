package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelpost/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndHonoursEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "reelpost", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Platform.Name != "tiktok" {
		t.Fatalf("unexpected platform name: %q", cfg.Platform.Name)
	}
	if cfg.Safety.MaxPostsPerDay != 10 {
		t.Fatalf("unexpected daily limit: %d", cfg.Safety.MaxPostsPerDay)
	}
	if cfg.Safety.MinDelayBetweenPosts != 3600 {
		t.Fatalf("unexpected cooldown: %d", cfg.Safety.MinDelayBetweenPosts)
	}
	if cfg.Discovery.Source != "demo" {
		t.Fatalf("unexpected discovery source: %q", cfg.Discovery.Source)
	}
	if cfg.Captions.Provider != "template" {
		t.Fatalf("unexpected captions provider: %q", cfg.Captions.Provider)
	}
	if cfg.Captions.GeminiAPIKey != "env-gemini-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Captions.GeminiAPIKey)
	}
	if cfg.Confirm.Channel != "console" {
		t.Fatalf("unexpected confirm channel: %q", cfg.Confirm.Channel)
	}
	if cfg.Render.Width != 1080 || cfg.Render.Height != 1920 {
		t.Fatalf("unexpected render dimensions: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Paths.DataDir, "catalog.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.AuthStatePath() != filepath.Join(cfg.Paths.DataDir, "auth_state.json") {
		t.Fatalf("unexpected auth state path: %q", cfg.AuthStatePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.VideosDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelpost.toml")

	type payload struct {
		Safety struct {
			MaxPostsPerDay       int `toml:"max_posts_per_day"`
			MinDelayBetweenPosts int `toml:"min_delay_between_posts"`
		} `toml:"safety"`
		Captions struct {
			Provider string `toml:"provider"`
		} `toml:"captions"`
	}
	custom := payload{}
	custom.Safety.MaxPostsPerDay = 3
	custom.Safety.MinDelayBetweenPosts = 120
	custom.Captions.Provider = "Template"

	raw, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Safety.MaxPostsPerDay != 3 {
		t.Fatalf("unexpected daily limit: %d", cfg.Safety.MaxPostsPerDay)
	}
	if cfg.Safety.MinDelayBetweenPosts != 120 {
		t.Fatalf("unexpected cooldown: %d", cfg.Safety.MinDelayBetweenPosts)
	}
	if cfg.Captions.Provider != "template" {
		t.Fatalf("expected provider normalized to lowercase, got %q", cfg.Captions.Provider)
	}
	if cfg.Platform.UploadURL == "" {
		t.Fatal("expected platform defaults to survive overlay")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "zero daily limit",
			mutate: func(c *config.Config) { c.Safety.MaxPostsPerDay = 0 },
			want:   "max_posts_per_day",
		},
		{
			name:   "negative cooldown",
			mutate: func(c *config.Config) { c.Safety.MinDelayBetweenPosts = -1 },
			want:   "min_delay_between_posts",
		},
		{
			name:   "unknown discovery source",
			mutate: func(c *config.Config) { c.Discovery.Source = "etsy" },
			want:   "discovery.source",
		},
		{
			name:   "shop source without credentials",
			mutate: func(c *config.Config) { c.Discovery.Source = "shop" },
			want:   "app_key",
		},
		{
			name:   "unknown captions provider",
			mutate: func(c *config.Config) { c.Captions.Provider = "gpt" },
			want:   "captions.provider",
		},
		{
			name:   "gemini provider without key",
			mutate: func(c *config.Config) { c.Captions.Provider = "gemini" },
			want:   "gemini_api_key",
		},
		{
			name:   "unknown confirm channel",
			mutate: func(c *config.Config) { c.Confirm.Channel = "sms" },
			want:   "confirm.channel",
		},
		{
			name:   "telegram channel without token",
			mutate: func(c *config.Config) { c.Confirm.Channel = "telegram" },
			want:   "telegram_token",
		},
		{
			name:   "relative upload url",
			mutate: func(c *config.Config) { c.Platform.UploadURL = "/upload" },
			want:   "upload_url",
		},
		{
			name:   "unknown logging format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	tempDir := t.TempDir()
	samplePath := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Platform.Name != "tiktok" {
		t.Fatalf("unexpected platform in sample: %q", cfg.Platform.Name)
	}
	if cfg.Render.VideoBitrate != "8000k" {
		t.Fatalf("unexpected bitrate in sample: %q", cfg.Render.VideoBitrate)
	}
}
