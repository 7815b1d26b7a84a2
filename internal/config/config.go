package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	VideosDir string `toml:"videos_dir"`
	LogDir    string `toml:"log_dir"`
}

// Platform describes the target social platform surface reached through the
// browser. Selectors default to the values the upload page currently uses and
// are configurable because they drift with platform UI changes.
type Platform struct {
	Name               string `toml:"name"`
	EntryURL           string `toml:"entry_url"`
	UploadURL          string `toml:"upload_url"`
	ProfileURL         string `toml:"profile_url"`
	AuthProbeSelector  string `toml:"auth_probe_selector"`
	FileInputSelector  string `toml:"file_input_selector"`
	CaptionSelector    string `toml:"caption_selector"`
	ProcessingSelector string `toml:"processing_selector"`
	PostLinkSelector   string `toml:"post_link_selector"`
	Headless           bool   `toml:"headless"`
	ChromeBinary       string `toml:"chrome_binary"`
	LaunchRetries      int    `toml:"launch_retries"`
	LoginTimeout       int    `toml:"login_timeout"`
	AuthProbeTimeout   int    `toml:"auth_probe_timeout"`
	UploadTimeout      int    `toml:"upload_timeout"`
	ReferenceRetries   int    `toml:"reference_retries"`
	ReferenceRetryWait int    `toml:"reference_retry_wait"`
}

// Safety contains the posting rate-limit policy.
type Safety struct {
	MaxPostsPerDay       int `toml:"max_posts_per_day"`
	MinDelayBetweenPosts int `toml:"min_delay_between_posts"`
}

// Discovery configures the product source.
type Discovery struct {
	Source             string `toml:"source"`
	BaseURL            string `toml:"base_url"`
	AppKey             string `toml:"app_key"`
	AppSecret          string `toml:"app_secret"`
	AccessToken        string `toml:"access_token"`
	AffiliateID        string `toml:"affiliate_id"`
	EnrichDescriptions bool   `toml:"enrich_descriptions"`
	RequestTimeout     int    `toml:"request_timeout"`
}

// Filters contains the product selection criteria.
type Filters struct {
	MinPrice          float64  `toml:"min_price"`
	MaxPrice          float64  `toml:"max_price"`
	MinCommissionRate float64  `toml:"min_commission_rate"`
	MinRating         float64  `toml:"min_rating"`
	Categories        []string `toml:"categories"`
}

// Captions configures caption and hashtag generation.
type Captions struct {
	Provider     string   `toml:"provider"`
	GeminiAPIKey string   `toml:"gemini_api_key"`
	Models       []string `toml:"models"`
	BaseTags     []string `toml:"base_tags"`
	MaxHashtags  int      `toml:"max_hashtags"`
	MaxLength    int      `toml:"max_length"`
}

// Render configures the ffmpeg promo clip renderer.
type Render struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	FPS          int    `toml:"fps"`
	Duration     int    `toml:"duration"`
	VideoBitrate string `toml:"video_bitrate"`
	FontFile     string `toml:"font_file"`
	Timeout      int    `toml:"timeout"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Confirm selects the human confirmation channel.
type Confirm struct {
	Channel        string `toml:"channel"`
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID int64  `toml:"telegram_chat_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelpost.
//
// Configuration sections by subsystem:
//   - Paths: data, video, and log directories
//   - Platform: browser automation target (URLs, selectors, timeouts)
//   - Safety: posting rate limits and cooldown
//   - Discovery: product source selection and shop API credentials
//   - Filters: product selection criteria
//   - Captions: caption/hashtag generation (template or Gemini)
//   - Render: ffmpeg promo clip settings
//   - Notifications: ntfy push notification settings
//   - Confirm: human confirmation channel (console or telegram)
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Platform      Platform      `toml:"platform"`
	Safety        Safety        `toml:"safety"`
	Discovery     Discovery     `toml:"discovery"`
	Filters       Filters       `toml:"filters"`
	Captions      Captions      `toml:"captions"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Confirm       Confirm       `toml:"confirm"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelpost/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and secret fields overlaid from the
// environment (a .env file next to the config file is honored).
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg, filepath.Dir(resolvedPath))

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides loads a .env file next to the config (best effort) and
// lets environment variables supply secrets that should not live in TOML.
func applyEnvOverrides(cfg *Config, configDir string) {
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.Captions.GeminiAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Confirm.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOP_APP_SECRET")); v != "" {
		cfg.Discovery.AppSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOP_ACCESS_TOKEN")); v != "" {
		cfg.Discovery.AccessToken = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelpost.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.VideosDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the catalog SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// AuthStatePath returns the persisted browser auth token location.
func (c *Config) AuthStatePath() string {
	return filepath.Join(c.Paths.DataDir, "auth_state.json")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
