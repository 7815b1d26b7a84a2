package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

func (c *Config) normalize() error {
	for name, field := range map[string]*string{
		"paths.data_dir":   &c.Paths.DataDir,
		"paths.videos_dir": &c.Paths.VideosDir,
		"paths.log_dir":    &c.Paths.LogDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return fmt.Errorf("normalize %s: %w", name, err)
		}
		*field = expanded
	}

	c.Platform.Name = strings.ToLower(strings.TrimSpace(c.Platform.Name))
	c.Discovery.Source = strings.ToLower(strings.TrimSpace(c.Discovery.Source))
	c.Captions.Provider = strings.ToLower(strings.TrimSpace(c.Captions.Provider))
	c.Confirm.Channel = strings.ToLower(strings.TrimSpace(c.Confirm.Channel))

	if c.Render.FontFile != "" {
		expanded, err := expandPath(c.Render.FontFile)
		if err != nil {
			return fmt.Errorf("normalize render.font_file: %w", err)
		}
		c.Render.FontFile = expanded
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlatform(); err != nil {
		return err
	}
	if err := c.validateSafety(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateConfirm(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlatform() error {
	if c.Platform.Name == "" {
		return errors.New("platform.name must be set")
	}
	for name, value := range map[string]string{
		"platform.entry_url":   c.Platform.EntryURL,
		"platform.upload_url":  c.Platform.UploadURL,
		"platform.profile_url": c.Platform.ProfileURL,
	} {
		parsed, err := url.Parse(strings.TrimSpace(value))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	for name, value := range map[string]string{
		"platform.auth_probe_selector": c.Platform.AuthProbeSelector,
		"platform.file_input_selector": c.Platform.FileInputSelector,
		"platform.caption_selector":    c.Platform.CaptionSelector,
		"platform.processing_selector": c.Platform.ProcessingSelector,
		"platform.post_link_selector":  c.Platform.PostLinkSelector,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	return ensurePositive(map[string]int{
		"platform.launch_retries":       c.Platform.LaunchRetries,
		"platform.login_timeout":        c.Platform.LoginTimeout,
		"platform.auth_probe_timeout":   c.Platform.AuthProbeTimeout,
		"platform.upload_timeout":       c.Platform.UploadTimeout,
		"platform.reference_retries":    c.Platform.ReferenceRetries,
		"platform.reference_retry_wait": c.Platform.ReferenceRetryWait,
	})
}

func (c *Config) validateSafety() error {
	if c.Safety.MaxPostsPerDay <= 0 {
		return errors.New("safety.max_posts_per_day must be positive")
	}
	if c.Safety.MinDelayBetweenPosts < 0 {
		return errors.New("safety.min_delay_between_posts must not be negative")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	switch c.Discovery.Source {
	case "demo":
	case "shop":
		if strings.TrimSpace(c.Discovery.AppKey) == "" {
			return errors.New("discovery.app_key must be set when discovery.source is \"shop\"")
		}
		if strings.TrimSpace(c.Discovery.AppSecret) == "" {
			return errors.New("discovery.app_secret must be set when discovery.source is \"shop\" (or SHOP_APP_SECRET env)")
		}
		if strings.TrimSpace(c.Discovery.AccessToken) == "" {
			return errors.New("discovery.access_token must be set when discovery.source is \"shop\" (or SHOP_ACCESS_TOKEN env)")
		}
	default:
		return fmt.Errorf("discovery.source: unsupported value %q", c.Discovery.Source)
	}
	if c.Discovery.RequestTimeout <= 0 {
		return errors.New("discovery.request_timeout must be positive")
	}
	if c.Filters.MaxPrice > 0 && c.Filters.MaxPrice < c.Filters.MinPrice {
		return errors.New("filters.max_price must not be below filters.min_price")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Provider {
	case "template":
	case "gemini":
		if strings.TrimSpace(c.Captions.GeminiAPIKey) == "" {
			return errors.New("captions.gemini_api_key must be set when captions.provider is \"gemini\" (or GEMINI_API_KEY env)")
		}
		if len(c.Captions.Models) == 0 {
			return errors.New("captions.models must list at least one model")
		}
	default:
		return fmt.Errorf("captions.provider: unsupported value %q", c.Captions.Provider)
	}
	return ensurePositive(map[string]int{
		"captions.max_hashtags": c.Captions.MaxHashtags,
		"captions.max_length":   c.Captions.MaxLength,
	})
}

func (c *Config) validateRender() error {
	if strings.TrimSpace(c.Render.FFmpegBinary) == "" {
		return errors.New("render.ffmpeg_binary must be set")
	}
	return ensurePositive(map[string]int{
		"render.width":    c.Render.Width,
		"render.height":   c.Render.Height,
		"render.fps":      c.Render.FPS,
		"render.duration": c.Render.Duration,
		"render.timeout":  c.Render.Timeout,
	})
}

func (c *Config) validateConfirm() error {
	switch c.Confirm.Channel {
	case "console":
		return nil
	case "telegram":
		if strings.TrimSpace(c.Confirm.TelegramToken) == "" {
			return errors.New("confirm.telegram_token must be set when confirm.channel is \"telegram\" (or TELEGRAM_BOT_TOKEN env)")
		}
		if c.Confirm.TelegramChatID == 0 {
			return errors.New("confirm.telegram_chat_id must be set when confirm.channel is \"telegram\"")
		}
		return nil
	default:
		return fmt.Errorf("confirm.channel: unsupported value %q", c.Confirm.Channel)
	}
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositive(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
